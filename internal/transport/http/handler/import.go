package handler

import (
	"log/slog"
	"net/http"

	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/jobs"
	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/usecase"
	"github.com/gin-gonic/gin"
)

const maxImportRows = 500

type ImportHandler struct {
	intake *usecase.Intake
	logger *slog.Logger
}

func NewImportHandler(intake *usecase.Intake, logger *slog.Logger) *ImportHandler {
	return &ImportHandler{intake: intake, logger: logger.With("component", "import_handler")}
}

type importRequest struct {
	Rows []jobs.ShipmentRow `json:"rows" binding:"required,min=1"`
}

type importResponse struct {
	OK       bool `json:"ok"`
	Enqueued int  `json:"enqueued"`
}

// Create enqueues one shipment_import_row job per submitted row. Rows are
// recorded as-is; reference resolution and validation happen in the
// executor so a bad row fails its own job instead of the whole upload.
func (h *ImportHandler) Create(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errBadRequest})
		return
	}
	if len(req.Rows) > maxImportRows {
		c.JSON(http.StatusBadRequest, gin.H{"error": errBadRequest})
		return
	}

	enqueued, err := h.intake.EnqueueShipmentRows(c.Request.Context(), req.Rows)
	if err != nil {
		h.logger.Error("enqueue shipment rows", "enqueued", enqueued, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusAccepted, importResponse{OK: true, Enqueued: enqueued})
}
