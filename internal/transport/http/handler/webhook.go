package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/metrics"
	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/signature"
	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/usecase"
	"github.com/gin-gonic/gin"
)

const (
	headerShopDomain = "X-Shopify-Shop-Domain"
	headerTopic      = "X-Shopify-Topic"
)

type WebhookHandler struct {
	verifier *signature.Verifier
	intake   *usecase.Intake
	logger   *slog.Logger
}

func NewWebhookHandler(verifier *signature.Verifier, intake *usecase.Intake, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		verifier: verifier,
		intake:   intake,
		logger:   logger.With("component", "webhook_handler"),
	}
}

// Receive authenticates and enqueues one webhook delivery. The body is read
// as raw bytes before anything parses it — verification happens against the
// exact bytes Shopify signed, and those same bytes are what gets recorded.
func (h *WebhookHandler) Receive(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Error("read webhook body", "error", err)
		metrics.WebhookRequestsTotal.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	if !h.verifier.Verify(raw, c.GetHeader(signature.HeaderHMAC)) {
		// Never log the header value: a near-miss digest is still an
		// oracle.
		h.logger.Warn("webhook signature verification failed",
			"shop", c.GetHeader(headerShopDomain),
			"topic", c.GetHeader(headerTopic),
		)
		metrics.WebhookRequestsTotal.WithLabelValues("rejected").Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
		return
	}

	job, err := h.intake.EnqueueWebhook(
		c.Request.Context(),
		c.GetHeader(headerShopDomain),
		c.GetHeader(headerTopic),
		raw,
	)
	if err != nil {
		h.logger.Error("enqueue webhook", "error", err)
		metrics.WebhookRequestsTotal.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	metrics.WebhookRequestsTotal.WithLabelValues("accepted").Inc()
	h.logger.Info("webhook enqueued", "job_id", job.ID, "topic", c.GetHeader(headerTopic))
	c.Status(http.StatusNoContent)
}
