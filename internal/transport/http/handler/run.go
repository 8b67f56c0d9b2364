package handler

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/domain"
	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/runner"
	"github.com/gin-gonic/gin"
)

// jobRunner is what the trigger endpoint needs from the runner; tests pass a
// fake.
type jobRunner interface {
	Run(ctx context.Context, opts runner.Options) (runner.Summary, error)
	RunAll(ctx context.Context, limit int) (runner.Summary, error)
}

type RunHandler struct {
	runner jobRunner
	logger *slog.Logger
}

func NewRunHandler(r jobRunner, logger *slog.Logger) *RunHandler {
	return &RunHandler{runner: r, logger: logger.With("component", "run_handler")}
}

type runResponse struct {
	OK      bool           `json:"ok"`
	Summary runner.Summary `json:"summary"`
}

// Trigger runs one processing pass on demand. `kind` selects a single job
// kind, defaulting to all; the batch size comes from the first of
// limit/jobs/items and is clamped to the configured ceiling by the runner,
// so a hostile value cannot widen a pass's blast radius.
func (h *RunHandler) Trigger(c *gin.Context) {
	limit := queryInt(c, "limit", "jobs", "items")

	var (
		summary runner.Summary
		err     error
	)
	if kind := c.Query("kind"); kind != "" {
		if !slices.Contains(domain.Kinds, domain.JobKind(kind)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errUnknownKind})
			return
		}
		summary, err = h.runner.Run(c.Request.Context(), runner.Options{
			Kind:  domain.JobKind(kind),
			Limit: limit,
		})
	} else {
		summary, err = h.runner.RunAll(c.Request.Context(), limit)
	}

	if err != nil {
		// Claim-level store failures surface here; claimed jobs keep
		// their state for a later pass.
		h.logger.Error("runner pass failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, runResponse{OK: true, Summary: summary})
}

// queryInt returns the first parseable positive integer among the named
// query params, or 0 (runner default) when none is usable.
func queryInt(c *gin.Context, names ...string) int {
	for _, name := range names {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			continue
		}
		return n
	}
	return 0
}
