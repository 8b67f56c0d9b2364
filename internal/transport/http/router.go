package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/health"
	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/transport/http/handler"
	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

func NewRouter(
	logger *slog.Logger,
	webhookHandler *handler.WebhookHandler,
	runHandler *handler.RunHandler,
	importHandler *handler.ImportHandler,
	checker *health.Checker,
	env string,
	runnerToken string,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	// Webhook intake authenticates with the HMAC signature, not the bearer
	// token — it stays outside the guarded group.
	r.POST("/webhooks/shopify", webhookHandler.Receive)

	auth := middleware.RunnerAuth(env, runnerToken, logger)
	internal := r.Group("/internal", auth)
	internal.GET("/jobs/run", runHandler.Trigger)
	internal.POST("/jobs/run", runHandler.Trigger)
	internal.POST("/imports/shipments", importHandler.Create)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, checker.Liveness(c.Request.Context()))
	})
	r.GET("/readyz", func(c *gin.Context) {
		result := checker.Readiness(c.Request.Context())
		status := http.StatusOK
		if result.Status != "up" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, result)
	})

	return r
}
