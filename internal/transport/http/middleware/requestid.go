package middleware

import (
	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/requestid"
	"github.com/gin-gonic/gin"
)

const (
	headerRequestID  = "X-Request-ID"
	headerDeliveryID = "X-Shopify-Webhook-Id"
)

// RequestID attaches correlation IDs to the request context and echoes the
// request ID back in the response. An incoming X-Request-ID is trusted as-is
// (the proxy in front of us mints one); otherwise a UUID is generated. When
// the platform's delivery ID header is present it rides along too, so webhook
// log lines correlate across re-deliveries.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = requestid.New()
		}

		ctx := requestid.WithRequestID(c.Request.Context(), id)
		if delivery := c.GetHeader(headerDeliveryID); delivery != "" {
			ctx = requestid.WithDeliveryID(ctx, delivery)
		}

		c.Request = c.Request.WithContext(ctx)
		c.Header(headerRequestID, id)
		c.Next()
	}
}
