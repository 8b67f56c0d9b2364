// Package signature authenticates inbound Shopify webhook deliveries.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"log/slog"
	"strings"
)

// HeaderHMAC is the header Shopify signs webhook deliveries with.
const HeaderHMAC = "X-Shopify-Hmac-Sha256"

// Verifier checks that a raw webhook body was signed with the shared app
// secret. An unconfigured secret fails every verification (fail closed).
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string, logger *slog.Logger) *Verifier {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		logger.Warn("webhook secret not configured, all deliveries will be rejected")
	}
	return &Verifier{secret: []byte(secret)}
}

// Verify computes HMAC-SHA256 over the exact raw bytes received and compares
// the base64 digest against the header value in constant time. The body must
// never be re-serialized before verification: re-encoding JSON can change
// byte content and invalidate the signature.
func (v *Verifier) Verify(rawBody []byte, header string) bool {
	if len(v.secret) == 0 {
		return false
	}
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}

	provided, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(rawBody)
	return hmac.Equal(mac.Sum(nil), provided)
}
