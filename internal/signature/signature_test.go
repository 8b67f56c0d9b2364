package signature_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"log/slog"
	"testing"

	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/signature"
)

const testSecret = "shpss_test_secret"

func sign(t *testing.T, secret string, body []byte) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func newVerifier(secret string) *signature.Verifier {
	return signature.NewVerifier(secret, slog.Default())
}

func TestVerify_ValidSignature(t *testing.T) {
	body := []byte(`{"id":5001,"note":"OS-01115463"}`)
	v := newVerifier(testSecret)

	if !v.Verify(body, sign(t, testSecret, body)) {
		t.Fatal("expected valid signature to verify")
	}
}

func TestVerify_MutatedBodyFails(t *testing.T) {
	body := []byte(`{"id":5001}`)
	header := sign(t, testSecret, body)
	v := newVerifier(testSecret)

	mutated := append([]byte(nil), body...)
	mutated[0] ^= 0x01
	if v.Verify(mutated, header) {
		t.Fatal("single-byte body mutation must fail verification")
	}
}

func TestVerify_MutatedHeaderFails(t *testing.T) {
	body := []byte(`{"id":5001}`)
	header := []byte(sign(t, testSecret, body))
	header[0] ^= 0x01
	v := newVerifier(testSecret)

	if v.Verify(body, string(header)) {
		t.Fatal("single-byte header mutation must fail verification")
	}
}

func TestVerify_WrongSecretFails(t *testing.T) {
	body := []byte(`{}`)
	v := newVerifier(testSecret)

	if v.Verify(body, sign(t, "another-secret", body)) {
		t.Fatal("signature from a different secret must fail")
	}
}

func TestVerify_EmptySecretAlwaysFails(t *testing.T) {
	body := []byte(`{}`)
	v := newVerifier("")

	// Even a "correct" digest for the empty key fails closed.
	if v.Verify(body, sign(t, "", body)) {
		t.Fatal("unconfigured secret must reject everything")
	}
}

func TestVerify_AbsentHeaderFails(t *testing.T) {
	v := newVerifier(testSecret)
	if v.Verify([]byte(`{}`), "") {
		t.Fatal("absent header must fail")
	}
}

func TestVerify_UndecodableHeaderFails(t *testing.T) {
	v := newVerifier(testSecret)
	if v.Verify([]byte(`{}`), "not*base64!") {
		t.Fatal("undecodable header must fail")
	}
}
