package httpapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	apperrors "github.com/parishlabs/lifelines/internal/platform/errors"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw webhook body.
const SignatureHeader = "X-Intake-Signature"

// SignPayload computes the hex HMAC-SHA256 signature for a body. Intake
// partners sign with the shared secret; tests and tooling reuse it.
func SignPayload(secret []byte, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// verifySignature checks a webhook signature against the raw body using a
// constant-time compare.
func verifySignature(secret []byte, body []byte, signature string) error {
	if len(secret) == 0 {
		return apperrors.New(apperrors.CodeWebhookBadSignature, "webhook secret is not configured")
	}
	signature = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(signature), "sha256="))
	provided, err := hex.DecodeString(signature)
	if err != nil || len(provided) == 0 {
		return apperrors.New(apperrors.CodeWebhookBadSignature, "webhook signature is malformed")
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	if !hmac.Equal(provided, mac.Sum(nil)) {
		return apperrors.New(apperrors.CodeWebhookBadSignature, "webhook signature mismatch")
	}
	return nil
}
