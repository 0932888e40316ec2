package httpapi

import "testing"

func TestVerifySignature(t *testing.T) {
	t.Parallel()

	secret := []byte("hook-secret")
	body := []byte(`{"title":"Group"}`)
	signature := SignPayload(secret, body)

	if err := verifySignature(secret, body, signature); err != nil {
		t.Fatalf("valid signature rejected: %v", err)
	}
	if err := verifySignature(secret, body, "sha256="+signature); err != nil {
		t.Fatalf("prefixed signature rejected: %v", err)
	}
	if err := verifySignature(secret, []byte(`{"title":"Tampered"}`), signature); err == nil {
		t.Fatal("expected tampered body to be rejected")
	}
	if err := verifySignature(secret, body, "not-hex"); err == nil {
		t.Fatal("expected malformed signature to be rejected")
	}
	if err := verifySignature(secret, body, ""); err == nil {
		t.Fatal("expected missing signature to be rejected")
	}
	if err := verifySignature(nil, body, signature); err == nil {
		t.Fatal("expected unconfigured secret to be rejected")
	}
}
