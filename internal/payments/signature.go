package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignatureHeader carries the provider's webhook signature.
const SignatureHeader = "X-Razorpay-Signature"

// ValidSignature reports whether sig equals the hex-encoded HMAC-SHA256 of
// the exact raw body bytes keyed by secret. The comparison is constant time.
func ValidSignature(secret string, body []byte, sig string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(sig))
}
