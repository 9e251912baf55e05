package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifyPaymentSignature checks a checkout callback signature:
// HMAC-SHA256(secret, orderID + "|" + paymentID) hex-encoded.
// Any mismatch is a hard rejection.
func VerifyPaymentSignature(orderID, paymentID, signature, secret string) bool {
	return verify([]byte(orderID+"|"+paymentID), signature, secret)
}

// VerifyWebhookSignature checks a server-to-server webhook signature,
// which signs the raw request body instead of the concatenated ids.
func VerifyWebhookSignature(body []byte, signature, secret string) bool {
	return verify(body, signature, secret)
}

func verify(payload []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	expected := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
