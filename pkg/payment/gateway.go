package payment

import (
	"fmt"
	"sync"

	razorpay "github.com/razorpay/razorpay-go"

	"billdesk/pkg/config"
)

// Gateway wraps the Razorpay client. It is constructed explicitly in main
// and injected into controllers; the underlying SDK client is built lazily
// on first use behind a once-guard so missing credentials surface as an
// error at call time rather than at boot.
type Gateway struct {
	cfg config.RazorpayConfig

	once   sync.Once
	client *razorpay.Client
	err    error
}

func NewGateway(cfg config.RazorpayConfig) *Gateway {
	return &Gateway{cfg: cfg}
}

func (g *Gateway) Client() (*razorpay.Client, error) {
	g.once.Do(func() {
		keyID, keySecret, err := g.cfg.Credentials()
		if err != nil {
			g.err = err
			return
		}
		g.client = razorpay.NewClient(keyID, keySecret)
	})
	return g.client, g.err
}

// CreateOrder registers an order with the gateway and returns its id.
// Notes travel back on the webhook payload and correlate the payment to
// a user and a plan or addon purchase.
func (g *Gateway) CreateOrder(amountPaise int64, receipt string, notes map[string]interface{}) (string, error) {
	client, err := g.Client()
	if err != nil {
		return "", err
	}

	data := map[string]interface{}{
		"amount":   amountPaise,
		"currency": "INR",
		"receipt":  receipt,
		"notes":    notes,
	}

	order, err := client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("could not create gateway order: %w", err)
	}

	orderID, ok := order["id"].(string)
	if !ok {
		return "", fmt.Errorf("gateway order response missing id")
	}
	return orderID, nil
}

// VerifyCallback validates a client-side checkout confirmation against
// the configured key secret.
func (g *Gateway) VerifyCallback(orderID, paymentID, signature string) (bool, error) {
	secret, err := g.cfg.CallbackSecret()
	if err != nil {
		return false, err
	}
	return VerifyPaymentSignature(orderID, paymentID, signature, secret), nil
}

// VerifyWebhook validates a raw webhook body against the webhook secret.
func (g *Gateway) VerifyWebhook(body []byte, signature string) (bool, error) {
	secret, err := g.cfg.WebhookSigningSecret()
	if err != nil {
		return false, err
	}
	return VerifyWebhookSignature(body, signature, secret), nil
}
