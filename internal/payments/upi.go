package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vigneshnair/bazaarly-backend/pkg/config"
	pkgerrors "github.com/vigneshnair/bazaarly-backend/pkg/errors"
)

// LinkBuilder renders UPI deep links a customer's payment app can open.
type LinkBuilder struct {
	payeeVPA  string
	payeeName string
}

func NewLinkBuilder(cfg config.UPIConfig) (*LinkBuilder, error) {
	if strings.TrimSpace(cfg.PayeeVPA) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "upi payee vpa is not configured")
	}
	return &LinkBuilder{payeeVPA: cfg.PayeeVPA, payeeName: cfg.PayeeName}, nil
}

// Build returns a upi://pay deep link for the given amount. The
// transaction reference ties the eventual callback back to the intent.
func (b *LinkBuilder) Build(amount decimal.Decimal, transactionRef, note string) string {
	params := url.Values{}
	params.Set("pa", b.payeeVPA)
	if b.payeeName != "" {
		params.Set("pn", b.payeeName)
	}
	params.Set("am", amount.StringFixed(2))
	params.Set("cu", "INR")
	params.Set("tr", transactionRef)
	if note != "" {
		params.Set("tn", note)
	}
	return "upi://pay?" + params.Encode()
}

// Verifier checks gateway callback signatures. Gateways sign the pair
// "<order_id>|<payment_id>" with HMAC-SHA256 over a shared secret and
// send the hex digest alongside the callback.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify recomputes the expected digest and compares in constant time.
func (v *Verifier) Verify(orderID, paymentID, signature string) bool {
	if len(v.secret) == 0 || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}
