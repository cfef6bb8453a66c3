package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// ChargeRequest describes one charge against a payment gateway. Reference is
// the booking reference group the charge pays for and ends up on the receipt.
type ChargeRequest struct {
	Amount    decimal.Decimal
	Currency  string
	Method    string
	Reference string
	UserEmail string
}

type ChargeResult struct {
	TransactionID string
	Receipt       string
	Status        PaymentStatus
}

type RefundResult struct {
	RefundID string
	Status   RefundStatus
}

// PaymentGateway is the seam between the booking core and the payment
// processor. The mock implementation always succeeds; the Stripe one talks to
// the real API. The booking core never depends on which one is wired in.
type PaymentGateway interface {
	Name() string
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	Refund(ctx context.Context, transactionID string, amount decimal.Decimal) (*RefundResult, error)
}
