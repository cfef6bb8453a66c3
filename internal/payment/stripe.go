package payment

import (
	"context"

	"github.com/cinetick/cinetick/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/refund"
)

// StripeGateway charges through Stripe PaymentIntents. It satisfies the same
// interface as the mock, so swapping it in is a wiring change only.
type StripeGateway struct{}

func NewStripeGateway(secretKey string) *StripeGateway {
	stripe.Key = secretKey

	return &StripeGateway{}
}

func (g *StripeGateway) Name() string {
	return "stripe"
}

func (g *StripeGateway) Charge(ctx context.Context, req domain.ChargeRequest) (*domain.ChargeResult, error) {
	params := &stripe.PaymentIntentParams{
		Params: stripe.Params{
			Context: ctx,
			Metadata: map[string]string{
				"booking_reference": req.Reference,
			},
		},
		Amount:             stripe.Int64(toCents(req.Amount)),
		Currency:           stripe.String(req.Currency),
		PaymentMethodTypes: stripe.StringSlice([]string{req.Method}),
		ReceiptEmail:       stripe.String(req.UserEmail),
		Confirm:            stripe.Bool(true),
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, err
	}

	status := domain.PaymentStatusFailed
	if intent.Status == stripe.PaymentIntentStatusSucceeded {
		status = domain.PaymentStatusSucceeded
	}

	return &domain.ChargeResult{
		TransactionID: intent.ID,
		Receipt:       intent.ClientSecret,
		Status:        status,
	}, nil
}

func (g *StripeGateway) Refund(
	ctx context.Context,
	transactionID string,
	amount decimal.Decimal) (*domain.RefundResult, error) {

	params := &stripe.RefundParams{
		Params:        stripe.Params{Context: ctx},
		PaymentIntent: stripe.String(transactionID),
		Amount:        stripe.Int64(toCents(amount)),
	}

	res, err := refund.New(params)
	if err != nil {
		return nil, err
	}

	status := domain.RefundStatusFailed
	if res.Status == stripe.RefundStatusSucceeded || res.Status == stripe.RefundStatusPending {
		status = domain.RefundStatusSucceeded
	}

	return &domain.RefundResult{
		RefundID: res.ID,
		Status:   status,
	}, nil
}

func toCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).IntPart()
}
