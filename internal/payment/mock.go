package payment

import (
	"context"
	"time"

	"github.com/cinetick/cinetick/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const mockGatewayDelay = 150 * time.Millisecond

// MockGateway stands in for a real payment processor. Every charge and refund
// succeeds after an artificial delay, keeping the latency profile of the
// booking transaction realistic without an external dependency.
type MockGateway struct {
	delay time.Duration
}

func NewMockGateway() *MockGateway {
	return &MockGateway{delay: mockGatewayDelay}
}

func (g *MockGateway) Name() string {
	return "mock"
}

func (g *MockGateway) Charge(ctx context.Context, req domain.ChargeRequest) (*domain.ChargeResult, error) {
	if err := g.wait(ctx); err != nil {
		return nil, err
	}

	return &domain.ChargeResult{
		TransactionID: "txn_" + uuid.New().String(),
		Receipt:       "rcpt_" + uuid.New().String(),
		Status:        domain.PaymentStatusSucceeded,
	}, nil
}

func (g *MockGateway) Refund(
	ctx context.Context,
	transactionID string,
	amount decimal.Decimal) (*domain.RefundResult, error) {

	if err := g.wait(ctx); err != nil {
		return nil, err
	}

	return &domain.RefundResult{
		RefundID: "re_" + uuid.New().String(),
		Status:   domain.RefundStatusSucceeded,
	}, nil
}

func (g *MockGateway) wait(ctx context.Context) error {
	timer := time.NewTimer(g.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
