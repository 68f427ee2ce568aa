package settlement

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockAdapter implements Adapter for tests and load testing
type MockAdapter struct {
	config       *MockConfig
	transactions sync.Map

	mu          sync.Mutex
	failNext    []string
	failNextOut []string
}

// MockConfig holds configuration for the mock adapter
type MockConfig struct {
	// SuccessRate is the probability of a settled transfer (0.0 to 1.0)
	SuccessRate float64

	// DelayMs is the simulated provider latency in milliseconds
	DelayMs int

	// FailureReasons are the decline codes drawn from on failure
	FailureReasons []string
}

// DefaultMockConfig returns default configuration
func DefaultMockConfig() *MockConfig {
	return &MockConfig{
		SuccessRate: 1.0,
		DelayMs:     0,
		FailureReasons: []string{
			"insufficient_funds",
			"account_frozen",
			"processing_error",
		},
	}
}

// NewMockAdapter creates a new mock adapter
func NewMockAdapter(config *MockConfig) *MockAdapter {
	if config == nil {
		config = DefaultMockConfig()
	}
	if config.SuccessRate < 0 {
		config.SuccessRate = 0
	}
	if config.SuccessRate > 1 {
		config.SuccessRate = 1
	}
	return &MockAdapter{config: config}
}

// FailNext forces the next transfer to be declined with the given reason.
// Queued failures are consumed in order before the success rate applies.
// Tests use this for deterministic decline paths.
func (a *MockAdapter) FailNext(reason string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failNext = append(a.failNext, reason)
}

// FailNextOut forces the next TransferOut to be declined, leaving
// TransferIn calls unaffected
func (a *MockAdapter) FailNextOut(reason string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failNextOut = append(a.failNextOut, reason)
}

// TransferIn collects funds into the platform
func (a *MockAdapter) TransferIn(ctx context.Context, req *TransferRequest) (*Receipt, error) {
	return a.transfer(ctx, req, "in")
}

// TransferOut releases funds to an external account
func (a *MockAdapter) TransferOut(ctx context.Context, req *TransferRequest) (*Receipt, error) {
	return a.transfer(ctx, req, "out")
}

func (a *MockAdapter) transfer(ctx context.Context, req *TransferRequest, direction string) (*Receipt, error) {
	if req == nil {
		return nil, fmt.Errorf("transfer request is required")
	}
	if req.Amount <= 0 {
		return &Receipt{Settled: false, FailureReason: "invalid_amount"}, nil
	}

	if a.config.DelayMs > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(a.config.DelayMs) * time.Millisecond):
		}
	}

	if reason, ok := a.popForcedFailure(direction); ok {
		return &Receipt{Settled: false, FailureReason: reason}, nil
	}

	if rand.Float64() >= a.config.SuccessRate {
		reason := "transfer_declined"
		if len(a.config.FailureReasons) > 0 {
			reason = a.config.FailureReasons[rand.Intn(len(a.config.FailureReasons))]
		}
		return &Receipt{Settled: false, FailureReason: reason}, nil
	}

	transactionID := fmt.Sprintf("mock_txn_%s", uuid.New().String()[:8])
	a.transactions.Store(transactionID, &mockTransaction{
		Reference: req.Reference,
		AccountID: req.AccountID,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Direction: direction,
		CreatedAt: time.Now(),
	})

	return &Receipt{TransactionID: transactionID, Settled: true}, nil
}

func (a *MockAdapter) popForcedFailure(direction string) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if direction == "out" && len(a.failNextOut) > 0 {
		reason := a.failNextOut[0]
		a.failNextOut = a.failNextOut[1:]
		return reason, true
	}
	if len(a.failNext) == 0 {
		return "", false
	}
	reason := a.failNext[0]
	a.failNext = a.failNext[1:]
	return reason, true
}

// Transaction returns a recorded transfer by provider transaction ID
func (a *MockAdapter) Transaction(transactionID string) (amount int64, ok bool) {
	v, ok := a.transactions.Load(transactionID)
	if !ok {
		return 0, false
	}
	return v.(*mockTransaction).Amount, true
}

// Name returns the adapter name
func (a *MockAdapter) Name() string {
	return "mock"
}

type mockTransaction struct {
	Reference string
	AccountID string
	Amount    int64
	Currency  string
	Direction string
	CreatedAt time.Time
}

// Ensure MockAdapter implements Adapter
var _ Adapter = (*MockAdapter)(nil)
