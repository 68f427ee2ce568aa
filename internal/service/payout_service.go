package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Amity808/entrytagv1/internal/domain"
	"github.com/Amity808/entrytagv1/internal/repository"
	"github.com/Amity808/entrytagv1/internal/settlement"
	"github.com/Amity808/entrytagv1/pkg/logger"
)

// PayoutService reports earnings from the fee ledger and pushes ad-hoc
// payouts through the settlement adapter
type PayoutService interface {
	// AccountStatement returns the fee entries touching an account
	AccountStatement(ctx context.Context, accountID string) ([]*domain.FeeEntry, error)

	// EventStatement returns the fee entries recorded against an event.
	// Organizer only.
	EventStatement(ctx context.Context, callerID string, eventID int64) ([]*domain.FeeEntry, error)

	// PlatformFees returns the platform's accumulated cut
	PlatformFees(ctx context.Context) (int64, error)

	// Withdraw pushes an amount to the caller's external account
	Withdraw(ctx context.Context, accountID string, amount int64) (*settlement.Receipt, error)
}

type payoutService struct {
	events repository.EventRepository
	fees   repository.FeeRepository
	outbox repository.OutboxRepository
	settle settlement.Adapter
	policy Policy
	now    func() time.Time
}

// NewPayoutService creates a new payout service
func NewPayoutService(events repository.EventRepository, fees repository.FeeRepository, outbox repository.OutboxRepository, settle settlement.Adapter, policy Policy) PayoutService {
	return &payoutService{
		events: events,
		fees:   fees,
		outbox: outbox,
		settle: settle,
		policy: policy,
		now:    time.Now,
	}
}

// AccountStatement returns the fee entries touching an account
func (s *payoutService) AccountStatement(ctx context.Context, accountID string) ([]*domain.FeeEntry, error) {
	return s.fees.ListByAccount(ctx, accountID)
}

// EventStatement returns the fee entries recorded against an event
func (s *payoutService) EventStatement(ctx context.Context, callerID string, eventID int64) ([]*domain.FeeEntry, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != callerID {
		return nil, domain.ErrNotOwner
	}
	return s.fees.ListByEvent(ctx, eventID)
}

// PlatformFees returns the platform's accumulated cut
func (s *payoutService) PlatformFees(ctx context.Context) (int64, error) {
	return s.fees.TotalFees(ctx)
}

// payableBalance sums an account's withdrawable balance from the ledger:
// sale payouts credited to it minus withdrawals already settled.
func (s *payoutService) payableBalance(ctx context.Context, accountID string) (int64, error) {
	entries, err := s.fees.ListByAccount(ctx, accountID)
	if err != nil {
		return 0, err
	}
	var balance int64
	for _, entry := range entries {
		balance += entry.PayableTo(accountID)
	}
	return balance, nil
}

// Withdraw pushes an amount to the caller's external account. The amount is
// checked against the payable balance before any money moves, and a settled
// withdrawal is recorded as a debiting payout entry.
func (s *payoutService) Withdraw(ctx context.Context, accountID string, amount int64) (*settlement.Receipt, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: withdrawal must be positive", domain.ErrInvalidAmount)
	}

	balance, err := s.payableBalance(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if amount > balance {
		return nil, fmt.Errorf("%w: requested %d, payable %d", domain.ErrInsufficientBalance, amount, balance)
	}

	now := s.now()
	reference := uuid.New().String()
	receipt, err := s.settle.TransferOut(ctx, &settlement.TransferRequest{
		Reference:   reference,
		AccountID:   accountID,
		Amount:      amount,
		Currency:    s.policy.Currency,
		Description: "ledger withdrawal",
	})
	if err != nil {
		return nil, err
	}
	if !receipt.Settled {
		return nil, fmt.Errorf("%w: %s", domain.ErrPaymentFailed, receipt.FailureReason)
	}

	entry, err := domain.NewPayoutEntry(accountID, amount, receipt.TransactionID, s.policy.Currency, now)
	if err != nil {
		return nil, err
	}
	if err := s.fees.Create(ctx, entry); err != nil {
		// money already moved; claw it back so the ledger stays authoritative
		if _, clawErr := s.settle.TransferIn(ctx, &settlement.TransferRequest{
			Reference:   reference + ":clawback",
			AccountID:   accountID,
			Amount:      amount,
			Currency:    s.policy.Currency,
			Description: "withdrawal rollback clawback",
		}); clawErr != nil {
			logger.Get().Error("withdrawal clawback failed",
				zap.String("account_id", accountID),
				zap.Int64("amount", amount),
				zap.Error(clawErr))
			return nil, fmt.Errorf("%w: unrecorded withdrawal: %v", domain.ErrIntegrity, err)
		}
		return nil, err
	}

	logger.Get().Info("withdrawal settled",
		zap.String("account_id", accountID),
		zap.Int64("amount", amount),
		zap.String("transaction_id", receipt.TransactionID))

	stageOutbox(ctx, s.outbox, s.policy.OutboxTopic, accountID, domain.EventTypePayoutRequested, map[string]any{
		"account_id":     accountID,
		"amount":         amount,
		"transaction_id": receipt.TransactionID,
	}, now)

	return receipt, nil
}
