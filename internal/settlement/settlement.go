// Package settlement moves value between external accounts on behalf of the
// ledger. The ledger never holds balances itself; every sale and payout is
// delegated to an Adapter and recorded against the receipt it returns.
package settlement

import "context"

// TransferRequest describes a single movement of value. Amount is in minor
// currency units.
type TransferRequest struct {
	// Reference is the ledger-side idempotency handle for this transfer
	Reference string

	// AccountID is the external account money moves from (TransferIn) or
	// to (TransferOut)
	AccountID string

	Amount   int64
	Currency string

	// Description is forwarded to the provider for statement purposes
	Description string

	Metadata map[string]string
}

// Receipt is the provider's answer to a transfer request
type Receipt struct {
	// TransactionID is the provider-side handle, present on success
	TransactionID string

	Settled bool

	// FailureReason carries the provider's decline code when not settled
	FailureReason string
}

// Adapter abstracts the settlement provider. A declined transfer is a
// (Receipt{Settled: false}, nil) return; an error return means the provider
// could not be reached and the outcome is unknown.
type Adapter interface {
	// TransferIn collects funds from an external account into the platform
	TransferIn(ctx context.Context, req *TransferRequest) (*Receipt, error)

	// TransferOut releases funds from the platform to an external account
	TransferOut(ctx context.Context, req *TransferRequest) (*Receipt, error)

	// Name identifies the provider
	Name() string
}
