package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// OutcomeKind tags the result of a hosted checkout invocation.
type OutcomeKind string

const (
	OutcomeSuccess OutcomeKind = "success"
	OutcomePending OutcomeKind = "pending"
	OutcomeError   OutcomeKind = "error"
	// OutcomeClosed means the user dismissed the popup without completing;
	// the payment keeps whatever status it had before.
	OutcomeClosed OutcomeKind = "closed"
)

// Outcome is the tagged result of a checkout attempt. Payload carries the
// gateway's callback body for success/pending/error; it is empty for closed.
type Outcome struct {
	Kind    OutcomeKind     `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Transaction is the server's answer to a transaction-creation call.
type Transaction struct {
	SnapToken   string `json:"snap_token"`
	RedirectURL string `json:"redirect_url"`
	OrderID     string `json:"order_id"`
}

// TokenSource creates a gateway transaction for a payment and returns the
// checkout credential.
type TokenSource interface {
	CreateTransaction(ctx context.Context, paymentID string) (*Transaction, error)
}

// Popup opens the gateway's hosted checkout with a snap token and reports
// how it concluded.
type Popup interface {
	Open(ctx context.Context, token string) (Outcome, error)
}

var (
	// ErrNotReady is returned before any network call when the SDK handle
	// is not ready yet; the caller should retry after EnsureReady.
	ErrNotReady = errors.New("checkout: gateway SDK is not ready")
	ErrNoToken  = errors.New("checkout: gateway returned no snap token")
)

// Invoker drives one checkout attempt end to end: guard on SDK readiness,
// create the transaction, open the popup. None of the outcomes mutate the
// payment; the authoritative status change arrives via the webhook, so the
// caller must re-fetch payment state after success or pending.
type Invoker struct {
	loader *Loader
	tokens TokenSource
	popup  Popup
}

func NewInvoker(loader *Loader, tokens TokenSource, popup Popup) *Invoker {
	return &Invoker{loader: loader, tokens: tokens, popup: popup}
}

// Pay runs a checkout attempt for the given payment.
func (inv *Invoker) Pay(ctx context.Context, paymentID string) (Outcome, error) {
	if inv.loader.State() != LoaderStateReady {
		return Outcome{}, ErrNotReady
	}

	txn, err := inv.tokens.CreateTransaction(ctx, paymentID)
	if err != nil {
		return Outcome{}, fmt.Errorf("create transaction: %w", err)
	}
	if txn == nil || txn.SnapToken == "" {
		return Outcome{}, ErrNoToken
	}

	return inv.popup.Open(ctx, txn.SnapToken)
}
