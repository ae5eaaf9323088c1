package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"actiontracker/internal/domain/transaction"
)

// TransactionStoreForOrchestrator defines the store interface needed by transaction orchestrators.
type TransactionStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (transaction.Transaction, error)
	Save(ctx context.Context, t transaction.Transaction) error
	Delete(ctx context.Context, id string) error
}

// RecordTransactionInput carries a revenue event.
type RecordTransactionInput struct {
	UserID      string
	ClientName  string
	Date        string
	AmountCents int64
	Product     string
	Notes       string
}

// TransactionDeps holds dependencies for transaction orchestrators.
type TransactionDeps struct {
	TransactionStore TransactionStoreForOrchestrator
	GenerateID       func() string
	Now              func() time.Time
}

// ExecuteRecordTransaction stores a new transaction.
// PRE: client name set, date valid, amount > 0
func ExecuteRecordTransaction(ctx context.Context, input RecordTransactionInput, deps TransactionDeps) (transaction.Transaction, error) {
	t := transaction.Transaction{
		ID:          deps.GenerateID(),
		UserID:      input.UserID,
		ClientName:  strings.TrimSpace(input.ClientName),
		Date:        input.Date,
		AmountCents: input.AmountCents,
		Product:     input.Product,
		Notes:       input.Notes,
		CreatedAt:   deps.Now(),
	}
	if err := t.Validate(); err != nil {
		return transaction.Transaction{}, err
	}
	if err := deps.TransactionStore.Save(ctx, t); err != nil {
		return transaction.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	slog.Info("transaction_recorded", "transaction_id", t.ID, "user_id", t.UserID, "date", t.Date, "amount_cents", t.AmountCents)
	return t, nil
}

// DeleteTransactionInput identifies a transaction owned by UserID.
type DeleteTransactionInput struct {
	UserID        string
	TransactionID string
}

// ExecuteDeleteTransaction removes one of the user's transactions.
// PRE: transaction owned by input.UserID
func ExecuteDeleteTransaction(ctx context.Context, input DeleteTransactionInput, deps TransactionDeps) error {
	t, err := deps.TransactionStore.GetByID(ctx, input.TransactionID)
	if err != nil {
		return err
	}
	if t.UserID != input.UserID {
		return ErrNotOwner
	}
	if err := deps.TransactionStore.Delete(ctx, t.ID); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	slog.Info("transaction_deleted", "transaction_id", t.ID, "user_id", t.UserID)
	return nil
}
