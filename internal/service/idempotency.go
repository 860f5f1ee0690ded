package service

import (
	"github.com/shopspring/decimal"

	"ledger-service/internal/domain"
	"ledger-service/internal/errors"
)

// matchExistingTransaction decides whether a transaction already holding the
// candidate idempotency key is a safe replay of the intended request. Every
// field of the tuple must match exactly, including the sign of the amount;
// any mismatch poisons the key for the new parameters.
func matchExistingTransaction(existing *domain.Transaction, accountID int64, currency string, signedAmount decimal.Decimal, transactionType string) error {
	if existing.AccountID != accountID ||
		existing.Currency != currency ||
		!existing.Amount.Equal(signedAmount) ||
		existing.TransactionType != transactionType {
		return errors.ErrUUIDReused
	}
	return nil
}
