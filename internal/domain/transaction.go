package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"

	TypeDeposit    = "deposit"
	TypeWithdrawal = "withdrawal"
)

// Transaction is a single ledger entry against one account. Deposits carry a
// positive amount and are completed on creation; withdrawals carry a negative
// amount (magnitude = reserved funds) and start out pending.
type Transaction struct {
	ID              int64           `json:"id"`
	AccountID       int64           `json:"account_id"`
	UUID            string          `json:"uuid"`
	TransactionType string          `json:"transaction_type"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (t *Transaction) IsWithdrawal() bool {
	return t.TransactionType == TypeWithdrawal
}

// IsTerminal reports whether the transaction reached a status that permits
// no further transition.
func (t *Transaction) IsTerminal() bool {
	return t.Status == StatusCompleted || t.Status == StatusCancelled
}

type TransactionRepository interface {
	CreateTransaction(tx *Transaction) error
	GetTransactionByUUID(uuid string) (*Transaction, error)
	GetTransactionByUUIDForUpdate(uuid string) (*Transaction, error)
	UpdateTransactionStatus(id int64, status string) error
	ListTransactionsByAccount(accountID int64, limit int) ([]*Transaction, error)
}
