package repository

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"ledger-service/internal/domain"
	"ledger-service/internal/errors"
)

type transactionRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewTransactionRepository(db SQLExecutor, logger *slog.Logger) domain.TransactionRepository {
	return &transactionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *transactionRepository) CreateTransaction(tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions
		(account_id, uuid, transaction_type, amount, currency, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	now := time.Now().UTC()
	err := r.db.QueryRow(
		query,
		tx.AccountID,
		tx.UUID,
		tx.TransactionType,
		tx.Amount.String(),
		tx.Currency,
		tx.Status,
		now,
		now,
	).Scan(&tx.ID)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				if pqErr.Constraint == "idx_transactions_uuid" {
					r.logger.Warn("Duplicate transaction uuid", "uuid", tx.UUID)
					return errors.ErrDuplicateUUID
				}
			}
		}
		r.logger.Error("Failed to create transaction",
			"account_id", tx.AccountID,
			"uuid", tx.UUID,
			"transaction_type", tx.TransactionType,
			"amount", tx.Amount,
			"error", err)
		return errors.NewAppError(errors.StorageError, "failed to create transaction").WithDetails(err.Error())
	}

	tx.CreatedAt = now
	tx.UpdatedAt = now
	r.logger.Info("Transaction created successfully", "transaction_id", tx.ID, "uuid", tx.UUID)
	return nil
}

// GetTransactionByUUID returns the transaction holding the given idempotency
// key, or nil when no such row exists.
func (r *transactionRepository) GetTransactionByUUID(uuid string) (*domain.Transaction, error) {
	query := `
		SELECT id, account_id, uuid, transaction_type, amount, currency, status, created_at, updated_at
		FROM transactions WHERE uuid = $1
	`

	return r.scanTransaction(query, uuid)
}

// GetTransactionByUUIDForUpdate is GetTransactionByUUID with the row locked
// for the duration of the caller's enclosing transaction.
func (r *transactionRepository) GetTransactionByUUIDForUpdate(uuid string) (*domain.Transaction, error) {
	query := `
		SELECT id, account_id, uuid, transaction_type, amount, currency, status, created_at, updated_at
		FROM transactions WHERE uuid = $1 FOR UPDATE
	`

	return r.scanTransaction(query, uuid)
}

func (r *transactionRepository) scanTransaction(query string, args ...interface{}) (*domain.Transaction, error) {
	row := r.db.QueryRow(query, args...)

	transaction, err := r.scanTransactionRow(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get transaction", "args", args, "error", err)
		return nil, errors.NewAppError(errors.StorageError, "failed to get transaction").WithDetails(err.Error())
	}

	return transaction, nil
}

func (r *transactionRepository) scanTransactionRow(scan func(dest ...interface{}) error) (*domain.Transaction, error) {
	var transaction domain.Transaction
	var amountStr string

	err := scan(
		&transaction.ID,
		&transaction.AccountID,
		&transaction.UUID,
		&transaction.TransactionType,
		&amountStr,
		&transaction.Currency,
		&transaction.Status,
		&transaction.CreatedAt,
		&transaction.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, err
	}
	transaction.Amount = amount

	return &transaction, nil
}

func (r *transactionRepository) UpdateTransactionStatus(id int64, status string) error {
	query := `UPDATE transactions SET status = $1, updated_at = $2 WHERE id = $3`

	_, err := r.db.Exec(query, status, time.Now().UTC(), id)
	if err != nil {
		r.logger.Error("Failed to update transaction status",
			"transaction_id", id, "status", status, "error", err)
		return errors.NewAppError(errors.StorageError, "failed to update transaction status").WithDetails(err.Error())
	}

	r.logger.Info("Transaction status updated", "transaction_id", id, "status", status)
	return nil
}

func (r *transactionRepository) ListTransactionsByAccount(accountID int64, limit int) ([]*domain.Transaction, error) {
	query := `
		SELECT id, account_id, uuid, transaction_type, amount, currency, status, created_at, updated_at
		FROM transactions WHERE account_id = $1
		ORDER BY id DESC
		LIMIT $2
	`

	rows, err := r.db.Query(query, accountID, limit)
	if err != nil {
		r.logger.Error("Failed to list transactions", "account_id", accountID, "error", err)
		return nil, errors.NewAppError(errors.StorageError, "failed to list transactions").WithDetails(err.Error())
	}
	defer rows.Close()

	transactions := make([]*domain.Transaction, 0)
	for rows.Next() {
		transaction, err := r.scanTransactionRow(rows.Scan)
		if err != nil {
			return nil, errors.NewAppError(errors.StorageError, "failed to scan transaction").WithDetails(err.Error())
		}
		transactions = append(transactions, transaction)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewAppError(errors.StorageError, "failed to list transactions").WithDetails(err.Error())
	}

	return transactions, nil
}
