package service

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"ledger-service/internal/domain"
	"ledger-service/internal/errors"
	"ledger-service/internal/ledger"
	"ledger-service/internal/validation"
)

type TransactionService struct {
	store  domain.Store
	logger *slog.Logger
}

func NewTransactionService(store domain.Store, logger *slog.Logger) *TransactionService {
	return &TransactionService{
		store:  store,
		logger: logger,
	}
}

// TransactionRequest carries the raw, unvalidated parameters of a deposit or
// withdrawal reservation.
type TransactionRequest struct {
	AccountID string
	UUID      string
	Currency  string
	Amount    string
}

// Result is the outcome of a public operation. Created is true only when the
// operation inserted a new transaction; an idempotent replay returns the
// existing row with Created false.
type Result struct {
	Transaction *domain.Transaction
	Account     *domain.Account
	Created     bool
}

type normalizedRequest struct {
	accountID int64
	uuid      string
	currency  string
	amount    decimal.Decimal
}

func (s *TransactionService) normalizeRequest(req *TransactionRequest) (*normalizedRequest, error) {
	accountID, appErr := validation.NormalizeAccountID(req.AccountID)
	if appErr != nil {
		return nil, appErr
	}
	uuid, appErr := validation.NormalizeUUID(req.UUID)
	if appErr != nil {
		return nil, appErr
	}
	currency, appErr := validation.NormalizeCurrency(req.Currency)
	if appErr != nil {
		return nil, appErr
	}
	amount, appErr := validation.ParsePositiveAmount(req.Amount)
	if appErr != nil {
		return nil, appErr
	}

	return &normalizedRequest{
		accountID: accountID,
		uuid:      uuid,
		currency:  currency,
		amount:    amount,
	}, nil
}

// Deposit credits an account and records a completed transaction. Replaying
// the same uuid with identical parameters returns the stored transaction
// without touching the balance again.
func (s *TransactionService) Deposit(req *TransactionRequest) (*Result, error) {
	n, err := s.normalizeRequest(req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Processing deposit",
		"account_id", n.accountID, "uuid", n.uuid, "currency", n.currency, "amount", n.amount)

	var result *Result
	err = s.store.WithTransaction(func(tx domain.Store) error {
		account, err := tx.Account().GetAccountForUpdate(n.accountID)
		if err != nil {
			return err
		}
		if account.Currency != n.currency {
			return errors.ErrCurrencyMismatch
		}

		existing, err := tx.Transaction().GetTransactionByUUIDForUpdate(n.uuid)
		if err != nil {
			return err
		}
		if existing != nil {
			if err := matchExistingTransaction(existing, n.accountID, n.currency, n.amount, domain.TypeDeposit); err != nil {
				return err
			}
			result = &Result{Transaction: existing, Account: account, Created: false}
			return nil
		}

		if err := ledger.New(tx.Account()).Credit(account, n.amount); err != nil {
			return err
		}

		transaction := &domain.Transaction{
			AccountID:       account.ID,
			UUID:            n.uuid,
			TransactionType: domain.TypeDeposit,
			Amount:          n.amount,
			Currency:        n.currency,
			Status:          domain.StatusCompleted,
		}
		if err := tx.Transaction().CreateTransaction(transaction); err != nil {
			return err
		}

		result = &Result{Transaction: transaction, Account: account, Created: true}
		return nil
	})

	if err != nil {
		if err == errors.ErrDuplicateUUID {
			return s.replayAfterUniqueViolation(n, domain.TypeDeposit, n.amount)
		}
		s.logger.Error("Deposit failed", "account_id", n.accountID, "uuid", n.uuid, "error", err)
		return nil, err
	}

	s.logger.Info("Deposit processed", "transaction_id", result.Transaction.ID, "created", result.Created)
	return result, nil
}

// ReserveWithdrawal debits an account and records a pending withdrawal. The
// stored amount is negative; its magnitude is the reserved sum.
func (s *TransactionService) ReserveWithdrawal(req *TransactionRequest) (*Result, error) {
	n, err := s.normalizeRequest(req)
	if err != nil {
		return nil, err
	}
	signedAmount := n.amount.Neg()

	s.logger.Info("Processing withdrawal reservation",
		"account_id", n.accountID, "uuid", n.uuid, "currency", n.currency, "amount", n.amount)

	var result *Result
	err = s.store.WithTransaction(func(tx domain.Store) error {
		account, err := tx.Account().GetAccountForUpdate(n.accountID)
		if err != nil {
			return err
		}
		if account.Currency != n.currency {
			return errors.ErrCurrencyMismatch
		}

		existing, err := tx.Transaction().GetTransactionByUUIDForUpdate(n.uuid)
		if err != nil {
			return err
		}
		if existing != nil {
			if err := matchExistingTransaction(existing, n.accountID, n.currency, signedAmount, domain.TypeWithdrawal); err != nil {
				return err
			}
			result = &Result{Transaction: existing, Account: account, Created: false}
			return nil
		}

		if err := ledger.New(tx.Account()).Debit(account, n.amount); err != nil {
			return err
		}

		transaction := &domain.Transaction{
			AccountID:       account.ID,
			UUID:            n.uuid,
			TransactionType: domain.TypeWithdrawal,
			Amount:          signedAmount,
			Currency:        n.currency,
			Status:          domain.StatusPending,
		}
		if err := tx.Transaction().CreateTransaction(transaction); err != nil {
			return err
		}

		result = &Result{Transaction: transaction, Account: account, Created: true}
		return nil
	})

	if err != nil {
		if err == errors.ErrDuplicateUUID {
			return s.replayAfterUniqueViolation(n, domain.TypeWithdrawal, signedAmount)
		}
		s.logger.Error("Withdrawal reservation failed", "account_id", n.accountID, "uuid", n.uuid, "error", err)
		return nil, err
	}

	s.logger.Info("Withdrawal reserved", "transaction_id", result.Transaction.ID, "created", result.Created)
	return result, nil
}

// ConfirmWithdrawal moves a pending withdrawal to completed. The funds were
// already debited at reservation time, so the balance does not change.
func (s *TransactionService) ConfirmWithdrawal(rawUUID string) (*Result, error) {
	uuid, appErr := validation.NormalizeUUID(rawUUID)
	if appErr != nil {
		return nil, appErr
	}

	var result *Result
	err := s.store.WithTransaction(func(tx domain.Store) error {
		transaction, err := tx.Transaction().GetTransactionByUUIDForUpdate(uuid)
		if err != nil {
			return err
		}
		if transaction == nil {
			return errors.ErrWithdrawalNotFound
		}
		if !transaction.IsWithdrawal() {
			return errors.NewAppError(errors.Conflict, "only withdrawal transactions can be confirmed")
		}
		if transaction.Status != domain.StatusPending {
			return errors.NewAppErrorf(errors.Conflict, "cannot confirm transaction in %s status", transaction.Status)
		}

		if err := tx.Transaction().UpdateTransactionStatus(transaction.ID, domain.StatusCompleted); err != nil {
			return err
		}
		transaction, err = tx.Transaction().GetTransactionByUUID(uuid)
		if err != nil {
			return err
		}

		account, err := tx.Account().GetAccount(transaction.AccountID)
		if err != nil {
			return err
		}

		result = &Result{Transaction: transaction, Account: account, Created: false}
		return nil
	})

	if err != nil {
		s.logger.Error("Withdrawal confirmation failed", "uuid", uuid, "error", err)
		return nil, err
	}

	s.logger.Info("Withdrawal confirmed", "transaction_id", result.Transaction.ID)
	return result, nil
}

// CancelWithdrawal moves a pending withdrawal to cancelled and credits the
// reserved funds back. Lock order is account row first, then transaction row
// (the system-wide order); the initial unlocked read only discovers the
// owning account, and the status is re-checked once the locks are held.
func (s *TransactionService) CancelWithdrawal(rawUUID string) (*Result, error) {
	uuid, appErr := validation.NormalizeUUID(rawUUID)
	if appErr != nil {
		return nil, appErr
	}

	var result *Result
	err := s.store.WithTransaction(func(tx domain.Store) error {
		probe, err := tx.Transaction().GetTransactionByUUID(uuid)
		if err != nil {
			return err
		}
		if probe == nil {
			return errors.ErrWithdrawalNotFound
		}
		if !probe.IsWithdrawal() {
			return errors.NewAppError(errors.Conflict, "only withdrawal transactions can be cancelled")
		}

		account, err := tx.Account().GetAccountForUpdate(probe.AccountID)
		if err != nil {
			return err
		}
		transaction, err := tx.Transaction().GetTransactionByUUIDForUpdate(uuid)
		if err != nil {
			return err
		}
		if transaction == nil {
			return errors.ErrWithdrawalNotFound
		}
		if transaction.Status != domain.StatusPending {
			return errors.NewAppErrorf(errors.Conflict, "cannot cancel transaction in %s status", transaction.Status)
		}

		if err := ledger.New(tx.Account()).Credit(account, transaction.Amount.Abs()); err != nil {
			return err
		}
		if err := tx.Transaction().UpdateTransactionStatus(transaction.ID, domain.StatusCancelled); err != nil {
			return err
		}
		transaction, err = tx.Transaction().GetTransactionByUUID(uuid)
		if err != nil {
			return err
		}

		result = &Result{Transaction: transaction, Account: account, Created: false}
		return nil
	})

	if err != nil {
		s.logger.Error("Withdrawal cancellation failed", "uuid", uuid, "error", err)
		return nil, err
	}

	s.logger.Info("Withdrawal cancelled", "transaction_id", result.Transaction.ID)
	return result, nil
}

// replayAfterUniqueViolation is the single recovery path for two requests
// racing on the same fresh uuid. The loser's insert failed and its
// transaction rolled back; re-run the idempotency resolution exactly once
// against the row the winner committed.
func (s *TransactionService) replayAfterUniqueViolation(n *normalizedRequest, transactionType string, signedAmount decimal.Decimal) (*Result, error) {
	s.logger.Info("Recovering from uuid uniqueness race", "uuid", n.uuid)

	existing, err := s.store.Transaction().GetTransactionByUUID(n.uuid)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errors.ErrDuplicateUUID
	}
	if err := matchExistingTransaction(existing, n.accountID, n.currency, signedAmount, transactionType); err != nil {
		return nil, err
	}

	account, err := s.store.Account().GetAccount(existing.AccountID)
	if err != nil {
		return nil, err
	}

	return &Result{Transaction: existing, Account: account, Created: false}, nil
}
