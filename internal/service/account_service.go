package service

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"ledger-service/internal/domain"
	"ledger-service/internal/errors"
	"ledger-service/internal/validation"
)

type AccountService struct {
	store  domain.Store
	logger *slog.Logger
}

func NewAccountService(store domain.Store, logger *slog.Logger) *AccountService {
	return &AccountService{
		store:  store,
		logger: logger,
	}
}

// CreateAccount provisions a new account. The balance defaults to zero when
// the request omits it; the id is assigned by the store.
func (s *AccountService) CreateAccount(rawCurrency, rawBalance string) (*domain.Account, error) {
	currency, appErr := validation.NormalizeCurrency(rawCurrency)
	if appErr != nil {
		return nil, appErr
	}

	balance := decimal.Zero
	if rawBalance != "" {
		balance, appErr = validation.ParseInitialBalance(rawBalance)
		if appErr != nil {
			return nil, appErr
		}
	}

	s.logger.Info("Creating account", "currency", currency, "initial_balance", balance)

	account := &domain.Account{
		Balance:  balance,
		Currency: currency,
	}
	if err := s.store.Account().CreateAccount(account); err != nil {
		return nil, err
	}

	return account, nil
}

func (s *AccountService) GetAccount(rawAccountID string) (*domain.Account, error) {
	accountID, appErr := validation.NormalizeAccountID(rawAccountID)
	if appErr != nil {
		return nil, appErr
	}

	return s.store.Account().GetAccount(accountID)
}

const (
	defaultTransactionLimit = 100
	maxTransactionLimit     = 1000
)

// ListTransactions returns the account's transactions, newest first. The
// limit is clamped to [1, maxTransactionLimit].
func (s *AccountService) ListTransactions(rawAccountID string, limit int) ([]*domain.Transaction, error) {
	accountID, appErr := validation.NormalizeAccountID(rawAccountID)
	if appErr != nil {
		return nil, appErr
	}

	if limit <= 0 {
		limit = defaultTransactionLimit
	}
	if limit > maxTransactionLimit {
		limit = maxTransactionLimit
	}

	if _, err := s.store.Account().GetAccount(accountID); err != nil {
		return nil, err
	}

	return s.store.Transaction().ListTransactionsByAccount(accountID, limit)
}

// GetTransaction looks up a single transaction by its idempotency key.
func (s *AccountService) GetTransaction(rawUUID string) (*domain.Transaction, error) {
	uuid, appErr := validation.NormalizeUUID(rawUUID)
	if appErr != nil {
		return nil, appErr
	}

	transaction, err := s.store.Transaction().GetTransactionByUUID(uuid)
	if err != nil {
		return nil, err
	}
	if transaction == nil {
		return nil, errors.ErrTransactionNotFound
	}
	return transaction, nil
}
