package service

import (
	"time"

	"github.com/shopspring/decimal"

	"ledger-service/internal/domain"
	"ledger-service/internal/errors"
)

// memoryStore is an in-memory domain.Store for unit tests. WithTransaction
// snapshots the maps and restores them when fn fails, mimicking a rollback;
// afterRollback (when set) runs once after a restore to model state another
// caller committed while this transaction was in flight.
type memoryStore struct {
	accounts      map[int64]*domain.Account
	transactions  map[string]*domain.Transaction
	nextAccountID int64
	nextTxID      int64

	createTransactionHook func(*domain.Transaction) error
	afterRollback         func(*memoryStore)
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		accounts:     make(map[int64]*domain.Account),
		transactions: make(map[string]*domain.Transaction),
	}
}

func (s *memoryStore) seedAccount(balance, currency string) *domain.Account {
	s.nextAccountID++
	now := time.Now().UTC()
	account := &domain.Account{
		ID:        s.nextAccountID,
		Balance:   decimal.RequireFromString(balance),
		Currency:  currency,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.accounts[account.ID] = account
	return account
}

func (s *memoryStore) seedTransaction(accountID int64, uuid, txType, amount, status string) *domain.Transaction {
	s.nextTxID++
	now := time.Now().UTC()
	transaction := &domain.Transaction{
		ID:              s.nextTxID,
		AccountID:       accountID,
		UUID:            uuid,
		TransactionType: txType,
		Amount:          decimal.RequireFromString(amount),
		Currency:        s.accounts[accountID].Currency,
		Status:          status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.transactions[uuid] = transaction
	return transaction
}

func (s *memoryStore) snapshot() (map[int64]*domain.Account, map[string]*domain.Transaction) {
	accounts := make(map[int64]*domain.Account, len(s.accounts))
	for id, account := range s.accounts {
		copied := *account
		accounts[id] = &copied
	}
	transactions := make(map[string]*domain.Transaction, len(s.transactions))
	for uuid, transaction := range s.transactions {
		copied := *transaction
		transactions[uuid] = &copied
	}
	return accounts, transactions
}

func (s *memoryStore) Account() domain.AccountRepository { return &memoryAccountRepo{s} }

func (s *memoryStore) Transaction() domain.TransactionRepository {
	return &memoryTransactionRepo{s}
}

func (s *memoryStore) WithTransaction(fn func(domain.Store) error) error {
	accountsBackup, transactionsBackup := s.snapshot()
	if err := fn(s); err != nil {
		s.accounts = accountsBackup
		s.transactions = transactionsBackup
		if s.afterRollback != nil {
			hook := s.afterRollback
			s.afterRollback = nil
			hook(s)
		}
		return err
	}
	return nil
}

type memoryAccountRepo struct {
	store *memoryStore
}

func (r *memoryAccountRepo) CreateAccount(account *domain.Account) error {
	r.store.nextAccountID++
	account.ID = r.store.nextAccountID
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now
	copied := *account
	r.store.accounts[account.ID] = &copied
	return nil
}

func (r *memoryAccountRepo) GetAccount(id int64) (*domain.Account, error) {
	account, ok := r.store.accounts[id]
	if !ok {
		return nil, errors.ErrAccountNotFound
	}
	copied := *account
	return &copied, nil
}

func (r *memoryAccountRepo) GetAccountForUpdate(id int64) (*domain.Account, error) {
	return r.GetAccount(id)
}

func (r *memoryAccountRepo) UpdateAccountBalance(id int64, newBalance decimal.Decimal) error {
	account, ok := r.store.accounts[id]
	if !ok {
		return errors.ErrAccountNotFound
	}
	account.Balance = newBalance
	account.UpdatedAt = time.Now().UTC()
	return nil
}

type memoryTransactionRepo struct {
	store *memoryStore
}

func (r *memoryTransactionRepo) CreateTransaction(tx *domain.Transaction) error {
	if r.store.createTransactionHook != nil {
		hook := r.store.createTransactionHook
		r.store.createTransactionHook = nil
		if err := hook(tx); err != nil {
			return err
		}
	}
	if _, exists := r.store.transactions[tx.UUID]; exists {
		return errors.ErrDuplicateUUID
	}

	r.store.nextTxID++
	tx.ID = r.store.nextTxID
	now := time.Now().UTC()
	tx.CreatedAt = now
	tx.UpdatedAt = now
	copied := *tx
	r.store.transactions[tx.UUID] = &copied
	return nil
}

func (r *memoryTransactionRepo) GetTransactionByUUID(uuid string) (*domain.Transaction, error) {
	transaction, ok := r.store.transactions[uuid]
	if !ok {
		return nil, nil
	}
	copied := *transaction
	return &copied, nil
}

func (r *memoryTransactionRepo) GetTransactionByUUIDForUpdate(uuid string) (*domain.Transaction, error) {
	return r.GetTransactionByUUID(uuid)
}

func (r *memoryTransactionRepo) UpdateTransactionStatus(id int64, status string) error {
	for _, transaction := range r.store.transactions {
		if transaction.ID == id {
			transaction.Status = status
			transaction.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return errors.ErrTransactionNotFound
}

func (r *memoryTransactionRepo) ListTransactionsByAccount(accountID int64, limit int) ([]*domain.Transaction, error) {
	transactions := make([]*domain.Transaction, 0)
	for _, transaction := range r.store.transactions {
		if transaction.AccountID == accountID {
			copied := *transaction
			transactions = append(transactions, &copied)
		}
	}
	// Newest first, as the SQL repository orders by id descending.
	for i := 0; i < len(transactions); i++ {
		for j := i + 1; j < len(transactions); j++ {
			if transactions[j].ID > transactions[i].ID {
				transactions[i], transactions[j] = transactions[j], transactions[i]
			}
		}
	}
	if len(transactions) > limit {
		transactions = transactions[:limit]
	}
	return transactions, nil
}
