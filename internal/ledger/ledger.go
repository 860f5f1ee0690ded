// Package ledger owns account balance mutations. Credit and Debit are the
// only code paths that change a balance; callers must already hold the
// account row lock through the enclosing transaction.
package ledger

import (
	"github.com/shopspring/decimal"

	"ledger-service/internal/domain"
	"ledger-service/internal/errors"
	"ledger-service/internal/validation"
)

type Ledger struct {
	accounts domain.AccountRepository
}

func New(accounts domain.AccountRepository) *Ledger {
	return &Ledger{accounts: accounts}
}

// Credit adds amount to the account balance. The new balance is computed
// first and only then range-checked, so an in-range amount whose sum
// overflows is rejected after computation.
func (l *Ledger) Credit(account *domain.Account, amount decimal.Decimal) error {
	newBalance := account.Balance.Add(amount)
	if appErr := validation.EnsureMoneyRange(newBalance, "balance"); appErr != nil {
		return appErr
	}

	if err := l.accounts.UpdateAccountBalance(account.ID, newBalance); err != nil {
		return err
	}

	account.Balance = newBalance
	return nil
}

// Debit subtracts amount from the account balance. The balance is checked
// under the caller's row lock, so no interleaved read can observe a stale
// value; the balance never goes negative.
func (l *Ledger) Debit(account *domain.Account, amount decimal.Decimal) error {
	if account.Balance.LessThan(amount) {
		return errors.ErrInsufficientFunds
	}

	newBalance := account.Balance.Sub(amount)
	if err := l.accounts.UpdateAccountBalance(account.ID, newBalance); err != nil {
		return err
	}

	account.Balance = newBalance
	return nil
}
