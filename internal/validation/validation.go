package validation

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"ledger-service/internal/errors"
)

var (
	currencyFormat = regexp.MustCompile(`^[A-Z]{3}$`)
	amountFormat   = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

	// MaxMoney is the largest absolute value any stored amount or balance
	// may take (NUMERIC(20,2) in the schema).
	MaxMoney = decimal.RequireFromString("999999999999999999.99")
)

// NormalizeAccountID parses a raw account id into a positive integer.
func NormalizeAccountID(raw string) (int64, *errors.AppError) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, errors.NewAppError(errors.ValidationError, "account_id must be an integer")
	}
	if id <= 0 {
		return 0, errors.NewAppError(errors.ValidationError, "account_id must be positive")
	}
	return id, nil
}

// NormalizeUUID trims an idempotency key and checks its length bounds.
// The key is opaque: any non-empty string up to 128 characters is accepted.
func NormalizeUUID(raw string) (string, *errors.AppError) {
	uuid := strings.TrimSpace(raw)
	if uuid == "" {
		return "", errors.NewAppError(errors.ValidationError, "uuid is required")
	}
	if len(uuid) > 128 {
		return "", errors.NewAppError(errors.ValidationError, "uuid is too long")
	}
	return uuid, nil
}

// NormalizeCurrency upper-cases and validates a 3-letter ISO currency code.
func NormalizeCurrency(raw string) (string, *errors.AppError) {
	currency := strings.ToUpper(strings.TrimSpace(raw))
	if !currencyFormat.MatchString(currency) {
		return "", errors.NewAppError(errors.ValidationError, "currency must be a 3-letter ISO code")
	}
	return currency, nil
}

// ParsePositiveAmount parses a monetary amount with up to two decimals.
// The parsed value must be strictly positive and within the money range.
func ParsePositiveAmount(raw string) (decimal.Decimal, *errors.AppError) {
	amountStr := strings.TrimSpace(raw)
	if !amountFormat.MatchString(amountStr) {
		return decimal.Zero, errors.NewAppError(errors.ValidationError, "amount must be a positive number with up to 2 decimals")
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return decimal.Zero, errors.NewAppError(errors.ValidationError, "amount must be a positive number with up to 2 decimals")
	}
	if !amount.IsPositive() {
		return decimal.Zero, errors.NewAppError(errors.ValidationError, "amount must be greater than 0")
	}
	if appErr := EnsureMoneyRange(amount, "amount"); appErr != nil {
		return decimal.Zero, appErr
	}
	return amount, nil
}

// ParseInitialBalance parses an account's opening balance. Zero is allowed.
func ParseInitialBalance(raw string) (decimal.Decimal, *errors.AppError) {
	balanceStr := strings.TrimSpace(raw)
	if !amountFormat.MatchString(balanceStr) {
		return decimal.Zero, errors.NewAppError(errors.ValidationError, "balance must be a non-negative number with up to 2 decimals")
	}

	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return decimal.Zero, errors.NewAppError(errors.ValidationError, "balance must be a non-negative number with up to 2 decimals")
	}
	if appErr := EnsureMoneyRange(balance, "balance"); appErr != nil {
		return decimal.Zero, appErr
	}
	return balance, nil
}

// EnsureMoneyRange rejects values whose absolute value exceeds MaxMoney.
func EnsureMoneyRange(value decimal.Decimal, fieldName string) *errors.AppError {
	if value.Abs().GreaterThan(MaxMoney) {
		return errors.NewAppErrorf(errors.ValidationError, "%s exceeds maximum supported value", fieldName)
	}
	return nil
}

// FormatAmount renders a monetary value with exactly two fraction digits.
func FormatAmount(value decimal.Decimal) string {
	return value.StringFixed(2)
}
