package domain

// Store is the unit-of-work handed to orchestrators. WithTransaction runs fn
// against a store whose repositories share one database transaction; every
// read and write inside commits together or not at all.
type Store interface {
	Account() AccountRepository
	Transaction() TransactionRepository
	WithTransaction(fn func(Store) error) error
}
