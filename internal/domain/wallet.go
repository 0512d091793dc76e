package domain

import "time"

// Wallet holds a user's current credit balance. The balance is the sum of
// all transaction amounts for that user and never goes negative: debits that
// would overdraw are rejected at the storage layer.
type Wallet struct {
	UserID    string
	Balance   int
	UpdatedAt time.Time
}

// Transaction is one append-only ledger entry. Amount is signed: debits are
// negative, credits positive. BalanceAfter records the balance that resulted
// from applying this entry.
type Transaction struct {
	ID           string
	UserID       string
	Amount       int
	Description  string
	BalanceAfter int
	CreatedAt    time.Time
}
