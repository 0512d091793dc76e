package repo

import (
	"context"
	"fmt"

	"contentforge/internal/domain"
	"contentforge/internal/infra"
	"contentforge/internal/sqlinline"
)

// WalletLedgerPG implements domain.WalletLedger. The debit statement checks
// balance >= amount inside the row update itself, so two jobs settling
// simultaneously for the same user cannot drive the balance negative.
type WalletLedgerPG struct {
	sql infra.SQLExecutor
}

func NewWalletLedger(sqlx infra.SQLExecutor) *WalletLedgerPG {
	return &WalletLedgerPG{sql: sqlx}
}

func (r *WalletLedgerPG) Balance(ctx context.Context, userID string) (int, error) {
	var balance int
	if err := r.sql.QueryRow(ctx, sqlinline.QSelectWalletBalance, userID).Scan(&balance); err != nil {
		return 0, fmt.Errorf("read wallet balance: %w", err)
	}
	return balance, nil
}

func (r *WalletLedgerPG) Debit(ctx context.Context, userID string, amount int, description string) (*domain.Transaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("debit amount must be positive, got %d", amount)
	}
	tx, err := scanTransaction(r.sql.QueryRow(ctx, sqlinline.QDebitWallet, userID, amount, description))
	if err != nil {
		if infra.IsNoRows(err) {
			// The conditional decrement matched no row: balance short.
			return nil, domain.ErrInsufficientCredits
		}
		return nil, fmt.Errorf("debit wallet: %w", err)
	}
	return tx, nil
}

func (r *WalletLedgerPG) Credit(ctx context.Context, userID string, amount int, description string) (*domain.Transaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("credit amount must be positive, got %d", amount)
	}
	tx, err := scanTransaction(r.sql.QueryRow(ctx, sqlinline.QCreditWallet, userID, amount, description))
	if err != nil {
		return nil, fmt.Errorf("credit wallet: %w", err)
	}
	return tx, nil
}

func (r *WalletLedgerPG) Transactions(ctx context.Context, userID string, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.sql.Query(ctx, sqlinline.QListWalletTransactions, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list wallet transactions: %w", err)
	}
	defer rows.Close()

	var items []domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *tx)
	}
	return items, rows.Err()
}

func scanTransaction(row interface{ Scan(...any) error }) (*domain.Transaction, error) {
	var tx domain.Transaction
	err := row.Scan(&tx.ID, &tx.UserID, &tx.Amount, &tx.Description, &tx.BalanceAfter, &tx.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

var _ domain.WalletLedger = (*WalletLedgerPG)(nil)
