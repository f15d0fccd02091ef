package repository

import (
	"context"

	"polygreen-backend/internal/features/deposit/models"
)

// DepositStore applies a deposit as one atomic unit: capacity check, user
// balance update, machine fill update and ledger insert either all take
// effect or none do. Implementations must not let two concurrent deposits to
// the same machine or user interleave their read-check-write sequences.
type DepositStore interface {
	Deposit(ctx context.Context, in models.DepositInput) (*models.DepositResult, error)
}

// LedgerRepository reads the append-only transaction ledger.
type LedgerRepository interface {
	HistoryByUser(ctx context.Context, userID string, limit int) ([]*models.Transaction, error)
	HistoryByMachine(ctx context.Context, machineID string) ([]*models.Transaction, error)
	List(ctx context.Context) ([]*models.Transaction, error)
	Count(ctx context.Context) (int64, error)
}

// Repository combines the deposit store with ledger reads; the Postgres
// implementation backs both with the same tables.
type Repository interface {
	DepositStore
	LedgerRepository
}
