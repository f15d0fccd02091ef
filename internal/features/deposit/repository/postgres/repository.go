package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "polygreen-backend/internal/common/errors"
	"polygreen-backend/internal/features/deposit/models"
	"polygreen-backend/internal/features/deposit/repository"
)

const uniqueViolation = "23505"

// errDepositKeyRace marks a ledger insert that lost a same-key race: a
// concurrent deposit committed the key between our duplicate check and our
// insert.
var errDepositKeyRace = errors.New("deposit key committed concurrently")

type postgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository returns a store implementing both the atomic deposit
// operation and the ledger queries.
func NewPostgresRepository(db *pgxpool.Pool) repository.Repository {
	return &postgresRepository{db: db}
}

// Deposit runs the whole reconciliation inside one database transaction.
//
// Two concurrent first-time deposits can carry the same key while locking
// disjoint machine/user rows; the loser's insert then trips the unique index
// after the winner commits. One rerun finds the committed row and returns
// the duplicate result.
func (r *postgresRepository) Deposit(ctx context.Context, in models.DepositInput) (*models.DepositResult, error) {
	result, err := r.deposit(ctx, in)
	if errors.Is(err, errDepositKeyRace) {
		result, err = r.deposit(ctx, in)
	}
	if errors.Is(err, errDepositKeyRace) {
		return nil, apperrors.NewDatabaseError("insert ledger entry", err)
	}
	return result, err
}

// deposit is a single attempt at the reconciliation transaction.
//
// Lock order is fixed: machine row first, then user row. Every deposit takes
// locks in this order, so two deposits touching the same pair cannot
// deadlock, and deposits to different machines and users never block each
// other. All reads of post-deposit values come from the same transaction's
// RETURNING clauses; there is no second read after commit.
func (r *postgresRepository) deposit(ctx context.Context, in models.DepositInput) (*models.DepositResult, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeTransactionFailed, "failed to begin deposit transaction")
	}
	defer tx.Rollback(ctx)

	var machine models.MachineState
	err = tx.QueryRow(ctx, `
		SELECT current_bottles, max_capacity, total_bottles
		FROM machines
		WHERE machine_id = $1
		FOR UPDATE
	`, in.MachineID).Scan(&machine.Current, &machine.Capacity, &machine.Total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewMachineNotFoundError(in.MachineID)
		}
		return nil, apperrors.NewDatabaseError("lock machine", err)
	}

	var user models.UserState
	err = tx.QueryRow(ctx, `
		SELECT points, bottles
		FROM users
		WHERE user_id = $1
		FOR UPDATE
	`, in.UserID).Scan(&user.Points, &user.Bottles)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUserNotFoundError(in.UserID)
		}
		return nil, apperrors.NewDatabaseError("lock user", err)
	}

	// A retried request carrying an already-recorded deposit key returns the
	// original crediting without applying any effect a second time.
	if in.DepositKey != "" {
		dup, found, err := r.findByDepositKey(ctx, tx, in.DepositKey)
		if err != nil {
			return nil, apperrors.NewDatabaseError("check deposit key", err)
		}
		if found {
			return &models.DepositResult{
				EarnedPoints:          dup.Points,
				BottlesAdded:          dup.Bottles,
				UserTotalPoints:       user.Points,
				UserTotalBottles:      user.Bottles,
				MachineCurrentBottles: machine.Current,
				MachineAvailableSpace: machine.Capacity - machine.Current,
				MachineIsFull:         machine.Current >= machine.Capacity,
				Duplicate:             true,
			}, nil
		}
	}

	outcome, err := models.Reconcile(machine, user, in.BottleCount, in.PointsPerBottle)
	if err != nil {
		return nil, err
	}

	var userPoints, userBottles int64
	err = tx.QueryRow(ctx, `
		UPDATE users
		SET points = points + $2, bottles = bottles + $3
		WHERE user_id = $1
		RETURNING points, bottles
	`, in.UserID, outcome.EarnedPoints, in.BottleCount).Scan(&userPoints, &userBottles)
	if err != nil {
		return nil, apperrors.NewDatabaseError("update user balances", err)
	}

	var machineCurrent, machineCapacity int64
	var machineFull bool
	err = tx.QueryRow(ctx, `
		UPDATE machines
		SET current_bottles = current_bottles + $2,
		    total_bottles = total_bottles + $2,
		    is_full = (current_bottles + $2) >= max_capacity
		WHERE machine_id = $1
		RETURNING current_bottles, max_capacity, is_full
	`, in.MachineID, in.BottleCount).Scan(&machineCurrent, &machineCapacity, &machineFull)
	if err != nil {
		return nil, apperrors.NewDatabaseError("update machine fill", err)
	}

	var depositKey *string
	if in.DepositKey != "" {
		depositKey = &in.DepositKey
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (user_id, type, points, bottles, machine_id, deposit_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`, in.UserID, models.KindEarn, outcome.EarnedPoints, in.BottleCount, in.MachineID, depositKey)
	if err != nil {
		var pgErr *pgconn.PgError
		if depositKey != nil && errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, errDepositKeyRace
		}
		return nil, apperrors.NewDatabaseError("insert ledger entry", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeTransactionFailed, "failed to commit deposit")
	}

	return &models.DepositResult{
		EarnedPoints:          outcome.EarnedPoints,
		BottlesAdded:          in.BottleCount,
		UserTotalPoints:       userPoints,
		UserTotalBottles:      userBottles,
		MachineCurrentBottles: machineCurrent,
		MachineAvailableSpace: machineCapacity - machineCurrent,
		MachineIsFull:         machineFull,
	}, nil
}

func (r *postgresRepository) findByDepositKey(ctx context.Context, tx pgx.Tx, key string) (*models.Transaction, bool, error) {
	var t models.Transaction
	err := tx.QueryRow(ctx, `
		SELECT id, user_id, type, points, bottles, machine_id, created_at
		FROM transactions
		WHERE deposit_key = $1
	`, key).Scan(&t.ID, &t.UserID, &t.Kind, &t.Points, &t.Bottles, &t.MachineID, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &t, true, nil
}

const transactionColumns = "id, user_id, type, points, bottles, machine_id, brand_id, created_at"

func (r *postgresRepository) HistoryByUser(ctx context.Context, userID string, limit int) ([]*models.Transaction, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, transactionColumns)

	args := []interface{}{userID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get user transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func (r *postgresRepository) HistoryByMachine(ctx context.Context, machineID string) ([]*models.Transaction, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM transactions
		WHERE machine_id = $1
		ORDER BY created_at DESC
	`, transactionColumns)

	rows, err := r.db.Query(ctx, query, machineID)
	if err != nil {
		return nil, fmt.Errorf("failed to get machine transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func (r *postgresRepository) List(ctx context.Context) ([]*models.Transaction, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM transactions
		ORDER BY created_at DESC
	`, transactionColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func (r *postgresRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM transactions").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func scanTransactions(rows pgx.Rows) ([]*models.Transaction, error) {
	var transactions []*models.Transaction
	for rows.Next() {
		var t models.Transaction
		err := rows.Scan(
			&t.ID, &t.UserID, &t.Kind, &t.Points, &t.Bottles,
			&t.MachineID, &t.BrandID, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, &t)
	}
	return transactions, rows.Err()
}
