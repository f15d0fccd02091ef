package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"polygreen-backend/internal/features/machine/models"
	"polygreen-backend/internal/features/machine/repository"
)

const uniqueViolation = "23505"

const machineColumns = `machine_id, name, city, lat, lng,
	current_bottles, max_capacity, total_bottles, is_full, last_emptied, created_at`

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) repository.MachineRepository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, machine *models.Machine) error {
	query := `
		INSERT INTO machines (
			machine_id, name, city, lat, lng, max_capacity,
			current_bottles, total_bottles, is_full, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, 0, 0, FALSE, NOW())
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		machine.ID, machine.Name, machine.City, machine.Lat, machine.Lng,
		machine.MaxCapacity).Scan(&machine.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create machine: %w", err)
	}

	machine.CurrentBottles = 0
	machine.TotalBottles = 0
	machine.IsFull = false
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id string) (*models.Machine, error) {
	query := fmt.Sprintf("SELECT %s FROM machines WHERE machine_id = $1", machineColumns)

	machine, err := scanMachine(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrMachineNotFound
		}
		return nil, fmt.Errorf("failed to get machine: %w", err)
	}

	return machine, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]*models.Machine, error) {
	query := fmt.Sprintf("SELECT %s FROM machines ORDER BY machine_id", machineColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list machines: %w", err)
	}
	defer rows.Close()

	var machines []*models.Machine
	for rows.Next() {
		machine, err := scanMachine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan machine: %w", err)
		}
		machines = append(machines, machine)
	}

	return machines, rows.Err()
}

func (r *postgresRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM machines").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count machines: %w", err)
	}
	return count, nil
}

// Empty resets the fill level inside a single statement so the reported
// pre-reset level and the reset itself cannot race a concurrent deposit.
func (r *postgresRepository) Empty(ctx context.Context, id string) (*models.EmptyReport, error) {
	query := `
		UPDATE machines
		SET current_bottles = 0,
		    is_full = FALSE,
		    last_emptied = NOW()
		FROM (SELECT machine_id, current_bottles AS before FROM machines WHERE machine_id = $1 FOR UPDATE) old
		WHERE machines.machine_id = old.machine_id
		RETURNING machines.machine_id, machines.name, old.before
	`

	var report models.EmptyReport
	err := r.db.QueryRow(ctx, query, id).Scan(&report.MachineID, &report.Name, &report.BottlesCollected)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrMachineNotFound
		}
		return nil, fmt.Errorf("failed to empty machine: %w", err)
	}

	return &report, nil
}

func scanMachine(row pgx.Row) (*models.Machine, error) {
	var m models.Machine
	err := row.Scan(
		&m.ID, &m.Name, &m.City, &m.Lat, &m.Lng,
		&m.CurrentBottles, &m.MaxCapacity, &m.TotalBottles,
		&m.IsFull, &m.LastEmptied, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
