package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"polygreen-backend/internal/features/user/models"
	"polygreen-backend/internal/features/user/repository"
)

const uniqueViolation = "23505"

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) repository.UserRepository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (user_id, name, mobile, password_hash, points, bottles, created_at)
		VALUES ($1, $2, $3, $4, 0, 0, NOW())
		RETURNING points, bottles, created_at
	`

	err := r.db.QueryRow(ctx, query,
		user.ID, user.Name, user.Mobile, user.PasswordHash).
		Scan(&user.Points, &user.Bottles, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getBy(ctx, "user_id", id)
}

func (r *postgresRepository) GetByMobile(ctx context.Context, mobile string) (*models.User, error) {
	return r.getBy(ctx, "mobile", mobile)
}

func (r *postgresRepository) getBy(ctx context.Context, column, value string) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT user_id, name, mobile, password_hash, points, bottles, created_at
		FROM users
		WHERE %s = $1
	`, column)

	var user models.User
	err := r.db.QueryRow(ctx, query, value).Scan(
		&user.ID, &user.Name, &user.Mobile, &user.PasswordHash,
		&user.Points, &user.Bottles, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (r *postgresRepository) ExistsByMobile(ctx context.Context, mobile string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE mobile = $1)", mobile).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]*models.User, error) {
	query := `
		SELECT user_id, name, mobile, password_hash, points, bottles, created_at
		FROM users
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(
			&user.ID, &user.Name, &user.Mobile, &user.PasswordHash,
			&user.Points, &user.Bottles, &user.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &user)
	}

	return users, rows.Err()
}

func (r *postgresRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (r *postgresRepository) UpdatePasswordByID(ctx context.Context, id, passwordHash string) error {
	return r.updatePassword(ctx, "user_id", id, passwordHash)
}

func (r *postgresRepository) UpdatePasswordByMobile(ctx context.Context, mobile, passwordHash string) error {
	return r.updatePassword(ctx, "mobile", mobile, passwordHash)
}

func (r *postgresRepository) updatePassword(ctx context.Context, column, value, passwordHash string) error {
	query := fmt.Sprintf("UPDATE users SET password_hash = $2 WHERE %s = $1", column)

	tag, err := r.db.Exec(ctx, query, value, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}
