package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sumire/saju-auth/internal/domain"
)

const userColumns = `id, username, email, name, provider, provider_id, role, created_at, updated_at`

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// UserRepository handles user data access operations.
// Queries use '?' placeholders and are rebound for the connected driver.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByUsername retrieves a user by their derived username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user, r.db.Rebind(
		`SELECT `+userColumns+` FROM users WHERE username = ?`), username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, &domain.StorageError{Op: "find user by username " + username, Err: err}
	}
	return &user, nil
}

// FindByProviderAndProviderID retrieves a user by their OAuth provider and provider ID.
// If several rows share the pair the oldest one is returned.
func (r *UserRepository) FindByProviderAndProviderID(ctx context.Context, provider, providerID string) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user, r.db.Rebind(
		`SELECT `+userColumns+` FROM users WHERE provider = ? AND provider_id = ? ORDER BY id LIMIT 1`),
		provider, providerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, &domain.StorageError{Op: fmt.Sprintf("find user by provider %s/%s", provider, providerID), Err: err}
	}
	return &user, nil
}

// Save inserts the user when it has no ID yet and otherwise overwrites the stored row.
// Returns the persisted user as read back from the table.
func (r *UserRepository) Save(ctx context.Context, user domain.User) (*domain.User, error) {
	op := "insert user " + user.Username
	if user.ID != 0 {
		op = fmt.Sprintf("update user %d", user.ID)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, &domain.StorageError{Op: op, Err: err}
	}
	defer tx.Rollback()

	id := user.ID
	if id == 0 {
		err = tx.QueryRowxContext(ctx, tx.Rebind(
			`INSERT INTO users (username, email, name, provider, provider_id, role)
			 VALUES (?, ?, ?, ?, ?, ?)
			 RETURNING id`),
			user.Username, user.Email, user.Name, user.Provider, user.ProviderID, user.Role,
		).Scan(&id)
	} else {
		err = updateUser(ctx, tx, user)
	}
	if err != nil {
		return nil, storageError(op, err)
	}

	var result domain.User
	if err := tx.GetContext(ctx, &result, tx.Rebind(
		`SELECT `+userColumns+` FROM users WHERE id = ?`), id); err != nil {
		return nil, &domain.StorageError{Op: op, Err: err}
	}

	if err := tx.Commit(); err != nil {
		return nil, storageError(op, err)
	}
	return &result, nil
}

func updateUser(ctx context.Context, tx *sqlx.Tx, user domain.User) error {
	res, err := tx.ExecContext(ctx, tx.Rebind(
		`UPDATE users
		 SET username = ?, email = ?, name = ?, provider = ?, provider_id = ?, role = ?,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`),
		user.Username, user.Email, user.Name, user.Provider, user.ProviderID, user.Role, user.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func storageError(op string, err error) error {
	if isUniqueViolation(err) {
		err = fmt.Errorf("%w: %w", domain.ErrConflict, err)
	}
	return &domain.StorageError{Op: op, Err: err}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			strings.Contains(liteErr.Error(), "UNIQUE constraint failed")
	}
	return false
}
