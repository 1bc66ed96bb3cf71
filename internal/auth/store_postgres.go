// Copyright (c) 2026 Herdcount. All rights reserved.

package auth

import (
	"context"
	"fmt"

	"github.com/herdcount/herdcount/internal/platform/database/schema"
	"github.com/herdcount/herdcount/internal/platform/dberr"
	"github.com/herdcount/herdcount/internal/platform/postgres"
)

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	db postgres.DBTX
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(db postgres.DBTX) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

var (
	insertUserQuery = fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)`,
		schema.UserAccount.Table,
		schema.UserAccount.ID, schema.UserAccount.Username,
		schema.UserAccount.Password, schema.UserAccount.CreatedAt,
	)

	selectUserColumns = fmt.Sprintf(`%s, %s, %s, %s`,
		schema.UserAccount.ID, schema.UserAccount.Username,
		schema.UserAccount.Password, schema.UserAccount.CreatedAt,
	)

	findUserByUsernameQuery = fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1`,
		selectUserColumns, schema.UserAccount.Table, schema.UserAccount.Username,
	)

	listUsersQuery = fmt.Sprintf(`
		SELECT %s
		FROM %s
		ORDER BY %s, %s`,
		selectUserColumns, schema.UserAccount.Table,
		schema.UserAccount.CreatedAt, schema.UserAccount.ID,
	)
)

/*
Create persists a new account into the users.account table.

Parameters:
  - ctx: context.Context
  - user: *User (Entity to persist, ID and CreatedAt already set)

Returns:
  - error: apperr.AlreadyExists on a duplicate username, otherwise storage errors
*/
func (repository *PostgresUserRepository) Create(ctx context.Context, user *User) error {
	ctx, cancel := postgres.WithTimeout(ctx)
	defer cancel()

	_, err := repository.db.Exec(ctx, insertUserQuery,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return dberr.Wrap(err, "User")
		}
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByUsername retrieves an account by its exact username.

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	ctx, cancel := postgres.WithTimeout(ctx)
	defer cancel()

	user := &User{}
	err := repository.db.QueryRow(ctx, findUserByUsernameQuery, username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres_user_repo_find_by_username_failed: %w", err), "User")
	}

	return user, nil
}

// List returns every account ordered by creation time.
func (repository *PostgresUserRepository) List(ctx context.Context) ([]*User, error) {
	ctx, cancel := postgres.WithTimeout(ctx)
	defer cancel()

	rows, err := repository.db.Query(ctx, listUsersQuery)
	if err != nil {
		return nil, fmt.Errorf("postgres_user_repo_list_failed: %w", err)
	}
	defer rows.Close()

	users := make([]*User, 0)
	for rows.Next() {
		user := &User{}
		if err := rows.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres_user_repo_list_scan_failed: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_user_repo_list_failed: %w", err)
	}

	return users, nil
}
