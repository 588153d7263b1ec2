package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"evently/internal/domain"
)

const userColumns = `id, clerk_id, email, username, first_name, last_name, photo, created_at, updated_at`

type userRepository struct {
	conn Connector
}

func NewUserRepository(conn Connector) domain.UserRepository {
	return &userRepository{conn: conn}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	db, err := executor(ctx, r.conn)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO users (clerk_id, email, username, first_name, last_name, photo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err = db.QueryRowContext(ctx, query, u.ClerkID, u.Email, u.Username, u.FirstName, u.LastName, u.Photo, u.CreatedAt, u.UpdatedAt).Scan(&u.ID)
	if pqCode(err) == pqUniqueViolation {
		return domain.ErrDuplicateUser
	}
	return err
}

func (r *userRepository) GetByClerkID(ctx context.Context, clerkID string) (*domain.User, error) {
	db, err := executor(ctx, r.conn)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE clerk_id = $1`
	return scanUser(db.QueryRowContext(ctx, query, clerkID))
}

func (r *userRepository) UpdateByClerkID(ctx context.Context, clerkID string, p domain.UserProfile, updatedAt time.Time) (*domain.User, error) {
	db, err := executor(ctx, r.conn)
	if err != nil {
		return nil, err
	}
	query := `
		UPDATE users
		SET first_name = $1, last_name = $2, username = $3, photo = $4, updated_at = $5
		WHERE clerk_id = $6
		RETURNING ` + userColumns
	return scanUser(db.QueryRowContext(ctx, query, p.FirstName, p.LastName, p.Username, p.Photo, updatedAt, clerkID))
}

func (r *userRepository) DeleteByClerkID(ctx context.Context, clerkID string) (*domain.User, error) {
	db, err := executor(ctx, r.conn)
	if err != nil {
		return nil, err
	}
	query := `DELETE FROM users WHERE clerk_id = $1 RETURNING ` + userColumns
	return scanUser(db.QueryRowContext(ctx, query, clerkID))
}

func scanUser(row rowScanner) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(&u.ID, &u.ClerkID, &u.Email, &u.Username, &u.FirstName, &u.LastName, &u.Photo, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}
