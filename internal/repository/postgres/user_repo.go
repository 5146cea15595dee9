package postgres

import (
	"context"
	"database/sql"
	"errors"

	"teambooking/internal/domain"
)

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{
		DB: db,
	}
}

const userColumns = `
	id, name, email, time_zone, locale, metadata,
	password_hash, password_salt, created_at, updated_at
`

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.getOne(ctx, query, email)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	u := &domain.User{}
	var nameNull, tzNull, localeNull, hashNull, saltNull sql.NullString
	var metadata []byte
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &nameNull, &u.Email, &tzNull, &localeNull, &metadata,
		&hashNull, &saltNull, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if nameNull.Valid {
		u.Name = nameNull.String
	}
	if tzNull.Valid {
		u.TimeZone = tzNull.String
	}
	if localeNull.Valid {
		u.Locale = localeNull.String
	}
	if hashNull.Valid {
		u.PasswordHash = hashNull.String
	}
	if saltNull.Valid {
		u.PasswordSalt = saltNull.String
	}
	u.Metadata = metadata
	return u, nil
}
