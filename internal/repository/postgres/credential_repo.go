package postgres

import (
	"context"
	"database/sql"

	"teambooking/internal/domain"
)

type credentialRepository struct {
	DB *sql.DB
}

func NewCredentialRepository(db *sql.DB) domain.CredentialRepository {
	return &credentialRepository{
		DB: db,
	}
}

func (r *credentialRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Credential, error) {
	query := `
		SELECT id, user_id, type, key
		FROM credentials
		WHERE user_id = $1
		ORDER BY id
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	credentials := make([]*domain.Credential, 0)
	for rows.Next() {
		c := &domain.Credential{}
		var key []byte
		if err := rows.Scan(&c.ID, &c.UserID, &c.Type, &key); err != nil {
			return nil, err
		}
		c.Key = key
		credentials = append(credentials, c)
	}
	return credentials, rows.Err()
}
