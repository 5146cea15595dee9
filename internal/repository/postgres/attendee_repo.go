package postgres

import (
	"context"
	"database/sql"

	"teambooking/internal/domain"
)

type attendeeRepository struct {
	DB *sql.DB
}

func NewAttendeeRepository(db *sql.DB) domain.AttendeeRepository {
	return &attendeeRepository{
		DB: db,
	}
}

func (r *attendeeRepository) UpdateIdentity(ctx context.Context, id string, patch domain.AttendeeIdentityPatch) error {
	query := `
		UPDATE attendees
		SET name = $1, email = $2, time_zone = $3, locale = $4
		WHERE id = $5
	`
	result, err := r.DB.ExecContext(ctx, query, patch.Name, patch.Email, patch.TimeZone, patch.Locale, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
