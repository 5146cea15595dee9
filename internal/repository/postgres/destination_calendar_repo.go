package postgres

import (
	"context"
	"database/sql"
	"errors"

	"teambooking/internal/domain"
)

type destinationCalendarRepository struct {
	DB *sql.DB
}

func NewDestinationCalendarRepository(db *sql.DB) domain.DestinationCalendarRepository {
	return &destinationCalendarRepository{
		DB: db,
	}
}

func (r *destinationCalendarRepository) GetByUserID(ctx context.Context, userID string) (*domain.DestinationCalendar, error) {
	query := `
		SELECT id, user_id, integration, external_id
		FROM destination_calendars
		WHERE user_id = $1
	`
	dc := &domain.DestinationCalendar{}
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(&dc.ID, &dc.UserID, &dc.Integration, &dc.ExternalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return dc, nil
}
