package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"teambooking/internal/domain"
)

type calendarReferenceRepository struct {
	DB *sql.DB
}

func NewCalendarReferenceRepository(db *sql.DB) domain.CalendarReferenceRepository {
	return &calendarReferenceRepository{
		DB: db,
	}
}

// ReplaceForBooking swaps the booking's stored references for exactly refs in
// one transaction. A failed swap leaves the previous set untouched.
func (r *calendarReferenceRepository) ReplaceForBooking(ctx context.Context, bookingID string, refs []*domain.CalendarReference) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM booking_references WHERE booking_id = $1`, bookingID); err != nil {
		return fmt.Errorf("delete references: %w", err)
	}

	insert := `
		INSERT INTO booking_references (booking_id, type, uid, meeting_url, credential_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	for _, ref := range refs {
		var url, cred sql.NullString
		if ref.MeetingURL != nil {
			url = sql.NullString{String: *ref.MeetingURL, Valid: true}
		}
		if ref.CredentialID != nil {
			cred = sql.NullString{String: *ref.CredentialID, Valid: true}
		}
		if err := tx.QueryRowContext(ctx, insert, bookingID, ref.Type, ref.UID, url, cred).Scan(&ref.ID); err != nil {
			return fmt.Errorf("insert reference %s: %w", ref.UID, err)
		}
		ref.BookingID = bookingID
	}

	return tx.Commit()
}
