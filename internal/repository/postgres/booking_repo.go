package postgres

import (
	"context"
	"database/sql"
	"errors"

	"teambooking/internal/domain"
)

type bookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(db *sql.DB) domain.BookingRepository {
	return &bookingRepository{
		DB: db,
	}
}

const bookingColumns = `
	id, uid, title, description, start_time, end_time, location,
	user_id, user_email, event_type_id, responses, custom_inputs,
	created_at, updated_at
`

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *bookingRepository) GetByUID(ctx context.Context, uid string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE uid = $1`
	return r.getOne(ctx, query, uid)
}

func (r *bookingRepository) getOne(ctx context.Context, query string, arg any) (*domain.Booking, error) {
	b, err := r.scanBooking(r.DB.QueryRowContext(ctx, query, arg))
	if err != nil {
		return nil, err
	}
	if err := r.loadRelations(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateReassignment persists the new organizer identity, title, and
// location, returning the committed row so callers see stored state.
func (r *bookingRepository) UpdateReassignment(ctx context.Context, id string, patch domain.ReassignmentPatch) (*domain.Booking, error) {
	query := `
		UPDATE bookings
		SET user_id = $1, user_email = $2, title = $3, location = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING ` + bookingColumns
	b, err := r.scanBooking(r.DB.QueryRowContext(ctx, query, patch.UserID, patch.UserEmail, patch.Title, patch.Location, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadRelations(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *bookingRepository) scanBooking(row rowScanner) (*domain.Booking, error) {
	b := &domain.Booking{}
	var descNull, locNull sql.NullString
	var responses, customInputs []byte
	err := row.Scan(
		&b.ID, &b.UID, &b.Title, &descNull, &b.StartTime, &b.EndTime, &locNull,
		&b.UserID, &b.UserEmail, &b.EventTypeID, &responses, &customInputs,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if descNull.Valid {
		b.Description = descNull.String
	}
	if locNull.Valid {
		b.Location = locNull.String
	}
	b.Responses = responses
	b.CustomInputs = customInputs
	return b, nil
}

func (r *bookingRepository) loadRelations(ctx context.Context, b *domain.Booking) error {
	attendees, err := r.listAttendees(ctx, b.ID)
	if err != nil {
		return err
	}
	b.Attendees = attendees

	references, err := r.listReferences(ctx, b.ID)
	if err != nil {
		return err
	}
	b.References = references
	return nil
}

func (r *bookingRepository) listAttendees(ctx context.Context, bookingID string) ([]*domain.Attendee, error) {
	query := `
		SELECT id, booking_id, name, email, time_zone, locale, phone_number
		FROM attendees
		WHERE booking_id = $1
		ORDER BY id
	`
	rows, err := r.DB.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	attendees := make([]*domain.Attendee, 0)
	for rows.Next() {
		a := &domain.Attendee{}
		var phoneNull sql.NullString
		if err := rows.Scan(&a.ID, &a.BookingID, &a.Name, &a.Email, &a.TimeZone, &a.Locale, &phoneNull); err != nil {
			return nil, err
		}
		if phoneNull.Valid {
			a.PhoneNumber = &phoneNull.String
		}
		attendees = append(attendees, a)
	}
	return attendees, rows.Err()
}

func (r *bookingRepository) listReferences(ctx context.Context, bookingID string) ([]*domain.CalendarReference, error) {
	query := `
		SELECT id, booking_id, type, uid, meeting_url, credential_id
		FROM booking_references
		WHERE booking_id = $1
		ORDER BY id
	`
	rows, err := r.DB.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	refs := make([]*domain.CalendarReference, 0)
	for rows.Next() {
		ref := &domain.CalendarReference{}
		var urlNull, credNull sql.NullString
		if err := rows.Scan(&ref.ID, &ref.BookingID, &ref.Type, &ref.UID, &urlNull, &credNull); err != nil {
			return nil, err
		}
		if urlNull.Valid {
			ref.MeetingURL = &urlNull.String
		}
		if credNull.Valid {
			ref.CredentialID = &credNull.String
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
