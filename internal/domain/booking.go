package domain

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Booking represents a confirmed meeting instance owned by an organizer.
// swagger:model Booking
type Booking struct {
	ID          string    `json:"id"`
	UID         string    `json:"uid"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Location    string    `json:"location,omitempty"`
	// UserID identifies the organizer who owns the calendar event.
	UserID      string          `json:"user_id"`
	UserEmail   string          `json:"user_email"`
	EventTypeID string          `json:"event_type_id"`
	Responses   json.RawMessage `json:"responses,omitempty"`
	// CustomInputs are echoed verbatim into the calendar-event representation.
	CustomInputs json.RawMessage      `json:"custom_inputs,omitempty"`
	Attendees    []*Attendee          `json:"attendees"`
	References   []*CalendarReference `json:"references"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// Attendee is a person record on a booking. One attendee may represent the
// current round-robin participant, matched by email equality against the
// round-robin hosts' emails.
// swagger:model Attendee
type Attendee struct {
	ID          string  `json:"id"`
	BookingID   string  `json:"booking_id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	TimeZone    string  `json:"time_zone"`
	Locale      string  `json:"locale"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

// CalendarReference is an opaque pointer tying a booking to a third-party
// calendar entry.
// swagger:model CalendarReference
type CalendarReference struct {
	ID           string  `json:"id"`
	BookingID    string  `json:"booking_id"`
	Type         string  `json:"type"`
	UID          string  `json:"uid"`
	MeetingURL   *string `json:"meeting_url,omitempty"`
	CredentialID *string `json:"credential_id,omitempty"`
}

// ReassignmentPatch carries the booking fields persisted when the organizer
// changes during a reassignment. Location is re-resolved for the new
// organizer so the stored booking matches the synced calendar event.
type ReassignmentPatch struct {
	UserID    string
	UserEmail string
	Title     string
	Location  string
}

// AttendeeIdentityPatch carries the attendee fields persisted when only the
// round-robin participant is substituted.
type AttendeeIdentityPatch struct {
	Name     string
	Email    string
	TimeZone string
	Locale   string
}

// BookingRepository defines storage operations for bookings. Reads return the
// booking with attendees and calendar references loaded.
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*Booking, error)
	GetByUID(ctx context.Context, uid string) (*Booking, error)
	// UpdateReassignment persists the patch and returns the committed row,
	// so callers observe the stored state rather than an in-memory guess.
	UpdateReassignment(ctx context.Context, id string, patch ReassignmentPatch) (*Booking, error)
}

// AttendeeRepository defines storage operations for booking attendees.
type AttendeeRepository interface {
	UpdateIdentity(ctx context.Context, id string, patch AttendeeIdentityPatch) error
}

// CalendarReferenceRepository swaps the stored calendar references of a
// booking. ReplaceForBooking must be atomic: either the booking ends up with
// exactly refs, or its previous references are untouched.
type CalendarReferenceRepository interface {
	ReplaceForBooking(ctx context.Context, bookingID string, refs []*CalendarReference) error
}

// ReassignmentService moves a confirmed booking from its current round-robin
// host to the given target host, keeping the organizer, attendee roster,
// calendar references, notifications, and scheduled workflow reminders
// consistent. It aborts on the first collaborator failure and does not roll
// back steps that were already durably committed.
type ReassignmentService interface {
	Reassign(ctx context.Context, bookingID, newHostID, orgID string) (*Booking, error)
}
