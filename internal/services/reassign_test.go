package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"teambooking/internal/domain"
)

type mockBookingRepo struct {
	bookings    map[string]*domain.Booking
	updatedID   string
	updatedWith *domain.ReassignmentPatch
	updateErr   error
}

func (m *mockBookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

func (m *mockBookingRepo) GetByUID(ctx context.Context, uid string) (*domain.Booking, error) {
	for _, b := range m.bookings {
		if b.UID == uid {
			return b, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockBookingRepo) UpdateReassignment(ctx context.Context, id string, patch domain.ReassignmentPatch) (*domain.Booking, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	m.updatedID = id
	m.updatedWith = &patch
	b, ok := m.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	updated := *b
	updated.UserID = patch.UserID
	updated.UserEmail = patch.UserEmail
	updated.Title = patch.Title
	updated.Location = patch.Location
	return &updated, nil
}

type mockAttendeeRepo struct {
	updatedID   string
	updatedWith *domain.AttendeeIdentityPatch
}

func (m *mockAttendeeRepo) UpdateIdentity(ctx context.Context, id string, patch domain.AttendeeIdentityPatch) error {
	m.updatedID = id
	m.updatedWith = &patch
	return nil
}

type mockReferenceRepo struct {
	replacedBookingID string
	replacedWith      []*domain.CalendarReference
}

func (m *mockReferenceRepo) ReplaceForBooking(ctx context.Context, bookingID string, refs []*domain.CalendarReference) error {
	m.replacedBookingID = bookingID
	m.replacedWith = refs
	return nil
}

type mockEventTypeRepo struct {
	eventType *domain.EventType
}

func (m *mockEventTypeRepo) GetByID(ctx context.Context, id string) (*domain.EventType, error) {
	if m.eventType == nil {
		return nil, domain.ErrNotFound
	}
	return m.eventType, nil
}

type mockUserRepo struct {
	users map[string]*domain.User
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

type mockCredentialRepo struct {
	credentials map[string][]*domain.Credential
}

func (m *mockCredentialRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Credential, error) {
	return m.credentials[userID], nil
}

type mockDestCalRepo struct {
	calendars map[string]*domain.DestinationCalendar
}

func (m *mockDestCalRepo) GetByUserID(ctx context.Context, userID string) (*domain.DestinationCalendar, error) {
	c, ok := m.calendars[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

type mockCalendarSync struct {
	result     *domain.RescheduleResult
	err        error
	calledWith *domain.CalendarEvent
	calledUID  string
	changed    bool
	removeFrom []*domain.DestinationCalendar
}

func (m *mockCalendarSync) Reschedule(ctx context.Context, ev *domain.CalendarEvent, uid string, organizerChanged bool, removeFrom []*domain.DestinationCalendar) (*domain.RescheduleResult, error) {
	m.calledWith = ev
	m.calledUID = uid
	m.changed = organizerChanged
	m.removeFrom = removeFrom
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type mockNotifier struct {
	scheduled       *domain.CalendarEvent
	cancelled       *domain.CalendarEvent
	cancelledReason string
}

func (m *mockNotifier) SendScheduled(ctx context.Context, ev *domain.CalendarEvent) error {
	m.scheduled = ev
	return nil
}

func (m *mockNotifier) SendCancelled(ctx context.Context, ev *domain.CalendarEvent, reason string) error {
	m.cancelled = ev
	m.cancelledReason = reason
	return nil
}

type mockWorkflowMigration struct {
	called       bool
	newOrganizer *domain.User
}

func (m *mockWorkflowMigration) MigrateToNewHost(ctx context.Context, booking *domain.Booking, eventType *domain.EventType, ev *domain.CalendarEvent, newOrganizer *domain.User) error {
	m.called = true
	m.newOrganizer = newOrganizer
	return nil
}

type reassignFixture struct {
	bookingRepo    *mockBookingRepo
	attendeeRepo   *mockAttendeeRepo
	referenceRepo  *mockReferenceRepo
	eventTypeRepo  *mockEventTypeRepo
	userRepo       *mockUserRepo
	credentialRepo *mockCredentialRepo
	destCalRepo    *mockDestCalRepo
	calendar       *mockCalendarSync
	notifier       *mockNotifier
	workflows      *mockWorkflowMigration
	service        domain.ReassignmentService
}

func newReassignFixture(booking *domain.Booking, eventType *domain.EventType, users ...*domain.User) *reassignFixture {
	f := &reassignFixture{
		bookingRepo:    &mockBookingRepo{bookings: map[string]*domain.Booking{booking.ID: booking}},
		attendeeRepo:   &mockAttendeeRepo{},
		referenceRepo:  &mockReferenceRepo{},
		eventTypeRepo:  &mockEventTypeRepo{eventType: eventType},
		userRepo:       &mockUserRepo{users: map[string]*domain.User{}},
		credentialRepo: &mockCredentialRepo{credentials: map[string][]*domain.Credential{}},
		destCalRepo:    &mockDestCalRepo{calendars: map[string]*domain.DestinationCalendar{}},
		calendar: &mockCalendarSync{result: &domain.RescheduleResult{
			References: []*domain.CalendarReference{{Type: "google_calendar", UID: "gcal-new"}},
		}},
		notifier:  &mockNotifier{},
		workflows: &mockWorkflowMigration{},
	}
	for _, u := range users {
		f.userRepo.users[u.ID] = u
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.service = NewReassignmentService(
		logger, f.bookingRepo, f.attendeeRepo, f.referenceRepo, f.eventTypeRepo,
		f.userRepo, f.credentialRepo, f.destCalRepo, f.calendar, f.notifier, f.workflows, fakeTranslate,
	)
	return f
}

func testBooking() *domain.Booking {
	return &domain.Booking{
		ID:          "b1",
		UID:         "uid-1",
		Title:       "Intro Call between Alan and Ada",
		StartTime:   time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
		EndTime:     time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC),
		UserID:      "u1",
		UserEmail:   "alan@x.com",
		EventTypeID: "et1",
		Attendees:   []*domain.Attendee{{ID: "att1", Name: "Ada", Email: "ada@y.com", TimeZone: "UTC"}},
		References:  []*domain.CalendarReference{{ID: "r-old", Type: "google_calendar", UID: "gcal-old"}},
	}
}

func TestReassign_OrganizerChanges(t *testing.T) {
	alan := &domain.User{ID: "u1", Name: "Alan", Email: "alan@x.com", TimeZone: "UTC"}
	grace := &domain.User{ID: "u2", Name: "Grace", Email: "grace@x.com", TimeZone: "UTC"}
	eventType := &domain.EventType{
		ID:    "et1",
		Title: "Intro Call",
		Hosts: []*domain.Host{
			{UserID: "u1", Role: domain.HostRoleRoundRobin, User: alan},
			{UserID: "u2", Role: domain.HostRoleRoundRobin, User: grace},
		},
	}
	f := newReassignFixture(testBooking(), eventType, alan, grace)
	f.destCalRepo.calendars["u1"] = &domain.DestinationCalendar{ID: "dc1", UserID: "u1", ExternalID: "alan@x.com"}
	f.destCalRepo.calendars["u2"] = &domain.DestinationCalendar{ID: "dc2", UserID: "u2", ExternalID: "grace@x.com"}
	f.credentialRepo.credentials["u2"] = []*domain.Credential{{ID: "cred-g", UserID: "u2", Type: "google_calendar"}}

	got, err := f.service.Reassign(context.Background(), "b1", "u2", "org1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.bookingRepo.updatedID != "b1" {
		t.Fatal("expected booking organizer update")
	}
	if f.bookingRepo.updatedWith.UserID != "u2" || f.bookingRepo.updatedWith.UserEmail != "grace@x.com" {
		t.Errorf("unexpected patch: %+v", f.bookingRepo.updatedWith)
	}
	if want := "Intro Call between Grace and Ada"; f.bookingRepo.updatedWith.Title != want {
		t.Errorf("title = %q, want %q", f.bookingRepo.updatedWith.Title, want)
	}
	if f.attendeeRepo.updatedWith != nil {
		t.Error("attendee substitution must not run when the organizer changes")
	}

	if !f.calendar.changed {
		t.Error("expected organizerChanged=true on reschedule")
	}
	if f.calendar.calledUID != "uid-1" {
		t.Errorf("reschedule uid = %q, want uid-1", f.calendar.calledUID)
	}
	if len(f.calendar.removeFrom) != 1 || f.calendar.removeFrom[0].ID != "dc1" {
		t.Errorf("expected removal from previous organizer's calendar, got %+v", f.calendar.removeFrom)
	}

	if f.referenceRepo.replacedBookingID != "b1" {
		t.Fatal("expected reference replacement")
	}
	if len(f.referenceRepo.replacedWith) != 1 || f.referenceRepo.replacedWith[0].UID != "gcal-new" {
		t.Errorf("stored references must equal the sync result, got %+v", f.referenceRepo.replacedWith)
	}
	if cred := f.referenceRepo.replacedWith[0].CredentialID; cred == nil || *cred != "cred-g" {
		t.Errorf("reference must carry the new organizer's credential, got %v", cred)
	}
	if len(got.References) != 1 || got.References[0].UID != "gcal-new" {
		t.Errorf("returned booking must carry the new references, got %+v", got.References)
	}

	if f.notifier.scheduled == nil || f.notifier.scheduled.Organizer.Email != "grace@x.com" {
		t.Errorf("scheduled notification organizer = %+v", f.notifier.scheduled)
	}
	if f.notifier.cancelled == nil || f.notifier.cancelled.Organizer.Email != "alan@x.com" {
		t.Errorf("cancelled notification organizer = %+v", f.notifier.cancelled)
	}
	if f.notifier.cancelledReason != domain.ReassignedCancellationReason {
		t.Errorf("cancellation reason = %q", f.notifier.cancelledReason)
	}
	// The two payloads must be independent copies.
	if f.notifier.scheduled == f.notifier.cancelled {
		t.Error("scheduled and cancelled notifications share the same event")
	}
	if f.notifier.scheduled.Organizer.Email == f.notifier.cancelled.Organizer.Email {
		t.Error("cancelled payload organizer overwrote the scheduled payload")
	}

	if !f.workflows.called {
		t.Error("expected workflow migration")
	}
	if f.workflows.newOrganizer == nil || f.workflows.newOrganizer.ID != "u2" {
		t.Errorf("workflow migration organizer = %+v", f.workflows.newOrganizer)
	}
}

func TestReassign_OrganizerChangeUpdatesLocation(t *testing.T) {
	alan := &domain.User{ID: "u1", Name: "Alan", Email: "alan@x.com", TimeZone: "UTC",
		Metadata: json.RawMessage(`{"defaultConferencingApp":{"appLink":"https://zoom.example.com/alan"}}`)}
	grace := &domain.User{ID: "u2", Name: "Grace", Email: "grace@x.com", TimeZone: "UTC",
		Metadata: json.RawMessage(`{"defaultConferencingApp":{"appLink":"https://zoom.example.com/grace"}}`)}
	eventType := &domain.EventType{
		ID:        "et1",
		Title:     "Intro Call",
		Locations: []domain.LocationOption{{Type: domain.LocationOrganizerDefault}},
		Hosts: []*domain.Host{
			{UserID: "u1", Role: domain.HostRoleRoundRobin, User: alan},
			{UserID: "u2", Role: domain.HostRoleRoundRobin, User: grace},
		},
	}
	booking := testBooking()
	booking.Location = "https://zoom.example.com/alan"
	f := newReassignFixture(booking, eventType, alan, grace)

	got, err := f.service.Reassign(context.Background(), "b1", "u2", "org1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The stored booking and the synced event must both carry the new
	// organizer's conferencing link.
	want := "https://zoom.example.com/grace"
	if f.bookingRepo.updatedWith == nil || f.bookingRepo.updatedWith.Location != want {
		t.Errorf("persisted location patch = %+v, want %q", f.bookingRepo.updatedWith, want)
	}
	if got.Location != want {
		t.Errorf("booking location = %q, want %q", got.Location, want)
	}
	if f.calendar.calledWith == nil || f.calendar.calledWith.Location != want {
		t.Errorf("synced event location = %+v, want %q", f.calendar.calledWith, want)
	}
}

func TestReassign_FixedHostKeepsOrganizer(t *testing.T) {
	fixed := &domain.User{ID: "u1", Name: "Alan", Email: "alan@x.com", TimeZone: "UTC"}
	current := &domain.User{ID: "u2", Name: "Grace", Email: "grace@x.com", TimeZone: "UTC"}
	next := &domain.User{ID: "u3", Name: "Edsger", Email: "edsger@x.com", TimeZone: "Europe/Amsterdam", Locale: "nl"}
	eventType := &domain.EventType{
		ID:    "et1",
		Title: "Intro Call",
		Hosts: []*domain.Host{
			{UserID: "u1", Role: domain.HostRoleFixed, User: fixed},
			{UserID: "u2", Role: domain.HostRoleRoundRobin, User: current},
			{UserID: "u3", Role: domain.HostRoleRoundRobin, User: next},
		},
	}
	booking := testBooking()
	booking.Attendees = append(booking.Attendees,
		&domain.Attendee{ID: "att-rr", Name: "Grace", Email: "grace@x.com", TimeZone: "UTC"})
	f := newReassignFixture(booking, eventType, fixed, current, next)

	_, err := f.service.Reassign(context.Background(), "b1", "u3", "org1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.bookingRepo.updatedWith != nil {
		t.Error("booking organizer must not change with a fixed host present")
	}
	if f.attendeeRepo.updatedID != "att-rr" {
		t.Fatalf("expected substitution of the round-robin attendee, got %q", f.attendeeRepo.updatedID)
	}
	if f.attendeeRepo.updatedWith.Email != "edsger@x.com" || f.attendeeRepo.updatedWith.Locale != "nl" {
		t.Errorf("unexpected attendee patch: %+v", f.attendeeRepo.updatedWith)
	}
	if f.calendar.changed {
		t.Error("expected organizerChanged=false on reschedule")
	}
	if len(f.calendar.removeFrom) != 0 {
		t.Errorf("no calendar removal expected, got %+v", f.calendar.removeFrom)
	}
	if f.notifier.cancelled != nil {
		t.Error("no cancelled notification expected when the organizer is unchanged")
	}
	if f.workflows.called {
		t.Error("no workflow migration expected when the organizer is unchanged")
	}
}

func TestReassign_ValidationFailuresWriteNothing(t *testing.T) {
	alan := &domain.User{ID: "u1", Name: "Alan", Email: "alan@x.com"}
	grace := &domain.User{ID: "u2", Name: "Grace", Email: "grace@x.com"}
	eventType := &domain.EventType{
		ID:    "et1",
		Title: "Intro Call",
		Hosts: []*domain.Host{
			{UserID: "u1", Role: domain.HostRoleFixed, User: alan},
			{UserID: "u2", Role: domain.HostRoleRoundRobin, User: grace},
		},
	}

	tests := []struct {
		name      string
		bookingID string
		newHostID string
		wantErr   error
	}{
		{name: "unknown booking", bookingID: "missing", newHostID: "u2", wantErr: domain.ErrNotFound},
		{name: "host not on event type", bookingID: "b1", newHostID: "u9", wantErr: domain.ErrInvalidTarget},
		{name: "fixed host target", bookingID: "b1", newHostID: "u1", wantErr: domain.ErrFixedHostTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReassignFixture(testBooking(), eventType, alan, grace)
			_, err := f.service.Reassign(context.Background(), tt.bookingID, tt.newHostID, "org1")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if f.bookingRepo.updatedWith != nil || f.attendeeRepo.updatedWith != nil {
				t.Error("validation failure must not mutate the booking")
			}
			if f.calendar.calledWith != nil {
				t.Error("validation failure must not reach the calendar")
			}
			if f.referenceRepo.replacedBookingID != "" {
				t.Error("validation failure must not touch references")
			}
		})
	}
}

func TestReassign_CalendarFailureStopsFlow(t *testing.T) {
	alan := &domain.User{ID: "u1", Name: "Alan", Email: "alan@x.com"}
	grace := &domain.User{ID: "u2", Name: "Grace", Email: "grace@x.com"}
	eventType := &domain.EventType{
		ID:    "et1",
		Title: "Intro Call",
		Hosts: []*domain.Host{
			{UserID: "u1", Role: domain.HostRoleRoundRobin, User: alan},
			{UserID: "u2", Role: domain.HostRoleRoundRobin, User: grace},
		},
	}
	f := newReassignFixture(testBooking(), eventType, alan, grace)
	f.calendar.err = errors.New("provider down")

	_, err := f.service.Reassign(context.Background(), "b1", "u2", "org1")
	if err == nil {
		t.Fatal("expected error")
	}
	if f.bookingRepo.updatedWith == nil {
		t.Error("booking mutation happens before the calendar step and stays committed")
	}
	if f.referenceRepo.replacedBookingID != "" {
		t.Error("references must not be replaced after a calendar failure")
	}
	if f.notifier.scheduled != nil || f.notifier.cancelled != nil {
		t.Error("no notifications expected after a calendar failure")
	}
	if f.workflows.called {
		t.Error("no workflow migration expected after a calendar failure")
	}
}
