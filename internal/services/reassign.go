package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"teambooking/internal/domain"
)

type reassignmentService struct {
	logger         *slog.Logger
	bookingRepo    domain.BookingRepository
	attendeeRepo   domain.AttendeeRepository
	referenceRepo  domain.CalendarReferenceRepository
	eventTypeRepo  domain.EventTypeRepository
	userRepo       domain.UserRepository
	credentialRepo domain.CredentialRepository
	destCalRepo    domain.DestinationCalendarRepository
	calendar       domain.CalendarSync
	notifier       domain.NotificationService
	workflows      domain.WorkflowMigrationService
	materializer   *materializer
}

// NewReassignmentService creates the ReassignmentService with the given
// repositories and collaborators.
func NewReassignmentService(
	logger *slog.Logger,
	bookingRepo domain.BookingRepository,
	attendeeRepo domain.AttendeeRepository,
	referenceRepo domain.CalendarReferenceRepository,
	eventTypeRepo domain.EventTypeRepository,
	userRepo domain.UserRepository,
	credentialRepo domain.CredentialRepository,
	destCalRepo domain.DestinationCalendarRepository,
	calendar domain.CalendarSync,
	notifier domain.NotificationService,
	workflows domain.WorkflowMigrationService,
	translate domain.TranslateFunc,
) domain.ReassignmentService {
	return &reassignmentService{
		logger:         logger,
		bookingRepo:    bookingRepo,
		attendeeRepo:   attendeeRepo,
		referenceRepo:  referenceRepo,
		eventTypeRepo:  eventTypeRepo,
		userRepo:       userRepo,
		credentialRepo: credentialRepo,
		destCalRepo:    destCalRepo,
		calendar:       calendar,
		notifier:       notifier,
		workflows:      workflows,
		materializer:   newMaterializer(translate),
	}
}

// Reassign moves the booking to the given round-robin host. The flow is
// strictly sequential: validate, mutate persisted state, sync the calendar,
// replace stored references, notify, and migrate workflows when the organizer
// changed. The first failure aborts the flow; steps already committed stay
// committed (no compensating transaction — operators recover from the log).
func (s *reassignmentService) Reassign(ctx context.Context, bookingID, newHostID, orgID string) (*domain.Booking, error) {
	// Validating
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking.UserID == "" {
		return nil, domain.ErrNotFound
	}
	eventType, err := s.eventTypeRepo.GetByID(ctx, booking.EventTypeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event type: %w", err)
	}
	assignment, err := resolveHosts(eventType, booking.Attendees, newHostID)
	if err != nil {
		return nil, err
	}
	newOrganizer := assignment.target.User
	if newOrganizer == nil {
		// Host rows always join their user; a missing one is a data
		// inconsistency, not a storage fault.
		return nil, domain.ErrInvalidTarget
	}

	changed := organizerChanges(assignment, booking)
	prevOrganizerID := booking.UserID

	// Mutating
	if changed {
		title, err := s.materializer.bookingTitle(eventType, booking, newOrganizer)
		if err != nil {
			return nil, err
		}
		location, _ := s.materializer.resolveLocation(eventType, booking, newOrganizer)
		booking, err = s.bookingRepo.UpdateReassignment(ctx, booking.ID, domain.ReassignmentPatch{
			UserID:    newOrganizer.ID,
			UserEmail: newOrganizer.Email,
			Title:     title,
			Location:  location,
		})
		if err != nil {
			return nil, fmt.Errorf("update booking organizer: %w", err)
		}
	} else if assignment.currentAttendee != nil {
		patch := domain.AttendeeIdentityPatch{
			Name:     newOrganizer.Name,
			Email:    newOrganizer.Email,
			TimeZone: newOrganizer.TimeZone,
			Locale:   localeOrDefault(newOrganizer.Locale),
		}
		if err := s.attendeeRepo.UpdateIdentity(ctx, assignment.currentAttendee.ID, patch); err != nil {
			return nil, fmt.Errorf("update round-robin attendee: %w", err)
		}
		// Re-read so the materialized event reflects committed state.
		booking, err = s.bookingRepo.GetByID(ctx, booking.ID)
		if err != nil {
			return nil, fmt.Errorf("reload booking: %w", err)
		}
	}

	// Syncing
	destCal, err := s.destinationCalendar(ctx, newOrganizer.ID)
	if err != nil {
		return nil, err
	}
	ev, err := s.materializer.buildEvent(booking, eventType, newOrganizer, destCal)
	if err != nil {
		return nil, err
	}
	var removeFrom []*domain.DestinationCalendar
	if changed {
		prevCal, err := s.destinationCalendar(ctx, prevOrganizerID)
		if err != nil {
			return nil, err
		}
		if prevCal != nil {
			removeFrom = append(removeFrom, prevCal)
		}
	}
	result, err := s.calendar.Reschedule(ctx, ev, booking.UID, changed, removeFrom)
	if err != nil {
		s.logger.ErrorContext(ctx, "calendar reschedule failed after booking mutation",
			"booking_id", booking.ID, "organizer_changed", changed, "err", err)
		return nil, fmt.Errorf("reschedule calendar event: %w", err)
	}

	// ReferencesReplaced: the sync result is the single point of truth; it
	// replaces the stored set, never merges with it. Each reference is
	// stamped with the new organizer's credential for its provider so later
	// calendar operations run under the right authorization.
	credentials, err := s.credentialRepo.ListByUserID(ctx, newOrganizer.ID)
	if err != nil {
		return nil, fmt.Errorf("list organizer credentials: %w", err)
	}
	for _, ref := range result.References {
		ref.BookingID = booking.ID
		if ref.CredentialID == nil {
			for _, c := range credentials {
				if c.Type == ref.Type {
					id := c.ID
					ref.CredentialID = &id
					break
				}
			}
		}
	}
	if err := s.referenceRepo.ReplaceForBooking(ctx, booking.ID, result.References); err != nil {
		return nil, fmt.Errorf("replace calendar references: %w", err)
	}
	booking.References = result.References

	// Notifying
	if err := s.notifier.SendScheduled(ctx, ev); err != nil {
		return nil, fmt.Errorf("send scheduled notification: %w", err)
	}
	if changed {
		prevOrganizer, err := s.userRepo.GetByID(ctx, prevOrganizerID)
		if err != nil {
			return nil, fmt.Errorf("get previous organizer: %w", err)
		}
		prevPerson, err := s.materializer.person(prevOrganizer.ID, prevOrganizer.Name, prevOrganizer.Email, prevOrganizer.TimeZone, prevOrganizer.Locale, nil)
		if err != nil {
			return nil, err
		}
		// Independent deep copy: the attendee-facing event above must not
		// observe the organizer overwrite.
		cancelled := ev.WithOrganizer(prevPerson)
		if err := s.notifier.SendCancelled(ctx, cancelled, domain.ReassignedCancellationReason); err != nil {
			return nil, fmt.Errorf("send cancelled notification: %w", err)
		}
	}

	// MigratingWorkflows
	if changed {
		if err := s.workflows.MigrateToNewHost(ctx, booking, eventType, ev, newOrganizer); err != nil {
			return nil, fmt.Errorf("migrate workflow reminders: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "booking reassigned",
		"booking_id", booking.ID, "new_host_id", newHostID, "organizer_changed", changed, "org_id", orgID)
	return booking, nil
}

// destinationCalendar returns the user's destination calendar, or nil when
// none is configured.
func (s *reassignmentService) destinationCalendar(ctx context.Context, userID string) (*domain.DestinationCalendar, error) {
	cal, err := s.destCalRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get destination calendar: %w", err)
	}
	return cal, nil
}
