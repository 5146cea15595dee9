package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"teambooking/internal/domain"
)

type notificationService struct {
	logger   *slog.Logger
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewNotificationService returns a NotificationService that renders booking
// emails and sends them through the given Mailer.
func NewNotificationService(logger *slog.Logger, mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.NotificationService {
	return &notificationService{logger: logger, mailer: mailer, renderer: renderer}
}

// SendScheduled sends the "booking_scheduled" email to every attendee,
// naming the event's organizer.
func (s *notificationService) SendScheduled(ctx context.Context, ev *domain.CalendarEvent) error {
	for _, attendee := range ev.Attendees {
		data := &domain.BookingScheduledEmailData{
			AttendeeName:  attendee.Name,
			OrganizerName: ev.Organizer.Name,
			Title:         ev.Title,
			StartTime:     formatInZone(ev.StartTime, attendee.TimeZone),
			EndTime:       formatInZone(ev.EndTime, attendee.TimeZone),
			Location:      ev.Location,
			ConferenceURL: ev.ConferenceURL,
		}
		subject, htmlBody, textBody, err := s.renderer.Render("booking_scheduled", data)
		if err != nil {
			return fmt.Errorf("failed to render booking_scheduled template: %w", err)
		}
		if err := s.mailer.Send(attendee.Email, subject, htmlBody, textBody); err != nil {
			return fmt.Errorf("failed to send scheduled email to %s: %w", attendee.Email, err)
		}
		s.logger.InfoContext(ctx, "scheduled email sent", "to", attendee.Email, "booking_uid", ev.UID)
	}
	return nil
}

// SendCancelled sends the "booking_cancelled" email to the event's organizer.
func (s *notificationService) SendCancelled(ctx context.Context, ev *domain.CalendarEvent, reason string) error {
	data := &domain.BookingCancelledEmailData{
		OrganizerName: ev.Organizer.Name,
		Title:         ev.Title,
		StartTime:     formatInZone(ev.StartTime, ev.Organizer.TimeZone),
		Reason:        reason,
	}
	subject, htmlBody, textBody, err := s.renderer.Render("booking_cancelled", data)
	if err != nil {
		return fmt.Errorf("failed to render booking_cancelled template: %w", err)
	}
	if err := s.mailer.Send(ev.Organizer.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send cancelled email to %s: %w", ev.Organizer.Email, err)
	}
	s.logger.InfoContext(ctx, "cancelled email sent", "to", ev.Organizer.Email, "booking_uid", ev.UID)
	return nil
}

func formatInZone(t time.Time, tz string) string {
	if loc, err := time.LoadLocation(tz); err == nil && tz != "" {
		t = t.In(loc)
	}
	return t.Format("Mon, 02 Jan 2006 15:04 MST")
}
