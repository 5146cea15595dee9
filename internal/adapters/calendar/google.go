package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"teambooking/internal/domain"
)

// googleSync implements domain.CalendarSync against the Google Calendar API.
type googleSync struct {
	service *gcal.Service
	logger  *slog.Logger
}

// NewGoogleSync creates a calendar sync backed by Google Calendar. The token
// must carry the calendar events scope.
func NewGoogleSync(ctx context.Context, logger *slog.Logger, clientID, clientSecret string, token *oauth2.Token) (domain.CalendarSync, error) {
	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       []string{gcal.CalendarEventsScope},
		Endpoint:     google.Endpoint,
	}
	client := config.Client(ctx, token)
	service, err := gcal.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return &googleSync{service: service, logger: logger}, nil
}

// Reschedule removes the event from the removal-set calendars, writes it to
// the destination calendar of the event's organizer, and returns the complete
// new reference set. The result is never merged with prior references.
func (g *googleSync) Reschedule(ctx context.Context, ev *domain.CalendarEvent, uid string, organizerChanged bool, removeFrom []*domain.DestinationCalendar) (*domain.RescheduleResult, error) {
	calendarID := "primary"
	if ev.DestinationCalendar != nil {
		calendarID = ev.DestinationCalendar.ExternalID
	}

	if organizerChanged {
		for _, cal := range removeFrom {
			if err := g.deleteByUID(ctx, cal.ExternalID, uid); err != nil {
				return nil, err
			}
		}
	} else {
		// The destination calendar already holds this iCal UID from the
		// original booking; Google rejects a duplicate insert with 409.
		if err := g.deleteByUID(ctx, calendarID, uid); err != nil {
			return nil, err
		}
	}

	created, err := g.service.Events.Insert(calendarID, toGoogleEvent(ev, uid)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to insert calendar event: %w", err)
	}
	g.logger.InfoContext(ctx, "calendar event written", "calendar_id", calendarID, "event_id", created.Id)

	ref := &domain.CalendarReference{
		Type: "google_calendar",
		UID:  created.Id,
	}
	if created.HangoutLink != "" {
		link := created.HangoutLink
		ref.MeetingURL = &link
	}
	return &domain.RescheduleResult{References: []*domain.CalendarReference{ref}}, nil
}

// deleteByUID removes the event with the given iCal UID from a calendar. A
// missing event is not an error; the invite may have been declined or purged.
func (g *googleSync) deleteByUID(ctx context.Context, calendarID, uid string) error {
	list, err := g.service.Events.List(calendarID).ICalUID(uid).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to look up event %s in %s: %w", uid, calendarID, err)
	}
	for _, item := range list.Items {
		if err := g.service.Events.Delete(calendarID, item.Id).Context(ctx).Do(); err != nil && !isGone(err) {
			return fmt.Errorf("failed to remove event %s from %s: %w", item.Id, calendarID, err)
		}
	}
	return nil
}

func isGone(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == 404 || apiErr.Code == 410
	}
	return false
}

func toGoogleEvent(ev *domain.CalendarEvent, uid string) *gcal.Event {
	gev := &gcal.Event{
		ICalUID:     uid,
		Summary:     ev.Title,
		Description: ev.Description,
		Location:    ev.Location,
		Start: &gcal.EventDateTime{
			DateTime: ev.StartTime.Format(time.RFC3339),
			TimeZone: ev.Organizer.TimeZone,
		},
		End: &gcal.EventDateTime{
			DateTime: ev.EndTime.Format(time.RFC3339),
			TimeZone: ev.Organizer.TimeZone,
		},
		Organizer: &gcal.EventOrganizer{
			DisplayName: ev.Organizer.Name,
			Email:       ev.Organizer.Email,
		},
	}
	for _, a := range ev.Attendees {
		gev.Attendees = append(gev.Attendees, &gcal.EventAttendee{
			DisplayName: a.Name,
			Email:       a.Email,
		})
	}
	return gev
}
