package domain

import (
	"context"
	"encoding/json"
	"time"
)

// ReassignedCancellationReason annotates the representation sent to the
// previous organizer when a booking is manually moved to another host.
const ReassignedCancellationReason = "manually reassigned"

// Person is a participant on a materialized calendar event.
type Person struct {
	ID          string        `json:"id,omitempty"`
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	TimeZone    string        `json:"time_zone"`
	Language    EventLanguage `json:"language"`
	PhoneNumber *string       `json:"phone_number,omitempty"`
}

// EventLanguage binds a participant's locale to a translator for that locale.
type EventLanguage struct {
	Locale     string     `json:"locale"`
	Translator Translator `json:"-"`
}

// EventTeam is the team roster included on team event representations.
type EventTeam struct {
	Name    string   `json:"name"`
	Members []Person `json:"members"`
}

// ResponseSet is the tagged result of parsing booking field responses.
// Parsed is false when the stored responses did not match the event type's
// field schema; consumers degrade to untitled defaults instead of aborting.
type ResponseSet struct {
	Parsed bool           `json:"parsed"`
	Values map[string]any `json:"values,omitempty"`
}

// CalendarEvent is the outbound representation handed to calendar sync and
// notification collaborators. It is derived fresh for each reassignment and
// never persisted.
type CalendarEvent struct {
	Type                string               `json:"type"`
	Title               string               `json:"title"`
	UID                 string               `json:"uid"`
	Description         string               `json:"description,omitempty"`
	StartTime           time.Time            `json:"start_time"`
	EndTime             time.Time            `json:"end_time"`
	Organizer           Person               `json:"organizer"`
	Attendees           []Person             `json:"attendees"`
	Team                *EventTeam           `json:"team,omitempty"`
	Location            string               `json:"location,omitempty"`
	ConferenceURL       string               `json:"conference_url,omitempty"`
	DestinationCalendar *DestinationCalendar `json:"destination_calendar,omitempty"`
	Responses           ResponseSet          `json:"responses"`
	CustomInputs        json.RawMessage      `json:"custom_inputs,omitempty"`
	CancellationReason  string               `json:"cancellation_reason,omitempty"`
	// VideoCallURL and BookerURL are set only on the copies handed to the
	// workflow scheduler.
	VideoCallURL string `json:"video_call_url,omitempty"`
	BookerURL    string `json:"booker_url,omitempty"`
}

// WithOrganizer returns a deep copy of the event with the organizer replaced.
// The copy shares no mutable state with the receiver, so notifications built
// from both values cannot interfere.
func (e *CalendarEvent) WithOrganizer(organizer Person) *CalendarEvent {
	clone := *e
	clone.Organizer = organizer
	clone.Attendees = make([]Person, len(e.Attendees))
	copy(clone.Attendees, e.Attendees)
	if e.Team != nil {
		team := *e.Team
		team.Members = make([]Person, len(e.Team.Members))
		copy(team.Members, e.Team.Members)
		clone.Team = &team
	}
	if e.DestinationCalendar != nil {
		dc := *e.DestinationCalendar
		clone.DestinationCalendar = &dc
	}
	if e.Responses.Values != nil {
		values := make(map[string]any, len(e.Responses.Values))
		for k, v := range e.Responses.Values {
			values[k] = v
		}
		clone.Responses.Values = values
	}
	if e.CustomInputs != nil {
		clone.CustomInputs = append(json.RawMessage(nil), e.CustomInputs...)
	}
	return &clone
}

// RescheduleResult is the outcome of a calendar-sync reschedule call. Its
// reference set is the single point of truth for the booking's provider
// references after a reassignment.
type RescheduleResult struct {
	References []*CalendarReference
}

// CalendarSync is the provider-agnostic calendar collaborator.
type CalendarSync interface {
	// Reschedule writes the event under the booking's stable uid,
	// removing it from removeFrom first when the organizer changed, and
	// returns the complete new reference set.
	Reschedule(ctx context.Context, ev *CalendarEvent, uid string, organizerChanged bool, removeFrom []*DestinationCalendar) (*RescheduleResult, error)
}

// NotificationService dispatches booking emails to event participants.
type NotificationService interface {
	// SendScheduled notifies every attendee on the event.
	SendScheduled(ctx context.Context, ev *CalendarEvent) error
	// SendCancelled notifies the event's organizer that the meeting was
	// removed from their calendar.
	SendCancelled(ctx context.Context, ev *CalendarEvent, reason string) error
}
