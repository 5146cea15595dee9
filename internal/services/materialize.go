package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"teambooking/internal/domain"
)

// defaultParticipantName is used in titles when a participant has no name.
const defaultParticipantName = "Nameless"

// materializer rebuilds the outbound calendar-event representation for a
// booking, consistent with its (possibly new) organizer.
type materializer struct {
	translate domain.TranslateFunc
}

func newMaterializer(translate domain.TranslateFunc) *materializer {
	return &materializer{translate: translate}
}

// bookingField is the subset of the event type's field schema needed for the
// reschedule view.
type bookingField struct {
	Name   string `json:"name"`
	Hidden bool   `json:"hidden"`
}

// parseResponses re-derives the booking's field responses against the event
// type's schema. Parse failures degrade to an unparsed result; titling then
// proceeds without structured responses.
func (m *materializer) parseResponses(eventType *domain.EventType, booking *domain.Booking) domain.ResponseSet {
	if len(booking.Responses) == 0 {
		return domain.ResponseSet{}
	}
	var raw map[string]any
	if err := json.Unmarshal(booking.Responses, &raw); err != nil {
		return domain.ResponseSet{}
	}
	if len(eventType.BookingFields) == 0 {
		return domain.ResponseSet{Parsed: true, Values: raw}
	}
	var fields []bookingField
	if err := json.Unmarshal(eventType.BookingFields, &fields); err != nil {
		return domain.ResponseSet{}
	}
	values := make(map[string]any)
	for _, f := range fields {
		if f.Hidden {
			continue
		}
		if v, ok := raw[f.Name]; ok {
			values[f.Name] = v
		}
	}
	return domain.ResponseSet{Parsed: true, Values: values}
}

// userMetadata is the subset of the organizer's profile metadata used here.
type userMetadata struct {
	DefaultConferencingApp struct {
		AppLink string `json:"appLink"`
	} `json:"defaultConferencingApp"`
}

func defaultConferencingLink(u *domain.User) string {
	if len(u.Metadata) == 0 {
		return ""
	}
	var md userMetadata
	if err := json.Unmarshal(u.Metadata, &md); err != nil {
		return ""
	}
	return md.DefaultConferencingApp.AppLink
}

// resolveLocation picks the event location for the new organizer: the
// organizer's default conferencing link when the event type asks for it, the
// current booking location otherwise, and the default provider when neither
// is set. The result is resolved against the event type's configured
// location list to recover a join URL.
func (m *materializer) resolveLocation(eventType *domain.EventType, booking *domain.Booking, organizer *domain.User) (location, conferenceURL string) {
	for _, opt := range eventType.Locations {
		if opt.Type == domain.LocationOrganizerDefault {
			if link := defaultConferencingLink(organizer); link != "" {
				return link, link
			}
			break
		}
	}
	location = booking.Location
	if location == "" {
		location = domain.LocationDefaultProvider
	}
	for _, opt := range eventType.Locations {
		if opt.Type == location && opt.Link != "" {
			conferenceURL = opt.Link
			break
		}
	}
	if conferenceURL == "" && strings.HasPrefix(location, "http") {
		conferenceURL = location
	}
	return location, conferenceURL
}

// bookingTitle recomputes the booking title for the given organizer. The
// same template serves both the changed- and unchanged-organizer paths.
func (m *materializer) bookingTitle(eventType *domain.EventType, booking *domain.Booking, organizer *domain.User) (string, error) {
	attendeeName := defaultParticipantName
	if len(booking.Attendees) > 0 && booking.Attendees[0].Name != "" {
		attendeeName = booking.Attendees[0].Name
	}
	hostName := organizer.Name
	if hostName == "" {
		hostName = defaultParticipantName
	}

	if eventType.EventName != "" {
		return m.renderTitleTemplate(eventType, booking, organizer, hostName, attendeeName), nil
	}

	tr, err := m.translate(localeOrDefault(organizer.Locale), "common")
	if err != nil {
		return "", fmt.Errorf("bind organizer translator: %w", err)
	}
	return tr.T("event_between_users", eventType.Title, hostName, attendeeName), nil
}

func (m *materializer) renderTitleTemplate(eventType *domain.EventType, booking *domain.Booking, organizer *domain.User, hostName, attendeeName string) string {
	location, _ := m.resolveLocation(eventType, booking, organizer)
	teamName := ""
	if eventType.Team != nil {
		teamName = eventType.Team.Name
	}
	pairs := []string{
		"{Event type title}", eventType.Title,
		"{Scheduler}", attendeeName,
		"{Organiser}", hostName,
		"{Location}", location,
		"{Team}", teamName,
		"{Duration}", fmt.Sprintf("%d", eventType.Length),
	}
	for name, value := range m.parseResponses(eventType, booking).Values {
		pairs = append(pairs, "{"+name+"}", fmt.Sprint(value))
	}
	return strings.NewReplacer(pairs...).Replace(eventType.EventName)
}

// buildEvent materializes the full calendar-event representation from the
// updated booking and its new organizer.
func (m *materializer) buildEvent(booking *domain.Booking, eventType *domain.EventType, organizer *domain.User, destCal *domain.DestinationCalendar) (*domain.CalendarEvent, error) {
	organizerPerson, err := m.person(organizer.ID, organizer.Name, organizer.Email, organizer.TimeZone, organizer.Locale, nil)
	if err != nil {
		return nil, err
	}

	attendees := make([]domain.Person, 0, len(booking.Attendees))
	for _, a := range booking.Attendees {
		p, err := m.person("", a.Name, a.Email, a.TimeZone, a.Locale, a.PhoneNumber)
		if err != nil {
			return nil, err
		}
		attendees = append(attendees, p)
	}

	var team *domain.EventTeam
	if eventType.Team != nil {
		members := make([]domain.Person, 0, len(eventType.Hosts))
		for _, h := range eventType.Hosts {
			if h.User == nil {
				continue
			}
			p, err := m.person(h.User.ID, h.User.Name, h.User.Email, h.User.TimeZone, h.User.Locale, nil)
			if err != nil {
				return nil, err
			}
			members = append(members, p)
		}
		team = &domain.EventTeam{Name: eventType.Team.Name, Members: members}
	}

	location, conferenceURL := m.resolveLocation(eventType, booking, organizer)

	return &domain.CalendarEvent{
		Type:                eventType.Slug,
		Title:               booking.Title,
		UID:                 booking.UID,
		Description:         booking.Description,
		StartTime:           booking.StartTime,
		EndTime:             booking.EndTime,
		Organizer:           organizerPerson,
		Attendees:           attendees,
		Team:                team,
		Location:            location,
		ConferenceURL:       conferenceURL,
		DestinationCalendar: destCal,
		Responses:           m.parseResponses(eventType, booking),
		CustomInputs:        booking.CustomInputs,
		CancellationReason:  domain.ReassignedCancellationReason,
	}, nil
}

func (m *materializer) person(id, name, email, timeZone, locale string, phone *string) (domain.Person, error) {
	loc := localeOrDefault(locale)
	tr, err := m.translate(loc, "common")
	if err != nil {
		return domain.Person{}, fmt.Errorf("bind translator for %s: %w", loc, err)
	}
	return domain.Person{
		ID:          id,
		Name:        name,
		Email:       email,
		TimeZone:    timeZone,
		Language:    domain.EventLanguage{Locale: loc, Translator: tr},
		PhoneNumber: phone,
	}, nil
}

func localeOrDefault(locale string) string {
	if locale == "" {
		return "en"
	}
	return locale
}
