package services

import (
	"teambooking/internal/domain"
)

// hostAssignment is the result of resolving an event type's hosts against a
// reassignment request.
type hostAssignment struct {
	// fixedHost is the first fixed host of the event type, if any. When
	// present, that host owns the calendar event regardless of which
	// round-robin participant is assigned.
	fixedHost *domain.Host
	// currentAttendee is the attendee representing the current round-robin
	// participant, matched by email equality against the non-fixed hosts.
	// Nil when no attendee matches; reassignment then proceeds without an
	// attendee substitution.
	currentAttendee *domain.Attendee
	target          *domain.Host
}

// eventTypeHosts returns the event type's host list, falling back to the
// plain user list with round-robin defaults when no hosts are configured.
func eventTypeHosts(eventType *domain.EventType) []*domain.Host {
	if len(eventType.Hosts) > 0 {
		return eventType.Hosts
	}
	hosts := make([]*domain.Host, 0, len(eventType.Users))
	for _, u := range eventType.Users {
		hosts = append(hosts, &domain.Host{
			UserID:   u.ID,
			Role:     domain.HostRoleRoundRobin,
			Priority: domain.DefaultHostPriority,
			Weight:   domain.DefaultHostWeight,
			User:     u,
		})
	}
	return hosts
}

// resolveHosts locates the requested target host and classifies the event
// type's hosts. It has no side effects.
func resolveHosts(eventType *domain.EventType, attendees []*domain.Attendee, newHostID string) (*hostAssignment, error) {
	hosts := eventTypeHosts(eventType)

	var target *domain.Host
	for _, h := range hosts {
		if h.UserID == newHostID {
			target = h
			break
		}
	}
	if target == nil {
		return nil, domain.ErrInvalidTarget
	}
	if target.Role == domain.HostRoleFixed {
		return nil, domain.ErrFixedHostTarget
	}

	assignment := &hostAssignment{target: target}
	for _, h := range hosts {
		if h.Role == domain.HostRoleFixed {
			assignment.fixedHost = h
			break
		}
	}

	for _, a := range attendees {
		if matchesRoundRobinHost(hosts, a.Email) {
			assignment.currentAttendee = a
			break
		}
	}
	return assignment, nil
}

func matchesRoundRobinHost(hosts []*domain.Host, email string) bool {
	for _, h := range hosts {
		if h.Role == domain.HostRoleFixed || h.User == nil {
			continue
		}
		if h.User.Email == email {
			return true
		}
	}
	return false
}

// organizerChanges reports whether the reassignment changes who owns the
// calendar event. With a fixed host present the fixed host stays the
// organizer; otherwise the round-robin host is the organizer, so assigning a
// different one changes ownership.
func organizerChanges(assignment *hostAssignment, booking *domain.Booking) bool {
	return assignment.fixedHost == nil && booking.UserID != assignment.target.UserID
}
