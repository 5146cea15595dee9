package domain

import (
	"context"
	"encoding/json"
	"errors"
)

// Sentinel errors for host resolution.
var (
	// ErrInvalidTarget is returned when the requested host is not part of
	// the event type, or the host data is inconsistent.
	ErrInvalidTarget = errors.New("invalid round-robin host")
	// ErrFixedHostTarget is returned when the requested host has the fixed
	// role; fixed hosts are never valid reassignment targets.
	ErrFixedHostTarget = errors.New("target host is a fixed host")
)

// HostRole classifies a host on an event type.
type HostRole string

const (
	HostRoleFixed      HostRole = "fixed"
	HostRoleRoundRobin HostRole = "round_robin"
)

// Defaults applied when an event type lists plain users instead of hosts.
const (
	DefaultHostPriority = 2
	DefaultHostWeight   = 100
)

// Host is a (user, role) pair on an event type.
type Host struct {
	UserID   string   `json:"user_id"`
	Role     HostRole `json:"role"`
	Priority int      `json:"priority"`
	Weight   int      `json:"weight"`
	User     *User    `json:"user,omitempty"`
}

// LocationOption is one configured location of an event type.
type LocationOption struct {
	Type string `json:"type"`
	Link string `json:"link,omitempty"`
}

// Well-known location types.
const (
	// LocationOrganizerDefault tells the materializer to use the
	// organizer's default conferencing link from profile metadata.
	LocationOrganizerDefault = "conferencing:organizer_default"
	// LocationDefaultProvider is the fallback when neither the organizer
	// default nor the booking carries a location.
	LocationDefaultProvider = "integrations:daily-video"
)

// Team groups event types and hosts; teams may be nested one level via ParentID.
type Team struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id,omitempty"`
}

// EventType is the template a booking was created from. Read-only input to
// the reassignment core.
// swagger:model EventType
type EventType struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
	// Length is the meeting duration in minutes.
	Length int `json:"length"`
	// EventName is an optional custom title template; empty means the
	// default "X between Y and Z" title.
	EventName     string           `json:"event_name,omitempty"`
	Locations     []LocationOption `json:"locations,omitempty"`
	BookingFields json.RawMessage  `json:"booking_fields,omitempty"`
	Metadata      json.RawMessage  `json:"metadata,omitempty"`
	OwnerID       string           `json:"owner_id"`
	TeamID        *string          `json:"team_id,omitempty"`
	Team          *Team            `json:"team,omitempty"`
	Hosts         []*Host          `json:"hosts,omitempty"`
	// Users is the plain user list used when no explicit hosts are
	// configured; each defaults to the round-robin role.
	Users []*User `json:"users,omitempty"`
}

// EventTypeRepository defines storage operations for event types. GetByID
// returns the event type with team, hosts (users joined), and the plain user
// list loaded.
type EventTypeRepository interface {
	GetByID(ctx context.Context, id string) (*EventType, error)
}
