package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"teambooking/internal/domain"
)

type eventTypeRepository struct {
	DB *sql.DB
}

func NewEventTypeRepository(db *sql.DB) domain.EventTypeRepository {
	return &eventTypeRepository{
		DB: db,
	}
}

// GetByID loads the event type together with its team, its host list, and its
// assigned users, which is everything host resolution needs.
func (r *eventTypeRepository) GetByID(ctx context.Context, id string) (*domain.EventType, error) {
	query := `
		SELECT et.id, et.title, et.slug, et.length, et.event_name,
			et.locations, et.booking_fields, et.metadata, et.owner_id, et.team_id,
			t.id, t.name, t.parent_id
		FROM event_types et
		LEFT JOIN teams t ON t.id = et.team_id
		WHERE et.id = $1
	`
	et := &domain.EventType{}
	var eventNameNull, ownerNull, teamIDNull sql.NullString
	var locations, bookingFields, metadata []byte
	var tID, tName, tParent sql.NullString
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&et.ID, &et.Title, &et.Slug, &et.Length, &eventNameNull,
		&locations, &bookingFields, &metadata, &ownerNull, &teamIDNull,
		&tID, &tName, &tParent,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if eventNameNull.Valid {
		et.EventName = eventNameNull.String
	}
	if ownerNull.Valid {
		et.OwnerID = ownerNull.String
	}
	if teamIDNull.Valid {
		et.TeamID = &teamIDNull.String
	}
	if len(locations) > 0 {
		if err := json.Unmarshal(locations, &et.Locations); err != nil {
			return nil, fmt.Errorf("decode event type locations: %w", err)
		}
	}
	et.BookingFields = bookingFields
	et.Metadata = metadata
	if tID.Valid {
		team := &domain.Team{ID: tID.String, Name: tName.String}
		if tParent.Valid {
			team.ParentID = &tParent.String
		}
		et.Team = team
	}

	hosts, err := r.listHosts(ctx, et.ID)
	if err != nil {
		return nil, err
	}
	et.Hosts = hosts

	users, err := r.listUsers(ctx, et.ID)
	if err != nil {
		return nil, err
	}
	et.Users = users

	return et, nil
}

func (r *eventTypeRepository) listHosts(ctx context.Context, eventTypeID string) ([]*domain.Host, error) {
	query := `
		SELECT h.user_id, h.role, h.priority, h.weight,
			u.id, u.name, u.email, u.time_zone, u.locale, u.metadata
		FROM event_type_hosts h
		JOIN users u ON u.id = h.user_id
		WHERE h.event_type_id = $1
		ORDER BY h.priority DESC, u.email
	`
	rows, err := r.DB.QueryContext(ctx, query, eventTypeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	hosts := make([]*domain.Host, 0)
	for rows.Next() {
		h := &domain.Host{User: &domain.User{}}
		if err := scanUserInto(rows, h.User, &h.UserID, &h.Role, &h.Priority, &h.Weight); err != nil {
			return nil, err
		}
		hosts = append(hosts, h)
	}
	return hosts, rows.Err()
}

func (r *eventTypeRepository) listUsers(ctx context.Context, eventTypeID string) ([]*domain.User, error) {
	query := `
		SELECT u.id, u.name, u.email, u.time_zone, u.locale, u.metadata
		FROM event_type_users eu
		JOIN users u ON u.id = eu.user_id
		WHERE eu.event_type_id = $1
		ORDER BY u.email
	`
	rows, err := r.DB.QueryContext(ctx, query, eventTypeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]*domain.User, 0)
	for rows.Next() {
		u := &domain.User{}
		if err := scanUserInto(rows, u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// scanUserInto scans any leading extra columns into extras, then the six user
// profile columns into u.
func scanUserInto(rows *sql.Rows, u *domain.User, extras ...any) error {
	var nameNull, tzNull, localeNull sql.NullString
	var metadata []byte
	dest := append(extras, &u.ID, &nameNull, &u.Email, &tzNull, &localeNull, &metadata)
	if err := rows.Scan(dest...); err != nil {
		return err
	}
	if nameNull.Valid {
		u.Name = nameNull.String
	}
	if tzNull.Valid {
		u.TimeZone = tzNull.String
	}
	if localeNull.Valid {
		u.Locale = localeNull.String
	}
	u.Metadata = metadata
	return nil
}
