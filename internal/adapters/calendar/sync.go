package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/oauth2"

	"teambooking/internal/domain"
)

// SyncConfig holds configuration for creating a calendar sync.
type SyncConfig struct {
	Provider     string
	ClientID     string
	ClientSecret string
	TokenFile    string
}

// NewSync creates a calendar sync from config. Provider "google" uses the
// Google Calendar API; "noop" or unknown uses a no-op sync that still returns
// a reference so the replacement invariant holds in development.
func NewSync(ctx context.Context, logger *slog.Logger, config SyncConfig) (domain.CalendarSync, error) {
	switch config.Provider {
	case "google":
		token, err := tokenFromFile(config.TokenFile)
		if err != nil {
			return nil, fmt.Errorf("could not load google token: %w", err)
		}
		return NewGoogleSync(ctx, logger, config.ClientID, config.ClientSecret, token)
	case "noop":
		return &noopSync{logger: logger}, nil
	default:
		logger.Warn("unknown calendar provider, using noop", "provider", config.Provider)
		return &noopSync{logger: logger}, nil
	}
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

type noopSync struct {
	logger *slog.Logger
}

func (n *noopSync) Reschedule(ctx context.Context, ev *domain.CalendarEvent, uid string, organizerChanged bool, removeFrom []*domain.DestinationCalendar) (*domain.RescheduleResult, error) {
	n.logger.InfoContext(ctx, "calendar event would be rescheduled (noop)",
		"uid", uid, "organizer", ev.Organizer.Email, "organizer_changed", organizerChanged, "remove_from", len(removeFrom))
	return &domain.RescheduleResult{
		References: []*domain.CalendarReference{{Type: "noop_calendar", UID: uid}},
	}, nil
}
