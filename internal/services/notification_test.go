package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"teambooking/internal/domain"
)

type sentMail struct {
	to, subject string
}

type stubMailer struct {
	sent []sentMail
	err  error
}

func (m *stubMailer) Send(to, subject, html, text string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject})
	return nil
}

type stubRenderer struct{}

func (stubRenderer) Render(name string, data any) (string, string, string, error) {
	return name + " subject", "<p>html</p>", "text", nil
}

func notificationEvent() *domain.CalendarEvent {
	return &domain.CalendarEvent{
		UID:       "uid-1",
		Title:     "Intro Call",
		StartTime: time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC),
		Organizer: domain.Person{Name: "Grace", Email: "grace@x.com", TimeZone: "UTC"},
		Attendees: []domain.Person{
			{Name: "Ada", Email: "ada@y.com", TimeZone: "Europe/Berlin"},
			{Name: "Alan", Email: "alan@y.com", TimeZone: "UTC"},
		},
	}
}

func TestNotificationService_SendScheduled(t *testing.T) {
	mailer := &stubMailer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewNotificationService(logger, mailer, stubRenderer{})

	if err := svc.SendScheduled(context.Background(), notificationEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mailer.sent) != 2 {
		t.Fatalf("expected one email per attendee, got %d", len(mailer.sent))
	}
	if mailer.sent[0].to != "ada@y.com" || mailer.sent[1].to != "alan@y.com" {
		t.Errorf("unexpected recipients: %+v", mailer.sent)
	}
}

func TestNotificationService_SendCancelled(t *testing.T) {
	mailer := &stubMailer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewNotificationService(logger, mailer, stubRenderer{})

	if err := svc.SendCancelled(context.Background(), notificationEvent(), domain.ReassignedCancellationReason); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].to != "grace@x.com" {
		t.Errorf("cancelled email goes to the organizer, got %+v", mailer.sent)
	}
}

func TestNotificationService_MailerFailure(t *testing.T) {
	mailer := &stubMailer{err: errors.New("smtp down")}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewNotificationService(logger, mailer, stubRenderer{})

	if err := svc.SendScheduled(context.Background(), notificationEvent()); err == nil {
		t.Fatal("expected error")
	}
}
