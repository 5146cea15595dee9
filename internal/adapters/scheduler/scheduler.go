// Package scheduler persists workflow reminder jobs for an external runner
// to fire at their scheduled time.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"teambooking/internal/domain"
)

type reminderScheduler struct {
	logger       *slog.Logger
	reminderRepo domain.WorkflowReminderRepository
}

// NewReminderScheduler returns a WorkflowScheduler backed by the reminder
// repository.
func NewReminderScheduler(logger *slog.Logger, reminderRepo domain.WorkflowReminderRepository) domain.WorkflowScheduler {
	return &reminderScheduler{logger: logger, reminderRepo: reminderRepo}
}

// ScheduleEmailReminder creates one email reminder job. The delivery time is
// derived from the trigger and its offset relative to the event.
func (s *reminderScheduler) ScheduleEmailReminder(ctx context.Context, spec domain.EmailReminderSpec) (*domain.WorkflowReminder, error) {
	reminder := &domain.WorkflowReminder{
		BookingUID:     spec.Event.UID,
		Method:         domain.ReminderMethodEmail,
		ScheduledDate:  deliveryTime(spec),
		ReferenceID:    uuid.NewString(),
		WorkflowStepID: spec.WorkflowStepID,
		Recipient:      spec.To,
		Scheduled:      true,
	}
	if err := s.reminderRepo.Create(ctx, reminder); err != nil {
		return nil, fmt.Errorf("create reminder: %w", err)
	}
	s.logger.InfoContext(ctx, "email reminder scheduled",
		"booking_uid", reminder.BookingUID, "to", reminder.Recipient, "at", reminder.ScheduledDate, "reference_id", reminder.ReferenceID)
	return reminder, nil
}

// DeleteScheduledEmailReminder cancels a reminder job. The reference id is
// logged so the external runner can discard any in-flight copy.
func (s *reminderScheduler) DeleteScheduledEmailReminder(ctx context.Context, id, referenceID string) error {
	if err := s.reminderRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete reminder %s: %w", id, err)
	}
	s.logger.InfoContext(ctx, "email reminder cancelled", "reminder_id", id, "reference_id", referenceID)
	return nil
}

// ScheduleWorkflowReminders schedules every host-email step of the workflow
// against the event's organizer.
func (s *reminderScheduler) ScheduleWorkflowReminders(ctx context.Context, spec domain.WorkflowReminderSpec) error {
	for _, step := range spec.Workflow.Steps {
		if step.Action != domain.ActionEmailHost {
			continue
		}
		_, err := s.ScheduleEmailReminder(ctx, domain.EmailReminderSpec{
			Event:          spec.Event,
			Trigger:        spec.Workflow.Trigger,
			Time:           spec.Workflow.Time,
			TimeUnit:       spec.Workflow.TimeUnit,
			To:             spec.Event.Organizer.Email,
			Template:       step.Template,
			WorkflowStepID: step.ID,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func deliveryTime(spec domain.EmailReminderSpec) time.Time {
	offset := (&domain.Workflow{Time: spec.Time, TimeUnit: spec.TimeUnit}).Offset()
	switch spec.Trigger {
	case domain.TriggerBeforeEvent:
		return spec.Event.StartTime.Add(-offset)
	case domain.TriggerAfterEvent:
		return spec.Event.EndTime.Add(offset)
	default:
		return time.Now()
	}
}
