package services

import (
	"context"
	"fmt"
	"log/slog"

	"teambooking/internal/domain"
)

type workflowMigrationService struct {
	logger        *slog.Logger
	reminderRepo  domain.WorkflowReminderRepository
	workflowRepo  domain.WorkflowRepository
	scheduler     domain.WorkflowScheduler
	bookerBaseURL string
}

// NewWorkflowMigrationService creates the migration service. bookerBaseURL is
// embedded into migrated reminder payloads so reminder emails can link back
// to the booking pages.
func NewWorkflowMigrationService(
	logger *slog.Logger,
	reminderRepo domain.WorkflowReminderRepository,
	workflowRepo domain.WorkflowRepository,
	scheduler domain.WorkflowScheduler,
	bookerBaseURL string,
) domain.WorkflowMigrationService {
	return &workflowMigrationService{
		logger:        logger,
		reminderRepo:  reminderRepo,
		workflowRepo:  workflowRepo,
		scheduler:     scheduler,
		bookerBaseURL: bookerBaseURL,
	}
}

// MigrateToNewHost repoints every pending host-email reminder of the booking
// at the new organizer and fires new-event workflows for them. Replacements
// are scheduled before the originals are cancelled, so a crash mid-migration
// leaves a trigger with a duplicate reminder rather than none.
func (s *workflowMigrationService) MigrateToNewHost(ctx context.Context, booking *domain.Booking, eventType *domain.EventType, ev *domain.CalendarEvent, newOrganizer *domain.User) error {
	reminders, err := s.reminderRepo.ListPendingHostEmail(ctx, booking.UID)
	if err != nil {
		return fmt.Errorf("list pending reminders: %w", err)
	}

	annotated := ev.WithOrganizer(ev.Organizer)
	annotated.VideoCallURL = ev.ConferenceURL
	annotated.BookerURL = s.bookerBaseURL

	for _, r := range reminders {
		if r.Workflow == nil || r.Step == nil {
			// The owning workflow or step was deleted from under the
			// reminder; surface it rather than migrating half a job.
			return fmt.Errorf("reminder %s: owning workflow: %w", r.ID, domain.ErrNotFound)
		}
		_, err := s.scheduler.ScheduleEmailReminder(ctx, domain.EmailReminderSpec{
			Event:          annotated,
			Trigger:        r.Workflow.Trigger,
			Time:           r.Workflow.Time,
			TimeUnit:       r.Workflow.TimeUnit,
			To:             newOrganizer.Email,
			Template:       r.Step.Template,
			WorkflowStepID: r.Step.ID,
		})
		if err != nil {
			return fmt.Errorf("schedule replacement reminder for step %s: %w", r.Step.ID, err)
		}
		if err := s.scheduler.DeleteScheduledEmailReminder(ctx, r.ID, r.ReferenceID); err != nil {
			return fmt.Errorf("cancel reminder %s: %w", r.ID, err)
		}
	}

	var teamID, parentTeamID *string
	if eventType.TeamID != nil {
		teamID = eventType.TeamID
	}
	if eventType.Team != nil {
		parentTeamID = eventType.Team.ParentID
	}
	workflows, err := s.workflowRepo.ListNewEventByEventType(ctx, eventType.ID, teamID, parentTeamID)
	if err != nil {
		return fmt.Errorf("list new-event workflows: %w", err)
	}
	for _, wf := range workflows {
		if err := s.scheduler.ScheduleWorkflowReminders(ctx, domain.WorkflowReminderSpec{
			Event:    annotated,
			Workflow: wf,
		}); err != nil {
			return fmt.Errorf("schedule new-event workflow %s: %w", wf.ID, err)
		}
	}

	s.logger.InfoContext(ctx, "workflow reminders migrated",
		"booking_uid", booking.UID, "migrated", len(reminders), "new_event_workflows", len(workflows))
	return nil
}
