package domain

import (
	"context"
	"time"
)

// WorkflowTrigger is the event class a workflow reacts to.
type WorkflowTrigger string

const (
	TriggerBeforeEvent WorkflowTrigger = "before_event"
	TriggerAfterEvent  WorkflowTrigger = "after_event"
	TriggerNewEvent    WorkflowTrigger = "new_event"
)

// WorkflowAction is what a workflow step does when its reminder fires.
type WorkflowAction string

const (
	ActionEmailHost     WorkflowAction = "email_host"
	ActionEmailAttendee WorkflowAction = "email_attendee"
	ActionSMSAttendee   WorkflowAction = "sms_attendee"
)

// TimeUnit scales a workflow's trigger offset.
type TimeUnit string

const (
	TimeUnitMinute TimeUnit = "minute"
	TimeUnitHour   TimeUnit = "hour"
	TimeUnitDay    TimeUnit = "day"
)

// ReminderMethodEmail is the only delivery method this service dispatches.
const ReminderMethodEmail = "email"

// Workflow is a rule producing scheduled reminders for matching bookings.
type Workflow struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Trigger  WorkflowTrigger `json:"trigger"`
	Time     int             `json:"time"`
	TimeUnit TimeUnit        `json:"time_unit"`
	TeamID   *string         `json:"team_id,omitempty"`
	// ActiveOnAll applies the workflow to every event type of its team.
	ActiveOnAll  bool            `json:"active_on_all"`
	EventTypeIDs []string        `json:"event_type_ids,omitempty"`
	Steps        []*WorkflowStep `json:"steps"`
}

// WorkflowStep is one action of a workflow.
type WorkflowStep struct {
	ID         string         `json:"id"`
	WorkflowID string         `json:"workflow_id"`
	Action     WorkflowAction `json:"action"`
	Template   string         `json:"template"`
	Subject    *string        `json:"subject,omitempty"`
	Body       *string        `json:"body,omitempty"`
}

// WorkflowReminder is a scheduled notification job bound to a booking. It is
// created by workflow evaluation, migrated or deleted on reassignment, and
// eventually fired by an external scheduler.
type WorkflowReminder struct {
	ID             string    `json:"id"`
	BookingUID     string    `json:"booking_uid"`
	Method         string    `json:"method"`
	ScheduledDate  time.Time `json:"scheduled_date"`
	ReferenceID    string    `json:"reference_id"`
	WorkflowStepID string    `json:"workflow_step_id"`
	Recipient      string    `json:"recipient"`
	Scheduled      bool      `json:"scheduled"`
	Step           *WorkflowStep
	Workflow       *Workflow
}

// Offset returns the reminder lead/lag duration of a workflow.
func (w *Workflow) Offset() time.Duration {
	d := time.Duration(w.Time)
	switch w.TimeUnit {
	case TimeUnitHour:
		return d * time.Hour
	case TimeUnitDay:
		return d * 24 * time.Hour
	default:
		return d * time.Minute
	}
}

// WorkflowRepository looks up workflow rules.
type WorkflowRepository interface {
	// ListNewEventByEventType returns every new-event workflow applicable
	// to the event type: activated on it directly, active-on-all for its
	// team or the team's parent, or explicitly activated on the team.
	ListNewEventByEventType(ctx context.Context, eventTypeID string, teamID, parentTeamID *string) ([]*Workflow, error)
}

// WorkflowReminderRepository defines storage operations for reminder jobs.
type WorkflowReminderRepository interface {
	// ListPendingHostEmail returns the not-yet-fired email reminders of
	// the booking whose step action is email_host and whose workflow
	// trigger is before_event, new_event, or after_event, with step and
	// workflow loaded.
	ListPendingHostEmail(ctx context.Context, bookingUID string) ([]*WorkflowReminder, error)
	Create(ctx context.Context, reminder *WorkflowReminder) error
	Delete(ctx context.Context, id string) error
}

// EmailReminderSpec describes one email reminder to schedule.
type EmailReminderSpec struct {
	Event          *CalendarEvent
	Trigger        WorkflowTrigger
	Time           int
	TimeUnit       TimeUnit
	To             string
	Template       string
	WorkflowStepID string
}

// WorkflowReminderSpec schedules every host-email step of a workflow against
// the event's organizer.
type WorkflowReminderSpec struct {
	Event    *CalendarEvent
	Workflow *Workflow
}

// WorkflowScheduler creates and cancels scheduled reminder jobs.
type WorkflowScheduler interface {
	ScheduleEmailReminder(ctx context.Context, spec EmailReminderSpec) (*WorkflowReminder, error)
	DeleteScheduledEmailReminder(ctx context.Context, id, referenceID string) error
	ScheduleWorkflowReminders(ctx context.Context, spec WorkflowReminderSpec) error
}

// WorkflowMigrationService repoints in-flight reminders at a booking's new
// organizer and fires new-event workflows for them.
type WorkflowMigrationService interface {
	MigrateToNewHost(ctx context.Context, booking *Booking, eventType *EventType, ev *CalendarEvent, newOrganizer *User) error
}
