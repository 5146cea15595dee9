package postgres

import (
	"context"
	"database/sql"

	"teambooking/internal/domain"
)

type workflowReminderRepository struct {
	DB *sql.DB
}

func NewWorkflowReminderRepository(db *sql.DB) domain.WorkflowReminderRepository {
	return &workflowReminderRepository{
		DB: db,
	}
}

// ListPendingHostEmail returns scheduled, not-yet-due email reminders for the
// booking whose step emails the host, with step and workflow preloaded. Only
// reminders owned by the event-driven trigger classes qualify; the trigger
// column is free text, so the filter lives in the query.
func (r *workflowReminderRepository) ListPendingHostEmail(ctx context.Context, bookingUID string) ([]*domain.WorkflowReminder, error) {
	query := `
		SELECT rem.id, rem.booking_uid, rem.method, rem.scheduled_date,
			rem.reference_id, rem.workflow_step_id, rem.recipient, rem.scheduled,
			s.id, s.workflow_id, s.action, s.template, s.subject, s.body,
			w.id, w.name, w.trigger, w.time, w.time_unit, w.team_id, w.active_on_all
		FROM workflow_reminders rem
		JOIN workflow_steps s ON s.id = rem.workflow_step_id
		JOIN workflows w ON w.id = s.workflow_id
		WHERE rem.booking_uid = $1
			AND rem.method = 'email'
			AND rem.scheduled
			AND rem.scheduled_date > NOW()
			AND s.action = 'email_host'
			AND w.trigger IN ('before_event', 'new_event', 'after_event')
		ORDER BY rem.scheduled_date
	`
	rows, err := r.DB.QueryContext(ctx, query, bookingUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reminders := make([]*domain.WorkflowReminder, 0)
	for rows.Next() {
		rem := &domain.WorkflowReminder{
			Step:     &domain.WorkflowStep{},
			Workflow: &domain.Workflow{},
		}
		var refNull, subjectNull, bodyNull, teamIDNull sql.NullString
		err := rows.Scan(
			&rem.ID, &rem.BookingUID, &rem.Method, &rem.ScheduledDate,
			&refNull, &rem.WorkflowStepID, &rem.Recipient, &rem.Scheduled,
			&rem.Step.ID, &rem.Step.WorkflowID, &rem.Step.Action, &rem.Step.Template, &subjectNull, &bodyNull,
			&rem.Workflow.ID, &rem.Workflow.Name, &rem.Workflow.Trigger, &rem.Workflow.Time, &rem.Workflow.TimeUnit, &teamIDNull, &rem.Workflow.ActiveOnAll,
		)
		if err != nil {
			return nil, err
		}
		if refNull.Valid {
			rem.ReferenceID = refNull.String
		}
		if subjectNull.Valid {
			rem.Step.Subject = &subjectNull.String
		}
		if bodyNull.Valid {
			rem.Step.Body = &bodyNull.String
		}
		if teamIDNull.Valid {
			rem.Workflow.TeamID = &teamIDNull.String
		}
		reminders = append(reminders, rem)
	}
	return reminders, rows.Err()
}

func (r *workflowReminderRepository) Create(ctx context.Context, reminder *domain.WorkflowReminder) error {
	query := `
		INSERT INTO workflow_reminders
			(booking_uid, method, scheduled_date, reference_id, workflow_step_id, recipient, scheduled)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		reminder.BookingUID, reminder.Method, reminder.ScheduledDate,
		reminder.ReferenceID, reminder.WorkflowStepID, reminder.Recipient, reminder.Scheduled,
	).Scan(&reminder.ID)
}

func (r *workflowReminderRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM workflow_reminders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
