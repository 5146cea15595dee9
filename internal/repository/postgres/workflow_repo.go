package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"teambooking/internal/domain"
)

type workflowRepository struct {
	DB *sql.DB
}

func NewWorkflowRepository(db *sql.DB) domain.WorkflowRepository {
	return &workflowRepository{
		DB: db,
	}
}

// ListNewEventByEventType returns new_event workflows that apply to the event
// type: activated on it directly, active on every event type of its team or
// parent team, or explicitly activated on the team.
func (r *workflowRepository) ListNewEventByEventType(ctx context.Context, eventTypeID string, teamID, parentTeamID *string) ([]*domain.Workflow, error) {
	query := `
		SELECT DISTINCT w.id, w.name, w.trigger, w.time, w.time_unit, w.team_id, w.active_on_all
		FROM workflows w
		LEFT JOIN workflows_on_event_types woe ON woe.workflow_id = w.id
		LEFT JOIN workflows_on_teams wot ON wot.workflow_id = w.id
		WHERE w.trigger = 'new_event'
			AND (
				woe.event_type_id = $1
				OR (w.active_on_all AND w.team_id IN ($2, $3))
				OR wot.team_id = $2
			)
		ORDER BY w.id
	`
	rows, err := r.DB.QueryContext(ctx, query, eventTypeID, nullableString(teamID), nullableString(parentTeamID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workflows := make([]*domain.Workflow, 0)
	ids := make([]string, 0)
	for rows.Next() {
		w := &domain.Workflow{}
		var teamIDNull sql.NullString
		if err := rows.Scan(&w.ID, &w.Name, &w.Trigger, &w.Time, &w.TimeUnit, &teamIDNull, &w.ActiveOnAll); err != nil {
			return nil, err
		}
		if teamIDNull.Valid {
			w.TeamID = &teamIDNull.String
		}
		workflows = append(workflows, w)
		ids = append(ids, w.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(workflows) == 0 {
		return workflows, nil
	}

	steps, err := r.listSteps(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, w := range workflows {
		w.Steps = steps[w.ID]
	}
	return workflows, nil
}

func (r *workflowRepository) listSteps(ctx context.Context, workflowIDs []string) (map[string][]*domain.WorkflowStep, error) {
	query := `
		SELECT id, workflow_id, action, template, subject, body
		FROM workflow_steps
		WHERE workflow_id = ANY($1)
		ORDER BY id
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(workflowIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	steps := make(map[string][]*domain.WorkflowStep)
	for rows.Next() {
		s := &domain.WorkflowStep{}
		var subjectNull, bodyNull sql.NullString
		if err := rows.Scan(&s.ID, &s.WorkflowID, &s.Action, &s.Template, &subjectNull, &bodyNull); err != nil {
			return nil, err
		}
		if subjectNull.Valid {
			s.Subject = &subjectNull.String
		}
		if bodyNull.Valid {
			s.Body = &bodyNull.String
		}
		steps[s.WorkflowID] = append(steps[s.WorkflowID], s)
	}
	return steps, rows.Err()
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
