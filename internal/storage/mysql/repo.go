package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"hbnb_web/internal/domain"
)

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Journal persists workflow outcomes in MySQL.
type Journal struct{ db *sql.DB }

func New(db *sql.DB) *Journal { return &Journal{db: db} }

// EnsureSchema creates the journal table when it does not exist.
func (j *Journal) EnsureSchema(ctx context.Context) error {
	if _, err := j.db.ExecContext(ctx, createJournalSQL); err != nil {
		return fmt.Errorf("create workflow_journal: %w", err)
	}
	return nil
}

func (j *Journal) Record(ctx context.Context, o domain.WorkflowOutcome) error {
	_, err := j.db.ExecContext(ctx, insertOutcomeSQL,
		o.PlaceID,
		o.Operation,
		string(o.Status),
		o.AmenitiesFailed,
		o.ImagesFailed,
		valStr(o.Detail),
		o.RecordedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("record outcome for place %d: %w", o.PlaceID, err)
	}
	return nil
}

func (j *Journal) ListIncomplete(ctx context.Context, limit int) ([]domain.WorkflowOutcome, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	rows, err := j.db.QueryContext(ctx, listIncompleteSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.WorkflowOutcome
	for rows.Next() {
		var (
			o      domain.WorkflowOutcome
			status string
		)
		if err := rows.Scan(&o.ID, &o.PlaceID, &o.Operation, &status, &o.AmenitiesFailed, &o.ImagesFailed, &o.Detail, &o.RecordedAt); err != nil {
			return nil, err
		}
		o.Status = domain.OutcomeStatus(status)
		out = append(out, o)
	}
	return out, rows.Err()
}
