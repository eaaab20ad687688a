package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	log "github.com/go-pkgz/lgr"

	"daytriage/internal/model"
)

// TaskStorage persists the scheduler's collection as an ordered snapshot.
// Each Replace swaps the whole table in one transaction, so the stored state
// is always the result of a complete triage pass, never a partial merge.
type TaskStorage struct {
	db *sql.DB
}

func NewTaskStorage(db *sql.DB) *TaskStorage {
	return &TaskStorage{db: db}
}

// Load reads the collection back in stored order. Unparseable instants load
// as unset with a logged warning and corrupt rows are skipped; a broken
// database never prevents startup with an empty collection.
func (s *TaskStorage) Load(ctx context.Context) ([]model.Task, error) {
	const q = `
		SELECT id, title, duration_min, priority, place, status,
			start_time, end_time, not_before, deadline,
			long_term_value, rationale, created_at
		FROM tasks
		ORDER BY position ASC
	`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("could not load tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		var (
			task                           model.Task
			startRaw, endRaw, notBeforeRaw sql.NullString
			deadlineRaw, createdRaw        sql.NullString
		)
		err := rows.Scan(
			&task.ID,
			&task.Title,
			&task.Duration,
			&task.Priority,
			&task.Place,
			&task.Status,
			&startRaw,
			&endRaw,
			&notBeforeRaw,
			&deadlineRaw,
			&task.LongTermValue,
			&task.Rationale,
			&createdRaw,
		)
		if err != nil {
			log.Printf("[WARN] skipping corrupt task row: %v", err)
			continue
		}

		task.StartTime = parseInstant(startRaw, task.ID, "start_time")
		task.EndTime = parseInstant(endRaw, task.ID, "end_time")
		task.NotBefore = parseInstant(notBeforeRaw, task.ID, "not_before")
		task.Deadline = parseInstant(deadlineRaw, task.ID, "deadline")
		if created := parseInstant(createdRaw, task.ID, "created_at"); created != nil {
			task.CreatedAt = *created
		}

		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate tasks: %w", err)
	}
	return tasks, nil
}

// Replace swaps the whole stored collection for the given one.
func (s *TaskStorage) Replace(ctx context.Context, tasks []model.Task) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not start transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		tx.Rollback()
		return fmt.Errorf("could not clear tasks: %w", err)
	}

	const q = `
		INSERT INTO tasks (id, position, title, duration_min, priority, place, status,
			start_time, end_time, not_before, deadline, long_term_value, rationale, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for i, task := range tasks {
		_, err := tx.ExecContext(ctx, q,
			task.ID,
			i,
			task.Title,
			task.Duration,
			string(task.Priority),
			task.Place,
			string(task.Status),
			formatInstant(task.StartTime),
			formatInstant(task.EndTime),
			formatInstant(task.NotBefore),
			formatInstant(task.Deadline),
			task.LongTermValue,
			task.Rationale,
			task.CreatedAt.Format(time.RFC3339Nano),
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("could not store task id=%d: %w", task.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit tasks: %w", err)
	}
	return nil
}

func parseInstant(raw sql.NullString, id int64, column string) *time.Time {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, raw.String); err == nil {
			local := t.Local()
			return &local
		}
	}
	log.Printf("[WARN] task id=%d has invalid %s %q, treating as unset", id, column, raw.String)
	return nil
}

func formatInstant(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.RFC3339Nano), Valid: true}
}
