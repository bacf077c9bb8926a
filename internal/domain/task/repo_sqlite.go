package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SQLiteSchema creates the tasks table for single-node installs. Timestamps
// are fixed-width UTC text so that range predicates compare lexically.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS tasks (
	id                TEXT PRIMARY KEY,
	title             TEXT NOT NULL,
	description       TEXT,
	category          TEXT NOT NULL,
	status            TEXT NOT NULL,
	priority          TEXT NOT NULL,
	due_date          TEXT,
	assignee          TEXT NOT NULL DEFAULT '',
	dimension         TEXT,
	patient_id        TEXT,
	patient_name      TEXT,
	estimated_minutes INTEGER,
	created_at        TEXT NOT NULL,
	updated_at        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_due_date ON tasks(due_date);
CREATE INDEX IF NOT EXISTS idx_tasks_patient_id ON tasks(patient_id);
CREATE INDEX IF NOT EXISTS idx_tasks_created_at ON tasks(created_at);
`

const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

type taskRepoSQLite struct {
	db  *sql.DB
	now func() time.Time
}

// NewTaskRepoSQLite wraps an open SQLite handle. The schema must already be
// applied.
func NewTaskRepoSQLite(db *sql.DB) TaskRepository {
	return &taskRepoSQLite{db: db, now: time.Now}
}

const sqliteTaskCols = `id, title, description, category, status, priority, due_date,
	assignee, dimension, patient_id, patient_name, estimated_minutes,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTaskSQLite(row rowScanner) (*Task, error) {
	var (
		t                        Task
		id, createdAt, updatedAt string
		description, dimension   sql.NullString
		due, patientID, name     sql.NullString
		category, status, prio   string
		minutes                  sql.NullInt64
	)
	err := row.Scan(&id, &t.Title, &description, &category, &status, &prio, &due,
		&t.Assignee, &dimension, &patientID, &name, &minutes, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if t.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("task id %q: %w", id, err)
	}
	t.Category, t.Status, t.Priority = Category(category), Status(status), Priority(prio)
	t.Description = nullString(description)
	t.Dimension = nullString(dimension)
	t.PatientName = nullString(name)
	if due.Valid && due.String != "" {
		d, err := ParseDate(due.String)
		if err != nil {
			return nil, fmt.Errorf("task %s due_date: %w", id, err)
		}
		t.DueDate = &d
	}
	if patientID.Valid && patientID.String != "" {
		pid, err := uuid.Parse(patientID.String)
		if err != nil {
			return nil, fmt.Errorf("task %s patient_id: %w", id, err)
		}
		t.PatientID = &pid
	}
	if minutes.Valid {
		m := int(minutes.Int64)
		t.EstimatedMinutes = &m
	}
	if t.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("task %s created_at: %w", id, err)
	}
	if t.UpdatedAt, err = time.Parse(sqliteTimeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("task %s updated_at: %w", id, err)
	}
	return &t, nil
}

func (r *taskRepoSQLite) Create(ctx context.Context, t *Task) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	now := r.now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	var due, patientID any
	if t.DueDate != nil {
		due = t.DueDate.String()
	}
	if t.PatientID != nil {
		patientID = t.PatientID.String()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (id, title, description, category, status, priority, due_date,
			assignee, dimension, patient_id, patient_name, estimated_minutes,
			created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		t.ID.String(), t.Title, t.Description, string(t.Category), string(t.Status), string(t.Priority), due,
		t.Assignee, t.Dimension, patientID, t.PatientName, t.EstimatedMinutes,
		t.CreatedAt.UTC().Format(sqliteTimeLayout), t.UpdatedAt.Format(sqliteTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *taskRepoSQLite) GetByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sqliteTaskCols+` FROM tasks WHERE id = ?`, id.String())
	t, err := scanTaskSQLite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

func (r *taskRepoSQLite) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), r.now().UTC().Format(sqliteTimeLayout), id.String())
	if err != nil {
		return false, fmt.Errorf("update task status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *taskRepoSQLite) List(ctx context.Context, f StoreFilter) ([]*Task, error) {
	q := strings.Builder{}
	q.WriteString("SELECT " + sqliteTaskCols + " FROM tasks WHERE 1=1")
	args := []any{}

	if len(f.Statuses) > 0 {
		q.WriteString(" AND status IN (" + strings.TrimSuffix(strings.Repeat("?,", len(f.Statuses)), ",") + ")")
		for _, s := range f.Statuses {
			args = append(args, string(s))
		}
	}
	if f.PatientID != nil {
		q.WriteString(" AND patient_id = ?")
		args = append(args, f.PatientID.String())
	}
	if f.Category != "" {
		q.WriteString(" AND category = ?")
		args = append(args, string(f.Category))
	}
	if f.Priority != "" {
		q.WriteString(" AND priority = ?")
		args = append(args, string(f.Priority))
	}
	if !f.CreatedFrom.IsZero() {
		q.WriteString(" AND created_at >= ?")
		args = append(args, f.CreatedFrom.UTC().Format(sqliteTimeLayout))
	}
	if !f.CreatedBefore.IsZero() {
		q.WriteString(" AND created_at < ?")
		args = append(args, f.CreatedBefore.UTC().Format(sqliteTimeLayout))
	}
	q.WriteString(" ORDER BY due_date ASC NULLS LAST, created_at ASC")

	rows, err := r.db.QueryContext(ctx, q.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		t, err := scanTaskSQLite(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
