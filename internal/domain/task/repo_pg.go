package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careops/careops/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type taskRepoPG struct{ pool *pgxpool.Pool }

func NewTaskRepoPG(pool *pgxpool.Pool) TaskRepository {
	return &taskRepoPG{pool: pool}
}

func (r *taskRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const taskCols = `id, title, description, category, status, priority, due_date,
	assignee, dimension, patient_id, patient_name, estimated_minutes,
	created_at, updated_at`

func (r *taskRepoPG) scanTask(row pgx.Row) (*Task, error) {
	var t Task
	var due *time.Time
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Category, &t.Status, &t.Priority, &due,
		&t.Assignee, &t.Dimension, &t.PatientID, &t.PatientName, &t.EstimatedMinutes,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if due != nil {
		d := DateOf(*due)
		t.DueDate = &d
	}
	return &t, nil
}

func (r *taskRepoPG) Create(ctx context.Context, t *Task) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	var due, created *time.Time
	if t.DueDate != nil {
		d := t.DueDate.Time()
		due = &d
	}
	if !t.CreatedAt.IsZero() {
		created = &t.CreatedAt
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO tasks (id, title, description, category, status, priority, due_date,
			assignee, dimension, patient_id, patient_name, estimated_minutes, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,COALESCE($13, NOW()))
		RETURNING created_at, updated_at`,
		t.ID, t.Title, t.Description, string(t.Category), string(t.Status), string(t.Priority), due,
		t.Assignee, t.Dimension, t.PatientID, t.PatientName, t.EstimatedMinutes, created,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
}

func (r *taskRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	t, err := r.scanTask(r.conn(ctx).QueryRow(ctx, `SELECT `+taskCols+` FROM tasks WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

func (r *taskRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE tasks SET status = $2, updated_at = NOW() WHERE id = $1`, id, string(status))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *taskRepoPG) List(ctx context.Context, f StoreFilter) ([]*Task, error) {
	where, args := pgWhere(f)
	q := `SELECT ` + taskCols + ` FROM tasks` + where + ` ORDER BY due_date ASC NULLS LAST, created_at`

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Task
	for rows.Next() {
		t, err := r.scanTask(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

func pgWhere(f StoreFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if len(f.Statuses) > 0 {
		add("status = ANY($%d)", statusStrings(f.Statuses))
	}
	if f.PatientID != nil {
		add("patient_id = $%d", *f.PatientID)
	}
	if f.Category != "" {
		add("category = $%d", string(f.Category))
	}
	if f.Priority != "" {
		add("priority = $%d", string(f.Priority))
	}
	if !f.CreatedFrom.IsZero() {
		add("created_at >= $%d", f.CreatedFrom)
	}
	if !f.CreatedBefore.IsZero() {
		add("created_at < $%d", f.CreatedBefore)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
