package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ayumu-dev/dekita/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var templateID sql.NullInt64

	err := scanner.Scan(&t.ID, &t.Title, &t.Date, &templateID, &t.CreatedBy, &t.FamilyID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if templateID.Valid {
		t.TemplateID = &templateID.Int64
	}
	t.ChildrenStatus = make(map[int64]model.ChildStatus)
	return &t, nil
}

const taskCols = `id, title, date, template_id, created_by, family_id, created_at, updated_at`

// Create inserts a task and seeds one incomplete status row per child.
// The task and its status rows are written in a single transaction so a
// half-seeded task is never visible.
func (s *TaskStore) Create(title, date string, templateID *int64, createdBy int64, familyID string, childIDs []int64) (*model.Task, error) {
	var tmplID sql.NullInt64
	if templateID != nil {
		tmplID = sql.NullInt64{Int64: *templateID, Valid: true}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO tasks (title, date, template_id, created_by, family_id) VALUES (?, ?, ?, ?, ?)`,
		title, date, tmplID, createdBy, familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO task_statuses (task_id, child_id) VALUES (?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	for _, childID := range childIDs {
		if _, err := stmt.Exec(id, childID); err != nil {
			return nil, fmt.Errorf("seed status for child %d: %w", childID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) GetByID(id int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if err := s.attachStatuses([]*model.Task{t}); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TaskStore) ListByFamilyAndDate(familyID, date string) ([]model.Task, error) {
	return s.list(
		`SELECT `+taskCols+` FROM tasks WHERE family_id = ? AND date = ? ORDER BY created_at ASC, id ASC`,
		familyID, date,
	)
}

// ListByFamilyAndDateRange returns tasks with start <= date <= end.
// Lexicographic comparison is correct for yyyy-mm-dd strings.
func (s *TaskStore) ListByFamilyAndDateRange(familyID, start, end string) ([]model.Task, error) {
	return s.list(
		`SELECT `+taskCols+` FROM tasks WHERE family_id = ? AND date >= ? AND date <= ? ORDER BY date ASC, id ASC`,
		familyID, start, end,
	)
}

func (s *TaskStore) list(query string, args ...any) ([]model.Task, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	refs := make([]*model.Task, len(tasks))
	for i := range tasks {
		refs[i] = &tasks[i]
	}
	if err := s.attachStatuses(refs); err != nil {
		return nil, err
	}
	return tasks, nil
}

// attachStatuses fills ChildrenStatus for the given tasks with one query.
func (s *TaskStore) attachStatuses(tasks []*model.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	byID := make(map[int64]*model.Task, len(tasks))
	placeholders := make([]string, len(tasks))
	args := make([]any, len(tasks))
	for i, t := range tasks {
		byID[t.ID] = t
		placeholders[i] = "?"
		args[i] = t.ID
	}

	rows, err := s.db.Query(
		`SELECT task_id, child_id, is_completed, comment, completed_at FROM task_statuses WHERE task_id IN (`+strings.Join(placeholders, ", ")+`)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("list task statuses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var taskID, childID int64
		var completed int
		var comment string
		var completedAt sql.NullTime
		if err := rows.Scan(&taskID, &childID, &completed, &comment, &completedAt); err != nil {
			return fmt.Errorf("scan task status: %w", err)
		}

		status := model.ChildStatus{
			IsCompleted: completed != 0,
			Comment:     comment,
		}
		if completedAt.Valid {
			at := completedAt.Time
			status.CompletedAt = &at
		}
		if t, ok := byID[taskID]; ok {
			t.ChildrenStatus[childID] = status
		}
	}
	return rows.Err()
}

// UpsertStatus writes exactly one child's status entry on a task, leaving
// all other entries untouched.
func (s *TaskStore) UpsertStatus(taskID, childID int64, isCompleted bool, comment string, completedAt *time.Time) error {
	var completed int
	if isCompleted {
		completed = 1
	}
	var at sql.NullTime
	if completedAt != nil {
		at = sql.NullTime{Time: *completedAt, Valid: true}
	}

	_, err := s.db.Exec(
		`INSERT INTO task_statuses (task_id, child_id, is_completed, comment, completed_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(task_id, child_id) DO UPDATE SET is_completed = excluded.is_completed, comment = excluded.comment, completed_at = excluded.completed_at`,
		taskID, childID, completed, comment, at,
	)
	if err != nil {
		return fmt.Errorf("upsert task status: %w", err)
	}
	return nil
}

func (s *TaskStore) UpdateTitle(id int64, title string) (*model.Task, error) {
	_, err := s.db.Exec(
		`UPDATE tasks SET title = ?, updated_at = datetime('now') WHERE id = ?`,
		title, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task title: %w", err)
	}
	return s.GetByID(id)
}
