package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/ayumu-dev/dekita/internal/model"
)

type TemplateStore struct {
	db *sql.DB
}

func NewTemplateStore(db *sql.DB) *TemplateStore {
	return &TemplateStore{db: db}
}

// repeat_days is stored as a comma-joined weekday-index list, e.g. "1,3,5".
func joinRepeatDays(days []int) string {
	if len(days) == 0 {
		return ""
	}
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

func splitRepeatDays(s string) []int {
	if s == "" {
		return nil
	}
	var days []int
	for _, part := range strings.Split(s, ",") {
		d, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		days = append(days, d)
	}
	return days
}

func scanTemplate(scanner interface{ Scan(...any) error }) (*model.TaskTemplate, error) {
	var t model.TaskTemplate
	var repeatDays string

	err := scanner.Scan(&t.ID, &t.Title, &t.CreatedBy, &t.FamilyID, &t.RepeatType, &repeatDays, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}

	t.RepeatDays = splitRepeatDays(repeatDays)
	return &t, nil
}

const templateCols = `id, title, created_by, family_id, repeat_type, repeat_days, created_at, updated_at`

func (s *TemplateStore) Create(title string, createdBy int64, familyID, repeatType string, repeatDays []int) (*model.TaskTemplate, error) {
	result, err := s.db.Exec(
		`INSERT INTO task_templates (title, created_by, family_id, repeat_type, repeat_days) VALUES (?, ?, ?, ?, ?)`,
		title, createdBy, familyID, repeatType, joinRepeatDays(repeatDays),
	)
	if err != nil {
		return nil, fmt.Errorf("insert template: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TemplateStore) GetByID(id int64) (*model.TaskTemplate, error) {
	row := s.db.QueryRow(`SELECT `+templateCols+` FROM task_templates WHERE id = ?`, id)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

func (s *TemplateStore) ListByFamily(familyID string) ([]model.TaskTemplate, error) {
	rows, err := s.db.Query(
		`SELECT `+templateCols+` FROM task_templates WHERE family_id = ? ORDER BY created_at ASC, id ASC`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []model.TaskTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

// ListByCreator returns the templates a specific parent created within a
// family. Materialization is scoped to these.
func (s *TemplateStore) ListByCreator(createdBy int64, familyID string) ([]model.TaskTemplate, error) {
	rows, err := s.db.Query(
		`SELECT `+templateCols+` FROM task_templates WHERE created_by = ? AND family_id = ? ORDER BY created_at ASC, id ASC`,
		createdBy, familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list templates by creator: %w", err)
	}
	defer rows.Close()

	var templates []model.TaskTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

func (s *TemplateStore) Update(id int64, title, repeatType string, repeatDays []int) (*model.TaskTemplate, error) {
	_, err := s.db.Exec(
		`UPDATE task_templates SET title = ?, repeat_type = ?, repeat_days = ?, updated_at = datetime('now') WHERE id = ?`,
		title, repeatType, joinRepeatDays(repeatDays), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}
	return s.GetByID(id)
}

func (s *TemplateStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM task_templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}
