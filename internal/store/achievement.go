package store

import (
	"database/sql"
	"fmt"

	"github.com/ayumu-dev/dekita/internal/model"
)

type AchievementStore struct {
	db *sql.DB
}

func NewAchievementStore(db *sql.DB) *AchievementStore {
	return &AchievementStore{db: db}
}

func (s *AchievementStore) Get(userID int64, date string) (*model.Achievement, error) {
	var a model.Achievement
	err := s.db.QueryRow(
		`SELECT user_id, date, completed_count, updated_at FROM achievements WHERE user_id = ? AND date = ?`,
		userID, date,
	).Scan(&a.UserID, &a.Date, &a.CompletedCount, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get achievement: %w", err)
	}
	return &a, nil
}

// Increment adds 1 to a child's completed count for a day, creating the
// record with count 1 if it does not exist yet.
func (s *AchievementStore) Increment(userID int64, date string) error {
	_, err := s.db.Exec(
		`INSERT INTO achievements (user_id, date, completed_count) VALUES (?, ?, 1)
		 ON CONFLICT(user_id, date) DO UPDATE SET completed_count = completed_count + 1, updated_at = datetime('now')`,
		userID, date,
	)
	if err != nil {
		return fmt.Errorf("increment achievement: %w", err)
	}
	return nil
}

// Decrement subtracts 1 from a child's completed count, floored at zero.
// A missing record is a no-op rather than an error.
func (s *AchievementStore) Decrement(userID int64, date string) error {
	_, err := s.db.Exec(
		`UPDATE achievements SET completed_count = MAX(completed_count - 1, 0), updated_at = datetime('now') WHERE user_id = ? AND date = ?`,
		userID, date,
	)
	if err != nil {
		return fmt.Errorf("decrement achievement: %w", err)
	}
	return nil
}

// ListByUserAndDateRange returns a child's daily counts within
// start <= date <= end, ordered by date.
func (s *AchievementStore) ListByUserAndDateRange(userID int64, start, end string) ([]model.Achievement, error) {
	rows, err := s.db.Query(
		`SELECT user_id, date, completed_count, updated_at FROM achievements WHERE user_id = ? AND date >= ? AND date <= ? ORDER BY date ASC`,
		userID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("list achievements by range: %w", err)
	}
	defer rows.Close()

	var achievements []model.Achievement
	for rows.Next() {
		var a model.Achievement
		if err := rows.Scan(&a.UserID, &a.Date, &a.CompletedCount, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}
