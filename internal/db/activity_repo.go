package db

import (
	"database/sql"
	"fmt"
	"time"
)

// ActivityLog is one recorded operation.
type ActivityLog struct {
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	Skill     string    `json:"skill,omitempty"`
	Author    string    `json:"author,omitempty"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Actions recorded in the activity log.
const (
	ActionImport  = "import"
	ActionShip    = "ship"
	ActionLand    = "land"
	ActionUpdate  = "update"
	ActionInstall = "install"
	ActionRemove  = "remove"
)

// ActivityRepo provides database operations for activity log entries.
type ActivityRepo struct {
	db *sql.DB
}

// NewActivityRepo creates a new ActivityRepo.
func NewActivityRepo(db *sql.DB) *ActivityRepo {
	return &ActivityRepo{db: db}
}

// ActivityFilter defines filters for listing activity log entries.
type ActivityFilter struct {
	Action string
	Skill  string
	Since  *time.Time
	Limit  int
	Offset int
}

// Create creates a new activity log entry.
func (r *ActivityRepo) Create(a *ActivityLog) error {
	if a.Action == "" {
		return fmt.Errorf("invalid activity log: action is required")
	}

	query := `
		INSERT INTO activity_log (action, skill, author, details, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	now := time.Now()
	result, err := r.db.Exec(query,
		a.Action, nullString(a.Skill), nullString(a.Author),
		nullString(a.Details), FormatTime(now),
	)
	if err != nil {
		return fmt.Errorf("failed to create activity log: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get activity log id: %w", err)
	}

	a.ID = id
	a.CreatedAt = now
	return nil
}

// Log is a convenience method to record an operation.
func (r *ActivityRepo) Log(action, skill, author, details string) error {
	return r.Create(&ActivityLog{Action: action, Skill: skill, Author: author, Details: details})
}

// List retrieves activity log entries matching the given filter, newest first.
func (r *ActivityRepo) List(filter ActivityFilter) ([]*ActivityLog, error) {
	query := `
		SELECT id, action, skill, author, details, created_at
		FROM activity_log
		WHERE 1=1
	`
	args := []interface{}{}

	if filter.Action != "" {
		query += " AND action = ?"
		args = append(args, filter.Action)
	}
	if filter.Skill != "" {
		query += " AND skill = ?"
		args = append(args, filter.Skill)
	}
	if filter.Since != nil {
		query += " AND created_at >= ?"
		args = append(args, FormatTime(*filter.Since))
	}

	query += " ORDER BY created_at DESC, id DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity log: %w", err)
	}
	defer rows.Close()

	return r.scanMany(rows)
}

// Count counts all activity log entries.
func (r *ActivityRepo) Count() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM activity_log`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count activity log: %w", err)
	}
	return count, nil
}

func (r *ActivityRepo) scanMany(rows *sql.Rows) ([]*ActivityLog, error) {
	var logs []*ActivityLog
	for rows.Next() {
		var a ActivityLog
		var skillName, author, details sql.NullString
		var createdAt string

		err := rows.Scan(&a.ID, &a.Action, &skillName, &author, &details, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity log: %w", err)
		}

		a.Skill = skillName.String
		a.Author = author.String
		a.Details = details.String
		a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		logs = append(logs, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity log: %w", err)
	}
	return logs, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
