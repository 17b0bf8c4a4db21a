package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Shipment statuses.
const (
	ShipmentOpen   = "open"
	ShipmentMerged = "merged"
)

// Shipment records one publishing branch and its pull request.
type Shipment struct {
	ID        int64      `json:"id"`
	Branch    string     `json:"branch"`
	Repo      string     `json:"repo"`
	PRURL     string     `json:"pr_url,omitempty"`
	Skills    []string   `json:"skills"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	MergedAt  *time.Time `json:"merged_at,omitempty"`
}

// ShipmentRepo provides database operations for shipments.
type ShipmentRepo struct {
	db *sql.DB
}

// NewShipmentRepo creates a new ShipmentRepo.
func NewShipmentRepo(db *sql.DB) *ShipmentRepo {
	return &ShipmentRepo{db: db}
}

// Create creates a new shipment record.
func (r *ShipmentRepo) Create(s *Shipment) error {
	if s.Branch == "" || s.Repo == "" {
		return fmt.Errorf("invalid shipment: branch and repo are required")
	}
	if s.Status == "" {
		s.Status = ShipmentOpen
	}

	query := `
		INSERT INTO shipments (branch, repo, pr_url, skills, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	now := time.Now()
	result, err := r.db.Exec(query,
		s.Branch, s.Repo, nullString(s.PRURL),
		strings.Join(s.Skills, ","), s.Status, FormatTime(now),
	)
	if err != nil {
		return fmt.Errorf("failed to create shipment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get shipment id: %w", err)
	}

	s.ID = id
	s.CreatedAt = now
	return nil
}

// MarkMerged marks the open shipment for branch as merged.
func (r *ShipmentRepo) MarkMerged(branch string) error {
	query := `
		UPDATE shipments SET status = ?, merged_at = ?
		WHERE branch = ? AND status = ?
	`
	_, err := r.db.Exec(query, ShipmentMerged, NowRFC3339(), branch, ShipmentOpen)
	if err != nil {
		return fmt.Errorf("failed to mark shipment merged: %w", err)
	}
	return nil
}

// List retrieves shipments, newest first. When status is non-empty only
// matching shipments are returned.
func (r *ShipmentRepo) List(status string, limit int) ([]*Shipment, error) {
	query := `
		SELECT id, branch, repo, pr_url, skills, status, created_at, merged_at
		FROM shipments
		WHERE 1=1
	`
	args := []interface{}{}

	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	query += " ORDER BY created_at DESC, id DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list shipments: %w", err)
	}
	defer rows.Close()

	var shipments []*Shipment
	for rows.Next() {
		var s Shipment
		var prURL, mergedAt sql.NullString
		var skills, createdAt string

		err := rows.Scan(&s.ID, &s.Branch, &s.Repo, &prURL, &skills, &s.Status, &createdAt, &mergedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shipment: %w", err)
		}

		s.PRURL = prURL.String
		if skills != "" {
			s.Skills = strings.Split(skills, ",")
		}
		s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		if mergedAt.Valid {
			t, err := time.Parse(time.RFC3339, mergedAt.String)
			if err == nil {
				s.MergedAt = &t
			}
		}
		shipments = append(shipments, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shipments: %w", err)
	}
	return shipments, nil
}
