package sqlite

import (
	"fmt"
	"strings"

	"reviewer/internal/models"
)

// ReviewRepository persists review decisions and their evidence.
type ReviewRepository struct {
	db *DB
}

// NewReviewRepository creates a new SQLite review repository.
func NewReviewRepository(db *DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Insert stores a decision and its considered detections in a single
// transaction and returns the review row ID.
func (r *ReviewRepository) Insert(decision *models.Decision) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		INSERT INTO reviews (event_id, camera, outcome, confidence_threshold, target_classes, reviewed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, decision.EventID, decision.Camera, string(decision.Outcome), decision.Threshold,
		strings.Join(decision.TargetClasses, ","), decision.ReviewedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert review: %w", err)
	}

	reviewID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read review id: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO review_detections (review_id, label, confidence, x, y, width, height)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, det := range decision.Detections {
		if _, err := stmt.Exec(reviewID, det.Label, det.Confidence, det.X, det.Y, det.Width, det.Height); err != nil {
			return 0, fmt.Errorf("failed to insert detection: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit review: %w", err)
	}
	return reviewID, nil
}

// CountByOutcome returns how many reviews ended in each outcome.
func (r *ReviewRepository) CountByOutcome() (map[string]int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`SELECT outcome, COUNT(*) FROM reviews GROUP BY outcome`)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcome counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var outcome string
		var count int
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, fmt.Errorf("failed to scan outcome count: %w", err)
		}
		counts[outcome] = count
	}

	return counts, rows.Err()
}

// ReviewSummary is one row of the recent-review listing.
type ReviewSummary struct {
	EventID    string `json:"event_id"`
	Camera     string `json:"camera"`
	Outcome    string `json:"outcome"`
	ReviewedAt string `json:"reviewed_at"`
}

// RecentReviews returns the most recent reviews, newest first.
func (r *ReviewRepository) RecentReviews(limit int) ([]ReviewSummary, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT event_id, camera, outcome, reviewed_at
		FROM reviews ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent reviews: %w", err)
	}
	defer rows.Close()

	var reviews []ReviewSummary
	for rows.Next() {
		var review ReviewSummary
		if err := rows.Scan(&review.EventID, &review.Camera, &review.Outcome, &review.ReviewedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}

	return reviews, rows.Err()
}
