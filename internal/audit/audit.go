// Package audit persists per-event review evidence: a JSON decision
// record plus the raw snapshot on disk, partitioned by outcome, and a
// row in the SQLite index. Auditing is best-effort; failures are
// logged and never abort event processing.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"reviewer/internal/logger"
	"reviewer/internal/models"
)

const (
	decisionFilename = "decision.json"
	snapshotFilename = "snapshot.jpg"
)

// Index is the database side of the audit trail.
type Index interface {
	Insert(decision *models.Decision) (int64, error)
}

type Sink struct {
	baseDir string
	index   Index // optional
	logger  *logger.Logger
}

func NewSink(baseDir string, index Index, log *logger.Logger) (*Sink, error) {
	for _, outcome := range []models.Outcome{
		models.OutcomeValid,
		models.OutcomeFalsePositive,
		models.OutcomeSkipped,
		models.OutcomeFailed,
	} {
		if err := os.MkdirAll(filepath.Join(baseDir, string(outcome)), 0755); err != nil {
			return nil, fmt.Errorf("failed to create audit directory: %w", err)
		}
	}

	return &Sink{baseDir: baseDir, index: index, logger: log}, nil
}

// Record writes the decision record and snapshot (when one was
// fetched) under {baseDir}/{outcome}/{eventID}/ and indexes the
// decision. Partial failures are reported but do not stop the
// remaining writes.
func (s *Sink) Record(event models.Event, snapshot []byte, decision *models.Decision) error {
	dir := filepath.Join(s.baseDir, string(decision.Outcome), event.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create audit directory for event %s: %w", event.ID, err)
	}

	var firstErr error

	data, err := json.MarshalIndent(decision, "", "  ")
	if err != nil {
		firstErr = fmt.Errorf("failed to marshal decision for event %s: %w", event.ID, err)
	} else if err := os.WriteFile(filepath.Join(dir, decisionFilename), data, 0644); err != nil {
		firstErr = fmt.Errorf("failed to write decision for event %s: %w", event.ID, err)
	}

	if snapshot != nil {
		if err := os.WriteFile(filepath.Join(dir, snapshotFilename), snapshot, 0644); err != nil {
			s.logger.Error("Failed to write snapshot for event %s: %v", event.ID, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if s.index != nil {
		if _, err := s.index.Insert(decision); err != nil {
			s.logger.Error("Failed to index review for event %s: %v", event.ID, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}
