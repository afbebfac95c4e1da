// Package validator renders the verdict for one event: fetch the
// snapshot, re-run detection, and decide whether any qualifying object
// backs up the upstream detection.
package validator

import (
	"context"
	"fmt"
	"time"

	"reviewer/internal/logger"
	"reviewer/internal/models"
)

// SnapshotFetcher retrieves the raw snapshot image for an event.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context, eventID string) ([]byte, error)
}

// Detector runs object detection over encoded image bytes and returns
// results in the order the underlying network produced them.
type Detector interface {
	Detect(image []byte) ([]models.DetectionResult, error)
}

type Validator struct {
	fetcher       SnapshotFetcher
	detector      Detector
	threshold     float64
	targetClasses map[string]struct{}
	targetList    []string
	fullEvidence  bool
	logger        *logger.Logger
}

func NewValidator(fetcher SnapshotFetcher, det Detector, threshold float64, targetClasses []string, fullEvidence bool, log *logger.Logger) *Validator {
	set := make(map[string]struct{}, len(targetClasses))
	for _, class := range targetClasses {
		set[class] = struct{}{}
	}
	return &Validator{
		fetcher:       fetcher,
		detector:      det,
		threshold:     threshold,
		targetClasses: set,
		targetList:    targetClasses,
		fullEvidence:  fullEvidence,
		logger:        log,
	}
}

// Validate processes one event and returns its decision together with
// the snapshot bytes for auditing. Events without a snapshot are
// skipped without any external call. A fetch or detector failure
// returns an error and no decision; the caller records the event as
// failed rather than penalizing it with a fabricated verdict.
func (v *Validator) Validate(ctx context.Context, event models.Event) (*models.Decision, []byte, error) {
	if !event.HasSnapshot {
		v.logger.Info("Event %s has no snapshot available, skipping", event.ID)
		return v.decision(event, models.OutcomeSkipped, nil), nil, nil
	}

	snapshot, err := v.fetcher.FetchSnapshot(ctx, event.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("snapshot fetch for event %s: %w", event.ID, err)
	}

	results, err := v.detector.Detect(snapshot)
	if err != nil {
		return nil, snapshot, fmt.Errorf("detection for event %s: %w", event.ID, err)
	}

	considered := make([]models.DetectionResult, 0, len(results))
	valid := false
	// Existence of a qualifying result does not depend on scan order,
	// so the scan may stop at the first hit. Full-evidence mode keeps
	// going so the audit trail holds every candidate.
	for _, result := range results {
		considered = append(considered, result)
		if v.qualifies(result) {
			v.logger.Info("Event %s: confirmed %s with confidence %.3f", event.ID, result.Label, result.Confidence)
			valid = true
			if !v.fullEvidence {
				break
			}
		}
	}

	outcome := models.OutcomeFalsePositive
	if valid {
		outcome = models.OutcomeValid
	} else {
		v.logger.Info("Event %s: no qualifying detection among %d results", event.ID, len(results))
	}

	return v.decision(event, outcome, considered), snapshot, nil
}

// qualifies reports whether a result confirms the event: its label is
// in the target set and its confidence strictly exceeds the threshold.
func (v *Validator) qualifies(result models.DetectionResult) bool {
	if _, ok := v.targetClasses[result.Label]; !ok {
		return false
	}
	return result.Confidence > v.threshold
}

func (v *Validator) decision(event models.Event, outcome models.Outcome, considered []models.DetectionResult) *models.Decision {
	return &models.Decision{
		EventID:       event.ID,
		Camera:        event.Camera,
		Outcome:       outcome,
		Detections:    considered,
		Threshold:     v.threshold,
		TargetClasses: v.targetList,
		ReviewedAt:    time.Now(),
	}
}
