package models

import "time"

// Outcome is the final classification of one review attempt.
type Outcome string

const (
	OutcomeValid         Outcome = "valid"
	OutcomeFalsePositive Outcome = "false_positive"
	OutcomeSkipped       Outcome = "skipped"
	OutcomeFailed        Outcome = "failed"
)

// Event is a normalized Frigate detection event awaiting re-validation.
type Event struct {
	ID          string   `json:"id"`
	Camera      string   `json:"camera"`
	Labels      []string `json:"labels"`
	HasSnapshot bool     `json:"has_snapshot"`
}

// DetectionResult is a single labeled box produced by the detector.
type DetectionResult struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
}

// Decision is the rendered verdict for one event, carrying the evidence
// considered so the review can be audited later.
type Decision struct {
	EventID       string            `json:"event_id"`
	Camera        string            `json:"camera"`
	Outcome       Outcome           `json:"outcome"`
	Detections    []DetectionResult `json:"detections"`
	Threshold     float64           `json:"confidence_threshold"`
	TargetClasses []string          `json:"target_classes"`
	ReviewedAt    time.Time         `json:"reviewed_at"`
}

// FailedDecision builds the audit-only decision for an event whose
// processing errored before a verdict could be rendered.
func FailedDecision(event Event) *Decision {
	return &Decision{
		EventID:    event.ID,
		Camera:     event.Camera,
		Outcome:    OutcomeFailed,
		ReviewedAt: time.Now(),
	}
}
