package audit

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"reviewer/internal/logger"
	"reviewer/internal/models"
)

type fakeIndex struct {
	err      error
	inserted []*models.Decision
}

func (f *fakeIndex) Insert(decision *models.Decision) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.inserted = append(f.inserted, decision)
	return int64(len(f.inserted)), nil
}

func newTestSink(t *testing.T, index Index) (*Sink, string) {
	t.Helper()
	dir := t.TempDir()
	sink, err := NewSink(dir, index, logger.NewLogger(t.TempDir()))
	if err != nil {
		t.Fatalf("NewSink failed: %v", err)
	}
	return sink, dir
}

func TestNewSink_CreatesOutcomePartitions(t *testing.T) {
	_, dir := newTestSink(t, nil)

	for _, outcome := range []string{"valid", "false_positive", "skipped", "failed"} {
		if _, err := os.Stat(filepath.Join(dir, outcome)); err != nil {
			t.Errorf("Expected partition directory %s: %v", outcome, err)
		}
	}
}

func TestRecord_WritesDecisionAndSnapshot(t *testing.T) {
	index := &fakeIndex{}
	sink, dir := newTestSink(t, index)

	event := models.Event{ID: "evt-1", Camera: "driveway", HasSnapshot: true}
	decision := &models.Decision{
		EventID:       "evt-1",
		Camera:        "driveway",
		Outcome:       models.OutcomeValid,
		Detections:    []models.DetectionResult{{Label: "person", Confidence: 0.82}},
		Threshold:     0.5,
		TargetClasses: []string{"person"},
		ReviewedAt:    time.Now(),
	}

	if err := sink.Record(event, []byte("jpeg"), decision); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	eventDir := filepath.Join(dir, "valid", "evt-1")

	data, err := os.ReadFile(filepath.Join(eventDir, "decision.json"))
	if err != nil {
		t.Fatalf("Expected decision.json: %v", err)
	}
	var stored models.Decision
	if err := json.Unmarshal(data, &stored); err != nil {
		t.Fatalf("decision.json is not valid JSON: %v", err)
	}
	if stored.Outcome != models.OutcomeValid || stored.EventID != "evt-1" {
		t.Errorf("Unexpected stored decision: %+v", stored)
	}
	if len(stored.Detections) != 1 || stored.Detections[0].Label != "person" {
		t.Errorf("Expected considered detections in the record, got %+v", stored.Detections)
	}

	snapshot, err := os.ReadFile(filepath.Join(eventDir, "snapshot.jpg"))
	if err != nil {
		t.Fatalf("Expected snapshot.jpg: %v", err)
	}
	if string(snapshot) != "jpeg" {
		t.Errorf("Unexpected snapshot contents: %q", snapshot)
	}

	if len(index.inserted) != 1 {
		t.Errorf("Expected 1 indexed review, got %d", len(index.inserted))
	}
}

func TestRecord_PartitionsByOutcome(t *testing.T) {
	sink, dir := newTestSink(t, nil)

	tests := []struct {
		eventID string
		outcome models.Outcome
	}{
		{"evt-1", models.OutcomeValid},
		{"evt-2", models.OutcomeFalsePositive},
		{"evt-3", models.OutcomeSkipped},
		{"evt-4", models.OutcomeFailed},
	}

	for _, tt := range tests {
		event := models.Event{ID: tt.eventID}
		decision := &models.Decision{EventID: tt.eventID, Outcome: tt.outcome, ReviewedAt: time.Now()}
		if err := sink.Record(event, nil, decision); err != nil {
			t.Fatalf("Record failed for %s: %v", tt.eventID, err)
		}

		record := filepath.Join(dir, string(tt.outcome), tt.eventID, "decision.json")
		if _, err := os.Stat(record); err != nil {
			t.Errorf("Expected record at %s: %v", record, err)
		}
	}
}

func TestRecord_NoSnapshotFileWithoutBytes(t *testing.T) {
	sink, dir := newTestSink(t, nil)

	event := models.Event{ID: "evt-3"}
	decision := &models.Decision{EventID: "evt-3", Outcome: models.OutcomeSkipped, ReviewedAt: time.Now()}
	if err := sink.Record(event, nil, decision); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "skipped", "evt-3", "snapshot.jpg")); !os.IsNotExist(err) {
		t.Error("Expected no snapshot file for a skipped event")
	}
}

func TestRecord_IndexFailureStillWritesFiles(t *testing.T) {
	sink, dir := newTestSink(t, &fakeIndex{err: errors.New("database is locked")})

	event := models.Event{ID: "evt-5"}
	decision := &models.Decision{EventID: "evt-5", Outcome: models.OutcomeValid, ReviewedAt: time.Now()}

	err := sink.Record(event, []byte("jpeg"), decision)
	if err == nil {
		t.Fatal("Expected index failure to be reported")
	}

	if _, statErr := os.Stat(filepath.Join(dir, "valid", "evt-5", "decision.json")); statErr != nil {
		t.Errorf("Files should be written despite index failure: %v", statErr)
	}
}
