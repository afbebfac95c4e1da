package dispatcher

import (
	"context"
	"errors"
	"testing"

	"reviewer/internal/logger"
	"reviewer/internal/models"
)

type fakeMarker struct {
	err    error
	calls  int
	lastID string
}

func (f *fakeMarker) MarkFalsePositive(_ context.Context, eventID string) error {
	f.calls++
	f.lastID = eventID
	return f.err
}

func TestDispatch_MarksOnlyFalsePositives(t *testing.T) {
	tests := []struct {
		outcome   models.Outcome
		wantCalls int
	}{
		{models.OutcomeFalsePositive, 1},
		{models.OutcomeValid, 0},
		{models.OutcomeSkipped, 0},
		{models.OutcomeFailed, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.outcome), func(t *testing.T) {
			marker := &fakeMarker{}
			d := NewDispatcher(marker, logger.NewLogger(t.TempDir()))

			err := d.Dispatch(context.Background(), &models.Decision{EventID: "evt-2", Outcome: tt.outcome})
			if err != nil {
				t.Fatalf("Dispatch failed: %v", err)
			}
			if marker.calls != tt.wantCalls {
				t.Errorf("Expected %d mark call(s), got %d", tt.wantCalls, marker.calls)
			}
		})
	}
}

func TestDispatch_PassesEventID(t *testing.T) {
	marker := &fakeMarker{}
	d := NewDispatcher(marker, logger.NewLogger(t.TempDir()))

	if err := d.Dispatch(context.Background(), &models.Decision{EventID: "evt-2", Outcome: models.OutcomeFalsePositive}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if marker.lastID != "evt-2" {
		t.Errorf("Expected mark for evt-2, got %s", marker.lastID)
	}
}

func TestDispatch_MarkFailureIsReturned(t *testing.T) {
	marker := &fakeMarker{err: errors.New("status 500")}
	d := NewDispatcher(marker, logger.NewLogger(t.TempDir()))

	err := d.Dispatch(context.Background(), &models.Decision{EventID: "evt-9", Outcome: models.OutcomeFalsePositive})
	if err == nil {
		t.Fatal("Expected error when the mark is rejected")
	}
	if marker.calls != 1 {
		t.Errorf("Expected a single attempt, got %d", marker.calls)
	}
}
