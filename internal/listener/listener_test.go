package listener

import (
	"testing"

	"reviewer/internal/config"
	"reviewer/internal/logger"
	"reviewer/internal/queue"
)

func newTestListener(t *testing.T, dedupe int) (*Listener, *queue.EventQueue) {
	t.Helper()
	q := queue.New()
	cfg := config.Load()
	cfg.DedupeHistory = dedupe
	return NewListener(cfg, q, logger.NewLogger(t.TempDir())), q
}

func TestOnMessage_EnqueuesFinishedEvent(t *testing.T) {
	l, q := newTestListener(t, 0)

	payload := `{
		"type": "end",
		"after": {
			"id": "1700000000.123456-abc123",
			"camera": "driveway",
			"labels": ["person"],
			"has_snapshot": true
		}
	}`
	l.onMessage([]byte(payload))

	if q.Len() != 1 {
		t.Fatalf("Expected 1 queued event, got %d", q.Len())
	}

	event, _ := q.Pop(0)
	if event.ID != "1700000000.123456-abc123" {
		t.Errorf("Unexpected event ID: %s", event.ID)
	}
	if event.Camera != "driveway" {
		t.Errorf("Unexpected camera: %s", event.Camera)
	}
	if len(event.Labels) != 1 || event.Labels[0] != "person" {
		t.Errorf("Unexpected labels: %v", event.Labels)
	}
	if !event.HasSnapshot {
		t.Error("Expected has_snapshot to be true")
	}
}

func TestOnMessage_DiscardsWithoutEnqueue(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"invalid JSON", `{not json`},
		{"empty payload", ``},
		{"new event", `{"type":"new","after":{"id":"evt-1"}}`},
		{"update event", `{"type":"update","after":{"id":"evt-1"}}`},
		{"missing id", `{"type":"end","after":{"camera":"yard"}}`},
		{"no after record", `{"type":"end"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, q := newTestListener(t, 0)
			l.onMessage([]byte(tt.payload))
			if q.Len() != 0 {
				t.Errorf("Expected empty queue, got %d", q.Len())
			}
		})
	}
}

func TestOnMessage_DedupeDropsRedelivery(t *testing.T) {
	l, q := newTestListener(t, 8)
	payload := `{"type":"end","after":{"id":"evt-1","camera":"yard","has_snapshot":true}}`

	l.onMessage([]byte(payload))
	l.onMessage([]byte(payload))

	if q.Len() != 1 {
		t.Errorf("Expected redelivery to be dropped, queue depth %d", q.Len())
	}
}

func TestOnMessage_DedupeDisabledKeepsRedelivery(t *testing.T) {
	l, q := newTestListener(t, 0)
	payload := `{"type":"end","after":{"id":"evt-1","camera":"yard","has_snapshot":true}}`

	l.onMessage([]byte(payload))
	l.onMessage([]byte(payload))

	if q.Len() != 2 {
		t.Errorf("Expected both deliveries queued, got %d", q.Len())
	}
}

func TestRecentSet_EvictsOldest(t *testing.T) {
	r := newRecentSet(2)

	if !r.add("a") || !r.add("b") {
		t.Fatal("Fresh IDs should be accepted")
	}
	if r.add("a") {
		t.Error("Repeated ID should be rejected while remembered")
	}

	// "c" evicts "a"; "a" becomes fresh again.
	if !r.add("c") {
		t.Fatal("Fresh ID should be accepted")
	}
	if !r.add("a") {
		t.Error("Evicted ID should be accepted again")
	}
}
