// Package supervisor owns the worker pool that drains the event queue.
// Each worker validates one event at a time; every per-event failure is
// contained at the worker boundary so a bad event can never take a
// worker down.
package supervisor

import (
	"context"
	"sync"
	"time"

	"reviewer/internal/logger"
	"reviewer/internal/models"
	"reviewer/internal/queue"
)

// EventValidator renders the decision for one event.
type EventValidator interface {
	Validate(ctx context.Context, event models.Event) (*models.Decision, []byte, error)
}

// ActionDispatcher performs the corrective action for a decision.
type ActionDispatcher interface {
	Dispatch(ctx context.Context, decision *models.Decision) error
}

// AuditSink persists review evidence.
type AuditSink interface {
	Record(event models.Event, snapshot []byte, decision *models.Decision) error
}

// DecisionNotifier receives every decision as it is made, e.g. for a
// live feed. Notification must not block.
type DecisionNotifier interface {
	NotifyDecision(decision *models.Decision)
}

type Supervisor struct {
	queue      *queue.EventQueue
	validators []EventValidator // one per worker, each with its own detector
	dispatcher ActionDispatcher
	audit      AuditSink
	notifier   DecisionNotifier // optional
	popTimeout time.Duration
	stop       chan struct{}
	wg         sync.WaitGroup
	logger     *logger.Logger
}

func New(q *queue.EventQueue, validators []EventValidator, dispatcher ActionDispatcher, audit AuditSink, popTimeout time.Duration, log *logger.Logger) *Supervisor {
	return &Supervisor{
		queue:      q,
		validators: validators,
		dispatcher: dispatcher,
		audit:      audit,
		popTimeout: popTimeout,
		stop:       make(chan struct{}),
		logger:     log,
	}
}

// SetNotifier attaches an optional live decision feed.
func (s *Supervisor) SetNotifier(notifier DecisionNotifier) {
	s.notifier = notifier
}

// Start launches one worker per validator.
func (s *Supervisor) Start() {
	for i, v := range s.validators {
		s.wg.Add(1)
		go s.worker(i, v)
	}
	s.logger.Info("Started %d review worker(s)", len(s.validators))
}

// Stop raises the stop signal and waits for every worker to finish its
// in-flight event. Events still queued at this point are abandoned.
func (s *Supervisor) Stop() {
	close(s.stop)
	s.wg.Wait()
	if depth := s.queue.Len(); depth > 0 {
		s.logger.Warning("Stopping with %d event(s) left in the queue", depth)
	}
	s.logger.Info("All review workers stopped")
}

func (s *Supervisor) worker(id int, v EventValidator) {
	defer s.wg.Done()

	s.logger.Info("Review worker %d started", id)

	for {
		select {
		case <-s.stop:
			s.logger.Info("Review worker %d stopped", id)
			return
		default:
		}

		event, ok := s.queue.Pop(s.popTimeout)
		if !ok {
			continue
		}

		s.process(id, v, event)
	}
}

// process runs the full pipeline for one event. Errors and panics stay
// inside this call; the worker loop always resumes.
func (s *Supervisor) process(id int, v EventValidator, event models.Event) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Worker %d panic while processing event %s: %v", id, event.ID, r)
		}
	}()

	ctx := context.Background()

	decision, snapshot, err := v.Validate(ctx, event)
	if err != nil {
		s.logger.Error("Worker %d failed to process event %s: %v", id, event.ID, err)
		s.finish(event, snapshot, models.FailedDecision(event))
		return
	}

	if err := s.dispatcher.Dispatch(ctx, decision); err != nil {
		// The decision stands; the mark is not retried.
		s.logger.Error("Worker %d: %v", id, err)
	}

	s.finish(event, snapshot, decision)
}

func (s *Supervisor) finish(event models.Event, snapshot []byte, decision *models.Decision) {
	if err := s.audit.Record(event, snapshot, decision); err != nil {
		s.logger.Error("Audit record for event %s: %v", event.ID, err)
	}
	if s.notifier != nil {
		s.notifier.NotifyDecision(decision)
	}
}
