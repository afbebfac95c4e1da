// Package dispatcher performs the corrective action a decision calls
// for. Only false positives trigger an external call; everything else
// is a no-op.
package dispatcher

import (
	"context"
	"fmt"

	"reviewer/internal/logger"
	"reviewer/internal/models"
)

// FalsePositiveMarker issues the false-positive mark upstream.
type FalsePositiveMarker interface {
	MarkFalsePositive(ctx context.Context, eventID string) error
}

type Dispatcher struct {
	marker FalsePositiveMarker
	logger *logger.Logger
}

func NewDispatcher(marker FalsePositiveMarker, log *logger.Logger) *Dispatcher {
	return &Dispatcher{marker: marker, logger: log}
}

// Dispatch acts on a decision. A failed mark is returned for the
// caller to log; the decision stands either way and nothing is
// retried here.
func (d *Dispatcher) Dispatch(ctx context.Context, decision *models.Decision) error {
	if decision.Outcome != models.OutcomeFalsePositive {
		return nil
	}

	if err := d.marker.MarkFalsePositive(ctx, decision.EventID); err != nil {
		return fmt.Errorf("false-positive mark for event %s: %w", decision.EventID, err)
	}

	d.logger.Info("Event %s marked as false positive", decision.EventID)
	return nil
}
