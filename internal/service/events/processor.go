package events

import (
	"context"
	"strings"

	"delivery-analytics/internal/logx"
)

// Processor counts order lifecycle events into the metrics sink so the
// analytics dashboards see live order flow, not only the stored history.
type Processor struct {
	recorder Recorder
	logger   logx.Logger
	factory  *actionFactory
}

// NewProcessor creates a new events.Processor.
func NewProcessor(recorder Recorder, logger logx.Logger) *Processor {
	p := &Processor{
		recorder: recorder,
		logger:   logger,
	}
	p.factory = newActionFactory(p.onProgress, p.onCompleted, p.onCanceled)
	return p
}

// Handle processes a single order event. Unknown statuses are skipped.
func (p *Processor) Handle(ctx context.Context, e Event) error {
	if p.factory == nil {
		return nil
	}
	fn, ok := p.factory.get(e.Status)
	if !ok {
		return nil
	}
	return fn(ctx, e)
}

func (p *Processor) onProgress(_ context.Context, e Event) error {
	p.recorder.IncOrderEvent(normalize(e.Status))
	p.logger.Debug("order event",
		logx.String("order_number", e.OrderNumber),
		logx.String("status", normalize(e.Status)),
	)
	return nil
}

func (p *Processor) onCompleted(_ context.Context, e Event) error {
	p.recorder.IncOrderEvent("completed")
	p.logger.Info("order completed",
		logx.String("order_number", e.OrderNumber),
	)
	return nil
}

func (p *Processor) onCanceled(_ context.Context, e Event) error {
	p.recorder.IncOrderEvent("canceled")
	p.logger.Warn("order canceled",
		logx.String("order_number", e.OrderNumber),
		logx.String("status", normalize(e.Status)),
	)
	return nil
}

func normalize(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}
