package scheduler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/resy-notifier/internal/metrics"
	"github.com/example/resy-notifier/internal/model"
)

// Checker is the availability-checking collaborator a worker holds for its
// batch. In production it wraps one browser session; Close releases it.
type Checker interface {
	Check(ctx context.Context, p model.Payload) ([]model.Slot, error)
	Close() error
}

// CheckerFactory opens a fresh checker (browser session) for one batch.
type CheckerFactory func(ctx context.Context) (Checker, error)

// Notifier delivers one availability batch to one recipient, dedup included.
type Notifier interface {
	Notify(ctx context.Context, p model.Payload, slots []model.Slot, recipient string) error
}

// NotifierFactory builds the notifier (transport client included) for one
// batch. Construction fails when credentials are missing.
type NotifierFactory func() (Notifier, error)

// Worker processes one contiguous batch of payloads in order, owning one
// checker session for the whole batch. A setup failure abandons the batch; a
// per-payload failure is logged and skipped.
type Worker struct {
	ID           int
	Batch        []model.Payload
	OpenChecker  CheckerFactory
	OpenNotifier NotifierFactory
	Log          *zap.Logger
}

func (w *Worker) Run(ctx context.Context) {
	if len(w.Batch) == 0 {
		return
	}

	log := w.Log.With(zap.Int("worker", w.ID))

	checker, err := w.OpenChecker(ctx)
	if err != nil {
		log.Error("worker setup failed, abandoning batch",
			zap.Int("payloads", len(w.Batch)), zap.Error(err))
		return
	}
	// exactly one release on every exit path
	defer func() {
		if cerr := checker.Close(); cerr != nil {
			log.Warn("session close failed", zap.Error(cerr))
		}
	}()

	notifier, err := w.OpenNotifier()
	if err != nil {
		log.Error("worker setup failed, abandoning batch",
			zap.Int("payloads", len(w.Batch)), zap.Error(err))
		return
	}

	for _, p := range w.Batch {
		select {
		case <-ctx.Done():
			return
		default:
		}
		w.processPayload(ctx, log, checker, notifier, p)
	}
}

// processPayload isolates one payload: any failure here is logged and the
// worker moves on to the next payload in the batch.
func (w *Worker) processPayload(ctx context.Context, log *zap.Logger, checker Checker, notifier Notifier, p model.Payload) {
	slots, err := checker.Check(ctx, p)
	if err != nil {
		metrics.ChecksTotal.WithLabelValues("error").Inc()
		log.Error("availability check failed", zap.String("url", p.URL), zap.Error(err))
		return
	}

	metrics.ChecksTotal.WithLabelValues("ok").Inc()
	metrics.SlotsFoundTotal.Add(float64(len(slots)))
	log.Info(fmt.Sprintf("[%d slots] %s", len(slots), p.URL))

	if len(slots) == 0 {
		return
	}

	for _, recipient := range p.Recipients {
		if err := notifier.Notify(ctx, p, slots, recipient); err != nil {
			log.Error("notify failed",
				zap.String("restaurant", p.Restaurant),
				zap.String("to", recipient),
				zap.Error(err))
		}
	}
}
