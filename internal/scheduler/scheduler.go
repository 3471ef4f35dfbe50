// Package scheduler partitions the payload list across a bounded pool of
// workers and runs them to completion. Workers share nothing but the ledger;
// batches run fully in parallel with no cross-worker ordering.
package scheduler

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/example/resy-notifier/internal/model"
)

type Scheduler struct {
	Workers      int
	OpenChecker  CheckerFactory
	OpenNotifier NotifierFactory
	Log          *zap.Logger
}

// Run fans the payload list out over the worker pool and blocks until every
// worker has finished its batch. Worker failures never propagate: each batch
// isolates its own errors.
func (s *Scheduler) Run(ctx context.Context, payloads []model.Payload) {
	batches := Partition(payloads, s.Workers)
	if len(batches) == 0 {
		s.Log.Info("no payloads to check")
		return
	}

	s.Log.Info("starting workers",
		zap.Int("payloads", len(payloads)),
		zap.Int("batches", len(batches)))

	var wg sync.WaitGroup
	for i, batch := range batches {
		w := &Worker{
			ID:           i,
			Batch:        batch,
			OpenChecker:  s.OpenChecker,
			OpenNotifier: s.OpenNotifier,
			Log:          s.Log,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Run(ctx)
		}()
	}
	wg.Wait()
}
