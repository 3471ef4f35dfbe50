package scheduler

import "github.com/example/resy-notifier/internal/model"

// Partition slices payloads into contiguous batches of ceil(N/workers), one
// per worker; the last batch may run short. Contiguity preserves the global
// date order inside each batch. Empty input yields no batches.
func Partition(payloads []model.Payload, workers int) [][]model.Payload {
	if len(payloads) == 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}

	size := (len(payloads) + workers - 1) / workers

	batches := make([][]model.Payload, 0, workers)
	for start := 0; start < len(payloads); start += size {
		end := start + size
		if end > len(payloads) {
			end = len(payloads)
		}
		batches = append(batches, payloads[start:end])
	}
	return batches
}
