// Package store is the content-addressed notification ledger: one JSON file
// per fingerprint under a single directory, surviving process restarts. It is
// the only mutable state shared between workers, so every decide-and-write is
// serialized per fingerprint through a striped lock table.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/example/resy-notifier/internal/model"
)

const (
	fingerprintLen = 20
	lockStripes    = 64
)

// Fingerprint digests the (restaurant, date, slot time, seats, recipient)
// tuple into a fixed-length hex string. Deterministic: the same tuple always
// lands on the same ledger file.
func Fingerprint(rec model.NotificationRecord) string {
	key := strings.Join([]string{
		rec.Restaurant,
		rec.Date,
		rec.ReservationTime,
		strconv.Itoa(rec.Seats),
		rec.Number,
	}, "|")
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:fingerprintLen]
}

type Store struct {
	dir   string
	runID string
	now   func() time.Time

	locks [lockStripes]sync.Mutex
}

// New opens (creating if needed) the ledger directory.
func New(dir, runID string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create ledger dir %s: %w", dir, err)
	}
	return &Store{dir: dir, runID: runID, now: time.Now}, nil
}

// SetNow overrides the clock, for tests.
func (s *Store) SetNow(now func() time.Time) { s.now = now }

func (s *Store) lock(fp string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fp))
	return &s.locks[h.Sum32()%lockStripes]
}

func (s *Store) path(fp string) string { return filepath.Join(s.dir, fp) }

// ShouldNotify decides whether the event described by rec may be reported
// again. Affirmative when no record exists for its fingerprint, or when the
// existing record is at least threshold old; in both cases the record is
// written with the current timestamp before returning, so concurrent callers
// see an atomic check-and-set and at most one of them gets true.
func (s *Store) ShouldNotify(rec model.NotificationRecord, threshold time.Duration) (bool, error) {
	fp := Fingerprint(rec)

	mu := s.lock(fp)
	mu.Lock()
	defer mu.Unlock()

	prev, err := s.read(fp)
	if err == nil {
		if s.now().Sub(prev.NotifiedAt()) < threshold {
			return false, nil
		}
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("read record %s: %w", fp, err)
	}

	if err := s.write(fp, rec); err != nil {
		return false, err
	}
	return true, nil
}

// Record writes (or overwrites) the ledger entry for rec with the current
// timestamp, regardless of any existing record. Used after a successful send
// to mark every slot covered by the message, not just the one that gated it.
func (s *Store) Record(rec model.NotificationRecord) error {
	fp := Fingerprint(rec)

	mu := s.lock(fp)
	mu.Lock()
	defer mu.Unlock()

	return s.write(fp, rec)
}

// List returns all ledger records in directory order. Non-record files are
// skipped.
func (s *Store) List() ([]model.NotificationRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read ledger dir: %w", err)
	}

	var recs []model.NotificationRecord
	for _, e := range entries {
		if e.IsDir() || len(e.Name()) != fingerprintLen {
			continue
		}
		rec, err := s.read(e.Name())
		if err != nil {
			continue
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// Prune removes records whose notified timestamp is older than the cutoff.
// Operator tooling only; the watch loop itself never deletes records.
func (s *Store) Prune(olderThan time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read ledger dir: %w", err)
	}

	cutoff := s.now().Add(-olderThan)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || len(e.Name()) != fingerprintLen {
			continue
		}
		rec, err := s.read(e.Name())
		if err != nil {
			continue
		}
		if rec.NotifiedAt().Before(cutoff) {
			if err := os.Remove(s.path(e.Name())); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}

func (s *Store) read(fp string) (model.NotificationRecord, error) {
	b, err := os.ReadFile(s.path(fp))
	if err != nil {
		return model.NotificationRecord{}, err
	}
	var rec model.NotificationRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return model.NotificationRecord{}, err
	}
	return rec, nil
}

// write stamps rec and replaces the ledger file via rename, so readers never
// observe a half-written record.
func (s *Store) write(fp string, rec model.NotificationRecord) error {
	rec.RunID = s.runID
	rec.Notified = s.now().Format(model.NotifiedLayout)

	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path(fp) + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write record %s: %w", fp, err)
	}
	if err := os.Rename(tmp, s.path(fp)); err != nil {
		return fmt.Errorf("replace record %s: %w", fp, err)
	}
	return nil
}
