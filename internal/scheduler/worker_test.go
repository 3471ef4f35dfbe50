package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/resy-notifier/internal/model"
	"github.com/example/resy-notifier/internal/notify"
	"github.com/example/resy-notifier/internal/store"
)

type fakeChecker struct {
	mu      sync.Mutex
	slots   map[string][]model.Slot // keyed by restaurant
	failFor map[string]bool
	checked []string
	closed  int
}

func (f *fakeChecker) Check(ctx context.Context, p model.Payload) ([]model.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checked = append(f.checked, p.Restaurant)
	if f.failFor[p.Restaurant] {
		return nil, errors.New("page fetch timed out")
	}
	return f.slots[p.Restaurant], nil
}

func (f *fakeChecker) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []string // "restaurant->recipient"
}

func (f *fakeNotifier) Notify(ctx context.Context, p model.Payload, slots []model.Slot, recipient string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, p.Restaurant+"->"+recipient)
	return nil
}

type fakeTransport struct {
	mu   sync.Mutex
	sent []notify.Message
	fail bool
}

func (f *fakeTransport) Name() string { return "fake" }

func (f *fakeTransport) Send(ctx context.Context, msg notify.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("transport down")
	}
	f.sent = append(f.sent, msg)
	return nil
}

func testPayload(restaurant string) model.Payload {
	return model.Payload{
		Restaurant: restaurant,
		State:      "ny",
		Seats:      2,
		Date:       time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC),
		MinHour:    18,
		MaxHour:    22,
		Recipients: []string{"+1555"},
		Sender:     "+1999",
		URL:        model.VenueURL("ny", restaurant, time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC), 2),
	}
}

func TestWorkerSetupFailureAbandonsBatch(t *testing.T) {
	n := &fakeNotifier{}
	w := &Worker{
		ID:    0,
		Batch: []model.Payload{testPayload("lilia")},
		OpenChecker: func(ctx context.Context) (Checker, error) {
			return nil, errors.New("no browser")
		},
		OpenNotifier: func() (Notifier, error) { return n, nil },
		Log:          zap.NewNop(),
	}

	w.Run(context.Background())
	assert.Empty(t, n.calls, "no payload may be processed after setup failure")
}

func TestWorkerNotifierSetupFailureStillReleasesSession(t *testing.T) {
	c := &fakeChecker{}
	w := &Worker{
		ID:          0,
		Batch:       []model.Payload{testPayload("lilia")},
		OpenChecker: func(ctx context.Context) (Checker, error) { return c, nil },
		OpenNotifier: func() (Notifier, error) {
			return nil, errors.New("missing credentials")
		},
		Log: zap.NewNop(),
	}

	w.Run(context.Background())
	assert.Empty(t, c.checked)
	assert.Equal(t, 1, c.closed, "session released exactly once")
}

func TestWorkerIsolatesPerPayloadFailures(t *testing.T) {
	c := &fakeChecker{
		slots: map[string][]model.Slot{
			"carbone": {{Hour: 19}},
		},
		failFor: map[string]bool{"lilia": true},
	}
	n := &fakeNotifier{}
	w := &Worker{
		ID:           0,
		Batch:        []model.Payload{testPayload("lilia"), testPayload("carbone")},
		OpenChecker:  func(ctx context.Context) (Checker, error) { return c, nil },
		OpenNotifier: func() (Notifier, error) { return n, nil },
		Log:          zap.NewNop(),
	}

	w.Run(context.Background())

	assert.Equal(t, []string{"lilia", "carbone"}, c.checked, "failure must not stop the batch")
	assert.Equal(t, []string{"carbone->+1555"}, n.calls)
	assert.Equal(t, 1, c.closed)
}

func TestWorkerSkipsNotifyWhenNoSlots(t *testing.T) {
	c := &fakeChecker{slots: map[string][]model.Slot{}}
	n := &fakeNotifier{}
	w := &Worker{
		ID:           0,
		Batch:        []model.Payload{testPayload("lilia")},
		OpenChecker:  func(ctx context.Context) (Checker, error) { return c, nil },
		OpenNotifier: func() (Notifier, error) { return n, nil },
		Log:          zap.NewNop(),
	}

	w.Run(context.Background())
	assert.Empty(t, n.calls)
}

// Full scenario: two slots found, one message per recipient, one ledger record
// per slot, and a rerun inside the threshold stays quiet.
func TestSchedulerEndToEnd(t *testing.T) {
	st, err := store.New(t.TempDir(), "run-1")
	require.NoError(t, err)

	transport := &fakeTransport{}
	checker := &fakeChecker{
		slots: map[string][]model.Slot{
			"x": {{Hour: 19, Minute: 0}, {Hour: 20, Minute: 30}},
		},
	}

	s := &Scheduler{
		Workers:     2,
		OpenChecker: func(ctx context.Context) (Checker, error) { return checker, nil },
		OpenNotifier: func() (Notifier, error) {
			return notify.New(st, transport, time.Hour, zap.NewNop()), nil
		},
		Log: zap.NewNop(),
	}

	run := func() {
		s.Run(context.Background(), []model.Payload{testPayload("x")})
	}

	run()

	require.Len(t, transport.sent, 1)
	msg := transport.sent[0]
	assert.Equal(t, "+1555", msg.To)
	assert.Equal(t, "+1999", msg.From)
	assert.Contains(t, msg.Body, "2 reservations available at x")
	assert.Contains(t, msg.Body, "2 people")
	assert.Contains(t, msg.Body, "12-25-2024")

	recs, err := st.List()
	require.NoError(t, err)
	require.Len(t, recs, 2, "one record per slot")

	times := []string{recs[0].ReservationTime, recs[1].ReservationTime}
	assert.ElementsMatch(t, []string{"07:00PM", "08:30PM"}, times)

	// second run within the threshold: nothing sent, records unchanged
	run()
	assert.Len(t, transport.sent, 1)

	recs, err = st.List()
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestSchedulerEmptyPayloadsSpawnsNoWorkers(t *testing.T) {
	opened := 0
	s := &Scheduler{
		Workers: 4,
		OpenChecker: func(ctx context.Context) (Checker, error) {
			opened++
			return &fakeChecker{}, nil
		},
		OpenNotifier: func() (Notifier, error) { return &fakeNotifier{}, nil },
		Log:          zap.NewNop(),
	}

	s.Run(context.Background(), nil)
	assert.Zero(t, opened)
}

func TestSchedulerOpensOneSessionPerBatch(t *testing.T) {
	payloads := make([]model.Payload, 4)
	for i := range payloads {
		payloads[i] = testPayload("r" + strings.Repeat("x", i+1))
	}

	var mu sync.Mutex
	sessions := 0
	s := &Scheduler{
		Workers: 2,
		OpenChecker: func(ctx context.Context) (Checker, error) {
			mu.Lock()
			sessions++
			mu.Unlock()
			return &fakeChecker{}, nil
		},
		OpenNotifier: func() (Notifier, error) { return &fakeNotifier{}, nil },
		Log:          zap.NewNop(),
	}

	s.Run(context.Background(), payloads)
	assert.Equal(t, 2, sessions, "one session per batch")
}
