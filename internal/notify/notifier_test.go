package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/resy-notifier/internal/errs"
	"github.com/example/resy-notifier/internal/model"
	"github.com/example/resy-notifier/internal/store"
)

type stubTransport struct {
	sent []Message
	err  error
}

func (s *stubTransport) Name() string { return "stub" }

func (s *stubTransport) Send(ctx context.Context, msg Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func notifierPayload() model.Payload {
	return model.Payload{
		Restaurant: "lilia",
		State:      "ny",
		Seats:      4,
		Date:       time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		MinHour:    18,
		MaxHour:    22,
		Recipients: []string{"+15551111111", "+15552222222"},
		Sender:     "+15559990000",
		URL:        "https://resy.com/cities/ny/lilia?date=2025-01-10&seats=4",
	}
}

func TestComposeBody(t *testing.T) {
	p := notifierPayload()

	body := ComposeBody(p, 1)
	assert.Equal(t, "1 reservation available at lilia for...\n\n4 people\nFri, 01-10-2025\nhttps://resy.com/cities/ny/lilia?date=2025-01-10&seats=4", body)

	body = ComposeBody(p, 3)
	assert.Contains(t, body, "3 reservations available at lilia")
}

func TestNotifyWritesRecordForEverySlot(t *testing.T) {
	st, err := store.New(t.TempDir(), "run-1")
	require.NoError(t, err)

	tr := &stubTransport{}
	n := New(st, tr, time.Hour, zap.NewNop())

	slots := []model.Slot{{Hour: 20, Minute: 30}, {Hour: 19, Minute: 0}}
	require.NoError(t, n.Notify(context.Background(), notifierPayload(), slots, "+15551111111"))

	require.Len(t, tr.sent, 1)

	recs, err := st.List()
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestNotifyRepresentativeFingerprintGatesBatch(t *testing.T) {
	st, err := store.New(t.TempDir(), "run-1")
	require.NoError(t, err)

	tr := &stubTransport{}
	n := New(st, tr, time.Hour, zap.NewNop())
	p := notifierPayload()

	slots := []model.Slot{{Hour: 19, Minute: 0}, {Hour: 20, Minute: 30}}
	require.NoError(t, n.Notify(context.Background(), p, slots, "+15551111111"))
	require.Len(t, tr.sent, 1)

	// a later overlap sharing the earliest slot is suppressed wholesale,
	// even though 21:00 was never reported
	overlap := []model.Slot{{Hour: 19, Minute: 0}, {Hour: 21, Minute: 0}}
	require.NoError(t, n.Notify(context.Background(), p, overlap, "+15551111111"))
	assert.Len(t, tr.sent, 1)
}

func TestNotifyRecipientsIndependent(t *testing.T) {
	st, err := store.New(t.TempDir(), "run-1")
	require.NoError(t, err)

	tr := &stubTransport{}
	n := New(st, tr, time.Hour, zap.NewNop())
	p := notifierPayload()

	slots := []model.Slot{{Hour: 19, Minute: 0}}
	require.NoError(t, n.Notify(context.Background(), p, slots, "+15551111111"))
	require.NoError(t, n.Notify(context.Background(), p, slots, "+15552222222"))

	require.Len(t, tr.sent, 2)
	assert.Equal(t, "+15551111111", tr.sent[0].To)
	assert.Equal(t, "+15552222222", tr.sent[1].To)
}

func TestNotifySendFailureWritesNoSlotRecords(t *testing.T) {
	st, err := store.New(t.TempDir(), "run-1")
	require.NoError(t, err)

	tr := &stubTransport{err: errors.New("twilio 500")}
	n := New(st, tr, time.Hour, zap.NewNop())

	slots := []model.Slot{{Hour: 19, Minute: 0}, {Hour: 20, Minute: 30}}
	err = n.Notify(context.Background(), notifierPayload(), slots, "+15551111111")

	var serr *errs.SendError
	require.ErrorAs(t, err, &serr)

	// only the representative claim exists; the non-representative slot was
	// never recorded, so it stays eligible
	recs, lerr := st.List()
	require.NoError(t, lerr)
	assert.Len(t, recs, 1)
}

func TestNotifyNoSlotsIsNoop(t *testing.T) {
	st, err := store.New(t.TempDir(), "run-1")
	require.NoError(t, err)

	tr := &stubTransport{}
	n := New(st, tr, time.Hour, zap.NewNop())

	require.NoError(t, n.Notify(context.Background(), notifierPayload(), nil, "+15551111111"))
	assert.Empty(t, tr.sent)
}
