// Package notify composes availability alerts and decides, through the ledger,
// whether each recipient should hear about them again.
package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/resy-notifier/internal/errs"
	"github.com/example/resy-notifier/internal/metrics"
	"github.com/example/resy-notifier/internal/model"
	"github.com/example/resy-notifier/internal/store"
)

// Notifier sends at most one message per recipient per availability batch,
// gated by the ledger. Recipients are independent: each gets its own dedup
// decision and its own message.
type Notifier struct {
	Store     *store.Store
	Transport Transport
	Threshold time.Duration
	Log       *zap.Logger
}

func New(st *store.Store, tr Transport, threshold time.Duration, log *zap.Logger) *Notifier {
	return &Notifier{Store: st, Transport: tr, Threshold: threshold, Log: log}
}

// Notify handles one (payload, slots, recipient) triple. The earliest slot's
// fingerprint gates the whole batch: if it was reported within the threshold,
// nothing is sent and no records change. On an affirmative decision one
// message covering all slots goes out, and a record is written for every slot
// so a later partial overlap is suppressed too. A failed send writes no
// further records.
func (n *Notifier) Notify(ctx context.Context, p model.Payload, slots []model.Slot, recipient string) error {
	if len(slots) == 0 {
		return nil
	}

	rep := model.NewNotificationRecord(p, model.EarliestSlot(slots), recipient)

	ok, err := n.Store.ShouldNotify(rep, n.Threshold)
	if err != nil {
		return err
	}
	if !ok {
		metrics.NotificationsTotal.WithLabelValues("suppressed").Inc()
		n.Log.Debug("notification suppressed",
			zap.String("restaurant", p.Restaurant),
			zap.String("to", recipient))
		return nil
	}

	msg := Message{To: recipient, From: p.Sender, Body: ComposeBody(p, len(slots))}
	if err := n.Transport.Send(ctx, msg); err != nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		return &errs.SendError{To: recipient, Err: err}
	}

	for _, s := range slots {
		if err := n.Store.Record(model.NewNotificationRecord(p, s, recipient)); err != nil {
			return err
		}
	}

	metrics.NotificationsTotal.WithLabelValues("sent").Inc()
	n.Log.Info("notification sent",
		zap.String("restaurant", p.Restaurant),
		zap.String("to", recipient),
		zap.Int("slots", len(slots)))
	return nil
}

// ComposeBody builds the alert text, e.g.
//
//	2 reservations available at x for...
//
//	2 people
//	Thu, 12-25-2024
//	https://resy.com/cities/ny/x?date=2024-12-25&seats=2
func ComposeBody(p model.Payload, slotCount int) string {
	noun := "reservations"
	if slotCount == 1 {
		noun = "reservation"
	}
	return fmt.Sprintf("%d %s available at %s for...\n\n%d people\n%s\n%s",
		slotCount, noun, p.Restaurant, p.Seats, p.DateLabel(), p.URL)
}
