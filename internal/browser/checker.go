package browser

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/resy-notifier/internal/config"
	"github.com/example/resy-notifier/internal/errs"
	"github.com/example/resy-notifier/internal/model"
)

const (
	venueSelector = ".VenuePage"
	slotSelector  = ".ReservationButton__time"
)

// Checker reads a payload's venue page and returns the open slots inside its
// hour window. It owns one Session for its lifetime.
type Checker struct {
	sess *Session
	cfg  config.BrowserConfig
	log  *zap.Logger
}

// NewChecker opens a browser session for one worker's batch. A session that
// cannot be opened is a SetupError: the batch is abandoned, not retried.
func NewChecker(ctx context.Context, cfg config.BrowserConfig, log *zap.Logger) (*Checker, error) {
	sess, err := NewSession(ctx, cfg)
	if err != nil {
		return nil, &errs.SetupError{What: "browser", Err: err}
	}
	return &Checker{sess: sess, cfg: cfg, log: log}, nil
}

// Check loads the payload's URL and collects reservation times filtered to the
// half-open window [MinHour, MaxHour). Button labels that do not parse as a
// clock time are skipped.
func (c *Checker) Check(ctx context.Context, p model.Payload) ([]model.Slot, error) {
	if err := c.sess.Navigate(ctx, p.URL); err != nil {
		return nil, &errs.FetchError{URL: p.URL, Err: err}
	}
	if err := c.sess.WaitFor(ctx, venueSelector, c.cfg.WaitTimeout); err != nil {
		return nil, &errs.FetchError{URL: p.URL, Err: err}
	}

	texts, err := c.sess.ElementsText(ctx, slotSelector)
	if err != nil {
		return nil, &errs.FetchError{URL: p.URL, Err: err}
	}

	return FilterSlots(texts, p.MinHour, p.MaxHour, c.log), nil
}

// Close releases the underlying session.
func (c *Checker) Close() error { return c.sess.Close() }

// FilterSlots parses button labels and keeps the ones inside [minHour, maxHour).
func FilterSlots(texts []string, minHour, maxHour int, log *zap.Logger) []model.Slot {
	var slots []model.Slot
	for _, t := range texts {
		slot, ok := model.ParseSlot(t)
		if !ok {
			if log != nil {
				log.Debug("unparseable slot label", zap.String("text", t))
			}
			continue
		}
		if slot.InWindow(minHour, maxHour) {
			slots = append(slots, slot)
		}
	}
	return slots
}
