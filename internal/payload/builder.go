// Package payload expands raw query entries into the sorted payload list the
// scheduler partitions across workers.
package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/example/resy-notifier/internal/errs"
	"github.com/example/resy-notifier/internal/model"
	"github.com/example/resy-notifier/internal/util"
)

const dateLayout = "01-02-2006" // MM-DD-YYYY, as written in query files

type Builder struct {
	Now func() time.Time
	Log *zap.Logger
}

func NewBuilder(log *zap.Logger) *Builder {
	return &Builder{Now: time.Now, Log: log}
}

// LoadQueryFile reads and decodes a query file. A missing or unreadable file,
// undecodable JSON, or an absent "query" key is a ConfigError: fatal before
// any work starts. Entries decode one at a time, so a wrongly-typed field is
// a ValidationError carrying the entry's index.
func LoadQueryFile(path string) ([]model.QueryEntry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &errs.ConfigError{Err: fmt.Errorf("read query file %s: %w", path, err)}
	}

	var qf struct {
		Query []json.RawMessage `json:"query"`
	}
	if err := json.Unmarshal(b, &qf); err != nil {
		return nil, &errs.ConfigError{Err: fmt.Errorf("parse query file %s: %w", path, err)}
	}
	if qf.Query == nil {
		return nil, &errs.ConfigError{Err: fmt.Errorf("query file %s: no \"query\" key", path)}
	}

	entries := make([]model.QueryEntry, len(qf.Query))
	for i, raw := range qf.Query {
		if err := json.Unmarshal(raw, &entries[i]); err != nil {
			var terr *json.UnmarshalTypeError
			if errors.As(err, &terr) {
				return nil, &errs.ValidationError{
					Entry: i,
					Field: terr.Field,
					Msg:   fmt.Sprintf("want %s, got %s", terr.Type, terr.Value),
				}
			}
			return nil, &errs.ConfigError{Err: fmt.Errorf("parse query file %s entry %d: %w", path, i, err)}
		}
	}
	return entries, nil
}

// Build expands every entry into payloads and returns them sorted ascending by
// date (stable: ties keep input order). Any invalid entry fails the whole
// build; no partial payload set is ever processed.
func (b *Builder) Build(entries []model.QueryEntry) ([]model.Payload, error) {
	var payloads []model.Payload

	for i, e := range entries {
		expanded, err := b.expand(i, e)
		if err != nil {
			return nil, err
		}
		payloads = append(payloads, expanded...)
	}

	sort.SliceStable(payloads, func(i, j int) bool {
		return payloads[i].Date.Before(payloads[j].Date)
	})

	return payloads, nil
}

func (b *Builder) expand(idx int, e model.QueryEntry) ([]model.Payload, error) {
	if err := validate(idx, e); err != nil {
		return nil, err
	}

	recipients := make([]string, len(e.NumberTo))
	for i, n := range e.NumberTo {
		recipients[i] = util.NormalizePhone(n)
	}
	sender := util.NormalizePhone(*e.NumberFrom)

	mk := func(date time.Time) model.Payload {
		return model.Payload{
			Restaurant: *e.Restaurant,
			State:      *e.State,
			Seats:      *e.Seats,
			Date:       date,
			MinHour:    *e.MinHour,
			MaxHour:    *e.MaxHour,
			Recipients: recipients,
			Sender:     sender,
			URL:        model.VenueURL(*e.State, *e.Restaurant, date, *e.Seats),
		}
	}

	today := truncateDay(b.Now())

	if e.Date != nil {
		date, err := time.Parse(dateLayout, *e.Date)
		if err != nil {
			return nil, &errs.ValidationError{Entry: idx, Field: "date", Msg: fmt.Sprintf("bad date %q (want MM-DD-YYYY)", *e.Date)}
		}
		if date.Before(today) {
			b.Log.Warn("skipping past date", zap.String("restaurant", *e.Restaurant), zap.String("date", *e.Date))
			return nil, nil
		}
		return []model.Payload{mk(date)}, nil
	}

	// day-range form: every day in [today, today+day_range) whose weekday
	// (0=Monday..6=Sunday) falls in the inclusive [min_dow, max_dow]
	var payloads []model.Payload
	for delta := 0; delta < *e.DayRange; delta++ {
		date := today.AddDate(0, 0, delta)
		dow := mondayWeekday(date)
		if dow < *e.MinDOW || dow > *e.MaxDOW {
			continue
		}
		payloads = append(payloads, mk(date))
	}
	return payloads, nil
}

func validate(idx int, e model.QueryEntry) error {
	bad := func(field, msg string) error {
		return &errs.ValidationError{Entry: idx, Field: field, Msg: msg}
	}

	switch {
	case e.Restaurant == nil || *e.Restaurant == "":
		return bad("restaurant", "required")
	case e.State == nil || *e.State == "":
		return bad("state", "required")
	case e.Seats == nil:
		return bad("seats", "required")
	case *e.Seats <= 0:
		return bad("seats", "must be positive")
	case e.MinHour == nil:
		return bad("min_hour", "required")
	case e.MaxHour == nil:
		return bad("max_hour", "required")
	case *e.MinHour < 0 || *e.MinHour >= 24:
		return bad("min_hour", "must be in [0,24)")
	case *e.MaxHour < 0 || *e.MaxHour >= 24:
		return bad("max_hour", "must be in [0,24)")
	case *e.MinHour > *e.MaxHour:
		return bad("min_hour", "must not exceed max_hour")
	case len(e.NumberTo) == 0:
		return bad("number_to", "required and non-empty")
	case e.NumberFrom == nil || *e.NumberFrom == "":
		return bad("number_from", "required")
	}

	hasDate := e.Date != nil
	hasRange := e.DayRange != nil
	switch {
	case hasDate && hasRange:
		return bad("date", "exactly one of date or day_range allowed")
	case !hasDate && !hasRange:
		return bad("date", "one of date or day_range required")
	}

	if hasRange {
		switch {
		case *e.DayRange <= 0:
			return bad("day_range", "must be positive")
		case e.MinDOW == nil:
			return bad("min_dow", "required with day_range")
		case e.MaxDOW == nil:
			return bad("max_dow", "required with day_range")
		case *e.MinDOW < 0 || *e.MinDOW > 6:
			return bad("min_dow", "must be in [0,6]")
		case *e.MaxDOW < 0 || *e.MaxDOW > 6:
			return bad("max_dow", "must be in [0,6]")
		case *e.MinDOW > *e.MaxDOW:
			return bad("min_dow", "must not exceed max_dow")
		}
	}

	return nil
}

// mondayWeekday maps time.Weekday (Sun=0) to the query convention Mon=0..Sun=6.
func mondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// truncateDay drops the clock and pins the calendar day to UTC, matching the
// location time.Parse gives query-file dates. Comparisons and expansion then
// never straddle a timezone boundary.
func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
