package model

import (
	"fmt"
	"time"
)

// Payload is one fully-specified availability query: one restaurant, one date,
// one party size, one hour window, one recipient set. Built once by the payload
// builder and owned by the worker that processes it; never mutated after that.
type Payload struct {
	Restaurant string
	State      string
	Seats      int
	Date       time.Time // date only; clock fields are zero
	MinHour    int       // earliest acceptable hour, 24h
	MaxHour    int       // exclusive upper bound
	Recipients []string
	Sender     string
	URL        string
}

// VenueURL derives the lookup URL for a restaurant/date/seats triple.
func VenueURL(state, restaurant string, date time.Time, seats int) string {
	return fmt.Sprintf("https://resy.com/cities/%s/%s?date=%s&seats=%d",
		state, restaurant, date.Format("2006-01-02"), seats)
}

// DateLabel renders the date the way it appears in notification messages,
// e.g. "Thu, 12-25-2024".
func (p Payload) DateLabel() string {
	return p.Date.Format("Mon, 01-02-2006")
}
