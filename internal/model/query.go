package model

// QueryEntry is one raw entry from a query file, whose on-disk shape is
// {"query": [entry, ...]}. Scalar fields are pointers so that a missing key
// can be told apart from a zero value during validation. Exactly one of Date
// or DayRange must be present.
type QueryEntry struct {
	Restaurant *string  `json:"restaurant"`
	State      *string  `json:"state"`
	Seats      *int     `json:"seats"`
	MinHour    *int     `json:"min_hour"`
	MaxHour    *int     `json:"max_hour"`
	NumberTo   []string `json:"number_to"`
	NumberFrom *string  `json:"number_from"`

	// single-date form: "MM-DD-YYYY"
	Date *string `json:"date"`

	// day-range form: days ahead plus an inclusive weekday interval,
	// 0=Monday .. 6=Sunday
	DayRange *int `json:"day_range"`
	MinDOW   *int `json:"min_dow"`
	MaxDOW   *int `json:"max_dow"`
}
