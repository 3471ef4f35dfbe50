package model

import "time"

// NotifiedLayout is the timestamp format persisted in ledger records.
const NotifiedLayout = "2006-01-02 15:04:05"

// NotificationRecord is the durable form of one notification event: one
// restaurant/date/slot/seats/recipient tuple plus the time it was last
// reported. At most one record exists per fingerprint; an affirmative notify
// decision overwrites it in place.
type NotificationRecord struct {
	RunID           string `json:"run_id,omitempty"`
	Restaurant      string `json:"restaurant"`
	Date            string `json:"date"`             // "2006-01-02"
	ReservationTime string `json:"reservation_time"` // "07:00PM"
	Seats           int    `json:"seats"`
	Number          string `json:"number"`
	Notified        string `json:"notified"` // NotifiedLayout
}

// NewNotificationRecord builds the record for one slot of a payload and one
// recipient. The Notified timestamp is stamped by the store on write.
func NewNotificationRecord(p Payload, slot Slot, recipient string) NotificationRecord {
	return NotificationRecord{
		Restaurant:      p.Restaurant,
		Date:            p.Date.Format("2006-01-02"),
		ReservationTime: slot.String(),
		Seats:           p.Seats,
		Number:          recipient,
	}
}

// NotifiedAt parses the persisted timestamp. Zero time if unset or malformed.
func (r NotificationRecord) NotifiedAt() time.Time {
	t, err := time.Parse(NotifiedLayout, r.Notified)
	if err != nil {
		return time.Time{}
	}
	return t
}
