package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire and display format of a deadline.
const DateLayout = "2006-01-02"

// Date is a calendar date without a time of day. The zero value means "no date".
// A deadline received in another format keeps its text but has no time.
type Date struct {
	time.Time
	raw string
}

// ParseDate parses YYYY-MM-DD. Longer timestamps are truncated to their date part.
func ParseDate(s string) (Date, error) {
	if s == "" {
		return Date{}, nil
	}
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid deadline %q: want YYYY-MM-DD", s)
	}
	return Date{Time: t}, nil
}

// NewDate truncates t to its calendar date in t's location.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// String returns YYYY-MM-DD, the text of an unparsed deadline, or "" for the
// zero date.
func (d Date) String() string {
	if d.IsZero() {
		return d.raw
	}
	return d.Format(DateLayout)
}

// MarshalJSON writes null for the zero date.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() && d.raw == "" {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts null, "" or a date string. A deadline in any other
// form is kept as text so one odd row never fails a whole list.
func (d *Date) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*d = Date{raw: string(data)}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		*d = Date{raw: s}
		return nil
	}
	*d = parsed
	return nil
}
