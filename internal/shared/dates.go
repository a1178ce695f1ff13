package shared

import (
	"bytes"
	"fmt"
	"time"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04:05"
)

// Date is a calendar date without a time component. The zero value means
// "absent" and marshals to JSON null; absent dates never compare as expired.
type Date struct {
	t time.Time
}

// ParseDate parses a YYYY-MM-DD string. Empty input yields the absent date.
func ParseDate(s string) (Date, error) {
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("shared: invalid date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

// NewDate builds a Date from components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// IsZero reports whether the date is absent.
func (d Date) IsZero() bool { return d.t.IsZero() }

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool { return d.t.After(other.t) }

// Equal reports whether both dates fall on the same day.
func (d Date) Equal(other Date) bool { return d.t.Equal(other.t) }

// Sub returns the number of whole days from other to d. May be negative.
func (d Date) Sub(other Date) int {
	return int(d.t.Sub(other.t) / (24 * time.Hour))
}

// AddDays returns the date shifted by n days.
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(dateLayout)
}

// MarshalJSON encodes the date as "YYYY-MM-DD", or null when absent.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.t.Format(dateLayout) + `"`), nil
}

// UnmarshalJSON accepts "YYYY-MM-DD", "" and null.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	s := string(bytes.Trim(data, `"`))
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Timestamp is a second-precision wall-clock time stored in the ledger's
// "YYYY-MM-DD HH:MM:SS" form.
type Timestamp struct {
	t time.Time
}

// TimestampOf truncates t to second precision.
func TimestampOf(t time.Time) Timestamp {
	return Timestamp{t: t.Truncate(time.Second)}
}

// IsZero reports whether the timestamp was never set.
func (ts Timestamp) IsZero() bool { return ts.t.IsZero() }

// Time returns the underlying time value.
func (ts Timestamp) Time() time.Time { return ts.t }

func (ts Timestamp) String() string {
	if ts.IsZero() {
		return ""
	}
	return ts.t.Format(timestampLayout)
}

// MarshalJSON encodes the timestamp, or null when unset.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + ts.t.Format(timestampLayout) + `"`), nil
}

// UnmarshalJSON accepts "YYYY-MM-DD HH:MM:SS", "" and null.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*ts = Timestamp{}
		return nil
	}
	s := string(bytes.Trim(data, `"`))
	if s == "" {
		*ts = Timestamp{}
		return nil
	}
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return fmt.Errorf("shared: invalid timestamp %q: %w", s, err)
	}
	*ts = Timestamp{t: t}
	return nil
}

// IsExpired reports whether a carton with the given expiry date counts as
// expired on ref. Expiry is inclusive: the item is expired on its expiry date
// itself. An absent expiry never expires.
func IsExpired(expiry, ref Date) bool {
	if expiry.IsZero() {
		return false
	}
	return !expiry.After(ref)
}

// DaysUntil returns the number of days from ref until expiry. Negative once
// the expiry date has passed.
func DaysUntil(expiry, ref Date) int {
	return expiry.Sub(ref)
}
