package shared

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExpiryIsInclusive(t *testing.T) {
	ref := NewDate(2025, time.March, 15)

	require.True(t, IsExpired(NewDate(2025, time.March, 15), ref), "expiry on ref counts as expired")
	require.True(t, IsExpired(NewDate(2025, time.March, 14), ref))
	require.False(t, IsExpired(NewDate(2025, time.March, 16), ref))
	require.False(t, IsExpired(Date{}, ref), "absent expiry never expires")
}

func TestDaysUntil(t *testing.T) {
	ref := NewDate(2025, time.March, 15)
	require.Equal(t, 0, DaysUntil(NewDate(2025, time.March, 15), ref))
	require.Equal(t, 10, DaysUntil(NewDate(2025, time.March, 25), ref))
	require.Equal(t, -5, DaysUntil(NewDate(2025, time.March, 10), ref))
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2025, time.January, 2)
	data, err := json.Marshal(d)
	require.NoError(t, err)
	require.Equal(t, `"2025-01-02"`, string(data))

	var back Date
	require.NoError(t, json.Unmarshal(data, &back))
	require.True(t, d.Equal(back))

	data, err = json.Marshal(Date{})
	require.NoError(t, err)
	require.Equal(t, "null", string(data))

	var absent Date
	require.NoError(t, json.Unmarshal([]byte("null"), &absent))
	require.True(t, absent.IsZero())
	require.NoError(t, json.Unmarshal([]byte(`""`), &absent))
	require.True(t, absent.IsZero())
}

func TestDateArithmetic(t *testing.T) {
	d := NewDate(2025, time.February, 27)
	require.Equal(t, "2025-03-02", d.AddDays(3).String())
	require.Equal(t, 3, d.AddDays(3).Sub(d))
}

func TestTimestampRoundTrip(t *testing.T) {
	ts := TimestampOf(time.Date(2025, time.June, 1, 10, 30, 45, 999999999, time.UTC))
	require.Equal(t, "2025-06-01 10:30:45", ts.String())

	data, err := json.Marshal(ts)
	require.NoError(t, err)
	var back Timestamp
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, ts.String(), back.String())

	var unset Timestamp
	require.NoError(t, json.Unmarshal([]byte("null"), &unset))
	require.True(t, unset.IsZero())
}
