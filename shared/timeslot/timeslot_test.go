package timeslot_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafebook/shared/failure"
	"cafebook/shared/timeslot"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "slash form", input: "2025/11/01", want: "2025/11/01"},
		{name: "dash form", input: "2025-11-01", want: "2025/11/01"},
		{name: "surrounding spaces", input: "  2025/11/01 ", want: "2025/11/01"},
		{name: "single digit month and day", input: "2025/1/2", want: "2025/01/02"},
		{name: "leap day", input: "2024/02/29", want: "2024/02/29"},
		{name: "not a leap year", input: "2025/02/29", wantErr: true},
		{name: "month thirteen", input: "2025/13/01", wantErr: true},
		{name: "day zero", input: "2025/11/00", wantErr: true},
		{name: "mixed separators", input: "2025/11-01", wantErr: true},
		{name: "two digit year", input: "25/11/01", wantErr: true},
		{name: "letters", input: "2025/Nov/01", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := timeslot.NormalizeDate(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, failure.ErrInvalidFormat)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "colon form", input: "13:00", want: "13:00"},
		{name: "compact form", input: "1300", want: "13:00"},
		{name: "single digit hour", input: "9:05", want: "09:05"},
		{name: "midnight", input: "00:00", want: "00:00"},
		{name: "last minute", input: "2359", want: "23:59"},
		{name: "hour 24", input: "24:00", wantErr: true},
		{name: "minute 60", input: "12:60", wantErr: true},
		{name: "three digits", input: "130", wantErr: true},
		{name: "single digit minutes", input: "13:5", wantErr: true},
		{name: "letters", input: "ab:cd", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := timeslot.NormalizeTime(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, failure.ErrInvalidFormat)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestNormalize_RoundTrip(t *testing.T) {
	dash, err := timeslot.NormalizeDate("2025-11-01")
	require.NoError(t, err)
	slash, err := timeslot.NormalizeDate("2025/11/01")
	require.NoError(t, err)

	assert.Equal(t, slash, dash)
	assert.Equal(t, "2025/11/01", dash.String())

	compact, err := timeslot.NormalizeTime("1300")
	require.NoError(t, err)
	colon, err := timeslot.NormalizeTime("13:00")
	require.NoError(t, err)

	assert.Equal(t, colon, compact)
	assert.Equal(t, "13:00", compact.String())
}

func TestOverlaps(t *testing.T) {
	at := func(s string) timeslot.TimeOfDay {
		v, err := timeslot.NormalizeTime(s)
		require.NoError(t, err)

		return v
	}

	tests := []struct {
		name                       string
		startA, endA, startB, endB string
		want                       bool
	}{
		{name: "partial overlap", startA: "13:00", endA: "14:00", startB: "13:30", endB: "14:30", want: true},
		{name: "containment", startA: "13:00", endA: "16:00", startB: "14:00", endB: "15:00", want: true},
		{name: "identical", startA: "13:00", endA: "14:00", startB: "13:00", endB: "14:00", want: true},
		{name: "abutting after", startA: "13:00", endA: "14:00", startB: "14:00", endB: "15:00", want: false},
		{name: "abutting before", startA: "13:00", endA: "14:00", startB: "12:00", endB: "13:00", want: false},
		{name: "disjoint", startA: "09:00", endA: "10:00", startB: "11:00", endB: "12:00", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := timeslot.Overlaps(at(tt.startA), at(tt.endA), at(tt.startB), at(tt.endB))
			assert.Equal(t, tt.want, got)

			symmetric := timeslot.Overlaps(at(tt.startB), at(tt.endB), at(tt.startA), at(tt.endA))
			assert.Equal(t, got, symmetric)
		})
	}
}

func TestParseRange(t *testing.T) {
	r, err := timeslot.ParseRange("1300", "14:00")
	require.NoError(t, err)
	assert.Equal(t, "13:00-14:00", r.String())

	_, err = timeslot.ParseRange("14:00", "13:00")
	assert.ErrorIs(t, err, failure.ErrInvalidRange)

	_, err = timeslot.ParseRange("14:00", "14:00")
	assert.ErrorIs(t, err, failure.ErrInvalidRange)

	_, err = timeslot.ParseRange("xx", "14:00")
	assert.ErrorIs(t, err, failure.ErrInvalidFormat)
}

func TestDateAt(t *testing.T) {
	loc := time.FixedZone("UTC+09:00", 9*3600)

	d, err := timeslot.NormalizeDate("2025/11/01")
	require.NoError(t, err)

	start, err := timeslot.NormalizeTime("13:00")
	require.NoError(t, err)

	instant := d.At(start, loc)
	assert.Equal(t, time.Date(2025, 11, 1, 4, 0, 0, 0, time.UTC), instant.UTC())
	assert.Equal(t, d, timeslot.DateOf(instant))
}
