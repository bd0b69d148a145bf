package store

import (
	"database/sql"
	"fmt"
	"math"
	"time"
)

// timeLayout is how timestamps are stored as text: local wall-clock time,
// space separated, microsecond precision, no zone. Existing databases hold
// this layout and ORDER BY start_time compares the raw text, so every
// writer must use it.
const timeLayout = "2006-01-02 15:04:05.999999"

const dateLayout = "2006-01-02"

var parseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// stamp truncates t to the precision that survives a round-trip through the database.
func stamp(t time.Time) time.Time {
	return t.In(time.Local).Truncate(time.Microsecond)
}

func formatTime(t time.Time) string {
	return stamp(t).Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range parseLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func parseNullableTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// DurationMinutes returns floor((end-start)/60s).
func DurationMinutes(start, end time.Time) int64 {
	return int64(math.Floor(end.Sub(start).Seconds() / 60))
}

func nullableFloat(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

func nullableInt(i sql.NullInt64) *int64 {
	if !i.Valid {
		return nil
	}
	v := i.Int64
	return &v
}
