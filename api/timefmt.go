package api

import "time"

// TimeLayout is the layout of every timestamp in documents and filters:
// UTC with millisecond precision, e.g. "2022-08-27T02:05:29.000Z".
const TimeLayout = "2006-01-02T15:04:05.000Z"

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime accepts TimeLayout and, for hand-written input, RFC 3339.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err == nil {
		return t, nil
	}
	if t, err2 := time.Parse(time.RFC3339Nano, s); err2 == nil {
		return t.UTC(), nil
	}
	return time.Time{}, err
}
