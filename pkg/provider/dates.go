package provider

import (
	"strconv"
	"strings"
	"time"
)

// NormalizeDate renders t the way the bridge expects its start-date and
// end-date params: epoch millis minus the local timezone offset, in seconds.
// For a local midnight this is the epoch of the same wall clock date in UTC.
func NormalizeDate(t time.Time) string {
	_, offset := t.In(time.Local).Zone() // seconds east of UTC
	ms := t.UnixMilli() + int64(offset)*1000
	return strconv.FormatFloat(float64(ms)/1000, 'f', -1, 64)
}

// monthBounds fills in zero bounds with the first day of the month of now
// and the first day of the following month, local time.
func monthBounds(now time.Time, start, end time.Time) (time.Time, time.Time) {
	year, month, _ := now.In(time.Local).Date()
	if start.IsZero() {
		start = time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	}
	if end.IsZero() {
		end = time.Date(year, month+1, 1, 0, 0, 0, 0, time.Local)
	}
	return start, end
}

func queryString(start, end time.Time) string {
	// start-date before end-date; url.Values.Encode sorts keys
	params := []string{}
	if !start.IsZero() {
		params = append(params, "start-date="+NormalizeDate(start))
	}
	if !end.IsZero() {
		params = append(params, "end-date="+NormalizeDate(end))
	}
	if len(params) == 0 {
		return ""
	}
	return "?" + strings.Join(params, "&")
}

func date(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
