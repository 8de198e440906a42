package main

import (
	"strings"
	"time"
)

// Half-day markers as they appear in extracts from the Korean-locale source
// system. The marker prefixes the time-of-day field, e.g. "오후 02:31:07".
const (
	morningMarker   = "오전"
	afternoonMarker = "오후"
)

var (
	logon24Layouts = []string{
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
	}
	logon12Layouts = []string{
		"2006-01-02 03:04:05 PM",
		"2006-01-02 3:04:05 PM",
		"2006-01-02 3:04 PM",
	}
)

// parseLogonDatetime combines the raw logon date and time fields into a single
// timestamp. The time field may carry a half-day marker; with a marker present
// the numeric part is read as a 12-hour clock (hour 12 stays 12 in the
// afternoon, becomes 0 in the morning), otherwise as a 24-hour clock.
// A zero time means the value is unknown; a malformed field is never an error.
func parseLogonDatetime(datePart, timePart string) time.Time {
	datePart = strings.TrimSpace(datePart)
	timePart = strings.TrimSpace(timePart)
	if datePart == "" || timePart == "" {
		return time.Time{}
	}

	meridiem := ""
	switch {
	case strings.Contains(timePart, morningMarker):
		timePart = strings.TrimSpace(strings.ReplaceAll(timePart, morningMarker, ""))
		meridiem = "AM"
	case strings.Contains(timePart, afternoonMarker):
		timePart = strings.TrimSpace(strings.ReplaceAll(timePart, afternoonMarker, ""))
		meridiem = "PM"
	}

	if meridiem == "" {
		value := datePart + " " + timePart
		for _, layout := range logon24Layouts {
			if parsed, err := time.Parse(layout, value); err == nil {
				return parsed
			}
		}
		return time.Time{}
	}

	value := datePart + " " + timePart + " " + meridiem
	for _, layout := range logon12Layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// parseCalendarDate reads the compact business-date encoding: 8 digits are a
// full YYYYMMDD date, 6 digits are YYYYMM resolved to the first of the month.
// Any other shape yields a zero time.
func parseCalendarDate(value string) time.Time {
	value = strings.TrimSpace(value)
	switch len(value) {
	case 8:
		if parsed, err := time.Parse("20060102", value); err == nil {
			return parsed
		}
	case 6:
		if parsed, err := time.Parse("200601", value); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// formatCalendarDate renders a parsed business date the way the dashboard
// displays it, e.g. "2026.11.03".
func formatCalendarDate(value time.Time) string {
	return value.Format("2006.01.02")
}
