package main

import (
	"strings"
	"time"
)

// Status is the per-user activity tag shown on the dashboard.
type Status string

const (
	StatusActive   Status = "Active"
	StatusExpiring Status = "Expiring"
	StatusInactive Status = "Inactive"
)

// The source system stores "never expires" as this literal value, not as a
// date to do arithmetic on. It is compared exactly against the raw field.
const (
	neverExpiresRaw     = "99991230"
	neverExpiresDisplay = "Expires 9999.12.30"
)

// classifyStatus assigns the user's status tag. Rules are checked in order and
// the first match wins: an expired end date beats dormancy beats the expiring
// window. A user with neither date on file is Active.
func classifyStatus(rec UserRecord, now time.Time, dormancyDays, expiringDays int) Status {
	if !rec.ExpirationEnd.IsZero() && rec.ExpirationEnd.Before(now) {
		return StatusInactive
	}
	if isDormant(rec.LastLogon, now, dormancyDays) {
		return StatusInactive
	}
	if !rec.ExpirationEnd.IsZero() && rec.ExpirationEnd.Before(now.AddDate(0, 0, expiringDays)) {
		return StatusExpiring
	}
	return StatusActive
}

// isDormant reports whether the last logon is known and older than the
// dormancy window. An unknown logon is never dormant.
func isDormant(lastLogon, now time.Time, dormancyDays int) bool {
	if lastLogon.IsZero() {
		return false
	}
	return now.Sub(lastLogon) > time.Duration(dormancyDays)*24*time.Hour
}

// expiryDisplay formats the expiration line for the activity widget. The
// never-expires sentinel and an unparsable end date both render the sentinel
// string; a real end date renders as "Expires YYYY.MM.DD".
func expiryDisplay(rec UserRecord) string {
	if strings.TrimSpace(rec.ExpirationEndRaw) == neverExpiresRaw {
		return neverExpiresDisplay
	}
	if !rec.ExpirationEnd.IsZero() {
		return "Expires " + formatCalendarDate(rec.ExpirationEnd)
	}
	return neverExpiresDisplay
}
