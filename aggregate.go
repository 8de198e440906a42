package main

import (
	"strings"
	"time"
)

// LicenseCategory is the classified license type of a user.
type LicenseCategory string

const (
	CategoryAdvanced      LicenseCategory = "Advanced"
	CategoryCore          LicenseCategory = "Core"
	CategorySelfService   LicenseCategory = "Self Service"
	CategoryNotClassified LicenseCategory = "Not Classified"
)

// licenseCategories fixes the display and zero-fill order.
var licenseCategories = []LicenseCategory{
	CategoryAdvanced,
	CategoryCore,
	CategorySelfService,
	CategoryNotClassified,
}

// License consumption weights: an Advanced user consumes a full license, Core
// and Self Service users share one license per group, Not Classified users
// consume none.
const (
	coreUsersPerLicense        = 5
	selfServiceUsersPerLicense = 30
)

// roleCategory maps the raw role-type string onto the fixed vocabulary.
// Matching is exact after trimming; anything unknown, empty, or missing is
// Not Classified.
func roleCategory(raw string) LicenseCategory {
	switch strings.TrimSpace(raw) {
	case "GB Advanced Use":
		return CategoryAdvanced
	case "GC Core Use":
		return CategoryCore
	case "GD Self-Service Use":
		return CategorySelfService
	default:
		return CategoryNotClassified
	}
}

// LicenseUsage holds the dashboard's summary figures for one run.
type LicenseUsage struct {
	Capacity          int
	TotalUsers        int
	InactiveUsers     int
	RawCounts         map[LicenseCategory]int
	Consumption       map[LicenseCategory]int
	ActiveLicenses    int
	RemainingLicenses int
	UtilizationRate   float64
}

// aggregateUsage computes the summary over the distinct-user snapshot.
// InactiveUsers counts only dormant users; it is deliberately narrower than
// "status == Inactive", which also covers expired end dates.
func aggregateUsage(users []UserRecord, now time.Time, capacity, dormancyDays int) LicenseUsage {
	usage := LicenseUsage{
		Capacity:    capacity,
		TotalUsers:  len(users),
		RawCounts:   make(map[LicenseCategory]int, len(licenseCategories)),
		Consumption: make(map[LicenseCategory]int, len(licenseCategories)),
	}
	for _, category := range licenseCategories {
		usage.RawCounts[category] = 0
	}

	for _, user := range users {
		usage.RawCounts[roleCategory(user.RoleType)]++
		if isDormant(user.LastLogon, now, dormancyDays) {
			usage.InactiveUsers++
		}
	}

	usage.Consumption[CategoryAdvanced] = usage.RawCounts[CategoryAdvanced]
	usage.Consumption[CategoryCore] = usage.RawCounts[CategoryCore] / coreUsersPerLicense
	usage.Consumption[CategorySelfService] = usage.RawCounts[CategorySelfService] / selfServiceUsersPerLicense
	usage.Consumption[CategoryNotClassified] = 0

	for _, category := range licenseCategories {
		usage.ActiveLicenses += usage.Consumption[category]
	}
	usage.RemainingLicenses = capacity - usage.ActiveLicenses
	if capacity > 0 {
		usage.UtilizationRate = float64(usage.ActiveLicenses) / float64(capacity) * 100
	}

	return usage
}
