package adif

import (
	"strings"
	"time"
)

const (
	// PlaceholderCallsign groups records with no station callsign.
	PlaceholderCallsign = "UNKNOWN"
	// PlaceholderLocator stands in for a missing or unusable gridsquare.
	PlaceholderLocator = "NOGRID"

	qsoTimeLayout = "20060102150405"
)

// QSOTime derives the contact instant from QSO_DATE (8 digits, YYYYMMDD) and
// TIME_ON (up to 6 digits, HHMMSS; shorter values are padded with trailing
// zeros, longer ones truncated; absent means midnight). ok is false when the
// fields do not form a valid instant. Total: never returns an error.
func QSOTime(r Record) (time.Time, bool) {
	date := strings.TrimSpace(r.Get(TagQSODate))
	if len(date) != 8 {
		return time.Time{}, false
	}
	hhmmss := strings.TrimSpace(r.Get(TagTimeOn))
	if len(hhmmss) > 6 {
		hhmmss = hhmmss[:6]
	}
	for len(hhmmss) < 6 {
		hhmmss += "0"
	}
	t, err := time.Parse(qsoTimeLayout, date+hhmmss)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// GroupKey builds the partition identity "{callsign}-{locator}" from the
// station callsign and gridsquare. It names the output file for the group and
// bounds duplicate detection: records in different groups are never compared.
func GroupKey(r Record) string {
	return SanitizeCallsign(r.Get(TagStationCallsign)) + "-" + SanitizeLocator(r.Get(TagMyGridsquare))
}

// SanitizeCallsign trims, uppercases and makes the callsign filename-safe.
// Portable suffixes like BG5ABC/4 become BG5ABC_4.
func SanitizeCallsign(call string) string {
	call = strings.ToUpper(strings.TrimSpace(call))
	if call == "" {
		return PlaceholderCallsign
	}
	return strings.ReplaceAll(call, "/", "_")
}

// SanitizeLocator uppercases the locator and strips everything that is not
// ASCII alphanumeric.
func SanitizeLocator(loc string) string {
	loc = strings.ToUpper(strings.TrimSpace(loc))
	var b strings.Builder
	for _, r := range loc {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return PlaceholderLocator
	}
	return b.String()
}

// HasStationCallsign reports whether the record carries a usable station
// callsign; records without one are tallied for the end-of-run warning.
func HasStationCallsign(r Record) bool {
	return strings.TrimSpace(r.Get(TagStationCallsign)) != ""
}
