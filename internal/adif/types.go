package adif

import "strings"

// Well-known tag names used by the merge pipeline. ADIF tag names are
// case-insensitive; Record stores them uppercased.
const (
	TagCall            = "CALL"
	TagBand            = "BAND"
	TagMode            = "MODE"
	TagQSODate         = "QSO_DATE"
	TagTimeOn          = "TIME_ON"
	TagStationCallsign = "STATION_CALLSIGN"
	TagMyGridsquare    = "MY_GRIDSQUARE"
)

// Record is one decoded contact entry. Source identifies the file the record
// was parsed from; it lives outside Fields so serialization can never leak it
// into an output file.
type Record struct {
	Fields map[string]string `json:"fields"`
	Source string            `json:"source,omitempty"`
}

// NewRecord returns an empty record attributed to the given source.
func NewRecord(source string) Record {
	return Record{Fields: map[string]string{}, Source: source}
}

// Get returns the value stored under name, folding case. Missing tags yield
// the empty string.
func (r Record) Get(name string) string {
	if r.Fields == nil {
		return ""
	}
	return r.Fields[strings.ToUpper(name)]
}

// Set stores value under the uppercased tag name.
func (r Record) Set(name, value string) {
	r.Fields[strings.ToUpper(name)] = value
}

// Len reports the number of real tags, excluding provenance.
func (r Record) Len() int {
	return len(r.Fields)
}
