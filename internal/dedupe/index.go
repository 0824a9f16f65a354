// Package dedupe implements the windowed duplicate index that decides, for
// each incoming contact record, whether an equivalent contact was already
// accepted within the same station group.
package dedupe

import (
	"sort"
	"strings"
	"time"

	"example.com/adifmerge/internal/adif"
)

// DefaultTolerance is the widest time gap between two contacts with matching
// comparison fields that still counts as the same contact.
const DefaultTolerance = 900 * time.Second

// Kind classifies the outcome of processing one record.
type Kind int

const (
	Accepted Kind = iota
	Duplicate
)

// Outcome is the index's decision for one record. Original is populated only
// for Duplicate and holds the earlier-accepted record that matched.
type Outcome struct {
	Kind     Kind
	Original adif.Record
}

// Event records one rejected duplicate for reporting.
type Event struct {
	Group    string      `json:"group"`
	Incoming adif.Record `json:"incoming"`
	Original adif.Record `json:"original"`
}

// ComparisonKey is the coarse bucket used to limit candidate scans within a
// group: contact callsign, band and mode, all uppercased.
type ComparisonKey struct {
	Call string `json:"call"`
	Band string `json:"band"`
	Mode string `json:"mode"`
}

type candidate struct {
	at  time.Time
	rec adif.Record
}

type group struct {
	records []adif.Record
	buckets map[ComparisonKey][]candidate
}

// Index holds the per-run duplicate state. It is built fresh each run, owned
// by a single merger, and passed explicitly — never shared or global. Memory
// grows monotonically with accepted records and is released at process exit.
type Index struct {
	tolerance time.Duration
	groups    map[string]*group
	events    []Event
	accepted  int
}

// New returns an empty index using the given tolerance window. Non-positive
// tolerances fall back to DefaultTolerance.
func New(tolerance time.Duration) *Index {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Index{tolerance: tolerance, groups: map[string]*group{}}
}

// Tolerance returns the configured window.
func (x *Index) Tolerance() time.Duration {
	return x.tolerance
}

// Process classifies rec within groupKey. Accepted records are stored in the
// group's output list; records with a usable comparison key are additionally
// indexed as future duplicate candidates. A record missing its contact
// callsign or timestamp can never be matched reliably, so it is always
// accepted and never indexed. Classification is final: nothing is
// re-evaluated or retroactively removed.
func (x *Index) Process(rec adif.Record, groupKey string) Outcome {
	g := x.groups[groupKey]
	if g == nil {
		g = &group{buckets: map[ComparisonKey][]candidate{}}
		x.groups[groupKey] = g
	}

	call := strings.ToUpper(strings.TrimSpace(rec.Get(adif.TagCall)))
	at, hasTime := adif.QSOTime(rec)
	if call == "" || !hasTime {
		g.records = append(g.records, rec)
		x.accepted++
		return Outcome{Kind: Accepted}
	}

	key := ComparisonKey{
		Call: call,
		Band: strings.ToUpper(strings.TrimSpace(rec.Get(adif.TagBand))),
		Mode: strings.ToUpper(strings.TrimSpace(rec.Get(adif.TagMode))),
	}

	// First match wins: candidates are scanned in insertion order, so the
	// oldest accepted record is reported as the original.
	for _, cand := range g.buckets[key] {
		if absDiff(at, cand.at) <= x.tolerance {
			x.events = append(x.events, Event{Group: groupKey, Incoming: rec, Original: cand.rec})
			return Outcome{Kind: Duplicate, Original: cand.rec}
		}
	}

	g.records = append(g.records, rec)
	g.buckets[key] = append(g.buckets[key], candidate{at: at, rec: rec})
	x.accepted++
	return Outcome{Kind: Accepted}
}

// Groups returns every group key that accepted at least one record, sorted.
func (x *Index) Groups() []string {
	keys := make([]string, 0, len(x.groups))
	for k, g := range x.groups {
		if len(g.records) > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Records returns the accepted records of one group in acceptance order.
func (x *Index) Records(groupKey string) []adif.Record {
	g := x.groups[groupKey]
	if g == nil {
		return nil
	}
	return g.records
}

// Events returns the duplicate events in detection order.
func (x *Index) Events() []Event {
	return x.events
}

// Accepted returns the count of stored records across all groups.
func (x *Index) Accepted() int {
	return x.accepted
}

// Duplicates returns the count of rejected records.
func (x *Index) Duplicates() int {
	return len(x.events)
}

func absDiff(a, b time.Time) time.Duration {
	d := a.Sub(b)
	if d < 0 {
		return -d
	}
	return d
}
