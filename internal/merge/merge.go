// Package merge orchestrates one deduplicating merge run across an ordered
// list of byte sources.
package merge

import (
	"io"
	"os"
	"time"

	"example.com/adifmerge/internal/adif"
	"example.com/adifmerge/internal/common"
	"example.com/adifmerge/internal/dedupe"
)

// Options configures a run.
type Options struct {
	// Tolerance is the duplicate time window; zero selects the default.
	Tolerance time.Duration
	// ChunkSize is the streaming read granularity; zero selects the default.
	ChunkSize int
}

// Merger consumes sources strictly sequentially and feeds every record
// through the duplicate index. It is the per-source error boundary: an I/O
// failure ends that source's stream, gets logged with the source identifier,
// and the run continues.
type Merger struct {
	opts    Options
	index   *dedupe.Index
	missing map[string]int
	sources int
	metrics *common.Metrics
}

// NewMerger builds a merger with a fresh index.
func NewMerger(opts Options) *Merger {
	return &Merger{
		opts:    opts,
		index:   dedupe.New(opts.Tolerance),
		missing: map[string]int{},
	}
}

// SetMetrics attaches a metrics recorder; it is propagated to each stream.
func (m *Merger) SetMetrics(mx *common.Metrics) {
	m.metrics = mx
}

// MergeFile merges a single file, attributing its records to path.
func (m *Merger) MergeFile(path string) {
	f, err := os.Open(path)
	if err != nil {
		common.Logf("open %s: %v", path, err)
		return
	}
	defer f.Close()
	if m.metrics != nil {
		if info, err := f.Stat(); err == nil {
			m.metrics.AddTotalBytes(info.Size())
		}
	}
	m.MergeReader(path, f)
}

// MergeReader merges one byte source. Records accepted here survive for the
// run inside the index; rejected records survive only in the event list.
func (m *Merger) MergeReader(source string, r io.Reader) {
	m.sources++
	stream := adif.NewStream(r, source, adif.StreamOptions{ChunkSize: m.opts.ChunkSize})
	stream.SetMetrics(m.metrics)
	count := 0
	for {
		rec, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			common.Logf("read %s: %v; skipping rest of source", source, err)
			break
		}
		if !adif.HasStationCallsign(rec) {
			m.missing[source]++
		}
		outcome := m.index.Process(rec, adif.GroupKey(rec))
		if outcome.Kind == dedupe.Duplicate && m.metrics != nil {
			m.metrics.IncDuplicate()
		}
		count++
	}
	common.Logf("processed %s: %d records", source, count)
}

// Index exposes the run's duplicate index and output store.
func (m *Merger) Index() *dedupe.Index {
	return m.index
}

// MissingCallsign maps each source identifier to the number of its records
// that lacked a station callsign.
func (m *Merger) MissingCallsign() map[string]int {
	return m.missing
}

// Sources returns how many sources were merged.
func (m *Merger) Sources() int {
	return m.sources
}
