package adif

import (
	"errors"
	"io"

	"example.com/adifmerge/internal/common"
)

const (
	// DefaultChunkSize is the read granularity for streaming sources.
	DefaultChunkSize = 64 * 1024

	// DefaultHeaderScanLimit bounds how many bytes may accumulate while
	// hunting for the end-of-header marker. Past it the input is treated as
	// headerless rather than buffering the whole file.
	DefaultHeaderScanLimit = 1 << 20
)

var (
	eohMarker = []byte("<EOH>")
	eorMarker = []byte("<EOR>")
)

// StreamOptions configures a record stream.
type StreamOptions struct {
	ChunkSize int
	// HeaderScanLimit overrides DefaultHeaderScanLimit.
	HeaderScanLimit int
}

// Stream turns a byte source into a pull-based sequence of Records. Memory is
// bounded by one chunk buffer plus the bytes between consecutive record
// terminators; the source is never materialized whole.
type Stream struct {
	r         io.Reader
	source    string
	chunk     []byte
	buf       []byte
	scanLimit int
	skipped   bool // header consumed or declared absent
	drained   bool // reader hit EOF
	flushed   bool // trailing remainder handled
	err       error
	metrics   *common.Metrics
}

// NewStream prepares a stream over r. The source identifier is attached to
// every record as provenance and used in log lines.
func NewStream(r io.Reader, source string, opts StreamOptions) *Stream {
	size := opts.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}
	limit := opts.HeaderScanLimit
	if limit <= 0 {
		limit = DefaultHeaderScanLimit
	}
	return &Stream{r: r, source: source, chunk: make([]byte, size), scanLimit: limit}
}

// Source returns the stream's source identifier.
func (s *Stream) Source() string {
	return s.source
}

// SetMetrics attaches a metrics recorder to the stream.
func (s *Stream) SetMetrics(m *common.Metrics) {
	s.metrics = m
}

// Next returns the next decoded record. It returns io.EOF once the source is
// exhausted; any other error is an I/O failure on the underlying reader and
// ends this stream.
func (s *Stream) Next() (Record, error) {
	if s.err != nil {
		return Record{}, s.err
	}
	for {
		if !s.skipped {
			if idx := indexFold(s.buf, eohMarker); idx >= 0 {
				s.buf = s.buf[idx+len(eohMarker):]
				s.skipped = true
			} else if s.drained || len(s.buf) > s.scanLimit {
				// No header terminator in sight; parse everything as records.
				s.skipped = true
			} else {
				if err := s.fill(); err != nil {
					s.err = err
					return Record{}, err
				}
				continue
			}
		}

		if idx := indexFold(s.buf, eorMarker); idx >= 0 {
			raw := s.buf[:idx]
			rec, ok := s.decode(raw)
			s.buf = s.buf[idx+len(eorMarker):]
			if ok {
				return rec, nil
			}
			continue
		}

		if s.drained {
			if s.flushed {
				return Record{}, io.EOF
			}
			s.flushed = true
			raw := s.buf
			s.buf = nil
			if rec, ok := s.decode(raw); ok {
				return rec, nil
			}
			return Record{}, io.EOF
		}

		if err := s.fill(); err != nil {
			s.err = err
			return Record{}, err
		}
	}
}

// fill appends one chunk from the reader to the working buffer. EOF is
// recorded, not returned.
func (s *Stream) fill() error {
	n, err := s.r.Read(s.chunk)
	if n > 0 {
		s.buf = append(s.buf, s.chunk[:n]...)
		if s.metrics != nil {
			s.metrics.AddBytes(int64(n))
		}
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			s.drained = true
			return nil
		}
		return err
	}
	return nil
}

// decode converts one raw record span into a Record. A tag whose declared
// value span runs past the available data ends decoding for this record; tags
// completed before that point are kept. Spans with zero usable tags report
// ok=false and are dropped by the caller.
func (s *Stream) decode(raw []byte) (Record, bool) {
	rec := NewRecord(s.source)
	pos := 0
	for {
		tag, found := FindTag(raw, pos)
		if !found {
			break
		}
		end := tag.End + tag.Length
		if end > len(raw) {
			break
		}
		val, fellBack := decodeText(raw[tag.End:end])
		if fellBack && s.metrics != nil {
			s.metrics.IncFallback()
		}
		rec.Set(tag.Name, val)
		pos = end
	}
	if rec.Len() == 0 {
		return Record{}, false
	}
	if s.metrics != nil {
		s.metrics.AddRecord()
	}
	return rec, true
}

// indexFold locates marker in b ignoring ASCII case. The marker itself must
// be uppercase ASCII.
func indexFold(b, marker []byte) int {
	if len(marker) == 0 || len(b) < len(marker) {
		return -1
	}
outer:
	for i := 0; i+len(marker) <= len(b); i++ {
		for j := 0; j < len(marker); j++ {
			c := b[i+j]
			if c >= 'a' && c <= 'z' {
				c -= 'a' - 'A'
			}
			if c != marker[j] {
				continue outer
			}
		}
		return i
	}
	return -1
}
