package merge

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"example.com/adifmerge/internal/adif"
	"example.com/adifmerge/internal/dedupe"
)

const logA = "<ADIF_VER:5>3.1.4<EOH>\r\n" +
	"<STATION_CALLSIGN:6>BG5ABC<CALL:4>W1AW<BAND:3>20M<MODE:3>SSB<QSO_DATE:8>20240101<TIME_ON:6>120000<EOR>\r\n" +
	"<STATION_CALLSIGN:6>BG5ABC<CALL:4>K1TT<BAND:3>40M<MODE:2>CW<QSO_DATE:8>20240101<TIME_ON:6>130000<EOR>\r\n"

const logB = "<ADIF_VER:5>3.1.4<EOH>\r\n" +
	"<STATION_CALLSIGN:6>BG5ABC<CALL:4>W1AW<BAND:3>20M<MODE:3>SSB<QSO_DATE:8>20240101<TIME_ON:6>121000<EOR>\r\n" +
	"<CALL:5>N0XYZ<BAND:3>20M<MODE:3>SSB<QSO_DATE:8>20240101<TIME_ON:6>150000<EOR>\r\n"

func TestMergeReaderDeduplicatesAcrossSources(t *testing.T) {
	m := NewMerger(Options{Tolerance: 900 * time.Second})
	m.MergeReader("logA.adi", strings.NewReader(logA))
	m.MergeReader("logB.adi", strings.NewReader(logB))

	idx := m.Index()
	if idx.Accepted() != 3 {
		t.Fatalf("accepted = %d, want 3", idx.Accepted())
	}
	if idx.Duplicates() != 1 {
		t.Fatalf("duplicates = %d, want 1", idx.Duplicates())
	}
	events := idx.Events()
	if events[0].Incoming.Source != "logB.adi" || events[0].Original.Source != "logA.adi" {
		t.Fatalf("event sources = %q vs %q", events[0].Incoming.Source, events[0].Original.Source)
	}

	groups := idx.Groups()
	if len(groups) != 2 {
		t.Fatalf("groups = %v", groups)
	}
	if groups[0] != "BG5ABC-NOGRID" || groups[1] != "UNKNOWN-NOGRID" {
		t.Fatalf("groups = %v", groups)
	}
	if m.Sources() != 2 {
		t.Fatalf("sources = %d, want 2", m.Sources())
	}
}

func TestMergeReaderTalliesMissingCallsign(t *testing.T) {
	m := NewMerger(Options{})
	m.MergeReader("logA.adi", strings.NewReader(logA))
	m.MergeReader("logB.adi", strings.NewReader(logB))

	missing := m.MissingCallsign()
	if len(missing) != 1 || missing["logB.adi"] != 1 {
		t.Fatalf("missing = %v", missing)
	}
}

type failingReader struct {
	data []byte
	pos  int
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.pos < len(r.data) {
		n := copy(p, r.data[r.pos:])
		r.pos += n
		return n, nil
	}
	return 0, errors.New("read failure")
}

func TestMergeReaderContainsSourceIOError(t *testing.T) {
	m := NewMerger(Options{Tolerance: 900 * time.Second})
	m.MergeReader("broken.adi", &failingReader{data: []byte(logA)})
	// The failing source contributed what it could and the run goes on.
	m.MergeReader("logB.adi", strings.NewReader(logB))

	idx := m.Index()
	if idx.Accepted() < 2 {
		t.Fatalf("accepted = %d, want records from both sources", idx.Accepted())
	}
	if m.Sources() != 2 {
		t.Fatalf("sources = %d, want 2", m.Sources())
	}
}

func TestMergeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log.adi")
	if err := os.WriteFile(path, []byte(logA), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	m := NewMerger(Options{})
	m.MergeFile(path)
	if m.Index().Accepted() != 2 {
		t.Fatalf("accepted = %d, want 2", m.Index().Accepted())
	}
	recs := m.Index().Records("BG5ABC-NOGRID")
	if len(recs) != 2 || recs[0].Source != path {
		t.Fatalf("records = %+v", recs)
	}
}

func TestMergeFileMissingPathIsNotFatal(t *testing.T) {
	m := NewMerger(Options{})
	m.MergeFile(filepath.Join(t.TempDir(), "absent.adi"))
	if m.Index().Accepted() != 0 {
		t.Fatalf("accepted = %d, want 0", m.Index().Accepted())
	}
}

func TestEventsJSONLRoundTrip(t *testing.T) {
	incoming := adif.NewRecord("logB.adi")
	incoming.Set(adif.TagCall, "W1AW")
	incoming.Set(adif.TagTimeOn, "121000")
	original := adif.NewRecord("logA.adi")
	original.Set(adif.TagCall, "W1AW")
	original.Set(adif.TagTimeOn, "120000")
	events := []dedupe.Event{{Group: "BG5ABC-NOGRID", Incoming: incoming, Original: original}}

	path := filepath.Join(t.TempDir(), "dupes.jsonl")
	if err := WriteEventsJSONL(path, events); err != nil {
		t.Fatalf("WriteEventsJSONL failed: %v", err)
	}
	got, err := ReadEventsJSONL(path)
	if err != nil {
		t.Fatalf("ReadEventsJSONL failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
	ev := got[0]
	if ev.Group != "BG5ABC-NOGRID" || ev.Incoming.Source != "logB.adi" || ev.Original.Get(adif.TagTimeOn) != "120000" {
		t.Fatalf("event = %+v", ev)
	}
}

func TestWriteEventsJSONLEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dupes.jsonl")
	if err := WriteEventsJSONL(path, nil); err != nil {
		t.Fatalf("WriteEventsJSONL failed: %v", err)
	}
	got, err := ReadEventsJSONL(path)
	if err != nil {
		t.Fatalf("ReadEventsJSONL failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d events, want 0", len(got))
	}
}
