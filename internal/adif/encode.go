package adif

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

const (
	adifVersion = "3.1.4"
	programID   = "adifmerge"
)

// WriteRecords serializes records to w in tag-length-value form, preceded by
// a generated header. Every declared tag length is the byte length of the
// value in cs — the exact bytes written — never the rune count, so the output
// reframes correctly regardless of multi-byte content. The provenance source
// attribute lives outside the tag map and is never emitted.
func WriteRecords(w io.Writer, recs []Record, cs Charset) error {
	if err := writeHeader(w, cs); err != nil {
		return err
	}
	for _, rec := range recs {
		if err := writeRecord(w, rec, cs); err != nil {
			return err
		}
	}
	return nil
}

// WriteGroupFile writes one group's accepted records to path, creating parent
// directories as needed.
func WriteGroupFile(path string, recs []Record, cs Charset) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := WriteRecords(f, recs, cs); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeHeader(w io.Writer, cs Charset) error {
	if _, err := io.WriteString(w, "Merged ADIF export\r\n"); err != nil {
		return err
	}
	if err := writeTag(w, "ADIF_VER", adifVersion, cs); err != nil {
		return err
	}
	if err := writeTag(w, "PROGRAMID", programID, cs); err != nil {
		return err
	}
	_, err := io.WriteString(w, "<EOH>\r\n")
	return err
}

func writeRecord(w io.Writer, rec Record, cs Charset) error {
	names := make([]string, 0, len(rec.Fields))
	for name := range rec.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writeTag(w, name, rec.Fields[name], cs); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "<EOR>\r\n")
	return err
}

func writeTag(w io.Writer, name, value string, cs Charset) error {
	encoded := cs.Encode(value)
	if _, err := fmt.Fprintf(w, "<%s:%d>", name, len(encoded)); err != nil {
		return err
	}
	if _, err := w.Write(encoded); err != nil {
		return err
	}
	_, err := io.WriteString(w, " ")
	return err
}
