package adif

import "testing"

func TestFindTagBasic(t *testing.T) {
	buf := []byte("<CALL:4>W1AW<BAND:3>20M")
	tag, ok := FindTag(buf, 0)
	if !ok {
		t.Fatalf("expected a tag")
	}
	if tag.Name != "CALL" || tag.Length != 4 || tag.End != 8 {
		t.Fatalf("tag = %+v", tag)
	}
	next, ok := FindTag(buf, tag.End+tag.Length)
	if !ok {
		t.Fatalf("expected second tag")
	}
	if next.Name != "BAND" || next.Length != 3 {
		t.Fatalf("second tag = %+v", next)
	}
}

func TestFindTagLowercaseName(t *testing.T) {
	tag, ok := FindTag([]byte("<qso_date:8>20240101"), 0)
	if !ok {
		t.Fatalf("expected a tag")
	}
	if tag.Name != "QSO_DATE" {
		t.Fatalf("name = %q, want QSO_DATE", tag.Name)
	}
}

func TestFindTagWithType(t *testing.T) {
	tag, ok := FindTag([]byte("<FREQ:6:N>14.074"), 0)
	if !ok {
		t.Fatalf("expected a tag")
	}
	if tag.Name != "FREQ" || tag.Length != 6 {
		t.Fatalf("tag = %+v", tag)
	}
	if got := string([]byte("<FREQ:6:N>14.074")[tag.End : tag.End+tag.Length]); got != "14.074" {
		t.Fatalf("value = %q", got)
	}
}

func TestFindTagSkipsMalformed(t *testing.T) {
	// "<bad>" has no length field; "<:3>" has no name; the scan must land on
	// the first well-formed header.
	buf := []byte("junk <bad> <:3>xxx <MODE:3>SSB")
	tag, ok := FindTag(buf, 0)
	if !ok {
		t.Fatalf("expected a tag")
	}
	if tag.Name != "MODE" || tag.Length != 3 {
		t.Fatalf("tag = %+v", tag)
	}
}

func TestFindTagNotFound(t *testing.T) {
	cases := []string{"", "no tags here", "<incomplete:12", "<NAME:>value"}
	for _, in := range cases {
		if _, ok := FindTag([]byte(in), 0); ok {
			t.Fatalf("FindTag(%q) found a tag", in)
		}
	}
}

func TestFindTagRejectsHugeLength(t *testing.T) {
	// Lengths past the cap are malformed, including values that would wrap a
	// 64-bit accumulator negative or positive.
	cases := []string{
		"<X:9223372036854775808>abc",
		"<X:99999999999999999999>abc",
		"<X:9999999999>abc",
		"<X:1073741825>abc",
	}
	for _, in := range cases {
		if tag, ok := FindTag([]byte(in), 0); ok {
			t.Fatalf("FindTag(%q) accepted length %d", in, tag.Length)
		}
	}
	// The scan still lands on a well-formed header further on.
	tag, ok := FindTag([]byte("<X:9223372036854775808><CALL:4>W1AW"), 0)
	if !ok {
		t.Fatalf("expected a tag after the oversized header")
	}
	if tag.Name != "CALL" || tag.Length != 4 {
		t.Fatalf("tag = %+v", tag)
	}
}

func TestFindTagZeroLength(t *testing.T) {
	tag, ok := FindTag([]byte("<NOTES:0><CALL:4>W1AW"), 0)
	if !ok {
		t.Fatalf("expected a tag")
	}
	if tag.Name != "NOTES" || tag.Length != 0 {
		t.Fatalf("tag = %+v", tag)
	}
}

func TestFindTagDoesNotBoundsCheckValue(t *testing.T) {
	// The declared span may extend past the buffer; the framer only frames.
	buf := []byte("<CALL:40>W1")
	tag, ok := FindTag(buf, 0)
	if !ok {
		t.Fatalf("expected a tag")
	}
	if tag.End+tag.Length <= len(buf) {
		t.Fatalf("test input should overrun the buffer")
	}
}
