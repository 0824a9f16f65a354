package adif

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// Value decoding runs an ordered list of attempts: strict UTF-8 first, then
// GB18030 (the legacy multi-byte encoding the original logs ship in), and
// finally a lossy UTF-8 pass that substitutes U+FFFD. It never fails.
var gb18030 = simplifiedchinese.GB18030

// DecodeText converts raw value bytes into a string under the fallback chain.
func DecodeText(b []byte) string {
	s, _ := decodeText(b)
	return s
}

// decodeText additionally reports whether a fallback attempt was needed.
func decodeText(b []byte) (string, bool) {
	if utf8.Valid(b) {
		return string(b), false
	}
	if s, err := gb18030.NewDecoder().Bytes(b); err == nil {
		return string(s), true
	}
	return strings.ToValidUTF8(string(b), string(utf8.RuneError)), true
}

// Charset is an output text encoding for serialized records. The zero value
// is not usable; obtain one via ParseCharset.
type Charset struct {
	name string
	enc  encoding.Encoding
}

// UTF8 is the default output charset.
var UTF8 = Charset{name: "utf-8"}

// ParseCharset resolves a configuration value into a supported output
// charset. The empty string selects UTF-8.
func ParseCharset(name string) (Charset, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return UTF8, nil
	case "gb18030", "gbk", "gb2312":
		return Charset{name: "gb18030", enc: gb18030}, nil
	default:
		return Charset{}, fmt.Errorf("unsupported output encoding %q", name)
	}
}

// Name returns the canonical charset name.
func (c Charset) Name() string {
	if c.name == "" {
		return "utf-8"
	}
	return c.name
}

// Encode converts s to the charset's byte representation. Runes the charset
// cannot represent are replaced rather than reported; the returned slice is
// always exactly what gets written, so declared tag lengths computed from it
// stay byte-exact.
func (c Charset) Encode(s string) []byte {
	if c.enc == nil {
		return []byte(s)
	}
	out, err := encoding.ReplaceUnsupported(c.enc.NewEncoder()).Bytes([]byte(s))
	if err == nil {
		return out
	}
	// The replacing encoder does not error on unsupported runes; a residual
	// failure means invalid UTF-8 input. Clean it and retry once.
	clean := strings.ToValidUTF8(s, string(utf8.RuneError))
	out, err = encoding.ReplaceUnsupported(c.enc.NewEncoder()).Bytes([]byte(clean))
	if err != nil {
		return []byte(clean)
	}
	return out
}
