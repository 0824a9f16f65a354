package adif

// maxTagLength bounds a declared value length. Headers declaring more are
// malformed; unchecked digit accumulation could wrap Length negative and
// defeat the caller's bounds check.
const maxTagLength = 1 << 30

// Tag describes one length-prefixed tag header located in a buffer. End is
// the offset just past the closing '>'; the value occupies
// buf[End : End+Length] in the file's encoding. The framer never touches the
// value bytes, so the caller must bounds-check End+Length against the data it
// actually holds.
type Tag struct {
	Name   string
	Length int
	End    int
}

// FindTag scans buf from start for the next header of the form <NAME:LENGTH>
// or <NAME:LENGTH:TYPE>. NAME is opaque ASCII and is returned uppercased;
// LENGTH is a non-negative decimal; TYPE is ignored. Byte sequences that look
// like the start of a header but do not parse are skipped and the scan resumes
// at the following '<'. Returns false when no further header exists.
func FindTag(buf []byte, start int) (Tag, bool) {
	if start < 0 {
		start = 0
	}
	for i := start; i < len(buf); i++ {
		if buf[i] != '<' {
			continue
		}
		if tag, ok := parseHeader(buf, i); ok {
			return tag, true
		}
	}
	return Tag{}, false
}

// parseHeader attempts to read one tag header beginning at the '<' at open.
func parseHeader(buf []byte, open int) (Tag, bool) {
	i := open + 1
	nameStart := i
	for i < len(buf) && buf[i] != ':' && buf[i] != '>' && buf[i] != '<' {
		i++
	}
	if i >= len(buf) || buf[i] != ':' || i == nameStart {
		return Tag{}, false
	}
	name := asciiUpper(buf[nameStart:i])
	i++

	length := 0
	digits := 0
	for i < len(buf) && buf[i] >= '0' && buf[i] <= '9' {
		length = length*10 + int(buf[i]-'0')
		if length > maxTagLength {
			return Tag{}, false
		}
		digits++
		i++
	}
	if digits == 0 || i >= len(buf) {
		return Tag{}, false
	}

	switch buf[i] {
	case '>':
		return Tag{Name: name, Length: length, End: i + 1}, true
	case ':':
		// Optional type field; opaque, runs to the closing '>'.
		i++
		for i < len(buf) && buf[i] != '>' && buf[i] != '<' {
			i++
		}
		if i >= len(buf) || buf[i] != '>' {
			return Tag{}, false
		}
		return Tag{Name: name, Length: length, End: i + 1}, true
	default:
		return Tag{}, false
	}
}

func asciiUpper(b []byte) string {
	out := make([]byte, len(b))
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}
