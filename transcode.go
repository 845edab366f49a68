package unlhauae

import (
	"strings"
	"unicode/utf8"
)

// NameEncoder turns native Amiga name bytes into a host file name.
type NameEncoder func(native []byte) string

// hostIllegal holds the bytes that are reserved on common host file systems
// and are stored percent-encoded.
const hostIllegal = "%\\*?\"/|<>"

const hexDigits = "0123456789abcdef"

func isHostIllegal(b byte) bool {
	return strings.IndexByte(hostIllegal, b) >= 0
}

// glyph maps the few Amiga code points with no clean Latin-1 host rendering.
func glyph(b byte) (rune, bool) {
	switch b {
	case 0xad: // soft hyphen
		return '\u2014', true
	case 0x7f: // DEL
		return '\u2592', true
	case 0xaa, 0xba: // underlined superscript a and o
		return '\ufffd', true
	case 0xa4:
		return '\u20ac', true
	}
	return 0, false
}

// Transcode maps native bytes to a host-safe name. It never fails and its
// output never contains one of the reserved characters literally.
func Transcode(native []byte) string {
	var sb strings.Builder
	sb.Grow(len(native) * 3)
	for _, b := range native {
		if r, ok := glyph(b); ok {
			sb.WriteRune(r)
			continue
		}
		if isHostIllegal(b) {
			sb.WriteByte('%')
			sb.WriteByte(hexDigits[b>>4])
			sb.WriteByte(hexDigits[b&0x0f])
			continue
		}
		sb.WriteRune(rune(b))
	}
	return sb.String()
}

// TranscodePlain maps every byte to the code point of the same value and
// nothing else. Reserved characters pass through unchanged.
func TranscodePlain(native []byte) string {
	var sb strings.Builder
	sb.Grow(len(native) * 2)
	for _, b := range native {
		sb.WriteRune(rune(b))
	}
	return sb.String()
}

// DecodeName reverses Transcode. The glyph substitutions decode to one
// representative byte each, so 0xba comes back as 0xaa.
func DecodeName(host string) []byte {
	out := make([]byte, 0, len(host))
	for i := 0; i < len(host); {
		if host[i] == '%' && i+2 < len(host) {
			if v, ok := unhex(host[i+1], host[i+2]); ok && isHostIllegal(v) {
				out = append(out, v)
				i += 3
				continue
			}
		}
		r, size := utf8.DecodeRuneInString(host[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			out = append(out, host[i])
		case r == '\u2014':
			out = append(out, 0xad)
		case r == '\u2592':
			out = append(out, 0x7f)
		case r == '\ufffd':
			out = append(out, 0xaa)
		case r == '\u20ac':
			out = append(out, 0xa4)
		case r <= 0xff:
			out = append(out, byte(r))
		default:
			out = append(out, '?')
		}
		i += size
	}
	return out
}

func unhex(hi, lo byte) (byte, bool) {
	h, ok1 := hexValue(hi)
	l, ok2 := hexValue(lo)
	return h<<4 | l, ok1 && ok2
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
