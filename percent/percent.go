// Package percent implements the percent-encoding used between devices and
// the log API.  Characters are encoded by their ISO-8859-1 (Latin-1) byte,
// not by their UTF-8 byte sequence, so "é" becomes "%E9" and not "%C3%A9".
package percent

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Substitute is the byte written for characters with no ISO-8859-1 form.
// It is the ASCII SUB control, the same replacement golang.org/x/text
// uses for unsupported runes.
const Substitute byte = 0x1a

// ErrUnrepresentable is returned by EncodeStrict for characters above
// U+00FF.
var ErrUnrepresentable = errors.New("character not representable in ISO-8859-1")

const upperhex = "0123456789ABCDEF"

// IsSafe reports whether r is passed through unescaped.  The safe set is
// [A-Z], [a-z], [0-9], underscore, period and hyphen.
func IsSafe(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '_' || r == '.' || r == '-'
}

// Encode returns s with every character outside the safe set replaced by
// %XX, where XX is the character's ISO-8859-1 byte in uppercase hex.
// Characters above U+00FF are written as the Substitute byte.
//
// Encode is not idempotent: encoding its own output escapes each '%' again
// as "%25".
func Encode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if IsSafe(r) {
			b.WriteRune(r)
			continue
		}
		c, ok := charmap.ISO8859_1.EncodeRune(r)
		if !ok {
			c = Substitute
		}
		writeEscape(&b, c)
	}
	return b.String()
}

// EncodeStrict is Encode, but fails on the first character above U+00FF
// instead of substituting it.
func EncodeStrict(s string) (string, error) {
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range s {
		if IsSafe(r) {
			b.WriteRune(r)
			continue
		}
		c, ok := charmap.ISO8859_1.EncodeRune(r)
		if !ok {
			return "", fmt.Errorf("%w: %U at byte %d", ErrUnrepresentable, r, i)
		}
		writeEscape(&b, c)
	}
	return b.String(), nil
}

func writeEscape(b *strings.Builder, c byte) {
	b.WriteByte('%')
	b.WriteByte(upperhex[c>>4])
	b.WriteByte(upperhex[c&0x0f])
}

// Decode reverses Encode.  Each %XX escape becomes the ISO-8859-1
// character for byte XX and '+' becomes a space.  Malformed escapes are
// kept as-is and any other character passes through unchanged, so text
// that was never encoded survives a Decode.
func Decode(s string) string {
	if !strings.ContainsAny(s, "%+") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '%':
			if i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
				v := unhex(s[i+1])<<4 | unhex(s[i+2])
				b.WriteRune(charmap.ISO8859_1.DecodeByte(v))
				i += 2
				continue
			}
			b.WriteByte(c)
		case '+':
			b.WriteByte(' ')
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
