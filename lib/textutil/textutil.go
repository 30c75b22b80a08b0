package textutil

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

var whitespaceRegex = regexp.MustCompile(`\s\s+`)

// Clean maps every kind of whitespace (including &nbsp;) to a plain space, drops
// non-printable characters, collapses runs of spaces and trims the result.
func Clean(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		if !unicode.IsPrint(r) {
			return -1
		}
		return r
	}, s)
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.Trim(s, " ")
}

// DecodeWindows1251 decodes a windows-1251 body. Every byte maps to a rune in
// this codepage so decoding cannot fail, a body in any other encoding comes
// out as mojibake instead.
func DecodeWindows1251(body []byte) string {
	decoded, err := charmap.Windows1251.NewDecoder().Bytes(body)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}

// EncodeWindows1251 encodes s as windows-1251, characters that do not exist
// in the codepage are replaced.
func EncodeWindows1251(s string) []byte {
	encoder := encoding.ReplaceUnsupported(charmap.Windows1251.NewEncoder())
	encoded, err := encoder.Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	return encoded
}

// EscapeFormValue1251 percent-encodes s for an application/x-www-form-urlencoded
// body read by a server expecting windows-1251.
func EscapeFormValue1251(s string) string {
	return url.QueryEscape(string(EncodeWindows1251(s)))
}
