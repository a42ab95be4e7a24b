package utils

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	textunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// controlCharacterRatioLimit is the share of control characters above which content is treated as binary.
const controlCharacterRatioLimit = 0.3

// ErrUndecodableText indicates that content cannot be represented as text.
var ErrUndecodableText = errors.New("content is not decodable as text")

// DecodeText converts raw file bytes into a string.
// A leading byte order mark selects UTF-8 or UTF-16 decoding. Input that is not
// valid UTF-8 is decoded as Windows-1252, so smart quotes and dashes from
// Windows editors survive and every other byte still maps to a code point.
// Content that still looks binary afterwards yields ErrUndecodableText.
func DecodeText(data []byte) (string, error) {
	decoded, _, bomError := transform.Bytes(textunicode.BOMOverride(encoding.Nop.NewDecoder()), data)
	if bomError != nil {
		decoded = data
	}
	if !utf8.Valid(decoded) {
		fallback, fallbackError := charmap.Windows1252.NewDecoder().Bytes(decoded)
		if fallbackError != nil {
			return "", fmt.Errorf("%w: %v", ErrUndecodableText, fallbackError)
		}
		decoded = fallback
	}
	if IsBinary(decoded) {
		return "", ErrUndecodableText
	}
	return string(decoded), nil
}

// IsBinary reports whether the provided UTF-8 byte slice appears to contain binary data.
// A NUL byte, invalid UTF-8, or a high share of control characters marks data as binary.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if !utf8.Valid(data) {
		return true
	}
	var totalRunes int
	var controlRunes int
	for _, runeValue := range string(data) {
		totalRunes++
		if runeValue == 0 {
			return true
		}
		if isControlRune(runeValue) {
			controlRunes++
		}
	}
	return float64(controlRunes)/float64(totalRunes) > controlCharacterRatioLimit
}

func isControlRune(runeValue rune) bool {
	switch runeValue {
	case '\n', '\r', '\t', '\f', '\v':
		return false
	}
	return unicode.IsControl(runeValue)
}
