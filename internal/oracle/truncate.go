package oracle

import "unicode/utf8"

// TruncationMarker is appended to text cut at the input cap
const TruncationMarker = "... (content truncated)"

// DefaultMaxChars is the input cap applied before the text reaches the model
const DefaultMaxChars = 8000

// Truncate caps text at max characters (runes), appending TruncationMarker when cut
func Truncate(text string, max int) string {
	if max <= 0 {
		max = DefaultMaxChars
	}
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max]) + TruncationMarker
}
