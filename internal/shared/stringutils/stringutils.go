package stringutils

import "unicode/utf8"

// PreviewLen is the default length of log previews.
const PreviewLen = 80

// Truncate shortens s to at most n bytes, adding "..." if it was truncated.
// The cut never splits a UTF-8 sequence.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

// Preview truncates a payload to PreviewLen for logging.
func Preview(b []byte) string {
	if limit := PreviewLen + utf8.UTFMax; len(b) > limit {
		b = b[:limit]
	}
	return Truncate(string(b), PreviewLen)
}
