package augment

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ExtractQuery detects the trigger token in content (case-insensitive) and
// extracts the search query. Extraction is two-stage:
//
//  1. Take the text after the first trigger occurrence, consume a separator
//     run of ':' and whitespace characters, and capture up to the end of
//     that line.
//  2. If stage 1 captures nothing, delete every trigger occurrence from the
//     whole content and use the trimmed remainder.
//
// Returns ("", false) when the trigger is absent.
func ExtractQuery(content, trigger string) (string, bool) {
	_, end := foldIndex(content, trigger)
	if end < 0 {
		return "", false
	}

	if query, ok := captureAfter(content[end:]); ok {
		return query, true
	}

	return strings.TrimSpace(removeFold(content, trigger)), true
}

// captureAfter implements stage 1: separator run, then rest-of-line.
func captureAfter(rest string) (string, bool) {
	sep := 0
	for _, r := range rest {
		if !isSeparator(r) {
			break
		}
		sep += utf8.RuneLen(r)
	}
	if sep == 0 {
		// Trigger not followed by a separator; stage 1 does not apply.
		return "", false
	}

	line := rest[sep:]
	if nl := strings.IndexByte(line, '\n'); nl >= 0 {
		line = line[:nl]
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}
	return line, true
}

func isSeparator(r rune) bool {
	return r == ':' || unicode.IsSpace(r)
}

// foldIndex returns the byte range [start, end) in s of the first
// case-insensitive occurrence of needle, or (-1, -1). Both offsets index s
// itself; case folding can change byte lengths (U+0130 shrinks, U+023A
// grows), so indexes into a lowercased copy would not be safe here.
func foldIndex(s, needle string) (int, int) {
	if needle == "" {
		return 0, 0
	}
	for i := range s {
		if n, ok := foldMatch(s[i:], needle); ok {
			return i, i + n
		}
	}
	return -1, -1
}

// foldMatch reports whether s begins with a case-insensitive match of
// needle, and the byte length of the matched prefix of s.
func foldMatch(s, needle string) (int, bool) {
	n := 0
	for _, nr := range needle {
		r, size := utf8.DecodeRuneInString(s[n:])
		if size == 0 || !foldEq(r, nr) {
			return 0, false
		}
		n += size
	}
	return n, true
}

// foldEq compares two runes under simple Unicode case folding, the same
// relation strings.EqualFold uses.
func foldEq(a, b rune) bool {
	if a == b {
		return true
	}
	for r := unicode.SimpleFold(a); r != a; r = unicode.SimpleFold(r) {
		if r == b {
			return true
		}
	}
	return false
}

// removeFold deletes every case-insensitive occurrence of needle from s.
func removeFold(s, needle string) string {
	var b strings.Builder
	for {
		start, end := foldIndex(s, needle)
		if start < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:start])
		s = s[end:]
	}
}
