package workflow

import (
	"strings"
	"unicode"
)

// Label renders an identifier for display: '_' and '-' become spaces and
// the first letter of every word is upper-cased. The rest of each word is
// left alone, so "send_SMS" becomes "Send SMS".
func Label(token string) string {
	if token == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(token))
	inWord := false
	for _, r := range token {
		if r == '_' || r == '-' {
			r = ' '
		}
		isWordRune := unicode.IsLetter(r) || unicode.IsDigit(r)
		if isWordRune && !inWord {
			r = unicode.ToUpper(r)
		}
		inWord = isWordRune
		b.WriteRune(r)
	}
	return b.String()
}

// ServiceKey derives the lookup key for per-service display tables such as
// icons: trimmed, lower-cased, with '_' and '-' as spaces.
func ServiceKey(service string) string {
	key := strings.ToLower(strings.TrimSpace(service))
	return strings.Map(func(r rune) rune {
		if r == '_' || r == '-' {
			return ' '
		}
		return r
	}, key)
}
