package utils

import (
	"regexp"
	"strings"
)

var nonDigitRegex = regexp.MustCompile(`\D`)

// NormalizePhoneID canonicalizes an Indonesian phone number to +62 E.164 form.
// Returns an empty string when the input cannot be a valid local number.
func NormalizePhoneID(phone string) string {
	s := nonDigitRegex.ReplaceAllString(phone, "")
	switch {
	case s == "":
		return ""
	case strings.HasPrefix(s, "62"):
		return "+" + s
	case strings.HasPrefix(s, "0"):
		return "+62" + s[1:]
	case len(s) >= 9:
		return "+62" + s
	default:
		return ""
	}
}

// NormalizePhoneList dedupes and normalizes up to max entries, preserving
// first-seen order.
func NormalizePhoneList(phones []string, max int) []string {
	seen := make(map[string]bool)
	normalized := make([]string, 0, len(phones))
	for i, p := range phones {
		if i >= max {
			break
		}
		n := NormalizePhoneID(p)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		normalized = append(normalized, n)
	}
	return normalized
}
