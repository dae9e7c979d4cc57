package extract

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	priceDigits   = regexp.MustCompile(`[\d,]+(?:\.\d+)?`)
	ratingValue   = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// cleanText collapses whitespace runs and trims the result
func cleanText(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// normalizePrice strips currency symbols and labels, keeping the first
// numeric run. "₹12,999 onwards" becomes "12,999".
func normalizePrice(s string) string {
	s = cleanText(s)
	if m := priceDigits.FindString(s); m != "" {
		return m
	}
	return s
}

// normalizeRating keeps the leading numeric value, dropping scale text
// like "4.3 out of 5 stars"
func normalizeRating(s string) string {
	s = cleanText(s)
	if m := ratingValue.FindString(s); m != "" {
		return m
	}
	return s
}

// normalizeField routes a raw value through the cleaner for its field
func normalizeField(field, value string) string {
	switch field {
	case "price", "salary":
		return normalizePrice(value)
	case "rating":
		return normalizeRating(value)
	default:
		return cleanText(value)
	}
}
