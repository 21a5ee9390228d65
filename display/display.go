// Package display turns raw SWAPI attribute strings into text fit for output.
//
// SWAPI encodes missing values as "unknown" or "n/a" instead of omitting them,
// so every helper here accepts those sentinels and either substitutes a
// fallback or passes them through unchanged.
package display

import (
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultFallback is shown in place of unknown values
const DefaultFallback = "N/A"

const (
	sentinelUnknown = "unknown"
	sentinelNA      = "n/a"

	isoDate  = "2006-01-02"
	longDate = "January 2, 2006"
)

var printer = message.NewPrinter(language.English)

// IsEmpty reports whether s is empty or whitespace only
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// IsUnknown reports whether s carries no information
func IsUnknown(s string) bool {
	return s == sentinelUnknown || s == sentinelNA || IsEmpty(s)
}

// DisplayValue returns v, or fallback when v is unknown. An empty fallback
// selects DefaultFallback.
func DisplayValue(v, fallback string) string {
	if fallback == "" {
		fallback = DefaultFallback
	}
	if IsUnknown(v) {
		return fallback
	}
	return v
}

// Truncate shortens text to maxLen runes and appends "..." when it was cut
func Truncate(text string, maxLen int) string {
	maxLen = max(maxLen, 0)
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxLen]) + "..."
}

// FormatNumber adds thousands separators to an integer string. Sentinels and
// values that are not integers are returned unchanged.
func FormatNumber(v string) string {
	if v == sentinelUnknown || v == sentinelNA {
		return v
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return v
	}
	return printer.Sprintf("%d", n)
}

// FormatDate renders an ISO date such as a film's release date in long form.
// Values that do not parse are returned unchanged.
func FormatDate(v string) string {
	t, err := time.Parse(isoDate, strings.TrimSpace(v))
	if err != nil {
		return v
	}
	return t.Format(longDate)
}

// CapitalizeWords upper-cases the first letter of every space separated word
// and lower-cases the rest
func CapitalizeWords(text string) string {
	words := strings.Split(text, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

// Plural returns singular when n is 1 and singular+"s" otherwise
func Plural(n int, singular string) string {
	if n == 1 {
		return singular
	}
	return singular + "s"
}

// PaginationWindow returns the page numbers to offer around current. Up to
// three pages are all listed; beyond that the window is current-1..current+1
// clamped to [1, total].
func PaginationWindow(current, total int) []int {
	if total <= 0 {
		return []int{}
	}

	start, end := 1, total
	if total > 3 {
		start = max(1, current-1)
		end = min(total, current+1)
	}
	if start > end {
		return []int{}
	}

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}
