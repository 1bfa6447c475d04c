// Package normalize holds the permissive ingestion rules shared by the report builders:
// free text is folded into display keys, counts that do not parse become zero and dates that
// do not parse are reported as undefined. None of these conditions is an error.
package normalize

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const Unknown = "Unknown"

// missingMarkers are the cell values CSV readers such as pandas treat as missing by default.
// Matching is case-sensitive.
var missingMarkers = map[string]struct{}{
	"#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {}, "-NaN": {}, "-nan": {},
	"1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {}, "NA": {}, "NULL": {}, "NaN": {},
	"None": {}, "n/a": {}, "nan": {}, "null": {},
}

// Missing reports whether s is blank or one of the missing value markers.
func Missing(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	_, ok := missingMarkers[s]
	return ok
}

// Text trims, collapses inner whitespace, case-folds and title-cases s. Every run of letters
// is capitalised on its own, so "MISSING_INFO" becomes "Missing_Info".
// Missing values, and "nan" in any case, become Unknown.
func Text(s string) string {
	if Missing(s) {
		return Unknown
	}
	folded := strings.ToLower(strings.Join(strings.Fields(s), " "))
	if folded == "nan" {
		return Unknown
	}
	return title(folded)
}

func title(s string) string {
	// Casers keep state and must not be shared between goroutines.
	caser := cases.Title(language.Und)

	var b strings.Builder
	b.Grow(len(s))
	start := -1
	for i, r := range s {
		switch {
		case unicode.IsLetter(r) && start < 0:
			start = i
		case !unicode.IsLetter(r) && start >= 0:
			b.WriteString(caser.String(s[start:i]))
			start = -1
			b.WriteRune(r)
		case !unicode.IsLetter(r):
			b.WriteRune(r)
		}
	}
	if start >= 0 {
		b.WriteString(caser.String(s[start:]))
	}
	return b.String()
}

// Key trims s without changing its case.
func Key(s string) string {
	return strings.TrimSpace(s)
}

// Count parses a numeric cell. Anything that is not a number counts as zero.
func Count(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"1/2/2006",
	"1-2-2006",
	"02-Jan-2006",
	"2 Jan 2006",
	"Jan 2, 2006",
}

// Date parses s in loc. Values carrying an explicit offset are converted into loc.
// The second result is false when s is blank or matches no known layout.
func Date(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t.In(loc), true
		}
	}
	return time.Time{}, false
}
