package dataset

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ColumnSeparator replaces every run of characters outside [a-z0-9] in column names.
const ColumnSeparator = "_"

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeColumnName maps a raw header to its canonical form: trimmed, lower-case,
// ASCII-only and with non-alphanumeric runs collapsed to a single separator.
func NormalizeColumnName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = toASCII(s)
	s = nonAlnum.ReplaceAllString(s, ColumnSeparator)
	return strings.Trim(s, ColumnSeparator)
}

// NormalizeColumns normalizes a header row. Names that normalize to nothing become
// unnamed_<i>; collisions get numeric suffixes so the result stays unique.
func NormalizeColumns(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := NormalizeColumnName(h)
		if name == "" {
			name = fmt.Sprintf("unnamed_%d", i)
		}
		if n, dup := seen[name]; dup {
			base := name
			for {
				n++
				name = fmt.Sprintf("%s%s%d", base, ColumnSeparator, n)
				if _, taken := seen[name]; !taken {
					break
				}
			}
			seen[base] = n
		}
		seen[name] = 1
		out[i] = name
	}
	return out
}

// MatchKey folds a label for joins across sources: trimmed, upper-case, no diacritics.
func MatchKey(s string) string {
	return strings.ToUpper(toASCII(strings.TrimSpace(s)))
}

// toASCII decomposes s and drops everything outside ASCII, which removes combining marks.
func toASCII(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
