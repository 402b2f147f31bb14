package dataset

import (
	"math"
	"strconv"
	"strings"
)

// NumberFormat pins the separators used when coercing text to numbers.
// Zero values auto-detect per value.
type NumberFormat struct {
	Decimal   rune
	Thousands rune
}

// ParseNumber coerces a cell to a finite float. Values that do not parse, including
// NaN and infinities, report false.
func ParseNumber(s string) (float64, bool) {
	return ParseNumberFormat(s, NumberFormat{})
}

// ParseNumberFormat is ParseNumber with explicit separators.
func ParseNumberFormat(s string, nf NumberFormat) (float64, bool) {
	raw := strings.ReplaceAll(s, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := nf.Decimal
	thou := nf.Thousands
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		if cpos >= 0 && dpos >= 0 {
			if cpos > dpos {
				dec = ','
				thou = '.'
			} else {
				dec = '.'
				thou = ','
			}
		} else if cpos >= 0 {
			dec = ','
		} else {
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
