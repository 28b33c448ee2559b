package screens

import (
	"strconv"
	"strings"
)

// FormatBRL renders v as Brazilian currency, e.g. "R$ 1.234,50".
func FormatBRL(v float64) string {
	negative := v < 0
	if negative {
		v = -v
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, frac := s[:len(s)-3], s[len(s)-2:]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := "R$ " + b.String() + "," + frac
	if negative {
		out = "-" + out
	}
	return out
}
