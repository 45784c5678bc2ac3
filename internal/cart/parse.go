package cart

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxQuantity bounds a single line item so totals stay representable.
const MaxQuantity = 1_000_000

// ParseQuantity reads the leading integer of raw ("3", " 3 ", "3 pcs" and
// "3.5" all give 3) and accepts values from 1 to MaxQuantity.
func ParseQuantity(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	j := i
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
	}
	if j == i {
		return 0, wrapInvalid(ErrInvalidQuantity, "%q is not a number", raw)
	}
	n, err := strconv.Atoi(s[:j])
	if err != nil {
		return 0, wrapInvalid(ErrInvalidQuantity, "%q: %v", raw, err)
	}
	if n <= 0 {
		return 0, wrapInvalid(ErrInvalidQuantity, "%d is not positive", n)
	}
	if n > MaxQuantity {
		return 0, wrapInvalid(ErrInvalidQuantity, "%d is above %d", n, MaxQuantity)
	}
	return n, nil
}

// ParseAmount reads an advance or discount input. Blank or unparsable input
// counts as zero.
func ParseAmount(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func FormatAmount(symbol string, v float64) string {
	return fmt.Sprintf("%s%.2f", symbol, v)
}
