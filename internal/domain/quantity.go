package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseQuantity coerces a slot value from the platform into a positive
// integer. JSON numbers arrive as float64, but users can also produce
// string slots; anything else is a caller error.
func ParseQuantity(v any) (int, error) {
	switch q := v.(type) {
	case float64:
		if q != math.Trunc(q) {
			return 0, fmt.Errorf("%w: %v", ErrInvalidQuantity, v)
		}
		return checkPositive(int(q), v)
	case int:
		return checkPositive(q, v)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(q), 64)
		if err != nil || f != math.Trunc(f) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidQuantity, q)
		}
		return checkPositive(int(f), v)
	default:
		return 0, fmt.Errorf("%w: %v", ErrInvalidQuantity, v)
	}
}

func checkPositive(n int, raw any) (int, error) {
	if n < 1 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidQuantity, raw)
	}
	return n, nil
}
