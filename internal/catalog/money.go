package catalog

import (
	"fmt"
	"strconv"
)

// FormatBRL formats a monetary value with exactly two decimal places.
// Monetary values keep full float precision internally; this is the single
// presentation-time rounding point.
func FormatBRL(v float64) string {
	return fmt.Sprintf("R$ %.2f", v)
}

// FormatQuantity renders a quantity without trailing zeros (2, not 2.00).
func FormatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
