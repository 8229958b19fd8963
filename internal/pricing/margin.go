package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MarginScale is the number of fractional digits every margin is stored and
// serialized with.
const MarginScale = 4

// FieldError marks a single input field as invalid. Services surface it as a
// 400 with the field name so forms and batch responses can point at the
// offending entry.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Message) }

// MarginBounds selects the range rule for an entry point. Internal operator
// endpoints cap percentages at 100; the public partner API only requires
// non-negative values.
type MarginBounds int

const (
	BoundNonNegative MarginBounds = iota // value >= 0
	BoundPercent                         // 0 <= value <= 100
)

var hundred = decimal.NewFromInt(100)

// NormalizeMargin parses a raw margin entry and returns it rounded to
// MarginScale fractional digits. Both "." and "," are accepted as the decimal
// separator — operators paste values from pt-BR spreadsheets. Returns a
// *FieldError naming field when the input does not parse or is out of range.
func NormalizeMargin(field, raw string, bounds MarginBounds) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if cleaned == "" {
		return decimal.Zero, &FieldError{Field: field, Message: "margin value is required"}
	}
	v, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, &FieldError{Field: field, Message: fmt.Sprintf("invalid decimal value %q", raw)}
	}
	if v.IsNegative() {
		return decimal.Zero, &FieldError{Field: field, Message: "margin cannot be negative"}
	}
	if bounds == BoundPercent && v.GreaterThan(hundred) {
		return decimal.Zero, &FieldError{Field: field, Message: "margin cannot exceed 100"}
	}
	return v.Round(MarginScale), nil
}

// FormatMargin renders a margin as the canonical fixed-point wire string,
// e.g. 12.5 -> "12.5000".
func FormatMargin(v decimal.Decimal) string { return v.StringFixed(MarginScale) }
