package views

import "github.com/mmynk/splitmint/internal/models"

// Balance colors, shared by the balance list and the chart.
const (
	ColorPositive = "#22c55e"
	ColorNegative = "#ef4444"
)

// CSS classes for signed amounts.
const (
	ClassPositive = "positive"
	ClassNegative = "negative"
)

// DateLayout is the short date shown in the expenses table.
const DateLayout = "1/2/2006"

// IsPositive reports whether a balance renders in the positive style.
// Zero counts as positive.
func IsPositive(a models.Amount) bool {
	return a >= 0
}

// BalanceClass returns the CSS class for a balance.
func BalanceClass(a models.Amount) string {
	if IsPositive(a) {
		return ClassPositive
	}
	return ClassNegative
}

// BalanceColor returns the fill color for a balance.
func BalanceColor(a models.Amount) string {
	if IsPositive(a) {
		return ColorPositive
	}
	return ColorNegative
}

// FormatDate renders ts as a local short date, or "" when unset.
func FormatDate(ts models.Timestamp) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Local().Format(DateLayout)
}
