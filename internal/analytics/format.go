package analytics

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// DateLayout is the display and export form of a transaction date.
const DateLayout = "2006-01-02"

// FormatFloat renders v in its shortest exact decimal form. Undefined
// values render as the empty string.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatDate renders a transaction date; the zero time renders empty.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// ParseFloat reverses FormatFloat.
func ParseFloat(s string) float64 {
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.3f%%", v)
}

func formatPeriod(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}
