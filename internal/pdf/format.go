package pdf

import (
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders money, numbers and dates with locale conventions.
type Formatter struct {
	printer *message.Printer
	symbol  string
}

// NewFormatter returns a Formatter for the given language tag, e.g. "it".
// Unknown tags fall back to Italian.
func NewFormatter(lang string) Formatter {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.Italian
	}
	return Formatter{printer: message.NewPrinter(tag), symbol: "€"}
}

// Currency formats v with two decimals, e.g. "€1.234,50" or "-€12,50".
func (f Formatter) Currency(v float64) string {
	v = math.Round(v*100) / 100
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + f.symbol + f.clean(f.printer.Sprintf("%.2f", v))
}

// Number formats v with the minimum number of decimals (max 3), e.g. "2",
// "1,5" or "22".
func (f Formatter) Number(v float64) string {
	v = math.Round(v*1000) / 1000
	if v == math.Trunc(v) {
		return f.clean(f.printer.Sprintf("%d", int64(v)))
	}
	digits := len(strings.TrimRight(strconv.FormatFloat(math.Abs(v-math.Trunc(v)), 'f', 3, 64), "0")) - 2
	if digits < 1 {
		digits = 1
	}
	return f.clean(f.printer.Sprintf("%."+strconv.Itoa(digits)+"f", v))
}

// Date formats t as dd/mm/yyyy. A zero time renders as "-".
func (f Formatter) Date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02/01/2006")
}

// clean swaps the narrow no-break space some locales group with for a
// plain no-break space, which the core fonts can encode.
func (f Formatter) clean(s string) string {
	return strings.ReplaceAll(s, "\u202f", "\u00a0")
}
