package invoice

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var mileagePrinter = message.NewPrinter(language.AmericanEnglish)

// FormatMileage renders an odometer reading for display with thousands
// grouping, or "N/A" when the raw value is missing or junk. Values of 1 or
// below never format; see bestMileage for why "1" is distrusted.
func FormatMileage(raw string) string {
	v, ok := parseMileage(raw)
	if !ok || v <= 1 {
		return "N/A"
	}
	return mileagePrinter.Sprintf("%.0f", v)
}
