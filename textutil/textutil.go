package textutil

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// FormatPlace converts a numeric place (1, 2, 3, ...) to a string ("1st", "2nd", "3rd", ...).
func FormatPlace(place int) string {
	suffix := "th"
	if place%100 < 11 || place%100 > 13 {
		switch place % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", place, suffix)
}

// FormatStanding is FormatPlace with a "T-" prefix for shared positions.
func FormatStanding(place int, tied bool) string {
	if tied {
		return "T-" + FormatPlace(place)
	}
	return FormatPlace(place)
}

// FormatMoney formats whole dollars with thousands separators.
func FormatMoney(amount int) string {
	if amount < 0 {
		return "-$" + humanize.Comma(int64(-amount))
	}
	return "$" + humanize.Comma(int64(amount))
}

// FormatPercent formats a ratio in [0, 1] as a percentage.
func FormatPercent(ratio float64) string {
	return humanize.FtoaWithDigits(ratio*100, 1) + "%"
}

// JoinNames lists names for a table cell; an empty list is a dash.
func JoinNames(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}
