package feeds

import "fmt"

// FormatDays renders a day count as a short human readable label.
// A nil count means the item has no known shop history date.
//
// The thresholds use flat 365 day years and 30 day months with no
// rounding beyond integer division. Negative counts are left as-is;
// upstream never produces them.
func FormatDays(days *int) string {
	if days == nil {
		return "Unknown"
	}

	d := *days
	if d >= 365 {
		return fmt.Sprintf("%dy %dd ago", d/365, d%365)
	}
	if d >= 30 {
		return fmt.Sprintf("%dm %dd ago", d/30, d%30)
	}
	return fmt.Sprintf("%d days ago", d)
}
