// Package views holds helpers shared by the tab views.
package views

import (
	"fmt"
	"time"
)

// Clock renders a duration as m:ss, or h:mm:ss past the hour.
func Clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Ago renders t relative to now in minutes, hours or days, the coarsest unit
// that is still under its next boundary.
func Ago(t, now time.Time) string {
	d := now.Sub(t)
	future := d < 0
	if future {
		d = -d
	}
	var n int
	var unit string
	switch {
	case d < 30*time.Second:
		return "just now"
	case d < time.Hour:
		n, unit = int((d+30*time.Second)/time.Minute), "minute"
	case d < 24*time.Hour:
		n, unit = int((d+30*time.Minute)/time.Hour), "hour"
	default:
		n, unit = int((d+12*time.Hour)/(24*time.Hour)), "day"
	}
	if n == 1 && unit == "day" {
		if future {
			return "tomorrow"
		}
		return "yesterday"
	}
	if n != 1 {
		unit += "s"
	}
	if future {
		return fmt.Sprintf("in %d %s", n, unit)
	}
	return fmt.Sprintf("%d %s ago", n, unit)
}
