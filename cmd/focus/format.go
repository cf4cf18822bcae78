package main

import (
	"fmt"
	"time"

	"github.com/anaygoyal09/Focus/internal/domain"
)

// formatMinutes renders whole minutes, e.g. "45m".
func formatMinutes(d time.Duration) string {
	return fmt.Sprintf("%dm", int(d/time.Minute))
}

// usageLine renders "Xm used of Ym" plus what is left.
func usageLine(a domain.AppStatus) string {
	used := time.Duration(a.UsedSeconds) * time.Second
	limit := time.Duration(a.LimitSeconds) * time.Second
	line := fmt.Sprintf("%s used of %s", formatMinutes(used), formatMinutes(limit))
	if a.RemainingSeconds <= 0 {
		return line + ", none left"
	}
	return fmt.Sprintf("%s, %s left", line, formatCountdown(int(a.RemainingSeconds)))
}

// formatCountdown renders seconds as m:ss, or h:mm:ss from an hour up.
func formatCountdown(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, (seconds%3600)/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func appLabel(name, bundleID string) string {
	if name == "" || name == bundleID {
		return bundleID
	}
	return fmt.Sprintf("%s (%s)", name, bundleID)
}
