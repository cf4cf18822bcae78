package usecase

import (
	"fmt"
	"time"
)

// WarningMessage formats the "time remaining" notification for a threshold.
func WarningMessage(threshold time.Duration, appName string) (title, body string) {
	title = "Time Alert"
	if threshold <= time.Minute {
		title = "⚠️ Time Alert"
	}
	if threshold >= time.Minute {
		minutes := int(threshold / time.Minute)
		unit := "minutes"
		if minutes == 1 {
			unit = "minute"
		}
		return title, fmt.Sprintf("%d %s remaining for %s", minutes, unit, appName)
	}
	return title, fmt.Sprintf("%d seconds remaining for %s!", int(threshold/time.Second), appName)
}

// BlockMessage formats the notification shown when a block episode starts.
func BlockMessage(appName string) (title, body string) {
	return "Time's Up", fmt.Sprintf("You've used all your time for %s today. Run `focus extend` for more.", appName)
}
