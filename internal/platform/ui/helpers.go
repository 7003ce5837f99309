// internal/platform/ui/helpers.go
package ui

import (
	"fmt"
	"strings"
	"time"
)

// formatDuration formatea una duración de manera legible
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	} else if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	} else {
		minutes := int(d.Minutes())
		seconds := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	}
}

// joinTargets acorta la lista de targets para el header
func joinTargets(targets []string, max int) string {
	if len(targets) <= max {
		return strings.Join(targets, ", ")
	}
	return fmt.Sprintf("%s (+%d more)", strings.Join(targets[:max], ", "), len(targets)-max)
}
