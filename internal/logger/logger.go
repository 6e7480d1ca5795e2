// Package logger holds the process-wide structured logger.
package logger

import (
	"os"

	"github.com/charmbracelet/log"
)

// Log is shared by every package. Commands adjust the level once config
// has been loaded.
var Log = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: false,
})

// SetLevel applies a textual level such as "debug" or "warn". Unknown
// values keep the current level.
func SetLevel(s string) {
	lvl, err := log.ParseLevel(s)
	if err != nil {
		Log.Warn("unknown log level; keeping current", "level", s)
		return
	}
	Log.SetLevel(lvl)
}
