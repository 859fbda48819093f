package export

import (
	"fmt"
	"strings"

	"github.com/sadopc/learntrack/internal/store"
)

// Formats lists the values accepted by Sessions.
var Formats = []string{"csv", "json", "yaml"}

// Sessions writes the history to path in the named format.
func Sessions(format string, sessions []store.Session, path string) error {
	switch strings.ToLower(format) {
	case "csv":
		return SessionsToCSV(sessions, path)
	case "json":
		return SessionsToJSON(sessions, path)
	case "yaml", "yml":
		return SessionsToYAML(sessions, path)
	}
	return fmt.Errorf("unknown export format %q (want one of %s)", format, strings.Join(Formats, ", "))
}
