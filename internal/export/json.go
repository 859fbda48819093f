package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/learntrack/internal/store"
)

// sessionRecord is the flattened session shape shared by the JSON and YAML
// exports.
type sessionRecord struct {
	ID       int64  `json:"id" yaml:"id"`
	Date     string `json:"date" yaml:"date"`
	LoggedAt string `json:"logged_at,omitempty" yaml:"logged_at,omitempty"`
	Course   string `json:"course" yaml:"course"`
	Focus    string `json:"focus,omitempty" yaml:"focus,omitempty"`
	Minutes  int    `json:"minutes" yaml:"minutes"`
	Duration string `json:"duration" yaml:"duration"`
	Color    string `json:"color,omitempty" yaml:"color,omitempty"`
}

type sessionExport struct {
	ExportedAt   string          `json:"exported_at" yaml:"exported_at"`
	Count        int             `json:"count" yaml:"count"`
	TotalMinutes int             `json:"total_minutes" yaml:"total_minutes"`
	Sessions     []sessionRecord `json:"sessions" yaml:"sessions"`
}

func newRecord(s store.Session) sessionRecord {
	date := ""
	if !s.Date.IsZero() {
		date = s.Date.Local().Format("2006-01-02")
	}
	return sessionRecord{
		ID:       s.ID,
		Date:     date,
		LoggedAt: s.LoggedAt,
		Course:   s.Course,
		Focus:    s.Focus,
		Minutes:  s.DurationMinutes,
		Duration: store.FormatMinutes(s.DurationMinutes),
		Color:    s.Color,
	}
}

func newExport(sessions []store.Session) sessionExport {
	export := sessionExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(sessions),
		Sessions:   []sessionRecord{},
	}
	for _, s := range sessions {
		export.TotalMinutes += s.DurationMinutes
		export.Sessions = append(export.Sessions, newRecord(s))
	}
	return export
}

func SessionsToJSON(sessions []store.Session, path string) error {
	data, err := json.MarshalIndent(newExport(sessions), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
