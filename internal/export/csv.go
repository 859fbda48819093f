package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sadopc/learntrack/internal/store"
)

var csvHeader = []string{"ID", "Date", "Logged At", "Course", "Focus", "Minutes", "Duration", "Color"}

// SessionsToCSV writes the study history to path, one row per session.
func SessionsToCSV(sessions []store.Session, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, s := range sessions {
		r := newRecord(s)
		row := []string{
			strconv.FormatInt(r.ID, 10),
			r.Date,
			r.LoggedAt,
			r.Course,
			r.Focus,
			strconv.Itoa(r.Minutes),
			r.Duration,
			r.Color,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
