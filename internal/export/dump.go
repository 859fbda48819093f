package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sadopc/learntrack/internal/store"
)

// Dump writes every row of a store snapshot as indented JSON.
func Dump(snap *store.Snapshot, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode dump: %w", err)
	}
	return nil
}
