package storage

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/san-kum/focusdrift/internal/session"
)

type ExportData struct {
	Run     RunMetadata      `json:"run"`
	Ticks   int              `json:"ticks"`
	History []session.Sample `json:"history"`
}

// Export writes a run and its full history as indented JSON.
func (s *Store) Export(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	history, err := s.LoadHistory(runID)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{
		Run:     *meta,
		Ticks:   len(history),
		History: history,
	})
}
