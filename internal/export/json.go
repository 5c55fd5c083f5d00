package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sadopc/habitr/internal/store"
)

func WriteJSON(w io.Writer, records []store.Record) error {
	data, err := json.MarshalIndent(newDocument(records), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
