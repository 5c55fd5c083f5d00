package export

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/habitr/internal/store"
)

func WriteYAML(w io.Writer, records []store.Record) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newDocument(records)); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
