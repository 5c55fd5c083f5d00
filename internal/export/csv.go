package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/sadopc/habitr/internal/store"
)

var csvHeader = []string{"ID", "Task", "Color", "Start", "End", "Minutes", "Duration", "Date"}

func WriteCSV(out io.Writer, records []store.Record) error {
	w := csv.NewWriter(out)

	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := toRow(r)
		if err := w.Write([]string{
			row.ID,
			row.Task,
			row.Color,
			row.Start,
			row.End,
			fmt.Sprintf("%d", row.Minutes),
			row.Duration,
			row.Date,
		}); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
