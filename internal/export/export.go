// Package export writes records to CSV, JSON or YAML files.
package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sadopc/habitr/internal/store"
)

type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
	YAML Format = "yaml"
)

var Formats = []Format{CSV, JSON, YAML}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case CSV, JSON, YAML:
		return f, nil
	case "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// Ext is the file extension for f, including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// Write encodes records to w in format f.
func Write(f Format, w io.Writer, records []store.Record) error {
	switch f {
	case CSV:
		return WriteCSV(w, records)
	case JSON:
		return WriteJSON(w, records)
	case YAML:
		return WriteYAML(w, records)
	}
	return fmt.Errorf("unknown export format %q", f)
}

// ToFile writes records to path in format f.
func ToFile(f Format, records []store.Record, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s file: %w", f, err)
	}
	if err := Write(f, file, records); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func ToCSV(records []store.Record, path string) error  { return ToFile(CSV, records, path) }
func ToJSON(records []store.Record, path string) error { return ToFile(JSON, records, path) }
func ToYAML(records []store.Record, path string) error { return ToFile(YAML, records, path) }

// row is the flattened shape shared by the JSON and YAML encoders.
type row struct {
	ID       string `json:"id" yaml:"id"`
	TaskID   string `json:"task_id" yaml:"task_id"`
	Task     string `json:"task" yaml:"task"`
	Color    string `json:"color" yaml:"color"`
	Start    string `json:"start_time" yaml:"start_time"`
	End      string `json:"end_time" yaml:"end_time"`
	Minutes  int    `json:"duration_minutes" yaml:"duration_minutes"`
	Duration string `json:"duration" yaml:"duration"`
	Date     string `json:"date" yaml:"date"`
}

type document struct {
	ExportedAt   string `json:"exported_at" yaml:"exported_at"`
	Count        int    `json:"count" yaml:"count"`
	TotalMinutes int    `json:"total_minutes" yaml:"total_minutes"`
	Records      []row  `json:"records" yaml:"records"`
}

func toRow(r store.Record) row {
	return row{
		ID:       r.ID,
		TaskID:   r.TaskID,
		Task:     r.TaskName,
		Color:    string(r.TaskColor),
		Start:    r.StartTime.Local().Format(time.RFC3339),
		End:      r.EndTime.Local().Format(time.RFC3339),
		Minutes:  r.DurationMinutes,
		Duration: formatMinutes(r.DurationMinutes),
		Date:     r.Date,
	}
}

func newDocument(records []store.Record) document {
	doc := document{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(records),
		Records:    make([]row, 0, len(records)),
	}
	for _, r := range records {
		doc.Records = append(doc.Records, toRow(r))
		doc.TotalMinutes += r.DurationMinutes
	}
	return doc
}

func formatMinutes(m int) string {
	return fmt.Sprintf("%d:%02d", m/60, m%60)
}
