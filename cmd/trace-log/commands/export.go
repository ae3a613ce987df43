package commands

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/ADT-Software/openssl/pkg/tracelog"
)

// exportRecord is the JSON shape of a record.
type exportRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	BlockID      string    `json:"block_id"`
	Category     int       `json:"category"`
	CategoryName string    `json:"category_name"`
	Prefix       string    `json:"prefix,omitempty"`
	Body         string    `json:"body"`
	Suffix       string    `json:"suffix,omitempty"`
	Writes       int       `json:"writes"`
	DurationNS   int64     `json:"duration_ns"`
	Truncated    bool      `json:"truncated,omitempty"`
}

func toExport(rec tracelog.Record) exportRecord {
	return exportRecord{
		Timestamp:    rec.Timestamp.UTC(),
		BlockID:      rec.BlockID,
		Category:     int(rec.Category),
		CategoryName: rec.CategoryName,
		Prefix:       rec.Prefix,
		Body:         string(rec.Body),
		Suffix:       rec.Suffix,
		Writes:       rec.Writes,
		DurationNS:   rec.Duration.Nanoseconds(),
		Truncated:    rec.Truncated,
	}
}

// RunExport exports the capture file in format to output, or to stdout
// when output is empty.
func RunExport(path, format, output string, stdout io.Writer) error {
	if format != "jsonl" && format != "csv" {
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}

	reader, err := tracelog.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open capture file: %w", err)
	}
	defer reader.Close()

	w := stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if format == "csv" {
		return exportCSV(reader, w)
	}
	return exportJSONL(reader, w)
}

func exportJSONL(reader *tracelog.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read record: %w", err)
		}
		if err := encoder.Encode(toExport(rec)); err != nil {
			return fmt.Errorf("failed to encode record: %w", err)
		}
	}
	return nil
}

func exportCSV(reader *tracelog.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"timestamp", "block_id", "category", "prefix", "body", "suffix", "writes", "duration_ns", "truncated"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read record: %w", err)
		}

		row := []string{
			rec.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
			rec.BlockID,
			categoryLabel(rec),
			rec.Prefix,
			string(rec.Body),
			rec.Suffix,
			strconv.Itoa(rec.Writes),
			strconv.FormatInt(rec.Duration.Nanoseconds(), 10),
			strconv.FormatBool(rec.Truncated),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
