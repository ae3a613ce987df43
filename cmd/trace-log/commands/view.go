// Package commands implements the trace-log CLI commands.
package commands

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ADT-Software/openssl/pkg/trace"
	"github.com/ADT-Software/openssl/pkg/tracelog"
)

// ViewFilter specifies criteria for the view command.
type ViewFilter struct {
	Category *trace.Category
	Contains string
}

func (f ViewFilter) filter() tracelog.Filter {
	return tracelog.Filter{Category: f.Category, Contains: f.Contains}
}

// formatRecord writes a human-readable representation of rec to w.
func formatRecord(w io.Writer, rec tracelog.Record) {
	// Header line: timestamp [block:id] CATEGORY duration
	ts := rec.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	fmt.Fprintf(w, "%s [block:%s] %s %s\n", ts, shortenBlockID(rec.BlockID), categoryLabel(rec), formatDuration(rec.Duration))

	if rec.Prefix != "" {
		fmt.Fprintf(w, "  Prefix: %s\n", rec.Prefix)
	}
	if len(rec.Body) > 0 {
		fmt.Fprintf(w, "  Body (%d bytes, %d writes", len(rec.Body), rec.Writes)
		if rec.Truncated {
			fmt.Fprint(w, ", truncated")
		}
		fmt.Fprintln(w, "):")
		for _, line := range strings.Split(string(bytes.TrimRight(rec.Body, "\n")), "\n") {
			fmt.Fprintf(w, "    %s\n", line)
		}
	}
	if rec.Suffix != "" {
		fmt.Fprintf(w, "  Suffix: %s\n", rec.Suffix)
	}

	fmt.Fprintln(w) // Blank line between records
}

// shortenBlockID returns the first 8 characters of the block ID.
func shortenBlockID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func categoryLabel(rec tracelog.Record) string {
	if rec.CategoryName != "" {
		return rec.CategoryName
	}
	return rec.Category.String()
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%.1fus", float64(d.Nanoseconds())/1000)
	case d < time.Second:
		return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000)
	default:
		return d.Round(time.Millisecond).String()
	}
}

// ParseCategoryFlag parses a category name, case-insensitively.
func ParseCategoryFlag(s string) (trace.Category, error) {
	c := trace.CategoryByName(s)
	if c == trace.CategoryInvalid {
		return c, fmt.Errorf("unknown category: %s", s)
	}
	return c, nil
}

// RunView reads the capture file and writes matching records to output.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := tracelog.NewFilteredReader(path, filter.filter())
	if err != nil {
		return fmt.Errorf("failed to open capture file: %w", err)
	}
	defer reader.Close()

	for {
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read record: %w", err)
		}
		formatRecord(output, rec)
	}

	return nil
}
