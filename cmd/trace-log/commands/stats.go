package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/ADT-Software/openssl/pkg/trace"
	"github.com/ADT-Software/openssl/pkg/tracelog"
)

// Stats holds aggregate statistics about a capture file.
type Stats struct {
	TotalBlocks int
	TotalBytes  int
	Truncated   int
	ByCategory  map[trace.Category]*CategoryStats
	TimeRange   struct {
		Start time.Time
		End   time.Time
	}
}

// CategoryStats holds statistics for a single category.
type CategoryStats struct {
	Name          string
	Blocks        int
	Bytes         int
	Writes        int
	TotalDuration time.Duration
	MaxDuration   time.Duration
}

// Collect reads every record from reader into a Stats.
func Collect(reader *tracelog.Reader) (*Stats, error) {
	stats := &Stats{ByCategory: make(map[trace.Category]*CategoryStats)}

	for {
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		stats.TotalBlocks++
		stats.TotalBytes += rec.Size()
		if rec.Truncated {
			stats.Truncated++
		}

		if stats.TimeRange.Start.IsZero() || rec.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = rec.Timestamp
		}
		if end := rec.End(); end.After(stats.TimeRange.End) {
			stats.TimeRange.End = end
		}

		cs, ok := stats.ByCategory[rec.Category]
		if !ok {
			cs = &CategoryStats{Name: categoryLabel(rec)}
			stats.ByCategory[rec.Category] = cs
		}
		cs.Blocks++
		cs.Bytes += rec.Size()
		cs.Writes += rec.Writes
		cs.TotalDuration += rec.Duration
		if rec.Duration > cs.MaxDuration {
			cs.MaxDuration = rec.Duration
		}
	}
}

// RunStats analyzes the capture file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := tracelog.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open capture file: %w", err)
	}
	defer reader.Close()

	stats, err := Collect(reader)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Trace Capture Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalBlocks > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Blocks: %d\n", stats.TotalBlocks)
	fmt.Fprintf(w, "Total Bytes:  %d\n", stats.TotalBytes)
	if stats.Truncated > 0 {
		fmt.Fprintf(w, "Truncated:    %d\n", stats.Truncated)
	}
	fmt.Fprintln(w)

	cats := make([]trace.Category, 0, len(stats.ByCategory))
	for c := range stats.ByCategory {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })

	fmt.Fprintln(w, "Blocks by Category:")
	for _, c := range cats {
		cs := stats.ByCategory[c]
		avg := cs.TotalDuration / time.Duration(cs.Blocks)
		fmt.Fprintf(w, "  %-16s %d blocks, %d bytes, %d writes, avg %s, max %s\n",
			cs.Name+":", cs.Blocks, cs.Bytes, cs.Writes, formatDuration(avg), formatDuration(cs.MaxDuration))
	}
}
