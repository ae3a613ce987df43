package commands

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ADT-Software/openssl/pkg/tracelog"
)

// FilterOptions specifies criteria for the filter command.
type FilterOptions struct {
	Output    string
	BlockID   string
	Category  string
	Contains  string
	TimeStart string
	TimeEnd   string
}

func (o FilterOptions) filter() (tracelog.Filter, error) {
	f := tracelog.Filter{
		BlockID:  o.BlockID,
		Contains: o.Contains,
	}

	if o.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, o.TimeStart)
		if err != nil {
			return f, fmt.Errorf("invalid time-start format: %w", err)
		}
		f.TimeStart = &t
	}

	if o.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, o.TimeEnd)
		if err != nil {
			return f, fmt.Errorf("invalid time-end format: %w", err)
		}
		f.TimeEnd = &t
	}

	if o.Category != "" {
		c, err := ParseCategoryFlag(o.Category)
		if err != nil {
			return f, err
		}
		f.Category = &c
	}
	return f, nil
}

// RunFilter copies matching records to a new capture file and reports the
// count on w.
func RunFilter(path string, opts FilterOptions, w io.Writer) error {
	if opts.Output == "" {
		return errors.New("output file required")
	}
	filter, err := opts.filter()
	if err != nil {
		return err
	}

	reader, err := tracelog.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open capture file: %w", err)
	}
	defer reader.Close()

	logger, err := tracelog.NewFileLogger(opts.Output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer logger.Close()

	count := 0
	for {
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read record: %w", err)
		}

		logger.Log(rec)
		count++
	}

	fmt.Fprintf(w, "Filtered %d records to %s\n", count, opts.Output)
	return nil
}
