package tracelog

import (
	"bytes"
	"errors"
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/ADT-Software/openssl/pkg/trace"
)

// Filter specifies criteria for selecting records.
// Empty or nil fields match every record.
type Filter struct {
	// Category filters by serving category.
	Category *trace.Category

	// BlockID filters by exact block ID.
	BlockID string

	// TimeStart selects records that began at or after this time.
	TimeStart *time.Time

	// TimeEnd selects records that began before this time.
	TimeEnd *time.Time

	// Contains selects records whose body contains this text.
	Contains string
}

// Match reports whether rec satisfies every criterion.
func (f *Filter) Match(rec Record) bool {
	if f.Category != nil && rec.Category != *f.Category {
		return false
	}
	if f.BlockID != "" && rec.BlockID != f.BlockID {
		return false
	}
	if f.TimeStart != nil && rec.Timestamp.Before(*f.TimeStart) {
		return false
	}
	if f.TimeEnd != nil && !rec.Timestamp.Before(*f.TimeEnd) {
		return false
	}
	if f.Contains != "" && !bytes.Contains(rec.Body, []byte(f.Contains)) {
		return false
	}
	return true
}

// Reader streams records from a capture file.
type Reader struct {
	file    *os.File
	decoder *cbor.Decoder
	filter  Filter
}

// NewReader creates a Reader over every record in path.
func NewReader(path string) (*Reader, error) {
	return NewFilteredReader(path, Filter{})
}

// NewFilteredReader creates a Reader that yields only records matching
// filter.
func NewFilteredReader(path string, filter Filter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{
		file:    f,
		decoder: NewDecoder(f),
		filter:  filter,
	}, nil
}

// Next returns the next matching record, or io.EOF at the end of the file.
func (r *Reader) Next() (Record, error) {
	for {
		var rec Record
		if err := r.decoder.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				return Record{}, io.EOF
			}
			return Record{}, err
		}

		if r.filter.Match(rec) {
			return rec, nil
		}
	}
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}
