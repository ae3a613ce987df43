package tracelog

import (
	"time"

	"github.com/ADT-Software/openssl/pkg/trace"
)

// Record is one finished trace block.
// CBOR encoding uses integer keys for compactness.
type Record struct {
	// Timestamp is when the block began (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// BlockID uniquely identifies the block (UUID).
	BlockID string `cbor:"2,keyasint"`

	// Category is the category whose channel served the block.
	Category trace.Category `cbor:"3,keyasint"`

	// CategoryName is the registered name of Category at capture time.
	CategoryName string `cbor:"4,keyasint"`

	Prefix string `cbor:"5,keyasint,omitempty"`
	Body   []byte `cbor:"6,keyasint,omitempty"`
	Suffix string `cbor:"7,keyasint,omitempty"`

	// Writes is the number of body writes the block received.
	Writes int `cbor:"8,keyasint,omitempty"`

	// Duration is the time from BEGIN to END.
	Duration time.Duration `cbor:"9,keyasint,omitempty"`

	// Truncated is set when Body was cut to the recorder's limit.
	Truncated bool `cbor:"10,keyasint,omitempty"`
}

// Size returns the number of body bytes captured.
func (r Record) Size() int { return len(r.Body) }

// End returns when the block ended.
func (r Record) End() time.Time { return r.Timestamp.Add(r.Duration) }
