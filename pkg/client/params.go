package client

import "fmt"

// DefaultPageSize is the number of entries fetched per list call
const DefaultPageSize = 100

// RangeParams selects the range an iterator walks
type RangeParams struct {
	// StartKey is the first key considered; it is included when present
	StartKey string

	// EndKey bounds the scan, empty for no bound. Forward scans stop before
	// it, backward scans stop at it.
	EndKey string

	// Prefix restricts the scan to keys sharing it
	Prefix string

	// Count caps the pairs a key-value iterator yields. Zero yields nothing
	// and a negative value means no cap. Key iterators ignore it.
	Count int

	// Forward is the scan direction of a key-value iterator. Key iterators
	// always scan forward.
	Forward bool

	// PageSize overrides the table page size when positive
	PageSize int
}

// DefaultRangeParams returns params for an unbounded forward scan
func DefaultRangeParams() RangeParams {
	return RangeParams{
		Count:   -1,
		Forward: true,
	}
}

func (p RangeParams) validate() error {
	if p.PageSize < 0 {
		return fmt.Errorf("%w: page size must be positive, got %d", ErrInvalidOptions, p.PageSize)
	}
	return nil
}
