package bmp

import (
	"errors"
	"fmt"
)

var (
	ErrOpenFailure       = errors.New("bmp: unable to open file")
	ErrInvalidSignature  = errors.New("bmp: not a bitmap (signature is not BM)")
	ErrTruncatedHeader   = errors.New("bmp: truncated header")
	ErrInvalidOffset     = errors.New("bmp: pixel offset outside file")
	ErrUnsupportedDepth  = errors.New("bmp: unsupported color depth, image must be 24 bpp")
	ErrInvalidDimensions = errors.New("bmp: dimensions do not fit the file")
	ErrSizeMismatch      = errors.New("bmp: image dimensions differ")
	ErrIOFault           = errors.New("bmp: i/o fault during traversal")
	ErrClosed            = errors.New("bmp: image is closed")
)

// IOFault records a read, write or seek that failed part way through a
// traversal. The traversal carries on with the next row.
type IOFault struct {
	Op  string // "seek", "read" or "write"
	Row int
	Err error
}

func (f *IOFault) Error() string {
	return fmt.Sprintf("bmp: row %d: %s: %v", f.Row, f.Op, f.Err)
}

func (f *IOFault) Unwrap() []error {
	return []error{ErrIOFault, f.Err}
}
