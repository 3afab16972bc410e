// Package wirebin implements the low-level primitives for the protocol's
// compact tagged binary schema: a hand-rolled, length-prefixed encoding
// generalized from a single TCP-framed message to arbitrary nested field
// values.
package wirebin

import (
	"bytes"
	"encoding/binary"
)

// Writer accumulates a binary message body. Errors are sticky: once set,
// further Add calls are no-ops so callers can check Error() once at the end
// instead of after every call.
type Writer struct {
	buf bytes.Buffer
	err error
}

// NewWriter constructs an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) Error() error { return w.err }

// Bytes returns the accumulated message body.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

func (w *Writer) AddByte(b byte) {
	if w.err != nil {
		return
	}
	w.err = w.buf.WriteByte(b)
}

func (w *Writer) AddBool(b bool) {
	if b {
		w.AddByte(1)
		return
	}
	w.AddByte(0)
}

func (w *Writer) AddInt16(i int16) {
	if w.err != nil {
		return
	}
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], uint16(i))
	_, w.err = w.buf.Write(tmp[:])
}

func (w *Writer) AddInt32(i int32) {
	if w.err != nil {
		return
	}
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(i))
	_, w.err = w.buf.Write(tmp[:])
}

func (w *Writer) AddInt64(i int64) {
	if w.err != nil {
		return
	}
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], uint64(i))
	_, w.err = w.buf.Write(tmp[:])
}

func (w *Writer) AddFloat64(f float64) {
	w.AddInt64(int64(mathFloat64bits(f)))
}

// AddBytes writes a length-prefixed byte sequence. A nil slice is encoded
// with length -1 so it can be distinguished from an empty, non-nil slice.
func (w *Writer) AddBytes(b []byte) {
	if w.err != nil {
		return
	}
	if b == nil {
		w.AddInt32(-1)
		return
	}
	w.AddInt32(int32(len(b)))
	_, w.err = w.buf.Write(b)
}

// AddString writes a length-prefixed UTF-8 string.
func (w *Writer) AddString(s string) {
	w.AddBytes([]byte(s))
}
