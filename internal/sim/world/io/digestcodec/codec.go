// Package digestcodec writes the canonical little-endian encoding hashed into state digests.
package digestcodec

import (
	"encoding/binary"
	"io"
	"math"
)

type Writer struct {
	w   io.Writer
	tmp [8]byte
}

func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

func (d *Writer) U64(v uint64) {
	binary.LittleEndian.PutUint64(d.tmp[:], v)
	d.w.Write(d.tmp[:])
}

func (d *Writer) I64(v int64) { d.U64(uint64(v)) }

// F64 writes the IEEE-754 bits, so -0 and 0 digest differently.
func (d *Writer) F64(v float64) { d.U64(math.Float64bits(v)) }

// String is length-prefixed so adjacent fields cannot run together.
func (d *Writer) String(s string) {
	d.U64(uint64(len(s)))
	io.WriteString(d.w, s)
}

func (d *Writer) Vec3(v [3]float64) {
	for _, x := range v {
		d.F64(x)
	}
}

// Strings writes a count followed by each element, in the given order.
func (d *Writer) Strings(ss []string) {
	d.U64(uint64(len(ss)))
	for _, s := range ss {
		d.String(s)
	}
}
