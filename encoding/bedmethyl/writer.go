package bedmethyl

import (
	"io"
	"strconv"

	"github.com/grailbio/base/tsv"
	gunsafe "github.com/grailbio/base/unsafe"
)

// Writer emits records as tab-separated track lines.  Output is buffered;
// call Flush once after the last Write.  Writers are not threadsafe.
type Writer struct {
	tsvw *tsv.Writer
	buf  []byte
}

// NewWriter returns a Writer emitting to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{tsvw: tsv.NewWriter(w), buf: make([]byte, 0, 24)}
}

// Write appends rec as one tab-separated line.  Ratio, meth, and cov use
// the shortest decimal form that round-trips through float32, so records
// passed from a canonically formatted input land in the output
// byte-identical.
func (w *Writer) Write(rec *Record) error {
	w.tsvw.WriteString(rec.Chrom)
	w.writeUint(rec.Start)
	w.writeUint(rec.End)
	w.writeFloat(rec.Ratio)
	w.writeFloat(rec.Meth)
	w.writeFloat(rec.Cov)
	return w.tsvw.EndLine()
}

func (w *Writer) writeUint(v uint64) {
	w.buf = strconv.AppendUint(w.buf[:0], v, 10)
	// WriteString copies the bytes out right away, so aliasing the scratch
	// buffer is fine.
	w.tsvw.WriteString(gunsafe.BytesToString(w.buf))
}

func (w *Writer) writeFloat(v float32) {
	// 'f', not 'g': track consumers do not expect exponent notation.
	// bitSize 32 keeps the float32->float64 widening from leaking garbage
	// mantissa digits into the text (0.1 must not print as
	// 0.10000000149011612).
	w.buf = strconv.AppendFloat(w.buf[:0], float64(v), 'f', -1, 32)
	w.tsvw.WriteString(gunsafe.BytesToString(w.buf))
}

// Flush flushes buffered lines to the underlying writer.
func (w *Writer) Flush() error {
	return w.tsvw.Flush()
}
