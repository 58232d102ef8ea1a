package bedmethyl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/klauspost/compress/gzip"
)

// nCol is the number of mandatory columns; extra columns are ignored.
const nCol = 6

// maxLineBytes bounds a single track line.  Scanner does not handle lines
// longer than its max buffer size, and the 64KiB default is uncomfortably
// close to what heavily annotated tracks can reach.
const maxLineBytes = 1 << 20

// getTokens locates up to the first len(tokens) tokens of curLine, returning
// the number found.  Any (group of) characters <= ' ' is treated as a
// delimiter, so space- and tab-separated tracks both parse, as do CRLF
// leftovers.
func getTokens(tokens [][]byte, curLine []byte) int {
	posEnd := 0
	lineLen := len(curLine)
	for tokenIdx := range tokens {
		pos := posEnd
		for ; pos != lineLen; pos++ {
			if curLine[pos] > ' ' {
				break
			}
		}
		if pos == lineLen {
			return tokenIdx
		}
		posEnd = pos
		for ; posEnd != lineLen; posEnd++ {
			if curLine[posEnd] <= ' ' {
				break
			}
		}
		tokens[tokenIdx] = curLine[pos:posEnd]
	}
	return len(tokens)
}

// ReaderOpts defines optional Reader behavior.
type ReaderOpts struct {
	// RequireSorted makes Scan verify that records arrive in nondecreasing
	// key order, failing with an OrderError on the first violation.  Off by
	// default; sort order is normally a documented precondition of the
	// inputs rather than something re-checked on every read.
	RequireSorted bool
}

// Reader reads one track record at a time.  The Scan method advances to the
// next record, returning a boolean indicating whether the read succeeded.
// Readers are not threadsafe.
type Reader struct {
	path string
	sc   *bufio.Scanner
	opts ReaderOpts

	rec    Record
	lineno int
	err    error
	atEOF  bool

	prevKey  Key
	havePrev bool

	// Set by Open; nil for Readers built directly on an io.Reader.
	f  file.File
	gz *gzip.Reader
}

// NewReader returns a Reader that parses track lines from r.  path labels
// errors and is not otherwise used.  At most one ReaderOpts may be supplied.
func NewReader(r io.Reader, path string, optList ...ReaderOpts) *Reader {
	var opts ReaderOpts
	if len(optList) > 1 {
		panic("bedmethyl.NewReader: at most one ReaderOpts may be supplied")
	} else if len(optList) == 1 {
		opts = optList[0]
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineBytes)
	return &Reader{path: path, sc: sc, opts: opts}
}

// Open opens the track file at path for reading.  Paths are resolved by
// base/file, so S3 URLs work as well as local paths, and files with a .gz
// extension are decompressed transparently.  The returned Reader must be
// released with Close.
func Open(ctx context.Context, path string, optList ...ReaderOpts) (*Reader, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	reader := io.Reader(f.Reader(ctx))
	var gz *gzip.Reader
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		if gz, err = gzip.NewReader(reader); err != nil {
			_ = f.Close(ctx)
			return nil, &FileError{Path: path, Err: err}
		}
		reader = gz
	}
	r := NewReader(reader, path, optList...)
	r.f = f
	r.gz = gz
	return r, nil
}

// Scan advances the Reader to the next record, returning false at end of
// file or on the first error.  Once Scan returns false, it never returns
// true again and the underlying file is not touched further; Err
// distinguishes a clean EOF from a failure.
func (r *Reader) Scan() bool {
	if r.err != nil || r.atEOF {
		return false
	}
	if !r.sc.Scan() {
		if err := r.sc.Err(); err == bufio.ErrTooLong {
			// The oversized line was never consumed, so it is one past the
			// last accounted line.
			r.err = &ParseError{
				Path: r.path,
				Line: r.lineno + 1,
				Msg:  fmt.Sprintf("line longer than %d bytes", maxLineBytes),
				Err:  err,
			}
		} else if err != nil {
			r.err = &FileError{Path: r.path, Err: err}
		} else {
			r.atEOF = true
		}
		return false
	}
	r.lineno++
	var tokens [nCol][]byte
	if nToken := getTokens(tokens[:], r.sc.Bytes()); nToken != nCol {
		// Blank lines land here too (0 tokens); this format has no
		// blank-line allowance, and resyncing after a bad line would hide
		// coordinate drift from the merge.
		r.err = &ParseError{
			Path: r.path,
			Line: r.lineno,
			Msg:  fmt.Sprintf("expected %d fields, found %d", nCol, nToken),
		}
		return false
	}
	// rec.Chrom aliases the scanner's buffer until the next Scan; see
	// Record.
	r.rec.Chrom = gunsafe.BytesToString(tokens[0])
	var err error
	if r.rec.Start, err = strconv.ParseUint(gunsafe.BytesToString(tokens[1]), 10, 64); err != nil {
		r.err = &ParseError{Path: r.path, Line: r.lineno, Msg: "start: expected unsigned integer", Err: err}
		return false
	}
	if r.rec.End, err = strconv.ParseUint(gunsafe.BytesToString(tokens[2]), 10, 64); err != nil {
		r.err = &ParseError{Path: r.path, Line: r.lineno, Msg: "end: expected unsigned integer", Err: err}
		return false
	}
	for i, field := range [...]struct {
		name string
		dst  *float32
	}{
		{"ratio", &r.rec.Ratio},
		{"meth", &r.rec.Meth},
		{"cov", &r.rec.Cov},
	} {
		v, err := strconv.ParseFloat(gunsafe.BytesToString(tokens[3+i]), 32)
		if err != nil {
			r.err = &ParseError{Path: r.path, Line: r.lineno, Msg: field.name + ": expected number", Err: err}
			return false
		}
		*field.dst = float32(v)
	}
	if r.opts.RequireSorted {
		if r.havePrev && r.rec.Key.Compare(&r.prevKey) < 0 {
			cur := r.rec.Key
			cur.Chrom = string(tokens[0]) // heap copy; the error outlives the line buffer
			r.err = &OrderError{Path: r.path, Line: r.lineno, Prev: r.prevKey, Cur: cur}
			return false
		}
		if r.prevKey.Chrom != r.rec.Chrom {
			// Chromosomes change rarely; copy only then so prevKey owns its
			// bytes across Scans.
			r.prevKey.Chrom = string(tokens[0])
		}
		r.prevKey.Start = r.rec.Start
		r.prevKey.End = r.rec.End
		r.havePrev = true
	}
	return true
}

// Record returns the record read by the last successful Scan.  The record's
// Chrom aliases the Reader's internal buffer, so the record is only valid
// until the next Scan call; callers that need it longer must copy it, Chrom
// included.
func (r *Reader) Record() *Record {
	return &r.rec
}

// Err returns the first error encountered, or nil if reading stopped at a
// clean end of file.  It should be checked once Scan returns false.
func (r *Reader) Err() error {
	return r.err
}

// Path returns the label passed to NewReader or Open.
func (r *Reader) Path() string {
	return r.path
}

// Close releases the file handle acquired by Open.  It is a no-op for
// Readers built directly on an io.Reader.
func (r *Reader) Close(ctx context.Context) error {
	e := errors.Once{}
	if r.gz != nil {
		e.Set(r.gz.Close())
	}
	if r.f != nil {
		e.Set(r.f.Close(ctx))
	}
	return e.Err()
}
