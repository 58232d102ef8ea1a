package bedmethyl

import "fmt"

// FileError reports a failure to open or read a track file.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying I/O error.
func (e *FileError) Unwrap() error { return e.Err }

// ParseError reports a malformed track line.  Line is 1-based.  Err holds
// the underlying strconv failure when there is one; Msg names the offending
// field either way.
type ParseError struct {
	Path string
	Line int
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s:%d: %s: %v", e.Path, e.Line, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
}

// Unwrap returns the underlying parse error, if any.
func (e *ParseError) Unwrap() error { return e.Err }

// OrderError reports a sort-order violation found by
// ReaderOpts.RequireSorted.  Line is the 1-based line number of the record
// that broke the order; Prev and Cur own their contents and stay valid after
// the Reader moves on.
type OrderError struct {
	Path string
	Line int
	Prev Key
	Cur  Key
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("%s:%d: unsorted input (%s after %s)", e.Path, e.Line, e.Cur.String(), e.Prev.String())
}
