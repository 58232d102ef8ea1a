// Package pool merges coordinate-sorted methylation tracks, summing the
// evidence for positions present in more than one track.
package pool

import (
	"github.com/grailbio/bedpool/encoding/bedmethyl"
	"github.com/pkg/errors"
	"v.io/x/lib/vlog"
)

// Tracks merges two coordinate-sorted tracks into one sorted stream on w.
// Records from a and b with equal keys are pooled: meth and cov are summed
// and the ratio recomputed from the sums.  All other records pass through
// unchanged.  Tracks returns the first reader or writer error and stops
// there; a nil return means both inputs drained cleanly and w was flushed.
//
// Both inputs must already be sorted by (chrom, start, end).  That
// precondition is trusted by default; open the readers with
// bedmethyl.ReaderOpts.RequireSorted to have violations detected here.
func Tracks(a, b *bedmethyl.Reader, w *bedmethyl.Writer) error {
	var nA, nB, nOut int

	advance := func(r *bedmethyl.Reader, n *int) (bool, error) {
		if r.Scan() {
			*n++
			return true, nil
		}
		// Clean EOF leaves Err nil; Scan stays false from here on without
		// touching the file.
		return false, r.Err()
	}
	emit := func(rec *bedmethyl.Record) error {
		nOut++
		return errors.Wrap(w.Write(rec), "write pooled record")
	}

	okA, err := advance(a, &nA)
	if err != nil {
		return err
	}
	okB, err := advance(b, &nB)
	if err != nil {
		return err
	}
	for okA || okB {
		switch {
		case okA && okB:
			ra, rb := a.Record(), b.Record()
			switch c := ra.Compare(&rb.Key); {
			case c == 0:
				// Emit before advancing either side: ra and rb alias their
				// readers' buffers.
				pooled := bedmethyl.Record{Key: ra.Key, Meth: ra.Meth + rb.Meth, Cov: ra.Cov + rb.Cov}
				// Pooled cov can legitimately be zero; the IEEE Inf/NaN
				// ratio is passed through rather than masked.
				pooled.Ratio = pooled.Meth / pooled.Cov
				if err = emit(&pooled); err != nil {
					return err
				}
				if okA, err = advance(a, &nA); err != nil {
					return err
				}
				if okB, err = advance(b, &nB); err != nil {
					return err
				}
			case c < 0:
				if err = emit(ra); err != nil {
					return err
				}
				if okA, err = advance(a, &nA); err != nil {
					return err
				}
			default:
				if err = emit(rb); err != nil {
					return err
				}
				if okB, err = advance(b, &nB); err != nil {
					return err
				}
			}
		case okA:
			if err = emit(a.Record()); err != nil {
				return err
			}
			if okA, err = advance(a, &nA); err != nil {
				return err
			}
			if okB, err = advance(b, &nB); err != nil {
				return err
			}
		default:
			if err = emit(b.Record()); err != nil {
				return err
			}
			if okA, err = advance(a, &nA); err != nil {
				return err
			}
			if okB, err = advance(b, &nB); err != nil {
				return err
			}
		}
	}
	if err = w.Flush(); err != nil {
		return errors.Wrap(err, "flush pooled records")
	}
	vlog.VI(1).Infof("pooled %d records from %s and %d records from %s into %d",
		nA, a.Path(), nB, b.Path(), nOut)
	return nil
}
