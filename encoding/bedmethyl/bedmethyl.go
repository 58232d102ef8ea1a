// Package bedmethyl reads and writes six-column BED-like methylation tracks:
// chromosome, 0-based start, end, methylation ratio, methylated read count,
// and coverage.  Fields are whitespace-separated on input and tab-separated
// on output, one record per line, no header.
package bedmethyl

import (
	"fmt"
)

// Key locates a record on the genome.  Keys order by chromosome name
// (lexicographically, byte-wise), then start, then end; this is the order
// sorted track files are expected to arrive in.
type Key struct {
	Chrom string
	Start uint64
	End   uint64
}

// Compare returns -1, 0, or 1 when k orders before, equal to, or after
// other.
func (k *Key) Compare(other *Key) int {
	if k.Chrom != other.Chrom {
		if k.Chrom < other.Chrom {
			return -1
		}
		return 1
	}
	if k.Start != other.Start {
		if k.Start < other.Start {
			return -1
		}
		return 1
	}
	if k.End != other.End {
		if k.End < other.End {
			return -1
		}
		return 1
	}
	return 0
}

// String renders the key in the usual chrom:start-end form.
func (k *Key) String() string {
	return fmt.Sprintf("%s:%d-%d", k.Chrom, k.Start, k.End)
}

// Record is one track line.  Ratio, Meth, and Cov stay float32 since that is
// all the precision the text format carries; widening them would change how
// values round-trip.
type Record struct {
	Key
	Ratio float32
	Meth  float32
	Cov   float32
}
