package pool_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/grailbio/bedpool/encoding/bedmethyl"
	"github.com/grailbio/bedpool/pool"
	"github.com/grailbio/testutil/expect"
)

func merge(a, b string, optList ...bedmethyl.ReaderOpts) (string, error) {
	ra := bedmethyl.NewReader(strings.NewReader(a), "a.bed", optList...)
	rb := bedmethyl.NewReader(strings.NewReader(b), "b.bed", optList...)
	var buf bytes.Buffer
	err := pool.Tracks(ra, rb, bedmethyl.NewWriter(&buf))
	return buf.String(), err
}

func TestTracks(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want string
	}{
		{
			name: "equal keys pooled",
			a:    "chr1\t100\t200\t0.5\t10\t20\n",
			b:    "chr1\t100\t200\t0.5\t10\t20\n",
			want: "chr1\t100\t200\t0.5\t20\t40\n",
		},
		{
			name: "ratio recomputed from summed counts",
			a:    "chr1\t100\t200\t1\t10\t10\n",
			b:    "chr1\t100\t200\t0\t0\t10\n",
			want: "chr1\t100\t200\t0.5\t10\t20\n",
		},
		{
			name: "disjoint keys interleave in sorted order",
			a: "chr1\t100\t101\t1\t5\t5\n" +
				"chr1\t300\t301\t0\t0\t8\n" +
				"chr3\t50\t51\t0.5\t2\t4\n",
			b: "chr1\t200\t201\t0.25\t1\t4\n" +
				"chr2\t10\t11\t1\t3\t3\n",
			want: "chr1\t100\t101\t1\t5\t5\n" +
				"chr1\t200\t201\t0.25\t1\t4\n" +
				"chr1\t300\t301\t0\t0\t8\n" +
				"chr2\t10\t11\t1\t3\t3\n" +
				"chr3\t50\t51\t0.5\t2\t4\n",
		},
		{
			name: "same start different end stays separate",
			a:    "chr1\t100\t200\t0.5\t10\t20\n",
			b:    "chr1\t100\t150\t0.2\t2\t10\n",
			want: "chr1\t100\t150\t0.2\t2\t10\n" +
				"chr1\t100\t200\t0.5\t10\t20\n",
		},
		{
			name: "empty first input",
			a:    "",
			b:    "chr1\t100\t200\t0.5\t10\t20\nchr2\t5\t6\t1\t3\t3\n",
			want: "chr1\t100\t200\t0.5\t10\t20\nchr2\t5\t6\t1\t3\t3\n",
		},
		{
			name: "empty second input",
			a:    "chr1\t100\t200\t0.5\t10\t20\nchr2\t5\t6\t1\t3\t3\n",
			b:    "",
			want: "chr1\t100\t200\t0.5\t10\t20\nchr2\t5\t6\t1\t3\t3\n",
		},
		{
			name: "both inputs empty",
			a:    "",
			b:    "",
			want: "",
		},
		{
			// A key duplicated within one input pools pairwise: the first
			// copy absorbs the other track's record, the second passes
			// through on its own.
			name: "duplicate key within one input",
			a: "chr1\t100\t200\t0.5\t1\t2\n" +
				"chr1\t100\t200\t0.5\t10\t20\n",
			b:    "chr1\t100\t200\t0.5\t100\t200\n",
			want: "chr1\t100\t200\t0.5\t101\t202\n" +
				"chr1\t100\t200\t0.5\t10\t20\n",
		},
		{
			// Pooled coverage of zero is not special-cased; the IEEE result
			// lands in the output.
			name: "zero pooled coverage",
			a:    "chr1\t5\t6\t0\t0\t0\nchr1\t7\t8\t1\t3\t0\n",
			b:    "chr1\t5\t6\t0\t0\t0\nchr1\t7\t8\t0\t0\t0\n",
			want: "chr1\t5\t6\tNaN\t0\t0\nchr1\t7\t8\t+Inf\t3\t0\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := merge(tt.a, tt.b)
			expect.NoError(t, err)
			expect.EQ(t, got, tt.want)
		})
	}
}

func TestTracksSelfMerge(t *testing.T) {
	// Merging a track with itself keeps every key and doubles the evidence;
	// ratios whose input value already equals meth/cov come through
	// unchanged.
	in := "chr1\t100\t200\t0.5\t10\t20\n" +
		"chr1\t300\t400\t0.25\t5\t20\n" +
		"chr2\t7\t8\t1\t7\t7\n"
	want := "chr1\t100\t200\t0.5\t20\t40\n" +
		"chr1\t300\t400\t0.25\t10\t40\n" +
		"chr2\t7\t8\t1\t14\t14\n"
	got, err := merge(in, in)
	expect.NoError(t, err)
	expect.EQ(t, got, want)

	// And the merged output is itself a valid, sorted track.
	r := bedmethyl.NewReader(strings.NewReader(got), "merged.bed", bedmethyl.ReaderOpts{RequireSorted: true})
	n := 0
	for r.Scan() {
		n++
	}
	expect.NoError(t, r.Err())
	expect.EQ(t, n, 3)
}

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestTracksErrors(t *testing.T) {
	good := "chr1\t100\t200\t0.5\t10\t20\n"

	t.Run("parse error mid-merge", func(t *testing.T) {
		a := "chr1\t150\t160\t0.5\t1\t2\nchr1\t950\t960\t0.5\t1\t2\n"
		b := strings.Repeat(good, 4) + "chr1\t900\t901\t0.5\t10\n"
		_, err := merge(a, b)
		var perr *bedmethyl.ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("want ParseError, got %T: %v", err, err)
		}
		expect.EQ(t, perr.Path, "b.bed")
		expect.EQ(t, perr.Line, 5)
	})

	t.Run("parse error while priming", func(t *testing.T) {
		out, err := merge("chr1\tnope\t200\t0.5\t10\t20\n", good)
		var perr *bedmethyl.ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("want ParseError, got %T: %v", err, err)
		}
		expect.EQ(t, perr.Path, "a.bed")
		expect.EQ(t, perr.Line, 1)
		// Nothing may be emitted for a merge that failed before starting.
		expect.EQ(t, out, "")
	})

	t.Run("unsorted input detected when asked", func(t *testing.T) {
		a := "chr1\t300\t400\t0.5\t1\t2\nchr1\t100\t200\t0.5\t1\t2\n"
		_, err := merge(a, good, bedmethyl.ReaderOpts{RequireSorted: true})
		var oerr *bedmethyl.OrderError
		if !errors.As(err, &oerr) {
			t.Fatalf("want OrderError, got %T: %v", err, err)
		}
		expect.EQ(t, oerr.Path, "a.bed")
		expect.EQ(t, oerr.Line, 2)
	})

	t.Run("sink write failure aborts", func(t *testing.T) {
		// Enough records to overflow the writer's buffer mid-merge.
		var big strings.Builder
		for i := 0; i < 300; i++ {
			big.WriteString("chr1\t")
			big.WriteString(strings.Repeat("9", 1+i%3))
			// Keys need not increase here; order checking is off.
			big.WriteString("0\t95\t0.5\t10\t20\n")
		}
		ra := bedmethyl.NewReader(strings.NewReader(big.String()), "a.bed")
		rb := bedmethyl.NewReader(strings.NewReader(""), "b.bed")
		err := pool.Tracks(ra, rb, bedmethyl.NewWriter(failWriter{}))
		if err == nil {
			t.Fatal("want error from failing sink")
		}
		if !strings.Contains(err.Error(), "disk full") {
			t.Errorf("error should carry the sink failure: %v", err)
		}
		if !strings.Contains(err.Error(), "pooled record") {
			t.Errorf("error should carry merge context: %v", err)
		}
	})
}
