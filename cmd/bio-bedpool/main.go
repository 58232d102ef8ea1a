// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

/*
bio-bedpool merges two coordinate-sorted methylation tracks into one,
pooling the evidence for positions present in both.
*/

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/bedpool/encoding/bedmethyl"
	"github.com/grailbio/bedpool/pool"
	"github.com/grailbio/hts/bgzf"
)

var (
	outPath     = flag.String("out", "", "Output path; empty means stdout, and a .gz suffix selects bgzf compression")
	checkSorted = flag.Bool("check-sorted", false, "Verify that each input is coordinate-sorted instead of trusting it; the first out-of-order record aborts the merge")
	parallelism = flag.Int("parallelism", 0, "Maximum number of bgzf compressor threads; 0 = runtime.NumCPU()")
)

func bioBedpoolUsage() {
	fmt.Printf("Usage: %s [OPTIONS] track1 track2\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = bioBedpoolUsage
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() != 2 {
		if flag.NArg() < 2 {
			log.Fatalf("Missing positional arguments (track1 and track2 required); please check flag syntax: '%s'", strings.Join(flag.Args(), " "))
		} else {
			log.Fatalf("Too many positional arguments (only track1 and track2 expected); please check flag syntax: '%s'", strings.Join(flag.Args(), " "))
		}
	}
	ctx := vcontext.Background()
	if err := poolTracks(ctx, flag.Arg(0), flag.Arg(1), *outPath, *checkSorted, *parallelism); err != nil {
		log.Fatalf("%v", err)
	}
	log.Debug.Printf("exiting")
}

// poolTracks opens both inputs and the output sink and runs the merge.  An
// empty outPath means stdout.
func poolTracks(ctx context.Context, pathA, pathB, outPath string, checkSorted bool, parallelism int) (err error) {
	ropts := bedmethyl.ReaderOpts{RequireSorted: checkSorted}
	var a, b *bedmethyl.Reader
	if a, err = bedmethyl.Open(ctx, pathA, ropts); err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if b, err = bedmethyl.Open(ctx, pathB, ropts); err != nil {
		return err
	}
	defer func() {
		if cerr := b.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()

	out := io.Writer(os.Stdout)
	if outPath != "" {
		var dst file.File
		if dst, err = file.Create(ctx, outPath); err != nil {
			return err
		}
		defer file.CloseAndReport(ctx, dst, &err)
		out = dst.Writer(ctx)
		if fileio.DetermineType(outPath) == fileio.Gzip {
			if parallelism == 0 {
				parallelism = runtime.NumCPU()
			}
			bgzfOut := bgzf.NewWriter(out, parallelism)
			defer func() {
				if cerr := bgzfOut.Close(); cerr != nil && err == nil {
					err = cerr
				}
			}()
			out = bgzfOut
		}
	}
	return pool.Tracks(a, b, bedmethyl.NewWriter(out))
}
