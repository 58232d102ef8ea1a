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

/*
Given two methylation track files sorted by genomic coordinate, bio-bedpool
writes a single sorted track combining them.  Positions present in both
inputs have their methylated counts and coverages summed, with the
methylation ratio recomputed from the sums; positions present in only one
input pass through unchanged.

Each input line carries six whitespace-separated columns: chromosome,
0-based start, end, methylation ratio, methylated count, and coverage.
Extra columns are ignored.  Output is tab-separated with the same six
columns and no header, written to stdout unless -out is given.

Inputs must already be sorted by (chromosome, start, end); the tool does not
sort for you.  Pass -check-sorted to fail on the first out-of-order record
instead of silently merging misordered data.

Sample usage:
bio-bedpool \
    -out pooled.bed \
    replicate1.bed \
    replicate2.bed
*/
package main
