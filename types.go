// Copyright © 2018 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package vntrhmm

import "context"

// ReferenceVNTR describes one VNTR locus in the reference genome. Inputs are
// immutable for the lifetime of a genotyping run.
type ReferenceVNTR struct {
	ID                 string
	Chromosome         string
	StartPoint         int
	Pattern            string
	RepeatSegments     []string
	LeftFlankingRegion string
	RightFlankingRegion string
}

// Length returns the reference length of the VNTR region (the summed length
// of its observed repeat segments, or len(Pattern) when there are none),
// used to compute overlap with mapped reads.
func (r *ReferenceVNTR) Length() int {
	total := 0
	for _, seg := range r.RepeatSegments {
		total += len(seg)
	}
	if total == 0 {
		total = len(r.Pattern)
	}
	return total
}

// Validate returns ErrInvalidReference if the reference is missing data
// needed to build a matcher HMM.
func (r *ReferenceVNTR) Validate() error {
	if r.Pattern == "" || r.LeftFlankingRegion == "" || r.RightFlankingRegion == "" || len(r.RepeatSegments) == 0 {
		return ErrInvalidReference
	}
	return nil
}

// VPath is the Viterbi-decoded result: a log-probability and the interior
// state sequence (excluding the global start/end silent states).
type VPath struct {
	LogProb float64
	States  []*State
}

// SelectedRead is a read together with the strand (forward or reverse
// complement) that scored higher under Viterbi, and its decoded path.
type SelectedRead struct {
	Sequence string
	Score    float64
	Path     VPath
}

// AlignedRead is one record from an aligned-reads source.
type AlignedRead struct {
	Name           string
	Sequence       string
	IsUnmapped     bool
	ReferenceName  string
	ReferenceStart int
	ReferenceEnd   int
	MappingQuality byte
}

// AlignedReadSource iterates mapped and unmapped reads over a named
// reference contig, optionally restricted to [start, end). Parsing
// BAM/SAM/CRAM itself is out of scope: this module only depends on the
// interface; a collaborator supplies the implementation.
type AlignedReadSource interface {
	Fetch(ctx context.Context, contig string, start, end int) (<-chan AlignedRead, error)
}

// UnmappedRead is one FASTA/FASTQ-like record with no reference placement.
type UnmappedRead struct {
	ID       string
	Sequence string
}

// UnmappedReadSource streams unmapped reads. See FastxUnmappedReadSource for
// a concrete adapter backed by github.com/shenwei356/bio/seqio/fastx.
type UnmappedReadSource interface {
	Reads(ctx context.Context) (<-chan UnmappedRead, error)
}

// CandidateFilter reports whether a read ID was judged potentially relevant
// by an external keyword/BLAST-style step. See BloomCandidateFilter for a
// concrete adapter.
type CandidateFilter interface {
	Contains(readID string) bool
}

// CoverageModel supplies sequencing depth and GC-bias correction. Both are
// out of scope for this module; only the interface lives here.
type CoverageModel interface {
	MeanCoverage() float64
	GCScale(ref *ReferenceVNTR, observedCN float64) float64
}

// FrameshiftReport names the most frequent indel event observed across
// retained repeat copies, if any exceeded the acceptance bar.
type FrameshiftReport struct {
	StateLabel      string
	OccurrenceCount int
}

// Result is the per-VNTR output of the genotyping driver.
type Result struct {
	ScaledCopyNumber   float64
	ObservedCopyNumber float64
	Frameshift         *FrameshiftReport
	VNTRBPInMapped     int
	VNTRBPInUnmapped   int
	ObservedRepeats    []int
	FlankedRepeats     []int
}
