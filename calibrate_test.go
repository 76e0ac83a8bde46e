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

import (
	"context"
	"testing"
)

func TestPercentileSingleValue(t *testing.T) {
	if got := percentile([]float64{5}, 99.9999); got != 5 {
		t.Errorf("percentile of a single value = %v, want 5", got)
	}
}

func TestPercentileInterpolates(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}
	if got := percentile(sorted, 50); got != 3 {
		t.Errorf("percentile(50) = %v, want 3", got)
	}
	if got := percentile(sorted, 0); got != 1 {
		t.Errorf("percentile(0) = %v, want 1", got)
	}
	if got := percentile(sorted, 100); got != 5 {
		t.Errorf("percentile(100) = %v, want 5", got)
	}
}

func TestShouldSampleDeterministic(t *testing.T) {
	a := shouldSample("read-42", 0.5)
	b := shouldSample("read-42", 0.5)
	if a != b {
		t.Error("shouldSample gave different answers for the same read name and fraction")
	}
}

func TestShouldSampleZeroFractionNeverSamples(t *testing.T) {
	for _, name := range []string{"r1", "r2", "r3", "anything"} {
		if shouldSample(name, 0) {
			t.Errorf("shouldSample(%q, 0) = true, want false", name)
		}
	}
}

func TestOverlapsLocus(t *testing.T) {
	ref := smallRef() // chr1, StartPoint 1000, Length() == 12 (3 x "ACGT")
	cases := []struct {
		contig         string
		start, end     int
		want           bool
	}{
		{"chr1", 990, 1005, true},   // overlaps left edge
		{"chr1", 1005, 1008, true},  // fully inside
		{"chr1", 1015, 1100, false}, // entirely after the locus
		{"chr1", 900, 950, false},   // entirely before the locus
		{"chr2", 1000, 1010, false}, // wrong contig
	}
	for _, c := range cases {
		r := AlignedRead{ReferenceStart: c.start, ReferenceEnd: c.end}
		if got := overlapsLocus(ref, c.contig, r); got != c.want {
			t.Errorf("overlapsLocus(%s, [%d,%d)) = %v, want %v", c.contig, c.start, c.end, got, c.want)
		}
	}
}

// nullAlignedReadSource returns a fixed set of reads for every contig, none
// of which overlap smallRef()'s locus, simulating the background population
// MinAcceptScore samples its null distribution from.
type nullAlignedReadSource struct {
	reads []AlignedRead
}

func (s *nullAlignedReadSource) Fetch(ctx context.Context, contig string, start, end int) (<-chan AlignedRead, error) {
	out := make(chan AlignedRead, len(s.reads))
	for _, r := range s.reads {
		out <- r
	}
	close(out)
	return out, nil
}

func TestMinAcceptScoreNoReadsCollected(t *testing.T) {
	ref := smallRef()
	cfg := testConfig()
	cfg.Chromosomes = []string{"chr1"}
	cfg.Cores = 1
	src := &nullAlignedReadSource{} // no reads at all

	cache := NewModelCache()
	score, err := MinAcceptScore(context.Background(), cache, nil, ref, 18, src, cfg)
	if err != nil {
		t.Fatalf("MinAcceptScore returned error: %v", err)
	}
	if score != negInf {
		t.Errorf("MinAcceptScore with no sampled reads = %v, want -Inf", score)
	}
}

func TestMinAcceptScoreWithBackgroundReads(t *testing.T) {
	ref := smallRef()
	cfg := testConfig()
	cfg.Chromosomes = []string{"chr1"}
	cfg.Cores = 1
	cfg.ScoreFindingReadsFraction = 1.0 // sample every eligible read, deterministically

	reads := make([]AlignedRead, 0, 50)
	for i := 0; i < 50; i++ {
		reads = append(reads, AlignedRead{
			Name:           "bg" + string(rune('a'+i%26)) + string(rune('0'+i%10)),
			Sequence:       "TTTTTTTTTTTTTTTTTT", // 18bp of pure mismatch against the ACGT repeat
			ReferenceStart: 5000 + i*20,
			ReferenceEnd:   5000 + i*20 + 18,
		})
	}
	src := &nullAlignedReadSource{reads: reads}

	cache := NewModelCache()
	score, err := MinAcceptScore(context.Background(), cache, nil, ref, 18, src, cfg)
	if err != nil {
		t.Fatalf("MinAcceptScore returned error: %v", err)
	}
	if score == negInf {
		t.Error("MinAcceptScore returned -Inf despite background reads being collected")
	}
}
