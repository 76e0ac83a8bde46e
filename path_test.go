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

import "testing"

func TestNumberOfRepeatsEmptyPath(t *testing.T) {
	if got := NumberOfRepeats(VPath{}); got != 0 {
		t.Errorf("NumberOfRepeats of an empty path = %d, want 0", got)
	}
}

func TestRepeatBPMatchesCountsOnlyRepeatStates(t *testing.T) {
	states := []*State{
		{Kind: KindMatch, Tag: "prefix"},
		{Kind: KindMatch, Tag: "suffix"},
		{Kind: KindMatch, Tag: "0"},
		{Kind: KindInsert, Tag: "0"},
		{Kind: KindDelete, Tag: "0"}, // not emitting, shouldn't count
	}
	vp := VPath{States: states}
	if got := RepeatBPMatches(vp); got != 2 {
		t.Errorf("RepeatBPMatches = %d, want 2", got)
	}
}

func TestRepeatingPatternLengthsNeedsTwoEvents(t *testing.T) {
	if got := RepeatingPatternLengths(VPath{States: []*State{{Kind: KindUnitStart}}}); got != nil {
		t.Errorf("RepeatingPatternLengths with a single boundary event = %v, want nil", got)
	}
}

func TestComposedMatcherNumberOfRepeatsAndFlankMatchRate(t *testing.T) {
	ref := smallRef()
	cfg := testConfig()
	h, err := ComposeReadMatcher(ref, 18, cfg)
	if err != nil {
		t.Fatalf("ComposeReadMatcher returned error: %v", err)
	}

	leftFlank := lastN(ref.LeftFlankingRegion, 8)
	rightFlank := firstN(ref.RightFlankingRegion, 8)
	read := leftFlank + "ACGTACGT" + rightFlank

	vp := Decode(h, read)
	if vp.LogProb == negInf {
		t.Fatalf("Decode returned -Inf for read %q", read)
	}

	if n := NumberOfRepeats(vp); n == 0 {
		t.Error("NumberOfRepeats = 0 for a read that spans two repeat copies")
	}

	rate := FlankMatchRate(vp, read, leftFlank, rightFlank, false)
	if rate <= 0 || rate > 1 {
		t.Errorf("FlankMatchRate = %v, want a value in (0, 1]", rate)
	}

	if !IsSpanning(vp, read, leftFlank, rightFlank) {
		t.Error("IsSpanning = false for a read with substantial coverage on both flanks")
	}
}

func TestFlankMatchRateZeroEmittedSide(t *testing.T) {
	// A path with no prefix/suffix-tagged emitting states at all.
	vp := VPath{States: []*State{{Kind: KindMatch, Tag: "0", Column: 1, Emission: [4]float64{1, 0, 0, 0}}}}
	read := "A"

	if got := FlankMatchRate(vp, read, "GGGG", "TTTT", false); got != 1.0 {
		t.Errorf("FlankMatchRate non-strict with no flank emissions = %v, want 1.0", got)
	}
	if got := FlankMatchRate(vp, read, "GGGG", "TTTT", true); got != flankRateEpsilon {
		t.Errorf("FlankMatchRate strict with no flank emissions = %v, want %v", got, flankRateEpsilon)
	}
}

// TestFlankMatchRateUsesTruncatedFlank guards against comparing emitted
// flank bases against the full reference flank instead of the
// lastN/firstN-truncated slice ComposeReadMatcher actually built the
// suffix/prefix matchers from. A homogeneous flank (all G's, all T's, as in
// smallRef) can't catch a column-offset error like this, since every
// candidate slice reads the same base; this uses distinct runs per quarter
// of each flank so a wrong offset reads the wrong run.
func TestFlankMatchRateUsesTruncatedFlank(t *testing.T) {
	ref := &ReferenceVNTR{
		ID:                  "vntr2",
		Chromosome:          "chr1",
		StartPoint:          2000,
		Pattern:             "ACGT",
		RepeatSegments:      []string{"ACGT", "ACGT", "ACGT"},
		LeftFlankingRegion:  "AAAACCCCGGGGTTTT",
		RightFlankingRegion: "CCCCGGGGTTTTAAAA",
	}
	cfg := testConfig()
	readLength := 18
	h, err := ComposeReadMatcher(ref, readLength, cfg)
	if err != nil {
		t.Fatalf("ComposeReadMatcher returned error: %v", err)
	}

	leftFlank, rightFlank := TruncatedFlanks(ref, readLength)
	read := leftFlank + "ACGTACGT" + rightFlank

	vp := Decode(h, read)
	if vp.LogProb == negInf {
		t.Fatalf("Decode returned -Inf for read %q", read)
	}

	rate := FlankMatchRate(vp, read, leftFlank, rightFlank, false)
	if rate != 1.0 {
		t.Errorf("FlankMatchRate against the truncated flanks the matcher was built from = %v, want 1.0", rate)
	}

	untruncated := FlankMatchRate(vp, read, ref.LeftFlankingRegion, ref.RightFlankingRegion, false)
	if untruncated >= rate {
		t.Errorf("FlankMatchRate against the untruncated reference flanks = %v, want it lower than %v (a column-offset bug on the left flank should show up here)", untruncated, rate)
	}
}

func TestIsSpanningFalseWithoutFlankCoverage(t *testing.T) {
	vp := VPath{States: []*State{{Kind: KindMatch, Tag: "0", Column: 1}}}
	if IsSpanning(vp, "A", "GGGGGGGGGG", "TTTTTTTTTT") {
		t.Error("IsSpanning = true for a path touching neither flank")
	}
}
