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
	"math"
	"testing"
)

func TestPriorsFromUnitsRejectsEmptyPattern(t *testing.T) {
	if _, err := PriorsFromUnits([]string{"ACGT"}, "", 0.05); err != ErrInvalidReference {
		t.Errorf("PriorsFromUnits with empty pattern returned %v, want ErrInvalidReference", err)
	}
}

func TestPriorsFromUnitsNormalizedColumns(t *testing.T) {
	priors, err := PriorsFromUnits([]string{"ACGT", "ACGT", "ACGG"}, "ACGT", 0.05)
	if err != nil {
		t.Fatalf("PriorsFromUnits returned error: %v", err)
	}
	if len(priors.Emission) != 4 {
		t.Fatalf("len(Emission) = %d, want 4", len(priors.Emission))
	}
	for i, col := range priors.Emission {
		sum := col[0] + col[1] + col[2] + col[3]
		if math.Abs(sum-1.0) > 1e-12 {
			t.Errorf("column %d sums to %v, want 1", i, sum)
		}
	}
	// Column 0 only ever observed 'A'; it should still dominate despite
	// the Laplace pseudocount floor.
	if priors.Emission[0][baseIndex('A')] <= priors.Emission[0][baseIndex('C')] {
		t.Errorf("column 0 does not favor the consensus base: %v", priors.Emission[0])
	}
}

func TestPriorsFromUnitsIgnoresWrongLengthSegments(t *testing.T) {
	priors, err := PriorsFromUnits([]string{"ACGT", "AC", "ACGTACGT"}, "ACGT", 0.05)
	if err != nil {
		t.Fatalf("PriorsFromUnits returned error: %v", err)
	}
	if len(priors.Emission) != 4 {
		t.Fatalf("len(Emission) = %d, want 4", len(priors.Emission))
	}
}

func TestBuildConstantCopyRepeatMatcherDecodesExactRepeats(t *testing.T) {
	priors, err := PriorsFromUnits([]string{"ACGT", "ACGT", "ACGT"}, "ACGT", 0.05)
	if err != nil {
		t.Fatalf("PriorsFromUnits returned error: %v", err)
	}
	h := NewHMM("constant-copy")
	rs := BuildConstantCopyRepeatMatcher(h, priors, 3)
	addEdge(h.Start, rs.Entry, 1)
	addEdge(rs.Exit, h.End, 1)
	if err := Bake(h); err != nil {
		t.Fatalf("Bake returned error: %v", err)
	}

	vp := Decode(h, "ACGTACGTACGT")
	if vp.LogProb == negInf {
		t.Fatal("Decode of three exact repeat copies returned -Inf")
	}
	if got := NumberOfRepeats(vp); got != 3 {
		t.Errorf("NumberOfRepeats = %d, want 3", got)
	}
}

func TestBuildVariableCopyRepeatMatcherAllowsFewerCopies(t *testing.T) {
	priors, err := PriorsFromUnits([]string{"ACGT", "ACGT", "ACGT"}, "ACGT", 0.05)
	if err != nil {
		t.Fatalf("PriorsFromUnits returned error: %v", err)
	}
	h := NewHMM("variable-copy")
	rs := BuildConstantCopyRepeatMatcher(h, priors, 3)
	seg := BuildVariableCopyRepeatMatcher(h, rs)
	addEdge(h.Start, seg.Entry, 1)
	addEdge(seg.Exit, h.End, 1)
	if err := Bake(h); err != nil {
		t.Fatalf("Bake returned error: %v", err)
	}

	vp := Decode(h, "ACGT")
	if vp.LogProb == negInf {
		t.Fatal("Decode of a single repeat copy against a 3-copy variable matcher returned -Inf")
	}

	full := Decode(h, "ACGTACGTACGT")
	if full.LogProb == negInf {
		t.Fatal("Decode of all three repeat copies returned -Inf")
	}
}

func TestBuildReferenceRepeatFinderHMM(t *testing.T) {
	h, err := BuildReferenceRepeatFinderHMM("ACGT", 0.05, 2)
	if err != nil {
		t.Fatalf("BuildReferenceRepeatFinderHMM returned error: %v", err)
	}
	vp := Decode(h, "GGGGACGTACGTTTTT")
	if vp.LogProb == negInf {
		t.Fatal("Decode of a repeat embedded in background returned -Inf")
	}
	if got := NumberOfRepeats(vp); got != 2 {
		t.Errorf("NumberOfRepeats = %d, want 2", got)
	}
}
