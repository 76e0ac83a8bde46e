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

func TestExtractRepeatSegmentsFromComposedMatcher(t *testing.T) {
	ref := smallRef()
	cfg := testConfig()
	h, err := ComposeReadMatcher(ref, 12, cfg)
	if err != nil {
		t.Fatalf("ComposeReadMatcher returned error: %v", err)
	}
	read := "ACGTACGTACGT"
	vp := Decode(h, read)
	if vp.LogProb == negInf {
		t.Fatal("Decode returned -Inf for an exact repeat read")
	}

	segs := ExtractRepeatSegments(vp, read)
	if len(segs) == 0 {
		t.Fatal("ExtractRepeatSegments returned no segments for a read spanning multiple repeat copies")
	}
	for _, s := range segs {
		if s != "ACGT" {
			t.Errorf("segment = %q, want %q", s, "ACGT")
		}
	}
}

func TestExtractRepeatSegmentsNeedsTwoEvents(t *testing.T) {
	vp := VPath{States: []*State{{Kind: KindUnitStart}}}
	if got := ExtractRepeatSegments(vp, "ACGT"); got != nil {
		t.Errorf("ExtractRepeatSegments with one boundary event = %v, want nil", got)
	}
}

func TestAlignRepeatSegmentsPadsToPatternLength(t *testing.T) {
	segments := []string{"ACGT", "ACT", "ACGGT"} // exact, one deletion, one insertion
	out := AlignRepeatSegments(segments, "ACGT")
	if len(out) != len(segments) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(segments))
	}
	for i, s := range out {
		if len(s) != len("ACGT") {
			t.Errorf("aligned segment %d = %q (len %d), want len %d", i, s, len(s), len("ACGT"))
		}
	}
	if out[0] != "ACGT" {
		t.Errorf("aligned exact segment = %q, want %q", out[0], "ACGT")
	}
}

func TestAlignRepeatSegmentsSkipsEmpty(t *testing.T) {
	out := AlignRepeatSegments([]string{"", "ACGT"}, "ACGT")
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1 (empty segment should be skipped)", len(out))
	}
}

func TestGlobalAlignIdenticalStrings(t *testing.T) {
	a, b := globalAlign("ACGT", "ACGT")
	if a != "ACGT" || b != "ACGT" {
		t.Errorf("globalAlign(identical) = (%q, %q), want (%q, %q)", a, b, "ACGT", "ACGT")
	}
}
