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

func TestIsValidBase(t *testing.T) {
	for _, b := range []byte{'A', 'C', 'G', 'T'} {
		if !IsValidBase(b) {
			t.Errorf("IsValidBase(%q) = false, want true", b)
		}
	}
	for _, b := range []byte{'N', 'a', 'U', '-'} {
		if IsValidBase(b) {
			t.Errorf("IsValidBase(%q) = true, want false", b)
		}
	}
}

func TestContainsN(t *testing.T) {
	cases := []struct {
		seq  string
		want bool
	}{
		{"ACGT", false},
		{"", false},
		{"ACGTN", true},
		{"acgt", true},
	}
	for _, c := range cases {
		if got := ContainsN(c.seq); got != c.want {
			t.Errorf("ContainsN(%q) = %v, want %v", c.seq, got, c.want)
		}
	}
}

func TestReverseComplement(t *testing.T) {
	cases := []struct{ seq, want string }{
		{"A", "T"},
		{"ACGT", "ACGT"},
		{"AACCGGTT", "AACCGGTT"},
		{"GATTACA", "TGTAATC"},
	}
	for _, c := range cases {
		if got := ReverseComplement(c.seq); got != c.want {
			t.Errorf("ReverseComplement(%q) = %q, want %q", c.seq, got, c.want)
		}
	}
}

func TestReverseComplementInvolution(t *testing.T) {
	for _, seq := range []string{"ACGTACGT", "A", "GGGGCCCC", "TGCATGCATGCA"} {
		if got := ReverseComplement(ReverseComplement(seq)); got != seq {
			t.Errorf("ReverseComplement twice on %q = %q, want original", seq, got)
		}
	}
}
