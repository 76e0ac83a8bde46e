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

import "strings"

// ExtractRepeatSegments slices read into the substrings its decoded path
// attributes to each repeat copy: one substring per unit_start event that
// is directly followed by a unit_end event, the same pairing
// RepeatingPatternLengths uses. These feed back into
// PriorsFromAlignment once a first round of reads has been decoded,
// sharpening the per-column emission estimate beyond what the reference's
// own repeat segments alone can offer.
func ExtractRepeatSegments(vpath VPath, read string) []string {
	events := boundaryEvents(vpath.States)
	if len(events) < 2 {
		return nil
	}

	offsets := make([]int, len(vpath.States)+1)
	for i, s := range vpath.States {
		offsets[i+1] = offsets[i]
		if s.IsEmitting() {
			offsets[i+1]++
		}
	}

	segs := make([]string, 0, len(events)-1)
	for i := 1; i < len(events); i++ {
		if !events[i-1].isStart || events[i].isStart {
			continue
		}
		start := offsets[events[i-1].index]
		end := offsets[events[i].index]
		if start < 0 || end > len(read) || end < start {
			continue
		}
		segs = append(segs, read[start:end])
	}
	return segs
}

// globalAlign computes an edit-distance-optimal global alignment of a
// against b with unit substitution/insertion/deletion cost, returning both
// strings padded with '-' to a common length.
func globalAlign(a, b string) (alignedA, alignedB string) {
	n, m := len(a), len(b)
	dp := make([][]int, n+1)
	for i := range dp {
		dp[i] = make([]int, m+1)
	}
	for i := 0; i <= n; i++ {
		dp[i][0] = i
	}
	for j := 0; j <= m; j++ {
		dp[0][j] = j
	}
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			best := dp[i-1][j-1] + cost
			if v := dp[i-1][j] + 1; v < best {
				best = v
			}
			if v := dp[i][j-1] + 1; v < best {
				best = v
			}
			dp[i][j] = best
		}
	}

	var ra, rb []byte
	i, j := n, m
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && dp[i][j] == dp[i-1][j-1]+substCost(a[i-1], b[j-1]):
			ra = append(ra, a[i-1])
			rb = append(rb, b[j-1])
			i--
			j--
		case i > 0 && dp[i][j] == dp[i-1][j]+1:
			ra = append(ra, a[i-1])
			rb = append(rb, '-')
			i--
		default:
			ra = append(ra, '-')
			rb = append(rb, b[j-1])
			j--
		}
	}
	reverseBytes(ra)
	reverseBytes(rb)
	return string(ra), string(rb)
}

func substCost(x, y byte) int {
	if x == y {
		return 0
	}
	return 1
}

func reverseBytes(b []byte) {
	for l, r := 0, len(b)-1; l < r; l, r = l+1, r-1 {
		b[l], b[r] = b[r], b[l]
	}
}

// AlignRepeatSegments brings each observed repeat segment into register
// with pattern's L columns via global alignment: a column where the
// segment carries a deletion is filled with the pattern's own base so
// every returned string has exactly len(pattern) characters and can feed
// PriorsFromAlignment directly; a column where the segment carries an
// insertion relative to pattern is dropped.
func AlignRepeatSegments(segments []string, pattern string) []string {
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		alignedSeg, alignedPattern := globalAlign(seg, pattern)
		var sb strings.Builder
		for k := 0; k < len(alignedPattern); k++ {
			if alignedPattern[k] == '-' {
				continue
			}
			if alignedSeg[k] == '-' {
				sb.WriteByte(alignedPattern[k])
			} else {
				sb.WriteByte(alignedSeg[k])
			}
		}
		out = append(out, sb.String())
	}
	return out
}
