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

import "math"

var negInf = math.Inf(-1)

// Decode runs log-space Viterbi over h against seq, which must already be
// validated as N-free. Silent states are eliminated column by
// column using h.SilentTopoOrder rather than folded into the emitting-state
// grid, so the composed read matcher's direct start/end shortcut edges are
// handled the same way as its ordinary column chain.
//
// seq must be non-empty; h must have been produced by Bake. The returned
// VPath's LogProb is -Inf if no path through h accounts for seq at all.
func Decode(h *HMM, seq string) VPath {
	n := len(seq)
	ns := len(h.States)

	score := make([][]float64, ns)
	back := make([][]int, ns)
	for i := 0; i < ns; i++ {
		score[i] = make([]float64, n+1)
		back[i] = make([]int, n+1)
		for j := range score[i] {
			score[i][j] = negInf
			back[i][j] = -1
		}
	}

	startIdx := h.Start.Index
	endIdx := h.End.Index
	score[startIdx][0] = 0

	for i := 0; i <= n; i++ {
		if i > 0 {
			base := seq[i-1]
			for _, s := range h.States {
				if !s.IsEmitting() {
					continue
				}
				best := negInf
				bestFrom := -1
				emit := s.LogEmit(base)
				if emit == negInf {
					score[s.Index][i] = negInf
					continue
				}
				for _, e := range s.In {
					pv := score[e.To.Index][i-1]
					if pv == negInf {
						continue
					}
					cand := pv + math.Log(e.Prob) + emit
					if cand > best {
						best = cand
						bestFrom = e.To.Index
					}
				}
				score[s.Index][i] = best
				back[s.Index][i] = bestFrom
			}
		}

		for _, s := range h.SilentTopoOrder {
			if i == 0 && s == h.Start {
				continue // seeded above; Start has no in-edges to recompute from
			}
			best := negInf
			bestFrom := -1
			for _, e := range s.In {
				pv := score[e.To.Index][i]
				if pv == negInf {
					continue
				}
				cand := pv + math.Log(e.Prob)
				if cand > best {
					best = cand
					bestFrom = e.To.Index
				}
			}
			score[s.Index][i] = best
			back[s.Index][i] = bestFrom
		}
	}

	logp := score[endIdx][n]
	if logp == negInf {
		return VPath{LogProb: negInf}
	}

	var interior []*State
	curIdx := endIdx
	i := n
	for curIdx != startIdx {
		prevIdx := back[curIdx][i]
		if prevIdx < 0 {
			return VPath{LogProb: negInf}
		}
		cur := h.States[curIdx]
		if curIdx != endIdx {
			interior = append(interior, cur)
		}
		if cur.IsEmitting() {
			i--
		}
		curIdx = prevIdx
	}
	for l, r := 0, len(interior)-1; l < r; l, r = l+1, r-1 {
		interior[l], interior[r] = interior[r], interior[l]
	}
	return VPath{LogProb: logp, States: interior}
}

// SelectStrand decodes seq against h on both strands and returns whichever
// scored higher, together with the sequence actually used.
func SelectStrand(h *HMM, seq string) (string, VPath) {
	fwd := Decode(h, seq)
	rc := ReverseComplement(seq)
	rev := Decode(h, rc)
	if rev.LogProb > fwd.LogProb {
		return rc, rev
	}
	return seq, fwd
}
