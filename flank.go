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

// Segment is a reusable block of a composed HMM: a silent Entry state, a
// silent Exit state, and the Match states in between. Composer code chains
// Segments end to end by pointing one Segment's Exit at the next one's
// Entry.
type Segment struct {
	Tag     string
	Entry   *State
	Exit    *State
	Matches []*State // column order, M_1..M_L
}

// buildLinearColumns lays out the I_0..I_L, M_1..M_L, D_1..D_L triplet chain
// of a single-segment profile HMM column run and wires every
// transition that does not depend on how the segment is entered or exited:
// the internal M/D/I interior advance edges. Callers wire the entry into
// column 1 and the exit out of column L themselves, since those differ
// between the prefix and suffix matchers.
func buildLinearColumns(h *HMM, unit string, tag string, errRate float64) (inserts, matches, deletes []*State, pIns, pDel, pMat float64) {
	L := len(unit)
	pIns, pDel, pMat = errorRates(errRate)

	inserts = make([]*State, L+1)
	matches = make([]*State, L+1)
	deletes = make([]*State, L+1)
	for i := 0; i <= L; i++ {
		inserts[i] = newInsertState(h, i, tag)
	}
	for i := 1; i <= L; i++ {
		matches[i] = newMatchState(h, i, tag, unit[i-1])
		deletes[i] = newDeleteState(h, i, tag)
	}

	for i := 1; i < L; i++ {
		addEdge(matches[i], matches[i+1], pMat)
		addEdge(matches[i], deletes[i+1], pDel)
		addEdge(matches[i], inserts[i], pIns)

		addEdge(deletes[i], matches[i+1], pMat)
		addEdge(deletes[i], deletes[i+1], pDel)
		addEdge(deletes[i], inserts[i], pIns)
	}
	for i := 0; i < L; i++ {
		addEdge(inserts[i], matches[i+1], pMat)
		addEdge(inserts[i], deletes[i+1], pDel)
		addEdge(inserts[i], inserts[i], pIns)
	}
	return
}

// reduceEdge finds the existing out-edge from 'from' to 'to' and subtracts
// delta from its probability in place.
func reduceEdge(from, to *State, delta float64) {
	for i := range from.Out {
		if from.Out[i].To == to {
			from.Out[i].Prob -= delta
			return
		}
	}
}

// BuildPrefixMatcher appends a right-flank matcher to h: anchored at its
// left edge (a read must enter at column 1) but free at its right edge
// (every internal match column can exit early), tagged "prefix". Each
// internal M_i siphons 0.01 of probability mass that would otherwise go to
// M_{i+1} into a direct edge to Exit.
func BuildPrefixMatcher(h *HMM, flank string, errRate float64) *Segment {
	const leak = 0.01
	tag := "prefix"
	entry := h.addState(&State{Kind: KindFlankStart, Tag: tag})
	exit := h.addState(&State{Kind: KindFlankEnd, Tag: tag})

	inserts, matches, deletes, pIns, pDel, pMat := buildLinearColumns(h, flank, tag, errRate)
	L := len(flank)

	addEdge(entry, matches[1], pMat)
	addEdge(entry, deletes[1], pDel)
	addEdge(entry, inserts[0], pIns)

	for i := 1; i < L; i++ {
		reduceEdge(matches[i], matches[i+1], leak)
		addEdge(matches[i], exit, leak)
	}

	addEdge(matches[L], exit, 1-pIns)
	addEdge(matches[L], inserts[L], pIns)
	addEdge(deletes[L], exit, 1-pIns)
	addEdge(deletes[L], inserts[L], pIns)
	addEdge(inserts[L], inserts[L], pIns)
	addEdge(inserts[L], exit, 1-pIns)

	return &Segment{Tag: tag, Entry: entry, Exit: exit, Matches: matches[1:]}
}

// BuildSuffixMatcher appends a left-flank matcher to h: free at its left
// edge (a read may enter at any column, simulating partial flank coverage)
// but anchored at its right edge, tagged "suffix". Entry is
// distributed uniformly across every match column plus the standard
// D_1/I_0 leading edges.
func BuildSuffixMatcher(h *HMM, flank string, errRate float64) *Segment {
	tag := "suffix"
	entry := h.addState(&State{Kind: KindFlankStart, Tag: tag})
	exit := h.addState(&State{Kind: KindFlankEnd, Tag: tag})

	inserts, matches, deletes, pIns, pDel, pMat := buildLinearColumns(h, flank, tag, errRate)
	L := len(flank)

	perColumn := pMat / float64(L)
	for i := 1; i <= L; i++ {
		addEdge(entry, matches[i], perColumn)
	}
	addEdge(entry, deletes[1], pDel)
	addEdge(entry, inserts[0], pIns)

	addEdge(matches[L], exit, 1-pIns)
	addEdge(matches[L], inserts[L], pIns)
	addEdge(deletes[L], exit, 1-pIns)
	addEdge(deletes[L], inserts[L], pIns)
	addEdge(inserts[L], inserts[L], pIns)
	addEdge(inserts[L], exit, 1-pIns)

	return &Segment{Tag: tag, Entry: entry, Exit: exit, Matches: matches[1:]}
}
