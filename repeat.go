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
	"strconv"

	"github.com/pkg/errors"
)

// ColumnPriors holds the per-column base-emission distribution a repeat
// copy's Match states are built from, plus the shared transition rates.
// Build one with PriorsFromUnits for a fresh model, or PriorsFromAlignment
// once reads have already been decoded once and their repeat segments
// multiply aligned.
type ColumnPriors struct {
	Pattern  string
	Emission [][4]float64
	PIns     float64
	PDel     float64
	PMat     float64
}

// pseudocountWeight is how strongly an observed unit outvotes the uniform
// Laplace pseudocount baseline when estimating a column's base frequencies.
const pseudocountWeight = 10.0

// PriorsFromUnits estimates ColumnPriors from the reference's own repeat
// segments: a per-column base frequency table built with Laplace
// pseudocounts, smoothing against motif copies too short or mutated to be
// directly usable. Only segments whose length matches len(pattern)
// contribute to the per-column tally; shorter or longer copies still count
// toward the pattern's consensus length choice made by the caller.
func PriorsFromUnits(units []string, pattern string, errRate float64) (*ColumnPriors, error) {
	if pattern == "" {
		return nil, ErrInvalidReference
	}
	L := len(pattern)
	counts := make([][4]float64, L)
	for i := range counts {
		counts[i] = [4]float64{1, 1, 1, 1}
	}
	for _, u := range units {
		if len(u) != L {
			continue
		}
		for i := 0; i < L; i++ {
			idx := baseIndex(u[i])
			if idx < 0 {
				continue
			}
			counts[i][idx] += pseudocountWeight
		}
	}
	emission := make([][4]float64, L)
	for i := 0; i < L; i++ {
		sum := counts[i][0] + counts[i][1] + counts[i][2] + counts[i][3]
		for b := 0; b < 4; b++ {
			emission[i][b] = counts[i][b] / sum
		}
	}
	pIns, pDel, pMat := errorRates(errRate)
	return &ColumnPriors{Pattern: pattern, Emission: emission, PIns: pIns, PDel: pDel, PMat: pMat}, nil
}

// PriorsFromAlignment builds ColumnPriors from repeat segments that have
// already been extracted from decoded reads and brought to len(pattern)
// columns by AlignRepeatSegments, refining the fresh reference-only
// estimate with what reads actually show at each column.
func PriorsFromAlignment(alignedSegments []string, pattern string, errRate float64) (*ColumnPriors, error) {
	return PriorsFromUnits(alignedSegments, pattern, errRate)
}

func buildPriorColumns(h *HMM, priors *ColumnPriors, tag string) (inserts, matches, deletes []*State) {
	L := len(priors.Emission)
	inserts = make([]*State, L+1)
	matches = make([]*State, L+1)
	deletes = make([]*State, L+1)
	for i := 0; i <= L; i++ {
		inserts[i] = newInsertState(h, i, tag)
	}
	for i := 1; i <= L; i++ {
		m := &State{Kind: KindMatch, Column: i, Tag: tag, Emission: priors.Emission[i-1]}
		matches[i] = h.addState(m)
		deletes[i] = newDeleteState(h, i, tag)
	}
	pIns, pDel, pMat := priors.PIns, priors.PDel, priors.PMat
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

// RepeatSegment is a chain of `copies` identical repeat-unit columns, each
// bracketed by a silent unit_start_k/unit_end_k pair.
type RepeatSegment struct {
	Segment
	UnitStarts   []*State
	UnitEnds     []*State
	FirstMatches []*State // M_1 of each copy, for internal-entry wiring
}

// BuildConstantCopyRepeatMatcher appends a fixed-length chain of `copies`
// repeat-unit columns to h, linking unit_end_k to unit_start_{k+1} with
// probability 1. Its Entry is unit_start_0 and its Exit is the last copy's
// unit_end, left with no outgoing edge for the caller to wire onward.
func BuildConstantCopyRepeatMatcher(h *HMM, priors *ColumnPriors, copies int) *RepeatSegment {
	L := len(priors.Emission)
	unitStarts := make([]*State, copies)
	unitEnds := make([]*State, copies)
	firstMatches := make([]*State, copies)
	allMatches := make([]*State, 0, copies*L)

	for k := 0; k < copies; k++ {
		tag := strconv.Itoa(k)
		unitStarts[k] = h.addState(&State{Kind: KindUnitStart, Column: k})
		unitEnds[k] = h.addState(&State{Kind: KindUnitEnd, Column: k})

		inserts, matches, deletes := buildPriorColumns(h, priors, tag)

		addEdge(unitStarts[k], matches[1], priors.PMat)
		addEdge(unitStarts[k], deletes[1], priors.PDel)
		addEdge(unitStarts[k], inserts[0], priors.PIns)

		addEdge(matches[L], unitEnds[k], 1-priors.PIns)
		addEdge(matches[L], inserts[L], priors.PIns)
		addEdge(deletes[L], unitEnds[k], 1-priors.PIns)
		addEdge(deletes[L], inserts[L], priors.PIns)
		addEdge(inserts[L], inserts[L], priors.PIns)
		addEdge(inserts[L], unitEnds[k], 1-priors.PIns)

		firstMatches[k] = matches[1]
		allMatches = append(allMatches, matches[1:]...)
		if k > 0 {
			addEdge(unitEnds[k-1], unitStarts[k], 1)
		}
	}

	seg := Segment{Tag: "repeat", Entry: unitStarts[0], Exit: unitEnds[copies-1], Matches: allMatches}
	return &RepeatSegment{Segment: seg, UnitStarts: unitStarts, UnitEnds: unitEnds, FirstMatches: firstMatches}
}

// BuildVariableCopyRepeatMatcher wraps a constant-copy chain with silent
// gateway states so a read can leave after any copy instead of only the
// last one. start_repeating_pattern_match becomes the chain's
// new Entry; every unit_end_k sends half its outgoing mass (or, for the
// last copy which has none yet, all of it) to end_repeating_pattern_match,
// which becomes the chain's new Exit.
func BuildVariableCopyRepeatMatcher(h *HMM, rs *RepeatSegment) *Segment {
	gatewayStart := h.addState(&State{Kind: KindGatewayStart})
	gatewayEnd := h.addState(&State{Kind: KindGatewayEnd})

	addEdge(gatewayStart, rs.Entry, 1)

	for _, ue := range rs.UnitEnds {
		if len(ue.Out) == 0 {
			addEdge(ue, gatewayEnd, 1)
			continue
		}
		for i := range ue.Out {
			ue.Out[i].Prob *= 0.5
		}
		addEdge(ue, gatewayEnd, 0.5)
	}

	return &Segment{Tag: "repeat", Entry: gatewayStart, Exit: gatewayEnd, Matches: rs.Matches}
}

// randomBackgroundSelfLoop is the self-loop weight of the flanking
// background states in BuildReferenceRepeatFinderHMM. It is a fixed
// modeling constant rather than one derived from the error rate, mirroring
// the bootstrap finder this is grounded on.
const randomBackgroundSelfLoop = 0.98

// BuildReferenceRepeatFinderHMM builds a standalone model used to locate a
// candidate tandem repeat inside an arbitrary reference stretch before a
// ReferenceVNTR's flanks are known: background states that emit uniformly
// and self-loop, bracketing a constant-copy repeat matcher built fresh from
// the pattern itself. This supplements the read-matching core with a
// reference-side discovery step a minimal read-matcher alone would omit.
func BuildReferenceRepeatFinderHMM(pattern string, errRate float64, copies int) (*HMM, error) {
	priors, err := PriorsFromUnits([]string{pattern}, pattern, errRate)
	if err != nil {
		return nil, err
	}

	h := NewHMM("repeat-finder:" + pattern)
	randomStart := h.addState(&State{Kind: KindRandomStart})
	randomEnd := h.addState(&State{Kind: KindRandomEnd})
	for i := range randomStart.Emission {
		randomStart.Emission[i] = insertUniform
		randomEnd.Emission[i] = insertUniform
	}

	rs := BuildConstantCopyRepeatMatcher(h, priors, copies)

	addEdge(h.Start, randomStart, 1)
	addEdge(randomStart, randomStart, randomBackgroundSelfLoop)
	addEdge(randomStart, rs.Entry, 1-randomBackgroundSelfLoop)

	addEdge(rs.Exit, randomEnd, 1)
	addEdge(randomEnd, randomEnd, randomBackgroundSelfLoop)
	addEdge(randomEnd, h.End, 1-randomBackgroundSelfLoop)

	if err := Bake(h); err != nil {
		return nil, err
	}
	return h, nil
}

// BootstrapRepeatSegments locates repeat-unit copies directly in a raw
// genomic stretch (the repeat region itself, with or without surrounding
// flank) using BuildReferenceRepeatFinderHMM, for loci where only a
// consensus pattern is known and no pre-split repeat segments have been
// catalogued yet. The returned segments are suitable for ReferenceVNTR's
// RepeatSegments field and for a further PriorsFromUnits/PriorsFromAlignment
// pass.
func BootstrapRepeatSegments(pattern, genomicSequence string, errRate float64) ([]string, error) {
	if pattern == "" || genomicSequence == "" {
		return nil, ErrInvalidReference
	}
	copies := CopiesForReadLength(len(genomicSequence), len(pattern))
	h, err := BuildReferenceRepeatFinderHMM(pattern, errRate, copies)
	if err != nil {
		return nil, err
	}
	vp := Decode(h, genomicSequence)
	if vp.LogProb == negInf {
		return nil, errors.Wrap(ErrInvalidReference, "no repeat copies located in the given sequence")
	}
	segments := ExtractRepeatSegments(vp, genomicSequence)
	if len(segments) == 0 {
		return nil, errors.Wrap(ErrInvalidReference, "no repeat copies located in the given sequence")
	}
	return segments, nil
}
