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

// Package vntrhmm builds and decodes profile HMMs that classify a short
// sequencing read against a VNTR's left flank, repeat unit, and right flank,
// and mines the decoded state path for copy number and indel statistics.
package vntrhmm

import (
	"fmt"
	"math"
)

// StateKind distinguishes the roles a State plays in the composed model as
// a tagged variant rather than a parsed string; Name() still derives the
// load-bearing string form on demand for persistence.
type StateKind int

const (
	KindStart StateKind = iota
	KindEnd
	KindMatch
	KindInsert
	KindDelete
	KindUnitStart
	KindUnitEnd
	KindFlankStart
	KindFlankEnd
	KindGatewayStart
	KindGatewayEnd
	KindRandomStart
	KindRandomEnd
)

// Edge is a weighted transition to another state.
type Edge struct {
	To   *State
	Prob float64
}

// State is one node of a ProfileHMM: either silent (no Emission) or
// emitting (Emission sums to 1 over A,C,G,T).
type State struct {
	Kind     StateKind
	Column   int    // column index for Match/Insert/Delete, copy index for UnitStart/UnitEnd
	Tag      string // "prefix", "suffix", or a repeat copy index as a string
	Emission [4]float64

	Out []Edge
	In  []Edge

	// Index is this state's position in HMM.States, assigned by Bake.
	Index int
}

// IsEmitting reports whether s advances the read position when entered.
func (s *State) IsEmitting() bool {
	switch s.Kind {
	case KindMatch, KindInsert, KindRandomStart, KindRandomEnd:
		return true
	}
	return false
}

// IsMatch reports whether s is a Match state (used by path analysis).
func (s *State) IsMatch() bool { return s.Kind == KindMatch }

// IsSilent reports whether s never advances the read position.
func (s *State) IsSilent() bool { return !s.IsEmitting() }

func baseIndex(b byte) int {
	switch b {
	case 'A':
		return 0
	case 'C':
		return 1
	case 'G':
		return 2
	case 'T':
		return 3
	}
	return -1
}

// LogEmit returns the log-probability of s emitting base b, or -Inf if b is
// outside {A,C,G,T} or s assigns it zero probability.
func (s *State) LogEmit(b byte) float64 {
	idx := baseIndex(b)
	if idx < 0 {
		return math.Inf(-1)
	}
	p := s.Emission[idx]
	if p <= 0 {
		return math.Inf(-1)
	}
	return math.Log(p)
}

// Name derives the load-bearing string name of s. Persistence and
// diagnostics use this; path analysis operates on Kind/Column/Tag directly.
func (s *State) Name() string {
	switch s.Kind {
	case KindStart:
		return "start"
	case KindEnd:
		return "end"
	case KindMatch:
		return fmt.Sprintf("M%d_%s", s.Column, s.Tag)
	case KindInsert:
		return fmt.Sprintf("I%d_%s", s.Column, s.Tag)
	case KindDelete:
		return fmt.Sprintf("D%d_%s", s.Column, s.Tag)
	case KindUnitStart:
		return fmt.Sprintf("unit_start_%d", s.Column)
	case KindUnitEnd:
		return fmt.Sprintf("unit_end_%d", s.Column)
	case KindFlankStart:
		return fmt.Sprintf("%s_start_%s", s.Tag, s.Tag)
	case KindFlankEnd:
		return fmt.Sprintf("%s_end_%s", s.Tag, s.Tag)
	case KindGatewayStart:
		return "start_repeating_pattern_match"
	case KindGatewayEnd:
		return "end_repeating_pattern_match"
	case KindRandomStart:
		return "start_random_matches"
	case KindRandomEnd:
		return "end_random_matches"
	}
	return "unknown"
}

// HMM is a directed graph of states with labeled transitions.
type HMM struct {
	Name   string
	Start  *State
	End    *State
	States []*State

	// SilentTopoOrder is a topological ordering of every silent state,
	// computed by Bake and required by Decode's silent-state elimination.
	SilentTopoOrder []*State
}

// NewHMM returns an empty model with its Start/End silent states already
// registered.
func NewHMM(name string) *HMM {
	h := &HMM{Name: name}
	h.Start = h.addState(&State{Kind: KindStart})
	h.End = h.addState(&State{Kind: KindEnd})
	return h
}

func (h *HMM) addState(s *State) *State {
	h.States = append(h.States, s)
	return s
}

func addEdge(from, to *State, prob float64) {
	from.Out = append(from.Out, Edge{To: to, Prob: prob})
}

// errorRates derives p_ins, p_del, p_mat from the per-column error budget.
func errorRates(errRate float64) (pIns, pDel, pMat float64) {
	pIns = 2 * errRate / 5
	pDel = errRate / 5
	pMat = 1 - pIns - pDel
	return
}

const (
	matchPeak       = 0.97
	matchBackground = 0.01
	insertUniform   = 0.25
)

func newMatchState(h *HMM, column int, tag string, consensus byte) *State {
	s := &State{Kind: KindMatch, Column: column, Tag: tag}
	for i, b := range bases {
		if b == consensus {
			s.Emission[i] = matchPeak
		} else {
			s.Emission[i] = matchBackground
		}
	}
	return h.addState(s)
}

func newInsertState(h *HMM, column int, tag string) *State {
	s := &State{Kind: KindInsert, Column: column, Tag: tag}
	for i := range s.Emission {
		s.Emission[i] = insertUniform
	}
	return h.addState(s)
}

func newDeleteState(h *HMM, column int, tag string) *State {
	return h.addState(&State{Kind: KindDelete, Column: column, Tag: tag})
}
