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

	"github.com/pkg/errors"
)

// normTolerance is the acceptable drift from 1.0 for any out-edge or
// emission distribution.
const normTolerance = 1e-9

// Bake finalizes a constructed HMM: it assigns dense indices, builds reverse
// adjacency, verifies every normalization invariant, and computes the
// topological order of silent states that Decode needs for silent-state
// elimination. It must be called exactly once after a model's edges are
// fully wired and before any call to Decode.
func Bake(h *HMM) error {
	for i, s := range h.States {
		s.Index = i
		s.In = nil
	}
	// In reuses the Edge type in reverse: for a forward edge s -> e.To,
	// the entry appended to e.To.In has .To pointing back at s (the
	// predecessor), not at e.To itself. Decode relies on this.
	for _, s := range h.States {
		for _, e := range s.Out {
			e.To.In = append(e.To.In, Edge{To: s, Prob: e.Prob})
		}
	}

	if err := checkNormalization(h); err != nil {
		return err
	}

	order, err := silentTopoOrder(h)
	if err != nil {
		return err
	}
	h.SilentTopoOrder = order
	return nil
}

func checkNormalization(h *HMM) error {
	for _, s := range h.States {
		if s == h.End {
			continue // terminal state, no out-edges expected
		}
		sum := 0.0
		for _, e := range s.Out {
			sum += e.Prob
		}
		if len(s.Out) == 0 {
			return errors.Wrapf(ErrHmmConstruction, "state %s has no outgoing edges", s.Name())
		}
		if math.Abs(sum-1.0) > normTolerance {
			return errors.Wrapf(ErrHmmConstruction, "state %s out-edges sum to %g, want 1", s.Name(), sum)
		}
		if s.IsEmitting() {
			esum := s.Emission[0] + s.Emission[1] + s.Emission[2] + s.Emission[3]
			if math.Abs(esum-1.0) > normTolerance {
				return errors.Wrapf(ErrHmmConstruction, "state %s emission sums to %g, want 1", s.Name(), esum)
			}
		}
	}
	return nil
}

// silentTopoOrder returns every silent state of h ordered so that, for any
// two silent states a and b where an edge a->b exists, a precedes b. Decode
// relies on this order to resolve same-read-position score propagation
// among silent states in a single forward sweep.
func silentTopoOrder(h *HMM) ([]*State, error) {
	silent := make([]*State, 0, len(h.States))
	indeg := make(map[*State]int, len(h.States))
	for _, s := range h.States {
		if s.IsSilent() {
			silent = append(silent, s)
			indeg[s] = 0
		}
	}
	for _, s := range silent {
		for _, e := range s.Out {
			if e.To.IsSilent() {
				indeg[e.To]++
			}
		}
	}

	queue := make([]*State, 0, len(silent))
	for _, s := range silent {
		if indeg[s] == 0 {
			queue = append(queue, s)
		}
	}
	order := make([]*State, 0, len(silent))
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		order = append(order, s)
		for _, e := range s.Out {
			if !e.To.IsSilent() {
				continue
			}
			indeg[e.To]--
			if indeg[e.To] == 0 {
				queue = append(queue, e.To)
			}
		}
	}
	if len(order) != len(silent) {
		return nil, errors.Wrap(ErrHmmConstruction, "silent states form a cycle")
	}
	return order, nil
}
