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

// Package-local pure functions that mine a decoded VPath for copy-number
// and quality signals. None of these touch the HMM itself; they only walk
// the interior state sequence Decode returned.
package vntrhmm

// minRepeatAnchorBP is the minimum number of emitted bases a repeat-copy
// boundary must be adjacent to before it counts toward the repeat tally;
// shorter runs are presumed alignment noise rather than a real copy.
const minRepeatAnchorBP = 3

// flankRateEpsilon is the match rate assigned to a flank side with zero
// emitted bases when the caller asks for the strict (accuracy-filtered)
// variant of FlankMatchRate.
const flankRateEpsilon = 1e-5

type boundaryEvent struct {
	index   int
	isStart bool
}

func boundaryEvents(states []*State) []boundaryEvent {
	var events []boundaryEvent
	for i, s := range states {
		switch s.Kind {
		case KindUnitStart:
			events = append(events, boundaryEvent{i, true})
		case KindUnitEnd:
			events = append(events, boundaryEvent{i, false})
		}
	}
	return events
}

func emittedBetween(states []*State, a, b int) int {
	c := 0
	for k := a + 1; k < b; k++ {
		if states[k].IsEmitting() {
			c++
		}
	}
	return c
}

// NumberOfRepeats estimates how many repeat-unit copies a decoded path
// actually traversed by counting unit_start/unit_end boundary events
// anchored by at least minRepeatAnchorBP emitted bases away from the
// nearer edge of the whole emitted read — a unit_start needs that many
// bases still ahead of it, a unit_end needs that many bases already
// behind it — then correcting by one when the path looks truncated on
// both ends (an early end before the first real start, and a late start
// after the last real end).
func NumberOfRepeats(vpath VPath) int {
	readLength := 0
	for _, s := range vpath.States {
		if s.IsEmitting() {
			readLength++
		}
	}

	starts, ends := 0, 0
	firstStart, lastStart, firstEnd, lastEnd := -1, -1, -1, -1

	currentBP := 0
	for _, s := range vpath.States {
		if s.IsEmitting() {
			currentBP++
		}
		switch s.Kind {
		case KindUnitStart:
			if readLength-currentBP >= minRepeatAnchorBP {
				if firstStart == -1 {
					firstStart = currentBP
				}
				lastStart = currentBP
				starts++
			}
		case KindUnitEnd:
			if currentBP >= minRepeatAnchorBP {
				if firstEnd == -1 {
					firstEnd = currentBP
				}
				lastEnd = currentBP
				ends++
			}
		}
	}

	result := starts
	if ends > result {
		result = ends
	}
	if firstStart != -1 && firstEnd != -1 && firstEnd < firstStart && lastStart > lastEnd {
		result++
	}
	return result
}

// RepeatBPMatches counts emitted bases attributed to the repeat region
// itself, i.e. every emitting state that isn't tagged "prefix" or "suffix".
func RepeatBPMatches(vpath VPath) int {
	c := 0
	for _, s := range vpath.States {
		if s.IsEmitting() && s.Tag != "prefix" && s.Tag != "suffix" {
			c++
		}
	}
	return c
}

// RepeatingPatternLengths returns, for each unit_start boundary event
// directly followed by a unit_end event in visit order, the number of
// emitted bases between them — the per-copy lengths frameshift detection
// compares against len(pattern).
func RepeatingPatternLengths(vpath VPath) []int {
	events := boundaryEvents(vpath.States)
	if len(events) < 2 {
		return nil
	}
	lens := make([]int, 0, len(events)-1)
	for i := 1; i < len(events); i++ {
		if !events[i-1].isStart || events[i].isStart {
			continue
		}
		lens = append(lens, emittedBetween(vpath.States, events[i-1].index, events[i].index))
	}
	return lens
}

// emittedBaseAt recovers, for each interior state, the read base it
// emitted (zero byte for silent states), by walking vpath.States in order
// and consuming read left to right.
func emittedBaseAt(vpath VPath, read string) []byte {
	out := make([]byte, len(vpath.States))
	j := 0
	for i, s := range vpath.States {
		if s.IsEmitting() {
			if j < len(read) {
				out[i] = read[j]
			}
			j++
		}
	}
	return out
}

func flankCounts(vpath VPath, read, leftFlank, rightFlank string) (leftMatch, leftTotal, rightMatch, rightTotal int) {
	bases := emittedBaseAt(vpath, read)
	for i, s := range vpath.States {
		if !s.IsEmitting() {
			continue
		}
		col := s.Column - 1
		switch s.Tag {
		case "prefix":
			if col >= 0 && col < len(rightFlank) {
				rightTotal++
				if rightFlank[col] == bases[i] {
					rightMatch++
				}
			}
		case "suffix":
			if col >= 0 && col < len(leftFlank) {
				leftTotal++
				if leftFlank[col] == bases[i] {
					leftMatch++
				}
			}
		}
	}
	return
}

func sideRate(match, total int, strict bool) float64 {
	if total == 0 {
		if strict {
			return flankRateEpsilon
		}
		return 1.0
	}
	return float64(match) / float64(total)
}

// FlankMatchRate compares each prefix-tagged emission against rightFlank
// and each suffix-tagged emission against leftFlank, and returns the
// weaker of the two sides' match rates.
//
// strict selects the zero-emitted-side behavior, a design choice otherwise
// left open (DESIGN.md records the decision): false treats an untouched
// flank side as a neutral 1.0; true scores it at the near-zero floor
// flankRateEpsilon.
func FlankMatchRate(vpath VPath, read, leftFlank, rightFlank string, strict bool) float64 {
	leftMatch, leftTotal, rightMatch, rightTotal := flankCounts(vpath, read, leftFlank, rightFlank)
	rightRate := sideRate(rightMatch, rightTotal, strict)
	leftRate := sideRate(leftMatch, leftTotal, strict)
	if rightRate < leftRate {
		return rightRate
	}
	return leftRate
}

// minSpanningFlankBP is the emitted-base threshold per flank side a path
// must clear before a read is considered to span the VNTR rather than
// merely touch one edge of it.
const minSpanningFlankBP = 5

// IsSpanning reports whether vpath shows meaningful coverage of both the
// left and right flanks, not just the repeat interior.
func IsSpanning(vpath VPath, read, leftFlank, rightFlank string) bool {
	leftMatch, leftTotal, rightMatch, rightTotal := flankCounts(vpath, read, leftFlank, rightFlank)
	_ = leftMatch
	_ = rightMatch
	return leftTotal > minSpanningFlankBP && rightTotal > minSpanningFlankBP
}
