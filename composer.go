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
	"fmt"
	"math"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// repeatReplication is how many times the reference's observed repeat
// segments are repeated before being handed to PriorsFromUnits, giving the
// pseudocount estimate more real signal relative to its Laplace baseline.
const repeatReplication = 100

// suffixEntryWeight and internalEntryWeight split the composed read
// matcher's entry mass between starting at the left flank and starting
// partway into the repeat region directly. Fixed design constants, not
// re-tuned here (DESIGN.md records the decision).
const (
	suffixEntryWeight   = 0.3
	internalEntryWeight = 0.7
	earlyTerminateMass  = 0.7
)

// CopiesForReadLength returns how many repeat-unit copies a read matcher
// needs to plausibly cover a read of readLength against a pattern of
// patternLen.
func CopiesForReadLength(readLength, patternLen int) int {
	if patternLen <= 0 {
		return 1
	}
	copies := int(math.Ceil(float64(readLength)/float64(patternLen) + 0.5))
	if copies < 1 {
		copies = 1
	}
	return copies
}

func replicateUnits(units []string, times int) []string {
	out := make([]string, 0, len(units)*times)
	for i := 0; i < times; i++ {
		out = append(out, units...)
	}
	return out
}

func lastN(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func firstN(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// TruncatedFlanks returns the same left/right flank substrings
// ComposeReadMatcher anchors its suffix/prefix matchers against for a read
// of readLength: the flankSize = readLength-10 (floored at 1) trailing
// bases of the left flank and leading bases of the right flank. Callers
// that score a path against the flanks directly (path-analysis diagnostics,
// not just Decode) must use these, not the full reference flank strings, or
// their column offsets will disagree with the matcher that produced the
// path.
func TruncatedFlanks(ref *ReferenceVNTR, readLength int) (left, right string) {
	flankSize := readLength - 10
	if flankSize < 1 {
		flankSize = 1
	}
	return lastN(ref.LeftFlankingRegion, flankSize), firstN(ref.RightFlankingRegion, flankSize)
}

// ComposeReadMatcher builds the full read-matching HMM for one VNTR at one
// read length: suffix_matcher(left flank) chained into a variable-copy
// repeat matcher chained into prefix_matcher(right flank), plus the
// internal-entry and early-termination edges that let a read start or end
// partway through the repeat region. The result is baked and ready for
// Decode. Column priors come from the reference's own catalogued repeat
// segments; RefineReadMatcher rebuilds the same shape from
// alignment-sharpened priors once reads have been decoded once.
func ComposeReadMatcher(ref *ReferenceVNTR, readLength int, cfg Config) (*HMM, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	units := replicateUnits(ref.RepeatSegments, repeatReplication)
	priors, err := PriorsFromUnits(units, ref.Pattern, cfg.MaxErrorRate)
	if err != nil {
		return nil, err
	}

	return composeReadMatcherFromPriors(ref, readLength, cfg, priors)
}

// RefineReadMatcher rebuilds ref's read matcher at readLength using
// ColumnPriors estimated from real decoded reads (PriorsFromAlignment)
// rather than the reference's own catalogued repeat segments, for a second
// decoding pass after an initial recruitment round — the
// alignment-informed build this module's hmm_utils.py lineage supports.
func RefineReadMatcher(ref *ReferenceVNTR, readLength int, cfg Config, priors *ColumnPriors) (*HMM, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	return composeReadMatcherFromPriors(ref, readLength, cfg, priors)
}

func composeReadMatcherFromPriors(ref *ReferenceVNTR, readLength int, cfg Config, priors *ColumnPriors) (*HMM, error) {
	leftFlank, rightFlank := TruncatedFlanks(ref, readLength)
	copies := CopiesForReadLength(readLength, len(ref.Pattern))

	h := NewHMM(fmt.Sprintf("%s_%d", ref.ID, readLength))

	suffix := BuildSuffixMatcher(h, leftFlank, cfg.MaxErrorRate)
	rs := BuildConstantCopyRepeatMatcher(h, priors, copies)
	repeat := BuildVariableCopyRepeatMatcher(h, rs)
	prefix := BuildPrefixMatcher(h, rightFlank, cfg.MaxErrorRate)

	addEdge(suffix.Exit, repeat.Entry, 1)
	addEdge(repeat.Exit, prefix.Entry, 1)
	addEdge(prefix.Exit, h.End, 1)

	addEdge(h.Start, suffix.Entry, suffixEntryWeight)
	perCopy := internalEntryWeight / float64(copies)
	for _, m := range rs.FirstMatches {
		addEdge(h.Start, m, perCopy)
	}

	n := len(repeat.Matches)
	if n > 0 {
		toEnd := earlyTerminateMass / float64(n)
		denom := 1 + toEnd
		for _, m := range repeat.Matches {
			for i := range m.Out {
				m.Out[i].Prob /= denom
			}
			addEdge(m, h.End, toEnd/denom)
		}
	}

	if err := Bake(h); err != nil {
		return nil, err
	}
	return h, nil
}

// ModelCache memoizes composed read matchers by (vntr ID, read length),
// spilling to the on-disk HMM cache when cfg.UseTrainedHMMs is set. It is
// safe for concurrent use by calibration and genotyping worker pools.
type ModelCache struct {
	mu     sync.Mutex
	models map[string]*HMM
}

// NewModelCache returns an empty cache.
func NewModelCache() *ModelCache {
	return &ModelCache{models: make(map[string]*HMM)}
}

func modelCacheKey(vntrID string, readLength int) string {
	return fmt.Sprintf("%s_%d", vntrID, readLength)
}

// Get returns the baked read matcher for ref at readLength, building it (and
// persisting it, if enabled) on first use.
func (c *ModelCache) Get(ref *ReferenceVNTR, readLength int, cfg Config) (*HMM, error) {
	key := modelCacheKey(ref.ID, readLength)

	c.mu.Lock()
	if h, ok := c.models[key]; ok {
		c.mu.Unlock()
		return h, nil
	}
	c.mu.Unlock()

	var path string
	if cfg.UseTrainedHMMs {
		path = filepath.Join(cfg.TrainedHMMsDir, key+".hmm")
		if h, err := LoadHMM(path); err == nil {
			c.mu.Lock()
			c.models[key] = h
			c.mu.Unlock()
			return h, nil
		} else if !errors.Is(err, ErrInvalidCache) {
			log.Debugf("hmm cache miss for %s: %v", key, err)
		}
	}

	h, err := ComposeReadMatcher(ref, readLength, cfg)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.models[key] = h
	c.mu.Unlock()

	if cfg.UseTrainedHMMs {
		if err := SaveHMM(path, h); err != nil {
			log.Warningf("failed writing hmm cache %s: %v", path, err)
		}
	}
	return h, nil
}
