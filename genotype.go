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
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
)

// thresholdCache memoizes MinAcceptScore per read length within a single
// Genotype call, since building the null sample is far more expensive than
// decoding any one read against it.
type thresholdCache struct {
	mu     sync.Mutex
	values map[int]float64
}

func (tc *thresholdCache) get(ctx context.Context, cache *ModelCache, scoreCache *ScoreCache, ref *ReferenceVNTR, length int, mapped AlignedReadSource, cfg Config) (float64, error) {
	tc.mu.Lock()
	if v, ok := tc.values[length]; ok {
		tc.mu.Unlock()
		return v, nil
	}
	tc.mu.Unlock()

	v, err := MinAcceptScore(ctx, cache, scoreCache, ref, length, mapped, cfg)
	if err != nil {
		return 0, err
	}
	tc.mu.Lock()
	tc.values[length] = v
	tc.mu.Unlock()
	return v, nil
}

type unmappedOutcome struct {
	bp      int
	retained *SelectedRead
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Genotype is the read-genotyping driver: it scores every
// N-free candidate read against ref's matcher HMM, accumulates repeat base
// pairs from both the unmapped candidate pool and mapped reads overlapping
// the locus, and turns the total into a scaled copy number plus an
// optional frameshift call.
//
// filter and coverage may be nil: a nil filter disables candidate
// pre-screening (every unmapped read is considered), and a nil coverage
// model leaves ObservedCopyNumber and ScaledCopyNumber at 0 rather than
// dividing by an unknown depth.
func Genotype(ctx context.Context, cache *ModelCache, scoreCache *ScoreCache, ref *ReferenceVNTR, unmapped UnmappedReadSource, mapped AlignedReadSource, filter CandidateFilter, coverage CoverageModel, cfg Config) (*Result, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tc := &thresholdCache{values: make(map[int]float64)}
	token := make(chan struct{}, cfg.Cores)
	results := make(chan unmappedOutcome, 4*cfg.Cores)
	errs := make(chan error, 1)
	var wg sync.WaitGroup

	reads, err := unmapped.Reads(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "reading unmapped candidate source")
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for r := range reads {
			if len(r.Sequence) == 0 || ContainsN(r.Sequence) {
				continue
			}
			if filter != nil && !filter.Contains(r.ID) {
				continue
			}
			r := r
			token <- struct{}{}
			wg.Add(1)
			go func() {
				defer func() {
					wg.Done()
					<-token
				}()
				outcome, err := scoreUnmappedRead(ctx, cache, scoreCache, tc, ref, r, mapped, cfg)
				if err != nil {
					select {
					case errs <- err:
					default:
					}
					cancel()
					return
				}
				if outcome == nil {
					return
				}
				select {
				case results <- *outcome:
				case <-ctx.Done():
				}
			}()
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	vntrBPUnmapped := 0
	var retained []SelectedRead
	for o := range results {
		vntrBPUnmapped += o.bp
		if o.retained != nil {
			retained = append(retained, *o.retained)
		}
	}

	select {
	case err := <-errs:
		return nil, err
	default:
	}

	retained, observedRepeats := refineFromAlignment(ref, cfg, retained)

	vntrBPMapped, flankedRepeats, err := scoreMappedOverlap(ctx, cache, scoreCache, tc, ref, mapped, cfg)
	if err != nil {
		return nil, err
	}

	patternOccurrences := float64(vntrBPUnmapped+vntrBPMapped) / float64(len(ref.Pattern))
	var observedCN, scaledCN float64
	if coverage != nil {
		if mean := coverage.MeanCoverage(); mean > 0 {
			observedCN = patternOccurrences / mean
		}
		scaledCN = coverage.GCScale(ref, observedCN)
	}

	return &Result{
		ScaledCopyNumber:   scaledCN,
		ObservedCopyNumber: observedCN,
		Frameshift:         FindFrameshift(retained, ref),
		VNTRBPInMapped:     vntrBPMapped,
		VNTRBPInUnmapped:   vntrBPUnmapped,
		ObservedRepeats:    observedRepeats,
		FlankedRepeats:     flankedRepeats,
	}, nil
}

// refineFromAlignment runs the alignment-informed second decoding pass: it
// pools the repeat segments the first pass's retained reads decoded, gap-
// pads them to a common length, and re-estimates ColumnPriors from what
// those reads actually show at each column rather than from ref's own
// catalogued segments alone. Reads are then redecoded against a matcher
// rebuilt from the sharpened priors (one rebuild per distinct read length),
// so the returned observedRepeats counts reflect the refined segmentation.
// Falls back to the first pass's own paths/counts if too few segments were
// extracted to refine, or if rebuilding a refined matcher fails.
func refineFromAlignment(ref *ReferenceVNTR, cfg Config, retained []SelectedRead) ([]SelectedRead, []int) {
	asIs := func() ([]SelectedRead, []int) {
		observed := make([]int, len(retained))
		for i, sr := range retained {
			observed[i] = NumberOfRepeats(sr.Path)
		}
		return retained, observed
	}

	var segments []string
	for _, sr := range retained {
		segments = append(segments, ExtractRepeatSegments(sr.Path, sr.Sequence)...)
	}
	if len(segments) == 0 {
		return asIs()
	}

	aligned := AlignRepeatSegments(segments, ref.Pattern)
	priors, err := PriorsFromAlignment(aligned, ref.Pattern, cfg.MaxErrorRate)
	if err != nil {
		return asIs()
	}

	refined := make(map[int]*HMM)
	out := make([]SelectedRead, len(retained))
	observed := make([]int, len(retained))
	for i, sr := range retained {
		h, ok := refined[len(sr.Sequence)]
		if !ok {
			h, err = RefineReadMatcher(ref, len(sr.Sequence), cfg, priors)
			if err != nil {
				out[i] = sr
				observed[i] = NumberOfRepeats(sr.Path)
				continue
			}
			refined[len(sr.Sequence)] = h
		}
		path := Decode(h, sr.Sequence)
		out[i] = SelectedRead{Sequence: sr.Sequence, Score: path.LogProb, Path: path}
		observed[i] = NumberOfRepeats(path)
	}
	return out, observed
}

// scoreUnmappedRead implements the per-read acceptance gate: strand
// selection, threshold rejection, and the two repeat-bp-match bars that
// decide whether a read counts toward copy number at all and whether it is
// additionally retained for frameshift analysis.
func scoreUnmappedRead(ctx context.Context, cache *ModelCache, scoreCache *ScoreCache, tc *thresholdCache, ref *ReferenceVNTR, r UnmappedRead, mapped AlignedReadSource, cfg Config) (*unmappedOutcome, error) {
	hmm, err := cache.Get(ref, len(r.Sequence), cfg)
	if err != nil {
		return nil, err
	}
	bestSeq, path := SelectStrand(hmm, r.Sequence)

	threshold, err := tc.get(ctx, cache, scoreCache, ref, len(r.Sequence), mapped, cfg)
	if err != nil {
		return nil, err
	}
	if path.LogProb <= threshold {
		return nil, nil
	}

	matches := RepeatBPMatches(path)
	if matches <= minRepeatBPToCountRepeats {
		return nil, nil
	}

	outcome := &unmappedOutcome{bp: matches}
	if matches > minRepeatBPToAddRead {
		outcome.retained = &SelectedRead{Sequence: bestSeq, Score: path.LogProb, Path: path}
	}
	return outcome, nil
}

// scoreMappedOverlap tallies repeat base pairs from reads already mapped
// over ref's locus, rejecting low-quality reads the same threshold would
// reject from the unmapped pool.
func scoreMappedOverlap(ctx context.Context, cache *ModelCache, scoreCache *ScoreCache, tc *thresholdCache, ref *ReferenceVNTR, mapped AlignedReadSource, cfg Config) (int, []int, error) {
	locusEnd := ref.StartPoint + ref.Length()
	reads, err := mapped.Fetch(ctx, ref.Chromosome, ref.StartPoint, locusEnd)
	if err != nil {
		return 0, nil, errors.Wrap(err, "fetching mapped reads over locus")
	}

	bp := 0
	var flankedRepeats []int
	for r := range reads {
		if r.IsUnmapped || len(r.Sequence) == 0 || ContainsN(r.Sequence) {
			continue
		}
		overlap := minInt(r.ReferenceEnd, locusEnd) - maxInt(r.ReferenceStart, ref.StartPoint)
		if overlap <= 0 {
			continue
		}
		hmm, err := cache.Get(ref, len(r.Sequence), cfg)
		if err != nil {
			continue
		}
		_, path := SelectStrand(hmm, r.Sequence)
		threshold, err := tc.get(ctx, cache, scoreCache, ref, len(r.Sequence), mapped, cfg)
		if err != nil {
			continue
		}
		if path.LogProb <= threshold {
			continue
		}
		bp += overlap
		flankedRepeats = append(flankedRepeats, NumberOfRepeats(path))
	}
	return bp, flankedRepeats, nil
}

// frameshiftBarDivisor sets the acceptance bar at average repeat-bp coverage
// divided by 3: a candidate indel must recur roughly a third as often as
// the average copy is observed before it is reported.
const frameshiftBarDivisor = 3.0

// FindFrameshift aggregates insertion/deletion events across retained
// reads' decoded paths, restricted to repeat copies whose emitted length
// differs from len(ref.Pattern), and reports the most frequent
// single event if it clears the coverage-scaled bar.
func FindFrameshift(retained []SelectedRead, ref *ReferenceVNTR) *FrameshiftReport {
	patLen := len(ref.Pattern)
	counts := make(map[string]int)
	totalRepeatBP := 0

	for _, sr := range retained {
		totalRepeatBP += RepeatBPMatches(sr.Path)
		bases := emittedBaseAt(sr.Path, sr.Sequence)
		events := boundaryEvents(sr.Path.States)
		for i := 1; i < len(events); i++ {
			a, b := events[i-1].index, events[i].index
			if emittedBetween(sr.Path.States, a, b) == patLen {
				continue
			}
			for k := a + 1; k < b; k++ {
				s := sr.Path.States[k]
				switch s.Kind {
				case KindInsert:
					counts[fmt.Sprintf("I%d_%s:%c", s.Column, s.Tag, bases[k])]++
				case KindDelete:
					counts[fmt.Sprintf("D%d_%s", s.Column, s.Tag)]++
				}
			}
		}
	}

	if len(counts) == 0 {
		return nil
	}
	vntrLength := ref.Length()
	if vntrLength == 0 {
		return nil
	}

	var bestLabel string
	bestCount := 0
	for label, c := range counts {
		if c > bestCount || (c == bestCount && label < bestLabel) {
			bestCount = c
			bestLabel = label
		}
	}

	bar := (float64(totalRepeatBP) / float64(vntrLength)) / frameshiftBarDivisor
	if float64(bestCount) <= bar {
		return nil
	}
	return &FrameshiftReport{StateLabel: bestLabel, OccurrenceCount: bestCount}
}
