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
	"hash/fnv"
	"math"
	"sync"

	"github.com/pkg/errors"
	"github.com/twotwotwo/sorts"
	"github.com/twotwotwo/sorts/sortutil"
)

// sampleFractionModulus bounds the deterministic hash used to decide
// whether a read joins the null sample. Using a read's own name as the
// hash key, rather than math/rand, makes calibration reproducible across
// runs without threading a PRNG through the worker pool.
const sampleFractionModulus = 1000000007

func shouldSample(readName string, fraction float64) bool {
	h := fnv.New64a()
	h.Write([]byte(readName))
	v := h.Sum64() % sampleFractionModulus
	return float64(v)/float64(sampleFractionModulus) < fraction
}

func overlapsLocus(ref *ReferenceVNTR, contig string, r AlignedRead) bool {
	if contig != ref.Chromosome {
		return false
	}
	locusEnd := ref.StartPoint + ref.Length()
	return r.ReferenceStart < locusEnd && r.ReferenceEnd > ref.StartPoint
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := (p / 100.0) * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// minAcceptPercentile is the (100 - 1e-4)-th percentile of the null
// distribution: only the most extreme tail should score above a genuine
// VNTR's threshold.
const minAcceptPercentile = 100 - 1e-4

// MinAcceptScore computes the minimum Viterbi score a read of readLength
// must clear to be accepted for ref, by sampling the null distribution of
// scores non-VNTR reads earn against ref's matcher HMM. It
// checks scoreCache first and persists the result back to it when
// cfg.UseTrainedHMMs is set.
//
// Null sampling fans one goroutine out per chromosome in cfg.Chromosomes,
// bounded to cfg.Cores concurrent workers by a token semaphore, and
// collects per-read scores over a channel rather than a shared slice so
// the reduction (sort + percentile) stays commutative-associative
// regardless of completion order.
func MinAcceptScore(ctx context.Context, cache *ModelCache, scoreCache *ScoreCache, ref *ReferenceVNTR, readLength int, src AlignedReadSource, cfg Config) (float64, error) {
	if cfg.UseTrainedHMMs && scoreCache != nil {
		if score, ok := scoreCache.Load(ref.ID, readLength, cfg.ScoreFindingReadsFraction); ok {
			return score, nil
		}
	}

	hmm, err := cache.Get(ref, readLength, cfg)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan float64, 4*cfg.Cores)
	errs := make(chan error, len(cfg.Chromosomes))
	token := make(chan struct{}, cfg.Cores)
	var wg sync.WaitGroup

	for _, contig := range cfg.Chromosomes {
		contig := contig
		wg.Add(1)
		go func() {
			token <- struct{}{}
			defer func() {
				wg.Done()
				<-token
			}()
			reads, err := src.Fetch(ctx, contig, 0, 0)
			if err != nil {
				select {
				case errs <- errors.Wrapf(ErrAlignmentRead, "contig %s: %v", contig, err):
				default:
				}
				cancel()
				return
			}
			for r := range reads {
				select {
				case <-ctx.Done():
					return
				default:
				}
				if r.IsUnmapped || len(r.Sequence) != readLength {
					continue
				}
				if ContainsN(r.Sequence) {
					continue
				}
				if overlapsLocus(ref, contig, r) {
					continue
				}
				if !shouldSample(r.Name, cfg.ScoreFindingReadsFraction) {
					continue
				}
				_, path := SelectStrand(hmm, r.Sequence)
				select {
				case results <- path.LogProb:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var scores []float64
	for s := range results {
		scores = append(scores, s)
	}

	select {
	case err := <-errs:
		return 0, err
	default:
	}

	if len(scores) == 0 {
		log.Warningf("no null-sample reads collected for %s at read length %d", ref.ID, readLength)
		return negInf, nil
	}

	sorts.MaxProcs = cfg.Cores
	sortutil.Float64s(scores)
	threshold := percentile(scores, minAcceptPercentile)

	if cfg.UseTrainedHMMs && scoreCache != nil {
		if err := scoreCache.Save(ref.ID, readLength, cfg.ScoreFindingReadsFraction, threshold); err != nil {
			log.Warningf("failed writing score cache for %s: %v", ref.ID, err)
		}
	}
	return threshold, nil
}
