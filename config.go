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
	"runtime"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/shenwei356/natsort"
)

// Config carries the design constants of the read-matching HMM core. All
// fields have sane zero-value-safe defaults via NewConfig.
type Config struct {
	// MaxErrorRate sets p_ins = 2*MaxErrorRate/5 and p_del = MaxErrorRate/5
	// for every profile HMM column.
	MaxErrorRate float64

	// ScoreFindingReadsFraction is the acceptance rate for the null-score
	// sampler in calibration.
	ScoreFindingReadsFraction float64

	// Cores bounds the width of every worker pool's token semaphore.
	Cores int

	// UseTrainedHMMs enables on-disk HMM/score cache reuse.
	UseTrainedHMMs bool

	// Chromosomes is the canonical contig list null sampling iterates.
	Chromosomes []string

	// TrainedHMMsDir is the on-disk cache directory. May contain "~".
	TrainedHMMsDir string
}

// DefaultMaxErrorRate is the typical per-column error budget.
const DefaultMaxErrorRate = 0.05

// DefaultScoreFindingReadsFraction is the null-sample acceptance rate.
const DefaultScoreFindingReadsFraction = 0.001

// DefaultTrainedHMMsDir is used when no directory is configured.
const DefaultTrainedHMMsDir = "~/.vntrhmm/cache"

// DefaultChromosomes is the canonical human autosome + sex chromosome set.
var DefaultChromosomes = []string{
	"chr1", "chr2", "chr3", "chr4", "chr5", "chr6", "chr7", "chr8", "chr9", "chr10",
	"chr11", "chr12", "chr13", "chr14", "chr15", "chr16", "chr17", "chr18", "chr19", "chr20",
	"chr21", "chr22", "chrX", "chrY",
}

// NewConfig returns a Config populated with the design defaults, resolving
// TrainedHMMsDir's leading "~" the same way other cache paths in this
// ecosystem get resolved.
func NewConfig() (Config, error) {
	dir, err := homedir.Expand(DefaultTrainedHMMsDir)
	if err != nil {
		return Config{}, errors.Wrap(err, "expanding default cache directory")
	}
	cores := runtime.NumCPU()
	if cores < 1 {
		cores = 1
	}
	chromosomes := make([]string, len(DefaultChromosomes))
	copy(chromosomes, DefaultChromosomes)
	natsort.Sort(chromosomes)
	return Config{
		MaxErrorRate:              DefaultMaxErrorRate,
		ScoreFindingReadsFraction: DefaultScoreFindingReadsFraction,
		Cores:                     cores,
		UseTrainedHMMs:            true,
		Chromosomes:               chromosomes,
		TrainedHMMsDir:            dir,
	}, nil
}

// minRepeatBPToCountRepeats and minRepeatBPToAddRead gate whether an
// unmapped read's decoded repeat overlap counts toward copy number and
// whether it is retained for frameshift analysis. Fixed design constants,
// not user-configurable.
const (
	minRepeatBPToCountRepeats = 2
	minRepeatBPToAddRead      = 2
)
