// Copyright © 2018-2020 Wei Shen <shenwei356@gmail.com>
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

package cmd

import "github.com/bsokolov-bio/vntrhmm"

// flatCoverageModel is a stand-in vntrhmm.CoverageModel: a single
// genome-wide mean depth and no GC correction. Coverage estimation and
// GC-bias modeling are out of this module's scope; a real pipeline
// supplies its own CoverageModel (typically backed by a depth-of-coverage
// BED or a GC/coverage regression fit elsewhere).
type flatCoverageModel struct {
	mean float64
}

func (m flatCoverageModel) MeanCoverage() float64 { return m.mean }

func (m flatCoverageModel) GCScale(ref *vntrhmm.ReferenceVNTR, observedCN float64) float64 {
	return observedCN
}
