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

import "errors"

// ErrInvalidReference means a ReferenceVNTR is missing a pattern, flank, or
// repeat segment needed to build a matcher HMM.
var ErrInvalidReference = errors.New("vntrhmm: invalid reference VNTR")

// ErrHmmConstruction means a baked HMM failed one of Bake's structural
// checks: a state with no out-edges, out-edges or emissions that do not sum
// to 1, or a cycle among silent states. This indicates a bug in the HMM
// assembly, not bad input.
var ErrHmmConstruction = errors.New("vntrhmm: hmm construction invariant violated")

// ErrAlignmentRead means the aligned-reads source failed while sampling the
// null distribution; the VNTR's threshold cannot be computed.
var ErrAlignmentRead = errors.New("vntrhmm: failed reading from alignment source")

// ErrInvalidCache means a persisted HMM or score cache file exists but its
// header does not match what this build expects.
var ErrInvalidCache = errors.New("vntrhmm: invalid cache file format")
