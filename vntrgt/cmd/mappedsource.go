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

import (
	"bufio"
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shenwei356/xopen"

	"github.com/bsokolov-bio/vntrhmm"
)

// flatMappedReadSource implements vntrhmm.AlignedReadSource over a plain
// tab-separated fixture file: name, sequence, contig, reference_start,
// reference_end, unmapped("0"/"1"). BAM/SAM/CRAM parsing stays out of this
// module's scope; real deployments supply their own AlignedReadSource
// (e.g. backed by an htslib binding) and never need this type.
type flatMappedReadSource struct {
	Path string
}

func (s flatMappedReadSource) Fetch(ctx context.Context, contig string, start, end int) (<-chan vntrhmm.AlignedRead, error) {
	out := make(chan vntrhmm.AlignedRead, 64)
	if s.Path == "" {
		close(out)
		return out, nil
	}

	r, err := xopen.Ropen(s.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening mapped-read fixture %s", s.Path)
	}

	go func() {
		defer close(out)
		defer r.Close()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			fields := strings.Split(line, "\t")
			if len(fields) != 6 {
				log.Warningf("%s: expected 6 tab-separated fields, skipping line", s.Path)
				continue
			}
			if fields[2] != contig {
				continue
			}
			rs, err1 := strconv.Atoi(fields[3])
			re, err2 := strconv.Atoi(fields[4])
			if err1 != nil || err2 != nil {
				log.Warningf("%s: bad reference_start/reference_end, skipping line", s.Path)
				continue
			}
			if start != 0 || end != 0 {
				if re <= start || rs >= end {
					continue
				}
			}
			read := vntrhmm.AlignedRead{
				Name:           fields[0],
				Sequence:       strings.ToUpper(fields[1]),
				ReferenceName:  contig,
				ReferenceStart: rs,
				ReferenceEnd:   re,
				IsUnmapped:     fields[5] == "1",
			}
			select {
			case out <- read:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
