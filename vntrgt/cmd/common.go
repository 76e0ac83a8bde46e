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
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shenwei356/natsort"
	"github.com/shenwei356/xopen"
	"github.com/spf13/cobra"

	"github.com/bsokolov-bio/vntrhmm"
)

func getFlagString(cmd *cobra.Command, flag string) string {
	v, err := cmd.Flags().GetString(flag)
	checkError(errors.Wrapf(err, "flag --%s", flag))
	return v
}

func getFlagBool(cmd *cobra.Command, flag string) bool {
	v, err := cmd.Flags().GetBool(flag)
	checkError(errors.Wrapf(err, "flag --%s", flag))
	return v
}

func getFlagInt(cmd *cobra.Command, flag string) int {
	v, err := cmd.Flags().GetInt(flag)
	checkError(errors.Wrapf(err, "flag --%s", flag))
	return v
}

func getFlagFloat64(cmd *cobra.Command, flag string) float64 {
	v, err := cmd.Flags().GetFloat64(flag)
	checkError(errors.Wrapf(err, "flag --%s", flag))
	return v
}

// buildConfig assembles a vntrhmm.Config from RootCmd's persistent flags,
// the same "defaults then override from flags" idiom every subcommand here
// applies to its own opt structs.
func buildConfig(cmd *cobra.Command) vntrhmm.Config {
	cfg, err := vntrhmm.NewConfig()
	checkError(err)

	cfg.MaxErrorRate = getFlagFloat64(cmd, "max-error-rate")
	cfg.Cores = getFlagInt(cmd, "threads")
	if cfg.Cores < 1 {
		cfg.Cores = 1
	}
	cfg.UseTrainedHMMs = !getFlagBool(cmd, "no-cache")
	if dir := getFlagString(cmd, "cache-dir"); dir != "" {
		cfg.TrainedHMMsDir = dir
	}
	if list := getFlagString(cmd, "chromosomes"); list != "" {
		contigs := strings.Split(list, ",")
		natsort.Sort(contigs)
		cfg.Chromosomes = contigs
	}
	return cfg
}

// loadCatalog reads a tab-separated VNTR reference catalog:
//
//	id  chrom  start  pattern  left_flank  right_flank  repeat_segments(comma-separated)  [locus_sequence]
//
// Blank lines and lines starting with '#' are skipped. The eighth column is
// optional and only consulted when repeat_segments is blank: it gives the
// raw reference sequence spanning the repeat region, which
// vntrhmm.BootstrapRepeatSegments decodes to locate copies directly, for
// loci catalogued with only a consensus pattern.
func loadCatalog(path string) ([]*vntrhmm.ReferenceVNTR, error) {
	r, err := xopen.Ropen(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening catalog %s", path)
	}
	defer r.Close()

	var refs []*vntrhmm.ReferenceVNTR
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 7 && len(fields) != 8 {
			return nil, fmt.Errorf("catalog %s line %d: expected 7 or 8 tab-separated fields, got %d", path, lineNo, len(fields))
		}
		start, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, errors.Wrapf(err, "catalog %s line %d: start point", path, lineNo)
		}
		var segments []string
		if fields[6] != "" {
			segments = strings.Split(fields[6], ",")
		} else if len(fields) == 8 && fields[7] != "" {
			segments, err = vntrhmm.BootstrapRepeatSegments(fields[3], fields[7], vntrhmm.DefaultMaxErrorRate)
			if err != nil {
				return nil, errors.Wrapf(err, "catalog %s line %d: bootstrapping repeat segments", path, lineNo)
			}
		}
		refs = append(refs, &vntrhmm.ReferenceVNTR{
			ID:                  fields[0],
			Chromosome:          fields[1],
			StartPoint:          start,
			Pattern:             fields[3],
			LeftFlankingRegion:  fields[4],
			RightFlankingRegion: fields[5],
			RepeatSegments:      segments,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading catalog %s", path)
	}
	return refs, nil
}

func mustOpenStdoutOrFile(path string) *os.File {
	if path == "" || path == "-" {
		return os.Stdout
	}
	f, err := os.Create(path)
	checkError(errors.Wrapf(err, "creating %s", path))
	return f
}
