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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bsokolov-bio/vntrhmm"
)

// inspectPathCmd is a developer/debugging command in the spirit of
// `unikmer view`: decode a single read against a locus's matcher HMM and
// print the path-analysis statistics C5 derives from it.
var inspectPathCmd = &cobra.Command{
	Use:   "inspect-path",
	Short: "Decode one read against a locus and print its path statistics",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := buildConfig(cmd)
		catalogPath := getFlagString(cmd, "catalog")
		locusID := getFlagString(cmd, "locus")
		read := getFlagString(cmd, "read")

		refs, err := loadCatalog(catalogPath)
		checkError(err)

		var ref *vntrhmm.ReferenceVNTR
		for _, r := range refs {
			if r.ID == locusID {
				ref = r
				break
			}
		}
		if ref == nil {
			checkError(fmt.Errorf("locus %s not found in catalog %s", locusID, catalogPath))
		}

		h, err := vntrhmm.ComposeReadMatcher(ref, len(read), cfg)
		checkError(err)

		strand, path := vntrhmm.SelectStrand(h, read)
		leftFlank, rightFlank := vntrhmm.TruncatedFlanks(ref, len(read))
		fmt.Printf("strand: %s\n", strandLabel(strand, read))
		fmt.Printf("logp: %.4f\n", path.LogProb)
		fmt.Printf("repeats: %d\n", vntrhmm.NumberOfRepeats(path))
		fmt.Printf("repeat_bp_matches: %d\n", vntrhmm.RepeatBPMatches(path))
		fmt.Printf("repeat_unit_lengths: %v\n", vntrhmm.RepeatingPatternLengths(path))
		fmt.Printf("flank_match_rate: %.4f\n", vntrhmm.FlankMatchRate(path, strand, leftFlank, rightFlank, false))
		fmt.Printf("spanning: %v\n", vntrhmm.IsSpanning(path, strand, leftFlank, rightFlank))
	},
}

func strandLabel(selected, original string) string {
	if selected == original {
		return "forward"
	}
	return "reverse-complement"
}

func init() {
	RootCmd.AddCommand(inspectPathCmd)

	inspectPathCmd.Flags().StringP("catalog", "c", "", "tab-separated VNTR reference catalog (required)")
	inspectPathCmd.Flags().StringP("locus", "", "", "VNTR ID to decode against (required)")
	inspectPathCmd.Flags().StringP("read", "r", "", "read sequence to decode (required)")
	inspectPathCmd.MarkFlagRequired("catalog")
	inspectPathCmd.MarkFlagRequired("locus")
	inspectPathCmd.MarkFlagRequired("read")
}
