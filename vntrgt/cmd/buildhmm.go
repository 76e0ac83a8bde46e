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

// buildHMMCmd is a developer/debugging command in the spirit of
// `unikmer dump`: bake one locus's read-matcher HMM and print its shape
// without running any decoding.
var buildHMMCmd = &cobra.Command{
	Use:   "build-hmm",
	Short: "Bake and persist a read-matcher HMM for one locus, for inspection",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := buildConfig(cmd)
		catalogPath := getFlagString(cmd, "catalog")
		locusID := getFlagString(cmd, "locus")
		readLength := getFlagInt(cmd, "read-length")

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

		h, err := vntrhmm.ComposeReadMatcher(ref, readLength, cfg)
		checkError(err)

		fmt.Printf("states: %d\n", len(h.States))
		emitting, silent := 0, 0
		for _, s := range h.States {
			if s.IsEmitting() {
				emitting++
			} else {
				silent++
			}
		}
		fmt.Printf("emitting: %d  silent: %d  topo-ordered silent: %d\n", emitting, silent, len(h.SilentTopoOrder))

		if path := getFlagString(cmd, "out-file"); path != "" {
			checkError(vntrhmm.SaveHMM(path, h))
			log.Infof("wrote %s", path)
		}
	},
}

func init() {
	RootCmd.AddCommand(buildHMMCmd)

	buildHMMCmd.Flags().StringP("catalog", "c", "", "tab-separated VNTR reference catalog (required)")
	buildHMMCmd.Flags().StringP("locus", "", "", "VNTR ID to build (required)")
	buildHMMCmd.Flags().IntP("read-length", "l", 150, "read length to build for")
	buildHMMCmd.Flags().StringP("out-file", "o", "", "if set, persist the baked HMM here")
	buildHMMCmd.MarkFlagRequired("catalog")
	buildHMMCmd.MarkFlagRequired("locus")
}
