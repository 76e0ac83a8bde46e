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
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bsokolov-bio/vntrhmm"
)

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Sample the null score distribution and write the score cache",
	Long: `Sample the null score distribution and write the score cache

Runs the C6 null-sampling pass for every locus in a catalog at a given read
length, writing each computed acceptance threshold into the score cache so
a later 'genotype' run reuses it instead of resampling.
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := buildConfig(cmd)
		catalogPath := getFlagString(cmd, "catalog")
		mappedPath := getFlagString(cmd, "mapped")
		readLength := getFlagInt(cmd, "read-length")

		refs, err := loadCatalog(catalogPath)
		checkError(err)

		cache := vntrhmm.NewModelCache()
		scoreCache := &vntrhmm.ScoreCache{Dir: cfg.TrainedHMMsDir}
		mapped := flatMappedReadSource{Path: mappedPath}
		ctx := context.Background()

		for _, ref := range refs {
			threshold, err := vntrhmm.MinAcceptScore(ctx, cache, scoreCache, ref, readLength, mapped, cfg)
			if err != nil {
				log.Errorf("%s: %v", ref.ID, err)
				continue
			}
			fmt.Printf("%s\t%d\t%.6f\n", ref.ID, readLength, threshold)
		}
	},
}

func init() {
	RootCmd.AddCommand(calibrateCmd)

	calibrateCmd.Flags().StringP("catalog", "c", "", "tab-separated VNTR reference catalog (required)")
	calibrateCmd.Flags().StringP("mapped", "m", "", "mapped-read fixture file to sample the null distribution from (required)")
	calibrateCmd.Flags().IntP("read-length", "l", 150, "read length to calibrate for")
	calibrateCmd.MarkFlagRequired("catalog")
	calibrateCmd.MarkFlagRequired("mapped")
}
