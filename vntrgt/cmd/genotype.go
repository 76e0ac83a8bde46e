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

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/bsokolov-bio/vntrhmm"
)

var genotypeCmd = &cobra.Command{
	Use:   "genotype",
	Short: "Genotype VNTR loci from unmapped and mapped reads",
	Long: `Genotype VNTR loci from unmapped and mapped reads

Reads a tab-separated VNTR catalog, composes/loads a matcher HMM per locus,
calibrates an acceptance threshold against a null read sample, and reports
a scaled copy number and any detected frameshift per locus.
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := buildConfig(cmd)
		catalogPath := getFlagString(cmd, "catalog")
		unmappedPath := getFlagString(cmd, "unmapped")
		mappedPath := getFlagString(cmd, "mapped")
		meanCoverage := getFlagFloat64(cmd, "mean-coverage")

		refs, err := loadCatalog(catalogPath)
		checkError(err)
		if len(refs) == 0 {
			checkError(fmt.Errorf("catalog %s contains no loci", catalogPath))
		}

		cache := vntrhmm.NewModelCache()
		scoreCache := &vntrhmm.ScoreCache{Dir: cfg.TrainedHMMsDir}
		mapped := flatMappedReadSource{Path: mappedPath}
		coverage := flatCoverageModel{mean: meanCoverage}

		// CandidateFilter pre-screening needs an externally supplied candidate
		// ID set (e.g. a keyword/BLAST pass); the CLI has no such input, so
		// every read reaches the HMM directly.
		var filter vntrhmm.CandidateFilter

		ctx := context.Background()
		fmt.Println("locus\tscaled_cn\tobserved_cn\tbp_unmapped\tbp_mapped\tframeshift")
		for _, ref := range refs {
			unmapped := vntrhmm.FastxUnmappedReadSource{Path: unmappedPath}
			result, err := vntrhmm.Genotype(ctx, cache, scoreCache, ref, unmapped, mapped, filter, coverage, cfg)
			if err != nil {
				log.Errorf("%s: %v", ref.ID, err)
				continue
			}
			frameshift := "-"
			if result.Frameshift != nil {
				frameshift = fmt.Sprintf("%s(%s)", result.Frameshift.StateLabel, humanize.Comma(int64(result.Frameshift.OccurrenceCount)))
			}
			fmt.Printf("%s\t%.3f\t%.3f\t%d\t%d\t%s\n",
				ref.ID, result.ScaledCopyNumber, result.ObservedCopyNumber,
				result.VNTRBPInUnmapped, result.VNTRBPInMapped, frameshift)
		}
	},
}

func init() {
	RootCmd.AddCommand(genotypeCmd)

	genotypeCmd.Flags().StringP("catalog", "c", "", "tab-separated VNTR reference catalog (required)")
	genotypeCmd.Flags().StringP("unmapped", "u", "", "unmapped reads FASTA/FASTQ file, optionally gzipped (required)")
	genotypeCmd.Flags().StringP("mapped", "m", "", "mapped-read fixture file (see DESIGN.md); empty disables mapped-read bp accumulation")
	genotypeCmd.Flags().Float64P("mean-coverage", "", 30, "genome-wide mean sequencing depth")
	genotypeCmd.MarkFlagRequired("catalog")
	genotypeCmd.MarkFlagRequired("unmapped")
}
