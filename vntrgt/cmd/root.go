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
	"os"
	"runtime"

	"github.com/shenwei356/go-logging"
	"github.com/spf13/cobra"
)

var log = logging.MustGetLogger("vntrgt")

// VERSION is set at build time via -ldflags, left unset in source control.
var VERSION = "dev"

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "vntrgt",
	Short: "HMM-based VNTR genotyper",
	Long: fmt.Sprintf(`vntrgt - profile-HMM VNTR genotyper

A command-line toolkit for composing per-locus profile HMMs from a VNTR
reference catalog, calibrating per-locus acceptance thresholds against a
null read sample, and genotyping copy number and frameshifts from
mapped and unmapped sequencing reads.

Version: %s

Author: Wei Shen <shenwei356@gmail.com>

`, VERSION),
}

// Execute adds all child commands to RootCmd and runs it. Called once from
// main.main.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}

func init() {
	defaultThreads := runtime.NumCPU()
	RootCmd.PersistentFlags().IntP("threads", "j", defaultThreads, "number of CPUs to use")
	RootCmd.PersistentFlags().BoolP("verbose", "", false, "accepted but ignored; does not change what is logged")
	RootCmd.PersistentFlags().Float64P("max-error-rate", "e", 0.05, "per-column substitution/insertion/deletion budget")
	RootCmd.PersistentFlags().BoolP("no-cache", "", false, "disable the on-disk trained HMM/score cache")
	RootCmd.PersistentFlags().StringP("cache-dir", "", "", "trained HMM/score cache directory (default: ~/.vntrhmm/cache)")
	RootCmd.PersistentFlags().StringP("chromosomes", "", "", "comma-separated contig list for null sampling (default: chr1..chr22,chrX,chrY)")
}

func checkError(err error) {
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
