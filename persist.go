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
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/pgzip"
	"github.com/pkg/errors"
	"github.com/shenwei356/util/pathutil"
	"github.com/shenwei356/xopen"
)

// hmmMagic identifies a persisted HMM file; it is followed by a two-byte
// main/minor version header.
var hmmMagic = [8]byte{'v', 'n', 't', 'r', 'h', 'm', 'm', 0}

const (
	hmmMainVersion  uint8 = 1
	hmmMinorVersion uint8 = 0
)

type errWriter struct {
	w   io.Writer
	err error
}

// uint writes v as a length-prefixed variable-byte integer: state kinds,
// columns, and edge/state counts are almost always small, so this spends
// two or three bytes (a one-byte length prefix plus one or two value bytes)
// where a fixed-width int32 would spend four.
func (ew *errWriter) uint(v uint64) {
	if ew.err != nil {
		return
	}
	var buf [8]byte
	n := putUvarint(buf[:], v)
	ew.bytes([]byte{byte(n)})
	ew.bytes(buf[:n])
}

func (ew *errWriter) float64(v float64) {
	if ew.err != nil {
		return
	}
	ew.err = binary.Write(ew.w, binary.BigEndian, v)
}

func (ew *errWriter) bytes(b []byte) {
	if ew.err != nil {
		return
	}
	_, ew.err = ew.w.Write(b)
}

func (ew *errWriter) str(s string) {
	ew.uint(uint64(len(s)))
	ew.bytes([]byte(s))
}

// SaveHMM persists a baked HMM to path as a pgzip-compressed binary file.
// Write failures are returned to the caller to log, not treated as fatal
// by callers like ModelCache.
func SaveHMM(path string, h *HMM) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "creating hmm cache directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating hmm cache file")
	}
	defer f.Close()

	gz, err := pgzip.NewWriterLevel(f, pgzip.DefaultCompression)
	if err != nil {
		return errors.Wrap(err, "starting pgzip writer")
	}
	defer gz.Close()

	bw := bufio.NewWriter(gz)
	ew := &errWriter{w: bw}

	ew.bytes(hmmMagic[:])
	ew.bytes([]byte{hmmMainVersion, hmmMinorVersion})
	ew.str(h.Name)
	ew.uint(uint64(len(h.States)))
	ew.uint(uint64(h.Start.Index))
	ew.uint(uint64(h.End.Index))

	for _, s := range h.States {
		ew.uint(uint64(s.Kind))
		ew.uint(uint64(s.Column))
		ew.str(s.Tag)
		for _, p := range s.Emission {
			ew.float64(p)
		}
		ew.uint(uint64(len(s.Out)))
		for _, e := range s.Out {
			ew.uint(uint64(e.To.Index))
			ew.float64(e.Prob)
		}
	}
	if ew.err != nil {
		return errors.Wrap(ew.err, "writing hmm cache")
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "flushing hmm cache")
	}
	return nil
}

type errReader struct {
	r   io.Reader
	err error
}

// uint reads back a value written by errWriter.uint.
func (er *errReader) uint() uint64 {
	if er.err != nil {
		return 0
	}
	lenBuf := er.bytes(1)
	if er.err != nil {
		return 0
	}
	n := int(lenBuf[0])
	buf := er.bytes(n)
	if er.err != nil {
		return 0
	}
	return uvarint(buf, n)
}

func (er *errReader) float64() float64 {
	if er.err != nil {
		return 0
	}
	var v float64
	er.err = binary.Read(er.r, binary.BigEndian, &v)
	return v
}

func (er *errReader) bytes(n int) []byte {
	if er.err != nil {
		return nil
	}
	b := make([]byte, n)
	_, er.err = io.ReadFull(er.r, b)
	return b
}

func (er *errReader) str() string {
	n := er.uint()
	if er.err != nil {
		return ""
	}
	return string(er.bytes(int(n)))
}

// LoadHMM reads back a file written by SaveHMM and re-bakes it, so the
// returned HMM's SilentTopoOrder and In-edges are populated exactly as if
// it had just been built fresh. Returns ErrInvalidCache if the magic
// number or version header don't match this build.
func LoadHMM(path string) (*HMM, error) {
	exists, err := pathutil.Exists(path)
	if err != nil {
		return nil, errors.Wrap(err, "checking hmm cache file")
	}
	if !exists {
		return nil, errors.Wrap(ErrInvalidCache, "hmm cache file does not exist")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening hmm cache file")
	}
	defer f.Close()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return nil, errors.Wrap(err, "starting pgzip reader")
	}
	defer gz.Close()

	er := &errReader{r: bufio.NewReader(gz)}
	magic := er.bytes(8)
	if er.err != nil {
		return nil, errors.Wrap(er.err, "reading hmm cache header")
	}
	for i := range hmmMagic {
		if magic[i] != hmmMagic[i] {
			return nil, errors.Wrap(ErrInvalidCache, "hmm cache magic mismatch")
		}
	}
	version := er.bytes(2)
	if er.err != nil || version[0] != hmmMainVersion {
		return nil, errors.Wrap(ErrInvalidCache, "hmm cache version mismatch")
	}

	h := &HMM{Name: er.str()}
	nStates := int(er.uint())
	startIdx := int(er.uint())
	endIdx := int(er.uint())
	if er.err != nil {
		return nil, errors.Wrap(er.err, "reading hmm cache")
	}

	states := make([]*State, nStates)
	for i := range states {
		states[i] = &State{Index: i}
	}

	for i := 0; i < nStates; i++ {
		s := states[i]
		s.Kind = StateKind(er.uint())
		s.Column = int(er.uint())
		s.Tag = er.str()
		for k := range s.Emission {
			s.Emission[k] = er.float64()
		}
		nOut := int(er.uint())
		s.Out = make([]Edge, nOut)
		for k := 0; k < nOut; k++ {
			toIdx := int(er.uint())
			prob := er.float64()
			s.Out[k] = Edge{To: states[toIdx], Prob: prob}
		}
		if er.err != nil {
			return nil, errors.Wrap(er.err, "reading hmm cache state")
		}
	}

	h.States = states
	h.Start = states[startIdx]
	h.End = states[endIdx]

	if err := Bake(h); err != nil {
		return nil, errors.Wrap(err, "re-baking loaded hmm")
	}
	return h, nil
}

// ScoreCache persists per-(vntr,read length,fraction) null-calibration
// scores as plain text lines "<fraction> <score>", one file per
// (vntr, read length) pair.
type ScoreCache struct {
	Dir string
}

func (c *ScoreCache) path(vntrID string, readLength int) string {
	return filepath.Join(c.Dir, fmt.Sprintf("%s_%d.scores", vntrID, readLength))
}

const scoreFractionTolerance = 1e-9

// Load returns a previously cached score for (vntrID, readLength,
// fraction), or ok=false on a cache miss (missing file, unreadable file, or
// no matching fraction line) — never an error.
func (c *ScoreCache) Load(vntrID string, readLength int, fraction float64) (score float64, ok bool) {
	path := c.path(vntrID, readLength)
	exists, err := pathutil.Exists(path)
	if err != nil || !exists {
		return 0, false
	}
	r, err := xopen.Ropen(path)
	if err != nil {
		log.Debugf("score cache unreadable %s: %v", path, err)
		return 0, false
	}
	defer r.Close()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 2 {
			continue
		}
		f, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			continue
		}
		if math.Abs(f-fraction) > scoreFractionTolerance {
			continue
		}
		s, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			continue
		}
		return s, true
	}
	return 0, false
}

// Save appends a (fraction, score) line. Write failures are returned to
// the caller; MinAcceptScore logs them as a warning and keeps its
// computed threshold.
func (c *ScoreCache) Save(vntrID string, readLength int, fraction, score float64) error {
	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		return errors.Wrap(err, "creating score cache directory")
	}
	path := c.path(vntrID, readLength)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrap(err, "opening score cache file")
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "%.10g %.10g\n", fraction, score)
	return err
}
