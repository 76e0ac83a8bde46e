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
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/pgzip"
)

func TestSaveLoadHMMRoundTrip(t *testing.T) {
	ref := smallRef()
	cfg := testConfig()
	h, err := ComposeReadMatcher(ref, 18, cfg)
	if err != nil {
		t.Fatalf("ComposeReadMatcher returned error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "vntr1_18.hmm")
	if err := SaveHMM(path, h); err != nil {
		t.Fatalf("SaveHMM returned error: %v", err)
	}

	loaded, err := LoadHMM(path)
	if err != nil {
		t.Fatalf("LoadHMM returned error: %v", err)
	}

	if loaded.Name != h.Name {
		t.Errorf("loaded.Name = %q, want %q", loaded.Name, h.Name)
	}
	if len(loaded.States) != len(h.States) {
		t.Fatalf("loaded has %d states, want %d", len(loaded.States), len(h.States))
	}

	leftFlank := lastN(ref.LeftFlankingRegion, 8)
	rightFlank := firstN(ref.RightFlankingRegion, 8)
	read := leftFlank + "ACGTACGT" + rightFlank

	before := Decode(h, read)
	after := Decode(loaded, read)
	if before.LogProb != after.LogProb {
		t.Errorf("Decode score after round-trip = %v, want %v (same as before persisting)", after.LogProb, before.LogProb)
	}
}

func TestLoadHMMMissingFile(t *testing.T) {
	_, err := LoadHMM(filepath.Join(t.TempDir(), "does-not-exist.hmm"))
	if !errors.Is(err, ErrInvalidCache) {
		t.Errorf("LoadHMM of a missing file returned %v, want ErrInvalidCache", err)
	}
}

// writePgzipPayload pgzip-compresses body and writes it to path, mimicking
// SaveHMM's container without going through the real state-serialization
// format — enough to drive LoadHMM's header checks.
func writePgzipPayload(path string, body []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	gz := pgzip.NewWriter(f)
	if _, err := gz.Write(body); err != nil {
		return err
	}
	return gz.Close()
}

func TestLoadHMMBadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wrong-magic.hmm")
	body := append([]byte("NOTMAGIC"), hmmMainVersion, hmmMinorVersion)
	if err := writePgzipPayload(path, body); err != nil {
		t.Fatalf("writePgzipPayload returned error: %v", err)
	}

	_, err := LoadHMM(path)
	if !errors.Is(err, ErrInvalidCache) {
		t.Errorf("LoadHMM of a file with the wrong magic returned %v, want ErrInvalidCache", err)
	}
}

func TestLoadHMMBadVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wrong-version.hmm")
	body := append(append([]byte{}, hmmMagic[:]...), 99, 0)
	if err := writePgzipPayload(path, body); err != nil {
		t.Fatalf("writePgzipPayload returned error: %v", err)
	}

	_, err := LoadHMM(path)
	if !errors.Is(err, ErrInvalidCache) {
		t.Errorf("LoadHMM of a file with an unsupported version returned %v, want ErrInvalidCache", err)
	}
}

func TestScoreCacheSaveLoadRoundTrip(t *testing.T) {
	cache := &ScoreCache{Dir: t.TempDir()}

	if _, ok := cache.Load("vntr1", 100, 0.001); ok {
		t.Error("Load on an empty cache returned ok=true, want false")
	}

	if err := cache.Save("vntr1", 100, 0.001, -42.5); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	score, ok := cache.Load("vntr1", 100, 0.001)
	if !ok {
		t.Fatal("Load returned ok=false after Save")
	}
	if score != -42.5 {
		t.Errorf("Load returned score %v, want -42.5", score)
	}

	if _, ok := cache.Load("vntr1", 100, 0.5); ok {
		t.Error("Load with a non-matching fraction returned ok=true, want false")
	}
}
