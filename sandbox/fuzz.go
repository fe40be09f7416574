package sandbox

import (
	"math/rand/v2"
	"strings"

	"go.uber.org/zap"
)

const fuzzCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 _-.,:;!?"

// FuzzSource generates pseudo-random test inputs. A fixed seed makes
// the sequence reproducible; seed zero picks a random one, which is
// logged so a failing run can be replayed. Not safe for concurrent
// use; give each test its own source.
type FuzzSource struct {
	seed uint64
	rng  *rand.Rand
}

// NewFuzzSource creates a FuzzSource from the given seed.
func NewFuzzSource(seed uint64, logger *zap.Logger) *FuzzSource {
	if seed == 0 {
		seed = rand.Uint64()
	}
	if logger != nil {
		logger.Info("fuzz source seeded", zap.Uint64("seed", seed))
	}
	return &FuzzSource{
		seed: seed,
		rng:  rand.New(rand.NewPCG(seed, seed)),
	}
}

// Seed returns the seed in effect, for replaying a run.
func (f *FuzzSource) Seed() uint64 {
	return f.seed
}

// Bytes returns n random bytes.
func (f *FuzzSource) Bytes(n int) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(f.rng.UintN(256))
	}
	return buf
}

// String returns a random printable string of length n.
func (f *FuzzSource) String(n int) string {
	var b strings.Builder
	b.Grow(n)
	for range n {
		b.WriteByte(fuzzCharset[f.rng.IntN(len(fuzzCharset))])
	}
	return b.String()
}

// Lines returns n newline-terminated random lines of the given width.
func (f *FuzzSource) Lines(n, width int) string {
	var b strings.Builder
	for range n {
		b.WriteString(f.String(width))
		b.WriteByte('\n')
	}
	return b.String()
}
