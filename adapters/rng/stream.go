package rng

import (
	"gonum.org/v1/gonum/mathext/prng"

	"transportcore/ports"
)

// golden is the 64-bit golden-ratio increment used to spread history indices
const golden = 0x9e3779b97f4a7c15

// Stream is an MT19937 random stream that counts its draws
type Stream struct {
	src   *prng.MT19937
	draws uint64
}

// NewStream creates a stream seeded from seed
func NewStream(seed uint64) *Stream {
	src := prng.NewMT19937()
	src.Seed(seed)
	return &Stream{src: src}
}

// Uint64 returns 64 uniform bits
func (s *Stream) Uint64() uint64 {
	s.draws++
	return s.src.Uint64()
}

// Float64 returns a uniform value in [0, 1) built from the top 53 bits
func (s *Stream) Float64() float64 {
	return float64(s.Uint64()>>11) / (1 << 53)
}

// Draws returns how many times the stream has been advanced
func (s *Stream) Draws() uint64 {
	return s.draws
}

// HistorySeed derives the seed of one particle history. SplitMix64 output is
// decorrelated enough that adjacent history indices give unrelated MT states.
func HistorySeed(seed uint64, history int64) uint64 {
	mix := prng.NewSplitMix64(seed)
	base := mix.Uint64()
	mix.Seed(base ^ (uint64(history)+1)*golden)
	return mix.Uint64()
}

// Adapter implements ports.RNGPort with MT19937 streams
type Adapter struct{}

// NewAdapter creates a new RNG adapter
func NewAdapter() *Adapter {
	return &Adapter{}
}

// Stream creates a stream from a base seed
func (a *Adapter) Stream(seed uint64) ports.RandomStream {
	return NewStream(seed)
}

// HistoryStream creates the independent stream of one particle history
func (a *Adapter) HistoryStream(seed uint64, history int64) ports.RandomStream {
	return NewStream(HistorySeed(seed, history))
}

var _ ports.RNGPort = (*Adapter)(nil)
