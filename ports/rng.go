package ports

// RandomStream is a deterministic pseudorandom stream. Its state is the
// counter/seed every sampling call advances; a stream must not be shared
// between goroutines without external synchronization.
//
// Uint64 makes a RandomStream usable as a math/rand/v2 Source, so gonum
// distributions can draw from it directly.
type RandomStream interface {
	// Float64 returns a uniform value in [0, 1) and advances the stream
	Float64() float64
	// Uint64 returns 64 uniform bits and advances the stream
	Uint64() uint64
}

// RNGPort provides seeded random streams for deterministic operations
type RNGPort interface {
	// Stream creates a stream from a base seed
	Stream(seed uint64) RandomStream

	// HistoryStream creates the stream for one particle history. Streams for
	// distinct histories under the same seed are independent, and the same
	// (seed, history) pair always reproduces the same draws.
	HistoryStream(seed uint64, history int64) RandomStream
}
