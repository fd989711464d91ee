package source

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"transportcore/domain/core"
	"transportcore/domain/particle"
	"transportcore/ports"
)

const defaultChunk = 256

// BankFiller fills a source bank for a fixed-source generation. History i is
// always sampled from HistoryStream(seed, offset+i), so the bank is identical
// for any worker count.
type BankFiller struct {
	sampler ports.SourceSampler
	rng     ports.RNGPort
	workers int64
	chunk   int
}

// NewBankFiller creates a bank filler running at most workers chunks at once
func NewBankFiller(sampler ports.SourceSampler, rng ports.RNGPort, workers int) *BankFiller {
	if workers < 1 {
		workers = 1
	}
	return &BankFiller{sampler: sampler, rng: rng, workers: int64(workers), chunk: defaultChunk}
}

// WithChunk sets how many histories one worker samples per acquisition
func (f *BankFiller) WithChunk(chunk int) *BankFiller {
	if chunk > 0 {
		f.chunk = chunk
	}
	return f
}

// Fill samples n sites for histories offset..offset+n-1
func (f *BankFiller) Fill(ctx context.Context, seed uint64, offset int64, n int) ([]particle.Site, error) {
	if f.sampler == nil || f.rng == nil {
		return nil, core.NewConfigurationError("bank filler needs a sampler and an RNG")
	}
	if n < 0 {
		return nil, core.NewConfigurationError("negative bank size %d", n)
	}

	bank := make([]particle.Site, n)
	sem := semaphore.NewWeighted(f.workers)
	g, gctx := errgroup.WithContext(ctx)

	for start := 0; start < n; start += f.chunk {
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		lo, hi := start, min(start+f.chunk, n)
		g.Go(func() error {
			defer sem.Release(1)
			for i := lo; i < hi; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				history := offset + int64(i)
				site, err := f.sampler.Sample(f.rng.HistoryStream(seed, history))
				if err != nil {
					return fmt.Errorf("history %d: %w", history, err)
				}
				bank[i] = site
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return bank, nil
}

// Fingerprint hashes a bank bit-exactly, for reproducibility checks
func Fingerprint(bank []particle.Site) core.Hash {
	var fp core.Fingerprint
	for _, s := range bank {
		fp.Add(float64(s.Type),
			s.Position.X, s.Position.Y, s.Position.Z,
			s.Direction.X, s.Direction.Y, s.Direction.Z,
			s.Energy, s.Weight)
	}
	return fp.Sum()
}
