package app

import (
	"context"
	"fmt"
	"time"

	"transportcore/domain/core"
	"transportcore/domain/particle"
	"transportcore/domain/source"
	"transportcore/internal"
	"transportcore/internal/profiling"
	"transportcore/ports"
)

// SamplingRequest describes one fixed-source bank
type SamplingRequest struct {
	Seed      uint64
	Offset    int64
	Particles int
	Workers   int
	Chunk     int
}

// SamplingReport is the output of one bank run
type SamplingReport struct {
	RunID       core.RunID
	Seed        uint64
	Offset      int64
	Bank        []particle.Site
	Fingerprint core.Hash
	Summary     profiling.BankSummary
	Counts      []int
	Fit         profiling.FitResult
	RuntimeMs   int64
}

// SourceRunner fills source banks from a mixture and reports diagnostics
type SourceRunner struct {
	mixture *source.Mixture
	rngPort ports.RNGPort
	logger  *internal.Logger
}

// NewSourceRunner creates a source runner
func NewSourceRunner(mixture *source.Mixture, rngPort ports.RNGPort, logger *internal.Logger) *SourceRunner {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &SourceRunner{mixture: mixture, rngPort: rngPort, logger: logger}
}

// Run fills the bank, fingerprints it and checks the member selection
// frequencies against the strengths
func (r *SourceRunner) Run(ctx context.Context, req SamplingRequest) (*SamplingReport, error) {
	start := time.Now()
	runID := core.NewRunID()
	r.logger.Info("[SourceRunner] run %s: %d particles, seed=%d, offset=%d, workers=%d",
		runID, req.Particles, req.Seed, req.Offset, req.Workers)

	filler := source.NewBankFiller(r.mixture, r.rngPort, req.Workers).WithChunk(req.Chunk)
	bank, err := filler.Fill(ctx, req.Seed, req.Offset, req.Particles)
	if err != nil {
		return nil, fmt.Errorf("failed to fill source bank: %w", err)
	}

	report := &SamplingReport{
		RunID:       runID,
		Seed:        req.Seed,
		Offset:      req.Offset,
		Bank:        bank,
		Fingerprint: source.Fingerprint(bank),
	}
	if len(bank) == 0 {
		report.RuntimeMs = time.Since(start).Milliseconds()
		return report, nil
	}

	if report.Summary, err = profiling.SummarizeBank(bank); err != nil {
		return nil, err
	}
	if report.Counts, err = r.SelectionCounts(ctx, req.Seed, req.Offset, req.Particles); err != nil {
		return nil, err
	}
	strengths := make([]float64, r.mixture.Len())
	for i, m := range r.mixture.Members() {
		strengths[i] = m.Strength
	}
	if report.Fit, err = profiling.StrengthGoodnessOfFit(report.Counts, strengths); err != nil {
		return nil, err
	}

	report.RuntimeMs = time.Since(start).Milliseconds()
	r.logger.Info("[SourceRunner] run %s: fingerprint %s, chi2=%.3f p=%.4f (%dms)",
		runID, report.Fingerprint, report.Fit.Statistic, report.Fit.PValue, report.RuntimeMs)
	return report, nil
}

// SelectionCounts replays the first draw of every history and counts which
// member it selects. Selection is the first draw of Mixture.Sample, so the
// counts match the bank exactly.
func (r *SourceRunner) SelectionCounts(ctx context.Context, seed uint64, offset int64, n int) ([]int, error) {
	counts := make([]int, r.mixture.Len())
	for i := 0; i < n; i++ {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		idx, err := r.mixture.Select(r.rngPort.HistoryStream(seed, offset+int64(i)))
		if err != nil {
			return nil, err
		}
		counts[idx]++
	}
	return counts, nil
}

// Verify refills the bank of a report and checks it is bit-identical
func (r *SourceRunner) Verify(ctx context.Context, report *SamplingReport, workers int) error {
	bank, err := source.NewBankFiller(r.mixture, r.rngPort, workers).Fill(ctx, report.Seed, report.Offset, len(report.Bank))
	if err != nil {
		return err
	}
	if got := source.Fingerprint(bank); !got.Equals(report.Fingerprint) {
		r.logger.Warn("[SourceRunner] run %s: replay fingerprint %s differs from %s", report.RunID, got, report.Fingerprint)
		return fmt.Errorf("%w: run %s replayed to %s, recorded %s", core.ErrHashMismatch, report.RunID, got, report.Fingerprint)
	}
	return nil
}
