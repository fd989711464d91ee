package app

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"transportcore/domain/core"
	"transportcore/domain/mgxs"
	"transportcore/internal"
)

// TemperatureMethod picks how an entry is evaluated between tabulated
// temperatures
type TemperatureMethod int

const (
	Nearest TemperatureMethod = iota
	Interpolation
)

func (m TemperatureMethod) String() string {
	if m == Interpolation {
		return "interpolation"
	}
	return "nearest"
}

// ParseTemperatureMethod parses "nearest" or "interpolation"
func ParseTemperatureMethod(s string) (TemperatureMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nearest":
		return Nearest, nil
	case "interpolation":
		return Interpolation, nil
	}
	return Nearest, core.NewConfigurationError("unknown temperature method %q", s)
}

// Constituent is one entry of a composition with its atom density
type Constituent struct {
	Entry   string
	Density float64
}

// Homogenizer builds macroscopic data for compositions of library entries
type Homogenizer struct {
	lib       *Library
	method    TemperatureMethod
	tolerance float64
	logger    *internal.Logger
}

// NewHomogenizer creates a homogenizer. tolerance is the largest kT
// distance accepted outside the tabulated range or by nearest lookup.
func NewHomogenizer(lib *Library, method TemperatureMethod, tolerance float64, logger *internal.Logger) *Homogenizer {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Homogenizer{lib: lib, method: method, tolerance: tolerance, logger: logger}
}

// AtTemperature evaluates one entry at kT
func (h *Homogenizer) AtTemperature(name string, kT float64) (*mgxs.XsData, error) {
	e, err := h.lib.Entry(name)
	if err != nil {
		return nil, err
	}
	temps := e.Temperatures
	if len(temps) == 0 {
		return nil, core.NewConfigurationError("entry %s has no temperatures", name)
	}

	lo, hi := temps[0], temps[len(temps)-1]
	if kT < lo-h.tolerance || kT > hi+h.tolerance {
		return nil, core.NewConfigurationError("entry %s: kT=%g outside tabulated range [%g, %g]", name, kT, lo, hi)
	}

	if h.method == Nearest || len(temps) == 1 || kT <= lo || kT >= hi {
		i := nearest(temps, kT)
		if d := math.Abs(temps[i] - kT); d > h.tolerance {
			return nil, core.NewConfigurationError("entry %s: nearest kT=%g is %g away from %g", name, temps[i], d, kT)
		}
		h.logger.Debug("[Homogenizer] %s: using kT=%g for %g", name, temps[i], kT)
		return e.Data[i].Clone(), nil
	}

	i := sort.SearchFloat64s(temps, kT)
	if temps[i] == kT {
		return e.Data[i].Clone(), nil
	}
	f := (kT - temps[i-1]) / (temps[i] - temps[i-1])
	h.logger.Debug("[Homogenizer] %s: interpolating kT=%g between %g and %g (f=%.4f)", name, kT, temps[i-1], temps[i], f)
	x, err := mgxs.Combine([]*mgxs.XsData{e.Data[i-1], e.Data[i]}, []float64{1 - f, f})
	if err != nil {
		return nil, fmt.Errorf("entry %s: %w", name, err)
	}
	return x, nil
}

// Macroscopic evaluates every constituent at kT and combines them weighted
// by atom density
func (h *Homogenizer) Macroscopic(ctx context.Context, composition []Constituent, kT float64) (*mgxs.XsData, error) {
	if len(composition) == 0 {
		return nil, core.ErrNoSources
	}
	h.logger.Info("[Homogenizer] combining %d constituents at kT=%g (%s)", len(composition), kT, h.method)

	records := make([]*mgxs.XsData, len(composition))
	densities := make([]float64, len(composition))
	for i, c := range composition {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		x, err := h.AtTemperature(c.Entry, kT)
		if err != nil {
			return nil, err
		}
		records[i] = x
		densities[i] = c.Density
	}

	out, err := mgxs.Combine(records, densities)
	if err != nil {
		h.logger.Error("[Homogenizer] combine failed: %v", err)
		return nil, err
	}
	h.logger.Info("[Homogenizer] done: %d groups, fissionable=%t", out.Groups, out.Fissionable)
	return out, nil
}

func nearest(temps []float64, kT float64) int {
	best := 0
	for i, t := range temps {
		if math.Abs(t-kT) < math.Abs(temps[best]-kT) {
			best = i
		}
	}
	return best
}
