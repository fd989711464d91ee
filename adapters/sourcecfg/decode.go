// Package sourcecfg reads external source definitions from JSON.
//
//	{"sources": [{
//		"particle": "neutron",
//		"strength": 2.0,
//		"space":  {"type": "box", "lower": [-1, -1, -1], "upper": [1, 1, 1]},
//		"angle":  {"type": "isotropic"},
//		"energy": {"type": "watt", "a": 0.988e6, "b": 2.249e-6}
//	}]}
//
// Omitted shapes default to a point at the origin, isotropic emission and a
// U-235 Watt fission spectrum.
package sourcecfg

import (
	"fmt"

	"github.com/tidwall/gjson"
	"gonum.org/v1/gonum/spatial/r3"

	"transportcore/adapters/shapes"
	"transportcore/domain/core"
	"transportcore/domain/particle"
	"transportcore/domain/source"
	"transportcore/ports"
)

// Watt parameters used when no energy shape is given
const (
	DefaultWattA = 0.988e6
	DefaultWattB = 2.249e-6
)

// Decode builds a mixture from a source-definitions document
func Decode(data []byte) (*source.Mixture, error) {
	dists, err := DecodeDistributions(data)
	if err != nil {
		return nil, err
	}
	return source.NewMixture(dists...)
}

// DecodeDistributions returns the individual distributions in document order
func DecodeDistributions(data []byte) ([]*source.Distribution, error) {
	if !gjson.ValidBytes(data) {
		return nil, core.NewConfigurationError("invalid JSON source document")
	}
	list := gjson.GetBytes(data, "sources")
	if !list.IsArray() {
		return nil, core.NewConfigurationError("source document needs a \"sources\" array")
	}

	var dists []*source.Distribution
	for i, item := range list.Array() {
		d, err := decodeDistribution(item)
		if err != nil {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}
		dists = append(dists, d)
	}
	if len(dists) == 0 {
		return nil, core.ErrEmptyMixture
	}
	return dists, nil
}

func decodeDistribution(item gjson.Result) (*source.Distribution, error) {
	if !item.IsObject() {
		return nil, core.NewConfigurationError("source entry must be an object")
	}
	p, err := particle.ParseType(item.Get("particle").String())
	if err != nil {
		return nil, err
	}
	strength := source.DefaultStrength
	if v := item.Get("strength"); v.Exists() {
		if v.Type != gjson.Number {
			return nil, core.NewConfigurationError("strength %s is not a number", v.Raw)
		}
		strength = v.Float()
	}

	space, err := decodeSpace(item.Get("space"))
	if err != nil {
		return nil, fmt.Errorf("space: %w", err)
	}
	angle, err := decodeAngle(item.Get("angle"))
	if err != nil {
		return nil, fmt.Errorf("angle: %w", err)
	}
	energy, err := decodeEnergy(item.Get("energy"))
	if err != nil {
		return nil, fmt.Errorf("energy: %w", err)
	}
	return source.NewDistribution(p, strength, space, angle, energy)
}

func decodeSpace(v gjson.Result) (ports.SpatialShape, error) {
	if !v.Exists() {
		return shapes.Point{}, nil
	}
	switch kind := v.Get("type").String(); kind {
	case "point":
		if !v.Get("xyz").Exists() {
			return shapes.Point{}, nil
		}
		at, err := vec(v, "xyz")
		if err != nil {
			return nil, err
		}
		return shapes.Point{At: at}, nil
	case "box":
		lower, err := vec(v, "lower")
		if err != nil {
			return nil, err
		}
		upper, err := vec(v, "upper")
		if err != nil {
			return nil, err
		}
		return shapes.NewBox(lower, upper)
	case "spherical_shell":
		center := r3.Vec{}
		if v.Get("center").Exists() {
			c, err := vec(v, "center")
			if err != nil {
				return nil, err
			}
			center = c
		}
		return shapes.NewSphericalShell(center, v.Get("inner").Float(), v.Get("outer").Float())
	default:
		return nil, fmt.Errorf("%w: space %q", core.ErrUnknownShape, kind)
	}
}

func decodeAngle(v gjson.Result) (ports.AngularShape, error) {
	if !v.Exists() {
		return shapes.Isotropic{}, nil
	}
	switch kind := v.Get("type").String(); kind {
	case "isotropic":
		return shapes.Isotropic{}, nil
	case "monodirectional":
		dir, err := vec(v, "reference_uvw")
		if err != nil {
			return nil, err
		}
		return shapes.NewMonodirectional(dir)
	default:
		return nil, fmt.Errorf("%w: angle %q", core.ErrUnknownShape, kind)
	}
}

func decodeEnergy(v gjson.Result) (ports.EnergyShape, error) {
	if !v.Exists() {
		return shapes.NewWatt(DefaultWattA, DefaultWattB)
	}
	switch kind := v.Get("type").String(); kind {
	case "discrete":
		return shapes.NewDiscrete(floats(v.Get("energies")), floats(v.Get("probabilities")))
	case "uniform":
		return shapes.NewUniform(v.Get("min").Float(), v.Get("max").Float())
	case "normal":
		return shapes.NewNormal(v.Get("mean").Float(), v.Get("std_dev").Float())
	case "maxwell":
		return shapes.NewMaxwell(v.Get("theta").Float())
	case "watt":
		return shapes.NewWatt(v.Get("a").Float(), v.Get("b").Float())
	default:
		return nil, fmt.Errorf("%w: energy %q", core.ErrUnknownShape, kind)
	}
}

func vec(v gjson.Result, key string) (r3.Vec, error) {
	xs := floats(v.Get(key))
	if len(xs) != 3 {
		return r3.Vec{}, core.NewConfigurationError("%s needs 3 components, got %d", key, len(xs))
	}
	return r3.Vec{X: xs[0], Y: xs[1], Z: xs[2]}, nil
}

func floats(v gjson.Result) []float64 {
	items := v.Array()
	out := make([]float64, len(items))
	for i, it := range items {
		out[i] = it.Float()
	}
	return out
}
