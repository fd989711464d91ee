package source

import (
	"transportcore/domain/particle"
	"transportcore/ports"
)

// SamplerFunc adapts an ordinary function into a SourceSampler. It is the
// injection point for user-defined sources.
type SamplerFunc func(stream ports.RandomStream) (particle.Site, error)

// Sample calls f(stream)
func (f SamplerFunc) Sample(stream ports.RandomStream) (particle.Site, error) {
	return f(stream)
}

var _ ports.SourceSampler = SamplerFunc(nil)
