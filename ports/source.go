package ports

import "transportcore/domain/particle"

// SourceSampler produces one starting particle state per call. Standard
// distributions, weighted mixtures and user-supplied custom sources all
// satisfy it, so a simulation picks its sampling strategy at setup.
type SourceSampler interface {
	Sample(stream RandomStream) (particle.Site, error)
}
