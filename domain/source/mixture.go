package source

import (
	"transportcore/domain/core"
	"transportcore/domain/particle"
	"transportcore/ports"
)

// Member is one entry of a mixture
type Member struct {
	Sampler  ports.SourceSampler
	Strength float64
}

// Mixture selects among its members in proportion to strength. Members keep
// definition order, which is also the tie-break order.
type Mixture struct {
	members []Member
	total   float64
}

// NewMixture builds a mixture from distributions, each weighted by its own
// strength
func NewMixture(dists ...*Distribution) (*Mixture, error) {
	m := &Mixture{}
	for _, d := range dists {
		if d == nil {
			return nil, core.NewConfigurationError("nil source distribution")
		}
		if err := m.Add(d, d.Strength); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Add appends a sampler with the given strength. Custom strategies join a
// mixture the same way standard distributions do.
func (m *Mixture) Add(s ports.SourceSampler, strength float64) error {
	if s == nil {
		return core.NewConfigurationError("nil source sampler")
	}
	if err := checkStrength(strength); err != nil {
		return err
	}
	m.members = append(m.members, Member{Sampler: s, Strength: strength})
	m.total += strength
	return nil
}

// Len returns the number of members
func (m *Mixture) Len() int {
	return len(m.members)
}

// TotalStrength returns the sum of member strengths
func (m *Mixture) TotalStrength() float64 {
	return m.total
}

// Members returns a copy of the members in definition order
func (m *Mixture) Members() []Member {
	return append([]Member(nil), m.members...)
}

// Select draws once from the stream and returns the index of the first
// member whose cumulative strength exceeds the draw.
func (m *Mixture) Select(stream ports.RandomStream) (int, error) {
	if len(m.members) == 0 {
		return -1, core.ErrEmptyMixture
	}
	if m.total <= 0 {
		return -1, core.ErrNoStrength
	}

	r := stream.Float64() * m.total
	sum := 0.0
	last := -1
	for i, member := range m.members {
		if member.Strength > 0 {
			last = i
		}
		sum += member.Strength
		if sum > r {
			return i, nil
		}
	}
	// r can round up to the total; the last reachable member owns that edge
	return last, nil
}

// Sample selects a member and delegates to it
func (m *Mixture) Sample(stream ports.RandomStream) (particle.Site, error) {
	i, err := m.Select(stream)
	if err != nil {
		return particle.Site{}, err
	}
	return m.members[i].Sampler.Sample(stream)
}

var _ ports.SourceSampler = (*Mixture)(nil)
