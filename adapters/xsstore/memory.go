// Package xsstore holds the structured cross-section stores: an in-memory
// group tree, a JSON reader for it and a SQL-backed library store.
package xsstore

import (
	"fmt"
	"path"
	"sort"

	"transportcore/domain/core"
	"transportcore/ports"
)

type dataset struct {
	values []float64
	shape  []int
}

// MemoryGroup is an in-memory data group tree
type MemoryGroup struct {
	path     string
	datasets map[string]dataset
	attrs    map[string]float64
	children map[string]*MemoryGroup
}

var _ ports.XSGroup = (*MemoryGroup)(nil)

// NewMemoryGroup creates an empty group. An empty path is the root.
func NewMemoryGroup(p string) *MemoryGroup {
	if p == "" {
		p = "/"
	}
	return &MemoryGroup{
		path:     path.Clean(p),
		datasets: make(map[string]dataset),
		attrs:    make(map[string]float64),
		children: make(map[string]*MemoryGroup),
	}
}

// Put stores a dataset. Without a shape the dataset is one-dimensional.
func (g *MemoryGroup) Put(name string, values []float64, shape ...int) error {
	if len(shape) == 0 {
		shape = []int{len(values)}
	}
	n := 1
	for _, s := range shape {
		n *= s
	}
	if n != len(values) {
		return core.NewDimensionError(fmt.Sprintf("%s/%s element count", g.path, name), n, len(values))
	}
	g.datasets[name] = dataset{
		values: append([]float64(nil), values...),
		shape:  append([]int(nil), shape...),
	}
	return nil
}

// SetAttr stores a scalar attribute
func (g *MemoryGroup) SetAttr(name string, v float64) {
	g.attrs[name] = v
}

// Child returns the named child group, creating it if needed
func (g *MemoryGroup) Child(name string) *MemoryGroup {
	if c, ok := g.children[name]; ok {
		return c
	}
	c := NewMemoryGroup(path.Join(g.path, name))
	g.children[name] = c
	return c
}

func (g *MemoryGroup) Path() string { return g.path }

func (g *MemoryGroup) Has(name string) bool {
	_, ok := g.datasets[name]
	return ok
}

func (g *MemoryGroup) Read(name string) ([]float64, []int, error) {
	d, ok := g.datasets[name]
	if !ok {
		return nil, nil, core.NewMissingDatasetError(g.path, name)
	}
	return append([]float64(nil), d.values...), append([]int(nil), d.shape...), nil
}

func (g *MemoryGroup) Attr(name string) (float64, bool) {
	v, ok := g.attrs[name]
	return v, ok
}

func (g *MemoryGroup) Group(name string) (ports.XSGroup, error) {
	c, ok := g.children[name]
	if !ok {
		return nil, fmt.Errorf("group %s not found under %s", name, g.path)
	}
	return c, nil
}

func (g *MemoryGroup) Datasets() []string { return sortedKeys(g.datasets) }

func (g *MemoryGroup) Children() []string { return sortedKeys(g.children) }

func (g *MemoryGroup) Attrs() map[string]float64 {
	out := make(map[string]float64, len(g.attrs))
	for k, v := range g.attrs {
		out[k] = v
	}
	return out
}

// Walk visits grp and every descendant depth-first in name order
func Walk(grp ports.XSGroup, fn func(ports.XSGroup) error) error {
	if err := fn(grp); err != nil {
		return err
	}
	for _, name := range grp.Children() {
		child, err := grp.Group(name)
		if err != nil {
			return err
		}
		if err := Walk(child, fn); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
