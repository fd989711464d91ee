package app

import (
	"context"
	"fmt"
	"math"
	"sort"

	"transportcore/domain/core"
	"transportcore/domain/mgxs"
	"transportcore/ports"
)

// Attribute names of a stored library. Entries are children of the root;
// each entry carries its dimensions and holds one child group per
// temperature, tagged with kT.
const (
	AttrGroups        = "energy_groups"
	AttrDelayedGroups = "delayed_groups"
	AttrFissionable   = "fissionable"
	AttrNumPolar      = "num_polar"
	AttrNumAzimuthal  = "num_azimuthal"
	AttrKT            = "kT"
)

// Entry is one nuclide or material evaluated at one or more temperatures
type Entry struct {
	Name         string
	Dims         mgxs.Dims
	Temperatures []float64 // kT, ascending
	Data         []*mgxs.XsData
}

// Library is a named set of entries
type Library struct {
	Name    string
	entries map[string]*Entry
}

// NewLibrary creates an empty library
func NewLibrary(name string) *Library {
	return &Library{Name: name, entries: make(map[string]*Entry)}
}

// Add registers data for an entry at temperature kT. All temperatures of an
// entry share groups, delayed groups and angle bins.
func (l *Library) Add(name string, kT float64, x *mgxs.XsData) error {
	entryName, err := core.ParseEntryName(name)
	if err != nil {
		return err
	}
	if x == nil {
		return core.NewConfigurationError("entry %s: nil data", name)
	}
	if kT < 0 || math.IsNaN(kT) || math.IsInf(kT, 0) {
		return core.NewConfigurationError("entry %s: invalid temperature %g", name, kT)
	}

	e, ok := l.entries[entryName.String()]
	if !ok {
		e = &Entry{Name: entryName.String(), Dims: x.Dims()}
		l.entries[e.Name] = e
	} else if d := x.Dims(); d.Groups != e.Dims.Groups || d.DelayedGroups != e.Dims.DelayedGroups ||
		d.NumPolar != e.Dims.NumPolar || d.NumAzimuthal != e.Dims.NumAzimuthal {
		return fmt.Errorf("%w: entry %s at kT=%g has %d groups, %d delayed, %dx%d angles; want %d, %d, %dx%d",
			core.ErrDimensionMismatch, name, kT, d.Groups, d.DelayedGroups, d.NumPolar, d.NumAzimuthal,
			e.Dims.Groups, e.Dims.DelayedGroups, e.Dims.NumPolar, e.Dims.NumAzimuthal)
	}

	i := sort.SearchFloat64s(e.Temperatures, kT)
	if i < len(e.Temperatures) && e.Temperatures[i] == kT {
		return core.NewConfigurationError("entry %s: duplicate temperature %g", name, kT)
	}
	e.Temperatures = append(e.Temperatures, 0)
	copy(e.Temperatures[i+1:], e.Temperatures[i:])
	e.Temperatures[i] = kT
	e.Data = append(e.Data, nil)
	copy(e.Data[i+1:], e.Data[i:])
	e.Data[i] = x
	return nil
}

// Entry returns the named entry
func (l *Library) Entry(name string) (*Entry, error) {
	e, ok := l.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: entry %s in library %s", core.ErrMissingDataset, name, l.Name)
	}
	return e, nil
}

// Names lists entries in order
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.entries))
	for n := range l.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// BuildLibrary ingests every entry below root
func BuildLibrary(name string, root ports.XSGroup, opts mgxs.IngestOptions) (*Library, error) {
	lib := NewLibrary(name)
	for _, entryName := range root.Children() {
		grp, err := root.Group(entryName)
		if err != nil {
			return nil, err
		}
		d, err := entryDims(grp)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", entryName, err)
		}
		for _, tName := range grp.Children() {
			tGrp, err := grp.Group(tName)
			if err != nil {
				return nil, err
			}
			kT, ok := tGrp.Attr(AttrKT)
			if !ok {
				return nil, core.NewConfigurationError("%s has no %s attribute", tGrp.Path(), AttrKT)
			}
			x, err := mgxs.FromGroup(tGrp, d, opts)
			if err != nil {
				return nil, fmt.Errorf("entry %s at %s: %w", entryName, tName, err)
			}
			if err := lib.Add(entryName, kT, x); err != nil {
				return nil, err
			}
		}
	}
	return lib, nil
}

// LoadLibrary reads a library from a store and ingests it
func LoadLibrary(ctx context.Context, store ports.XSLibraryStore, name string, opts mgxs.IngestOptions) (*Library, error) {
	root, err := store.LoadGroup(ctx, name, "/")
	if err != nil {
		return nil, fmt.Errorf("failed to load library %s: %w", name, err)
	}
	return BuildLibrary(name, root, opts)
}

func entryDims(grp ports.XSGroup) (mgxs.Dims, error) {
	if _, ok := grp.Attr(AttrGroups); !ok {
		return mgxs.Dims{}, core.NewConfigurationError("%s has no %s attribute", grp.Path(), AttrGroups)
	}
	count := func(name string, def int) (int, error) {
		v, ok := grp.Attr(name)
		if !ok {
			return def, nil
		}
		if v < 0 || v != math.Trunc(v) || v > math.MaxInt32 {
			return 0, core.NewConfigurationError("%s attribute %s = %g is not a count", grp.Path(), name, v)
		}
		return int(v), nil
	}

	var d mgxs.Dims
	var err error
	if d.Groups, err = count(AttrGroups, 0); err != nil {
		return d, err
	}
	if d.DelayedGroups, err = count(AttrDelayedGroups, 0); err != nil {
		return d, err
	}
	if d.NumPolar, err = count(AttrNumPolar, 1); err != nil {
		return d, err
	}
	if d.NumAzimuthal, err = count(AttrNumAzimuthal, 1); err != nil {
		return d, err
	}
	fissionable, _ := grp.Attr(AttrFissionable)
	d.Fissionable = fissionable != 0
	return d, nil
}
