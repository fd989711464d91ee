package ports

import "context"

// XSGroup is a handle to one named group of a structured cross-section store.
// Datasets are flat float64 arrays plus a row-major shape; the on-disk layout
// belongs to the store.
type XSGroup interface {
	Path() string
	Has(name string) bool
	// Read returns the dataset values and its shape
	Read(name string) ([]float64, []int, error)
	// Attr returns a scalar attribute
	Attr(name string) (float64, bool)
	// Group opens a child group
	Group(name string) (XSGroup, error)

	// Listing, sorted by name
	Datasets() []string
	Children() []string
	Attrs() map[string]float64
}

// XSLibraryStore persists cross-section group trees under a library name
type XSLibraryStore interface {
	SaveGroup(ctx context.Context, library string, grp XSGroup) error
	LoadGroup(ctx context.Context, library, path string) (XSGroup, error)
	ListGroups(ctx context.Context, library string) ([]string, error)
}
