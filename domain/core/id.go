package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID is a unique identifier, time-ordered when UUID v7 is available.
type ID string

func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

func (id ID) String() string { return string(id) }

func (id ID) IsEmpty() bool { return id == "" }

type (
	// RunID tags one sampling run in logs and reports.
	RunID ID
	// EntryName names a material or nuclide in a cross-section library.
	EntryName ID
)

func (id RunID) String() string     { return ID(id).String() }
func (id EntryName) String() string { return ID(id).String() }

func NewRunID() RunID {
	return RunID(NewID())
}

// ParseEntryName trims s and rejects blank names.
func ParseEntryName(s string) (EntryName, error) {
	name := strings.TrimSpace(s)
	if name == "" {
		return "", fmt.Errorf("%w: entry name cannot be empty", ErrConfiguration)
	}
	return EntryName(name), nil
}
