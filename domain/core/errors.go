package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Structural errors. These are deterministic and input-determined; callers
	// abort the computation rather than retry.
	ErrConfiguration     = errors.New("configuration error")
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// Configuration error refinements
	ErrEmptyMixture      = fmt.Errorf("%w: source mixture is empty", ErrConfiguration)
	ErrNoStrength        = fmt.Errorf("%w: total source strength is not positive", ErrConfiguration)
	ErrShapeUnset        = fmt.Errorf("%w: source shape is unset", ErrConfiguration)
	ErrWeightCount       = fmt.Errorf("%w: weight count does not match source count", ErrConfiguration)
	ErrNoSources         = fmt.Errorf("%w: no records to combine", ErrConfiguration)
	ErrMissingDataset    = fmt.Errorf("%w: required dataset missing", ErrConfiguration)
	ErrUnknownFormat     = fmt.Errorf("%w: unknown scattering format", ErrConfiguration)
	ErrUnknownShape      = fmt.Errorf("%w: unknown shape type", ErrConfiguration)
	ErrUnknownParticle   = fmt.Errorf("%w: unknown particle type", ErrConfiguration)
	ErrInvalidWeight     = fmt.Errorf("%w: weight must be finite and non-negative", ErrConfiguration)
	ErrInvalidDimensions = fmt.Errorf("%w: invalid dimensions", ErrConfiguration)

	// Validation errors, surfaced only by validation tooling
	ErrNumericalInconsistency = errors.New("numerical inconsistency")

	// Determinism errors
	ErrHashMismatch = errors.New("hash mismatch")
)

// Error constructors with context
func NewConfigurationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

func NewDimensionError(what string, want, got int) error {
	return fmt.Errorf("%w: %s want %d, got %d", ErrDimensionMismatch, what, want, got)
}

func NewInconsistencyError(field string, angle, index int, reason string) error {
	return fmt.Errorf("%w: %s[%d][%d]: %s", ErrNumericalInconsistency, field, angle, index, reason)
}

func NewMissingDatasetError(path, name string) error {
	return fmt.Errorf("%w: %s/%s", ErrMissingDataset, path, name)
}

// Error checking helpers
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func IsDimensionError(err error) bool {
	return errors.Is(err, ErrDimensionMismatch)
}

func IsInconsistencyError(err error) bool {
	return errors.Is(err, ErrNumericalInconsistency)
}

func IsDeterminismError(err error) bool {
	return errors.Is(err, ErrHashMismatch)
}
