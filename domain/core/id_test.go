package core

import (
	"errors"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestParseEntryName tests entry name parsing
func TestParseEntryName(t *testing.T) {
	tests := []struct {
		input    string
		expected EntryName
		hasError bool
	}{
		{"U235", EntryName("U235"), false},
		{"  H1 ", EntryName("H1"), false},
		{"", "", true},
		{"   ", "", true},
	}

	for _, tt := range tests {
		result, err := ParseEntryName(tt.input)
		if tt.hasError {
			if err == nil {
				t.Errorf("ParseEntryName(%q) expected error, got nil", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseEntryName(%q) unexpected error: %v", tt.input, err)
		}
		if result != tt.expected {
			t.Errorf("ParseEntryName(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

// TestFingerprintBitExact tests that fingerprints distinguish values by bits
func TestFingerprintBitExact(t *testing.T) {
	var a, b, c Fingerprint
	a.Add(1.0, 2.0, 3.0)
	b.Add(1.0, 2.0)
	b.Add(3.0)
	c.Add(1.0, 2.0, 3.0000000000000004)

	if !a.Sum().Equals(b.Sum()) {
		t.Error("Expected identical sequences to hash equal regardless of chunking")
	}
	if a.Sum().Equals(c.Sum()) {
		t.Error("Expected one-ulp difference to change the hash")
	}
}

// TestErrorTaxonomy tests that refined errors match their families
func TestErrorTaxonomy(t *testing.T) {
	if !IsConfigurationError(ErrEmptyMixture) {
		t.Error("ErrEmptyMixture should be a configuration error")
	}
	if !IsConfigurationError(ErrWeightCount) {
		t.Error("ErrWeightCount should be a configuration error")
	}
	if IsConfigurationError(NewDimensionError("groups", 2, 3)) {
		t.Error("dimension errors are not configuration errors")
	}
	if !IsDimensionError(NewDimensionError("groups", 2, 3)) {
		t.Error("NewDimensionError should match ErrDimensionMismatch")
	}
	if !errors.Is(NewInconsistencyError("total", 0, 1, "below absorption"), ErrNumericalInconsistency) {
		t.Error("NewInconsistencyError should match ErrNumericalInconsistency")
	}
}
