package models

import (
	"fmt"
)

// BumpType represents the category of semantic version increment a
// commit implies.
type BumpType string

const (
	BumpMajor BumpType = "major"
	BumpMinor BumpType = "minor"
	BumpPatch BumpType = "patch"
	BumpNone  BumpType = "none"
)

// IsValid checks if the bump type is one of the closed set.
func (b BumpType) IsValid() bool {
	switch b {
	case BumpMajor, BumpMinor, BumpPatch, BumpNone:
		return true
	default:
		return false
	}
}

// String returns the string representation of BumpType.
func (b BumpType) String() string {
	return string(b)
}

// ParseBumpType parses a string into a BumpType.
func ParseBumpType(s string) (BumpType, error) {
	bt := BumpType(s)
	if !bt.IsValid() {
		return "", fmt.Errorf("invalid bump type: %s (must be major, minor, patch, or none)", s)
	}
	return bt, nil
}
