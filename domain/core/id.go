package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// v7 keeps report IDs sortable by creation time; v4 is the fallback
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	ReportID ID
	TabID    ID
	MountID  ID
)

// String conversions for domain IDs
func (id ReportID) String() string { return ID(id).String() }
func (id TabID) String() string    { return ID(id).String() }
func (id MountID) String() string  { return ID(id).String() }

// NewReportID creates a time-ordered report identifier
func NewReportID() ReportID {
	return ReportID(NewID())
}

// DeriveReportID returns the same identifier for the same parts, for history
// entries recorded without one
func DeriveReportID(parts ...string) ReportID {
	return ReportID(uuid.NewSHA1(uuid.NameSpaceOID, []byte(strings.Join(parts, "|"))).String())
}

// ParseTabID parses a string into TabID
func ParseTabID(s string) (TabID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("tab ID cannot be empty")
	}
	return TabID(strings.ToLower(s)), nil
}

// ParseMountID parses a string into MountID
func ParseMountID(s string) (MountID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("mount ID cannot be empty")
	}
	return MountID(s), nil
}
