package ir

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnknownName is returned when a logical name is outside the enumeration.
var ErrUnknownName = errors.New("unknown logical name")

// Name identifies one of the fixed settings categories.
// The integer values are persisted and must never be renumbered.
type Name int

const (
	NameFlows        Name = 0
	NameCredentials  Name = 1
	NameSettings     Name = 2
	NameSessions     Name = 3
	NameLibraryEntry Name = 4 // reserved, not used by the settings API
)

// MinName and MaxName bound the valid range; the schema CHECK mirrors them.
const (
	MinName = NameFlows
	MaxName = NameLibraryEntry
)

var nameStrings = map[Name]string{
	NameFlows:        "flows",
	NameCredentials:  "credentials",
	NameSettings:     "settings",
	NameSessions:     "sessions",
	NameLibraryEntry: "library_entry",
}

// AllNames returns every logical name in ascending numeric order.
func AllNames() []Name {
	names := make([]Name, 0, len(nameStrings))
	for n := range nameStrings {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// NameMap returns the symbolic-name to integer mapping.
func NameMap() map[string]int {
	m := make(map[string]int, len(nameStrings))
	for n, s := range nameStrings {
		m[s] = int(n)
	}
	return m
}

// Valid reports whether n is part of the enumeration.
func (n Name) Valid() bool {
	return n >= MinName && n <= MaxName
}

func (n Name) String() string {
	if s, ok := nameStrings[n]; ok {
		return s
	}
	return fmt.Sprintf("Name(%d)", int(n))
}

// ParseName converts a symbolic name such as "credentials" to a Name.
func ParseName(s string) (Name, error) {
	for n, str := range nameStrings {
		if str == s {
			return n, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownName, s)
}

// MarshalText implements encoding.TextMarshaler.
func (n Name) MarshalText() ([]byte, error) {
	if !n.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownName, int(n))
	}
	return []byte(nameStrings[n]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *Name) UnmarshalText(text []byte) error {
	parsed, err := ParseName(string(text))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// DefaultValue is the value a read of n returns when nothing has been saved:
// an empty sequence for flows and an empty mapping for everything else.
func (n Name) DefaultValue() any {
	if n == NameFlows {
		return []any{}
	}
	return map[string]any{}
}
