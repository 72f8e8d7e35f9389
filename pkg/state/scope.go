// Package state provides observable state cells and the change notifications
// the tree subscribes to.
package state

import "strings"

// ModifyScope describes who a change is visible to.
type ModifyScope uint8

const (
	// ScopeData marks a change visible to data observers only.
	ScopeData ModifyScope = 0x01
	// ScopeFramework marks a change that the tree must react to.
	ScopeFramework ModifyScope = 0x10
	// ScopeBoth marks a change visible to everyone.
	ScopeBoth = ScopeData | ScopeFramework
)

// Contains reports whether every bit of other is set in s.
func (s ModifyScope) Contains(other ModifyScope) bool {
	return s&other == other
}

// Intersects reports whether s and other share any bit.
func (s ModifyScope) Intersects(other ModifyScope) bool {
	return s&other != 0
}

func (s ModifyScope) String() string {
	var parts []string
	if s.Intersects(ScopeData) {
		parts = append(parts, "data")
	}
	if s.Intersects(ScopeFramework) {
		parts = append(parts, "framework")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}
