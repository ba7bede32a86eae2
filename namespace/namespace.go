// Package namespace implements the hierarchical visibility model: dotted
// namespace paths, the derived registry of holdings scanned from a chain,
// and bridges that grant revocable, dual-signed, time-bounded visibility
// across namespace boundaries.
package namespace

import (
	"strings"

	"github.com/verigraph/verigraph/cell"
)

// Validate checks path against the namespace grammar: lowercase dotted
// segments of [a-z0-9_], each 1-64 chars.
func Validate(path string) error {
	return cell.ValidateNamespace(path)
}

// IsRoot reports whether path is a distinguished single-segment root.
func IsRoot(path string) bool {
	return path != "" && !strings.Contains(path, ".")
}

// IsPrefix reports whether parent is child itself or one of its ancestors
// in the dotted hierarchy. "corp.hr" is a prefix of "corp.hr.compensation"
// but not of "corp.hrx".
func IsPrefix(parent, child string) bool {
	if parent == child {
		return true
	}
	return strings.HasPrefix(child, parent+".")
}

// Parent returns the immediate ancestor of ns, or "" for a root.
func Parent(ns string) string {
	i := strings.LastIndex(ns, ".")
	if i < 0 {
		return ""
	}
	return ns[:i]
}

// Depth returns the number of segments in ns.
func Depth(ns string) int {
	if ns == "" {
		return 0
	}
	return strings.Count(ns, ".") + 1
}
