// Package filter provides case-insensitive address sets.
package filter

import "strings"

// Filter answers address membership questions.
type Filter interface {
	// Contains checks if an address is in the set
	Contains(address string) bool

	// Size returns the number of distinct addresses
	Size() int
}

// Normalize returns the canonical form used for comparisons. Only case is
// folded; anything else in the address must match exactly.
func Normalize(address string) string {
	return strings.ToLower(address)
}
