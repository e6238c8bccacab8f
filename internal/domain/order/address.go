package order

import "strings"

// UnknownCustomer is used when no source field yields a customer name.
const UnknownCustomer = "Unknown Customer"

// JoinAddress concatenates the non-empty parts with ", ".
func JoinAddress(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

// FullName joins first and last name, skipping empty parts.
func FullName(first, last string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(first+" "+last), " "))
}

// FirstNonEmpty returns the first candidate that is not blank.
func FirstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	return ""
}
