package util

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idLength = 21

// NewID returns a random URL-safe identifier used for sessions, documents
// and jobs.
func NewID() string {
	return gonanoid.Must()
}

// IsID reports whether s looks like an identifier produced by NewID. Callers
// may pass their own session ids as long as they have this shape.
func IsID(s string) bool {
	if len(s) != idLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isIDChar(s[i]) {
			return false
		}
	}
	return true
}

func isIDChar(c byte) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c == '_' || c == '-':
		return true
	}
	return false
}
