// Package ids provides shared identity types used across the runtime and
// registry layers.
package ids

import (
	"fmt"
	"strconv"
	"strings"
)

// SessionID identifies one managed session. IDs are allocated from a
// monotonic counter and never reused, so an ID seen once refers to the
// same session for the lifetime of the host process.
//
// The zero value is not a valid session ID.
type SessionID int64

// None is the absent session ID, used where "no session" is meaningful
// (e.g., nothing currently active).
const None SessionID = 0

// String returns the canonical rendering, e.g. "s7".
func (id SessionID) String() string {
	if id == None {
		return "none"
	}
	return fmt.Sprintf("s%d", int64(id))
}

// Valid reports whether id refers to a real session.
func (id SessionID) Valid() bool { return id > 0 }

// ParseSessionID parses the canonical "s<N>" form. A bare integer is also
// accepted for CLI convenience.
func ParseSessionID(s string) (SessionID, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), "s")
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return None, fmt.Errorf("invalid session id %q", s)
	}
	return SessionID(n), nil
}
