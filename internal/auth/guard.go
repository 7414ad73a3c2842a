// Package auth implements the shared-secret gate on the read path.
package auth

import "crypto/subtle"

// Guard checks a caller-supplied key against the configured secret. The
// secret is fixed for the process lifetime; rotation requires a restart.
type Guard struct {
	secret []byte
}

// NewGuard returns a Guard for the given secret.
func NewGuard(secret string) *Guard {
	return &Guard{secret: []byte(secret)}
}

// Authorize reports whether supplied matches the secret exactly. The
// comparison is constant-time so response latency does not reveal how much of
// a guess matched; a missing key is just a non-matching one, callers cannot
// tell the two apart.
func (g *Guard) Authorize(supplied string) bool {
	return subtle.ConstantTimeCompare([]byte(supplied), g.secret) == 1
}
