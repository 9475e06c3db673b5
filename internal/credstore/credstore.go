// Package credstore persists the session's token pair. It is the single
// source of truth for whether the user is logged in: an empty access
// token means unauthenticated, whatever the refresh token says.
package credstore

// Pair holds the access/refresh token pair. Both fields are opaque
// strings; the client never inspects their contents.
type Pair struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token"`
}

// Authenticated reports whether the pair grants API access.
func (p Pair) Authenticated() bool {
	return p.Access != ""
}

// Store is a durable key-value home for the token pair. Set persists
// both fields together; Clear removes both. Implementations must be
// safe for concurrent use.
type Store interface {
	Get() Pair
	Set(Pair) error
	Clear() error
}
