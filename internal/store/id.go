package store

import "github.com/oklog/ulid/v2"

// NewID returns a monotonic ULID. Lexical order matches creation order, which
// the transaction log relies on to break created_at ties.
func NewID() string {
	return ulid.Make().String()
}
