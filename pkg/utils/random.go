package utils

import (
	"crypto/rand"
	"fmt"
)

// RandomID fills a cryptographically random 32-byte identifier, used for
// unsigned transaction ids during construction before a signature is
// available to derive one from (math/rand is never suitable here: ids must
// be unguessable, not merely well-distributed).
func RandomID() ([32]byte, error) {
	var id [32]byte
	if _, err := rand.Read(id[:]); err != nil {
		return id, fmt.Errorf("utils: random id: %w", err)
	}
	return id, nil
}
