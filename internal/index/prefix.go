package index

import (
	"strings"

	"github.com/google/uuid"
)

// PrefixGenerator produces the ident prefix for a fresh database.
type PrefixGenerator interface {
	Generate() string
}

// UUIDv7Prefix derives a prefix from the random tail of a UUIDv7.
//
// The leading bits of a UUIDv7 are a millisecond timestamp, so two
// databases created close together would share them; the last eight hex
// digits are random.
//
// Thread-safety: UUIDv7Prefix is stateless and safe for concurrent use.
type UUIDv7Prefix struct{}

// Generate returns eight lowercase hex digits.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Prefix) Generate() string {
	s := strings.ReplaceAll(uuid.Must(uuid.NewV7()).String(), "-", "")
	return s[len(s)-8:]
}
