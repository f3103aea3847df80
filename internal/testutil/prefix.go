package testutil

// FixedPrefixGenerator returns the same ident prefix every time, so idents
// allocated in tests and golden transcripts are stable.
//
// Thread-safety: FixedPrefixGenerator is stateless and safe for concurrent use.
type FixedPrefixGenerator struct {
	prefix string
}

// NewFixedPrefixGenerator creates a generator for prefix. An empty prefix
// becomes "test".
func NewFixedPrefixGenerator(prefix string) *FixedPrefixGenerator {
	if prefix == "" {
		prefix = "test"
	}
	return &FixedPrefixGenerator{prefix: prefix}
}

// Generate returns the fixed prefix.
func (g *FixedPrefixGenerator) Generate() string {
	return g.prefix
}
