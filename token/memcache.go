package token

// MemCache is an in-memory reference implementation of Cache, used by tests
// and the demo CLI in place of a real upstream lexer arena. Addresses are
// assigned sequentially as text is interned, following the same id-per-value
// convention as the path interner in the retrieval pack (sequential ids
// indexing a reverse slice rather than re-hashing on lookup).
type MemCache struct {
	values []string
}

// NewMemCache returns an empty MemCache.
func NewMemCache() *MemCache {
	return &MemCache{}
}

// Intern assigns the next sequential Address to text and returns it.
// Addresses restart from zero after Reset, so an address interned before a
// Reset resolves to different text (or to nothing) afterwards.
func (c *MemCache) Intern(text string) Address {
	addr := Address(len(c.values))
	c.values = append(c.values, text)
	return addr
}

// Get implements Cache.
func (c *MemCache) Get(addr Address) string {
	return c.values[addr]
}

// InternToken interns text and returns the Token carrying both its address
// and its already-resolved text, the shape onEvent callers need.
func (c *MemCache) InternToken(text string) Token {
	return New(c.Intern(text), text)
}

// Reset clears all interned text, simulating the upstream arena being
// reused between lines or connections.
func (c *MemCache) Reset() {
	c.values = c.values[:0]
}
