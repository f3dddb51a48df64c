package writercache

import "github.com/riftcolumn/lineingest/storage"

// State is a cache entry's lifecycle state.
type State int

const (
	// StateInitial: never probed against the engine yet.
	StateInitial State = 0
	// StateExists: the engine confirmed the table exists.
	StateExists State = 1
	// StateUnusable: the engine returned an unexpected status once; this is
	// terminal for the process lifetime.
	StateUnusable State = 3
)

// Entry is the per-table cache record.
type Entry struct {
	Writer storage.Writer
	State  State
}

// Cache is the content-addressed map from table name to Entry. It is
// single-threaded and thread-confined to its owning Parser, so unlike a
// cache shared by concurrent readers it carries no lock.
type Cache struct {
	slots []*Entry
	index map[string]int
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{index: make(map[string]int)}
}

// KeyIndex looks up name and returns a Handle: present if name is already
// cached, absent (encoding the insert slot) otherwise.
func (c *Cache) KeyIndex(name string) Handle {
	if slot, ok := c.index[name]; ok {
		return toPresent(slot)
	}
	return Handle(len(c.slots))
}

// ValueAt dereferences a present Handle to its Entry. Panics if h is not
// present — callers must check Handle.Present() first.
func (c *Cache) ValueAt(h Handle) *Entry {
	return c.slots[h.slotIndex()]
}

// Each visits every cached entry, in insertion order, for cleanup on
// Close.
func (c *Cache) Each(fn func(entry *Entry)) {
	for _, entry := range c.slots {
		fn(entry)
	}
}

// PutAt inserts a brand-new Entry at the slot an absent Handle encoded,
// keyed by a stable copy of name. It returns the corresponding present Handle.
func (c *Cache) PutAt(h Handle, name string, entry *Entry) Handle {
	slot := h.slotIndex()
	c.slots = append(c.slots, entry)
	c.index[name] = slot
	return toPresent(slot)
}
