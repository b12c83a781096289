package tool

import (
	"sync"
)

// Catalog is the process-wide map from tool name to the descriptor that
// claimed it first. A name, once claimed, is never overwritten.
type Catalog struct {
	mu     sync.RWMutex
	byName map[string]Descriptor
	order  []string
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		byName: make(map[string]Descriptor),
	}
}

// Claim registers d under its name if the name is free. It returns the
// descriptor that owns the name after the call and whether d won the claim.
func (c *Catalog) Claim(d Descriptor) (Descriptor, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if owner, exists := c.byName[d.Name]; exists {
		return owner, false
	}
	c.byName[d.Name] = d
	c.order = append(c.order, d.Name)
	return d, true
}

// Lookup returns the owner of a name.
func (c *Catalog) Lookup(name string) (Descriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d, ok := c.byName[name]
	return d, ok
}

// All returns every claimed descriptor in claim order.
func (c *Catalog) All() []Descriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Descriptor, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.byName[name])
	}
	return out
}

// Len returns the number of claimed names.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.order)
}

// Release drops every claim made by the given source.
func (c *Catalog) Release(sourceID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.order[:0]
	for _, name := range c.order {
		if c.byName[name].SourceID == sourceID {
			delete(c.byName, name)
			continue
		}
		kept = append(kept, name)
	}
	c.order = kept
}
