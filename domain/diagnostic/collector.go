package diagnostic

import "sync"

// Collector accumulates diagnostics in memory.
type Collector struct {
	mu    sync.Mutex
	items []Diagnostic
}

// Reporter returns a Reporter that appends to the collector.
func (c *Collector) Reporter() Reporter {
	return func(d Diagnostic) {
		c.mu.Lock()
		c.items = append(c.items, d)
		c.mu.Unlock()
	}
}

// All returns a copy of the collected diagnostics.
func (c *Collector) All() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	return out
}

// OfKind returns the collected diagnostics of one kind.
func (c *Collector) OfKind(k Kind) []Diagnostic {
	var out []Diagnostic
	for _, d := range c.All() {
		if d.Kind == k {
			out = append(out, d)
		}
	}
	return out
}
