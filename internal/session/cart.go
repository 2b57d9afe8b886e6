// Package session holds per-visitor state: the candidate cart and the
// currently displayed pipeline view.
package session

import "sync"

// Cart is an insertion-ordered set of entity ids. It is safe for concurrent
// use.
type Cart struct {
	mu  sync.RWMutex
	ids []string
}

// Add appends id unless it is already present. It reports whether the cart
// changed.
func (c *Cart) Add(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.ids {
		if existing == id {
			return false
		}
	}
	c.ids = append(c.ids, id)
	return true
}

func (c *Cart) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.ids {
		if existing == id {
			c.ids = append(c.ids[:i], c.ids[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Cart) Contains(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, existing := range c.ids {
		if existing == id {
			return true
		}
	}
	return false
}

// IDs returns the ids in insertion order.
func (c *Cart) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string{}, c.ids...)
}

func (c *Cart) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ids)
}
