// Package catalog implements the process-wide type catalog: a set of
// registered processor type descriptors, keyed by unique name, guarded
// by a single RWMutex. It rejects duplicate registration with a
// conflict error and preserves registration order for enumeration.
package catalog

import (
	"sync"

	"github.com/rantoniello/mediaprocessors/frame"
	"github.com/rantoniello/mediaprocessors/status"
)

// Catalog is a named set of processor type descriptors.
type Catalog struct {
	mu    sync.RWMutex
	types map[string]frame.Descriptor
	order []string
}

// New returns an empty, isolated catalog. Most programs share a single
// catalog process-wide (see Default); New exists so tests can run
// against independent catalogs concurrently.
func New() *Catalog {
	return &Catalog{types: make(map[string]frame.Descriptor)}
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the process-wide singleton catalog. A catalog must be
// populated before any registry that depends on it is opened.
func Default() *Catalog {
	defaultOnce.Do(func() { defaultCat = New() })
	return defaultCat
}

// Register adds desc to the catalog. It fails with status.Conflict if a
// type with the same name is already registered (full name equality,
// never prefix matching), and status.Invalid if desc is missing a
// mandatory hook.
func (c *Catalog) Register(desc frame.Descriptor) status.Status {
	if st := desc.Validate(); !st.Ok() {
		return st
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.types[desc.Name]; exists {
		return status.Conflict
	}
	c.types[desc.Name] = desc
	c.order = append(c.order, desc.Name)
	return status.Success
}

// Unregister removes the type named name, if present.
func (c *Catalog) Unregister(name string) status.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.types[name]; !exists {
		return status.NotFound
	}
	delete(c.types, name)
	for i, n := range c.order {
		if n == name {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return status.Success
}

// Find returns a copy of the descriptor registered under name (full
// equality, never prefix matching), and status.NotFound if absent.
func (c *Catalog) Find(name string) (frame.Descriptor, status.Status) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.types[name]
	if !ok {
		return frame.Descriptor{}, status.NotFound
	}
	return d, status.Success
}

// Names returns every registered type name, in registration order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}
