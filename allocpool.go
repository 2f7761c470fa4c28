package compval

import "sync"

// classPoolMap is a lazily populated registry of one sync.Pool per size
// class, guarding initial pool creation with a mutex but leaving steady
// state Get/Put lock-free through sync.Pool itself.
type classPoolMap struct {
	mu    sync.Mutex
	pools map[int]*sync.Pool
}

func (c *classPoolMap) poolFor(cls int) *sync.Pool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pools == nil {
		c.pools = make(map[int]*sync.Pool)
	}
	p, ok := c.pools[cls]
	if !ok {
		cls := cls
		p = &sync.Pool{New: func() any {
			b := make([]byte, cls)
			return &b
		}}
		c.pools[cls] = p
	}
	return p
}

func (c *classPoolMap) lookup(cls int) (*sync.Pool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pools[cls]
	return p, ok
}
