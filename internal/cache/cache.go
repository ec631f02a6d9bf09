package cache

import (
	"sync"

	"github.com/windward-sim/windward/pkg/core"
)

// BoatCache caches boat registrations to avoid db reads on the hot path.
// The gorm backend consults it to reject track points for boats that were
// never registered or have already been removed.
type BoatCache struct {
	m     sync.Mutex
	Boats map[uint16]core.BoatRecord
}

func NewBoatCache() *BoatCache {
	return &BoatCache{
		m:     sync.Mutex{},
		Boats: make(map[uint16]core.BoatRecord),
	}
}

func (c *BoatCache) Reset() {
	c.m.Lock()
	defer c.m.Unlock()
	c.Boats = make(map[uint16]core.BoatRecord)
}

func (c *BoatCache) Get(id uint16) (core.BoatRecord, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	if b, ok := c.Boats[id]; ok {
		return b, true
	}
	return core.BoatRecord{}, false
}

func (c *BoatCache) Add(b core.BoatRecord) {
	c.m.Lock()
	defer c.m.Unlock()
	c.Boats[b.ID] = b
}

func (c *BoatCache) Remove(id uint16) {
	c.m.Lock()
	defer c.m.Unlock()
	delete(c.Boats, id)
}

func (c *BoatCache) Len() int {
	c.m.Lock()
	defer c.m.Unlock()
	return len(c.Boats)
}
