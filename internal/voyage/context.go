package voyage

import (
	"sync"

	"github.com/windward-sim/windward/pkg/core"
)

// Context holds the current voyage state
type Context struct {
	mu     sync.RWMutex
	Voyage *core.Voyage
}

// NewContext creates a new Context with default values
func NewContext() *Context {
	return &Context{
		Voyage: &core.Voyage{Name: "No voyage loaded"},
	}
}

// Get returns the current voyage
func (vc *Context) Get() *core.Voyage {
	vc.mu.RLock()
	defer vc.mu.RUnlock()
	return vc.Voyage
}

// Set sets the current voyage
func (vc *Context) Set(v *core.Voyage) {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	vc.Voyage = v
}
