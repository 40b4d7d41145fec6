package access

import (
	"log"
	"sync"
	"time"
)

// Controller holds the live maintenance state. Officials toggle it at
// runtime; the initial state comes from configuration.
type Controller struct {
	mu    sync.RWMutex
	state MaintenanceState
}

func NewController(initial MaintenanceState) *Controller {
	return &Controller{state: initial}
}

// State returns a snapshot of the current maintenance state.
func (c *Controller) State() MaintenanceState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Enable turns maintenance mode on with the given message and end time.
func (c *Controller) Enable(message string, endsAt time.Time) {
	c.mu.Lock()
	c.state = MaintenanceState{Active: true, Message: message, EndsAt: endsAt}
	c.mu.Unlock()
	log.Printf("[access] maintenance mode enabled until %s", endsAt.Format(time.RFC3339))
}

// Disable turns maintenance mode off.
func (c *Controller) Disable() {
	c.mu.Lock()
	c.state = MaintenanceState{}
	c.mu.Unlock()
	log.Printf("[access] maintenance mode disabled")
}
