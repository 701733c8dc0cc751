package system

import (
	"time"

	"github.com/gridmud/server/internal/core/event"
	coresys "github.com/gridmud/server/internal/core/system"
)

// EventSystem rotates the event bus and delivers everything emitted during
// the previous tick. Phase 1 (PreUpdate), registered before TimerSystem so
// handlers observe a consistent ordering: last tick's events, then timers.
type EventSystem struct {
	bus *event.Bus
}

func NewEventSystem(bus *event.Bus) *EventSystem {
	return &EventSystem{bus: bus}
}

func (s *EventSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *EventSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
