package system

import (
	"time"

	coresys "github.com/gridmud/server/internal/core/system"
	"github.com/gridmud/server/internal/core/tick"
)

// TimerSystem pumps the interval wheel, firing effect expiries and any other
// scheduled callbacks due this tick. Phase 1 (PreUpdate), after EventSystem.
type TimerSystem struct {
	clock tick.Clock
	wheel *tick.Wheel
}

func NewTimerSystem(clock tick.Clock, wheel *tick.Wheel) *TimerSystem {
	return &TimerSystem{clock: clock, wheel: wheel}
}

func (s *TimerSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *TimerSystem) Update(_ time.Duration) {
	s.wheel.Pump(s.clock.NowMs())
}
