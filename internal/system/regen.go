package system

import (
	"time"

	coresys "github.com/gridmud/server/internal/core/system"
	"github.com/gridmud/server/internal/world"
)

// RegenSystem restores resources on the regen interval for every mob the
// world flagged as below max. Exhaustion always bleeds off; health and mana
// only recover out of combat. Phase 3 (PostUpdate).
type RegenSystem struct {
	w        *world.World
	interval time.Duration
	elapsed  time.Duration
}

// exhaustionRecovery is the exhaustion shed per regen interval.
const exhaustionRecovery = 10

func NewRegenSystem(w *world.World, interval time.Duration) *RegenSystem {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &RegenSystem{w: w, interval: interval}
}

func (s *RegenSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *RegenSystem) Update(dt time.Duration) {
	s.elapsed += dt
	if s.elapsed < s.interval {
		return
	}
	s.elapsed -= s.interval

	for _, m := range s.w.RegenSet.Snapshot() {
		if m.Destroyed() {
			continue
		}
		m.AdjustExhaustion(-exhaustionRecovery)
		if m.InCombat() {
			continue
		}
		sec := m.Secondary()
		m.AdjustHealth(1 + int(sec.Endurance/2))
		m.AdjustMana(1 + int(sec.Spirit/2))
	}
}
