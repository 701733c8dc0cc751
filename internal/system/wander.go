package system

import (
	"time"

	coresys "github.com/gridmud/server/internal/core/system"

	"github.com/gridmud/server/internal/command"
	"github.com/gridmud/server/internal/world"
)

// WanderSystem ambles wandering NPCs around their home dungeon. Each wander
// interval every idle wanderer has a one-in-four chance to take a step.
// Phase 2 (Update), after combat.
type WanderSystem struct {
	w        *world.World
	interval time.Duration
	elapsed  time.Duration
}

func NewWanderSystem(w *world.World, interval time.Duration) *WanderSystem {
	if interval <= 0 {
		interval = 4 * time.Second
	}
	return &WanderSystem{w: w, interval: interval}
}

func (s *WanderSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *WanderSystem) Update(dt time.Duration) {
	s.elapsed += dt
	if s.elapsed < s.interval {
		return
	}
	s.elapsed -= s.interval

	for _, m := range s.w.Wanderers.Snapshot() {
		if m.Destroyed() || m.InCombat() {
			continue
		}
		if s.w.RNG().Intn(4) != 0 {
			continue
		}
		s.step(m)
	}
}

func (s *WanderSystem) step(m *world.Mob) {
	room := m.Room()
	if room == nil {
		return
	}
	// Wanderers never leave their home dungeon; links to other dungeons are
	// off limits.
	var dirs []world.Direction
	for _, d := range room.PassableExits(&m.Movable) {
		dest := room.GetStep(d)
		if dest == nil || dest.Dungeon() != room.Dungeon() {
			continue
		}
		dirs = append(dirs, d)
	}
	if len(dirs) == 0 {
		return
	}
	dir := dirs[s.w.RNG().Intn(len(dirs))]
	if m.Step(dir) {
		command.CheckRoomAggression(m.Room())
	}
}
