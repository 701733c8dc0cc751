package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/gridmud/server/internal/core/system"
	"github.com/gridmud/server/internal/world"
)

// ResetSystem reruns every dungeon's reset program on the reset interval,
// repopulating mobs and items that are missing or dead. The reset hook fires
// from inside ExecuteResets when anything spawned. Phase 2 (Update).
type ResetSystem struct {
	w        *world.World
	log      *zap.Logger
	interval time.Duration
	elapsed  time.Duration
}

func NewResetSystem(w *world.World, interval time.Duration, log *zap.Logger) *ResetSystem {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ResetSystem{w: w, interval: interval, log: log}
}

func (s *ResetSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *ResetSystem) Update(dt time.Duration) {
	s.elapsed += dt
	if s.elapsed < s.interval {
		return
	}
	s.elapsed -= s.interval

	for _, d := range s.w.Dungeons() {
		if spawned := d.ExecuteResets(); spawned > 0 {
			s.log.Debug("dungeon reset",
				zap.String("dungeon", d.ID()),
				zap.Int("spawned", spawned),
			)
		}
	}
}
