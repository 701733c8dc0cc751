package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/gridmud/server/internal/command"
	coresys "github.com/gridmud/server/internal/core/system"
)

// PersistSystem autosaves dirty in-world characters on the autosave
// interval. Phase 5 (Persist).
type PersistSystem struct {
	deps     *command.Deps
	log      *zap.Logger
	interval time.Duration
	elapsed  time.Duration
}

func NewPersistSystem(deps *command.Deps, interval time.Duration, log *zap.Logger) *PersistSystem {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &PersistSystem{deps: deps, interval: interval, log: log}
}

func (s *PersistSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistSystem) Update(dt time.Duration) {
	s.elapsed += dt
	if s.elapsed < s.interval {
		return
	}
	s.elapsed -= s.interval
	s.save(true)
}

// SaveAll persists every in-world character immediately, dirty or not.
// The shutdown path calls this after the loop stops so nothing is lost.
func (s *PersistSystem) SaveAll() {
	s.save(false)
}

func (s *PersistSystem) save(dirtyOnly bool) {
	count := 0
	for _, p := range s.deps.Players.InWorld() {
		if dirtyOnly && !p.Char.Dirty() {
			continue
		}
		if err := command.SavePlayer(p, s.deps); err != nil {
			s.log.Error("autosave failed",
				zap.String("name", p.Char.Name()),
				zap.Error(err),
			)
			continue
		}
		count++
	}
	if count > 0 {
		s.log.Info("autosave complete", zap.Int("saved", count))
	}
}
