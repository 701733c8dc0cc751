package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/gridmud/server/internal/command"
	coresys "github.com/gridmud/server/internal/core/system"
	"github.com/gridmud/server/internal/net"
)

// CleanupSystem reaps sessions whose link died, saving and detaching any
// character still in the world. Phase 6 (Cleanup), the last phase, so the
// tick's output had its chance to flush first.
type CleanupSystem struct {
	netServer *net.Server
	sessions  *Sessions
	deps      *command.Deps
	log       *zap.Logger
}

func NewCleanupSystem(netServer *net.Server, sessions *Sessions, deps *command.Deps, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{netServer: netServer, sessions: sessions, deps: deps, log: log}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	for {
		select {
		case id := <-s.netServer.DeadSessions():
			s.reap(id)
		default:
			return
		}
	}
}

func (s *CleanupSystem) reap(id uint64) {
	p := s.deps.Players.Remove(id)
	if p != nil {
		m := p.Mob()
		if m != nil && !m.Destroyed() {
			if err := command.SavePlayer(p, s.deps); err != nil {
				s.log.Error("save on disconnect failed",
					zap.String("character", p.Char.Name()),
					zap.Error(err),
				)
			}
			s.log.Info("link dead",
				zap.String("character", p.Char.Name()),
				zap.Uint64("session", id),
			)
			command.LeaveWorld(p, s.deps, "{User} vanishes into thin air.")
		} else {
			s.log.Info("session closed",
				zap.Uint64("session", id),
				zap.String("account", accountName(p)),
			)
		}
	}
	s.sessions.Remove(id)
}

func accountName(p *command.Player) string {
	if p.Account != nil {
		return p.Account.Name
	}
	return ""
}
