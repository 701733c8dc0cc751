package system

import (
	"time"

	"github.com/gridmud/server/internal/command"
	coresys "github.com/gridmud/server/internal/core/system"
)

// OutputSystem flushes each session's buffered output once per tick and
// appends the in-world prompt when anything was said or a command landed.
// Login-state prompts are written inline by the login flow; this system only
// owns the playing-state prompt. Phase 4 (Output).
type OutputSystem struct {
	sessions *Sessions
	players  *command.Players
}

func NewOutputSystem(sessions *Sessions, players *command.Players) *OutputSystem {
	return &OutputSystem{sessions: sessions, players: players}
}

func (s *OutputSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *OutputSystem) Update(_ time.Duration) {
	for _, sess := range s.sessions.All() {
		if sess.IsClosed() {
			continue
		}
		if p := s.players.BySession(sess.ID); p != nil && p.State == command.StatePlaying {
			if sess.HasBufferedOutput() || p.PromptPending {
				sess.Prompt(p.PromptText())
				p.PromptPending = false
			}
		}
		sess.FlushOutput()
	}
}
