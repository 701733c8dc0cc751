package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/gridmud/server/internal/command"
	coresys "github.com/gridmud/server/internal/core/system"
	"github.com/gridmud/server/internal/net"
)

// InputSystem accepts freshly connected sessions and drains buffered input
// lines into the command dispatcher. Phase 0 (Input).
type InputSystem struct {
	netServer  *net.Server
	sessions   *Sessions
	deps       *command.Deps
	maxPerTick int
	log        *zap.Logger
}

func NewInputSystem(netServer *net.Server, sessions *Sessions, deps *command.Deps, maxPerTick int, log *zap.Logger) *InputSystem {
	if maxPerTick < 1 {
		maxPerTick = 1
	}
	return &InputSystem{
		netServer:  netServer,
		sessions:   sessions,
		deps:       deps,
		maxPerTick: maxPerTick,
		log:        log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	// Accept new sessions
	for {
		select {
		case sess := <-s.netServer.NewSessions():
			s.accept(sess)
		default:
			goto doneNew
		}
	}
doneNew:

	// Drain lines from each session, up to maxPerTick each. Closed sessions
	// still drain: a command typed right before the link dropped must run
	// before cleanup reaps the player.
	for _, sess := range s.sessions.All() {
		p := s.deps.Players.BySession(sess.ID)
		if p == nil {
			continue
		}
		for i := 0; i < s.maxPerTick; i++ {
			select {
			case line := <-sess.Lines:
				command.HandleLine(p, line, s.deps)
			default:
				goto doneSession
			}
		}
	doneSession:
		s.mirrorIdentity(sess, p)
	}
}

func (s *InputSystem) accept(sess *net.Session) {
	s.sessions.Add(sess)
	p := command.NewPlayer(sess.ID, sess)
	s.deps.Players.Add(p)
	command.Greet(p, s.deps)
	s.log.Info("session connected",
		zap.Uint64("session", sess.ID),
		zap.String("ip", sess.IP),
	)
}

// mirrorIdentity copies login progress onto the session so network-side logs
// can name who disconnected.
func (s *InputSystem) mirrorIdentity(sess *net.Session, p *command.Player) {
	if p.Account != nil && sess.AccountName == "" {
		sess.AccountName = p.Account.Name
	}
	if p.Char != nil && sess.CharName == "" {
		sess.CharName = p.Char.Name()
	}
}
