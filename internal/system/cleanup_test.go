package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gridmud/server/internal/command"
	gamenet "github.com/gridmud/server/internal/net"
)

func TestCleanupReapsDeadPlayingSession(t *testing.T) {
	env := newSysEnv(t)
	srv, err := gamenet.NewServer("127.0.0.1:0", 8, 8, 0, zap.NewNop())
	require.NoError(t, err)
	defer srv.Shutdown()

	p, _ := env.enterNewChar("Alice")
	m := p.Mob()
	_, bobConn := env.enterNewChar("Bob")

	sessions := NewSessions()
	sessions.Add(pipeSession(t, p.ID))

	pre := env.Chars.saves
	srv.NotifyDead(p.ID)

	cu := NewCleanupSystem(srv, sessions, env.Deps, zap.NewNop())
	cu.Update(0)

	assert.Nil(t, env.Deps.Players.BySession(p.ID))
	assert.Equal(t, 0, sessions.Count())
	assert.True(t, m.Destroyed(), "the abandoned body leaves the world")
	assert.Equal(t, pre+1, env.Chars.saves, "the character saves before leaving")
	assert.True(t, bobConn.contains("Alice vanishes into thin air."), "lines: %v", bobConn.lines)
}

func TestCleanupClosesLoginStageSession(t *testing.T) {
	env := newSysEnv(t)
	srv, err := gamenet.NewServer("127.0.0.1:0", 8, 8, 0, zap.NewNop())
	require.NoError(t, err)
	defer srv.Shutdown()

	sessions := NewSessions()
	sessions.Add(pipeSession(t, 42))
	p := command.NewPlayer(42, &fakeConn{})
	env.Deps.Players.Add(p)

	pre := env.Chars.saves
	srv.NotifyDead(42)

	cu := NewCleanupSystem(srv, sessions, env.Deps, zap.NewNop())
	cu.Update(0)

	assert.Nil(t, env.Deps.Players.BySession(42))
	assert.Equal(t, 0, sessions.Count())
	assert.Equal(t, pre, env.Chars.saves, "nothing to save at the login prompt")
}
