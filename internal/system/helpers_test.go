package system

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gridmud/server/internal/command"
	"github.com/gridmud/server/internal/config"
	"github.com/gridmud/server/internal/core/event"
	"github.com/gridmud/server/internal/core/tick"
	"github.com/gridmud/server/internal/persist"
	"github.com/gridmud/server/internal/scripting"
	"github.com/gridmud/server/internal/world"
)

// fakeConn records everything pushed at a session.
type fakeConn struct {
	lines   []string
	prompts []string
	closed  bool
}

func (c *fakeConn) Send(text string, _ world.MessageGroup) { c.lines = append(c.lines, text) }
func (c *fakeConn) Prompt(p string)                        { c.prompts = append(c.prompts, p) }
func (c *fakeConn) SuppressEcho(bool)                      {}
func (c *fakeConn) Color() bool                            { return false }
func (c *fakeConn) Close()                                 { c.closed = true }
func (c *fakeConn) IsClosed() bool                         { return c.closed }

func (c *fakeConn) contains(sub string) bool {
	for _, l := range c.lines {
		if strings.Contains(l, sub) {
			return true
		}
	}
	return false
}

func (c *fakeConn) reset() { c.lines = nil; c.prompts = nil }

// fakeAccounts is an in-memory account store for the login flow.
type fakeAccounts struct {
	accounts map[string]*persist.Account
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{accounts: make(map[string]*persist.Account)}
}

func (s *fakeAccounts) Load(_ context.Context, name string) (*persist.Account, error) {
	return s.accounts[name], nil
}

func (s *fakeAccounts) Create(_ context.Context, name, password string) (*persist.Account, error) {
	a := &persist.Account{Name: name, PasswordHash: "hash:" + password}
	s.accounts[name] = a
	return a, nil
}

func (s *fakeAccounts) VerifyPassword(hash, password string) bool {
	return hash == "hash:"+password
}

func (s *fakeAccounts) Touch(context.Context, string) error { return nil }

// fakeChars is an in-memory character store keyed account then name.
type fakeChars struct {
	recs    map[string]map[string]world.Record
	saves   int
	saveErr error
}

func newFakeChars() *fakeChars {
	return &fakeChars{recs: make(map[string]map[string]world.Record)}
}

func (s *fakeChars) List(_ context.Context, account string) ([]string, error) {
	var names []string
	for n := range s.recs[account] {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func (s *fakeChars) Load(_ context.Context, account, name string) (world.Record, error) {
	return s.recs[account][name], nil
}

func (s *fakeChars) NameTaken(_ context.Context, name string) (bool, error) {
	for _, chars := range s.recs {
		if _, ok := chars[name]; ok {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeChars) Save(_ context.Context, account, name string, rec world.Record) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	if s.recs[account] == nil {
		s.recs[account] = make(map[string]world.Record)
	}
	s.recs[account][name] = rec
	s.saves++
	return nil
}

// Archetype fixtures: a level-1 human warrior lands on primaries {15, 10, 7},
// health 155, mana 65.
func testRace() *world.Archetype {
	return &world.Archetype{
		ID:   "human",
		Name: "Human",
		Kind: world.ArchetypeRace,
		StartAttributes: world.PrimaryAttributes{
			Strength: 10, Agility: 8, Intelligence: 6,
		},
		GrowthAttributes: world.PrimaryAttributes{
			Strength: 2, Agility: 1, Intelligence: 1,
		},
		StartResources:  world.Resources{Health: 50, Mana: 20},
		GrowthResources: world.Resources{Health: 10, Mana: 5},
		GrowthModCoeffs: []float64{1},
	}
}

func testJob() *world.Archetype {
	return &world.Archetype{
		ID:   "warrior",
		Name: "Warrior",
		Kind: world.ArchetypeJob,
		StartAttributes: world.PrimaryAttributes{
			Strength: 5, Agility: 2, Intelligence: 1,
		},
		GrowthAttributes: world.PrimaryAttributes{
			Strength: 1, Agility: 0.5, Intelligence: 0.25,
		},
		StartResources:  world.Resources{Health: 30, Mana: 10},
		GrowthModCoeffs: []float64{1},
	}
}

// sysEnv wires a deterministic world, the command layer and the hook bridge
// the way main does, minus the network.
type sysEnv struct {
	t     *testing.T
	clock *tick.ManualClock
	wheel *tick.Wheel

	World   *world.World
	Dungeon *world.Dungeon
	Deps    *command.Deps
	Chars   *fakeChars
	AI      *AISystem
	Bridge  *HookBridge
	Lua     *scripting.Engine

	abilities []*world.Ability

	nextSession uint64
}

func newSysEnv(t *testing.T, rolls ...int) *sysEnv {
	t.Helper()

	clock := tick.NewManualClock(0)
	wheel := tick.NewWheel(clock)
	w := world.NewWorld(world.Options{
		Clock:     clock,
		Scheduler: wheel,
		RNG:       tick.NewSequence(rolls...),
		Log:       zap.NewNop(),
	})

	d := world.NewDungeon(w, world.DungeonOptions{
		ID:         "town",
		Name:       "Town",
		Dimensions: world.MapDimensions{Width: 3, Height: 3, Layers: 1},
	})
	d.GenerateRooms(world.RoomOptions{})

	env := &sysEnv{
		t:       t,
		clock:   clock,
		wheel:   wheel,
		World:   w,
		Dungeon: d,
		Chars:   newFakeChars(),
	}

	races := []*world.Archetype{testRace()}
	jobs := []*world.Archetype{testJob()}
	w.Resolvers = world.Resolvers{
		Race: func(id string) *world.Archetype {
			for _, a := range races {
				if a.ID == id {
					return a
				}
			}
			return nil
		},
		Job: func(id string) *world.Archetype {
			for _, a := range jobs {
				if a.ID == id {
					return a
				}
			}
			return nil
		},
		Ability: func(id string) *world.Ability {
			for _, a := range env.abilities {
				if a.ID == id {
					return a
				}
			}
			return nil
		},
	}

	registry := command.NewRegistry()
	command.RegisterAll(registry)

	env.Deps = &command.Deps{
		World:     w,
		Players:   command.NewPlayers(),
		Commands:  registry,
		Accounts:  newFakeAccounts(),
		Chars:     env.Chars,
		Bus:       event.NewBus(),
		Config:    config.Default(),
		Log:       zap.NewNop(),
		Races:     races,
		Jobs:      jobs,
		StartRoom: d.Room(world.Coordinate{X: 1, Y: 1, Z: 0}),
	}

	env.AI = NewAISystem(w, nil, zap.NewNop())
	env.Bridge = NewHookBridge(env.Deps, env.AI, 1, 1, zap.NewNop())
	env.Bridge.Install(w)
	return env
}

func (env *sysEnv) room(x, y int) *world.Room {
	return env.Dungeon.Room(world.Coordinate{X: x, Y: y, Z: 0})
}

// enterNewChar drives a fresh session through account and character creation
// into the world.
func (env *sysEnv) enterNewChar(name string) (*command.Player, *fakeConn) {
	env.t.Helper()
	env.nextSession++
	conn := &fakeConn{}
	p := command.NewPlayer(env.nextSession, conn)
	env.Deps.Players.Add(p)

	for _, line := range []string{
		strings.ToLower(name) + "acct", "secret99", "secret99",
		"create " + name, "human", "warrior",
	} {
		command.HandleLine(p, line, env.Deps)
	}
	require.Equal(env.t, command.StatePlaying, p.State)
	require.NotNil(env.t, p.Mob())

	conn.reset()
	return p, conn
}

// npc drops an uncontrolled mob into a room.
func (env *sysEnv) npc(name string, room *world.Room, opts world.MobOptions) *world.Mob {
	if opts.Display == "" {
		opts.Display = name
	}
	if opts.Keywords == "" {
		opts.Keywords = name
	}
	m := world.NewMob(env.World, opts)
	room.Add(m)
	return m
}

// withLua loads a script into a fresh engine and rewires the AI pass and
// hook bridge around it.
func (env *sysEnv) withLua(script string) *AISystem {
	env.t.Helper()
	dir := env.t.TempDir()
	require.NoError(env.t, os.WriteFile(filepath.Join(dir, "main.lua"), []byte(script), 0o644))
	eng, err := scripting.NewEngine(dir, zap.NewNop())
	require.NoError(env.t, err)
	env.t.Cleanup(eng.Close)

	env.Lua = eng
	env.AI = NewAISystem(env.World, eng, zap.NewNop())
	env.Bridge = NewHookBridge(env.Deps, env.AI, 1, 1, zap.NewNop())
	env.Bridge.Install(env.World)
	return env.AI
}
