package command

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gridmud/server/internal/config"
	"github.com/gridmud/server/internal/core/event"
	"github.com/gridmud/server/internal/core/tick"
	"github.com/gridmud/server/internal/persist"
	"github.com/gridmud/server/internal/world"
)

// fakeConn records everything the command layer pushes at a session.
type fakeConn struct {
	lines   []string
	groups  []world.MessageGroup
	prompts []string
	echo    []bool
	color   bool
	closed  bool
}

func (c *fakeConn) Send(text string, group world.MessageGroup) {
	c.lines = append(c.lines, text)
	c.groups = append(c.groups, group)
}
func (c *fakeConn) Prompt(p string)      { c.prompts = append(c.prompts, p) }
func (c *fakeConn) SuppressEcho(on bool) { c.echo = append(c.echo, on) }
func (c *fakeConn) Color() bool          { return c.color }
func (c *fakeConn) Close()               { c.closed = true }
func (c *fakeConn) IsClosed() bool       { return c.closed }

// contains matches a substring anywhere in the sent lines.
func (c *fakeConn) contains(sub string) bool {
	for _, l := range c.lines {
		if strings.Contains(l, sub) {
			return true
		}
	}
	return false
}

func (c *fakeConn) lastPrompt() string {
	if len(c.prompts) == 0 {
		return ""
	}
	return c.prompts[len(c.prompts)-1]
}

func (c *fakeConn) reset() {
	c.lines = nil
	c.groups = nil
	c.prompts = nil
}

// fakeAccounts is an in-memory AccountStore. Hashes are "hash:" plus the
// password, which keeps VerifyPassword trivial.
type fakeAccounts struct {
	accounts map[string]*persist.Account
	touched  int
	loadErr  error
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{accounts: make(map[string]*persist.Account)}
}

func (s *fakeAccounts) Load(_ context.Context, name string) (*persist.Account, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
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

func (s *fakeAccounts) Touch(_ context.Context, name string) error {
	s.touched++
	return nil
}

// fakeChars is an in-memory CharacterStore keyed account then name.
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

// testRace and testJob mirror the archetype fixtures used by the world
// tests: level 1 primaries {15, 10, 7}, health 155, mana 65.
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

// testEnv wires a deterministic world, in-memory stores and a registered
// command table behind one Deps value.
type testEnv struct {
	t     *testing.T
	clock *tick.ManualClock
	wheel *tick.Wheel

	World    *world.World
	Dungeon  *world.Dungeon
	Deps     *Deps
	Accounts *fakeAccounts
	Chars    *fakeChars

	abilities []*world.Ability
	effects   []*world.EffectDef

	nextSession uint64
}

func newTestEnv(t *testing.T, rolls ...int) *testEnv {
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

	env := &testEnv{
		t:        t,
		clock:    clock,
		wheel:    wheel,
		World:    w,
		Dungeon:  d,
		Accounts: newFakeAccounts(),
		Chars:    newFakeChars(),
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
		Effect: func(id string) *world.EffectDef {
			for _, def := range env.effects {
				if def.ID == id {
					return def
				}
			}
			return nil
		},
	}

	registry := NewRegistry()
	RegisterAll(registry)

	env.Deps = &Deps{
		World:     w,
		Players:   NewPlayers(),
		Commands:  registry,
		Accounts:  env.Accounts,
		Chars:     env.Chars,
		Bus:       event.NewBus(),
		Config:    config.Default(),
		Log:       zap.NewNop(),
		Races:     races,
		Jobs:      jobs,
		StartRoom: d.Room(world.Coordinate{X: 1, Y: 1, Z: 0}),
	}
	return env
}

func (env *testEnv) room(x, y int) *world.Room {
	return env.Dungeon.Room(world.Coordinate{X: x, Y: y, Z: 0})
}

// connect wires a fresh session into the player registry.
func (env *testEnv) connect() (*Player, *fakeConn) {
	env.nextSession++
	conn := &fakeConn{}
	p := NewPlayer(env.nextSession, conn)
	env.Deps.Players.Add(p)
	return p, conn
}

// line feeds one input line through the dispatcher.
func (env *testEnv) line(p *Player, text string) {
	HandleLine(p, text, env.Deps)
}

// enterNewChar drives a session through account creation, character
// creation and into the world.
func (env *testEnv) enterNewChar(name string) (*Player, *fakeConn) {
	env.t.Helper()
	p, conn := env.connect()

	env.line(p, strings.ToLower(name)+"acct")
	env.line(p, "secret99")
	env.line(p, "secret99")
	require.Equal(env.t, StateCharSelect, p.State, "account creation should land on character select")

	env.line(p, "create "+name)
	env.line(p, "human")
	env.line(p, "warrior")
	require.Equal(env.t, StatePlaying, p.State, "character creation should enter the world")
	require.NotNil(env.t, p.Mob())

	conn.reset()
	return p, conn
}

// npc drops an uncontrolled mob into a room.
func (env *testEnv) npc(name string, room *world.Room, opts world.MobOptions) *world.Mob {
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
