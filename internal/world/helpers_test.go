package world

import (
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/gridmud/server/internal/core/tick"
)

// testWorld wires a world onto a manual clock, a hand-pumped wheel and a
// scripted RNG so every test is deterministic.
type testWorld struct {
	*World
	clock *tick.ManualClock
	wheel *tick.Wheel
}

// newTestWorld builds a deterministic world. rolls scripts the RNG; tests
// that never roll can leave it empty.
func newTestWorld(t *testing.T, rolls ...int) *testWorld {
	t.Helper()
	clock := tick.NewManualClock(0)
	wheel := tick.NewWheel(clock)
	return &testWorld{
		World: NewWorld(Options{
			Clock:     clock,
			Scheduler: wheel,
			RNG:       tick.NewSequence(rolls...),
			Log:       zap.NewNop(),
		}),
		clock: clock,
		wheel: wheel,
	}
}

// advance moves the clock forward and pumps every due timer.
func (tw *testWorld) advance(ms int64) {
	tw.clock.Advance(ms)
	tw.wheel.Pump(tw.clock.NowMs())
}

// grid builds a registered dungeon with every cell allocated.
func (tw *testWorld) grid(id string, width, height, layers int) *Dungeon {
	d := NewDungeon(tw.World, DungeonOptions{
		ID:         id,
		Name:       id,
		Dimensions: MapDimensions{Width: width, Height: height, Layers: layers},
	})
	d.GenerateRooms(RoomOptions{})
	return d
}

func at(x, y, z int) Coordinate { return Coordinate{X: x, Y: y, Z: z} }

// sink captures everything a character was sent.
type sink struct {
	lines  []string
	groups []MessageGroup
}

func (s *sink) send(text string, group MessageGroup) {
	s.lines = append(s.lines, text)
	s.groups = append(s.groups, group)
}

func (s *sink) contains(text string) bool {
	for _, l := range s.lines {
		if l == text {
			return true
		}
	}
	return false
}

func (s *sink) count(text string) int {
	n := 0
	for _, l := range s.lines {
		if l == text {
			n++
		}
	}
	return n
}

func (s *sink) reset() {
	s.lines = nil
	s.groups = nil
}

// newPlayerMob builds a player-controlled mob and its capture sink.
func newPlayerMob(tw *testWorld, name string, opts MobOptions) (*Mob, *sink) {
	s := &sink{}
	if opts.Display == "" {
		opts.Display = name
	}
	if opts.Keywords == "" {
		opts.Keywords = name
	}
	m := NewMob(tw.World, opts)
	m.SetCharacter(NewCharacter(name, s.send))
	return m, s
}

// newNPC builds an uncontrolled mob.
func newNPC(tw *testWorld, name string, opts MobOptions) *Mob {
	if opts.Display == "" {
		opts.Display = name
	}
	if opts.Keywords == "" {
		opts.Keywords = name
	}
	return NewMob(tw.World, opts)
}

// testRace and testJob are archetype fixtures with easy numbers:
// level 1 primaries {15, 10, 7}, health 155, mana 65.
func testRace() *Archetype {
	return &Archetype{
		ID:   "human",
		Name: "Human",
		Kind: ArchetypeRace,
		StartAttributes: PrimaryAttributes{
			Strength: 10, Agility: 8, Intelligence: 6,
		},
		GrowthAttributes: PrimaryAttributes{
			Strength: 2, Agility: 1, Intelligence: 1,
		},
		StartResources:  Resources{Health: 50, Mana: 20},
		GrowthResources: Resources{Health: 10, Mana: 5},
		GrowthModCoeffs: []float64{1},
	}
}

func testJob() *Archetype {
	return &Archetype{
		ID:   "warrior",
		Name: "Warrior",
		Kind: ArchetypeJob,
		StartAttributes: PrimaryAttributes{
			Strength: 5, Agility: 2, Intelligence: 1,
		},
		GrowthAttributes: PrimaryAttributes{
			Strength: 1, Agility: 0.5, Intelligence: 0.25,
		},
		StartResources:  Resources{Health: 30, Mana: 10},
		GrowthModCoeffs: []float64{1},
		Abilities: []ArchetypeAbility{
			{AbilityID: "bash", Level: 1},
			{AbilityID: "cleave", Level: 3},
		},
	}
}

// installResolvers wires fixture lookup tables into the world.
func installResolvers(tw *testWorld, races, jobs []*Archetype, abilities []*Ability, effects []*EffectDef) {
	tw.Resolvers = Resolvers{
		Race: func(id string) *Archetype {
			for _, a := range races {
				if a.ID == id {
					return a
				}
			}
			return nil
		},
		Job: func(id string) *Archetype {
			for _, a := range jobs {
				if a.ID == id {
					return a
				}
			}
			return nil
		},
		Ability: func(id string) *Ability {
			for _, a := range abilities {
				if a.ID == id {
					return a
				}
			}
			return nil
		},
		Effect: func(id string) *EffectDef {
			for _, d := range effects {
				if d.ID == id {
					return d
				}
			}
			return nil
		},
	}
}

// requireContained asserts the containment back-pointer invariant in both
// directions.
func requireContained(t *testing.T, parent Entity, child Entity) {
	t.Helper()
	if child.Base().Parent() != parent {
		t.Fatalf("child location = %v, want %v", child.Base().Parent(), parent)
	}
	if !parent.Base().Contains(child) {
		t.Fatalf("parent does not list child %s", describe(child))
	}
}

func describe(e Entity) string {
	return fmt.Sprintf("%s(oid=%d, %q)", e.Kind().TypeTag(), e.Base().OID(), e.Base().Display())
}
