package world

import (
	"time"

	"go.uber.org/zap"

	"github.com/gridmud/server/internal/core/tick"
)

// World owns the global registries and the injected runtime collaborators.
// Everything here is mutated only from the game loop goroutine; the core
// takes no locks.
type World struct {
	clock tick.Clock
	sched tick.Scheduler
	rng   tick.RNG
	log   *zap.Logger

	nextOID func() int64

	dungeons     map[string]*Dungeon
	dungeonOrder []string
	templates    map[string]*Template

	// Links is the global set of live room links.
	Links *Registry[*RoomLink]
	// CombatQueue holds mobs with a combat target, polled by the combat tick.
	CombatQueue *Registry[*Mob]
	// RegenSet holds mobs with any resource below max.
	RegenSet *Registry[*Mob]
	// EffectSet holds mobs with effect timers that need servicing.
	EffectSet *Registry[*Mob]
	// Wanderers holds NPCs with the wander behavior.
	Wanderers *Registry[*Mob]

	// Resolvers look definition-table entries up by id. Installed by the
	// data layer before templates or saves referencing those ids load.
	Resolvers Resolvers

	// Hooks are driver callbacks invoked synchronously by the core.
	Hooks Hooks

	// Factory builds entities for resets and deserialization. Defaults to
	// the built-in CreateFromTemplate; replaceable for custom spawn
	// pipelines.
	Factory func(t *Template) (Entity, error)

	effectPump tick.Handle
}

// Resolvers are the by-id lookup functions for definition tables.
type Resolvers struct {
	Race    func(id string) *Archetype
	Job     func(id string) *Archetype
	Ability func(id string) *Ability
	Effect  func(id string) *EffectDef
}

// Hooks are the driver-side handlers the core calls into.
type Hooks struct {
	// Death runs when a mob's health reaches zero. killer may be nil.
	Death func(victim, killer *Mob)
	// LevelUp runs after a mob gains one or more levels.
	LevelUp func(m *Mob, from, to int)
	// MobSpawned runs after the factory finishes building a mob.
	MobSpawned func(m *Mob)
	// DungeonReset runs after ExecuteResets spawned anything.
	DungeonReset func(d *Dungeon, spawned int)
}

// Options configure NewWorld. Zero fields get working defaults.
type Options struct {
	Clock     tick.Clock
	Scheduler tick.Scheduler
	RNG       tick.RNG
	Log       *zap.Logger
	// NextOID mints process-unique object ids. The default is a local
	// counter starting at 1; negative sentinels from saves are accepted
	// as-is.
	NextOID func() int64
}

func NewWorld(opts Options) *World {
	w := &World{
		clock:       opts.Clock,
		sched:       opts.Scheduler,
		rng:         opts.RNG,
		log:         opts.Log,
		nextOID:     opts.NextOID,
		dungeons:    make(map[string]*Dungeon),
		templates:   make(map[string]*Template),
		Links:       NewRegistry[*RoomLink](),
		CombatQueue: NewRegistry[*Mob](),
		RegenSet:    NewRegistry[*Mob](),
		EffectSet:   NewRegistry[*Mob](),
		Wanderers:   NewRegistry[*Mob](),
	}
	if w.clock == nil {
		w.clock = tick.SystemClock{}
	}
	if w.sched == nil {
		w.sched = tick.NewWheel(w.clock)
	}
	if w.rng == nil {
		w.rng = tick.NewRNG(time.Now().UnixNano())
	}
	if w.log == nil {
		w.log = zap.NewNop()
	}
	if w.nextOID == nil {
		var n int64
		w.nextOID = func() int64 {
			n++
			return n
		}
	}
	w.Factory = func(t *Template) (Entity, error) {
		return w.CreateFromTemplate(t, 0)
	}
	return w
}

func (w *World) Clock() tick.Clock         { return w.clock }
func (w *World) Scheduler() tick.Scheduler { return w.sched }
func (w *World) RNG() tick.RNG             { return w.rng }
func (w *World) Log() *zap.Logger          { return w.log }

// NowMs is the current world time in milliseconds.
func (w *World) NowMs() int64 { return w.clock.NowMs() }

// MintOID issues the next object id.
func (w *World) MintOID() int64 { return w.nextOID() }

// DungeonByID returns the registered dungeon, or nil.
func (w *World) DungeonByID(id string) *Dungeon { return w.dungeons[id] }

// Dungeons returns the registered dungeons in registration order.
func (w *World) Dungeons() []*Dungeon {
	out := make([]*Dungeon, 0, len(w.dungeonOrder))
	for _, id := range w.dungeonOrder {
		if d, ok := w.dungeons[id]; ok {
			out = append(out, d)
		}
	}
	return out
}

func (w *World) registerDungeon(d *Dungeon) {
	w.dungeons[d.id] = d
	w.dungeonOrder = append(w.dungeonOrder, d.id)
}

func (w *World) unregisterDungeon(id string) {
	if _, ok := w.dungeons[id]; !ok {
		return
	}
	delete(w.dungeons, id)
	for i, o := range w.dungeonOrder {
		if o == id {
			w.dungeonOrder = append(w.dungeonOrder[:i], w.dungeonOrder[i+1:]...)
			break
		}
	}
}

// AddGlobalTemplate registers a template usable from any dungeon by its
// plain id.
func (w *World) AddGlobalTemplate(t *Template) {
	w.templates[t.ID()] = t
}

// GlobalTemplate returns a world-level template, or nil.
func (w *World) GlobalTemplate(id string) *Template { return w.templates[id] }

// FindByOID scans the registered dungeons' contents for an object id.
// Returns nil when no live object carries it.
func (w *World) FindByOID(oid int64) Entity {
	for _, id := range w.dungeonOrder {
		d := w.dungeons[id]
		if d == nil {
			continue
		}
		for _, e := range d.contents.Snapshot() {
			if e.Base().oid == oid {
				return e
			}
		}
	}
	return nil
}
