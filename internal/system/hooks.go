package system

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gridmud/server/internal/command"
	"github.com/gridmud/server/internal/core/event"
	"github.com/gridmud/server/internal/world"
)

// HookBridge receives the world's synchronous callbacks and turns them into
// game rules: death handling with loot and respawn, level-up grants, spawn
// wiring and dungeon reset announcements. It is not a phased system; Install
// hangs it off the world before the loop starts.
type HookBridge struct {
	deps     *command.Deps
	ai       *AISystem
	expRate  float64
	goldRate float64
	log      *zap.Logger
}

func NewHookBridge(deps *command.Deps, ai *AISystem, expRate, goldRate float64, log *zap.Logger) *HookBridge {
	if expRate <= 0 {
		expRate = 1
	}
	if goldRate <= 0 {
		goldRate = 1
	}
	return &HookBridge{deps: deps, ai: ai, expRate: expRate, goldRate: goldRate, log: log}
}

// Install points the world's hooks at the bridge.
func (h *HookBridge) Install(w *world.World) {
	w.Hooks.Death = h.onDeath
	w.Hooks.LevelUp = h.onLevelUp
	w.Hooks.MobSpawned = h.onMobSpawned
	w.Hooks.DungeonReset = h.onDungeonReset
}

func (h *HookBridge) onDeath(victim, killer *world.Mob) {
	if victim.Destroyed() {
		return
	}
	room := victim.Room()
	victim.Send("You have been slain.", world.GroupCombat)
	if room != nil {
		room.Act(victim, "{User} is DEAD!", world.GroupCombat)
	}

	// Break every lock on the corpse. The victim sits at zero health, so NPC
	// re-engagement skips it and falls through to the next live threat.
	for _, m := range h.deps.World.CombatQueue.Snapshot() {
		if m.CombatTarget() == victim {
			m.SetCombatTarget(nil)
		}
	}

	if killer != nil && killer != victim && !killer.IsNPC() {
		raw := world.KillExperience(killer.Level(), victim.Level())
		award := int(float64(raw) * h.expRate)
		if award < 1 {
			award = 1
		}
		killer.Send(fmt.Sprintf("You gain %d experience.", award), world.GroupInfo)
		killer.GainExperience(award)
	}

	event.Emit(h.deps.Bus, event.MobDied{Victim: victim, Killer: killer})

	// Deliver the death event to the victim's script now; after Destroy the
	// sink is gone.
	if h.ai != nil {
		h.ai.React(victim, world.AIEvent{Kind: world.AIDeath, Actor: killer})
	}

	if victim.IsNPC() {
		h.dropLoot(victim, room)
		victim.Destroy()
		return
	}
	h.respawn(victim)
}

// dropLoot strips the corpse onto the floor: worn gear comes off, portable
// inventory drops, carried coin becomes a pile scaled by the gold rate.
func (h *HookBridge) dropLoot(victim *world.Mob, room *world.Room) {
	if room == nil {
		return
	}
	for _, w := range victim.Equipped() {
		victim.Unequip(w.Slot())
	}
	dropped := 0
	for _, e := range victim.Contents() {
		if e.Base().Destroyed() || !lootable(e) {
			continue
		}
		e.Base().Move(room)
		dropped++
	}
	if coins := victim.Value(); coins > 0 {
		amount := int(float64(coins) * h.goldRate)
		if amount < 1 {
			amount = 1
		}
		world.NewCurrency(h.deps.World, amount).Move(room)
		dropped++
	}
	if dropped > 0 {
		room.Act(victim, "{User}'s belongings scatter across the ground.", world.GroupInfo)
	}
}

// respawn returns a dead player to the starting room at half health.
func (h *HookBridge) respawn(victim *world.Mob) {
	victim.SetCombatTarget(nil)
	victim.Send("Death takes you. The world dims, then returns.", world.GroupInfo)

	start := h.deps.StartRoom
	if start != nil && victim.Room() != start {
		victim.Move(start)
	}
	hp := victim.MaxHealth() / 2
	if hp < 1 {
		hp = 1
	}
	victim.SetHealth(hp)
	victim.SetExhaustion(0)
	if start != nil {
		start.Act(victim, "{User} staggers back into the world.", world.GroupInfo)
	}
	if c := victim.Character(); c != nil {
		c.MarkDirty()
		h.log.Info("player died",
			zap.String("name", c.Name()),
			zap.Int("level", victim.Level()),
		)
	}
}

func (h *HookBridge) onLevelUp(m *world.Mob, from, to int) {
	if room := m.Room(); room != nil {
		room.Act(m, fmt.Sprintf("{User} has attained level %d!", to), world.GroupInfo)
	}
	// Grants resolve silently otherwise; announce each as it is learned.
	if res := h.deps.World.Resolvers.Ability; res != nil {
		for _, aa := range m.GetUnlearnedArchetypeAbilities() {
			a := res(aa.AbilityID)
			if a == nil {
				continue
			}
			m.LearnArchetypeAbility(a)
			m.Send(fmt.Sprintf("You learn %s.", a.Name), world.GroupInfo)
		}
	}
	event.Emit(h.deps.Bus, event.LeveledUp{Mob: m, From: from, To: to})
	if c := m.Character(); c != nil {
		c.MarkDirty()
		h.log.Info("level up",
			zap.String("name", c.Name()),
			zap.Int("from", from),
			zap.Int("to", to),
		)
	}
}

func (h *HookBridge) onMobSpawned(m *world.Mob) {
	command.StockShopkeeper(m)
	if h.ai != nil && m.AIScript() != "" {
		h.ai.Attach(m)
	}
}

// onDungeonReset relays the repopulation to the bus. The dungeon broadcasts
// its own reset message.
func (h *HookBridge) onDungeonReset(d *world.Dungeon, spawned int) {
	event.Emit(h.deps.Bus, event.DungeonReset{Dungeon: d, Spawned: spawned})
}

// lootable reports whether a corpse's child drops to the ground on death.
func lootable(e world.Entity) bool {
	switch e.Kind() {
	case world.KindItem, world.KindCurrency, world.KindEquipment, world.KindArmor, world.KindWeapon:
		return true
	}
	return false
}
