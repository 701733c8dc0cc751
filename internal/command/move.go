package command

import (
	"github.com/gridmud/server/internal/world"
)

// walk returns a handler that steps one fixed direction.
func walk(name string) Handler {
	dir, ok := world.ParseDirection(name)
	if !ok {
		panic("command: unknown direction " + name)
	}
	return func(p *Player, _ string, deps *Deps) {
		moveDir(p, dir, deps)
	}
}

// HandleGo steps in a named direction, "go north" style.
func HandleGo(p *Player, arg string, deps *Deps) {
	dir, ok := world.ParseDirection(arg)
	if !ok {
		p.Send("Go where?")
		return
	}
	moveDir(p, dir, deps)
}

func moveDir(p *Player, dir world.Direction, deps *Deps) {
	m := p.Mob()
	if m.InCombat() {
		p.Send("You're fighting! Try flee.")
		return
	}
	if !m.CanStep(dir) || !m.Step(dir) {
		p.Send("You can't go that way.")
		return
	}
	lookRoom(p, deps)
	CheckRoomAggression(m.Room())
}

// HandleFlee drops out of combat through a random passable exit. The round
// already swung stays swung; fleeing only stops the next one.
func HandleFlee(p *Player, _ string, deps *Deps) {
	m := p.Mob()
	if !m.InCombat() {
		p.Send("You're not fighting anyone.")
		return
	}
	room := m.Room()
	if room == nil {
		return
	}

	exits := room.PassableExits(&m.Movable)
	if len(exits) == 0 {
		p.Send("There's nowhere to run!")
		return
	}

	dir := exits[deps.World.RNG().Intn(len(exits))]
	m.SetCombatTarget(nil)
	p.Sendf("You flee %s!", dir)
	if !m.Step(dir) {
		return
	}
	lookRoom(p, deps)
	CheckRoomAggression(m.Room())
}

// CheckRoomAggression lets aggressive NPCs jump idle players who just became
// visible, then re-evaluates threat-driven target switches for every NPC
// present. The wander pass calls this after NPC movement too.
func CheckRoomAggression(room *world.Room) {
	if room == nil {
		return
	}

	mobs := room.Mobs()
	for _, npc := range mobs {
		if !npc.IsNPC() || npc.InCombat() ||
			!npc.HasBehavior(world.BehaviorAggressive) ||
			npc.HasBehavior(world.BehaviorShopkeeper) {
			continue
		}
		for _, target := range mobs {
			if target.IsNPC() || target == npc {
				continue
			}
			npc.SetCombatTarget(target)
			target.Send(npc.Display()+" attacks you!", world.GroupCombat)
			room.Act(npc, "{User} attacks "+target.Display()+"!", world.GroupCombat, target)
			break
		}
	}

	for _, npc := range mobs {
		if npc.IsNPC() {
			npc.ProcessThreatSwitching()
		}
	}
}
