package command

import (
	"math"
	"strconv"
	"strings"

	"github.com/gridmud/server/internal/world"
)

// HandleKill engages a target in the room. The combat pass swings the first
// round when it next runs.
func HandleKill(p *Player, arg string, deps *Deps) {
	if arg == "" {
		p.Send("Kill what?")
		return
	}
	m := p.Mob()
	room := m.Room()
	if room == nil {
		return
	}

	target := matchMob(room, arg)
	if target == nil {
		p.Send("You don't see them here.")
		return
	}
	if target == m {
		p.Send("You can't bring yourself to do that.")
		return
	}
	if !target.IsNPC() {
		p.Send("The town guard frowns on dueling.")
		return
	}
	if target.HasBehavior(world.BehaviorShopkeeper) {
		p.Send("They want your coin, not your blood.")
		return
	}
	if m.CombatTarget() == target {
		p.Send("You're already fighting them!")
		return
	}

	m.SetCombatTarget(target)
	p.Conn.Send("You attack "+target.Display()+"!", world.GroupCombat)
	target.Send(m.Display()+" attacks you!", world.GroupCombat)
	room.Act(m, "{User} attacks "+target.Display()+"!", world.GroupCombat, target)
}

// HandleCast uses a learned ability: "cast fireball rat", "cast mend".
// Hostile casts engage; every cast trains proficiency.
func HandleCast(p *Player, arg string, deps *Deps) {
	if arg == "" {
		p.Send("Cast what?")
		return
	}
	m := p.Mob()

	abilityQuery, targetArg := splitCommand(arg)
	a := matchAbility(m, abilityQuery)
	if a == nil {
		p.Send("You don't know that.")
		return
	}
	if m.Mana() < a.ManaCost {
		p.Send("You don't have the mana.")
		return
	}

	// Proficiency scales potency from half strength toward full.
	potency := 0.5 + float64(m.ProficiencyOf(a))/200
	amount := int(math.Round(a.Power * potency))
	if a.Power > 0 && amount < 1 {
		amount = 1
	}

	switch a.Target {
	case world.TargetSelf:
		m.AdjustMana(-a.ManaCost)
		if amount > 0 {
			m.Heal(amount)
			p.Sendf("You cast %s and feel renewed.", a.Name)
		} else {
			p.Sendf("You cast %s.", a.Name)
		}
		if a.EffectID != "" && deps.World.Resolvers.Effect != nil {
			if def := deps.World.Resolvers.Effect(a.EffectID); def != nil {
				m.AddEffect(def, m, nil)
			}
		}
		if room := m.Room(); room != nil {
			room.Act(m, "{User} casts "+a.Name+".", world.GroupInfo)
		}

	case world.TargetEnemy:
		room := m.Room()
		if room == nil {
			return
		}
		var t *world.Mob
		if targetArg != "" {
			t = matchMob(room, targetArg)
			if t == nil {
				p.Send("You don't see them here.")
				return
			}
		} else {
			t = m.CombatTarget()
			if t == nil {
				p.Send("Cast it on whom?")
				return
			}
		}
		if t == m {
			p.Send("You can't bring yourself to do that.")
			return
		}
		if !t.IsNPC() {
			p.Send("The town guard frowns on dueling.")
			return
		}

		m.AdjustMana(-a.ManaCost)
		// Read the name before the blow lands; a killing blow destroys the target.
		targetName := t.Display()
		dealt := strconv.Itoa(t.Damage(m, amount, a.DamageType))
		p.Conn.Send("Your "+a.Name+" hits "+targetName+" for "+dealt+".", world.GroupCombat)
		t.Send(m.Display()+"'s "+a.Name+" hits you for "+dealt+".", world.GroupCombat)
		room.Act(m, "{User}'s "+a.Name+" hits "+targetName+".", world.GroupCombat, t)

		if a.EffectID != "" && deps.World.Resolvers.Effect != nil {
			if def := deps.World.Resolvers.Effect(a.EffectID); def != nil && !t.Destroyed() {
				t.AddEffect(def, m, nil)
			}
		}
		if !m.InCombat() && !t.Destroyed() {
			m.SetCombatTarget(t)
		}

	default:
		p.Send("That ability refuses to answer.")
		return
	}

	m.IncrementAbilityUse(a)
}

// matchMob finds the nth mob in the room matching a query.
func matchMob(room *world.Room, arg string) *world.Mob {
	n, query := splitQuery(arg)
	count := 0
	for _, m := range room.Mobs() {
		if !m.Match(query) {
			continue
		}
		count++
		if count == n {
			return m
		}
	}
	return nil
}

// matchAbility resolves a learned ability by name or id prefix.
func matchAbility(m *world.Mob, query string) *world.Ability {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	for _, a := range m.LearnedAbilities() {
		if strings.ToLower(a.ID) == query || strings.ToLower(a.Name) == query {
			return a
		}
	}
	for _, a := range m.LearnedAbilities() {
		if strings.HasPrefix(strings.ToLower(a.Name), query) || strings.HasPrefix(strings.ToLower(a.ID), query) {
			return a
		}
	}
	return nil
}
