package command

import (
	"fmt"
	"strings"

	"github.com/gridmud/server/internal/world"
)

// HandleScore prints the character sheet.
func HandleScore(p *Player, _ string, deps *Deps) {
	m := p.Mob()

	var b strings.Builder
	fmt.Fprintf(&b, "%s, level %d %s %s\n",
		p.Char.Name(), m.Level(), archetypeName(m.Race()), archetypeName(m.Job()))
	fmt.Fprintf(&b, "Health %d/%d  Mana %d/%d  Exhaustion %d/%d\n",
		m.Health(), m.MaxHealth(), m.Mana(), m.MaxMana(), m.Exhaustion(), world.MaxExhaustion)

	pr := m.Primary()
	fmt.Fprintf(&b, "Strength %.1f  Agility %.1f  Intelligence %.1f\n",
		pr.Strength, pr.Agility, pr.Intelligence)

	sec := m.Secondary()
	fmt.Fprintf(&b, "Attack %.1f  Defense %.1f  Spellpower %.1f  Accuracy %.1f  Avoidance %.1f\n",
		sec.AttackPower, sec.Defense, sec.SpellPower, sec.Accuracy, sec.Avoidance)

	fmt.Fprintf(&b, "Experience %d/%d  Coins %d",
		m.Experience(), world.ExperienceThreshold, m.Value())
	p.Send(b.String())
}

// HandleInventory lists carried, unequipped belongings.
func HandleInventory(p *Player, _ string, deps *Deps) {
	m := p.Mob()
	p.Send("You are carrying:")
	count := 0
	for _, e := range m.Contents() {
		if w, ok := e.(world.Wearable); ok && m.IsEquipped(w) {
			continue
		}
		p.Send("  " + e.Base().Display())
		count++
	}
	if count == 0 {
		p.Send("  nothing")
	}
	p.Sendf("Coins: %d", m.Value())
}

// HandleEquipment lists worn and wielded gear by slot.
func HandleEquipment(p *Player, _ string, deps *Deps) {
	m := p.Mob()
	eq := m.Equipped()
	if len(eq) == 0 {
		p.Send("You are using nothing at all.")
		return
	}
	p.Send("You are using:")
	for _, w := range eq {
		p.Sendf("  [%s] %s", w.Slot(), w.Base().Display())
	}
}

// HandleAbilities lists learned abilities with proficiency and cost.
func HandleAbilities(p *Player, _ string, deps *Deps) {
	m := p.Mob()
	learned := m.LearnedAbilities()
	if len(learned) == 0 {
		p.Send("You know no abilities yet.")
		return
	}
	p.Send("You have learned:")
	for _, a := range learned {
		p.Sendf("  %-20s %3d%%  (%d mana)", a.Name, m.ProficiencyOf(a), a.ManaCost)
	}
}

// HandleWho lists everyone in the world.
func HandleWho(p *Player, _ string, deps *Deps) {
	players := deps.Players.InWorld()
	p.Send("Adventurers abroad:")
	for _, other := range players {
		m := other.Mob()
		if m == nil {
			continue
		}
		p.Sendf("  %-16s level %d %s %s",
			other.Char.Name(), m.Level(), archetypeName(m.Race()), archetypeName(m.Job()))
	}
	p.Sendf("%d in the world.", len(players))
}

func archetypeName(a *world.Archetype) string {
	if a == nil {
		return "wanderer"
	}
	return a.Name
}
