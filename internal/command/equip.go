package command

import (
	"github.com/gridmud/server/internal/world"
)

// HandleWear puts on a carried piece of equipment.
func HandleWear(p *Player, arg string, deps *Deps) {
	if arg == "" {
		p.Send("Wear what?")
		return
	}
	equipFromInventory(p, arg, false)
}

// HandleWield readies a carried weapon.
func HandleWield(p *Player, arg string, deps *Deps) {
	if arg == "" {
		p.Send("Wield what?")
		return
	}
	equipFromInventory(p, arg, true)
}

func equipFromInventory(p *Player, arg string, wantWeapon bool) {
	m := p.Mob()
	n, query := splitQuery(arg)
	target := m.FindMatch(query, n)
	if target == nil {
		p.Send("You aren't carrying that.")
		return
	}

	w, ok := target.(world.Wearable)
	if !ok {
		if wantWeapon {
			p.Send("You can't wield that.")
		} else {
			p.Send("You can't wear that.")
		}
		return
	}
	if wantWeapon && w.Slot() != world.SlotWielded {
		p.Send("You can't wield that.")
		return
	}
	if !wantWeapon && w.Slot() == world.SlotWielded {
		p.Send("Try wielding it.")
		return
	}
	if m.IsEquipped(w) {
		p.Send("You're already using it.")
		return
	}

	displaced := m.Equip(w)
	if displaced != nil {
		p.Sendf("You stop using %s.", displaced.Base().Display())
	}
	verb := "wear"
	if wantWeapon {
		verb = "wield"
	}
	p.Sendf("You %s %s.", verb, w.Base().Display())
	if room := m.Room(); room != nil {
		room.Act(m, "{User} "+verb+"s "+w.Base().Display()+".", world.GroupInfo)
	}
}

// HandleRemove takes off something currently equipped.
func HandleRemove(p *Player, arg string, deps *Deps) {
	if arg == "" {
		p.Send("Remove what?")
		return
	}
	m := p.Mob()
	n, query := splitQuery(arg)

	match := 0
	for _, w := range m.Equipped() {
		if !w.Base().Match(query) {
			continue
		}
		match++
		if match < n {
			continue
		}
		m.Unequip(w.Slot())
		p.Sendf("You stop using %s.", w.Base().Display())
		if room := m.Room(); room != nil {
			room.Act(m, "{User} stops using "+w.Base().Display()+".", world.GroupInfo)
		}
		return
	}
	p.Send("You aren't using that.")
}
