package command

import (
	"strings"

	"github.com/gridmud/server/internal/world"
)

// portable reports whether an entity can be picked up and carried.
func portable(e world.Entity) bool {
	switch e.Kind() {
	case world.KindItem, world.KindCurrency, world.KindEquipment, world.KindArmor, world.KindWeapon:
		return true
	}
	return false
}

// isContainer reports whether an entity accepts contents.
func isContainer(e world.Entity) bool {
	c, ok := e.(interface{ IsContainer() bool })
	return ok && c.IsContainer()
}

// HandleGet picks something up, or pulls it out of a container:
// "get sword", "get 2.coin", "get dagger from chest".
func HandleGet(p *Player, arg string, deps *Deps) {
	if arg == "" {
		p.Send("Get what?")
		return
	}
	m := p.Mob()
	room := m.Room()
	if room == nil {
		return
	}

	itemArg, contArg, fromContainer := cutFrom(arg)
	n, query := splitQuery(itemArg)

	source := world.Entity(nil)
	if fromContainer {
		cn, cq := splitQuery(contArg)
		cont := m.FindMatch(cq, cn)
		if cont == nil {
			cont = room.FindMatch(cq, cn)
		}
		if cont == nil {
			p.Send("You don't see that container.")
			return
		}
		if !isContainer(cont) {
			p.Sendf("%s isn't a container.", cont.Base().Display())
			return
		}
		source = cont
	}

	var target world.Entity
	if source != nil {
		target = source.Base().FindMatch(query, n)
	} else {
		target = room.FindMatch(query, n)
	}
	if target == nil {
		p.Send("You don't see that here.")
		return
	}
	if !portable(target) {
		p.Send("You can't take that.")
		return
	}

	// Coins credit the purse instead of filling the pack.
	if cur, ok := target.(*world.Currency); ok {
		amount := cur.TakenBy(m)
		p.Sendf("You pick up %d coins.", amount)
		room.Act(m, "{User} picks up some coins.", world.GroupInfo)
		return
	}

	display := target.Base().Display()
	target.Base().Move(m)
	if source != nil {
		p.Sendf("You get %s from %s.", display, source.Base().Display())
		room.Act(m, "{User} gets "+display+" from "+source.Base().Display()+".", world.GroupInfo)
	} else {
		p.Sendf("You get %s.", display)
		room.Act(m, "{User} gets "+display+".", world.GroupInfo)
	}
}

// HandleDrop puts something from the inventory on the ground.
func HandleDrop(p *Player, arg string, deps *Deps) {
	if arg == "" {
		p.Send("Drop what?")
		return
	}
	m := p.Mob()
	room := m.Room()
	if room == nil {
		return
	}

	n, query := splitQuery(arg)
	target := m.FindMatch(query, n)
	if target == nil {
		p.Send("You aren't carrying that.")
		return
	}
	if w, ok := target.(world.Wearable); ok && m.IsEquipped(w) {
		p.Send("Remove it first.")
		return
	}

	display := target.Base().Display()
	target.Base().Move(room)
	p.Sendf("You drop %s.", display)
	room.Act(m, "{User} drops "+display+".", world.GroupInfo)
}

// HandlePut stores an inventory item inside a container:
// "put dagger in chest".
func HandlePut(p *Player, arg string, deps *Deps) {
	itemArg, contArg, ok := cutIn(arg)
	if !ok {
		p.Send("Put what in what?")
		return
	}
	m := p.Mob()
	room := m.Room()

	n, query := splitQuery(itemArg)
	target := m.FindMatch(query, n)
	if target == nil {
		p.Send("You aren't carrying that.")
		return
	}
	if w, ok := target.(world.Wearable); ok && m.IsEquipped(w) {
		p.Send("Remove it first.")
		return
	}

	cn, cq := splitQuery(contArg)
	cont := m.FindMatch(cq, cn)
	if cont == nil && room != nil {
		cont = room.FindMatch(cq, cn)
	}
	if cont == nil {
		p.Send("You don't see that container.")
		return
	}
	if !isContainer(cont) {
		p.Sendf("%s isn't a container.", cont.Base().Display())
		return
	}
	if cont == target {
		p.Send("It won't fit inside itself.")
		return
	}
	// Refuse cycles: the container must not sit inside the item.
	for anc := cont.Base().Parent(); anc != nil; anc = anc.Base().Parent() {
		if anc == target {
			p.Send("It won't fit inside itself.")
			return
		}
	}

	display := target.Base().Display()
	target.Base().Move(cont)
	p.Sendf("You put %s in %s.", display, cont.Base().Display())
	if room != nil {
		room.Act(m, "{User} puts "+display+" in "+cont.Base().Display()+".", world.GroupInfo)
	}
}

// cutFrom splits "dagger from chest" into item and container parts.
func cutFrom(arg string) (item, container string, ok bool) {
	return cutKeyword(arg, " from ")
}

// cutIn splits "dagger in chest" into item and container parts.
func cutIn(arg string) (item, container string, ok bool) {
	if item, cont, found := cutKeyword(arg, " in "); found {
		return item, cont, true
	}
	return cutKeyword(arg, " into ")
}

func cutKeyword(arg, sep string) (string, string, bool) {
	i := strings.Index(strings.ToLower(arg), sep)
	if i < 0 {
		return arg, "", false
	}
	return strings.TrimSpace(arg[:i]), strings.TrimSpace(arg[i+len(sep):]), true
}
