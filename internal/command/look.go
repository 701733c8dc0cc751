package command

import (
	"strconv"
	"strings"

	"github.com/gridmud/server/internal/world"
)

// HandleLook shows the room, or examines one thing in it or in the inventory.
func HandleLook(p *Player, arg string, deps *Deps) {
	if arg == "" {
		lookRoom(p, deps)
		return
	}

	m := p.Mob()
	n, query := splitQuery(arg)

	var target world.Entity
	if room := m.Room(); room != nil {
		target = room.FindMatch(query, n)
	}
	if target == nil {
		target = m.FindMatch(query, n)
	}
	if target == nil {
		p.Send("You see nothing like that here.")
		return
	}

	p.Send(target.Base().Description())
	if tm, ok := target.(*world.Mob); ok && tm != m {
		p.Send(conditionLine(tm))
	}
}

// lookRoom renders the standing room view: title, description, exits,
// then everything else present.
func lookRoom(p *Player, deps *Deps) {
	m := p.Mob()
	room := m.Room()
	if room == nil {
		p.Send("You float in a formless void.")
		return
	}

	p.Send(room.Display())
	if d := room.Description(); d != "" {
		p.Send(d)
	}

	exits := room.PassableExits(&m.Movable)
	if len(exits) == 0 {
		p.Send("Exits: none")
	} else {
		names := make([]string, len(exits))
		for i, dir := range exits {
			names[i] = dir.String()
		}
		p.Send("Exits: " + strings.Join(names, " "))
	}

	for _, e := range room.Contents() {
		if e.Base() == m.Base() {
			continue
		}
		p.Send("  " + e.Base().RoomDescription())
	}
}

// conditionLine summarizes a mob's health without exact numbers.
func conditionLine(m *world.Mob) string {
	max := m.MaxHealth()
	if max <= 0 {
		return m.Display() + " looks indestructible."
	}
	switch ratio := float64(m.Health()) / float64(max); {
	case ratio >= 1:
		return m.Display() + " is in perfect health."
	case ratio >= 0.75:
		return m.Display() + " has a few scratches."
	case ratio >= 0.5:
		return m.Display() + " is wounded."
	case ratio >= 0.25:
		return m.Display() + " is badly hurt."
	default:
		return m.Display() + " is near death."
	}
}

// splitQuery peels an "N." ordinal prefix off a match query, so "2.sword"
// addresses the second sword.
func splitQuery(arg string) (int, string) {
	if i := strings.IndexByte(arg, '.'); i > 0 {
		if n, err := strconv.Atoi(arg[:i]); err == nil && n > 0 {
			return n, strings.TrimSpace(arg[i+1:])
		}
	}
	return 1, arg
}
