package command

import (
	"github.com/gridmud/server/internal/world"
)

// HandleSay speaks to the room.
func HandleSay(p *Player, arg string, deps *Deps) {
	if arg == "" {
		p.Send("Say what?")
		return
	}
	m := p.Mob()
	room := m.Room()
	if room == nil {
		return
	}
	p.Conn.Send("You say, \""+arg+"\"", world.GroupChat)
	room.Act(m, "{User} says, \""+arg+"\"", world.GroupChat)
}

// HandleShout carries across the whole dungeon.
func HandleShout(p *Player, arg string, deps *Deps) {
	if arg == "" {
		p.Send("Shout what?")
		return
	}
	m := p.Mob()
	room := m.Room()
	if room == nil || room.Dungeon() == nil {
		p.Send("Your voice dies in the void.")
		return
	}

	p.Conn.Send("You shout, \""+arg+"\"", world.GroupChat)
	text := m.Display() + " shouts, \"" + arg + "\""
	for _, r := range room.Dungeon().Rooms() {
		r.Echo(text, world.GroupChat, m)
	}
}
