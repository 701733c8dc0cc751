package command

import (
	"strings"

	"github.com/gridmud/server/internal/net"
	"github.com/gridmud/server/internal/world"
)

// HandleMap draws the dungeon floor the player stands on. One cell per room,
// the player as @, unset glyphs fall back to passability marks.
func HandleMap(p *Player, _ string, deps *Deps) {
	m := p.Mob()
	room := m.Room()
	if room == nil || room.Dungeon() == nil {
		p.Send("There is no charting this place.")
		return
	}

	d := room.Dungeon()
	dims := d.Dimensions()
	here := room.Coordinates()
	useColor := p.Conn.Color()

	var b strings.Builder
	for y := 0; y < dims.Height; y++ {
		for x := 0; x < dims.Width; x++ {
			r := d.Room(world.Coordinate{X: x, Y: y, Z: here.Z})
			if r == nil {
				b.WriteByte(' ')
				continue
			}
			cell, color := mapCell(r)
			if r.Coordinates() == here {
				cell, color = "@", world.ColorWhite
			}
			if useColor {
				cell = net.Colorize(cell, color)
			}
			b.WriteString(cell)
		}
		b.WriteByte('\n')
	}
	b.WriteString(d.Name())

	p.Send(b.String())
}

// mapCell picks the glyph and color for one room.
func mapCell(r *world.Room) (string, world.Color) {
	if glyph := r.MapText(); glyph != "" {
		return glyph, r.MapColor()
	}
	if r.Dense() {
		return "#", r.MapColor()
	}
	return "·", r.MapColor()
}
