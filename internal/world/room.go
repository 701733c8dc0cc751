package world

import "strings"

// Room is one cell of a dungeon grid. Rooms are identified by their
// coordinates; their oid is never serialized.
type Room struct {
	Object

	coords       Coordinate
	allowedExits Direction
	dense        bool
	links        []*RoomLink
}

// RoomOptions configure NewRoom. AllowedExits of zero means the default
// policy (cardinals and diagonals); seal a room afterwards with
// SetAllowedExits(DirNone).
type RoomOptions struct {
	ObjectOptions
	Coordinates  Coordinate
	AllowedExits Direction
	Dense        bool
}

func NewRoom(w *World, opts RoomOptions) *Room {
	r := &Room{
		coords: opts.Coordinates,
		dense:  opts.Dense,
	}
	r.allowedExits = opts.AllowedExits
	if r.allowedExits == DirNone {
		r.allowedExits = DefaultExits
	}
	if opts.Keywords == "" {
		opts.Keywords = "room"
	}
	r.init(w, r, KindRoom, opts.ObjectOptions)
	return r
}

func (r *Room) Coordinates() Coordinate { return r.coords }

func (r *Room) AllowedExits() Direction     { return r.allowedExits }
func (r *Room) SetAllowedExits(d Direction) { r.allowedExits = d }
func (r *Room) Dense() bool                 { return r.dense }
func (r *Room) SetDense(dense bool)         { r.dense = dense }

// Ref renders the stable room reference, or "" while the room is not in a
// registered dungeon.
func (r *Room) Ref() string {
	if r.dungeon == nil || r.dungeon.id == "" {
		return ""
	}
	return FormatRoomRef(r.dungeon.id, r.coords)
}

// Links copies the attached link list.
func (r *Room) Links() []*RoomLink {
	out := make([]*RoomLink, len(r.links))
	copy(out, r.links)
	return out
}

func (r *Room) attachLink(l *RoomLink) {
	for _, x := range r.links {
		if x == l {
			return
		}
	}
	r.links = append(r.links, l)
}

func (r *Room) detachLink(l *RoomLink) {
	for i, x := range r.links {
		if x == l {
			r.links = append(r.links[:i], r.links[i+1:]...)
			return
		}
	}
}

// linkDestination resolves dir through the attached links, or nil.
func (r *Room) linkDestination(dir Direction) *Room {
	for _, l := range r.links {
		if dest := l.Destination(r, dir); dest != nil {
			return dest
		}
	}
	return nil
}

// GetStep resolves one move out of this room. Links take precedence over
// the exit mask; a dense destination is unreachable either way.
func (r *Room) GetStep(dir Direction) *Room {
	if dest := r.linkDestination(dir); dest != nil {
		if dest.dense {
			return nil
		}
		return dest
	}
	if r.allowedExits&dir == 0 {
		return nil
	}
	if r.dungeon == nil {
		return nil
	}
	return r.dungeon.GetStep(r.coords, dir)
}

// CanExit reports whether mover may leave through dir. Links override the
// exit mask.
func (r *Room) CanExit(mover *Movable, dir Direction) bool {
	if dest := r.linkDestination(dir); dest != nil {
		return !dest.dense
	}
	return r.allowedExits&dir != 0
}

// CanEnter reports whether mover may enter from dir. Dense rooms refuse
// everyone.
func (r *Room) CanEnter(mover *Movable, from Direction) bool {
	return !r.dense
}

// PassableExits lists the directions a mover could actually step in.
func (r *Room) PassableExits(mover *Movable) []Direction {
	var out []Direction
	for _, d := range Directions {
		dest := r.GetStep(d)
		if dest == nil {
			continue
		}
		if !r.CanExit(mover, d) || !dest.CanEnter(mover, d.Reverse()) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Mobs lists the mobs directly in the room.
func (r *Room) Mobs() []*Mob {
	var out []*Mob
	for _, c := range r.children {
		if m, ok := c.(*Mob); ok && !m.destroyed {
			out = append(out, m)
		}
	}
	return out
}

// Act substitutes {User} with actor's display name and delivers the line to
// every player-controlled mob in the room except those skipped.
func (r *Room) Act(actor *Mob, template string, group MessageGroup, skip ...*Mob) {
	text := expandAct(template, actor)
	for _, m := range r.Mobs() {
		if m == actor || skipContains(skip, m) {
			continue
		}
		m.Send(text, group)
	}
}

// Echo delivers raw text to every player-controlled mob in the room except
// those skipped.
func (r *Room) Echo(text string, group MessageGroup, skip ...*Mob) {
	for _, m := range r.Mobs() {
		if skipContains(skip, m) {
			continue
		}
		m.Send(text, group)
	}
}

// OnExit fires when mob leaves through dir: every other mob hears an exit
// event, and the leaver hears one unsight event per remaining mob.
func (r *Room) OnExit(mob *Mob, dir Direction) {
	for _, other := range r.Mobs() {
		if other == mob {
			continue
		}
		other.emitAI(AIEvent{Kind: AIExit, Actor: mob, Dir: dir})
		mob.emitAI(AIEvent{Kind: AIUnsight, Actor: other, Dir: dir})
	}
}

// OnEnter fires when mob arrives from dir: every other mob hears an
// entrance event, and the arrival hears one sight event per resident.
func (r *Room) OnEnter(mob *Mob, from Direction) {
	for _, other := range r.Mobs() {
		if other == mob {
			continue
		}
		other.emitAI(AIEvent{Kind: AIEntrance, Actor: mob, Dir: from})
		mob.emitAI(AIEvent{Kind: AISight, Actor: other, Dir: from})
	}
}

func expandAct(template string, actor *Mob) string {
	name := "Someone"
	if actor != nil {
		name = actor.Display()
	}
	return strings.ReplaceAll(template, "{User}", name)
}

func skipContains(skip []*Mob, m *Mob) bool {
	for _, s := range skip {
		if s == m {
			return true
		}
	}
	return false
}
