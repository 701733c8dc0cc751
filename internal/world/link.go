package world

// RoomLink is a portal overriding grid adjacency between two rooms, possibly
// across dungeons. One-way links resolve only the forward edge.
type RoomLink struct {
	w *World

	from    *Room
	fromDir Direction
	to      *Room
	toDir   Direction
	oneWay  bool

	removed bool
}

// LinkOptions configure NewRoomLink. ToDir of zero infers the reverse of
// Dir, which is what portals want in almost every case.
type LinkOptions struct {
	From   *Room
	Dir    Direction
	To     *Room
	ToDir  Direction
	OneWay bool
}

// NewRoomLink wires a portal between two rooms and registers it with the
// from room, the to room when two-way, and the global link registry.
func NewRoomLink(w *World, opts LinkOptions) *RoomLink {
	l := &RoomLink{
		w:       w,
		from:    opts.From,
		fromDir: opts.Dir,
		to:      opts.To,
		toDir:   opts.ToDir,
		oneWay:  opts.OneWay,
	}
	if l.toDir == DirNone {
		l.toDir = opts.Dir.Reverse()
	}
	if l.from != nil {
		l.from.attachLink(l)
	}
	if !l.oneWay && l.to != nil {
		l.to.attachLink(l)
	}
	if w != nil {
		w.Links.Add(l)
	}
	return l
}

func (l *RoomLink) From() *Room        { return l.from }
func (l *RoomLink) FromDir() Direction { return l.fromDir }
func (l *RoomLink) To() *Room          { return l.to }
func (l *RoomLink) ToDir() Direction   { return l.toDir }
func (l *RoomLink) OneWay() bool       { return l.oneWay }

// Destination resolves the edge leaving room through dir, or nil when this
// link does not cover it.
func (l *RoomLink) Destination(room *Room, dir Direction) *Room {
	if room == l.from && dir == l.fromDir {
		return l.to
	}
	if !l.oneWay && room == l.to && dir == l.toDir {
		return l.from
	}
	return nil
}

// touches reports whether either endpoint sits in d.
func (l *RoomLink) touches(d *Dungeon) bool {
	if l.from != nil && l.from.dungeon == d {
		return true
	}
	if l.to != nil && l.to.dungeon == d {
		return true
	}
	return false
}

// Remove unregisters the link from both endpoints and the global registry.
// Idempotent.
func (l *RoomLink) Remove() {
	if l.removed {
		return
	}
	l.removed = true
	if l.from != nil {
		l.from.detachLink(l)
	}
	if l.to != nil {
		l.to.detachLink(l)
	}
	if l.w != nil {
		l.w.Links.Remove(l)
	}
}
