package world

// Dungeon owns a 3D grid of rooms plus the templates and resets that
// repopulate it. A dungeon with a non-empty id is registered globally and
// addressable from room refs.
//
// Accessed only from the game loop goroutine - no locks needed.
type Dungeon struct {
	w *World

	id       string
	name     string
	desc     string
	resetMsg string

	dims MapDimensions
	grid []*Room

	resets    []*Reset
	templates map[string]*Template

	// contents is the flat registry of every object homed in this dungeon.
	contents *Registry[Entity]

	destroyed bool
}

// DungeonOptions configure NewDungeon.
type DungeonOptions struct {
	// ID registers the dungeon globally when non-empty. Must be free of
	// '{', '}' and ':'.
	ID           string
	Name         string
	Description  string
	ResetMessage string
	Dimensions   MapDimensions
}

func NewDungeon(w *World, opts DungeonOptions) *Dungeon {
	d := &Dungeon{
		w:         w,
		name:      opts.Name,
		desc:      opts.Description,
		resetMsg:  opts.ResetMessage,
		dims:      opts.Dimensions,
		grid:      make([]*Room, opts.Dimensions.Cells()),
		templates: make(map[string]*Template),
		contents:  NewRegistry[Entity](),
	}
	if opts.ID != "" {
		d.SetID(opts.ID)
	}
	return d
}

func (d *Dungeon) World() *World { return d.w }

func (d *Dungeon) ID() string { return d.id }

// SetID re-registers the dungeon under a new id. An empty id unregisters it.
// Invalid ids panic: they would corrupt every room ref written afterwards.
func (d *Dungeon) SetID(id string) {
	if id != "" {
		if err := ValidateDungeonID(id); err != nil {
			panic("world: " + err.Error())
		}
	}
	if d.id == id {
		return
	}
	if d.id != "" && d.w != nil {
		d.w.unregisterDungeon(d.id)
	}
	d.id = id
	if d.id != "" && d.w != nil {
		d.w.registerDungeon(d)
	}
}

func (d *Dungeon) Name() string { return d.name }

// SetName rejects blank names; a nameless dungeon is a programming error.
func (d *Dungeon) SetName(name string) {
	if name == "" {
		panic("world: dungeon name must not be empty")
	}
	d.name = name
}

func (d *Dungeon) Description() string       { return d.desc }
func (d *Dungeon) SetDescription(s string)   { d.desc = s }
func (d *Dungeon) ResetMessage() string      { return d.resetMsg }
func (d *Dungeon) SetResetMessage(s string)  { d.resetMsg = s }
func (d *Dungeon) Dimensions() MapDimensions { return d.dims }
func (d *Dungeon) Destroyed() bool           { return d.destroyed }

func (d *Dungeon) cellIndex(c Coordinate) int {
	return (c.Z*d.dims.Height+c.Y)*d.dims.Width + c.X
}

// Room returns the room at c, or nil for empty or out-of-range cells.
func (d *Dungeon) Room(c Coordinate) *Room {
	if !d.dims.Contains(c) {
		return nil
	}
	return d.grid[d.cellIndex(c)]
}

// Rooms lists every allocated room, west to east, north to south, bottom
// layer first.
func (d *Dungeon) Rooms() []*Room {
	out := make([]*Room, 0, len(d.grid))
	for _, r := range d.grid {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// RoomCount reports the number of allocated cells.
func (d *Dungeon) RoomCount() int {
	n := 0
	for _, r := range d.grid {
		if r != nil {
			n++
		}
	}
	return n
}

// CreateRoom allocates a room at opts.Coordinates. Out-of-range coordinates
// return nil without mutating the grid; an occupied cell is replaced.
func (d *Dungeon) CreateRoom(opts RoomOptions) *Room {
	if !d.dims.Contains(opts.Coordinates) {
		return nil
	}
	r := NewRoom(d.w, opts)
	d.placeRoom(r)
	return r
}

// AddRoom places an externally built room onto the grid. Out-of-range
// coordinates are refused.
func (d *Dungeon) AddRoom(r *Room) bool {
	if r == nil || !d.dims.Contains(r.coords) {
		return false
	}
	d.placeRoom(r)
	return true
}

func (d *Dungeon) placeRoom(r *Room) {
	i := d.cellIndex(r.coords)
	if old := d.grid[i]; old != nil && old != r {
		old.setDungeon(nil)
	}
	d.grid[i] = r
	r.setDungeon(d)
}

// GenerateRooms fills every empty cell with a plain room.
func (d *Dungeon) GenerateRooms(opts RoomOptions) {
	for z := 0; z < d.dims.Layers; z++ {
		for y := 0; y < d.dims.Height; y++ {
			for x := 0; x < d.dims.Width; x++ {
				c := Coordinate{X: x, Y: y, Z: z}
				if d.grid[d.cellIndex(c)] != nil {
					continue
				}
				cell := opts
				cell.Coordinates = c
				d.CreateRoom(cell)
			}
		}
	}
}

// GetStep resolves the spatial neighbor of c in dir, ignoring links and exit
// masks. Dense neighbors are unreachable.
func (d *Dungeon) GetStep(c Coordinate, dir Direction) *Room {
	dest := d.Room(c.Step(dir))
	if dest == nil || dest.dense {
		return nil
	}
	return dest
}

// AddTemplate registers a template under its id, local to this dungeon.
func (d *Dungeon) AddTemplate(t *Template) {
	d.templates[t.ID()] = t
}

// Template resolves a template id: the globalized "@dungeon:id" form goes
// through the dungeon registry, plain ids try this dungeon first and fall
// back to the world table.
func (d *Dungeon) Template(id string) *Template {
	if dngID, tplID, ok := ParseTemplateRef(id); ok {
		if d.w == nil {
			return nil
		}
		other := d.w.DungeonByID(dngID)
		if other == nil {
			return nil
		}
		return other.templates[tplID]
	}
	if t, ok := d.templates[id]; ok {
		return t
	}
	if d.w != nil {
		return d.w.GlobalTemplate(id)
	}
	return nil
}

// Templates snapshots the local template table.
func (d *Dungeon) Templates() []*Template {
	out := make([]*Template, 0, len(d.templates))
	for _, t := range d.templates {
		out = append(out, t)
	}
	return out
}

// AddReset appends a reset rule.
func (d *Dungeon) AddReset(r *Reset) {
	r.dungeon = d
	d.resets = append(d.resets, r)
}

// Resets copies the reset list.
func (d *Dungeon) Resets() []*Reset {
	out := make([]*Reset, len(d.resets))
	copy(out, d.resets)
	return out
}

// ExecuteResets runs every reset rule and reports the total spawn count.
// The dungeon's reset message is broadcast when anything spawned.
func (d *Dungeon) ExecuteResets() int {
	total := 0
	for _, r := range d.resets {
		total += r.Execute()
	}
	if total > 0 {
		if d.resetMsg != "" {
			d.Broadcast(d.resetMsg, GroupSystem)
		}
		if d.w != nil && d.w.Hooks.DungeonReset != nil {
			d.w.Hooks.DungeonReset(d, total)
		}
	}
	return total
}

// Broadcast sends text to every player-controlled mob in the dungeon.
func (d *Dungeon) Broadcast(text string, group MessageGroup) {
	for _, e := range d.contents.Snapshot() {
		if m, ok := e.(*Mob); ok {
			m.Send(text, group)
		}
	}
}

// Contents snapshots the flat registry of objects homed here.
func (d *Dungeon) Contents() []Entity {
	return d.contents.Snapshot()
}

// ContainsObject reports registry membership.
func (d *Dungeon) ContainsObject(e Entity) bool {
	return d.contents.Contains(e)
}

// Destroy removes every room link touching this dungeon, unassigns all
// contained objects, empties the grid and unregisters the id. Idempotent.
func (d *Dungeon) Destroy() {
	if d.destroyed {
		return
	}
	d.destroyed = true
	if d.w != nil {
		for _, l := range d.w.Links.Snapshot() {
			if l.touches(d) {
				l.Remove()
			}
		}
	}
	for _, e := range d.contents.Snapshot() {
		if _, ok := e.(*Room); ok {
			continue
		}
		e.Base().setDungeon(nil)
	}
	for i, r := range d.grid {
		if r != nil {
			r.setDungeon(nil)
			d.grid[i] = nil
		}
	}
	d.contents.Clear()
	d.SetID("")
}
