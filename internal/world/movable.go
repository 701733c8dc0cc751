package world

// Movable is an object that can travel between rooms. It caches the
// coordinates of its containing room so position survives brief detachment
// (being carried, mid-move).
type Movable struct {
	Object

	coords   Coordinate
	hasCoord bool
}

func NewMovable(w *World, opts ObjectOptions) *Movable {
	m := &Movable{}
	m.init(w, m, KindMovable, opts)
	return m
}

// cacheCoords refreshes the room-coordinate cache after a reparent.
func (m *Movable) cacheCoords() {
	if r := m.Room(); r != nil {
		m.coords = r.coords
		m.hasCoord = true
	}
}

// Coordinates returns the last known room position. ok is false for objects
// that have never been in a room.
func (m *Movable) Coordinates() (Coordinate, bool) {
	return m.coords, m.hasCoord
}

// StepScripts are optional callbacks fired around a step, each exactly once.
type StepScripts struct {
	BeforeExit  func()
	AfterExit   func()
	BeforeEnter func()
	AfterEnter  func()
}

// stepper lets concrete types hear about completed steps.
type stepper interface {
	OnStep(dir Direction, dest *Room)
}

// CanStep reports whether a step in dir would succeed: the mover is in a
// room, the destination resolves, the exit is allowed and the destination
// admits entry.
func (m *Movable) CanStep(dir Direction) bool {
	room := m.Room()
	if room == nil {
		return false
	}
	dest := room.GetStep(dir)
	if dest == nil {
		return false
	}
	return room.CanExit(m, dir) && dest.CanEnter(m, dir.Reverse())
}

// Step moves the object one room over. The source room sees the leave
// message and exit events before the reparent; the destination sees the
// arrive message and entrance events after. Returns false when the move is
// not possible.
func (m *Movable) Step(dir Direction, scripts ...StepScripts) bool {
	var sc StepScripts
	if len(scripts) > 0 {
		sc = scripts[0]
	}
	if mob, ok := m.self.(*Mob); ok && mob.HasBehavior(BehaviorShopkeeper) {
		return false
	}
	room := m.Room()
	if room == nil {
		return false
	}
	dest := room.GetStep(dir)
	if dest == nil || !room.CanExit(m, dir) || !dest.CanEnter(m, dir.Reverse()) {
		return false
	}

	mob, _ := m.self.(*Mob)

	if sc.BeforeExit != nil {
		sc.BeforeExit()
	}
	room.Act(mob, "{User} "+LeavePhrase(dir), GroupInfo)
	if mob != nil {
		room.OnExit(mob, dir)
	}
	if sc.AfterExit != nil {
		sc.AfterExit()
	}

	m.moveTo(dest, true)

	rev := dir.Reverse()
	if sc.BeforeEnter != nil {
		sc.BeforeEnter()
	}
	dest.Act(mob, "{User} "+ArrivePhrase(rev), GroupInfo)
	if mob != nil {
		dest.OnEnter(mob, rev)
	}
	if sc.AfterEnter != nil {
		sc.AfterEnter()
	}
	if st, ok := m.self.(stepper); ok {
		st.OnStep(dir, dest)
	}
	return true
}

// LeavePhrase renders the departure narration for a direction.
func LeavePhrase(dir Direction) string {
	switch dir {
	case Up:
		return "leaves up."
	case Down:
		return "leaves down."
	default:
		return "leaves to the " + dir.String() + "."
	}
}

// ArrivePhrase renders the arrival narration. dir is the side the mover
// appears from, i.e. the reverse of the travel direction.
func ArrivePhrase(dir Direction) string {
	switch dir {
	case Up:
		return "arrives from above."
	case Down:
		return "arrives from below."
	default:
		return "arrives from the " + dir.String() + "."
	}
}
