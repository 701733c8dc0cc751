package world

// Reset is one repopulation rule: keep between MinCount and MaxCount live
// spawns of a template in a target room. The rule tracks its spawns so it
// only tops up what is actually missing.
type Reset struct {
	w       *World
	dungeon *Dungeon

	templateID string
	roomRef    string
	minCount   int
	maxCount   int
	equipped   []string
	inventory  []string

	spawned []Entity
}

// ResetOptions configure NewReset. Equipped and Inventory list template ids
// granted to spawned mobs.
type ResetOptions struct {
	TemplateID string
	RoomRef    string
	MinCount   int
	MaxCount   int
	Equipped   []string
	Inventory  []string
}

func NewReset(w *World, opts ResetOptions) *Reset {
	return &Reset{
		w:          w,
		templateID: opts.TemplateID,
		roomRef:    opts.RoomRef,
		minCount:   opts.MinCount,
		maxCount:   opts.MaxCount,
		equipped:   opts.Equipped,
		inventory:  opts.Inventory,
	}
}

func (r *Reset) TemplateID() string { return r.templateID }
func (r *Reset) RoomRef() string    { return r.roomRef }
func (r *Reset) MinCount() int      { return r.minCount }
func (r *Reset) MaxCount() int      { return r.maxCount }

// LiveCount is the number of tracked spawns still in the world.
func (r *Reset) LiveCount() int {
	kept := r.spawned[:0]
	for _, e := range r.spawned {
		if !e.Base().destroyed {
			kept = append(kept, e)
		}
	}
	r.spawned = kept
	return len(r.spawned)
}

// Spawned snapshots the tracked spawns.
func (r *Reset) Spawned() []Entity {
	out := make([]Entity, len(r.spawned))
	copy(out, r.spawned)
	return out
}

// untrack drops one spawn from the population count. Called from the object
// side when the tracking link is severed.
func (r *Reset) untrack(e Entity) {
	for i, s := range r.spawned {
		if s == e {
			r.spawned = append(r.spawned[:i], r.spawned[i+1:]...)
			return
		}
	}
}

// track establishes the spawn link on both sides.
func (r *Reset) track(e Entity) {
	e.Base().spawnedBy = r
	r.spawned = append(r.spawned, e)
}

// resolveTemplate looks an id up against the owning dungeon, falling back to
// the world table for detached rules.
func (r *Reset) resolveTemplate(id string) *Template {
	if r.dungeon != nil {
		return r.dungeon.Template(id)
	}
	if r.w != nil {
		if _, tplID, ok := ParseTemplateRef(id); ok {
			id = tplID
		}
		return r.w.GlobalTemplate(id)
	}
	return nil
}

// Execute tops the population up to MinCount, never past MaxCount. Missing
// rooms or templates log a warning and spawn nothing; a bad accessory
// template skips just that accessory.
func (r *Reset) Execute() int {
	if r.w == nil {
		return 0
	}
	log := r.w.log

	room := r.w.ResolveRoomRef(r.roomRef)
	if room == nil {
		log.Warn("reset target room missing",
			logTemplate(r.templateID), logRoomRef(r.roomRef))
		return 0
	}
	t := r.resolveTemplate(r.templateID)
	if t == nil {
		log.Warn("reset template missing",
			logTemplate(r.templateID), logRoomRef(r.roomRef))
		return 0
	}

	existing := r.LiveCount()
	if existing >= r.maxCount {
		return 0
	}
	want := r.minCount - existing
	if limit := r.maxCount - existing; want > limit {
		want = limit
	}
	if want <= 0 {
		return 0
	}

	made := 0
	for i := 0; i < want; i++ {
		e, err := r.w.Factory(t)
		if err != nil {
			log.Warn("reset spawn failed",
				logTemplate(r.templateID), logRoomRef(r.roomRef), logErr(err))
			continue
		}
		r.track(e)
		room.Add(e)
		if mob, ok := e.(*Mob); ok {
			r.outfit(mob)
		}
		made++
	}
	return made
}

// outfit grants a freshly spawned mob its reset accessories.
func (r *Reset) outfit(mob *Mob) {
	log := r.w.log
	for _, id := range r.equipped {
		t := r.resolveTemplate(id)
		if t == nil {
			log.Warn("reset equipment template missing", logTemplate(id))
			continue
		}
		e, err := r.w.Factory(t)
		if err != nil {
			log.Warn("reset equipment spawn failed", logTemplate(id), logErr(err))
			continue
		}
		wearable, ok := e.(Wearable)
		if !ok {
			log.Warn("reset equipment template is not wearable", logTemplate(id))
			e.Base().Destroy()
			continue
		}
		mob.Equip(wearable)
	}
	for _, id := range r.inventory {
		t := r.resolveTemplate(id)
		if t == nil {
			log.Warn("reset inventory template missing", logTemplate(id))
			continue
		}
		e, err := r.w.Factory(t)
		if err != nil {
			log.Warn("reset inventory spawn failed", logTemplate(id), logErr(err))
			continue
		}
		mob.Add(e)
	}
}
