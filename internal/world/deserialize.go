package world

import (
	"errors"
	"fmt"
)

// DeserializeEntity rebuilds an entity from a serialized record. Compressed
// records are normalized against their baseline first. Contents are rebuilt
// recursively; a location ref places the entity into its room. Malformed
// top-level records return an error; bad nested data logs a warning and is
// skipped.
func DeserializeEntity(w *World, rec Record) (Entity, error) {
	if rec == nil {
		return nil, errors.New("world: nil record")
	}
	rec = Normalize(w, rec)

	tag := recString(rec, "type")
	kind, ok := KindFromTag(tag)
	if !ok {
		return nil, fmt.Errorf("world: unknown serialized type %q", tag)
	}
	if kind == KindCurrency {
		return nil, errors.New("world: currency does not deserialize")
	}

	opts := objectOptionsFromRecord(rec)

	var e Entity
	switch kind {
	case KindRoom:
		room := NewRoom(w, RoomOptions{
			ObjectOptions: opts,
			Coordinates:   coordFromRecord(rec),
			Dense:         recBool(rec, "dense"),
		})
		if mask, ok := recFloat(rec, "allowedExits"); ok {
			room.SetAllowedExits(Direction(uint16(mask)))
		}
		e = room
	case KindMovable:
		e = NewMovable(w, opts)
	case KindProp:
		e = NewProp(w, opts)
	case KindItem:
		e = NewItem(w, ItemOptions{
			ObjectOptions: opts,
			IsContainer:   recBool(rec, "isContainer"),
		})
	case KindEquipment:
		e = NewEquipment(w, equipmentOptionsFromRecord(rec, opts))
	case KindArmor:
		defense, _ := recFloat(rec, "defense")
		e = NewArmor(w, ArmorOptions{
			EquipmentOptions: equipmentOptionsFromRecord(rec, opts),
			Defense:          defense,
		})
	case KindWeapon:
		power, _ := recFloat(rec, "attackPower")
		e = NewWeapon(w, WeaponOptions{
			EquipmentOptions: equipmentOptionsFromRecord(rec, opts),
			AttackPower:      power,
			HitVerb:          recString(rec, "hitType"),
			WeaponType:       recString(rec, "weaponType"),
		})
	case KindMob:
		e = deserializeMob(w, rec, opts)
	default:
		e = NewObject(w, opts)
	}

	if kids, ok := recList(rec, "contents"); ok {
		for _, kid := range kids {
			kr, ok := kid.(Record)
			if !ok {
				warnRecord(w, "malformed child record", rec)
				continue
			}
			child, err := DeserializeEntity(w, kr)
			if err != nil {
				if w != nil {
					w.log.Warn("skipping bad child record", logErr(err))
				}
				continue
			}
			e.Base().Add(child)
		}
	}

	if loc := recString(rec, "location"); loc != "" && w != nil {
		if room := w.ResolveRoomRef(loc); room != nil {
			room.Add(e)
		} else {
			w.log.Warn("record location missing", logRoomRef(loc), logOID(e.Base().oid))
		}
	}
	return e, nil
}

// CreateFromTemplate spawns an instance of a template. An oid of zero mints
// a fresh id. Mobs learn their eligible archetype abilities and announce
// through the spawn hook.
func (w *World) CreateFromTemplate(t *Template, oid int64) (Entity, error) {
	if t == nil {
		return nil, errors.New("world: nil template")
	}
	rec := cloneRecord(t.BaseSerialized())
	delete(rec, "location")
	delete(rec, "oid")
	if oid != 0 {
		rec["oid"] = float64(oid)
	}
	rec["templateId"] = t.ID()

	e, err := DeserializeEntity(w, rec)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", t.ID(), err)
	}
	if m, ok := e.(*Mob); ok {
		m.LearnEligibleArchetypeAbilities()
		if w != nil && w.Hooks.MobSpawned != nil {
			w.Hooks.MobSpawned(m)
		}
	}
	return e, nil
}

func deserializeMob(w *World, rec Record, opts ObjectOptions) *Mob {
	var race, job *Archetype
	if id := recString(rec, "race"); id != "" {
		if w != nil && w.Resolvers.Race != nil {
			race = w.Resolvers.Race(id)
		}
		if race == nil && w != nil {
			w.log.Warn("unknown race in record", logTemplate(id))
		}
	}
	if id := recString(rec, "job"); id != "" {
		if w != nil && w.Resolvers.Job != nil {
			job = w.Resolvers.Job(id)
		}
		if job == nil && w != nil {
			w.log.Warn("unknown job in record", logTemplate(id))
		}
	}
	level, _ := recInt(rec, "level")

	m := NewMob(w, MobOptions{
		ObjectOptions: opts,
		Race:          race,
		Job:           job,
		Level:         level,
		Behaviors:     behaviorsFromRecord(rec),
		AIScript:      recString(rec, "aiScript"),
	})
	if xp, ok := recInt(rec, "experience"); ok {
		m.experience = xp
	}
	changed := false
	if b, ok := recMap(rec, "attributeBonuses"); ok {
		m.attrBonus = attrFromRecord(b)
		changed = true
	}
	if b, ok := recMap(rec, "resourceBonuses"); ok {
		m.resBonus = resFromRecord(b)
		changed = true
	}
	if changed {
		m.Recompute(RecomputeBootstrap)
	}

	if la, ok := recMap(rec, "learnedAbilities"); ok {
		for _, id := range sortedKeys(la) {
			var a *Ability
			if w != nil && w.Resolvers.Ability != nil {
				a = w.Resolvers.Ability(id)
			}
			if a == nil {
				if w != nil {
					w.log.Warn("unknown ability in record", logTemplate(id), logOID(m.oid))
				}
				continue
			}
			uses, _ := recFloat(la, id)
			m.learnWithUses(a, int(uses))
		}
	}

	if eq, ok := recMap(rec, "equipped"); ok {
		for _, slot := range sortedKeys(eq) {
			kr, ok := eq[slot].(Record)
			if !ok {
				warnRecord(w, "malformed equipped record", rec)
				continue
			}
			ent, err := DeserializeEntity(w, kr)
			if err != nil {
				if w != nil {
					w.log.Warn("skipping bad equipped record", logErr(err), logOID(m.oid))
				}
				continue
			}
			wearable, ok := ent.(Wearable)
			if !ok {
				if w != nil {
					w.log.Warn("equipped record is not wearable", logOID(m.oid))
				}
				ent.Base().Destroy()
				continue
			}
			m.Equip(wearable)
		}
	}

	// Effects restore before explicit resources so the ratio-preserving
	// recompute of a passive cannot distort the saved values.
	if efs, ok := recList(rec, "effects"); ok {
		for _, raw := range efs {
			er, ok := raw.(Record)
			if !ok {
				warnRecord(w, "malformed effect record", rec)
				continue
			}
			restoreEffectRecord(w, m, er)
		}
	}

	if hp, ok := recInt(rec, "health"); ok {
		m.SetHealth(hp)
	}
	if mp, ok := recInt(rec, "mana"); ok {
		m.SetMana(mp)
	}
	if ex, ok := recInt(rec, "exhaustion"); ok {
		m.SetExhaustion(ex)
	}
	return m
}

func restoreEffectRecord(w *World, m *Mob, er Record) {
	id := recString(er, "effectId")
	if id == "" {
		warnRecord(w, "effect record missing id", er)
		return
	}
	var def *EffectDef
	if w != nil && w.Resolvers.Effect != nil {
		def = w.Resolvers.Effect(id)
	}
	if def == nil {
		if w != nil {
			w.log.Warn("unknown effect in record", logTemplate(id), logOID(m.oid))
		}
		return
	}
	restore := &EffectRestore{Silent: true}
	if v, ok := recFloat(er, "casterOid"); ok {
		restore.CasterOID = int64(v)
	}
	if v, ok := recFloat(er, "remainingDuration"); ok {
		ms := int64(v)
		restore.RemainingMs = &ms
	}
	if v, ok := recFloat(er, "nextTickIn"); ok {
		ms := int64(v)
		restore.NextTickInMs = &ms
	}
	if v, ok := recInt(er, "ticksRemaining"); ok {
		restore.TicksRemaining = &v
	}
	if v, ok := recInt(er, "tickAmount"); ok {
		restore.TickAmount = &v
	}
	if v, ok := recInt(er, "remainingAbsorption"); ok {
		restore.RemainingAbsorption = &v
	}
	m.AddEffect(def, nil, restore)
}

// --- record readers ---

func objectOptionsFromRecord(rec Record) ObjectOptions {
	opts := ObjectOptions{
		Keywords:        recString(rec, "keywords"),
		Display:         recString(rec, "display"),
		Description:     recString(rec, "description"),
		RoomDescription: recString(rec, "roomDescription"),
		MapText:         recString(rec, "mapText"),
		TemplateID:      recString(rec, "templateId"),
	}
	if v, ok := recFloat(rec, "oid"); ok {
		opts.OID = int64(v)
	}
	if v, ok := recFloat(rec, "baseWeight"); ok {
		opts.BaseWeight = v
	}
	if v, ok := recInt(rec, "value"); ok {
		opts.Value = v
	}
	if name := recString(rec, "mapColor"); name != "" {
		if c, ok := ParseColor(name); ok {
			opts.MapColor = c
		}
	}
	return opts
}

func equipmentOptionsFromRecord(rec Record, opts ObjectOptions) EquipmentOptions {
	eo := EquipmentOptions{
		ObjectOptions: opts,
		Slot:          recString(rec, "slot"),
	}
	if b, ok := recMap(rec, "attributeBonuses"); ok {
		eo.AttributeBonus = attrFromRecord(b)
	}
	if b, ok := recMap(rec, "resourceBonuses"); ok {
		eo.ResourceBonus = resFromRecord(b)
	}
	if b, ok := recMap(rec, "secondaryAttributeBonuses"); ok {
		eo.SecondaryBonus = secFromRecord(b)
	}
	return eo
}

func behaviorsFromRecord(rec Record) Behavior {
	var out Behavior
	b, ok := recMap(rec, "behaviors")
	if !ok {
		return out
	}
	for name, v := range b {
		on, _ := v.(bool)
		if !on {
			continue
		}
		if f, ok := ParseBehavior(name); ok {
			out |= f
		}
	}
	return out
}

func coordFromRecord(rec Record) Coordinate {
	c, ok := recMap(rec, "coordinates")
	if !ok {
		return Coordinate{}
	}
	x, _ := recFloat(c, "x")
	y, _ := recFloat(c, "y")
	z, _ := recFloat(c, "z")
	return Coordinate{X: int(x), Y: int(y), Z: int(z)}
}

func attrFromRecord(rec Record) PrimaryAttributes {
	s, _ := recFloat(rec, "strength")
	a, _ := recFloat(rec, "agility")
	i, _ := recFloat(rec, "intelligence")
	return PrimaryAttributes{Strength: s, Agility: a, Intelligence: i}
}

func resFromRecord(rec Record) Resources {
	h, _ := recFloat(rec, "health")
	m, _ := recFloat(rec, "mana")
	return Resources{Health: h, Mana: m}
}

func secFromRecord(rec Record) SecondaryAttributes {
	read := func(key string) float64 {
		v, _ := recFloat(rec, key)
		return v
	}
	return SecondaryAttributes{
		AttackPower: read("attackPower"),
		Defense:     read("defense"),
		CritRate:    read("critRate"),
		Avoidance:   read("avoidance"),
		Accuracy:    read("accuracy"),
		SpellPower:  read("spellPower"),
		Resilience:  read("resilience"),
		Vitality:    read("vitality"),
		Wisdom:      read("wisdom"),
		Endurance:   read("endurance"),
		Spirit:      read("spirit"),
	}
}

func recString(rec Record, key string) string {
	s, _ := rec[key].(string)
	return s
}

// recFloat reads a numeric field. Hand-built records and YAML decoders
// produce ints where JSON produces float64; both are accepted.
func recFloat(rec Record, key string) (float64, bool) {
	switch v := rec[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func recInt(rec Record, key string) (int, bool) {
	v, ok := recFloat(rec, key)
	return int(v), ok
}

func recBool(rec Record, key string) bool {
	b, _ := rec[key].(bool)
	return b
}

func recMap(rec Record, key string) (Record, bool) {
	m, ok := rec[key].(Record)
	return m, ok
}

func recList(rec Record, key string) ([]any, bool) {
	l, ok := rec[key].([]any)
	return l, ok
}

func warnRecord(w *World, msg string, rec Record) {
	if w == nil {
		return
	}
	w.log.Warn(msg, logTemplate(recString(rec, "templateId")))
}
