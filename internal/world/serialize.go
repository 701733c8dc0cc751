package world

import (
	"reflect"
	"sort"
)

// SerializeVersion tags every record this package writes.
const SerializeVersion = "1"

// Record is a serialized object. Values are JSON-canonical only (string,
// bool, float64, []any, map[string]any) so a record survives a JSON round
// trip unchanged and compares with reflect.DeepEqual. The alias keeps
// records assignable to and from decoded JSON.
type Record = map[string]any

// SerializeOptions tune Serialize.
type SerializeOptions struct {
	// Compress diffs the record against its template or type baseline.
	Compress bool
	// Version overrides the stamped version tag.
	Version string
}

// Serialize emits the tagged record for an entity. Currency never
// serializes; asking is a caller bug.
func Serialize(e Entity, opts ...SerializeOptions) Record {
	var opt SerializeOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	ver := opt.Version
	if ver == "" {
		ver = SerializeVersion
	}
	rec := serializeRaw(e, ver)
	if opt.Compress {
		rec = Compress(e.Base().w, rec)
	}
	return rec
}

func serializeRaw(e Entity, ver string) Record {
	if e == nil {
		return nil
	}
	if e.Kind() == KindCurrency {
		panic("world: currency does not serialize")
	}
	o := e.Base()
	rec := Record{
		"type":       e.Kind().TypeTag(),
		"version":    ver,
		"keywords":   o.keywords,
		"display":    o.display,
		"baseWeight": o.baseWeight,
		"value":      float64(o.value),
	}
	if e.Kind() != KindRoom && o.oid != 0 {
		rec["oid"] = float64(o.oid)
	}
	if o.templateID != "" {
		rec["templateId"] = o.templateID
	}
	if o.desc != "" {
		rec["description"] = o.desc
	}
	if o.roomDesc != "" {
		rec["roomDescription"] = o.roomDesc
	}
	if o.mapText != "" {
		rec["mapText"] = o.mapText
	}
	if o.mapColor != ColorDefault {
		rec["mapColor"] = o.mapColor.String()
	}
	if room, ok := o.parent.(*Room); ok {
		if ref := room.Ref(); ref != "" {
			rec["location"] = ref
		}
	}

	owner, _ := e.(*Mob)
	var kids []any
	for _, c := range o.children {
		if c.Base().destroyed || c.Kind() == KindCurrency {
			continue
		}
		if owner != nil && owner.IsEquipped(c) {
			continue
		}
		kids = append(kids, serializeRaw(c, ver))
	}
	if len(kids) > 0 {
		rec["contents"] = kids
	}

	switch v := e.(type) {
	case *Room:
		rec["coordinates"] = coordRecord(v.coords)
		rec["allowedExits"] = float64(v.allowedExits)
		if v.dense {
			rec["dense"] = true
		}
	case *Item:
		if v.isContainer {
			rec["isContainer"] = true
		}
	case *Equipment:
		putEquipment(rec, v)
	case *Armor:
		putEquipment(rec, &v.Equipment)
		rec["defense"] = v.defense
	case *Weapon:
		putEquipment(rec, &v.Equipment)
		rec["attackPower"] = v.attackPower
		rec["hitType"] = v.hitType.Verb
		if v.weaponType != "" {
			rec["weaponType"] = v.weaponType
		}
	case *Mob:
		putMob(rec, v, ver)
	}
	return rec
}

func putEquipment(rec Record, eq *Equipment) {
	rec["slot"] = eq.slot
	if !eq.attrBonus.IsZero() {
		rec["attributeBonuses"] = attrRecord(eq.attrBonus)
	}
	if !eq.resBonus.IsZero() {
		rec["resourceBonuses"] = resRecord(eq.resBonus)
	}
	if !eq.secBonus.IsZero() {
		rec["secondaryAttributeBonuses"] = secRecord(eq.secBonus)
	}
}

func putMob(rec Record, m *Mob, ver string) {
	rec["level"] = float64(m.level)
	rec["experience"] = float64(m.experience)
	if m.race != nil {
		rec["race"] = m.race.ID
	}
	if m.job != nil {
		rec["job"] = m.job.ID
	}
	if !m.attrBonus.IsZero() {
		rec["attributeBonuses"] = attrRecord(m.attrBonus)
	}
	if !m.resBonus.IsZero() {
		rec["resourceBonuses"] = resRecord(m.resBonus)
	}
	rec["health"] = float64(m.health)
	rec["mana"] = float64(m.mana)
	rec["exhaustion"] = float64(m.exhaustion)

	if len(m.equipped) > 0 {
		eq := Record{}
		for _, slot := range m.slotOrder() {
			eq[slot] = serializeRaw(m.equipped[slot], ver)
		}
		rec["equipped"] = eq
	}
	if m.behaviors != 0 {
		b := Record{}
		for _, f := range allBehaviors {
			if m.behaviors&f != 0 {
				b[f.String()] = true
			}
		}
		rec["behaviors"] = b
	}
	if len(m.learnedOrder) > 0 {
		la := Record{}
		for _, a := range m.learnedOrder {
			la[a.ID] = float64(m.learned[a])
		}
		rec["learnedAbilities"] = la
	}
	if m.aiScript != "" {
		rec["aiScript"] = m.aiScript
	}

	var now int64
	if m.w != nil {
		now = m.w.NowMs()
	}
	var efs []any
	for _, ef := range m.effects {
		if ef.fromArchetype {
			continue
		}
		if ef.expiresAt != effectNever && now >= ef.expiresAt {
			continue
		}
		er := Record{
			"effectId":  ef.def.ID,
			"casterOid": float64(ef.casterOID),
		}
		if ef.expiresAt != effectNever {
			er["remainingDuration"] = float64(ef.expiresAt - now)
		}
		if ef.ticksRemaining > 0 {
			tickIn := ef.nextTickAt - now
			if tickIn < 0 {
				tickIn = 0
			}
			er["nextTickIn"] = float64(tickIn)
			er["ticksRemaining"] = float64(ef.ticksRemaining)
			er["tickAmount"] = float64(ef.tickAmount)
		}
		if ef.def.Kind == EffectShield {
			er["remainingAbsorption"] = float64(ef.remainingAbsorption)
		}
		efs = append(efs, er)
	}
	if len(efs) > 0 {
		rec["effects"] = efs
	}
}

func coordRecord(c Coordinate) Record {
	return Record{"x": float64(c.X), "y": float64(c.Y), "z": float64(c.Z)}
}

func attrRecord(p PrimaryAttributes) Record {
	return Record{
		"strength":     p.Strength,
		"agility":      p.Agility,
		"intelligence": p.Intelligence,
	}
}

func resRecord(r Resources) Record {
	return Record{"health": r.Health, "mana": r.Mana}
}

func secRecord(s SecondaryAttributes) Record {
	return Record{
		"attackPower": s.AttackPower,
		"defense":     s.Defense,
		"critRate":    s.CritRate,
		"avoidance":   s.Avoidance,
		"accuracy":    s.Accuracy,
		"spellPower":  s.SpellPower,
		"resilience":  s.Resilience,
		"vitality":    s.Vitality,
		"wisdom":      s.Wisdom,
		"endurance":   s.Endurance,
		"spirit":      s.Spirit,
	}
}

// --- baselines ---

// typeBaselines caches the per-type default records. Built lazily from
// throwaway unregistered instances.
//
// Accessed only from the game loop goroutine - no locks needed.
var typeBaselines = map[Kind]Record{}

// typeBaseline returns the compile-time default record for a kind. Live
// resource levels are stripped from the mob baseline: an absent health field
// on load means "spawn at full", not zero.
func typeBaseline(k Kind) Record {
	if rec, ok := typeBaselines[k]; ok {
		return rec
	}
	rec := serializeRaw(baselineInstance(k), SerializeVersion)
	delete(rec, "oid")
	if k == KindMob {
		delete(rec, "health")
		delete(rec, "mana")
		delete(rec, "exhaustion")
	}
	typeBaselines[k] = rec
	return rec
}

func baselineInstance(k Kind) Entity {
	switch k {
	case KindRoom:
		return NewRoom(nil, RoomOptions{})
	case KindMovable:
		return NewMovable(nil, ObjectOptions{})
	case KindProp:
		return NewProp(nil, ObjectOptions{})
	case KindItem:
		return NewItem(nil, ItemOptions{})
	case KindEquipment:
		return NewEquipment(nil, EquipmentOptions{})
	case KindArmor:
		return NewArmor(nil, ArmorOptions{})
	case KindWeapon:
		// Any valid verb serves; the baseline only anchors the diff.
		return NewWeapon(nil, WeaponOptions{HitVerb: "slash"})
	case KindMob:
		return NewMob(nil, MobOptions{})
	default:
		return NewObject(nil, ObjectOptions{})
	}
}

// baselineFor picks the diff baseline for a record: the template's cached
// baseline when the record names one the world knows, else the type default.
func baselineFor(w *World, rec Record) Record {
	if w != nil {
		if id, _ := rec["templateId"].(string); id != "" {
			if t := w.FindTemplate(id); t != nil {
				return t.BaseSerialized()
			}
		}
	}
	tag, _ := rec["type"].(string)
	k, _ := KindFromTag(tag)
	return typeBaseline(k)
}

// FindTemplate resolves a template id anywhere in the world: globalized refs
// go straight to their dungeon; plain ids try the world table, then each
// dungeon in registration order.
func (w *World) FindTemplate(id string) *Template {
	if id == "" {
		return nil
	}
	if dngID, tplID, ok := ParseTemplateRef(id); ok {
		if d := w.DungeonByID(dngID); d != nil {
			return d.templates[tplID]
		}
		return nil
	}
	if t := w.templates[id]; t != nil {
		return t
	}
	for _, did := range w.dungeonOrder {
		if t := w.dungeons[did].templates[id]; t != nil {
			return t
		}
	}
	return nil
}

// Compress strips every field equal to the record's baseline. Identity
// fields (type, oid, templateId, version) always survive. Contents compress
// recursively; a nil world limits baselines to the type defaults.
func Compress(w *World, rec Record) Record {
	if rec == nil {
		return nil
	}
	base := baselineFor(w, rec)
	out := Record{}
	for k, v := range rec {
		switch k {
		case "type", "oid", "templateId", "version":
			out[k] = v
			continue
		case "contents":
			continue
		}
		if bv, ok := base[k]; ok && deepEqual(bv, v) {
			continue
		}
		out[k] = cloneValue(v)
	}
	if kids, ok := rec["contents"].([]any); ok {
		comp := make([]any, 0, len(kids))
		for _, kid := range kids {
			if kr, ok := kid.(Record); ok {
				comp = append(comp, Compress(w, kr))
			} else {
				comp = append(comp, cloneValue(kid))
			}
		}
		out["contents"] = comp
	}
	return out
}

// Normalize overlays a possibly-compressed record back onto its baseline so
// downstream readers see every field. Contents normalize recursively.
func Normalize(w *World, rec Record) Record {
	if rec == nil {
		return nil
	}
	out := overlayRecord(baselineFor(w, rec), rec)
	if kids, ok := out["contents"].([]any); ok {
		norm := make([]any, 0, len(kids))
		for _, kid := range kids {
			if kr, ok := kid.(Record); ok {
				norm = append(norm, Normalize(w, kr))
			} else {
				norm = append(norm, kid)
			}
		}
		out["contents"] = norm
	}
	return out
}

// --- record plumbing ---

func deepEqual(a, b any) bool { return reflect.DeepEqual(a, b) }

func cloneRecord(rec Record) Record {
	if rec == nil {
		return nil
	}
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch tv := v.(type) {
	case Record:
		return cloneRecord(tv)
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// overlayRecord deep-copies base, then writes every key of over on top.
func overlayRecord(base, over Record) Record {
	out := cloneRecord(base)
	if out == nil {
		out = Record{}
	}
	for k, v := range over {
		out[k] = cloneValue(v)
	}
	return out
}

// sortedKeys is shared by readers that need deterministic map walks.
func sortedKeys(rec Record) []string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
