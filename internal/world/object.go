package world

import "strings"

// Kind discriminates the concrete entity types of the containment graph.
type Kind uint8

const (
	KindObject Kind = iota
	KindRoom
	KindMovable
	KindProp
	KindItem
	KindCurrency
	KindEquipment
	KindArmor
	KindWeapon
	KindMob
)

var kindTags = []string{
	KindObject:    "DungeonObject",
	KindRoom:      "Room",
	KindMovable:   "Movable",
	KindProp:      "Prop",
	KindItem:      "Item",
	KindCurrency:  "Currency",
	KindEquipment: "Equipment",
	KindArmor:     "Armor",
	KindWeapon:    "Weapon",
	KindMob:       "Mob",
}

// TypeTag returns the serialized type tag.
func (k Kind) TypeTag() string {
	if int(k) < len(kindTags) {
		return kindTags[k]
	}
	return "DungeonObject"
}

// KindFromTag maps a serialized type tag back to its Kind.
func KindFromTag(tag string) (Kind, bool) {
	for k, t := range kindTags {
		if t == tag {
			return Kind(k), true
		}
	}
	return KindObject, false
}

// isItemKind covers the Item family, whose reset-tracking link clears on
// the first location change (a picked-up reset item stops counting toward
// the reset's population).
func (k Kind) isItemKind() bool {
	switch k {
	case KindItem, KindCurrency, KindEquipment, KindArmor, KindWeapon:
		return true
	}
	return false
}

// isEquipmentKind covers the wearable family.
func (k Kind) isEquipmentKind() bool {
	switch k {
	case KindEquipment, KindArmor, KindWeapon:
		return true
	}
	return false
}

// DestroyedDisplay replaces the display name of destroyed objects.
const DestroyedDisplay = "<destroyed>"

// Entity is any node in the containment graph.
type Entity interface {
	Base() *Object
	Kind() Kind
}

// Object is the base entity: identity, description, containment and weight.
// Concrete types embed it; the self pointer lets base operations dispatch
// on the concrete type.
//
// Accessed only from the game loop goroutine - no locks needed.
type Object struct {
	w    *World
	self Entity
	kind Kind

	oid        int64
	templateID string

	keywords string
	display  string
	desc     string
	roomDesc string
	mapText  string
	mapColor Color

	baseWeight    float64
	currentWeight float64
	value         int

	parent    Entity
	children  []Entity
	dungeon   *Dungeon
	spawnedBy *Reset
	destroyed bool
}

// ObjectOptions configure the base fields of any entity.
type ObjectOptions struct {
	// OID of zero mints a fresh id; negative sentinels from saves and
	// tests are accepted unchanged.
	OID             int64
	Keywords        string
	Display         string
	Description     string
	RoomDescription string
	MapText         string
	MapColor        Color
	BaseWeight      float64
	Value           int
	TemplateID      string
}

// NewObject builds a bare graph node. Most callers want a concrete type;
// bare objects serve as anonymous containers.
func NewObject(w *World, opts ObjectOptions) *Object {
	o := &Object{}
	o.init(w, o, KindObject, opts)
	return o
}

// init wires the shared fields. Every concrete constructor funnels through
// here with its own self pointer. A nil world is tolerated so type
// baselines can be built from unregistered instances.
func (o *Object) init(w *World, self Entity, kind Kind, opts ObjectOptions) {
	o.w = w
	o.self = self
	o.kind = kind
	o.oid = opts.OID
	if o.oid == 0 && w != nil {
		o.oid = w.MintOID()
	}
	o.keywords = opts.Keywords
	o.display = opts.Display
	o.desc = opts.Description
	o.roomDesc = opts.RoomDescription
	o.mapText = opts.MapText
	o.mapColor = opts.MapColor
	o.baseWeight = opts.BaseWeight
	o.currentWeight = opts.BaseWeight
	o.value = opts.Value
	o.templateID = opts.TemplateID
}

func (o *Object) Base() *Object { return o }
func (o *Object) Kind() Kind    { return o.kind }

// Self returns the concrete entity this base belongs to.
func (o *Object) Self() Entity { return o.self }

func (o *Object) World() *World { return o.w }

func (o *Object) OID() int64 { return o.oid }

func (o *Object) TemplateID() string       { return o.templateID }
func (o *Object) SetTemplateID(id string)  { o.templateID = id }
func (o *Object) Keywords() string         { return o.keywords }
func (o *Object) SetKeywords(kw string)    { o.keywords = kw }
func (o *Object) Display() string          { return o.display }
func (o *Object) SetDisplay(s string)      { o.display = s }
func (o *Object) Description() string      { return o.desc }
func (o *Object) SetDescription(s string)  { o.desc = s }
func (o *Object) MapText() string          { return o.mapText }
func (o *Object) SetMapText(s string)      { o.mapText = s }
func (o *Object) MapColor() Color          { return o.mapColor }
func (o *Object) SetMapColor(c Color)      { o.mapColor = c }
func (o *Object) Value() int               { return o.value }
func (o *Object) SetValue(v int)           { o.value = v }
func (o *Object) AddValue(delta int)       { o.value += delta }
func (o *Object) Destroyed() bool          { return o.destroyed }
func (o *Object) Parent() Entity           { return o.parent }
func (o *Object) Dungeon() *Dungeon        { return o.dungeon }
func (o *Object) SpawnedBy() *Reset        { return o.spawnedBy }
func (o *Object) SetRoomDesc(s string)     { o.roomDesc = s }

// RoomDescription is the line shown when the object sits in a room. Unset
// falls through to the display name.
func (o *Object) RoomDescription() string {
	if o.roomDesc == "" {
		return o.display
	}
	return o.roomDesc
}

func (o *Object) BaseWeight() float64 { return o.baseWeight }

// Weight is the aggregate weight including contents.
func (o *Object) Weight() float64 { return o.currentWeight }

// SetBaseWeight adjusts the own weight and bubbles the delta up the parent
// chain.
func (o *Object) SetBaseWeight(w float64) {
	delta := w - o.baseWeight
	o.baseWeight = w
	o.bubbleWeight(delta)
}

// bubbleWeight adds delta to this object and every ancestor. Tolerates
// detached roots.
func (o *Object) bubbleWeight(delta float64) {
	if delta == 0 {
		return
	}
	o.currentWeight += delta
	for p := o.parent; p != nil; p = p.Base().parent {
		p.Base().currentWeight += delta
	}
}

// Contents copies the direct child list.
func (o *Object) Contents() []Entity {
	out := make([]Entity, len(o.children))
	copy(out, o.children)
	return out
}

// Contains reports direct containment only.
func (o *Object) Contains(c Entity) bool {
	return c != nil && c.Base().parent == o.self
}

// Add attaches children to this object. Already-attached children are
// skipped silently; attaching the object itself or one of its ancestors is
// refused.
func (o *Object) Add(children ...Entity) {
	for _, c := range children {
		o.addOne(c)
	}
}

func (o *Object) addOne(c Entity) {
	if c == nil || c.Base() == o {
		return
	}
	cb := c.Base()
	if cb.parent == o.self {
		return // duplicate member
	}
	for p := o.self; p != nil; p = p.Base().parent {
		if p == c {
			if o.w != nil {
				o.w.log.Warn("refusing containment cycle",
					logOID(o.oid), logChildOID(cb.oid))
			}
			return
		}
	}
	oldParent := cb.parent
	if oldParent != nil {
		oldParent.Base().removeOne(c)
	}
	cb.parent = o.self
	o.children = append(o.children, c)
	o.bubbleWeight(cb.currentWeight)

	if oldParent != nil && cb.spawnedBy != nil && c.Kind().isItemKind() {
		cb.untrackReset()
	}
	cb.setDungeon(o.dungeon)
	if cc, ok := c.(coordCacher); ok {
		cc.cacheCoords()
	}
}

// Remove detaches children. Children not held here are skipped.
func (o *Object) Remove(children ...Entity) {
	for _, c := range children {
		o.removeOne(c)
	}
}

func (o *Object) removeOne(c Entity) bool {
	if c == nil || c.Base().parent != o.self {
		return false
	}
	for i, e := range o.children {
		if e == c {
			o.children = append(o.children[:i], o.children[i+1:]...)
			break
		}
	}
	c.Base().parent = nil
	o.bubbleWeight(-c.Base().currentWeight)
	if m, ok := o.self.(*Mob); ok {
		m.dropIfEquipped(c)
	}
	return true
}

// Move reparents the object. nil detaches it from the graph and unassigns
// its dungeon recursively.
func (o *Object) Move(newParent Entity) {
	o.moveTo(newParent, false)
}

// moveTo implements Move. Step suppresses the generic room hooks because it
// fires its own exit/enter sequence around the reparent.
func (o *Object) moveTo(newParent Entity, suppressRoomHooks bool) {
	if newParent == nil {
		if o.parent != nil {
			o.parent.Base().removeOne(o.self)
		}
		o.setDungeon(nil)
		return
	}
	if o.parent == newParent {
		return
	}
	var oldRoom *Room
	if o.parent != nil {
		oldRoom, _ = o.parent.(*Room)
	}
	newRoom, _ := newParent.(*Room)

	mob, isMob := o.self.(*Mob)
	if !suppressRoomHooks && isMob && oldRoom != nil && oldRoom != newRoom {
		oldRoom.OnExit(mob, DirNone)
	}
	newParent.Base().addOne(o.self)
	if !suppressRoomHooks && isMob && newRoom != nil && newRoom != oldRoom {
		newRoom.OnEnter(mob, DirNone)
	}
}

// setDungeon re-homes the object and its whole subtree. Crossing into a
// different dungeon severs the reset-tracking link.
func (o *Object) setDungeon(d *Dungeon) {
	if o.dungeon == d {
		return
	}
	old := o.dungeon
	if old != nil {
		old.contents.Remove(o.self)
	}
	o.dungeon = d
	if d != nil {
		d.contents.Add(o.self)
	}
	if old != nil && o.spawnedBy != nil {
		o.untrackReset()
	}
	for _, c := range o.children {
		c.Base().setDungeon(d)
	}
}

func (o *Object) untrackReset() {
	if o.spawnedBy == nil {
		return
	}
	r := o.spawnedBy
	o.spawnedBy = nil
	r.untrack(o.self)
}

// Room walks the parent chain to the containing room, or nil.
func (o *Object) Room() *Room {
	for e := o.parent; e != nil; e = e.Base().parent {
		if r, ok := e.(*Room); ok {
			return r
		}
	}
	return nil
}

// Match reports whether every whitespace token of query is a prefix of
// some keyword token on the object. "rus sw" matches "rusty sword".
func (o *Object) Match(query string) bool {
	qts := strings.Fields(strings.ToLower(query))
	if len(qts) == 0 {
		return false
	}
	kws := strings.Fields(strings.ToLower(o.keywords))
	for _, qt := range qts {
		found := false
		for _, kw := range kws {
			if strings.HasPrefix(kw, qt) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// FindMatch returns the nth (1-based) direct child matching query.
func (o *Object) FindMatch(query string, n int) Entity {
	if n < 1 {
		n = 1
	}
	seen := 0
	for _, c := range o.children {
		if c.Base().destroyed || !c.Base().Match(query) {
			continue
		}
		seen++
		if seen == n {
			return c
		}
	}
	return nil
}

// Destroy removes the object and its contents from the world. Idempotent;
// destroying twice is a no-op.
func (o *Object) Destroy() {
	if o.destroyed {
		return
	}
	o.destroyed = true
	if m, ok := o.self.(*Mob); ok {
		m.teardown()
	}
	o.untrackReset()
	for _, c := range o.Contents() {
		c.Base().Destroy()
	}
	o.moveTo(nil, true)
	o.display = DestroyedDisplay
}

// coordCacher is implemented by Movable so base containment code can
// refresh the room-coordinate cache without knowing concrete types.
type coordCacher interface {
	cacheCoords()
}
