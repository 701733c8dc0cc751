package world

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Behavior flags steer NPC conduct. Serialized by name in the behaviors map.
type Behavior uint8

const (
	// BehaviorAggressive attacks player mobs on room entry.
	BehaviorAggressive Behavior = 1 << iota
	// BehaviorWimpy flees combat at low health.
	BehaviorWimpy
	// BehaviorWander strolls the home dungeon while idle.
	BehaviorWander
	// BehaviorShopkeeper trades, never moves, never fights.
	BehaviorShopkeeper
)

var behaviorNames = map[Behavior]string{
	BehaviorAggressive: "aggressive",
	BehaviorWimpy:      "wimpy",
	BehaviorWander:     "wander",
	BehaviorShopkeeper: "shopkeeper",
}

// allBehaviors in serialization order.
var allBehaviors = []Behavior{
	BehaviorAggressive, BehaviorWimpy, BehaviorWander, BehaviorShopkeeper,
}

// ParseBehavior matches a serialized behavior name.
func ParseBehavior(name string) (Behavior, bool) {
	for b, n := range behaviorNames {
		if n == name {
			return b, true
		}
	}
	return 0, false
}

func (b Behavior) String() string {
	if n, ok := behaviorNames[b]; ok {
		return n
	}
	return "unknown"
}

// AIEventKind tags the per-mob AI sink events.
type AIEventKind string

const (
	AIEntrance AIEventKind = "entrance" // Actor entered my room from Dir
	AIExit     AIEventKind = "exit"     // Actor left my room towards Dir
	AISight    AIEventKind = "sight"    // I entered a room containing Actor
	AIUnsight  AIEventKind = "unsight"  // I left a room containing Actor
	AIMove     AIEventKind = "move"     // I finished a step towards Dir
	AICombat   AIEventKind = "combat"   // Actor engaged me
	AIDeath    AIEventKind = "death"    // I died; Actor is the killer
)

// AIEvent carries everything a subscriber needs so it never has to query
// mutable state later.
type AIEvent struct {
	Kind  AIEventKind
	Actor *Mob
	Dir   Direction
}

// MaxExhaustion caps the exhaustion meter.
const MaxExhaustion = 100

// ExperienceThreshold is the experience cost of one level, before growth
// modifiers.
const ExperienceThreshold = 100

// Mob is a living inhabitant: a player character's body or an NPC.
//
// Accessed only from the game loop goroutine - no locks needed.
type Mob struct {
	Movable

	race *Archetype
	job  *Archetype

	level      int
	experience int

	attrBonus PrimaryAttributes
	resBonus  Resources

	primary   PrimaryAttributes
	secondary SecondaryAttributes
	maxHealth int
	maxMana   int

	health     int
	mana       int
	exhaustion int

	equipped map[string]Wearable

	learned      map[*Ability]int
	learnedOrder []*Ability
	profSnapshot map[string]int

	effects []*Effect

	character    *Character
	combatTarget *Mob
	threat       *threatTable

	behaviors Behavior
	shopStock *Object
	aiSink    func(AIEvent)
	aiScript  string
}

// MobOptions configure NewMob. Level of zero means 1.
type MobOptions struct {
	ObjectOptions
	Race      *Archetype
	Job       *Archetype
	Level     int
	Behaviors Behavior
	AIScript  string
}

func NewMob(w *World, opts MobOptions) *Mob {
	m := &Mob{
		race:         opts.Race,
		job:          opts.Job,
		level:        opts.Level,
		behaviors:    opts.Behaviors,
		aiScript:     opts.AIScript,
		equipped:     make(map[string]Wearable),
		learned:      make(map[*Ability]int),
		profSnapshot: make(map[string]int),
	}
	if m.level < 1 {
		m.level = 1
	}
	m.init(w, m, KindMob, opts.ObjectOptions)
	m.Recompute(RecomputeBootstrap)
	m.applyArchetypePassives()
	if m.behaviors&BehaviorWander != 0 && w != nil {
		w.Wanderers.Add(m)
	}
	return m
}

func (m *Mob) Race() *Archetype { return m.race }
func (m *Mob) Job() *Archetype  { return m.job }

// SetArchetypes swaps race and job, refreshing passives and stats.
func (m *Mob) SetArchetypes(race, job *Archetype) {
	m.removeArchetypePassives()
	m.race = race
	m.job = job
	m.Recompute(RecomputeRatios)
	m.applyArchetypePassives()
}

func (m *Mob) Level() int      { return m.level }
func (m *Mob) Experience() int { return m.experience }

// SetLevel moves the mob to an absolute level without experience mechanics.
func (m *Mob) SetLevel(level int) {
	if level < 1 {
		level = 1
	}
	m.level = level
	m.Recompute(RecomputeRatios)
}

// Character returns the controlling player handle, nil for NPCs.
func (m *Mob) Character() *Character { return m.character }

// IsNPC reports whether nobody controls this mob.
func (m *Mob) IsNPC() bool { return m.character == nil }

// SetCharacter links or unlinks player control, keeping both back-references
// in sync. Player-controlled mobs carry no threat table.
func (m *Mob) SetCharacter(c *Character) {
	if m.character == c {
		return
	}
	if old := m.character; old != nil {
		m.character = nil
		if old.mob == m {
			old.mob = nil
		}
	}
	if c != nil {
		if prev := c.mob; prev != nil && prev != m {
			prev.SetCharacter(nil)
		}
		m.character = c
		c.mob = m
		m.dropThreatTable()
	}
}

// Send routes text to the controlling player. NPCs swallow it.
func (m *Mob) Send(text string, group MessageGroup) {
	if m.character != nil {
		m.character.Send(text, group)
	}
}

func (m *Mob) HasBehavior(b Behavior) bool { return m.behaviors&b != 0 }
func (m *Mob) Behaviors() Behavior         { return m.behaviors }

// SetBehavior toggles one behavior flag, keeping the wanderer registry in
// step.
func (m *Mob) SetBehavior(b Behavior, on bool) {
	if on {
		m.behaviors |= b
	} else {
		m.behaviors &^= b
	}
	if m.w != nil && b == BehaviorWander {
		if on {
			m.w.Wanderers.Add(m)
		} else {
			m.w.Wanderers.Remove(m)
		}
	}
}

func (m *Mob) AIScript() string          { return m.aiScript }
func (m *Mob) SetAIScript(script string) { m.aiScript = script }

// SetAISink installs the per-mob AI event callback. Subscribers must not
// mutate core state directly; they issue commands through the command layer.
func (m *Mob) SetAISink(fn func(AIEvent)) { m.aiSink = fn }

func (m *Mob) emitAI(ev AIEvent) {
	if m.aiSink != nil {
		m.aiSink(ev)
	}
}

// OnStep lets AI subscribers react to the mob's own completed moves.
func (m *Mob) OnStep(dir Direction, dest *Room) {
	m.emitAI(AIEvent{Kind: AIMove, Dir: dir})
}

// ShopStock returns the shopkeeper's ware container, or nil.
func (m *Mob) ShopStock() *Object { return m.shopStock }

// EnsureShopStock lazily builds the ware container.
func (m *Mob) EnsureShopStock() *Object {
	if m.shopStock == nil {
		m.shopStock = NewObject(m.w, ObjectOptions{
			Keywords: "stock",
			Display:  "shop stock",
		})
	}
	return m.shopStock
}

// --- attributes ---

func (m *Mob) Primary() PrimaryAttributes     { return m.primary }
func (m *Mob) Secondary() SecondaryAttributes { return m.secondary }
func (m *Mob) MaxHealth() int                 { return m.maxHealth }
func (m *Mob) MaxMana() int                   { return m.maxMana }
func (m *Mob) Health() int                    { return m.health }
func (m *Mob) Mana() int                      { return m.mana }
func (m *Mob) Exhaustion() int                { return m.exhaustion }

func (m *Mob) AttributeBonuses() PrimaryAttributes { return m.attrBonus }
func (m *Mob) ResourceBonuses() Resources          { return m.resBonus }

// SetAttributeBonuses replaces the runtime attribute bonuses.
func (m *Mob) SetAttributeBonuses(b PrimaryAttributes) {
	m.attrBonus = b
	m.Recompute(RecomputeRatios)
}

// SetResourceBonuses replaces the runtime capacity bonuses.
func (m *Mob) SetResourceBonuses(b Resources) {
	m.resBonus = b
	m.Recompute(RecomputeRatios)
}

// RecomputeMode picks what happens to current health and mana when the caps
// move.
type RecomputeMode uint8

const (
	// RecomputeClamp keeps absolute values, clamped to the new caps.
	RecomputeClamp RecomputeMode = iota
	// RecomputeRatios keeps the filled percentage of each resource.
	RecomputeRatios
	// RecomputeBootstrap resets to full health and mana, zero exhaustion.
	RecomputeBootstrap
)

// Recompute rebuilds the derived attribute blocks from race, job, level,
// runtime bonuses, equipment and passive effects.
func (m *Mob) Recompute(mode RecomputeMode) {
	var healthRatio, manaRatio float64
	if mode == RecomputeRatios {
		healthRatio, manaRatio = m.resourceRatios()
	}

	levels := float64(m.level - 1)

	var equipAttr PrimaryAttributes
	var equipRes Resources
	var equipSec SecondaryAttributes
	armorDefense := 0.0
	for _, slot := range m.slotOrder() {
		e := m.equipped[slot]
		equipAttr = equipAttr.Add(e.AttributeBonus())
		equipRes = equipRes.Add(e.ResourceBonus())
		equipSec = equipSec.Add(e.SecondaryBonus())
		if a, ok := e.(*Armor); ok {
			armorDefense += a.Defense()
		}
		// Weapon attack power stays out of base attack power; it counts
		// only when the weapon actually swings.
	}

	var effectAttr PrimaryAttributes
	var effectRes Resources
	var effectSec SecondaryAttributes
	for _, ef := range m.effects {
		if ef.def.Kind != EffectPassive {
			continue
		}
		effectAttr = effectAttr.Add(ef.def.Attributes)
		effectRes = effectRes.Add(ef.def.Resources)
		effectSec = effectSec.Add(ef.def.Secondary)
	}

	primary := PrimaryAttributes{}
	resources := Resources{}
	if m.race != nil {
		primary = primary.Add(m.race.StartAttributes).Add(m.race.GrowthAttributes.Scale(levels))
		resources = resources.Add(m.race.StartResources).Add(m.race.GrowthResources.Scale(levels))
	}
	if m.job != nil {
		primary = primary.Add(m.job.StartAttributes).Add(m.job.GrowthAttributes.Scale(levels))
		resources = resources.Add(m.job.StartResources).Add(m.job.GrowthResources.Scale(levels))
	}
	primary = primary.Add(m.attrBonus).Add(equipAttr).Add(effectAttr).Round()

	secondary := ComputeSecondary(primary).Add(equipSec).Add(effectSec)
	secondary.Defense += armorDefense
	secondary = secondary.Round()

	resources = resources.Add(m.resBonus).Add(equipRes).Add(effectRes)
	caps := ApplyResourceCaps(resources, secondary)

	m.primary = primary
	m.secondary = secondary
	m.maxHealth = int(math.Round(math.Max(caps.Health, 0)))
	m.maxMana = int(math.Round(math.Max(caps.Mana, 0)))

	switch mode {
	case RecomputeBootstrap:
		m.health = m.maxHealth
		m.mana = m.maxMana
		m.exhaustion = 0
	case RecomputeRatios:
		m.health = int(math.Round(healthRatio * float64(m.maxHealth)))
		m.mana = int(math.Round(manaRatio * float64(m.maxMana)))
	}
	m.clampResources()
	m.noteResourceChange()
}

// resourceRatios reports the filled fraction of health and mana, 1 when the
// cap is zero.
func (m *Mob) resourceRatios() (healthRatio, manaRatio float64) {
	healthRatio, manaRatio = 1, 1
	if m.maxHealth > 0 {
		healthRatio = float64(m.health) / float64(m.maxHealth)
	}
	if m.maxMana > 0 {
		manaRatio = float64(m.mana) / float64(m.maxMana)
	}
	return
}

func (m *Mob) clampResources() {
	if m.health < 0 {
		m.health = 0
	}
	if m.health > m.maxHealth {
		m.health = m.maxHealth
	}
	if m.mana < 0 {
		m.mana = 0
	}
	if m.mana > m.maxMana {
		m.mana = m.maxMana
	}
	if m.exhaustion < 0 {
		m.exhaustion = 0
	}
	if m.exhaustion > MaxExhaustion {
		m.exhaustion = MaxExhaustion
	}
}

// noteResourceChange keeps the regeneration registry in step with the
// resource levels.
func (m *Mob) noteResourceChange() {
	if m.w == nil || m.destroyed {
		return
	}
	if m.health < m.maxHealth || m.mana < m.maxMana || m.exhaustion > 0 {
		m.w.RegenSet.Add(m)
	} else {
		m.w.RegenSet.Remove(m)
	}
}

// SetHealth clamps and stores, updating regeneration tracking.
func (m *Mob) SetHealth(v int) {
	m.health = v
	m.clampResources()
	m.noteResourceChange()
}

// AdjustHealth shifts health by delta, clamped.
func (m *Mob) AdjustHealth(delta int) { m.SetHealth(m.health + delta) }

func (m *Mob) SetMana(v int) {
	m.mana = v
	m.clampResources()
	m.noteResourceChange()
}

func (m *Mob) AdjustMana(delta int) { m.SetMana(m.mana + delta) }

func (m *Mob) SetExhaustion(v int) {
	m.exhaustion = v
	m.clampResources()
	m.noteResourceChange()
}

func (m *Mob) AdjustExhaustion(delta int) { m.SetExhaustion(m.exhaustion + delta) }

// --- equipment ---

// slotOrder returns the occupied slot names, sorted for determinism.
func (m *Mob) slotOrder() []string {
	slots := make([]string, 0, len(m.equipped))
	for s := range m.equipped {
		slots = append(slots, s)
	}
	sort.Strings(slots)
	return slots
}

// EquippedIn returns the item worn in a slot, or nil.
func (m *Mob) EquippedIn(slot string) Wearable { return m.equipped[slot] }

// Equipped snapshots the slot map in sorted slot order.
func (m *Mob) Equipped() []Wearable {
	out := make([]Wearable, 0, len(m.equipped))
	for _, s := range m.slotOrder() {
		out = append(out, m.equipped[s])
	}
	return out
}

// IsEquipped reports whether e is currently worn.
func (m *Mob) IsEquipped(e Entity) bool {
	for _, w := range m.equipped {
		if Entity(w) == e {
			return true
		}
	}
	return false
}

// Weapon returns the wielded weapon, or nil.
func (m *Mob) Weapon() *Weapon {
	if w, ok := m.equipped[SlotWielded].(*Weapon); ok {
		return w
	}
	return nil
}

// Equip wears the item, pulling it into inventory if needed, and returns
// whatever previously occupied the slot (left in inventory).
func (m *Mob) Equip(e Wearable) Wearable {
	if e == nil {
		return nil
	}
	slot := e.Slot()
	displaced := m.equipped[slot]
	if displaced == e {
		return nil
	}
	if !m.Contains(e) {
		m.Add(e)
	}
	m.equipped[slot] = e
	m.Recompute(RecomputeRatios)
	return displaced
}

// Unequip clears a slot. The item stays in inventory.
func (m *Mob) Unequip(slot string) Wearable {
	e, ok := m.equipped[slot]
	if !ok {
		return nil
	}
	delete(m.equipped, slot)
	m.Recompute(RecomputeRatios)
	return e
}

// dropIfEquipped keeps invariant "equipped items are always contained":
// removing a worn item from inventory takes it off first.
func (m *Mob) dropIfEquipped(c Entity) {
	for slot, e := range m.equipped {
		if Entity(e) == c {
			delete(m.equipped, slot)
			m.Recompute(RecomputeRatios)
			return
		}
	}
}

// --- experience ---

// GainExperience feeds raw experience through the growth modifier and
// resolves any level-ups. Returns the number of levels gained.
func (m *Mob) GainExperience(raw int) int {
	if raw <= 0 {
		return 0
	}
	mod := CombinedGrowthModifier(m.race, m.job, m.level)
	adjusted := int(math.Floor(float64(raw) / mod))
	if adjusted < 0 {
		adjusted = 0
	}
	m.experience += adjusted

	levels := 0
	for m.experience >= ExperienceThreshold {
		m.experience -= ExperienceThreshold
		levels++
	}
	if levels == 0 {
		return 0
	}
	from := m.level
	before := m.displayedStats()
	m.level += levels
	m.Recompute(RecomputeRatios)
	m.announceLevelUp(before)
	if m.w != nil && m.w.Hooks.LevelUp != nil {
		m.w.Hooks.LevelUp(m, from, m.level)
	}
	return levels
}

// KillExperience computes the raw award for a kill without granting it:
// 10 base, +2 per level the victim exceeded the killer, or down by the
// level gap (floored at 1).
func KillExperience(killerLevel, targetLevel int) int {
	amount := 10
	diff := targetLevel - killerLevel
	if diff > 0 {
		amount += 2 * diff
	} else if diff < 0 {
		amount += diff
		if amount < 1 {
			amount = 1
		}
	}
	return amount
}

// AwardKillExperience grants the kill award for a victim of the given level.
func (m *Mob) AwardKillExperience(targetLevel int) int {
	amount := KillExperience(m.level, targetLevel)
	m.GainExperience(amount)
	return amount
}

// statLine is one named value of the level-up diff.
type statLine struct {
	name  string
	value int
}

func (m *Mob) displayedStats() []statLine {
	p, s := m.primary, m.secondary
	return []statLine{
		{"strength", int(math.Round(p.Strength))},
		{"agility", int(math.Round(p.Agility))},
		{"intelligence", int(math.Round(p.Intelligence))},
		{"attack power", int(math.Round(s.AttackPower))},
		{"defense", int(math.Round(s.Defense))},
		{"crit rate", int(math.Round(s.CritRate))},
		{"avoidance", int(math.Round(s.Avoidance))},
		{"accuracy", int(math.Round(s.Accuracy))},
		{"spell power", int(math.Round(s.SpellPower))},
		{"resilience", int(math.Round(s.Resilience))},
		{"vitality", int(math.Round(s.Vitality))},
		{"wisdom", int(math.Round(s.Wisdom))},
		{"endurance", int(math.Round(s.Endurance))},
		{"spirit", int(math.Round(s.Spirit))},
		{"max health", m.maxHealth},
		{"max mana", m.maxMana},
	}
}

func (m *Mob) announceLevelUp(before []statLine) {
	var b strings.Builder
	fmt.Fprintf(&b, "You have reached level %d!", m.level)
	after := m.displayedStats()
	for i, line := range after {
		if line.value != before[i].value {
			fmt.Fprintf(&b, "\n  %s: %d -> %d", line.name, before[i].value, line.value)
		}
	}
	if pending := m.GetUnlearnedArchetypeAbilities(); len(pending) > 0 {
		names := make([]string, 0, len(pending))
		for _, aa := range pending {
			name := aa.AbilityID
			if m.w != nil && m.w.Resolvers.Ability != nil {
				if a := m.w.Resolvers.Ability(aa.AbilityID); a != nil {
					name = a.Name
				}
			}
			names = append(names, name)
		}
		fmt.Fprintf(&b, "\nYou feel ready to learn: %s.", strings.Join(names, ", "))
	}
	m.Send(b.String(), GroupInfo)
}

// --- abilities ---

// Knows reports whether the ability handle is among the learned entries.
func (m *Mob) Knows(a *Ability) bool {
	_, ok := m.learned[a]
	return ok
}

// UseCount reports how often the mob has used the ability.
func (m *Mob) UseCount(a *Ability) int { return m.learned[a] }

// LearnedAbilities lists learned abilities in learn order.
func (m *Mob) LearnedAbilities() []*Ability {
	out := make([]*Ability, len(m.learnedOrder))
	copy(out, m.learnedOrder)
	return out
}

// ProficiencyOf reads the cached proficiency snapshot.
func (m *Mob) ProficiencyOf(a *Ability) int {
	if a == nil {
		return 0
	}
	return m.profSnapshot[a.ID]
}

// LearnArchetypeAbility adds an ability at zero uses. Re-learning keeps the
// existing use count.
func (m *Mob) LearnArchetypeAbility(a *Ability) {
	if a == nil || m.Knows(a) {
		return
	}
	m.learned[a] = 0
	m.learnedOrder = append(m.learnedOrder, a)
	m.profSnapshot[a.ID] = a.Proficiency(0)
}

// learnWithUses restores a saved use count.
func (m *Mob) learnWithUses(a *Ability, uses int) {
	if a == nil {
		return
	}
	if !m.Knows(a) {
		m.learnedOrder = append(m.learnedOrder, a)
	}
	if uses < 0 {
		uses = 0
	}
	m.learned[a] = uses
	m.profSnapshot[a.ID] = a.Proficiency(uses)
}

// LearnAbilityByID is the deprecated lookup path; callers should resolve the
// handle themselves. Panics when no resolver is installed.
//
// Deprecated: resolve the Ability and call LearnArchetypeAbility.
func (m *Mob) LearnAbilityByID(id string) {
	if m.w == nil || m.w.Resolvers.Ability == nil {
		panic("world: ability lookup by id requires an installed resolver")
	}
	if a := m.w.Resolvers.Ability(id); a != nil {
		m.LearnArchetypeAbility(a)
	}
}

// IncrementAbilityUse bumps the use count, refreshes the proficiency
// snapshot and tells the player when the percentage ticked up.
func (m *Mob) IncrementAbilityUse(a *Ability) {
	if a == nil || !m.Knows(a) {
		return
	}
	m.learned[a]++
	old := m.profSnapshot[a.ID]
	p := a.Proficiency(m.learned[a])
	m.profSnapshot[a.ID] = p
	if p > old {
		m.Send(fmt.Sprintf("Your proficiency in %s rises to %d%%.", a.Name, p), GroupInfo)
	}
}

// archetypeAbilities merges the race and job grant lists.
func (m *Mob) archetypeAbilities() []ArchetypeAbility {
	var out []ArchetypeAbility
	if m.race != nil {
		out = append(out, m.race.Abilities...)
	}
	if m.job != nil {
		out = append(out, m.job.Abilities...)
	}
	return out
}

// GetUnlearnedArchetypeAbilities lists grants at or below the current level
// that have not been learned yet.
func (m *Mob) GetUnlearnedArchetypeAbilities() []ArchetypeAbility {
	var out []ArchetypeAbility
	for _, aa := range m.archetypeAbilities() {
		if aa.Level > m.level {
			continue
		}
		known := false
		for a := range m.learned {
			if a.ID == aa.AbilityID {
				known = true
				break
			}
		}
		if !known {
			out = append(out, aa)
		}
	}
	return out
}

// LearnEligibleArchetypeAbilities resolves and learns every pending grant.
// Needs the ability resolver; without one it is a no-op.
func (m *Mob) LearnEligibleArchetypeAbilities() {
	if m.w == nil || m.w.Resolvers.Ability == nil {
		return
	}
	for _, aa := range m.GetUnlearnedArchetypeAbilities() {
		if a := m.w.Resolvers.Ability(aa.AbilityID); a != nil {
			m.LearnArchetypeAbility(a)
		}
	}
}

// --- archetype passives ---

// applyArchetypePassives re-applies the race and job passive effects. They
// never serialize; loads call this after rebuilding the mob.
func (m *Mob) applyArchetypePassives() {
	if m.w == nil || m.w.Resolvers.Effect == nil {
		return
	}
	var ids []string
	if m.race != nil {
		ids = append(ids, m.race.PassiveEffects...)
	}
	if m.job != nil {
		ids = append(ids, m.job.PassiveEffects...)
	}
	for _, id := range ids {
		def := m.w.Resolvers.Effect(id)
		if def == nil {
			m.w.log.Warn("unknown archetype passive", logTemplate(id), logOID(m.oid))
			continue
		}
		ef := m.AddEffect(def, m, &EffectRestore{Silent: true})
		if ef != nil {
			ef.fromArchetype = true
		}
	}
}

func (m *Mob) removeArchetypePassives() {
	for _, ef := range m.Effects() {
		if ef.fromArchetype {
			m.RemoveEffect(ef, false)
		}
	}
}

// Affinity multiplies the race and job damage-type affinities.
func (m *Mob) Affinity(t DamageType) float64 {
	return m.race.Affinity(t) * m.job.Affinity(t)
}

// teardown runs inside Destroy before the children are released.
func (m *Mob) teardown() {
	m.dropThreatTable()
	m.setCombatTargetInternal(nil, false)
	for slot := range m.equipped {
		delete(m.equipped, slot)
	}
	m.clearEffects()
	if m.character != nil {
		old := m.character
		m.character = nil
		if old.mob == m {
			old.mob = nil
		}
	}
	if m.shopStock != nil {
		m.shopStock.Destroy()
		m.shopStock = nil
	}
	if m.w != nil {
		m.w.CombatQueue.Remove(m)
		m.w.RegenSet.Remove(m)
		m.w.Wanderers.Remove(m)
	}
	m.aiSink = nil
}
