package world

import (
	"math"

	"github.com/gridmud/server/internal/core/tick"
)

// EffectKind is the effect variant tag.
type EffectKind uint8

const (
	// EffectPassive modifies attributes or capacities while active.
	EffectPassive EffectKind = iota
	// EffectDoT deals damage on a tick interval.
	EffectDoT
	// EffectHoT heals on a tick interval.
	EffectHoT
	// EffectShield soaks incoming damage until its pool empties. Shields
	// never expire by duration.
	EffectShield
)

var effectKindNames = []string{
	EffectPassive: "passive",
	EffectDoT:     "dot",
	EffectHoT:     "hot",
	EffectShield:  "shield",
}

func (k EffectKind) String() string {
	if int(k) < len(effectKindNames) {
		return effectKindNames[k]
	}
	return "passive"
}

// ParseEffectKind maps a serialized kind name.
func ParseEffectKind(name string) (EffectKind, bool) {
	for k, n := range effectKindNames {
		if n == name {
			return EffectKind(k), true
		}
	}
	return EffectPassive, false
}

// effectNever marks effects with no duration expiry.
const effectNever int64 = math.MaxInt64

// EffectPumpPeriodMs is how often the world walks the effect set to service
// due ticks and expirations.
const EffectPumpPeriodMs int64 = 1000

// EffectDef is the immutable definition an Effect instance points at. Loaded
// by the data layer and resolved by id.
type EffectDef struct {
	ID        string
	Name      string
	Kind      EffectKind
	Stackable bool

	// Passive modifiers. DurationSec of zero means permanent.
	Attributes PrimaryAttributes
	Secondary  SecondaryAttributes
	Resources  Resources

	// DoT and HoT tick plumbing. DurationSec is shared with passives.
	DamagePerTick int
	HealPerTick   int
	IntervalSec   int
	DurationSec   int
	DamageKind    DamageType
	Offensive     bool

	// Shield pool. AbsorptionRate of zero means 1.0; MaxAbsorptionPerHit of
	// zero means unlimited; empty DamageFilter soaks every type.
	Absorption          int
	AbsorptionRate      float64
	MaxAbsorptionPerHit int
	DamageFilter        DamageType

	// Act templates, {User} is the bearer. Empty skips the message.
	OnApply  string
	OnExpire string
}

// modifiesAttributes reports whether applying or removing this definition
// moves any derived stat.
func (d *EffectDef) modifiesAttributes() bool {
	return d.Kind == EffectPassive &&
		(!d.Attributes.IsZero() || !d.Secondary.IsZero() || !d.Resources.IsZero())
}

// Effect is one live instance on a mob. All timing is absolute world time in
// milliseconds; ticks are anchored to appliedAt so a late pump never drifts.
type Effect struct {
	def    *EffectDef
	target *Mob
	caster *Mob

	casterOID int64

	appliedAt           int64
	expiresAt           int64
	nextTickAt          int64
	ticksRemaining      int
	tickAmount          int
	remainingAbsorption int

	fromArchetype bool
	removed       bool
}

func (ef *Effect) Def() *EffectDef          { return ef.def }
func (ef *Effect) Target() *Mob             { return ef.target }
func (ef *Effect) CasterOID() int64         { return ef.casterOID }
func (ef *Effect) AppliedAt() int64         { return ef.appliedAt }
func (ef *Effect) TicksRemaining() int      { return ef.ticksRemaining }
func (ef *Effect) TickAmount() int          { return ef.tickAmount }
func (ef *Effect) RemainingAbsorption() int { return ef.remainingAbsorption }
func (ef *Effect) FromArchetype() bool      { return ef.fromArchetype }

// Permanent reports whether the effect has no duration expiry.
func (ef *Effect) Permanent() bool { return ef.expiresAt == effectNever }

// RemainingMs is the time left before expiry, zero for permanent effects.
func (ef *Effect) RemainingMs(nowMs int64) int64 {
	if ef.expiresAt == effectNever {
		return 0
	}
	left := ef.expiresAt - nowMs
	if left < 0 {
		left = 0
	}
	return left
}

// NextTickInMs is the time until the next tick, zero when no ticks remain.
func (ef *Effect) NextTickInMs(nowMs int64) int64 {
	if ef.ticksRemaining <= 0 {
		return 0
	}
	left := ef.nextTickAt - nowMs
	if left < 0 {
		left = 0
	}
	return left
}

// casterRef returns the caster while it is still in the world.
func (ef *Effect) casterRef() *Mob {
	if ef.caster == nil || ef.caster.destroyed {
		return nil
	}
	return ef.caster
}

// needsServicing reports whether the effect carries any timer the pump must
// watch.
func (ef *Effect) needsServicing() bool {
	return ef.expiresAt != effectNever || ef.ticksRemaining > 0
}

// absorb soaks part of an incoming hit. Returns the absorbed amount and
// whether the pool is now empty. Filtered shields ignore mismatched damage.
func (ef *Effect) absorb(amount int, dtype DamageType) (int, bool) {
	d := ef.def
	if d.Kind != EffectShield || amount <= 0 {
		return 0, false
	}
	if ef.remainingAbsorption <= 0 {
		return 0, true
	}
	if d.DamageFilter != "" && dtype != d.DamageFilter {
		return 0, false
	}
	rate := d.AbsorptionRate
	if rate <= 0 {
		rate = 1
	}
	try := int(math.Floor(float64(amount) * rate))
	if try > ef.remainingAbsorption {
		try = ef.remainingAbsorption
	}
	if d.MaxAbsorptionPerHit > 0 && try > d.MaxAbsorptionPerHit {
		try = d.MaxAbsorptionPerHit
	}
	if try > amount {
		try = amount
	}
	if try <= 0 {
		return 0, false
	}
	ef.remainingAbsorption -= try
	return try, ef.remainingAbsorption <= 0
}

// EffectRestore carries serialized timing back into AddEffect so a reloaded
// effect resumes mid-flight instead of restarting. Nil fields fall back to
// the definition.
type EffectRestore struct {
	// Silent suppresses the OnApply message.
	Silent              bool
	CasterOID           int64
	RemainingMs         *int64
	NextTickInMs        *int64
	TicksRemaining      *int
	TickAmount          *int
	RemainingAbsorption *int
}

// Effects snapshots the active-effect list in insertion order.
func (m *Mob) Effects() []*Effect {
	out := make([]*Effect, len(m.effects))
	copy(out, m.effects)
	return out
}

// FindEffect returns the first active instance of an effect id, or nil.
func (m *Mob) FindEffect(id string) *Effect {
	for _, ef := range m.effects {
		if ef.def.ID == id {
			return ef
		}
	}
	return nil
}

// AddEffect applies a definition to the mob. Non-stackable definitions
// replace their previous instances. Returns the new instance, or nil when
// the definition is nil or the mob is gone.
func (m *Mob) AddEffect(def *EffectDef, caster *Mob, restore *EffectRestore) *Effect {
	if def == nil || m.destroyed {
		return nil
	}
	if !def.Stackable {
		m.RemoveEffectsByID(def.ID)
	}

	var now int64
	if m.w != nil {
		now = m.w.NowMs()
	}
	ef := &Effect{
		def:       def,
		target:    m,
		caster:    caster,
		appliedAt: now,
		expiresAt: effectNever,
	}
	if caster != nil {
		ef.casterOID = caster.oid
	}
	if restore != nil && restore.CasterOID != 0 {
		ef.casterOID = restore.CasterOID
	}

	switch def.Kind {
	case EffectDoT, EffectHoT:
		ef.tickAmount = def.DamagePerTick
		if def.Kind == EffectHoT {
			ef.tickAmount = def.HealPerTick
		}
		interval := int64(def.IntervalSec) * 1000
		if restore != nil && restore.RemainingMs != nil {
			ef.expiresAt = now + *restore.RemainingMs
			if restore.NextTickInMs != nil {
				ef.nextTickAt = now + *restore.NextTickInMs
			}
			if restore.TicksRemaining != nil {
				ef.ticksRemaining = *restore.TicksRemaining
			}
			if restore.TickAmount != nil {
				ef.tickAmount = *restore.TickAmount
			}
		} else {
			ef.expiresAt = now + int64(def.DurationSec)*1000
			ef.nextTickAt = now + interval
			if def.IntervalSec > 0 {
				ef.ticksRemaining = def.DurationSec / def.IntervalSec
			}
		}
	case EffectShield:
		ef.remainingAbsorption = def.Absorption
		if restore != nil && restore.RemainingAbsorption != nil {
			ef.remainingAbsorption = *restore.RemainingAbsorption
		}
	case EffectPassive:
		if restore != nil && restore.RemainingMs != nil {
			ef.expiresAt = now + *restore.RemainingMs
		} else if def.DurationSec > 0 {
			ef.expiresAt = now + int64(def.DurationSec)*1000
		}
	}

	m.effects = append(m.effects, ef)
	m.noteEffectTimers()

	if def.OnApply != "" && (restore == nil || !restore.Silent) {
		m.Send(expandAct(def.OnApply, m), GroupInfo)
		if room := m.Room(); room != nil {
			room.Act(m, def.OnApply, GroupInfo)
		}
	}
	if def.modifiesAttributes() {
		m.Recompute(RecomputeRatios)
	}
	if def.Offensive && caster != nil && caster != m && !m.InCombat() {
		m.SetCombatTarget(caster)
	}
	return ef
}

// RemoveEffect takes an instance off the mob. The expire message shows when
// asked for or when the effect's duration has in fact run out.
func (m *Mob) RemoveEffect(ef *Effect, showExpireMessage bool) {
	emit := showExpireMessage
	if !emit && ef != nil && ef.expiresAt != effectNever && m.w != nil {
		emit = m.w.NowMs() >= ef.expiresAt
	}
	m.removeEffect(ef, emit)
}

// RemoveEffectsByID strips every instance of an id, with no expiration
// messaging.
func (m *Mob) RemoveEffectsByID(id string) int {
	n := 0
	for _, ef := range m.Effects() {
		if ef.def.ID == id {
			m.removeEffect(ef, false)
			n++
		}
	}
	return n
}

func (m *Mob) removeEffect(ef *Effect, emitExpire bool) {
	if ef == nil || ef.removed {
		return
	}
	found := false
	for i, e := range m.effects {
		if e == ef {
			m.effects = append(m.effects[:i], m.effects[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return
	}
	ef.removed = true
	m.noteEffectTimers()
	if emitExpire && ef.def.OnExpire != "" {
		m.Send(expandAct(ef.def.OnExpire, m), GroupInfo)
		if room := m.Room(); room != nil {
			room.Act(m, ef.def.OnExpire, GroupInfo)
		}
	}
	if ef.def.modifiesAttributes() && !m.destroyed {
		m.Recompute(RecomputeRatios)
	}
}

// clearEffects drops everything silently. Teardown path.
func (m *Mob) clearEffects() {
	for _, ef := range m.effects {
		ef.removed = true
	}
	m.effects = nil
	if m.w != nil {
		m.w.EffectSet.Remove(m)
		m.w.noteEffectPump()
	}
}

// ServiceEffects delivers every tick and expiry due at or before nowMs.
// Ticks advance by whole intervals from their anchor, so catch-up after a
// stall lands on the same schedule.
func (m *Mob) ServiceEffects(nowMs int64) {
	for _, ef := range m.Effects() {
		if ef.removed || m.destroyed {
			continue
		}
		d := ef.def
		if d.Kind == EffectDoT || d.Kind == EffectHoT {
			interval := int64(d.IntervalSec) * 1000
			for ef.ticksRemaining > 0 && ef.nextTickAt <= nowMs && !ef.removed && !m.destroyed {
				ef.ticksRemaining--
				if interval > 0 {
					ef.nextTickAt += interval
				} else {
					ef.ticksRemaining = 0
				}
				if d.Kind == EffectDoT {
					m.Damage(ef.casterRef(), ef.tickAmount, d.DamageKind)
				} else {
					m.Heal(ef.tickAmount)
				}
			}
			if ef.removed || m.destroyed {
				continue
			}
			if ef.ticksRemaining <= 0 || (ef.expiresAt != effectNever && nowMs >= ef.expiresAt) {
				m.RemoveEffect(ef, true)
			}
			continue
		}
		if ef.expiresAt != effectNever && nowMs >= ef.expiresAt {
			m.RemoveEffect(ef, true)
		}
	}
	m.noteEffectTimers()
}

// noteEffectTimers keeps the global effect set and the world pump in step
// with this mob's serviceable effects.
func (m *Mob) noteEffectTimers() {
	if m.w == nil {
		return
	}
	needs := false
	if !m.destroyed {
		for _, ef := range m.effects {
			if ef.needsServicing() {
				needs = true
				break
			}
		}
	}
	if needs {
		m.w.EffectSet.Add(m)
	} else {
		m.w.EffectSet.Remove(m)
	}
	m.w.noteEffectPump()
}

// noteEffectPump runs the service interval exactly while the effect set has
// members.
func (w *World) noteEffectPump() {
	if w.EffectSet.Len() > 0 {
		if w.effectPump == tick.NoHandle {
			w.effectPump = w.sched.SetAbsoluteInterval(w.serviceEffects, EffectPumpPeriodMs)
		}
		return
	}
	if w.effectPump != tick.NoHandle {
		w.sched.ClearInterval(w.effectPump)
		w.effectPump = tick.NoHandle
	}
}

func (w *World) serviceEffects(nowMs int64) {
	for _, m := range w.EffectSet.Snapshot() {
		m.ServiceEffects(nowMs)
	}
}
