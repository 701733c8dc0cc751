package world

import (
	"math"

	"github.com/gridmud/server/internal/core/tick"
)

const (
	// ThreatDecayPeriodMs is the interval of the per-NPC decay cycle.
	ThreatDecayPeriodMs int64 = 10_000
	// threatDecayFactor scales an entry each decay pass once its grace
	// cycle is spent.
	threatDecayFactor = 0.67
	// threatDropBelow is the floor under which a decayed entry is dropped.
	threatDropBelow = 100
)

// ThreatEntry is a read-only view of one attacker's standing, used by the
// driver layer and tests.
type ThreatEntry struct {
	Mob   *Mob
	Value int
}

type threatEntry struct {
	mob          *Mob
	value        int
	shouldExpire bool
}

// threatTable records hostility per attacker in insertion order. It exists
// only while non-empty; the decay timer lives and dies with it.
type threatTable struct {
	owner   *Mob
	entries []*threatEntry
	timer   tick.Handle
}

// AddThreat credits hostility to an attacker. Player-controlled mobs keep no
// table; threat on them is silently ignored.
func (m *Mob) AddThreat(attacker *Mob, amount int) {
	if m.character != nil || m.destroyed {
		return
	}
	if attacker == nil || attacker == m || amount <= 0 {
		return
	}
	if m.threat == nil {
		m.threat = &threatTable{owner: m}
	}
	t := m.threat
	if e := t.entry(attacker); e != nil {
		e.value += amount
		e.shouldExpire = false
	} else {
		t.entries = append(t.entries, &threatEntry{mob: attacker, value: amount})
	}
	if t.timer == tick.NoHandle && m.w != nil {
		t.timer = m.w.Scheduler().SetAbsoluteInterval(func(int64) {
			m.ProcessThreatExpiration()
		}, ThreatDecayPeriodMs)
	}
	m.ProcessThreatSwitching()
}

// ThreatOf reads an attacker's current threat, zero when untracked.
func (m *Mob) ThreatOf(attacker *Mob) int {
	if m.threat == nil {
		return 0
	}
	if e := m.threat.entry(attacker); e != nil {
		return e.value
	}
	return 0
}

// ThreatEntries snapshots the table in insertion order.
func (m *Mob) ThreatEntries() []ThreatEntry {
	if m.threat == nil {
		return nil
	}
	out := make([]ThreatEntry, 0, len(m.threat.entries))
	for _, e := range m.threat.entries {
		out = append(out, ThreatEntry{Mob: e.mob, Value: e.value})
	}
	return out
}

// ProcessThreatExpiration runs one decay pass. Every surviving entry first
// spends a grace cycle; the current target and co-located mobs never decay.
// An empty table stops the timer and goes away.
func (m *Mob) ProcessThreatExpiration() {
	t := m.threat
	if t == nil {
		return
	}
	room := m.Room()
	kept := t.entries[:0]
	for _, e := range t.entries {
		if e.mob.destroyed || e.mob.dungeon == nil {
			continue
		}
		if !e.shouldExpire {
			e.shouldExpire = true
			kept = append(kept, e)
			continue
		}
		if e.mob == m.combatTarget || (room != nil && e.mob.Room() == room) {
			kept = append(kept, e)
			continue
		}
		e.value = int(math.Floor(float64(e.value) * threatDecayFactor))
		if e.value < threatDropBelow {
			continue
		}
		kept = append(kept, e)
	}
	t.entries = kept
	if len(t.entries) == 0 {
		m.dropThreatTable()
	}
}

// GetHighestThreatTarget picks the reachable entry with the most threat:
// alive, co-located, ties broken by insertion order.
func (m *Mob) GetHighestThreatTarget() *Mob {
	if m.threat == nil {
		return nil
	}
	room := m.Room()
	if room == nil {
		return nil
	}
	var best *threatEntry
	for _, e := range m.threat.entries {
		if e.mob.destroyed || e.mob.health <= 0 || e.mob.Room() != room {
			continue
		}
		if best == nil || e.value > best.value {
			best = e
		}
	}
	if best == nil {
		return nil
	}
	return best.mob
}

// ProcessThreatSwitching re-evaluates the combat target against the table,
// engaging the highest reachable threat when it beats the current target.
func (m *Mob) ProcessThreatSwitching() {
	if m.character != nil || m.destroyed {
		return
	}
	best := m.GetHighestThreatTarget()
	if best == nil || best == m.combatTarget {
		return
	}
	m.SetCombatTarget(best)
}

func (t *threatTable) entry(mob *Mob) *threatEntry {
	for _, e := range t.entries {
		if e.mob == mob {
			return e
		}
	}
	return nil
}

// dropThreatTable stops the decay timer and discards the table.
func (m *Mob) dropThreatTable() {
	if m.threat == nil {
		return
	}
	if m.threat.timer != tick.NoHandle && m.w != nil {
		m.w.Scheduler().ClearInterval(m.threat.timer)
	}
	m.threat.timer = tick.NoHandle
	m.threat = nil
}
