package world

import "fmt"

// CombatTarget returns the current opponent, nil when out of combat.
func (m *Mob) CombatTarget() *Mob { return m.combatTarget }

// InCombat reports whether a combat target is set.
func (m *Mob) InCombat() bool { return m.combatTarget != nil }

// SetCombatTarget drives the in-combat state machine. All queue and threat
// bookkeeping hangs off this transition. Targeting yourself is a silent
// no-op; shopkeepers never engage.
func (m *Mob) SetCombatTarget(target *Mob) {
	m.setCombatTargetInternal(target, true)
}

// setCombatTargetInternal does the transition. reengage lets an NPC leaving
// combat fall back to its highest reachable threat; flee and teardown paths
// disable it.
func (m *Mob) setCombatTargetInternal(target *Mob, reengage bool) {
	if target == m || m.combatTarget == target {
		return
	}
	if target != nil {
		if m.destroyed || target.destroyed {
			return
		}
		if m.HasBehavior(BehaviorShopkeeper) {
			return
		}
	}
	m.combatTarget = target
	if target != nil {
		if m.w != nil {
			m.w.CombatQueue.Add(m)
		}
		target.emitAI(AIEvent{Kind: AICombat, Actor: m})
		if m.character == nil {
			m.AddThreat(target, 1)
		}
		return
	}
	if m.w != nil {
		m.w.CombatQueue.Remove(m)
	}
	if reengage && m.character == nil && !m.destroyed {
		if best := m.GetHighestThreatTarget(); best != nil {
			m.setCombatTargetInternal(best, false)
		}
	}
}

// Damage runs the damage pipeline: shield absorption, then health, then
// threat or retaliation, then death. Returns the damage that reached health.
// Shopkeepers ignore damage entirely.
func (m *Mob) Damage(attacker *Mob, amount int, dtype DamageType) int {
	if m.destroyed || m.HasBehavior(BehaviorShopkeeper) {
		return 0
	}
	original := amount
	if amount < 0 {
		amount = 0
	}
	remaining := amount

	for _, ef := range m.Effects() {
		if remaining <= 0 {
			break
		}
		if ef.def.Kind != EffectShield {
			continue
		}
		absorbed, depleted := ef.absorb(remaining, dtype)
		if absorbed > 0 {
			remaining -= absorbed
			m.Send(fmt.Sprintf("Your %s absorbs %d damage.", ef.def.Name, absorbed), GroupCombat)
			if room := m.Room(); room != nil {
				room.Act(m, fmt.Sprintf("{User}'s %s absorbs %d damage.", ef.def.Name, absorbed), GroupCombat)
			}
		}
		if depleted {
			m.RemoveEffect(ef, false)
		}
	}

	if remaining > 0 {
		m.SetHealth(m.health - remaining)
	}

	if attacker != nil && attacker != m {
		if m.character == nil {
			t := original
			if t < 1 {
				t = 1
			}
			m.AddThreat(attacker, t)
		} else if !m.InCombat() && m.Room() != nil && m.Room() == attacker.Room() {
			m.SetCombatTarget(attacker)
		}
	}

	if remaining > 0 && m.health <= 0 {
		if m.w != nil && m.w.Hooks.Death != nil {
			m.w.Hooks.Death(m, attacker)
		}
	}
	return remaining
}

// Heal restores health, clamped to max.
func (m *Mob) Heal(amount int) {
	if amount <= 0 {
		return
	}
	m.AdjustHealth(amount)
}

// AttemptWimpyFlee gives a wimpy mob at or below quarter health an even
// chance to break off and bolt through a random passable exit. Reports
// whether it fled. Fleeing never re-engages from the threat table.
func (m *Mob) AttemptWimpyFlee() bool {
	if !m.HasBehavior(BehaviorWimpy) || !m.InCombat() || m.destroyed {
		return false
	}
	if m.maxHealth <= 0 || m.health*4 > m.maxHealth {
		return false
	}
	if m.w == nil || m.w.rng.Intn(2) != 0 {
		return false
	}
	room := m.Room()
	m.setCombatTargetInternal(nil, false)
	if room != nil {
		exits := room.PassableExits(&m.Movable)
		if len(exits) > 0 {
			dir := exits[m.w.rng.Intn(len(exits))]
			m.Step(dir)
		}
	}
	return true
}
