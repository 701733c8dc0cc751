package world

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMobArchetypeStats(t *testing.T) {
	tw := newTestWorld(t)
	m := newNPC(tw, "recruit", MobOptions{Race: testRace(), Job: testJob()})

	require.Equal(t, 1, m.Level())

	p := m.Primary()
	assert.InDelta(t, 15, p.Strength, 1e-9)
	assert.InDelta(t, 10, p.Agility, 1e-9)
	assert.InDelta(t, 7, p.Intelligence, 1e-9)

	s := m.Secondary()
	assert.InDelta(t, 30, s.AttackPower, 1e-9)
	assert.InDelta(t, 7.5, s.Defense, 1e-9)
	assert.InDelta(t, 7.5, s.Vitality, 1e-9)
	assert.InDelta(t, 10, s.Accuracy, 1e-9)
	assert.InDelta(t, 5, s.Avoidance, 1e-9)
	assert.InDelta(t, 2.5, s.CritRate, 1e-9)
	assert.InDelta(t, 5, s.Endurance, 1e-9)
	assert.InDelta(t, 14, s.SpellPower, 1e-9)
	assert.InDelta(t, 3.5, s.Resilience, 1e-9)
	assert.InDelta(t, 3.5, s.Wisdom, 1e-9)
	assert.InDelta(t, 3.5, s.Spirit, 1e-9)

	assert.Equal(t, 155, m.MaxHealth())
	assert.Equal(t, 65, m.MaxMana())
	assert.Equal(t, 155, m.Health())
	assert.Equal(t, 65, m.Mana())
	assert.Equal(t, 0, m.Exhaustion())
}

func TestNewMobLevelFloorsAtOne(t *testing.T) {
	tw := newTestWorld(t)
	m := newNPC(tw, "mite", MobOptions{Level: -3})
	assert.Equal(t, 1, m.Level())

	m.SetLevel(0)
	assert.Equal(t, 1, m.Level())
}

func TestEquipmentBonusesFlowIntoStats(t *testing.T) {
	tw := newTestWorld(t)
	m := newNPC(tw, "recruit", MobOptions{Race: testRace(), Job: testJob()})

	cuirass := NewArmor(tw.World, ArmorOptions{
		EquipmentOptions: EquipmentOptions{
			ObjectOptions:  ObjectOptions{Keywords: "steel cuirass", Display: "a steel cuirass"},
			Slot:           SlotBody,
			AttributeBonus: PrimaryAttributes{Strength: 2},
			ResourceBonus:  Resources{Health: 20},
			SecondaryBonus: SecondaryAttributes{Accuracy: 2.5},
		},
		Defense: 5,
	})
	m.Equip(cuirass)

	assert.InDelta(t, 17, m.Primary().Strength, 1e-9)
	assert.InDelta(t, 34, m.Secondary().AttackPower, 1e-9)
	// Base defense 8.5 from strength 17, plus the armor's own plating.
	assert.InDelta(t, 13.5, m.Secondary().Defense, 1e-9)
	assert.InDelta(t, 12.5, m.Secondary().Accuracy, 1e-9)
	assert.Equal(t, 185, m.MaxHealth())

	// Weapon attack power never joins the base pool.
	sword := NewWeapon(tw.World, WeaponOptions{
		EquipmentOptions: EquipmentOptions{
			ObjectOptions: ObjectOptions{Keywords: "iron sword", Display: "an iron sword"},
		},
		AttackPower: 12,
		HitVerb:     "slash",
	})
	m.Equip(sword)
	assert.InDelta(t, 34, m.Secondary().AttackPower, 1e-9)
	assert.Equal(t, sword, m.Weapon())

	m.Unequip(SlotBody)
	assert.InDelta(t, 15, m.Primary().Strength, 1e-9)
	assert.InDelta(t, 30, m.Secondary().AttackPower, 1e-9)
	assert.InDelta(t, 7.5, m.Secondary().Defense, 1e-9)
	assert.Equal(t, 155, m.MaxHealth())
}

func TestEquipMechanics(t *testing.T) {
	tw := newTestWorld(t)
	d := tw.grid("keep", 2, 1, 1)
	room := d.Room(at(0, 0, 0))

	m := newNPC(tw, "recruit", MobOptions{Race: testRace(), Job: testJob()})
	room.Add(m)

	sword := NewWeapon(tw.World, WeaponOptions{
		EquipmentOptions: EquipmentOptions{
			ObjectOptions: ObjectOptions{Keywords: "iron sword", Display: "an iron sword"},
		},
		AttackPower: 8,
		HitVerb:     "slash",
	})
	room.Add(sword)

	// Equipping an item on the floor pulls it into inventory first.
	displaced := m.Equip(sword)
	assert.Nil(t, displaced)
	requireContained(t, m, sword)
	assert.True(t, m.IsEquipped(sword))
	assert.Equal(t, Wearable(sword), m.EquippedIn(SlotWielded))

	// Re-equipping the same item changes nothing.
	assert.Nil(t, m.Equip(sword))

	// A second weapon displaces the first; the first stays in inventory.
	axe := NewWeapon(tw.World, WeaponOptions{
		EquipmentOptions: EquipmentOptions{
			ObjectOptions: ObjectOptions{Keywords: "war axe", Display: "a war axe"},
		},
		AttackPower: 10,
		HitVerb:     "slash",
	})
	displaced = m.Equip(axe)
	assert.Equal(t, Wearable(sword), displaced)
	assert.False(t, m.IsEquipped(sword))
	requireContained(t, m, sword)
	assert.Equal(t, axe, m.Weapon())

	// Unequip clears the slot but keeps the item carried.
	taken := m.Unequip(SlotWielded)
	assert.Equal(t, Wearable(axe), taken)
	assert.Nil(t, m.Weapon())
	requireContained(t, m, axe)
	assert.Nil(t, m.Unequip(SlotWielded))

	// Losing a worn item from inventory takes it off automatically.
	m.Equip(axe)
	room.Add(axe)
	assert.False(t, m.IsEquipped(axe))
	requireContained(t, room, axe)
}

func TestEquippedSnapshotSortsBySlot(t *testing.T) {
	tw := newTestWorld(t)
	m := newNPC(tw, "recruit", MobOptions{Race: testRace(), Job: testJob()})

	sword := NewWeapon(tw.World, WeaponOptions{
		EquipmentOptions: EquipmentOptions{
			ObjectOptions: ObjectOptions{Keywords: "sword", Display: "a sword"},
		},
		AttackPower: 8,
		HitVerb:     "slash",
	})
	cuirass := NewArmor(tw.World, ArmorOptions{
		EquipmentOptions: EquipmentOptions{
			ObjectOptions: ObjectOptions{Keywords: "cuirass", Display: "a cuirass"},
			Slot:          SlotBody,
		},
		Defense: 3,
	})
	m.Equip(sword)
	m.Equip(cuirass)

	got := m.Equipped()
	require.Len(t, got, 2)
	assert.Equal(t, Wearable(cuirass), got[0]) // body sorts before wielded
	assert.Equal(t, Wearable(sword), got[1])
}

func TestRecomputeRatiosPreservesFill(t *testing.T) {
	tw := newTestWorld(t)
	m := newNPC(tw, "recruit", MobOptions{Race: testRace(), Job: testJob()})

	m.SetHealth(77)
	m.SetResourceBonuses(Resources{Health: 155})

	assert.Equal(t, 310, m.MaxHealth())
	assert.Equal(t, 154, m.Health()) // 77/155 of the new cap
}

func TestRecomputeClampKeepsAbsolute(t *testing.T) {
	tw := newTestWorld(t)
	m := newNPC(tw, "recruit", MobOptions{Race: testRace(), Job: testJob()})
	m.SetHealth(77)

	m.resBonus = Resources{Health: -120}
	m.Recompute(RecomputeClamp)

	assert.Equal(t, 35, m.MaxHealth())
	assert.Equal(t, 35, m.Health()) // 77 clamped to the shrunken cap
	assert.Equal(t, 65, m.Mana())   // untouched, still under its cap
}

func TestGainExperienceLevelsUp(t *testing.T) {
	tw := newTestWorld(t)
	bash := &Ability{ID: "bash", Name: "Bash", Difficulty: 10}
	cleave := &Ability{ID: "cleave", Name: "Cleave", Difficulty: 20}
	installResolvers(tw, []*Archetype{testRace()}, []*Archetype{testJob()}, []*Ability{bash, cleave}, nil)

	m, s := newPlayerMob(tw, "Alice", MobOptions{Race: testRace(), Job: testJob()})
	s.reset()

	levels := m.GainExperience(250)
	require.Equal(t, 2, levels)
	assert.Equal(t, 3, m.Level())
	assert.Equal(t, 50, m.Experience())

	p := m.Primary()
	assert.InDelta(t, 21, p.Strength, 1e-9)
	assert.InDelta(t, 13, p.Agility, 1e-9)
	assert.InDelta(t, 9.5, p.Intelligence, 1e-9)
	assert.Equal(t, 205, m.MaxHealth())
	assert.Equal(t, 88, m.MaxMana())
	assert.Equal(t, 205, m.Health()) // was full, stays full

	require.Len(t, s.lines, 1)
	msg := s.lines[0]
	assert.True(t, strings.HasPrefix(msg, "You have reached level 3!"))
	assert.Contains(t, msg, "\n  strength: 15 -> 21")
	assert.Contains(t, msg, "\n  intelligence: 7 -> 10")
	assert.Contains(t, msg, "\n  attack power: 30 -> 42")
	assert.Contains(t, msg, "\n  max health: 155 -> 205")
	assert.Contains(t, msg, "\n  max mana: 65 -> 88")
	assert.Contains(t, msg, "You feel ready to learn: Bash, Cleave.")
	// Crit rate rounds to 3 at both levels, so it is not listed.
	assert.NotContains(t, msg, "crit rate")
	assert.Equal(t, GroupInfo, s.groups[0])
}

func TestGainExperienceUsesModifierAtCurrentLevel(t *testing.T) {
	tw := newTestWorld(t)
	race := testRace()
	race.GrowthModCoeffs = []float64{1, 1} // modifier = 1 + level

	m := newNPC(tw, "slowpoke", MobOptions{Race: race})

	// Modifier 2 at level 1: 399 raw becomes 199 adjusted.
	require.Equal(t, 1, m.GainExperience(399))
	assert.Equal(t, 2, m.Level())
	assert.Equal(t, 99, m.Experience())

	// Modifier 3 at level 2: 3 raw becomes exactly the missing point.
	require.Equal(t, 1, m.GainExperience(3))
	assert.Equal(t, 3, m.Level())
	assert.Equal(t, 0, m.Experience())
}

func TestGainExperienceIgnoresNonPositive(t *testing.T) {
	tw := newTestWorld(t)
	m := newNPC(tw, "recruit", MobOptions{Race: testRace()})

	assert.Equal(t, 0, m.GainExperience(0))
	assert.Equal(t, 0, m.GainExperience(-10))
	assert.Equal(t, 0, m.Experience())
}

func TestAwardKillExperience(t *testing.T) {
	tw := newTestWorld(t)

	cases := []struct {
		name        string
		killerLevel int
		targetLevel int
		want        int
	}{
		{"even match", 3, 3, 10},
		{"punching up", 1, 4, 16},
		{"punching down", 5, 1, 6},
		{"trivial kill floors at one", 20, 1, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := newNPC(tw, "killer", MobOptions{Level: tc.killerLevel})
			got := m.AwardKillExperience(tc.targetLevel)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.want, m.Experience())
		})
	}
}

func TestProficiencyMessages(t *testing.T) {
	tw := newTestWorld(t)
	m, s := newPlayerMob(tw, "Alice", MobOptions{Race: testRace(), Job: testJob()})
	bash := &Ability{ID: "bash", Name: "Bash", Difficulty: 10}
	m.LearnArchetypeAbility(bash)
	s.reset()

	m.IncrementAbilityUse(bash)
	assert.Equal(t, 1, m.UseCount(bash))
	assert.Equal(t, 9, m.ProficiencyOf(bash))
	assert.True(t, s.contains("Your proficiency in Bash rises to 9%."))

	s.reset()
	m.IncrementAbilityUse(bash)
	assert.True(t, s.contains("Your proficiency in Bash rises to 16%."))

	// Deep into the curve a single use no longer moves the percentage.
	m.learnWithUses(bash, 110)
	assert.Equal(t, 91, m.ProficiencyOf(bash))
	s.reset()
	m.IncrementAbilityUse(bash)
	assert.Equal(t, 91, m.ProficiencyOf(bash))
	assert.Empty(t, s.lines)
}

func TestAbilityHandlesAreIdentity(t *testing.T) {
	tw := newTestWorld(t)
	m := newNPC(tw, "recruit", MobOptions{})

	bash := &Ability{ID: "bash", Name: "Bash", Difficulty: 10}
	clone := &Ability{ID: "bash", Name: "Bash", Difficulty: 10}
	m.LearnArchetypeAbility(bash)

	assert.True(t, m.Knows(bash))
	assert.False(t, m.Knows(clone))

	// Incrementing through a foreign handle is a no-op.
	m.IncrementAbilityUse(clone)
	assert.Equal(t, 0, m.UseCount(bash))
}

func TestLearnKeepsExistingUses(t *testing.T) {
	tw := newTestWorld(t)
	m := newNPC(tw, "recruit", MobOptions{})
	bash := &Ability{ID: "bash", Name: "Bash", Difficulty: 10}
	cleave := &Ability{ID: "cleave", Name: "Cleave", Difficulty: 20}

	m.learnWithUses(bash, 5)
	m.LearnArchetypeAbility(bash) // re-learn must not reset the count
	assert.Equal(t, 5, m.UseCount(bash))

	m.LearnArchetypeAbility(cleave)
	got := m.LearnedAbilities()
	require.Len(t, got, 2)
	assert.Equal(t, bash, got[0])
	assert.Equal(t, cleave, got[1])
}

func TestLearnAbilityByIDRequiresResolver(t *testing.T) {
	tw := newTestWorld(t)
	m := newNPC(tw, "recruit", MobOptions{})

	require.Panics(t, func() { m.LearnAbilityByID("bash") })

	bash := &Ability{ID: "bash", Name: "Bash", Difficulty: 10}
	installResolvers(tw, nil, nil, []*Ability{bash}, nil)
	m.LearnAbilityByID("bash")
	assert.True(t, m.Knows(bash))

	// Unknown ids resolve to nothing and learn nothing.
	m.LearnAbilityByID("no-such")
	assert.Len(t, m.LearnedAbilities(), 1)
}

func TestUnlearnedArchetypeAbilitiesByLevel(t *testing.T) {
	tw := newTestWorld(t)
	bash := &Ability{ID: "bash", Name: "Bash", Difficulty: 10}
	cleave := &Ability{ID: "cleave", Name: "Cleave", Difficulty: 20}
	installResolvers(tw, nil, nil, []*Ability{bash, cleave}, nil)

	m := newNPC(tw, "recruit", MobOptions{Job: testJob()})

	pending := m.GetUnlearnedArchetypeAbilities()
	require.Len(t, pending, 1)
	assert.Equal(t, "bash", pending[0].AbilityID)

	m.LearnEligibleArchetypeAbilities()
	assert.True(t, m.Knows(bash))
	assert.Empty(t, m.GetUnlearnedArchetypeAbilities())

	m.SetLevel(3)
	pending = m.GetUnlearnedArchetypeAbilities()
	require.Len(t, pending, 1)
	assert.Equal(t, "cleave", pending[0].AbilityID)
}

func TestSetCharacterSwapsControl(t *testing.T) {
	tw := newTestWorld(t)
	m1, _ := newPlayerMob(tw, "Alice", MobOptions{})
	m2 := newNPC(tw, "golem", MobOptions{})
	c := m1.Character()
	require.NotNil(t, c)

	m2.SetCharacter(c)
	assert.Nil(t, m1.Character())
	assert.Equal(t, c, m2.Character())
	assert.Equal(t, m2, c.Mob())
	assert.False(t, m2.IsNPC())

	m2.SetCharacter(nil)
	assert.True(t, m2.IsNPC())
	assert.Nil(t, c.Mob())
}

func TestTakingControlDropsThreat(t *testing.T) {
	tw := newTestWorld(t)
	npc := newNPC(tw, "golem", MobOptions{})
	rat := newNPC(tw, "rat", MobOptions{})

	npc.AddThreat(rat, 500)
	require.Equal(t, 500, npc.ThreatOf(rat))

	npc.SetCharacter(NewCharacter("Bob", nil))
	assert.Nil(t, npc.ThreatEntries())

	// Player-controlled mobs never track threat.
	npc.AddThreat(rat, 100)
	assert.Equal(t, 0, npc.ThreatOf(rat))
}

func TestRegenSetTracksNeed(t *testing.T) {
	tw := newTestWorld(t)
	m := newNPC(tw, "recruit", MobOptions{Race: testRace(), Job: testJob()})

	assert.False(t, tw.RegenSet.Contains(m))

	m.SetHealth(100)
	assert.True(t, tw.RegenSet.Contains(m))

	m.SetHealth(155)
	assert.False(t, tw.RegenSet.Contains(m))

	m.AdjustExhaustion(30)
	assert.True(t, tw.RegenSet.Contains(m))

	m.SetExhaustion(0)
	assert.False(t, tw.RegenSet.Contains(m))
}

func TestSetBehaviorKeepsWandererRegistry(t *testing.T) {
	tw := newTestWorld(t)
	m := newNPC(tw, "stroller", MobOptions{Behaviors: BehaviorWander})
	assert.True(t, tw.Wanderers.Contains(m))
	assert.True(t, m.HasBehavior(BehaviorWander))

	m.SetBehavior(BehaviorWander, false)
	assert.False(t, tw.Wanderers.Contains(m))
	assert.False(t, m.HasBehavior(BehaviorWander))

	m.SetBehavior(BehaviorWander, true)
	assert.True(t, tw.Wanderers.Contains(m))
}

func TestArchetypePassivesApplySilently(t *testing.T) {
	tw := newTestWorld(t)
	tough := &EffectDef{
		ID:         "tough",
		Name:       "Toughness",
		Kind:       EffectPassive,
		Attributes: PrimaryAttributes{Strength: 5},
		OnApply:    "{User} hardens.",
	}
	race := testRace()
	race.PassiveEffects = []string{"tough"}
	installResolvers(tw, []*Archetype{race}, nil, nil, []*EffectDef{tough})

	m, s := newPlayerMob(tw, "Alice", MobOptions{Race: race, Job: testJob()})

	assert.InDelta(t, 20, m.Primary().Strength, 1e-9)
	effects := m.Effects()
	require.Len(t, effects, 1)
	assert.True(t, effects[0].FromArchetype())
	assert.Empty(t, s.lines) // passives never announce

	// Swapping archetypes strips the old passives.
	m.SetArchetypes(testRace(), testJob())
	assert.Empty(t, m.Effects())
	assert.InDelta(t, 15, m.Primary().Strength, 1e-9)
}

func TestAffinityMultipliesRaceAndJob(t *testing.T) {
	tw := newTestWorld(t)
	race := testRace()
	race.Affinities = map[DamageType]float64{DamageFire: 0.5}
	job := testJob()
	job.Affinities = map[DamageType]float64{DamageFire: 0.5}

	m := newNPC(tw, "imp", MobOptions{Race: race, Job: job})
	assert.InDelta(t, 0.25, m.Affinity(DamageFire), 1e-9)
	assert.InDelta(t, 1.0, m.Affinity(DamageCold), 1e-9)

	bare := newNPC(tw, "blob", MobOptions{})
	assert.InDelta(t, 1.0, bare.Affinity(DamageFire), 1e-9)
}

func TestShopStockIsLazy(t *testing.T) {
	tw := newTestWorld(t)
	m := newNPC(tw, "merchant", MobOptions{Behaviors: BehaviorShopkeeper})

	assert.Nil(t, m.ShopStock())
	stock := m.EnsureShopStock()
	require.NotNil(t, stock)
	assert.Equal(t, stock, m.EnsureShopStock())
	assert.Equal(t, stock, m.ShopStock())
}

func TestMobDestroyTearsEverythingDown(t *testing.T) {
	tw := newTestWorld(t)
	d := tw.grid("keep", 2, 1, 1)
	room := d.Room(at(0, 0, 0))

	m, _ := newPlayerMob(tw, "Alice", MobOptions{
		Race:      testRace(),
		Job:       testJob(),
		Behaviors: BehaviorWander,
	})
	room.Add(m)
	c := m.Character()

	cuirass := NewArmor(tw.World, ArmorOptions{
		EquipmentOptions: EquipmentOptions{
			ObjectOptions: ObjectOptions{Keywords: "cuirass", Display: "a cuirass"},
			Slot:          SlotBody,
		},
		Defense: 3,
	})
	m.Equip(cuirass)
	m.AddEffect(&EffectDef{ID: "blessing", Name: "Blessing", Kind: EffectPassive}, nil, nil)
	stock := m.EnsureShopStock()

	foe := newNPC(tw, "wolf", MobOptions{Race: testRace()})
	room.Add(foe)
	m.SetCombatTarget(foe)
	require.True(t, tw.CombatQueue.Contains(m))

	m.Destroy()

	assert.True(t, m.Destroyed())
	assert.Nil(t, m.Character())
	assert.Nil(t, c.Mob())
	assert.Empty(t, m.Equipped())
	assert.Empty(t, m.Effects())
	assert.True(t, stock.Destroyed())
	assert.False(t, tw.CombatQueue.Contains(m))
	assert.False(t, tw.RegenSet.Contains(m))
	assert.False(t, tw.Wanderers.Contains(m))
	assert.False(t, m.InCombat())
}
