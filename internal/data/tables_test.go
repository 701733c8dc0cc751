package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gridmud/server/internal/world"
)

func TestLoadRaceTable(t *testing.T) {
	table, err := LoadRaceTable("testdata/races.yaml")
	require.NoError(t, err)
	require.Equal(t, 2, table.Count())

	dwarf := table.Get("dwarf")
	require.NotNil(t, dwarf)
	require.Equal(t, "Dwarf", dwarf.Name)
	require.Equal(t, world.ArchetypeRace, dwarf.Kind)
	require.Equal(t, 12.0, dwarf.StartAttributes.Strength)
	require.Equal(t, []float64{1, 0.02}, dwarf.GrowthModCoeffs)
	require.Equal(t, []string{"stoneskin"}, dwarf.PassiveEffects)
	require.Equal(t, 0.8, dwarf.Affinities[world.DamageFire])

	all := table.All()
	require.Len(t, all, 2)
	require.Equal(t, "dwarf", all[0].ID)
}

func TestLoadJobTableAbilityGrants(t *testing.T) {
	table, err := LoadJobTable("testdata/jobs.yaml")
	require.NoError(t, err)

	warrior := table.Get("warrior")
	require.NotNil(t, warrior)
	require.Equal(t, world.ArchetypeJob, warrior.Kind)
	require.Equal(t, []world.ArchetypeAbility{{AbilityID: "bash", Level: 2}}, warrior.Abilities)

	// An omitted grant level floors to 1.
	mage := table.Get("mage")
	require.NotNil(t, mage)
	require.Equal(t, []world.ArchetypeAbility{{AbilityID: "firebolt", Level: 1}}, mage.Abilities)
}

func TestLoadAbilityTable(t *testing.T) {
	table, err := LoadAbilityTable("testdata/abilities.yaml")
	require.NoError(t, err)
	require.Equal(t, 3, table.Count())

	fb := table.Get("firebolt")
	require.NotNil(t, fb)
	require.Equal(t, "Firebolt", fb.Name)
	require.Equal(t, 8, fb.ManaCost)
	require.Equal(t, world.DamageFire, fb.DamageType)
	require.Equal(t, "burning", fb.EffectID)
	require.Equal(t, world.TargetEnemy, fb.Target)

	ward := table.Get("stoneskin_ward")
	require.NotNil(t, ward)
	require.Equal(t, world.TargetSelf, ward.Target)
}

func TestLoadEffectTable(t *testing.T) {
	table, err := LoadEffectTable("testdata/effects.yaml")
	require.NoError(t, err)
	require.Equal(t, 3, table.Count())

	burn := table.Get("burning")
	require.NotNil(t, burn)
	require.Equal(t, world.EffectDoT, burn.Kind)
	require.Equal(t, 3, burn.DamagePerTick)
	require.Equal(t, world.DamageFire, burn.DamageKind)
	require.True(t, burn.Offensive)

	ward := table.Get("stoneskin")
	require.NotNil(t, ward)
	require.Equal(t, world.EffectShield, ward.Kind)
	require.Equal(t, 25, ward.Absorption)
	require.Equal(t, world.DamagePhysical, ward.DamageFilter)
}

func TestLoadEffectTableRejectsIncompleteDot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "effects.yaml")
	body := "effects:\n  - id: broken\n    kind: dot\n    damage_per_tick: 3\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	_, err := LoadEffectTable(path)
	require.ErrorContains(t, err, "dot needs")
}
