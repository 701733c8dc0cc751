package world

import "math"

// ArchetypeKind separates races from jobs. A mob carries one of each; their
// contributions sum.
type ArchetypeKind uint8

const (
	ArchetypeRace ArchetypeKind = iota
	ArchetypeJob
)

// ArchetypeAbility grants an ability once the mob reaches Level.
type ArchetypeAbility struct {
	AbilityID string
	Level     int
}

// Archetype is a race or job definition: starting attributes, per-level
// growth, the experience growth-modifier polynomial, ability grants,
// passive effects and damage-type affinities.
type Archetype struct {
	ID   string
	Name string
	Kind ArchetypeKind

	StartAttributes  PrimaryAttributes
	GrowthAttributes PrimaryAttributes
	StartResources   Resources
	GrowthResources  Resources

	// GrowthModCoeffs are polynomial coefficients [c0, c1, c2, ...]
	// evaluated at the mob's level. Race and job modifiers multiply; the
	// product inflates the experience cost of each level.
	GrowthModCoeffs []float64

	Abilities []ArchetypeAbility

	// PassiveEffects are effect ids applied on spawn and after every load;
	// they are never serialized with the mob.
	PassiveEffects []string

	// Affinities scale incoming damage by type. Absent types take 1.0.
	Affinities map[DamageType]float64
}

// GrowthModifier evaluates the polynomial at level. Degenerate definitions
// clamp to a small positive value so experience math never divides by zero.
func (a *Archetype) GrowthModifier(level int) float64 {
	if a == nil || len(a.GrowthModCoeffs) == 0 {
		return 1
	}
	v := 0.0
	x := 1.0
	for _, c := range a.GrowthModCoeffs {
		v += c * x
		x *= float64(level)
	}
	return math.Max(v, minGrowthModifier)
}

// Affinity returns the damage multiplier for a type.
func (a *Archetype) Affinity(t DamageType) float64 {
	if a == nil || a.Affinities == nil {
		return 1
	}
	if f, ok := a.Affinities[t]; ok {
		return f
	}
	return 1
}

const minGrowthModifier = 0.01

// CombinedGrowthModifier multiplies the race and job modifiers, clamped
// positive.
func CombinedGrowthModifier(race, job *Archetype, level int) float64 {
	return math.Max(race.GrowthModifier(level)*job.GrowthModifier(level), minGrowthModifier)
}
