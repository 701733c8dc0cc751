package world

import "math"

// AbilityTarget says who a cast lands on.
type AbilityTarget string

const (
	TargetSelf  AbilityTarget = "self"
	TargetEnemy AbilityTarget = "enemy"
)

// Ability is a learnable action. Proficiency rises with use along a
// saturating curve; the driver scales potency by the snapshot percentage.
type Ability struct {
	ID   string
	Name string

	ManaCost int

	// Difficulty is the use count at which proficiency reaches 50%.
	Difficulty int

	// EffectID, when set, is the effect applied to the target on a cast.
	EffectID string

	// Power is direct damage or healing applied on a cast, before
	// proficiency scaling.
	Power      float64
	DamageType DamageType

	Target AbilityTarget
}

// Proficiency maps a use count to a 0-100 percentage:
// floor(100*uses / (uses+difficulty)), saturating at 100.
func (a *Ability) Proficiency(uses int) int {
	if uses <= 0 {
		return 0
	}
	d := a.Difficulty
	if d <= 0 {
		return 100
	}
	p := int(math.Floor(100 * float64(uses) / float64(uses+d)))
	if p > 100 {
		p = 100
	}
	return p
}
