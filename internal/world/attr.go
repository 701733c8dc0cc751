package world

import "math"

// Attribute math: pure functions over the stat blocks, no registry access.

const (
	// HealthPerVitality is the max-health bonus per point of vitality.
	HealthPerVitality = 10.0
	// ManaPerWisdom is the max-mana bonus per point of wisdom.
	ManaPerWisdom = 10.0

	// attrDecimals is the rounding precision for derived attributes.
	attrDecimals = 1
)

// PrimaryAttributes are the three rolled attributes everything derives from.
type PrimaryAttributes struct {
	Strength     float64
	Agility      float64
	Intelligence float64
}

func (p PrimaryAttributes) Add(o PrimaryAttributes) PrimaryAttributes {
	return PrimaryAttributes{
		Strength:     p.Strength + o.Strength,
		Agility:      p.Agility + o.Agility,
		Intelligence: p.Intelligence + o.Intelligence,
	}
}

func (p PrimaryAttributes) Scale(f float64) PrimaryAttributes {
	return PrimaryAttributes{
		Strength:     p.Strength * f,
		Agility:      p.Agility * f,
		Intelligence: p.Intelligence * f,
	}
}

func (p PrimaryAttributes) Round() PrimaryAttributes {
	return PrimaryAttributes{
		Strength:     roundAttr(p.Strength),
		Agility:      roundAttr(p.Agility),
		Intelligence: roundAttr(p.Intelligence),
	}
}

func (p PrimaryAttributes) IsZero() bool {
	return p == PrimaryAttributes{}
}

// SecondaryAttributes are derived from primaries and adjusted by equipment
// and passive effects.
type SecondaryAttributes struct {
	AttackPower float64
	Defense     float64
	CritRate    float64
	Avoidance   float64
	Accuracy    float64
	SpellPower  float64
	Resilience  float64
	Vitality    float64
	Wisdom      float64
	Endurance   float64
	Spirit      float64
}

func (s SecondaryAttributes) Add(o SecondaryAttributes) SecondaryAttributes {
	return SecondaryAttributes{
		AttackPower: s.AttackPower + o.AttackPower,
		Defense:     s.Defense + o.Defense,
		CritRate:    s.CritRate + o.CritRate,
		Avoidance:   s.Avoidance + o.Avoidance,
		Accuracy:    s.Accuracy + o.Accuracy,
		SpellPower:  s.SpellPower + o.SpellPower,
		Resilience:  s.Resilience + o.Resilience,
		Vitality:    s.Vitality + o.Vitality,
		Wisdom:      s.Wisdom + o.Wisdom,
		Endurance:   s.Endurance + o.Endurance,
		Spirit:      s.Spirit + o.Spirit,
	}
}

func (s SecondaryAttributes) Scale(f float64) SecondaryAttributes {
	return SecondaryAttributes{
		AttackPower: s.AttackPower * f,
		Defense:     s.Defense * f,
		CritRate:    s.CritRate * f,
		Avoidance:   s.Avoidance * f,
		Accuracy:    s.Accuracy * f,
		SpellPower:  s.SpellPower * f,
		Resilience:  s.Resilience * f,
		Vitality:    s.Vitality * f,
		Wisdom:      s.Wisdom * f,
		Endurance:   s.Endurance * f,
		Spirit:      s.Spirit * f,
	}
}

func (s SecondaryAttributes) Round() SecondaryAttributes {
	return SecondaryAttributes{
		AttackPower: roundAttr(s.AttackPower),
		Defense:     roundAttr(s.Defense),
		CritRate:    roundAttr(s.CritRate),
		Avoidance:   roundAttr(s.Avoidance),
		Accuracy:    roundAttr(s.Accuracy),
		SpellPower:  roundAttr(s.SpellPower),
		Resilience:  roundAttr(s.Resilience),
		Vitality:    roundAttr(s.Vitality),
		Wisdom:      roundAttr(s.Wisdom),
		Endurance:   roundAttr(s.Endurance),
		Spirit:      roundAttr(s.Spirit),
	}
}

func (s SecondaryAttributes) IsZero() bool {
	return s == SecondaryAttributes{}
}

// Resources are health/mana capacities or capacity deltas. Exhaustion is
// not a resource here: its cap is fixed at MaxExhaustion.
type Resources struct {
	Health float64
	Mana   float64
}

func (r Resources) Add(o Resources) Resources {
	return Resources{Health: r.Health + o.Health, Mana: r.Mana + o.Mana}
}

func (r Resources) Scale(f float64) Resources {
	return Resources{Health: r.Health * f, Mana: r.Mana * f}
}

func (r Resources) IsZero() bool {
	return r == Resources{}
}

// ComputeSecondary derives the secondary block from primaries.
func ComputeSecondary(p PrimaryAttributes) SecondaryAttributes {
	return SecondaryAttributes{
		AttackPower: 2 * p.Strength,
		Defense:     0.5 * p.Strength,
		Vitality:    0.5 * p.Strength,
		Accuracy:    p.Agility,
		Avoidance:   0.5 * p.Agility,
		CritRate:    0.25 * p.Agility,
		Endurance:   0.5 * p.Agility,
		SpellPower:  2 * p.Intelligence,
		Resilience:  0.5 * p.Intelligence,
		Wisdom:      0.5 * p.Intelligence,
		Spirit:      0.5 * p.Intelligence,
	}
}

// ApplyResourceCaps folds vitality and wisdom into raw capacities.
func ApplyResourceCaps(base Resources, sec SecondaryAttributes) Resources {
	return Resources{
		Health: base.Health + sec.Vitality*HealthPerVitality,
		Mana:   base.Mana + sec.Wisdom*ManaPerWisdom,
	}
}

func roundAttr(v float64) float64 {
	pow := math.Pow(10, attrDecimals)
	return math.Round(v*pow) / pow
}
