package data

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/gridmud/server/internal/world"
)

type secondaryYAML struct {
	AttackPower float64 `yaml:"attack_power"`
	Defense     float64 `yaml:"defense"`
	CritRate    float64 `yaml:"crit_rate"`
	Avoidance   float64 `yaml:"avoidance"`
	Accuracy    float64 `yaml:"accuracy"`
	SpellPower  float64 `yaml:"spell_power"`
	Resilience  float64 `yaml:"resilience"`
	Vitality    float64 `yaml:"vitality"`
	Wisdom      float64 `yaml:"wisdom"`
	Endurance   float64 `yaml:"endurance"`
	Spirit      float64 `yaml:"spirit"`
}

func (s secondaryYAML) toWorld() world.SecondaryAttributes {
	return world.SecondaryAttributes{
		AttackPower: s.AttackPower,
		Defense:     s.Defense,
		CritRate:    s.CritRate,
		Avoidance:   s.Avoidance,
		Accuracy:    s.Accuracy,
		SpellPower:  s.SpellPower,
		Resilience:  s.Resilience,
		Vitality:    s.Vitality,
		Wisdom:      s.Wisdom,
		Endurance:   s.Endurance,
		Spirit:      s.Spirit,
	}
}

type effectYAML struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Kind      string `yaml:"kind"` // passive, dot, hot, shield
	Stackable bool   `yaml:"stackable"`

	Attributes attributesYAML `yaml:"attributes"`
	Secondary  secondaryYAML  `yaml:"secondary"`
	Resources  resourcesYAML  `yaml:"resources"`

	DamagePerTick int    `yaml:"damage_per_tick"`
	HealPerTick   int    `yaml:"heal_per_tick"`
	Interval      int    `yaml:"interval"` // seconds
	Duration      int    `yaml:"duration"` // seconds, 0 = permanent
	DamageKind    string `yaml:"damage_kind"`
	Offensive     bool   `yaml:"offensive"`

	Absorption          int     `yaml:"absorption"`
	AbsorptionRate      float64 `yaml:"absorption_rate"`
	MaxAbsorptionPerHit int     `yaml:"max_absorption_per_hit"`
	DamageFilter        string  `yaml:"damage_filter"`

	OnApply  string `yaml:"on_apply"`
	OnExpire string `yaml:"on_expire"`
}

type effectListFile struct {
	Effects []effectYAML `yaml:"effects"`
}

// EffectTable holds effect definitions indexed by id.
type EffectTable struct {
	effects map[string]*world.EffectDef
}

// LoadEffectTable loads effect definitions from a YAML file.
func LoadEffectTable(path string) (*EffectTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read effects: %w", err)
	}
	var f effectListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse effects: %w", err)
	}
	t := &EffectTable{effects: make(map[string]*world.EffectDef, len(f.Effects))}
	for i := range f.Effects {
		def, err := buildEffectDef(&f.Effects[i])
		if err != nil {
			return nil, err
		}
		if _, dup := t.effects[def.ID]; dup {
			return nil, fmt.Errorf("duplicate effect id %q", def.ID)
		}
		t.effects[def.ID] = def
	}
	return t, nil
}

func buildEffectDef(y *effectYAML) (*world.EffectDef, error) {
	if y.ID == "" {
		return nil, fmt.Errorf("effect %q: missing id", y.Name)
	}
	kind, ok := world.ParseEffectKind(y.Kind)
	if y.Kind != "" && !ok {
		return nil, fmt.Errorf("effect %q: unknown kind %q", y.ID, y.Kind)
	}
	def := &world.EffectDef{
		ID:        y.ID,
		Name:      y.Name,
		Kind:      kind,
		Stackable: y.Stackable,

		Attributes: y.Attributes.toWorld(),
		Secondary:  y.Secondary.toWorld(),
		Resources:  y.Resources.toWorld(),

		DamagePerTick: y.DamagePerTick,
		HealPerTick:   y.HealPerTick,
		IntervalSec:   y.Interval,
		DurationSec:   y.Duration,
		Offensive:     y.Offensive,

		Absorption:          y.Absorption,
		AbsorptionRate:      y.AbsorptionRate,
		MaxAbsorptionPerHit: y.MaxAbsorptionPerHit,

		OnApply:  y.OnApply,
		OnExpire: y.OnExpire,
	}
	if y.DamageKind != "" {
		dt, ok := world.ParseDamageType(y.DamageKind)
		if !ok {
			return nil, fmt.Errorf("effect %q: unknown damage kind %q", y.ID, y.DamageKind)
		}
		def.DamageKind = dt
	}
	if y.DamageFilter != "" {
		dt, ok := world.ParseDamageType(y.DamageFilter)
		if !ok {
			return nil, fmt.Errorf("effect %q: unknown damage filter %q", y.ID, y.DamageFilter)
		}
		def.DamageFilter = dt
	}
	switch kind {
	case world.EffectDoT:
		if def.DamagePerTick <= 0 || def.IntervalSec <= 0 || def.DurationSec <= 0 {
			return nil, fmt.Errorf("effect %q: dot needs damage_per_tick, interval and duration", y.ID)
		}
	case world.EffectHoT:
		if def.HealPerTick <= 0 || def.IntervalSec <= 0 || def.DurationSec <= 0 {
			return nil, fmt.Errorf("effect %q: hot needs heal_per_tick, interval and duration", y.ID)
		}
	case world.EffectShield:
		if def.Absorption <= 0 {
			return nil, fmt.Errorf("effect %q: shield needs absorption", y.ID)
		}
	}
	return def, nil
}

// Get returns an effect definition by id, or nil if not found.
func (t *EffectTable) Get(id string) *world.EffectDef {
	return t.effects[id]
}

// Count returns the number of loaded effect definitions.
func (t *EffectTable) Count() int {
	return len(t.effects)
}

// All lists the effect definitions sorted by id.
func (t *EffectTable) All() []*world.EffectDef {
	out := make([]*world.EffectDef, 0, len(t.effects))
	for _, def := range t.effects {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
