package data

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/gridmud/server/internal/world"
)

type abilityYAML struct {
	ID         string  `yaml:"id"`
	Name       string  `yaml:"name"`
	ManaCost   int     `yaml:"mana_cost"`
	Difficulty int     `yaml:"difficulty"`
	Effect     string  `yaml:"effect"`
	Power      float64 `yaml:"power"`
	DamageType string  `yaml:"damage_type"`
	Target     string  `yaml:"target"`
}

type abilityListFile struct {
	Abilities []abilityYAML `yaml:"abilities"`
}

// AbilityTable holds ability definitions indexed by id.
type AbilityTable struct {
	abilities map[string]*world.Ability
}

// LoadAbilityTable loads ability definitions from a YAML file.
func LoadAbilityTable(path string) (*AbilityTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read abilities: %w", err)
	}
	var f abilityListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse abilities: %w", err)
	}
	t := &AbilityTable{abilities: make(map[string]*world.Ability, len(f.Abilities))}
	for i := range f.Abilities {
		y := &f.Abilities[i]
		if y.ID == "" {
			return nil, fmt.Errorf("ability %q: missing id", y.Name)
		}
		a := &world.Ability{
			ID:         y.ID,
			Name:       y.Name,
			ManaCost:   y.ManaCost,
			Difficulty: y.Difficulty,
			EffectID:   y.Effect,
			Power:      y.Power,
			Target:     world.TargetEnemy,
		}
		if y.DamageType != "" {
			dt, ok := world.ParseDamageType(y.DamageType)
			if !ok {
				return nil, fmt.Errorf("ability %q: unknown damage type %q", y.ID, y.DamageType)
			}
			a.DamageType = dt
		}
		switch y.Target {
		case "", "enemy":
			a.Target = world.TargetEnemy
		case "self":
			a.Target = world.TargetSelf
		default:
			return nil, fmt.Errorf("ability %q: unknown target %q", y.ID, y.Target)
		}
		if _, dup := t.abilities[a.ID]; dup {
			return nil, fmt.Errorf("duplicate ability id %q", a.ID)
		}
		t.abilities[a.ID] = a
	}
	return t, nil
}

// Get returns an ability by id, or nil if not found.
func (t *AbilityTable) Get(id string) *world.Ability {
	return t.abilities[id]
}

// Count returns the number of loaded abilities.
func (t *AbilityTable) Count() int {
	return len(t.abilities)
}

// All lists the abilities sorted by id.
func (t *AbilityTable) All() []*world.Ability {
	out := make([]*world.Ability, 0, len(t.abilities))
	for _, a := range t.abilities {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
