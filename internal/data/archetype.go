package data

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/gridmud/server/internal/world"
)

// attributesYAML mirrors world.PrimaryAttributes in data files.
type attributesYAML struct {
	Strength     float64 `yaml:"strength"`
	Agility      float64 `yaml:"agility"`
	Intelligence float64 `yaml:"intelligence"`
}

func (a attributesYAML) toWorld() world.PrimaryAttributes {
	return world.PrimaryAttributes{
		Strength:     a.Strength,
		Agility:      a.Agility,
		Intelligence: a.Intelligence,
	}
}

// resourcesYAML mirrors world.Resources in data files.
type resourcesYAML struct {
	Health float64 `yaml:"health"`
	Mana   float64 `yaml:"mana"`
}

func (r resourcesYAML) toWorld() world.Resources {
	return world.Resources{Health: r.Health, Mana: r.Mana}
}

type archetypeAbilityYAML struct {
	ID    string `yaml:"id"`
	Level int    `yaml:"level"`
}

type archetypeYAML struct {
	ID             string                 `yaml:"id"`
	Name           string                 `yaml:"name"`
	Attributes     attributesYAML         `yaml:"attributes"`
	Growth         attributesYAML         `yaml:"growth"`
	Resources      resourcesYAML          `yaml:"resources"`
	ResourceGrowth resourcesYAML          `yaml:"resource_growth"`
	GrowthMod      []float64              `yaml:"growth_mod"`
	Abilities      []archetypeAbilityYAML `yaml:"abilities"`
	PassiveEffects []string               `yaml:"passive_effects"`
	Affinities     map[string]float64     `yaml:"affinities"`
}

type raceListFile struct {
	Races []archetypeYAML `yaml:"races"`
}

type jobListFile struct {
	Jobs []archetypeYAML `yaml:"jobs"`
}

// ArchetypeTable holds race or job definitions indexed by id.
type ArchetypeTable struct {
	kind       world.ArchetypeKind
	archetypes map[string]*world.Archetype
}

// LoadRaceTable loads race definitions from a YAML file.
func LoadRaceTable(path string) (*ArchetypeTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read races: %w", err)
	}
	var f raceListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse races: %w", err)
	}
	return buildArchetypeTable(world.ArchetypeRace, f.Races)
}

// LoadJobTable loads job definitions from a YAML file.
func LoadJobTable(path string) (*ArchetypeTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read jobs: %w", err)
	}
	var f jobListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse jobs: %w", err)
	}
	return buildArchetypeTable(world.ArchetypeJob, f.Jobs)
}

func buildArchetypeTable(kind world.ArchetypeKind, entries []archetypeYAML) (*ArchetypeTable, error) {
	t := &ArchetypeTable{
		kind:       kind,
		archetypes: make(map[string]*world.Archetype, len(entries)),
	}
	for i := range entries {
		a, err := buildArchetype(kind, &entries[i])
		if err != nil {
			return nil, err
		}
		if _, dup := t.archetypes[a.ID]; dup {
			return nil, fmt.Errorf("duplicate archetype id %q", a.ID)
		}
		t.archetypes[a.ID] = a
	}
	return t, nil
}

func buildArchetype(kind world.ArchetypeKind, y *archetypeYAML) (*world.Archetype, error) {
	if y.ID == "" {
		return nil, fmt.Errorf("archetype %q: missing id", y.Name)
	}
	if y.Name == "" {
		return nil, fmt.Errorf("archetype %q: missing name", y.ID)
	}
	a := &world.Archetype{
		ID:               y.ID,
		Name:             y.Name,
		Kind:             kind,
		StartAttributes:  y.Attributes.toWorld(),
		GrowthAttributes: y.Growth.toWorld(),
		StartResources:   y.Resources.toWorld(),
		GrowthResources:  y.ResourceGrowth.toWorld(),
		GrowthModCoeffs:  y.GrowthMod,
		PassiveEffects:   y.PassiveEffects,
	}
	for _, ab := range y.Abilities {
		if ab.ID == "" {
			return nil, fmt.Errorf("archetype %q: ability grant missing id", y.ID)
		}
		lvl := ab.Level
		if lvl < 1 {
			lvl = 1
		}
		a.Abilities = append(a.Abilities, world.ArchetypeAbility{AbilityID: ab.ID, Level: lvl})
	}
	if len(y.Affinities) > 0 {
		a.Affinities = make(map[world.DamageType]float64, len(y.Affinities))
		for name, factor := range y.Affinities {
			dt, ok := world.ParseDamageType(name)
			if !ok {
				return nil, fmt.Errorf("archetype %q: unknown damage type %q", y.ID, name)
			}
			a.Affinities[dt] = factor
		}
	}
	return a, nil
}

// Get returns an archetype by id, or nil if not found.
func (t *ArchetypeTable) Get(id string) *world.Archetype {
	return t.archetypes[id]
}

// Count returns the number of loaded archetypes.
func (t *ArchetypeTable) Count() int {
	return len(t.archetypes)
}

// All lists the archetypes sorted by id, for creation menus.
func (t *ArchetypeTable) All() []*world.Archetype {
	out := make([]*world.Archetype, 0, len(t.archetypes))
	for _, a := range t.archetypes {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
