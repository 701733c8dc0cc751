package world

import "fmt"

// DamageType classifies damage for shield filters and narration.
type DamageType string

const (
	DamagePhysical  DamageType = "physical"
	DamageFire      DamageType = "fire"
	DamageCold      DamageType = "cold"
	DamageLightning DamageType = "lightning"
	DamageArcane    DamageType = "arcane"
	DamageShadow    DamageType = "shadow"
	DamageHoly      DamageType = "holy"
)

var damageTypes = map[DamageType]bool{
	DamagePhysical:  true,
	DamageFire:      true,
	DamageCold:      true,
	DamageLightning: true,
	DamageArcane:    true,
	DamageShadow:    true,
	DamageHoly:      true,
}

// ParseDamageType validates a damage type name from data files or scripts.
func ParseDamageType(name string) (DamageType, bool) {
	t := DamageType(name)
	return t, damageTypes[t]
}

// HitType pairs an attack verb with a damage type. Weapons reference the
// common table by verb.
type HitType struct {
	Verb   string
	Damage DamageType
}

var commonHitTypes = map[string]HitType{
	"slash":  {Verb: "slash", Damage: DamagePhysical},
	"pierce": {Verb: "pierce", Damage: DamagePhysical},
	"bash":   {Verb: "bash", Damage: DamagePhysical},
	"claw":   {Verb: "claw", Damage: DamagePhysical},
	"bite":   {Verb: "bite", Damage: DamagePhysical},
	"sting":  {Verb: "sting", Damage: DamagePhysical},
	"burn":   {Verb: "burn", Damage: DamageFire},
	"chill":  {Verb: "chill", Damage: DamageCold},
	"shock":  {Verb: "shock", Damage: DamageLightning},
	"blast":  {Verb: "blast", Damage: DamageArcane},
	"drain":  {Verb: "drain", Damage: DamageShadow},
}

// LookupHitType finds a common hit type by verb.
func LookupHitType(verb string) (HitType, bool) {
	ht, ok := commonHitTypes[verb]
	return ht, ok
}

// MustHitType panics on unknown verbs. Weapon construction goes through
// here, so a bad verb fails fast instead of surfacing mid-combat.
func MustHitType(verb string) HitType {
	ht, ok := commonHitTypes[verb]
	if !ok {
		panic(fmt.Sprintf("world: unknown hit type %q", verb))
	}
	return ht
}
