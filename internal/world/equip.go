package world

// Equipment slot names. Slots are open strings in saves and templates;
// these are the ones the built-in data uses.
const (
	SlotHead    = "head"
	SlotBody    = "body"
	SlotHands   = "hands"
	SlotFeet    = "feet"
	SlotShield  = "shield"
	SlotCloak   = "cloak"
	SlotFinger  = "finger"
	SlotNeck    = "neck"
	SlotWaist   = "waist"
	SlotWielded = "wielded"
)

// Equipment is a wearable item contributing attribute, resource and
// secondary bonuses while equipped.
type Equipment struct {
	Item

	slot      string
	attrBonus PrimaryAttributes
	resBonus  Resources
	secBonus  SecondaryAttributes
}

// EquipmentOptions configure the wearable family.
type EquipmentOptions struct {
	ObjectOptions
	Slot           string
	AttributeBonus PrimaryAttributes
	ResourceBonus  Resources
	SecondaryBonus SecondaryAttributes
}

func NewEquipment(w *World, opts EquipmentOptions) *Equipment {
	e := &Equipment{}
	e.initEquipment(w, e, KindEquipment, opts)
	return e
}

func (e *Equipment) initEquipment(w *World, self Entity, kind Kind, opts EquipmentOptions) {
	e.slot = opts.Slot
	e.attrBonus = opts.AttributeBonus
	e.resBonus = opts.ResourceBonus
	e.secBonus = opts.SecondaryBonus
	e.init(w, self, kind, opts.ObjectOptions)
}

func (e *Equipment) Slot() string                        { return e.slot }
func (e *Equipment) SetSlot(s string)                    { e.slot = s }
func (e *Equipment) AttributeBonus() PrimaryAttributes   { return e.attrBonus }
func (e *Equipment) ResourceBonus() Resources            { return e.resBonus }
func (e *Equipment) SecondaryBonus() SecondaryAttributes { return e.secBonus }

func (e *Equipment) SetAttributeBonus(b PrimaryAttributes)   { e.attrBonus = b }
func (e *Equipment) SetResourceBonus(b Resources)            { e.resBonus = b }
func (e *Equipment) SetSecondaryBonus(b SecondaryAttributes) { e.secBonus = b }

// Wearable is the contract the mob's slot map holds. Armor and Weapon
// satisfy it through embedding.
type Wearable interface {
	Entity
	Slot() string
	AttributeBonus() PrimaryAttributes
	ResourceBonus() Resources
	SecondaryBonus() SecondaryAttributes
}

// Armor is equipment that raises defense.
type Armor struct {
	Equipment
	defense float64
}

// ArmorOptions configure NewArmor.
type ArmorOptions struct {
	EquipmentOptions
	Defense float64
}

func NewArmor(w *World, opts ArmorOptions) *Armor {
	a := &Armor{defense: opts.Defense}
	a.initEquipment(w, a, KindArmor, opts.EquipmentOptions)
	return a
}

func (a *Armor) Defense() float64       { return a.defense }
func (a *Armor) SetDefense(def float64) { a.defense = def }

// Weapon is equipment that delivers attacks. Its attack power contributes
// only when swung, never to the wielder's base attack power. Construction
// resolves the hit type eagerly so a bad verb fails at load time.
type Weapon struct {
	Equipment
	attackPower float64
	hitType     HitType
	weaponType  string
}

// WeaponOptions configure NewWeapon. HitVerb must name a common hit type.
type WeaponOptions struct {
	EquipmentOptions
	AttackPower float64
	HitVerb     string
	WeaponType  string
}

func NewWeapon(w *World, opts WeaponOptions) *Weapon {
	if opts.Slot == "" {
		opts.Slot = SlotWielded
	}
	wp := &Weapon{
		attackPower: opts.AttackPower,
		hitType:     MustHitType(opts.HitVerb),
		weaponType:  opts.WeaponType,
	}
	wp.initEquipment(w, wp, KindWeapon, opts.EquipmentOptions)
	return wp
}

func (w *Weapon) AttackPower() float64 { return w.attackPower }
func (w *Weapon) HitType() HitType     { return w.hitType }
func (w *Weapon) WeaponType() string   { return w.weaponType }

func (w *Weapon) SetAttackPower(p float64) { w.attackPower = p }
