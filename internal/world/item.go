package world

// Prop is decorative furniture: visible in a room, never picked up.
type Prop struct {
	Object
}

func NewProp(w *World, opts ObjectOptions) *Prop {
	p := &Prop{}
	p.init(w, p, KindProp, opts)
	return p
}

// Item is a portable object. Containers additionally accept "put in" and
// "get from".
type Item struct {
	Movable
	isContainer bool
}

// ItemOptions configure NewItem.
type ItemOptions struct {
	ObjectOptions
	IsContainer bool
}

func NewItem(w *World, opts ItemOptions) *Item {
	i := &Item{isContainer: opts.IsContainer}
	i.init(w, i, KindItem, opts.ObjectOptions)
	return i
}

func (i *Item) IsContainer() bool { return i.isContainer }

// Currency is a runtime-only pile of coins. Picking it up transfers its
// value to the taker and destroys the pile; it is never serialized.
type Currency struct {
	Item
}

func NewCurrency(w *World, amount int) *Currency {
	c := &Currency{}
	c.init(w, c, KindCurrency, ObjectOptions{
		Keywords: "coins currency money",
		Display:  "a pile of coins",
		Value:    amount,
	})
	return c
}

// TakenBy credits the pile's value to the taker and destroys the pile.
func (c *Currency) TakenBy(m *Mob) int {
	amount := c.value
	m.AddValue(amount)
	c.Destroy()
	return amount
}
