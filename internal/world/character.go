package world

// MessageGroup classifies outgoing text so the transport layer can render
// each category its own way. The core picks the group; rendering is not its
// business.
type MessageGroup uint8

const (
	GroupInfo MessageGroup = iota
	GroupSystem
	GroupCombat
	GroupChat
)

func (g MessageGroup) String() string {
	switch g {
	case GroupInfo:
		return "info"
	case GroupSystem:
		return "system"
	case GroupCombat:
		return "combat"
	case GroupChat:
		return "chat"
	}
	return "info"
}

// SendFunc delivers text to a player. Implementations must not block the
// game loop.
type SendFunc func(text string, group MessageGroup)

// Character is the player-control handle attached to a mob. The mob and
// character back-references always stay in sync; use Mob.SetCharacter to
// link or unlink.
type Character struct {
	name  string
	send  SendFunc
	mob   *Mob
	dirty bool
}

func NewCharacter(name string, send SendFunc) *Character {
	return &Character{name: name, send: send}
}

func (c *Character) Name() string { return c.name }

// Mob returns the controlled mob, nil while between bodies.
func (c *Character) Mob() *Mob { return c.mob }

// Send routes text to the player. Safe on a character with no transport.
func (c *Character) Send(text string, group MessageGroup) {
	if c.send != nil {
		c.send(text, group)
	}
}

// Dirty reports unsaved state.
func (c *Character) Dirty() bool { return c.dirty }

func (c *Character) MarkDirty()  { c.dirty = true }
func (c *Character) ClearDirty() { c.dirty = false }
