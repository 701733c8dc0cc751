package command

import (
	"go.uber.org/zap"

	"github.com/gridmud/server/internal/core/event"
	"github.com/gridmud/server/internal/world"
)

// SavePlayer serializes the character's body, inventory and worn gear into
// the store. The autosave pass and quit both come through here.
func SavePlayer(p *Player, deps *Deps) error {
	m := p.Mob()
	if m == nil || m.Destroyed() || p.Account == nil {
		return nil
	}
	rec := world.Serialize(m, world.SerializeOptions{Compress: true})
	ctx, cancel := storeCtx()
	defer cancel()
	if err := deps.Chars.Save(ctx, p.Account.Name, p.Char.Name(), rec); err != nil {
		return err
	}
	p.Char.ClearDirty()
	return nil
}

// LeaveWorld detaches the character's body from play, narrating the exit to
// the room left behind. The session cleanup pass uses this for dead links.
func LeaveWorld(p *Player, deps *Deps, narration string) {
	m := p.Mob()
	if m == nil || m.Destroyed() {
		return
	}
	if room := m.Room(); room != nil && narration != "" {
		room.Act(m, narration, world.GroupInfo)
	}
	m.SetCombatTarget(nil)
	name := p.Char.Name()
	m.Destroy()
	event.Emit(deps.Bus, event.PlayerLeftWorld{Name: name})
}

// HandleSave writes the character to the store on demand.
func HandleSave(p *Player, _ string, deps *Deps) {
	if err := SavePlayer(p, deps); err != nil {
		deps.Log.Error("save failed", zap.String("character", p.Char.Name()), zap.Error(err))
		p.Send("The scribes are asleep. Try again in a moment.")
		return
	}
	p.Send("Saved.")
}

// HandleQuit saves and leaves the world.
func HandleQuit(p *Player, _ string, deps *Deps) {
	m := p.Mob()
	if m != nil && m.InCombat() {
		p.Send("Not while you're fighting!")
		return
	}

	if err := SavePlayer(p, deps); err != nil {
		deps.Log.Error("save on quit failed", zap.String("character", p.Char.Name()), zap.Error(err))
		p.Send("The scribes are asleep. Recent deeds may be lost.")
	}

	deps.Log.Info("character left world",
		zap.String("character", p.Char.Name()), zap.Uint64("session", p.ID))
	LeaveWorld(p, deps, "{User} fades away.")
	p.Send("Goodbye.")
	p.Conn.Close()
}
