package system

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gridmud/server/internal/command"
	coresys "github.com/gridmud/server/internal/core/system"
	"github.com/gridmud/server/internal/scripting"
	"github.com/gridmud/server/internal/world"
)

// AISystem runs scripted NPC behavior: Go queues the sink events mobs emit,
// Lua decides what to do with them. Phase 2 (Update), registered ahead of
// combat so reactions land before the round swings.
type AISystem struct {
	w     *world.World
	lua   *scripting.Engine
	log   *zap.Logger
	queue []aiQueued
}

type aiQueued struct {
	m  *world.Mob
	ev world.AIEvent
}

func NewAISystem(w *world.World, lua *scripting.Engine, log *zap.Logger) *AISystem {
	return &AISystem{w: w, lua: lua, log: log}
}

func (s *AISystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

// Attach installs the sink that queues the mob's events for the next pass.
// The spawn hook calls this for every scripted mob.
func (s *AISystem) Attach(m *world.Mob) {
	m.SetAISink(func(ev world.AIEvent) {
		s.queue = append(s.queue, aiQueued{m: m, ev: ev})
	})
}

// Pending reports queued, undelivered events.
func (s *AISystem) Pending() int { return len(s.queue) }

func (s *AISystem) Update(_ time.Duration) {
	// Reactions may emit further events; those wait for the next tick.
	batch := s.queue
	s.queue = nil
	for _, q := range batch {
		if q.m.Destroyed() {
			continue
		}
		s.React(q.m, q.ev)
	}
}

// React runs the mob's script against one event and applies the returned
// commands. Death events arrive here synchronously from the death handler,
// before the corpse is torn down.
func (s *AISystem) React(m *world.Mob, ev world.AIEvent) {
	if s.lua == nil {
		return
	}
	script := m.AIScript()
	if script == "" {
		return
	}
	ctx := scripting.AIContext{
		Script: script,
		Event:  string(ev.Kind),
		Self:   aiInfo(m),
	}
	if ev.Dir != world.DirNone {
		ctx.Dir = ev.Dir.String()
	}
	if ev.Actor != nil {
		actor := aiInfo(ev.Actor)
		ctx.Actor = &actor
	}
	for _, cmd := range s.lua.RunMobAI(ctx) {
		s.apply(m, ev, cmd)
	}
}

func (s *AISystem) apply(m *world.Mob, ev world.AIEvent, cmd scripting.AICommand) {
	room := m.Room()
	switch cmd.Type {
	case "say":
		if room != nil && cmd.Text != "" {
			room.Act(m, fmt.Sprintf("{User} says, %q", cmd.Text), world.GroupChat)
		}
	case "emote":
		if room != nil && cmd.Text != "" {
			room.Act(m, "{User} "+cmd.Text, world.GroupInfo)
		}
	case "attack":
		target := ev.Actor
		if target == nil || target.Destroyed() || target.Health() <= 0 {
			return
		}
		if m.InCombat() || room == nil || target.Room() != room {
			return
		}
		m.SetCombatTarget(target)
		target.Send(m.Display()+" attacks you!", world.GroupCombat)
		room.Act(m, "{User} attacks "+target.Display()+"!", world.GroupCombat, target)
	case "flee":
		if !m.InCombat() || room == nil {
			return
		}
		exits := room.PassableExits(&m.Movable)
		if len(exits) == 0 {
			return
		}
		room.Act(m, "{User} panics and tries to flee!", world.GroupCombat)
		dir := exits[s.w.RNG().Intn(len(exits))]
		if m.Step(dir) {
			// Cleared after the step so threat re-engagement only sees the
			// new room and cannot re-lock the foe left behind.
			m.SetCombatTarget(nil)
		}
	case "move":
		if m.InCombat() {
			return
		}
		dir, ok := world.ParseDirection(cmd.Dir)
		if !ok {
			return
		}
		if m.Step(dir) {
			command.CheckRoomAggression(m.Room())
		}
	default:
		s.log.Debug("script returned unknown ai command",
			zap.String("script", m.AIScript()),
			zap.String("type", cmd.Type),
		)
	}
}

// aiInfo projects the mob state scripts are allowed to see.
func aiInfo(m *world.Mob) scripting.AIMobInfo {
	return scripting.AIMobInfo{
		OID:       uint64(m.OID()),
		Name:      m.Display(),
		Level:     m.Level(),
		Health:    m.Health(),
		MaxHealth: m.MaxHealth(),
		Mana:      m.Mana(),
		MaxMana:   m.MaxMana(),
		IsPlayer:  !m.IsNPC(),
	}
}
