package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for game logic overrides and mob AI.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads every script under the given
// directory: top-level files first, then the combat and ai subdirectories.
// A missing directory is not an error; the engine just carries no hooks.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load scripts: %w", err)
	}
	for _, sub := range []string{"combat", "ai"} {
		if err := e.loadDir(filepath.Join(scriptsDir, sub)); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// MeleeContext holds pre-packed data for one swing of an auto-attack round.
// The dice are rolled on the Go side from the world RNG so that seeded
// worlds stay deterministic; Lua only does arithmetic on them.
type MeleeContext struct {
	AttackerLevel      int
	AttackerPower      float64 // attack power plus weapon power
	AttackerAccuracy   float64
	AttackerCrit       float64
	AttackerExhaustion int

	TargetLevel      int
	TargetDefense    float64
	TargetResilience float64
	TargetAvoidance  float64

	HitRoll    int // 0-99 percentile
	CritRoll   int // 0-99 percentile
	SpreadRoll int // 0-50, mapped onto the 75%..125% damage spread
}

// MeleeResult is returned by the Lua calc_melee_round function.
type MeleeResult struct {
	Hit    bool
	Crit   bool
	Damage int
}

// HasMeleeRound reports whether a script defines calc_melee_round.
func (e *Engine) HasMeleeRound() bool {
	return e.vm.GetGlobal("calc_melee_round") != lua.LNil
}

// CalcMeleeRound calls the Lua calc_melee_round override. The second return
// is false when no script provides one, in which case the caller falls back
// to the built-in formula.
func (e *Engine) CalcMeleeRound(ctx MeleeContext) (MeleeResult, bool) {
	fn := e.vm.GetGlobal("calc_melee_round")
	if fn == lua.LNil {
		return MeleeResult{}, false
	}

	t := e.vm.NewTable()

	atk := e.vm.NewTable()
	atk.RawSetString("level", lua.LNumber(ctx.AttackerLevel))
	atk.RawSetString("power", lua.LNumber(ctx.AttackerPower))
	atk.RawSetString("accuracy", lua.LNumber(ctx.AttackerAccuracy))
	atk.RawSetString("crit_rate", lua.LNumber(ctx.AttackerCrit))
	atk.RawSetString("exhaustion", lua.LNumber(ctx.AttackerExhaustion))
	t.RawSetString("attacker", atk)

	tgt := e.vm.NewTable()
	tgt.RawSetString("level", lua.LNumber(ctx.TargetLevel))
	tgt.RawSetString("defense", lua.LNumber(ctx.TargetDefense))
	tgt.RawSetString("resilience", lua.LNumber(ctx.TargetResilience))
	tgt.RawSetString("avoidance", lua.LNumber(ctx.TargetAvoidance))
	t.RawSetString("target", tgt)

	t.RawSetString("hit_roll", lua.LNumber(ctx.HitRoll))
	t.RawSetString("crit_roll", lua.LNumber(ctx.CritRoll))
	t.RawSetString("spread_roll", lua.LNumber(ctx.SpreadRoll))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua calc_melee_round error", zap.Error(err))
		return MeleeResult{}, false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		e.log.Error("lua calc_melee_round returned non-table")
		return MeleeResult{}, false
	}

	return MeleeResult{
		Hit:    rt.RawGetString("hit") == lua.LTrue,
		Crit:   rt.RawGetString("crit") == lua.LTrue,
		Damage: lInt(rt, "damage"),
	}, true
}

// AIMobInfo is the slice of a mob's state that AI scripts see.
type AIMobInfo struct {
	OID       uint64
	Name      string
	Level     int
	Health    int
	MaxHealth int
	Mana      int
	MaxMana   int
	IsPlayer  bool
}

// AIContext holds one sink event for the mob_ai dispatcher. Script is the
// mob's assigned script name; Lua branches on it.
type AIContext struct {
	Script string
	Event  string // entrance, exit, sight, unsight, move, combat, death
	Dir    string // direction of the triggering movement, "" otherwise
	Self   AIMobInfo
	Actor  *AIMobInfo // the other party, nil when the event has none
}

// AICommand is a single action returned by Lua AI.
type AICommand struct {
	Type string // "say", "emote", "attack", "flee", "move"
	Text string // say/emote line
	Dir  string // move direction
}

// RunMobAI calls the Lua mob_ai dispatcher with one sink event and returns
// the actions the script wants taken. Nil when no dispatcher is loaded.
func (e *Engine) RunMobAI(ctx AIContext) []AICommand {
	fn := e.vm.GetGlobal("mob_ai")
	if fn == lua.LNil {
		return nil
	}

	t := e.vm.NewTable()
	t.RawSetString("script", lua.LString(ctx.Script))
	t.RawSetString("event", lua.LString(ctx.Event))
	t.RawSetString("dir", lua.LString(ctx.Dir))
	t.RawSetString("self", e.mobInfoTable(ctx.Self))
	if ctx.Actor != nil {
		t.RawSetString("actor", e.mobInfoTable(*ctx.Actor))
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua mob_ai error", zap.Error(err), zap.String("script", ctx.Script))
		return nil
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		return nil
	}

	var cmds []AICommand
	rt.ForEach(func(_, v lua.LValue) {
		if row, ok := v.(*lua.LTable); ok {
			cmds = append(cmds, AICommand{
				Type: lStr(row, "type"),
				Text: lStr(row, "text"),
				Dir:  lStr(row, "dir"),
			})
		}
	})
	return cmds
}

func (e *Engine) mobInfoTable(info AIMobInfo) *lua.LTable {
	t := e.vm.NewTable()
	t.RawSetString("oid", lua.LNumber(info.OID))
	t.RawSetString("name", lua.LString(info.Name))
	t.RawSetString("level", lua.LNumber(info.Level))
	t.RawSetString("health", lua.LNumber(info.Health))
	t.RawSetString("max_health", lua.LNumber(info.MaxHealth))
	t.RawSetString("mana", lua.LNumber(info.Mana))
	t.RawSetString("max_mana", lua.LNumber(info.MaxMana))
	if info.IsPlayer {
		t.RawSetString("is_player", lua.LTrue)
	} else {
		t.RawSetString("is_player", lua.LFalse)
	}
	return t
}

// lInt reads an integer field from a Lua table.
func lInt(t *lua.LTable, key string) int {
	return int(lua.LVAsNumber(t.RawGetString(key)))
}

// lStr reads a string field from a Lua table.
func lStr(t *lua.LTable, key string) string {
	return lua.LVAsString(t.RawGetString(key))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
