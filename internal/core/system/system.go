package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain session lines + login steps
	PhasePreUpdate               // 1: dispatch last tick's events, pump timers
	PhaseUpdate                  // 2: game logic (commands, combat, wander, resets)
	PhasePostUpdate              // 3: regeneration, death processing
	PhaseOutput                  // 4: prompts + flush session buffers
	PhasePersist                 // 5: autosave dirty characters
	PhaseCleanup                 // 6: reap dead sessions
)

// System is the interface every game-loop system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
