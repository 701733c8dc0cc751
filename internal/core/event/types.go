package event

import "github.com/gridmud/server/internal/world"

// Game events carried between ticks on the Bus. Handlers run one tick after
// the emit, so pointers must be re-validated (a mob may have been destroyed
// in between).

type MobDied struct {
	Victim *world.Mob
	Killer *world.Mob // nil for environmental deaths
}

type LeveledUp struct {
	Mob  *world.Mob
	From int
	To   int
}

type DungeonReset struct {
	Dungeon *world.Dungeon
	Spawned int
}

type PlayerEnteredWorld struct {
	Char *world.Character
}

type PlayerLeftWorld struct {
	Name string
}
