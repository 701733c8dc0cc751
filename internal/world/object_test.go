package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddKeepsBothSidesInSync(t *testing.T) {
	tw := newTestWorld(t)
	d := tw.grid("keep", 2, 2, 1)
	room := d.Room(at(0, 0, 0))

	chest := NewItem(tw.World, ItemOptions{
		ObjectOptions: ObjectOptions{Keywords: "chest", Display: "a chest"},
		IsContainer:   true,
	})
	room.Add(chest)
	requireContained(t, room, chest)

	// Re-adding an existing member is a silent no-op.
	room.Add(chest)
	count := 0
	for _, c := range room.Contents() {
		if c == Entity(chest) {
			count++
		}
	}
	assert.Equal(t, 1, count, "duplicate add must not double the membership")

	room.Remove(chest)
	assert.Nil(t, chest.Parent())
	assert.False(t, room.Contains(chest))

	// Removing a non-member is a silent no-op too.
	room.Remove(chest)
	assert.Nil(t, chest.Parent())
}

func TestAddReparentsFromOldContainer(t *testing.T) {
	tw := newTestWorld(t)
	d := tw.grid("keep", 2, 2, 1)
	r1 := d.Room(at(0, 0, 0))
	r2 := d.Room(at(1, 0, 0))

	coin := NewItem(tw.World, ItemOptions{
		ObjectOptions: ObjectOptions{Keywords: "coin", Display: "a coin"},
	})
	r1.Add(coin)
	r2.Add(coin)

	assert.False(t, r1.Contains(coin))
	requireContained(t, r2, coin)
}

func TestContainmentCycleRefused(t *testing.T) {
	tw := newTestWorld(t)
	d := tw.grid("keep", 2, 2, 1)
	room := d.Room(at(0, 0, 0))

	chest := NewItem(tw.World, ItemOptions{
		ObjectOptions: ObjectOptions{Keywords: "chest"},
		IsContainer:   true,
	})
	pouch := NewItem(tw.World, ItemOptions{
		ObjectOptions: ObjectOptions{Keywords: "pouch"},
		IsContainer:   true,
	})
	room.Add(chest)
	chest.Add(pouch)

	pouch.Add(chest)
	assert.Equal(t, Entity(room), chest.Parent(), "cycle add must leave the parent alone")
	assert.False(t, pouch.Contains(chest))

	chest.Add(chest)
	assert.Equal(t, Entity(room), chest.Parent())
}

func TestWeightBubblesThroughContainers(t *testing.T) {
	tw := newTestWorld(t)
	d := tw.grid("keep", 2, 2, 1)
	room := d.Room(at(0, 0, 0))

	chest := NewItem(tw.World, ItemOptions{
		ObjectOptions: ObjectOptions{Keywords: "chest", BaseWeight: 5},
		IsContainer:   true,
	})
	pouch := NewItem(tw.World, ItemOptions{
		ObjectOptions: ObjectOptions{Keywords: "pouch", BaseWeight: 1},
		IsContainer:   true,
	})
	coin := NewItem(tw.World, ItemOptions{
		ObjectOptions: ObjectOptions{Keywords: "coin", BaseWeight: 0.1},
	})

	room.Add(chest)
	chest.Add(pouch)
	pouch.Add(coin)

	assert.InDelta(t, 6.1, chest.Weight(), 1e-9)
	assert.InDelta(t, 1.1, pouch.Weight(), 1e-9)

	// Moving the coin out of the pouch drains both containers.
	room.Add(coin)
	assert.InDelta(t, 6.0, chest.Weight(), 1e-9)
	assert.InDelta(t, 1.0, pouch.Weight(), 1e-9)
}

func TestSetBaseWeightAdjustsAncestors(t *testing.T) {
	tw := newTestWorld(t)
	chest := NewItem(tw.World, ItemOptions{
		ObjectOptions: ObjectOptions{Keywords: "chest", BaseWeight: 5},
		IsContainer:   true,
	})
	bar := NewItem(tw.World, ItemOptions{
		ObjectOptions: ObjectOptions{Keywords: "bar", BaseWeight: 2},
	})
	chest.Add(bar)
	require.InDelta(t, 7.0, chest.Weight(), 1e-9)

	bar.SetBaseWeight(10)
	assert.InDelta(t, 10.0, bar.Weight(), 1e-9)
	assert.InDelta(t, 15.0, chest.Weight(), 1e-9)
}

func TestDungeonMembershipPropagates(t *testing.T) {
	tw := newTestWorld(t)
	keep := tw.grid("keep", 2, 2, 1)
	crypt := tw.grid("crypt", 2, 2, 1)

	mob := newNPC(tw, "porter", MobOptions{})
	sack := NewItem(tw.World, ItemOptions{
		ObjectOptions: ObjectOptions{Keywords: "sack"},
		IsContainer:   true,
	})
	mob.Add(sack)

	keep.Room(at(0, 0, 0)).Add(mob)
	assert.Equal(t, keep, mob.Dungeon())
	assert.Equal(t, keep, sack.Dungeon())
	assert.True(t, keep.ContainsObject(mob))
	assert.True(t, keep.ContainsObject(sack))

	crypt.Room(at(1, 1, 0)).Add(mob)
	assert.Equal(t, crypt, mob.Dungeon())
	assert.Equal(t, crypt, sack.Dungeon())
	assert.False(t, keep.ContainsObject(mob))
	assert.False(t, keep.ContainsObject(sack))
	assert.True(t, crypt.ContainsObject(sack))

	// Detaching from the graph unassigns the whole subtree.
	mob.Move(nil)
	assert.Nil(t, mob.Dungeon())
	assert.Nil(t, sack.Dungeon())
	assert.False(t, crypt.ContainsObject(mob))
	assert.False(t, crypt.ContainsObject(sack))
}

func TestPickupSeversResetTracking(t *testing.T) {
	tw := newTestWorld(t)
	d := tw.grid("keep", 2, 2, 1)
	room := d.Room(at(0, 0, 0))

	r := NewReset(tw.World, ResetOptions{TemplateID: "sword", RoomRef: "@keep{0,0,0}", MinCount: 1, MaxCount: 1})
	d.AddReset(r)

	sword := NewItem(tw.World, ItemOptions{
		ObjectOptions: ObjectOptions{Keywords: "sword", Display: "a sword"},
	})
	r.track(sword)
	room.Add(sword)
	require.Equal(t, r, sword.SpawnedBy(), "initial placement keeps the tracking link")
	require.Equal(t, 1, r.LiveCount())

	looter := newNPC(tw, "looter", MobOptions{})
	room.Add(looter)
	looter.Add(sword)

	assert.Nil(t, sword.SpawnedBy(), "first pickup severs the link")
	assert.Equal(t, 0, r.LiveCount())
}

func TestCrossDungeonMoveSeversResetTracking(t *testing.T) {
	tw := newTestWorld(t)
	keep := tw.grid("keep", 2, 2, 1)
	crypt := tw.grid("crypt", 2, 2, 1)

	r := NewReset(tw.World, ResetOptions{TemplateID: "guard", RoomRef: "@keep{0,0,0}", MinCount: 1, MaxCount: 1})
	keep.AddReset(r)

	guard := newNPC(tw, "guard", MobOptions{})
	r.track(guard)
	keep.Room(at(0, 0, 0)).Add(guard)

	// Mobs keep their tracking link while moving inside the home dungeon.
	keep.Room(at(1, 0, 0)).Add(guard)
	require.Equal(t, r, guard.SpawnedBy())

	crypt.Room(at(0, 0, 0)).Add(guard)
	assert.Nil(t, guard.SpawnedBy())
	assert.Equal(t, 0, r.LiveCount())
}

func TestMatchPrefixTokens(t *testing.T) {
	tw := newTestWorld(t)
	sword := NewItem(tw.World, ItemOptions{
		ObjectOptions: ObjectOptions{Keywords: "rusty sword blade"},
	})

	cases := []struct {
		query string
		want  bool
	}{
		{"rusty", true},
		{"rus", true},
		{"rus sw", true},
		{"sword rusty", true},
		{"SWORD", true},
		{"rusty dagger", false},
		{"words", false},
		{"", false},
		{"   ", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, sword.Match(tc.query), "query %q", tc.query)
	}
}

func TestFindMatchCountsDuplicates(t *testing.T) {
	tw := newTestWorld(t)
	d := tw.grid("keep", 2, 2, 1)
	room := d.Room(at(0, 0, 0))

	first := NewItem(tw.World, ItemOptions{ObjectOptions: ObjectOptions{Keywords: "loaf bread"}})
	second := NewItem(tw.World, ItemOptions{ObjectOptions: ObjectOptions{Keywords: "loaf bread"}})
	other := NewItem(tw.World, ItemOptions{ObjectOptions: ObjectOptions{Keywords: "stone"}})
	room.Add(first, other, second)

	assert.Equal(t, Entity(first), room.FindMatch("loaf", 1))
	assert.Equal(t, Entity(second), room.FindMatch("loaf", 2))
	assert.Nil(t, room.FindMatch("loaf", 3))
	assert.Equal(t, Entity(first), room.FindMatch("bread", 0), "n below one clamps to the first match")

	first.Destroy()
	assert.Equal(t, Entity(second), room.FindMatch("loaf", 1), "destroyed children do not match")
}

func TestDestroyIsRecursiveAndIdempotent(t *testing.T) {
	tw := newTestWorld(t)
	d := tw.grid("keep", 2, 2, 1)
	room := d.Room(at(0, 0, 0))

	chest := NewItem(tw.World, ItemOptions{
		ObjectOptions: ObjectOptions{Keywords: "chest", Display: "a chest", BaseWeight: 5},
		IsContainer:   true,
	})
	gem := NewItem(tw.World, ItemOptions{
		ObjectOptions: ObjectOptions{Keywords: "gem", Display: "a gem", BaseWeight: 1},
	})
	room.Add(chest)
	chest.Add(gem)

	chest.Destroy()
	assert.True(t, chest.Destroyed())
	assert.True(t, gem.Destroyed())
	assert.Equal(t, DestroyedDisplay, chest.Display())
	assert.Equal(t, DestroyedDisplay, gem.Display())
	assert.Nil(t, chest.Parent())
	assert.Nil(t, chest.Dungeon())
	assert.False(t, room.Contains(chest))
	assert.InDelta(t, 0.0, room.Weight(), 1e-9)

	// Second destroy must change nothing.
	chest.Destroy()
	assert.Equal(t, DestroyedDisplay, chest.Display())
}

func TestRoomDescriptionFallsBackToDisplay(t *testing.T) {
	tw := newTestWorld(t)
	bare := NewItem(tw.World, ItemOptions{
		ObjectOptions: ObjectOptions{Keywords: "rock", Display: "a rock"},
	})
	assert.Equal(t, "a rock", bare.RoomDescription())

	posed := NewItem(tw.World, ItemOptions{
		ObjectOptions: ObjectOptions{
			Keywords:        "rock",
			Display:         "a rock",
			RoomDescription: "A rock lies here.",
		},
	})
	assert.Equal(t, "A rock lies here.", posed.RoomDescription())
}

func TestObjectRoomWalksParentChain(t *testing.T) {
	tw := newTestWorld(t)
	d := tw.grid("keep", 2, 2, 1)
	room := d.Room(at(1, 1, 0))

	mob := newNPC(tw, "porter", MobOptions{})
	pouch := NewItem(tw.World, ItemOptions{ObjectOptions: ObjectOptions{Keywords: "pouch"}, IsContainer: true})
	coin := NewItem(tw.World, ItemOptions{ObjectOptions: ObjectOptions{Keywords: "coin"}})

	room.Add(mob)
	mob.Add(pouch)
	pouch.Add(coin)

	assert.Equal(t, room, coin.Room())
	assert.Equal(t, room, mob.Room())
	assert.Nil(t, room.Room(), "a room is not inside a room")

	mob.Move(nil)
	assert.Nil(t, coin.Room())
}

func TestCurrencyTakenByCreditsAndDestroys(t *testing.T) {
	tw := newTestWorld(t)
	d := tw.grid("keep", 2, 2, 1)
	room := d.Room(at(0, 0, 0))

	pile := NewCurrency(tw.World, 35)
	room.Add(pile)

	m := newNPC(tw, "taker", MobOptions{ObjectOptions: ObjectOptions{Value: 7}})
	room.Add(m)

	got := pile.TakenBy(m)
	assert.Equal(t, 35, got)
	assert.Equal(t, 42, m.Value())
	assert.True(t, pile.Destroyed())
	assert.False(t, room.Contains(pile))
}
