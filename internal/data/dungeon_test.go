package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gridmud/server/internal/core/tick"
	"github.com/gridmud/server/internal/world"
)

func newBuildWorld(t *testing.T) *world.World {
	t.Helper()
	clock := tick.NewManualClock(0)
	return world.NewWorld(world.Options{
		Clock:     clock,
		Scheduler: tick.NewWheel(clock),
		RNG:       tick.NewSequence(0, 0, 0, 0),
		Log:       zap.NewNop(),
	})
}

func TestBuildWorldRealizesFiles(t *testing.T) {
	w := newBuildWorld(t)
	dungeons, err := BuildWorld(w, "testdata/dungeons")
	require.NoError(t, err)
	require.Len(t, dungeons, 2)

	town := w.DungeonByID("town")
	require.NotNil(t, town)
	require.Equal(t, "Test Town", town.Name())
	require.Equal(t, "The town stirs.", town.ResetMessage())

	// The fill pass allocated the whole grid; the explicit room kept
	// its own text.
	square := w.ResolveRoomRef("@town{0,0,0}")
	require.NotNil(t, square)
	require.Equal(t, "the town square", square.Display())
	street := w.ResolveRoomRef("@town{1,1,0}")
	require.NotNil(t, street)
	require.Equal(t, "a cobbled street", street.Display())

	// The cross-dungeon link is passable both ways.
	tunnel := w.ResolveRoomRef("@sewer{0,0,0}")
	require.NotNil(t, tunnel)
	require.Same(t, tunnel, square.GetStep(world.Down))
	require.Same(t, square, tunnel.GetStep(world.Up))

	// Resets spawn the file-local template into the named room.
	spawned := town.ExecuteResets()
	require.GreaterOrEqual(t, spawned, 1)
	require.NotEmpty(t, square.Contents())
}

func TestLoadDungeonFileRejectsBadData(t *testing.T) {
	const header = "id: keep\nname: Keep\ndimensions: {width: 1, height: 1, layers: 1}\n"
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "room outside grid",
			body: header + "rooms:\n  - {x: 5, y: 0}\n",
			want: "outside",
		},
		{
			name: "duplicate room",
			body: header + "rooms:\n  - {x: 0, y: 0}\n  - {x: 0, y: 0}\n",
			want: "duplicate room",
		},
		{
			name: "unknown exit",
			body: header + "rooms:\n  - {x: 0, y: 0, exits: [sideways]}\n",
			want: "unknown exit direction",
		},
		{
			name: "unknown template type",
			body: header + "templates:\n  - {id: ghost, type: Ghost}\n",
			want: "unknown type",
		},
		{
			name: "bad reset room ref",
			body: header + "resets:\n  - {template: rat, room: nowhere}\n",
			want: "missing '@' prefix",
		},
		{
			name: "bad population range",
			body: header + "resets:\n  - {template: rat, room: \"@keep{0,0,0}\", min: 3, max: 1}\n",
			want: "bad population range",
		},
		{
			name: "unknown link direction",
			body: header + "links:\n  - {from: \"@keep{0,0,0}\", dir: sideways, to: \"@keep{0,0,0}\"}\n",
			want: "unknown direction",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "keep.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.body), 0o644))
			_, err := LoadDungeonFile(path)
			require.ErrorContains(t, err, tc.want)
		})
	}
}

func TestWireLinksFailsOnMissingRoom(t *testing.T) {
	w := newBuildWorld(t)
	f, err := LoadDungeonFile("testdata/dungeons/town.yaml")
	require.NoError(t, err)
	_, err = BuildDungeon(w, f)
	require.NoError(t, err)

	// The sewer side of the link was never built.
	_, err = WireLinks(w, []*DungeonFile{f})
	require.ErrorContains(t, err, "no room at @sewer{0,0,0}")
}
