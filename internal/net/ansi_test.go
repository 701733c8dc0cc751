package net

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gridmud/server/internal/world"
)

func TestRenderLineInfoStaysPlain(t *testing.T) {
	got := renderLine("You see nothing special.", world.GroupInfo, true)
	require.Equal(t, []byte("You see nothing special.\r\n"), got)
}

func TestRenderLineColorsByGroup(t *testing.T) {
	require.Equal(t, []byte("\x1b[31mThe rat bites you.\x1b[0m\r\n"),
		renderLine("The rat bites you.", world.GroupCombat, true))
	require.Equal(t, []byte("\x1b[36mBob says, \"hi\"\x1b[0m\r\n"),
		renderLine(`Bob says, "hi"`, world.GroupChat, true))
	require.Equal(t, []byte("\x1b[33mSaved.\x1b[0m\r\n"),
		renderLine("Saved.", world.GroupSystem, true))
}

func TestRenderLineColorOff(t *testing.T) {
	got := renderLine("The rat bites you.", world.GroupCombat, false)
	require.Equal(t, []byte("The rat bites you.\r\n"), got)
}

func TestRenderLineNormalizesNewlines(t *testing.T) {
	got := renderLine("first\nsecond", world.GroupInfo, false)
	require.Equal(t, []byte("first\r\nsecond\r\n"), got)
}
