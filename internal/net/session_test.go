package net

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gridmud/server/internal/world"
)

func TestSessionReadsDecodedLines(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	sess := NewSession(server, 1, 8, 8, 0, zap.NewNop())
	sess.Start()
	defer sess.Close()

	go func() {
		client.Write([]byte{telIAC, telDO, telOptEcho})
		client.Write([]byte("look\r\nh\xe9llo\r\n"))
	}()

	require.Equal(t, "look", <-sess.Lines)
	require.Equal(t, "héllo", <-sess.Lines)
}

func TestSessionFlushWritesBufferedOutputInOrder(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	sess := NewSession(server, 2, 8, 8, 0, zap.NewNop())
	sess.Start()
	defer sess.Close()

	sess.Send("You are standing in a field.", world.GroupInfo)
	sess.Send(`Bob says, "hi"`, world.GroupChat)
	sess.Prompt("> ")
	require.True(t, sess.HasBufferedOutput())
	sess.FlushOutput()
	require.False(t, sess.HasBufferedOutput())

	want := "You are standing in a field.\r\n" +
		"\x1b[36mBob says, \"hi\"\x1b[0m\r\n" +
		"> "
	got := make([]byte, len(want))
	_, err := io.ReadFull(client, got)
	require.NoError(t, err)
	require.Equal(t, want, string(got))
}

func TestSessionColorOffSkipsEscapes(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	sess := NewSession(server, 3, 8, 8, 0, zap.NewNop())
	sess.Start()
	defer sess.Close()

	sess.SetColor(false)
	sess.Send("The rat bites you.", world.GroupCombat)
	sess.FlushOutput()

	want := "The rat bites you.\r\n"
	got := make([]byte, len(want))
	_, err := io.ReadFull(client, got)
	require.NoError(t, err)
	require.Equal(t, want, string(got))
}

func TestSessionSuppressEchoStaysOrdered(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	sess := NewSession(server, 4, 8, 8, 0, zap.NewNop())
	sess.Start()
	defer sess.Close()

	sess.Send("Password:", world.GroupInfo)
	sess.SuppressEcho(true)
	sess.FlushOutput()

	want := append([]byte("Password:\r\n"), telIAC, telWILL, telOptEcho)
	got := make([]byte, len(want))
	_, err := io.ReadFull(client, got)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestSessionDropsSlowConsumer(t *testing.T) {
	// No Start: nothing drains OutQueue, so the second flush finds it full
	// and must close the session instead of blocking the game loop.
	client, server := net.Pipe()
	defer client.Close()

	sess := NewSession(server, 5, 2, 1, 0, zap.NewNop())

	sess.Send("first", world.GroupInfo)
	sess.FlushOutput()
	require.False(t, sess.IsClosed())

	sess.Send("second", world.GroupInfo)
	sess.FlushOutput()
	require.True(t, sess.IsClosed())
}

func TestSessionCloseRunsOnCloseOnce(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	sess := NewSession(server, 6, 2, 2, 0, zap.NewNop())
	calls := 0
	sess.onClose = func() { calls++ }

	sess.Close()
	sess.Close()
	require.Equal(t, 1, calls)
	require.True(t, sess.IsClosed())

	// Output after close is dropped.
	sess.Send("late", world.GroupInfo)
	require.False(t, sess.HasBufferedOutput())
}

func TestSessionRateLimitDisconnectsFlooders(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	sess := NewSession(server, 7, 64, 8, 2, zap.NewNop())
	sess.Start()
	defer sess.Close()

	go client.Write([]byte("1\r\n2\r\n3\r\n4\r\n5\r\n6\r\n"))

	require.Eventually(t, sess.IsClosed, time.Second, 10*time.Millisecond)
}
