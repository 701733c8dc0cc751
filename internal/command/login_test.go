package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridmud/server/internal/world"
)

func TestLoginCreatesAccountAndCharacter(t *testing.T) {
	env := newTestEnv(t)
	p, conn := env.connect()

	Greet(p, env.Deps)
	assert.True(t, conn.contains("GridMUD"))
	assert.Equal(t, "Account: ", conn.lastPrompt())

	env.line(p, "aliceacct")
	assert.Equal(t, StateNewPassword, p.State, "unknown accounts auto-create")
	require.NotEmpty(t, conn.echo)
	assert.True(t, conn.echo[len(conn.echo)-1], "password entry hides echo")

	env.line(p, "secret99")
	assert.Equal(t, StateConfirmPassword, p.State)
	env.line(p, "secret99")
	assert.Equal(t, StateCharSelect, p.State)
	assert.False(t, conn.echo[len(conn.echo)-1], "echo restored after password")
	require.NotNil(t, p.Account)
	assert.Equal(t, "aliceacct", p.Account.Name)

	env.line(p, "create Alice")
	assert.Equal(t, StateChooseRace, p.State)
	assert.True(t, conn.contains("Human"))

	env.line(p, "hum")
	assert.Equal(t, StateChooseJob, p.State)
	assert.True(t, conn.contains("Warrior"))

	env.line(p, "warr")
	assert.Equal(t, StatePlaying, p.State)

	m := p.Mob()
	require.NotNil(t, m)
	assert.Equal(t, "Alice", p.Char.Name())
	assert.Equal(t, 1, m.Level())
	assert.Same(t, env.Deps.StartRoom, m.Room(), "fresh characters start at the anchor room")
	assert.True(t, conn.contains("Welcome, Alice."))
	assert.Equal(t, p, env.Deps.Players.ByName("alice"), "in-world index is case-insensitive")
	assert.Equal(t, 1, env.Chars.saves, "fresh characters save immediately")
}

func TestLoginPasswordMismatchLoops(t *testing.T) {
	env := newTestEnv(t)
	p, conn := env.connect()

	env.line(p, "bobacct")
	env.line(p, "secret99")
	env.line(p, "different")
	assert.Equal(t, StateNewPassword, p.State, "mismatch starts the password over")
	assert.True(t, conn.contains("don't match"))

	env.line(p, "secret99")
	env.line(p, "secret99")
	assert.Equal(t, StateCharSelect, p.State)
}

func TestLoginShortPasswordRejected(t *testing.T) {
	env := newTestEnv(t)
	p, conn := env.connect()

	env.line(p, "bobacct")
	env.line(p, "abc")
	assert.Equal(t, StateNewPassword, p.State)
	assert.True(t, conn.contains("at least 4"))
}

func TestLoginWrongPasswordThreeStrikes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.Accounts.Create(ctx, "carolacct", "rightpass")
	require.NoError(t, err)

	p, conn := env.connect()
	env.line(p, "carolacct")
	assert.Equal(t, StateAskPassword, p.State)

	env.line(p, "nope1")
	env.line(p, "nope2")
	assert.False(t, conn.closed)
	env.line(p, "nope3")
	assert.True(t, conn.closed, "third strike disconnects")
	assert.True(t, conn.contains("Too many attempts."))
}

func TestLoginBannedAccountRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acct, err := env.Accounts.Create(ctx, "villainacct", "secret99")
	require.NoError(t, err)
	acct.Banned = true

	p, conn := env.connect()
	env.line(p, "villainacct")
	env.line(p, "secret99")
	assert.True(t, conn.closed)
	assert.True(t, conn.contains("banned"))
}

func TestLoginDuplicateAccountRejected(t *testing.T) {
	env := newTestEnv(t)
	env.enterNewChar("Alice")

	p2, conn2 := env.connect()
	env.line(p2, "aliceacct")
	env.line(p2, "secret99")
	assert.True(t, conn2.closed)
	assert.True(t, conn2.contains("already logged in"))
}

func TestLoginAutoCreateDisabled(t *testing.T) {
	env := newTestEnv(t)
	env.Deps.Config.Character.AutoCreateAccounts = false

	p, conn := env.connect()
	env.line(p, "ghostacct")
	assert.Equal(t, StateAskAccount, p.State)
	assert.True(t, conn.contains("No such account."))
}

func TestLoginRoundTripsSavedCharacter(t *testing.T) {
	env := newTestEnv(t)
	p, _ := env.enterNewChar("Alice")
	m := p.Mob()

	// Walk somewhere and pick up gear so the save has substance.
	env.line(p, "north")
	sword := world.NewWeapon(env.World, world.WeaponOptions{
		EquipmentOptions: world.EquipmentOptions{
			ObjectOptions: world.ObjectOptions{
				Keywords: "iron sword",
				Display:  "an iron sword",
				Value:    30,
			},
		},
		AttackPower: 4,
		HitVerb:     "slash",
	})
	m.Add(sword)
	m.Equip(sword)
	savedRoom := m.Room()

	env.line(p, "quit")
	assert.True(t, p.Conn.IsClosed())
	assert.True(t, m.Destroyed(), "quit removes the body from the world")
	env.Deps.Players.Remove(p.ID)

	p2, conn2 := env.connect()
	env.line(p2, "aliceacct")
	env.line(p2, "secret99")
	assert.Equal(t, StateCharSelect, p2.State)
	assert.True(t, conn2.contains("Alice"), "saved character is listed")

	env.line(p2, "alice")
	require.Equal(t, StatePlaying, p2.State)
	m2 := p2.Mob()
	require.NotNil(t, m2)
	assert.Same(t, savedRoom, m2.Room(), "reload lands in the saved room")
	require.NotNil(t, m2.Weapon())
	assert.Equal(t, "an iron sword", m2.Weapon().Display())
}

func TestLoginRejectsSecondBodyForOnlineCharacter(t *testing.T) {
	env := newTestEnv(t)
	env.enterNewChar("Alice")

	// A different account cannot take the name either.
	p2, conn2 := env.connect()
	env.line(p2, "bobacct")
	env.line(p2, "secret99")
	env.line(p2, "secret99")
	env.line(p2, "create Alice")
	assert.Equal(t, StateCharSelect, p2.State)
	assert.True(t, conn2.contains("That name is taken."))
}

func TestLoginCharSelectUnknownName(t *testing.T) {
	env := newTestEnv(t)
	p, conn := env.connect()
	env.line(p, "bobacct")
	env.line(p, "secret99")
	env.line(p, "secret99")

	env.line(p, "Nobody")
	assert.Equal(t, StateCharSelect, p.State)
	assert.True(t, conn.contains("no character by that name"))
}

func TestLoginBadCharacterNames(t *testing.T) {
	env := newTestEnv(t)
	p, conn := env.connect()
	env.line(p, "bobacct")
	env.line(p, "secret99")
	env.line(p, "secret99")

	env.line(p, "create A")
	assert.Equal(t, StateCharSelect, p.State, "one letter is too short")

	env.line(p, "create Al1ce")
	assert.Equal(t, StateCharSelect, p.State, "digits are refused")
	assert.True(t, conn.contains("letters only"))
}

func TestLoginQuitAtAccountPrompt(t *testing.T) {
	env := newTestEnv(t)
	p, conn := env.connect()
	env.line(p, "quit")
	assert.True(t, conn.closed)
}
