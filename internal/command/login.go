package command

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/gridmud/server/internal/core/event"
	"github.com/gridmud/server/internal/persist"
	"github.com/gridmud/server/internal/world"
)

const maxPasswordTries = 3
const minPasswordLen = 4

// Greet sends the connection banner and opens the login flow.
func Greet(p *Player, deps *Deps) {
	p.Send(deps.Config.Server.Name)
	if motd := deps.Config.Server.MOTD; motd != "" {
		p.Send(motd)
	}
	p.Send("Enter your account name, or \"create <name>\" to register.")
	p.Conn.Prompt("Account: ")
}

// HandleLogin advances the login state machine by one line of input.
func HandleLogin(p *Player, line string, deps *Deps) {
	switch p.State {
	case StateAskAccount:
		loginAskAccount(p, line, deps)
	case StateAskPassword:
		loginAskPassword(p, line, deps)
	case StateNewPassword:
		loginNewPassword(p, line, deps)
	case StateConfirmPassword:
		loginConfirmPassword(p, line, deps)
	case StateCharSelect:
		loginCharSelect(p, line, deps)
	case StateChooseRace:
		loginChooseRace(p, line, deps)
	case StateChooseJob:
		loginChooseJob(p, line, deps)
	}
}

func loginAskAccount(p *Player, line string, deps *Deps) {
	if line == "" {
		p.Conn.Prompt("Account: ")
		return
	}
	if strings.EqualFold(line, "quit") {
		p.Send("Goodbye.")
		p.Conn.Close()
		return
	}

	if rest, ok := cutVerb(line, "create"); ok {
		startAccountCreation(p, rest, deps)
		return
	}

	name := strings.ToLower(line)
	if !validAccountName(name) {
		p.Send("Account names are 3 to 16 letters and digits, starting with a letter.")
		p.Conn.Prompt("Account: ")
		return
	}

	ctx, cancel := storeCtx()
	defer cancel()
	acct, err := deps.Accounts.Load(ctx, name)
	if err != nil {
		deps.Log.Error("account lookup failed", zap.String("account", name), zap.Error(err))
		p.Send("The registry is not answering. Try again in a moment.")
		p.Conn.Prompt("Account: ")
		return
	}
	if acct == nil {
		if deps.Config.Character.AutoCreateAccounts {
			p.Sendf("No account named %q. Creating it.", name)
			startAccountCreation(p, name, deps)
			return
		}
		p.Send("No such account. Type \"create <name>\" to register.")
		p.Conn.Prompt("Account: ")
		return
	}

	p.pendingLogin = acct
	p.passwordTries = 0
	p.State = StateAskPassword
	p.Conn.SuppressEcho(true)
	p.Conn.Prompt("Password: ")
}

func startAccountCreation(p *Player, name string, deps *Deps) {
	name = strings.ToLower(strings.TrimSpace(name))
	if !validAccountName(name) {
		p.Send("Account names are 3 to 16 letters and digits, starting with a letter.")
		p.Conn.Prompt("Account: ")
		return
	}

	ctx, cancel := storeCtx()
	defer cancel()
	acct, err := deps.Accounts.Load(ctx, name)
	if err != nil {
		deps.Log.Error("account lookup failed", zap.String("account", name), zap.Error(err))
		p.Send("The registry is not answering. Try again in a moment.")
		p.Conn.Prompt("Account: ")
		return
	}
	if acct != nil {
		p.Send("That account already exists.")
		p.Conn.Prompt("Account: ")
		return
	}

	p.pendingAccount = name
	p.State = StateNewPassword
	p.Conn.SuppressEcho(true)
	p.Conn.Prompt("New password: ")
}

func loginAskPassword(p *Player, line string, deps *Deps) {
	acct := p.pendingLogin
	if acct == nil || !deps.Accounts.VerifyPassword(acct.PasswordHash, line) {
		p.passwordTries++
		if p.passwordTries >= maxPasswordTries {
			p.Conn.SuppressEcho(false)
			p.Send("Too many attempts.")
			deps.Log.Warn("password attempts exhausted", zap.String("account", accountName(acct)))
			p.Conn.Close()
			return
		}
		p.Send("Wrong password.")
		p.Conn.Prompt("Password: ")
		return
	}

	p.Conn.SuppressEcho(false)
	if acct.Banned {
		p.Send("This account is banned.")
		deps.Log.Info("banned account rejected", zap.String("account", acct.Name))
		p.Conn.Close()
		return
	}
	if other := deps.Players.ByAccount(acct.Name); other != nil && other != p {
		p.Send("That account is already logged in.")
		p.Conn.Close()
		return
	}

	ctx, cancel := storeCtx()
	defer cancel()
	if err := deps.Accounts.Touch(ctx, acct.Name); err != nil {
		deps.Log.Warn("last-login stamp failed", zap.String("account", acct.Name), zap.Error(err))
	}

	p.Account = acct
	p.pendingLogin = nil
	deps.Log.Info("account authenticated", zap.String("account", acct.Name), zap.Uint64("session", p.ID))
	showCharSelect(p, deps)
}

func loginNewPassword(p *Player, line string, deps *Deps) {
	if len(line) < minPasswordLen {
		p.Sendf("Passwords need at least %d characters.", minPasswordLen)
		p.Conn.Prompt("New password: ")
		return
	}
	p.pendingPass = line
	p.State = StateConfirmPassword
	p.Conn.Prompt("Confirm password: ")
}

func loginConfirmPassword(p *Player, line string, deps *Deps) {
	if line != p.pendingPass {
		p.Send("Passwords don't match.")
		p.State = StateNewPassword
		p.Conn.Prompt("New password: ")
		return
	}

	ctx, cancel := storeCtx()
	defer cancel()
	acct, err := deps.Accounts.Create(ctx, p.pendingAccount, p.pendingPass)
	p.pendingPass = ""
	if err != nil {
		deps.Log.Error("account creation failed", zap.String("account", p.pendingAccount), zap.Error(err))
		p.Conn.SuppressEcho(false)
		p.Send("The registry refused that account. Start over.")
		p.State = StateAskAccount
		p.Conn.Prompt("Account: ")
		return
	}

	p.Conn.SuppressEcho(false)
	p.Account = acct
	deps.Log.Info("account created", zap.String("account", acct.Name), zap.Uint64("session", p.ID))
	showCharSelect(p, deps)
}

func showCharSelect(p *Player, deps *Deps) {
	p.State = StateCharSelect

	ctx, cancel := storeCtx()
	defer cancel()
	names, err := deps.Chars.List(ctx, p.Account.Name)
	if err != nil {
		deps.Log.Error("character list failed", zap.String("account", p.Account.Name), zap.Error(err))
	}

	if len(names) == 0 {
		p.Send("You have no characters yet.")
	} else {
		p.Send("Your characters:")
		for _, n := range names {
			p.Send("  " + n)
		}
	}
	p.Send("Enter a character name, or \"create <name>\" to roll a new one.")
	p.Conn.Prompt("Character: ")
}

func loginCharSelect(p *Player, line string, deps *Deps) {
	if line == "" {
		p.Conn.Prompt("Character: ")
		return
	}
	if strings.EqualFold(line, "quit") {
		p.Send("Goodbye.")
		p.Conn.Close()
		return
	}

	if rest, ok := cutVerb(line, "create"); ok {
		startCharCreation(p, rest, deps)
		return
	}

	name := normalizeCharName(line)
	if deps.Players.ByName(name) != nil {
		p.Send("That character is already in the world.")
		p.Conn.Prompt("Character: ")
		return
	}

	ctx, cancel := storeCtx()
	defer cancel()
	rec, err := deps.Chars.Load(ctx, p.Account.Name, name)
	if err != nil {
		deps.Log.Error("character load failed",
			zap.String("account", p.Account.Name), zap.String("character", name), zap.Error(err))
		p.Send("That character won't wake up. Try again in a moment.")
		p.Conn.Prompt("Character: ")
		return
	}
	if rec == nil {
		p.Send("You have no character by that name.")
		p.Conn.Prompt("Character: ")
		return
	}

	e, err := world.DeserializeEntity(deps.World, rec)
	if err != nil {
		deps.Log.Error("character record corrupt",
			zap.String("account", p.Account.Name), zap.String("character", name), zap.Error(err))
		p.Send("That character won't wake up. Try again in a moment.")
		p.Conn.Prompt("Character: ")
		return
	}
	m, ok := e.(*world.Mob)
	if !ok {
		deps.Log.Error("character record is not a mob",
			zap.String("account", p.Account.Name), zap.String("character", name))
		e.Base().Destroy()
		p.Send("That character won't wake up. Try again in a moment.")
		p.Conn.Prompt("Character: ")
		return
	}

	c := world.NewCharacter(name, p.Conn.Send)
	m.SetCharacter(c)
	p.Char = c
	enterWorld(p, deps, false)
}

func startCharCreation(p *Player, raw string, deps *Deps) {
	name, err := validateCharName(raw, deps.Config.Character.MaxNameLength)
	if err != nil {
		p.Send(err.Error())
		p.Conn.Prompt("Character: ")
		return
	}

	ctx, cancel := storeCtx()
	defer cancel()
	taken, lookupErr := deps.Chars.NameTaken(ctx, name)
	if lookupErr != nil {
		deps.Log.Error("name check failed", zap.String("character", name), zap.Error(lookupErr))
		p.Send("The registry is not answering. Try again in a moment.")
		p.Conn.Prompt("Character: ")
		return
	}
	if taken || deps.Players.ByName(name) != nil {
		p.Send("That name is taken.")
		p.Conn.Prompt("Character: ")
		return
	}

	p.pendingName = name
	p.State = StateChooseRace
	p.Send("Choose your race:")
	for _, r := range deps.Races {
		p.Send("  " + r.Name)
	}
	p.Conn.Prompt("Race: ")
}

func loginChooseRace(p *Player, line string, deps *Deps) {
	r := matchArchetype(deps.Races, line)
	if r == nil {
		p.Send("Pick a race from the list.")
		p.Conn.Prompt("Race: ")
		return
	}
	p.pendingRace = r
	p.State = StateChooseJob
	p.Send("Choose your calling:")
	for _, j := range deps.Jobs {
		p.Send("  " + j.Name)
	}
	p.Conn.Prompt("Job: ")
}

func loginChooseJob(p *Player, line string, deps *Deps) {
	j := matchArchetype(deps.Jobs, line)
	if j == nil {
		p.Send("Pick a calling from the list.")
		p.Conn.Prompt("Job: ")
		return
	}

	w := deps.World
	name := p.pendingName
	m := world.NewMob(w, world.MobOptions{
		ObjectOptions: world.ObjectOptions{
			OID:         w.MintOID(),
			Keywords:    strings.ToLower(name),
			Display:     name,
			Description: fmt.Sprintf("%s the %s %s.", name, p.pendingRace.Name, j.Name),
			MapText:     "@",
		},
		Race:  p.pendingRace,
		Job:   j,
		Level: 1,
	})
	m.LearnEligibleArchetypeAbilities()

	c := world.NewCharacter(name, p.Conn.Send)
	m.SetCharacter(c)
	p.Char = c
	p.pendingName = ""
	p.pendingRace = nil
	enterWorld(p, deps, true)
}

// enterWorld moves a freshly attached character into play. Fresh characters
// are saved immediately so a crash cannot orphan the name.
func enterWorld(p *Player, deps *Deps, fresh bool) {
	m := p.Mob()
	p.State = StatePlaying
	deps.Players.Promote(p)

	if m.Room() == nil {
		if deps.StartRoom == nil {
			deps.Log.Error("no start room configured", zap.String("character", p.Char.Name()))
			p.Send("The world has no anchor for you. Try again later.")
			p.Conn.Close()
			return
		}
		m.Move(deps.StartRoom)
	}

	deps.Log.Info("character entered world",
		zap.String("account", p.Account.Name),
		zap.String("character", p.Char.Name()),
		zap.Uint64("session", p.ID))

	if room := m.Room(); room != nil {
		room.Act(m, "{User} appears in a shimmer of light.", world.GroupInfo)
	}
	event.Emit(deps.Bus, event.PlayerEnteredWorld{Char: p.Char})

	p.Sendf("Welcome, %s.", p.Char.Name())
	lookRoom(p, deps)
	CheckRoomAggression(m.Room())
	p.PromptPending = true

	if fresh {
		if err := SavePlayer(p, deps); err != nil {
			deps.Log.Error("initial save failed", zap.String("character", p.Char.Name()), zap.Error(err))
		}
	}
}

// cutVerb strips a leading keyword and returns the remainder.
func cutVerb(line, verb string) (string, bool) {
	if len(line) <= len(verb) || !strings.EqualFold(line[:len(verb)], verb) {
		return "", false
	}
	if line[len(verb)] != ' ' {
		return "", false
	}
	return strings.TrimSpace(line[len(verb):]), true
}

func validAccountName(name string) bool {
	if len(name) < 3 || len(name) > 16 {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// validateCharName enforces the naming rules and returns the canonical form.
func validateCharName(raw string, maxLen int) (string, error) {
	name := strings.TrimSpace(raw)
	if maxLen <= 0 {
		maxLen = 16
	}
	if utf8.RuneCountInString(name) < 2 || utf8.RuneCountInString(name) > maxLen {
		return "", fmt.Errorf("names are 2 to %d letters", maxLen)
	}
	for _, r := range name {
		if !unicode.IsLetter(r) {
			return "", fmt.Errorf("names are letters only")
		}
	}
	return normalizeCharName(name), nil
}

// normalizeCharName canonicalizes to Firstcap form.
func normalizeCharName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

// matchArchetype resolves a menu entry by id or name prefix.
func matchArchetype(list []*world.Archetype, input string) *world.Archetype {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return nil
	}
	for _, a := range list {
		if strings.ToLower(a.ID) == input || strings.ToLower(a.Name) == input {
			return a
		}
	}
	for _, a := range list {
		if strings.HasPrefix(strings.ToLower(a.Name), input) || strings.HasPrefix(strings.ToLower(a.ID), input) {
			return a
		}
	}
	return nil
}

func accountName(a *persist.Account) string {
	if a == nil {
		return ""
	}
	return a.Name
}
