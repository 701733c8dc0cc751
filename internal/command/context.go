package command

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gridmud/server/internal/config"
	"github.com/gridmud/server/internal/core/event"
	"github.com/gridmud/server/internal/persist"
	"github.com/gridmud/server/internal/world"
)

// storeTimeout bounds one repository call made from the game loop.
const storeTimeout = 5 * time.Second

// storeCtx builds the per-call context for repository access.
func storeCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storeTimeout)
}

// Conn is the slice of a network session the command layer drives. All
// methods are game-loop safe.
type Conn interface {
	Send(text string, group world.MessageGroup)
	Prompt(p string)
	SuppressEcho(on bool)
	Color() bool
	Close()
	IsClosed() bool
}

// AccountStore is the slice of the persistence layer the login flow needs.
type AccountStore interface {
	// Load returns nil, nil for unknown accounts.
	Load(ctx context.Context, name string) (*persist.Account, error)
	Create(ctx context.Context, name, password string) (*persist.Account, error)
	VerifyPassword(hash, password string) bool
	// Touch stamps the last-login time.
	Touch(ctx context.Context, name string) error
}

// CharacterStore loads and saves player bodies as serialized records.
type CharacterStore interface {
	List(ctx context.Context, account string) ([]string, error)
	// Load returns nil, nil when the account has no character by that name.
	Load(ctx context.Context, account, name string) (world.Record, error)
	// NameTaken checks the name across all accounts.
	NameTaken(ctx context.Context, name string) (bool, error)
	Save(ctx context.Context, account, name string, rec world.Record) error
}

// Deps holds shared dependencies injected into all command handlers.
type Deps struct {
	World    *world.World
	Players  *Players
	Commands *Registry
	Accounts AccountStore
	Chars    CharacterStore
	Bus      *event.Bus
	Config   *config.Config
	Log      *zap.Logger

	// Races and Jobs are the character-creation menus, in data-file order.
	Races []*world.Archetype
	Jobs  []*world.Archetype

	// StartRoom receives fresh characters and saves whose room is gone.
	StartRoom *world.Room
}

// State tracks a session through login into play.
type State uint8

const (
	StateAskAccount State = iota
	StateAskPassword
	StateNewPassword
	StateConfirmPassword
	StateCharSelect
	StateChooseRace
	StateChooseJob
	StatePlaying
)

// Player is one connected session's progress through login and play.
// Accessed only from the game loop goroutine - no locks needed.
type Player struct {
	ID    uint64
	Conn  Conn
	State State

	Account *persist.Account
	Char    *world.Character

	// PromptPending forces a prompt this tick even without output.
	PromptPending bool

	// Login scratch space.
	pendingAccount string
	pendingLogin   *persist.Account
	pendingPass    string
	pendingName    string
	pendingRace    *world.Archetype
	passwordTries  int
}

// NewPlayer wraps a freshly accepted session.
func NewPlayer(id uint64, conn Conn) *Player {
	return &Player{ID: id, Conn: conn, State: StateAskAccount}
}

// Mob returns the controlled body, nil before a character enters the world.
func (p *Player) Mob() *world.Mob {
	if p.Char == nil {
		return nil
	}
	return p.Char.Mob()
}

// Name returns the character name, or the account name during login.
func (p *Player) Name() string {
	if p.Char != nil {
		return p.Char.Name()
	}
	if p.Account != nil {
		return p.Account.Name
	}
	return ""
}

// Send delivers plain informational text.
func (p *Player) Send(text string) {
	p.Conn.Send(text, world.GroupInfo)
}

// Sendf formats and delivers plain informational text.
func (p *Player) Sendf(format string, args ...any) {
	p.Conn.Send(fmt.Sprintf(format, args...), world.GroupInfo)
}

// PromptText renders the in-world input prompt.
func (p *Player) PromptText() string {
	m := p.Mob()
	if m == nil {
		return "> "
	}
	return fmt.Sprintf("[%dh %dm] ", m.Health(), m.Mana())
}

// Players tracks connected sessions. In-world characters are additionally
// indexed by name.
type Players struct {
	bySession map[uint64]*Player
	byName    map[string]*Player
}

func NewPlayers() *Players {
	return &Players{
		bySession: make(map[uint64]*Player),
		byName:    make(map[string]*Player),
	}
}

// Add registers a session that just connected.
func (ps *Players) Add(p *Player) {
	ps.bySession[p.ID] = p
}

// Promote indexes a player by character name once one is attached.
func (ps *Players) Promote(p *Player) {
	if p.Char != nil {
		ps.byName[strings.ToLower(p.Char.Name())] = p
	}
}

// Remove drops a session from both indexes and returns it, nil if unknown.
func (ps *Players) Remove(sessionID uint64) *Player {
	p := ps.bySession[sessionID]
	if p == nil {
		return nil
	}
	delete(ps.bySession, sessionID)
	if p.Char != nil {
		name := strings.ToLower(p.Char.Name())
		if ps.byName[name] == p {
			delete(ps.byName, name)
		}
	}
	return p
}

// BySession finds a player by session id, nil if unknown.
func (ps *Players) BySession(id uint64) *Player {
	return ps.bySession[id]
}

// ByName finds an in-world player by character name, nil if absent.
func (ps *Players) ByName(name string) *Player {
	return ps.byName[strings.ToLower(name)]
}

// ByAccount finds any connected player logged into the account.
func (ps *Players) ByAccount(name string) *Player {
	for _, p := range ps.bySession {
		if p.Account != nil && p.Account.Name == name {
			return p
		}
	}
	return nil
}

// InWorld lists playing characters sorted by name.
func (ps *Players) InWorld() []*Player {
	var out []*Player
	for _, p := range ps.bySession {
		if p.State == StatePlaying && p.Char != nil {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Char.Name() < out[j].Char.Name()
	})
	return out
}

// All lists every connected session in id order.
func (ps *Players) All() []*Player {
	out := make([]*Player, 0, len(ps.bySession))
	for _, p := range ps.bySession {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count reports connected sessions.
func (ps *Players) Count() int { return len(ps.bySession) }
