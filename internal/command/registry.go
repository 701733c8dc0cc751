package command

import (
	"strings"

	"go.uber.org/zap"
)

// Handler executes one parsed command for a playing character.
type Handler func(p *Player, arg string, deps *Deps)

// Command is one registered verb with optional aliases.
type Command struct {
	Name    string
	Aliases []string
	Handler Handler
}

// Registry resolves typed verbs to handlers. Exact matches on names and
// aliases win; otherwise the first command in registration order whose name
// starts with the input is used, so "n" walks north and "sc" shows the score.
type Registry struct {
	exact   map[string]*Command
	ordered []*Command
}

func NewRegistry() *Registry {
	return &Registry{exact: make(map[string]*Command)}
}

// Register adds a command. Later registrations lose prefix ties.
func (r *Registry) Register(cmd *Command) {
	r.ordered = append(r.ordered, cmd)
	r.exact[cmd.Name] = cmd
	for _, a := range cmd.Aliases {
		r.exact[a] = cmd
	}
}

// Resolve finds the command for a typed verb, nil if nothing matches.
func (r *Registry) Resolve(verb string) *Command {
	verb = strings.ToLower(verb)
	if verb == "" {
		return nil
	}
	if cmd, ok := r.exact[verb]; ok {
		return cmd
	}
	for _, cmd := range r.ordered {
		if strings.HasPrefix(cmd.Name, verb) {
			return cmd
		}
	}
	return nil
}

// RegisterAll wires every command. Registration order decides prefix
// matching, so movement comes first and look beats list on bare "l".
func RegisterAll(r *Registry) {
	r.Register(&Command{Name: "look", Handler: HandleLook})
	r.Register(&Command{Name: "north", Aliases: []string{"n"}, Handler: walk("north")})
	r.Register(&Command{Name: "east", Aliases: []string{"e"}, Handler: walk("east")})
	r.Register(&Command{Name: "south", Aliases: []string{"s"}, Handler: walk("south")})
	r.Register(&Command{Name: "west", Aliases: []string{"w"}, Handler: walk("west")})
	r.Register(&Command{Name: "up", Aliases: []string{"u"}, Handler: walk("up")})
	r.Register(&Command{Name: "down", Aliases: []string{"d"}, Handler: walk("down")})
	r.Register(&Command{Name: "northeast", Aliases: []string{"ne"}, Handler: walk("northeast")})
	r.Register(&Command{Name: "northwest", Aliases: []string{"nw"}, Handler: walk("northwest")})
	r.Register(&Command{Name: "southeast", Aliases: []string{"se"}, Handler: walk("southeast")})
	r.Register(&Command{Name: "southwest", Aliases: []string{"sw"}, Handler: walk("southwest")})
	r.Register(&Command{Name: "go", Handler: HandleGo})
	r.Register(&Command{Name: "get", Aliases: []string{"take"}, Handler: HandleGet})
	r.Register(&Command{Name: "drop", Handler: HandleDrop})
	r.Register(&Command{Name: "put", Handler: HandlePut})
	r.Register(&Command{Name: "wear", Handler: HandleWear})
	r.Register(&Command{Name: "wield", Handler: HandleWield})
	r.Register(&Command{Name: "remove", Handler: HandleRemove})
	r.Register(&Command{Name: "kill", Aliases: []string{"attack"}, Handler: HandleKill})
	r.Register(&Command{Name: "flee", Handler: HandleFlee})
	r.Register(&Command{Name: "cast", Handler: HandleCast})
	r.Register(&Command{Name: "inventory", Handler: HandleInventory})
	r.Register(&Command{Name: "equipment", Handler: HandleEquipment})
	r.Register(&Command{Name: "score", Handler: HandleScore})
	r.Register(&Command{Name: "abilities", Handler: HandleAbilities})
	r.Register(&Command{Name: "map", Handler: HandleMap})
	r.Register(&Command{Name: "say", Handler: HandleSay})
	r.Register(&Command{Name: "shout", Handler: HandleShout})
	r.Register(&Command{Name: "list", Handler: HandleList})
	r.Register(&Command{Name: "buy", Handler: HandleBuy})
	r.Register(&Command{Name: "sell", Handler: HandleSell})
	r.Register(&Command{Name: "who", Handler: HandleWho})
	r.Register(&Command{Name: "save", Handler: HandleSave})
	r.Register(&Command{Name: "quit", Handler: HandleQuit})
}

// HandleLine processes one line of input from a session, routing through the
// login flow until the player is in the world.
func HandleLine(p *Player, line string, deps *Deps) {
	line = strings.TrimSpace(line)
	if p.State != StatePlaying {
		HandleLogin(p, line, deps)
		return
	}
	if line == "" {
		p.PromptPending = true
		return
	}

	verb, arg := splitCommand(line)
	cmd := deps.Commands.Resolve(verb)
	if cmd == nil {
		p.Send("Huh?")
		p.PromptPending = true
		return
	}

	cmd.Handler(p, arg, deps)
	p.PromptPending = true
	if p.Char != nil {
		p.Char.MarkDirty()
	}

	if deps.Log != nil {
		deps.Log.Debug("command handled",
			zap.String("player", p.Name()),
			zap.String("verb", cmd.Name))
	}
}

// splitCommand separates the verb from its argument text.
func splitCommand(line string) (string, string) {
	if i := strings.IndexByte(line, ' '); i >= 0 {
		return line[:i], strings.TrimSpace(line[i+1:])
	}
	return line, ""
}
