package commands

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"CinderMUD/internal/game"
)

// Definition describes a single command's metadata. Modes lists the
// session modes the command is available in; Required is the permission
// mask a character must hold to run it.
type Definition struct {
	Name        string
	Aliases     []string
	Usage       string
	Description string
	Modes       []string
	Required    game.Perm
}

// Handler executes a command.
type Handler func(*Context)

// Command couples metadata with the executable handler.
type Command struct {
	Definition
	Handler Handler
}

// Context provides the runtime data available to a command handler.
type Context struct {
	World   *game.World
	Session *game.Session
	Char    *game.Character
	Raw     string
	Arg     string
	Input   string
	Command *Command
}

// Send queues output to the invoking session.
func (ctx *Context) Send(msg string) {
	ctx.Session.Send(msg)
}

// Sendf formats and queues output to the invoking session.
func (ctx *Context) Sendf(format string, args ...any) {
	ctx.Session.Sendf(format, args...)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]*Command)
	ordered    []*Command
)

// Define registers a new command using the provided definition and handler.
// It panics when metadata is incomplete or duplicates an existing command.
func Define(def Definition, handler Handler) *Command {
	if handler == nil {
		panic("commands: handler must not be nil")
	}
	if strings.TrimSpace(def.Name) == "" {
		panic("commands: command must have a name")
	}
	if len(def.Modes) == 0 {
		def.Modes = []string{game.ModeNormal, game.ModeBuild}
	}
	if def.Required == 0 {
		def.Required = game.PermPlayer
	}

	cmd := &Command{Definition: def, Handler: handler}

	registryMu.Lock()
	defer registryMu.Unlock()

	registerName := func(name string) {
		key := strings.ToLower(name)
		if _, exists := registry[key]; exists {
			panic(fmt.Sprintf("commands: duplicate registration for %q", name))
		}
		registry[key] = cmd
	}

	registerName(def.Name)
	for _, alias := range def.Aliases {
		if strings.TrimSpace(alias) == "" {
			continue
		}
		registerName(alias)
	}

	ordered = append(ordered, cmd)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Name < ordered[j].Name
	})

	return cmd
}

// All returns the registered commands sorted by primary name.
func All() []*Command {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]*Command, len(ordered))
	copy(out, ordered)
	return out
}

func (c *Command) availableIn(mode string) bool {
	for _, m := range c.Modes {
		if m == mode {
			return true
		}
	}
	return false
}

// Dispatch parses the input line, looks up the command in the table for
// the session's mode, checks permission, and executes it. Install it as
// the world's dispatcher.
func Dispatch(world *game.World, session *game.Session, mode, line string) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return
	}
	name := strings.ToLower(parts[0])

	registryMu.RLock()
	cmd, ok := registry[name]
	registryMu.RUnlock()
	if !ok || !cmd.availableIn(mode) {
		if ok && mode == game.ModeBattle {
			session.Send("You can't do that in the middle of a fight!")
			return
		}
		session.Send("Unknown command. Type 'help'.")
		return
	}
	if session.Char == nil || !session.Char.Permissions.Has(cmd.Required) {
		session.Send("You don't have permission to do that.")
		return
	}

	arg := strings.TrimSpace(strings.TrimPrefix(line, parts[0]))
	ctx := &Context{
		World:   world,
		Session: session,
		Char:    session.Char,
		Raw:     line,
		Arg:     arg,
		Input:   parts[0],
		Command: cmd,
	}
	cmd.Handler(ctx)
}
