package commands

import (
	"fmt"
	"sort"
	"strings"

	"CinderMUD/internal/game"
)

var Help = Define(Definition{
	Name:        "help",
	Aliases:     []string{"?"},
	Usage:       "help [command]",
	Description: "list commands or show one command's usage",
	Modes:       []string{game.ModeNormal, game.ModeBuild, game.ModeBattle},
}, func(ctx *Context) {
	target := strings.ToLower(strings.TrimSpace(ctx.Arg))
	mode := ctx.Session.Mode.Name()
	if target != "" {
		for _, cmd := range All() {
			if cmd.Name == target {
				ctx.Sendf("%s - %s", cmd.Usage, cmd.Description)
				if len(cmd.Aliases) > 0 {
					ctx.Sendf("Aliases: %s", strings.Join(cmd.Aliases, ", "))
				}
				return
			}
		}
		ctx.Sendf("There is no command named %q.", target)
		return
	}
	names := make([]string, 0)
	for _, cmd := range All() {
		if !cmd.availableIn(mode) {
			continue
		}
		if !ctx.Char.Permissions.Has(cmd.Required) {
			continue
		}
		names = append(names, cmd.Name)
	}
	sort.Strings(names)
	ctx.Send("Available commands:")
	ctx.Send("  " + strings.Join(names, ", "))
})

var Quit = Define(Definition{
	Name:        "quit",
	Usage:       "quit",
	Description: "save and disconnect",
}, func(ctx *Context) {
	ctx.Send("Goodbye.")
	ctx.Session.BeginQuit()
})

var Password = Define(Definition{
	Name:        "password",
	Usage:       "password",
	Description: "change your password",
}, func(ctx *Context) {
	ctx.Session.EnterNested(game.NewPasswordChangeMode())
	ctx.Send("Current password:")
})

var Stats = Define(Definition{
	Name:        "stats",
	Aliases:     []string{"score"},
	Usage:       "stats",
	Description: "show your character sheet",
	Modes:       []string{game.ModeNormal, game.ModeBuild, game.ModeBattle},
}, func(ctx *Context) {
	c := ctx.Char
	ctx.Send(game.Style(c.Name, game.AnsiBold, game.AnsiCyan))
	ctx.Sendf("HP %d/%d  MP %d/%d", c.HP, c.MaxHP, c.MP, c.MaxMP)
	ctx.Sendf("Str %d  Int %d  Dex %d  Spd %d",
		c.Attrs.Strength, c.Attrs.Intellect, c.Attrs.Dexterity, c.Attrs.Speed)
	hit, evade, damage, absorb := c.AttackStats()
	ctx.Sendf("Hit %+d  Evade %+d", hit, evade)
	kinds := make([]string, 0, len(damage))
	for kind := range damage {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		r := damage[kind]
		line := fmt.Sprintf("Damage (%s): %d-%d", kind, r.Min, r.Max)
		if soak := absorb[kind]; soak > 0 {
			line += fmt.Sprintf("  Absorb: %d", soak)
		}
		ctx.Send(line)
	}
})
