package commands

import (
	"fmt"
	"strings"

	"CinderMUD/internal/game"
)

var Look = Define(Definition{
	Name:        "look",
	Aliases:     []string{"l"},
	Usage:       "look [target]",
	Description: "describe your surroundings or inspect a target",
}, func(ctx *Context) {
	room := ctx.Char.Room()
	if room == nil {
		ctx.Send("You see only void.")
		return
	}

	target := strings.TrimSpace(ctx.Arg)
	if target == "" {
		game.LookAt(ctx.World, ctx.Session)
		return
	}

	if npc, found := room.FindNPC(target); found {
		desc := strings.TrimSpace(npc.Proto.Description)
		if desc == "" {
			desc = fmt.Sprintf("%s looks unremarkable.", npc.Char.Name)
		}
		ctx.Send(game.WrapText(desc, ctx.Session.Width()))
		return
	}
	if item, found := room.FindItem(target); found {
		ctx.Send(describeItem(item, ctx.Session.Width()))
		return
	}
	if item, found := ctx.Char.FindCarried(target); found {
		ctx.Send(describeItem(item, ctx.Session.Width()))
		return
	}
	if dir, ok := game.DirectionFromString(target); ok {
		if dest, found := ctx.World.ResolveExit(room, dir); found {
			ctx.Sendf("Looking %s you glimpse %s.", dir, game.Style(dest.Title, game.AnsiBold, game.AnsiCyan))
			return
		}
	}
	ctx.Send("You don't see that here.")
})

func describeItem(item *game.ItemInstance, width int) string {
	desc := strings.TrimSpace(item.Description)
	if desc == "" {
		desc = "You see nothing special."
	}
	out := game.WrapText(desc, width)
	if item.HasContainer() {
		if len(item.Container.Items) == 0 {
			out += "\nIt is empty."
		} else {
			names := make([]string, len(item.Container.Items))
			for i, held := range item.Container.Items {
				names[i] = held.Name
			}
			out += "\nIt contains: " + strings.Join(names, ", ")
		}
	}
	return out
}

var Who = Define(Definition{
	Name:        "who",
	Usage:       "who",
	Description: "list connected players",
}, func(ctx *Context) {
	names := ctx.World.OnlineNames()
	ctx.Sendf("%d players online:", len(names))
	for _, name := range names {
		ctx.Sendf("  %s", game.HighlightName(name))
	}
})
