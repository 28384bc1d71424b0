package commands

import (
	"fmt"
	"strings"

	"CinderMUD/internal/game"
)

func moveHandler(dir game.Direction) Handler {
	return func(ctx *Context) {
		moveThrough(ctx, dir)
	}
}

func moveThrough(ctx *Context, dir game.Direction) {
	room := ctx.Char.Room()
	if room == nil {
		ctx.Send("There is nowhere to go.")
		return
	}
	exit := room.Exits[dir]
	if exit == nil {
		ctx.Sendf("You can't go %s.", dir)
		return
	}
	if exit.Closed {
		ctx.Sendf("The way %s is closed.", dir)
		return
	}
	dest, ok := ctx.World.ResolveExit(room, dir)
	if !ok {
		ctx.Sendf("You can't go %s.", dir)
		return
	}
	ctx.World.BroadcastToRoom(room, fmt.Sprintf("%s leaves %s.", ctx.Char.Name, dir), ctx.Session)
	ctx.World.MoveCharacter(ctx.Char, dest)
	ctx.World.BroadcastToRoom(dest, fmt.Sprintf("%s arrives.", ctx.Char.Name), ctx.Session)
	game.LookAt(ctx.World, ctx.Session)
}

var North = Define(Definition{
	Name:        "north",
	Aliases:     []string{"n"},
	Usage:       "north",
	Description: "walk north",
}, moveHandler(game.North))

var South = Define(Definition{
	Name:        "south",
	Aliases:     []string{"s"},
	Usage:       "south",
	Description: "walk south",
}, moveHandler(game.South))

var East = Define(Definition{
	Name:        "east",
	Aliases:     []string{"e"},
	Usage:       "east",
	Description: "walk east",
}, moveHandler(game.East))

var West = Define(Definition{
	Name:        "west",
	Aliases:     []string{"w"},
	Usage:       "west",
	Description: "walk west",
}, moveHandler(game.West))

var Up = Define(Definition{
	Name:        "up",
	Aliases:     []string{"u"},
	Usage:       "up",
	Description: "climb up",
}, moveHandler(game.Up))

var Down = Define(Definition{
	Name:        "down",
	Aliases:     []string{"d"},
	Usage:       "down",
	Description: "climb down",
}, moveHandler(game.Down))

var Go = Define(Definition{
	Name:        "go",
	Usage:       "go <direction>",
	Description: "walk in a direction",
}, func(ctx *Context) {
	dir, ok := game.DirectionFromString(ctx.Arg)
	if !ok {
		ctx.Send("Go where?")
		return
	}
	moveThrough(ctx, dir)
})

var Open = Define(Definition{
	Name:        "open",
	Usage:       "open <direction>",
	Description: "open a door",
}, func(ctx *Context) {
	toggleDoor(ctx, false)
})

var Close = Define(Definition{
	Name:        "close",
	Usage:       "close <direction>",
	Description: "close a door",
}, func(ctx *Context) {
	toggleDoor(ctx, true)
})

func toggleDoor(ctx *Context, closed bool) {
	room := ctx.Char.Room()
	dir, ok := game.DirectionFromString(ctx.Arg)
	if room == nil || !ok || room.Exits[dir] == nil {
		ctx.Send("There is no door there.")
		return
	}
	exit := room.Exits[dir]
	if !exit.Openable {
		ctx.Send("There is no door there.")
		return
	}
	if exit.Locked {
		ctx.Send("It is locked.")
		return
	}
	if exit.Closed == closed {
		if closed {
			ctx.Send("It is already closed.")
		} else {
			ctx.Send("It is already open.")
		}
		return
	}
	exit.Closed = closed
	verb := "open"
	if closed {
		verb = "close"
	}
	ctx.Sendf("You %s the way %s.", verb, dir)
	ctx.World.BroadcastToRoom(room, fmt.Sprintf("%s %ss the way %s.", ctx.Char.Name, verb, dir), ctx.Session)
	// keep the paired exit's door state in step
	if exit.LinkedExit != "" {
		if far, ok := ctx.World.FindRoom(exit.ToArea, exit.ToRoom); ok {
			if farExit := far.Exits[exit.LinkedExit]; farExit != nil {
				farExit.Closed = closed
			}
		}
	}
}

var Enter = Define(Definition{
	Name:        "enter",
	Usage:       "enter <portal>",
	Description: "step through a portal item",
}, func(ctx *Context) {
	room := ctx.Char.Room()
	if room == nil {
		ctx.Send("There is nothing to enter.")
		return
	}
	item, found := room.FindItem(ctx.Arg)
	if !found || !item.HasPortal() {
		ctx.Send("You can't enter that.")
		return
	}
	dest, ok := ctx.World.FindRoom(item.Portal.ToArea, item.Portal.ToRoom)
	if !ok {
		ctx.Send("The portal flickers and fizzles out.")
		return
	}
	leave := item.Portal.LeaveMessage
	if strings.TrimSpace(leave) == "" {
		leave = fmt.Sprintf("%s steps into %s and vanishes.", ctx.Char.Name, item.Name)
	}
	arrive := item.Portal.EnterMessage
	if strings.TrimSpace(arrive) == "" {
		arrive = fmt.Sprintf("%s appears out of thin air.", ctx.Char.Name)
	}
	ctx.World.BroadcastToRoom(room, leave, ctx.Session)
	ctx.World.MoveCharacter(ctx.Char, dest)
	ctx.World.BroadcastToRoom(dest, arrive, ctx.Session)
	ctx.Sendf("You step through %s.", item.Name)
	game.LookAt(ctx.World, ctx.Session)
})
