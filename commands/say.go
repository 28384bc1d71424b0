package commands

import (
	"fmt"
	"strings"

	"CinderMUD/internal/game"
)

var Say = Define(Definition{
	Name:        "say",
	Usage:       "say <message>",
	Description: "speak to the room",
	Modes:       []string{game.ModeNormal, game.ModeBuild, game.ModeBattle},
}, func(ctx *Context) {
	msg := strings.TrimSpace(ctx.Arg)
	if msg == "" {
		ctx.Send("Say what?")
		return
	}
	room := ctx.Char.Room()
	line := fmt.Sprintf("%s says, \"%s\"", game.HighlightName(ctx.Char.Name), msg)
	for _, name := range room.OccupantNames() {
		other := room.Occupants[name]
		if other == nil || other == ctx.Session || other.Char == nil {
			continue
		}
		if other.Char.ChannelEnabled(game.ChannelSay) {
			other.Send(line)
		}
	}
	ctx.Sendf("You say, \"%s\"", msg)
	ctx.World.HearSay(room, ctx.Char, msg)
})

var Emote = Define(Definition{
	Name:        "emote",
	Aliases:     []string{"me"},
	Usage:       "emote <action>",
	Description: "perform a visible action",
}, func(ctx *Context) {
	action := strings.TrimSpace(ctx.Arg)
	if action == "" {
		ctx.Send("Emote what?")
		return
	}
	room := ctx.Char.Room()
	line := fmt.Sprintf("%s %s", game.HighlightName(ctx.Char.Name), action)
	for _, name := range room.OccupantNames() {
		other := room.Occupants[name]
		if other == nil || other == ctx.Session || other.Char == nil {
			continue
		}
		if other.Char.ChannelEnabled(game.ChannelEmote) {
			other.Send(line)
		}
	}
	ctx.Sendf("%s %s", ctx.Char.Name, action)
})

var Chat = Define(Definition{
	Name:        "chat",
	Usage:       "chat <message>",
	Description: "talk on the world-wide chat channel",
}, func(ctx *Context) {
	msg := strings.TrimSpace(ctx.Arg)
	if msg == "" {
		ctx.Send("Chat what?")
		return
	}
	if !ctx.Char.ChannelEnabled(game.ChannelChat) {
		ctx.Char.SetChannel(game.ChannelChat, true)
		ctx.Send("Your chat channel has been turned on.")
	}
	line := fmt.Sprintf("[chat] %s: %s", game.HighlightName(ctx.Char.Name), msg)
	ctx.World.BroadcastChannel(game.ChannelChat, ctx.Char, line)
	ctx.Sendf("[chat] You: %s", msg)
})

var Tell = Define(Definition{
	Name:        "tell",
	Usage:       "tell <player> <message>",
	Description: "send a private message",
}, func(ctx *Context) {
	fields := strings.SplitN(strings.TrimSpace(ctx.Arg), " ", 2)
	if len(fields) < 2 {
		ctx.Send("Tell whom what?")
		return
	}
	target := ctx.World.FindSessionByName(fields[0])
	if target == nil || target.Char == nil {
		ctx.Sendf("%s isn't here.", fields[0])
		return
	}
	if target == ctx.Session {
		ctx.Send("You mutter to yourself.")
		return
	}
	if !target.Char.ChannelEnabled(game.ChannelTell) {
		ctx.Sendf("%s isn't listening to tells.", target.Char.Name)
		return
	}
	msg := fields[1]
	target.Sendf("%s tells you, \"%s\"", game.HighlightName(ctx.Char.Name), msg)
	ctx.Sendf("You tell %s, \"%s\"", target.Char.Name, msg)
})

var Channel = Define(Definition{
	Name:        "channel",
	Usage:       "channel <name> <on|off>",
	Description: "toggle a communication channel",
}, func(ctx *Context) {
	fields := strings.Fields(ctx.Arg)
	if len(fields) == 0 {
		for _, ch := range game.AllChannels() {
			state := "on"
			if !ctx.Char.ChannelEnabled(ch) {
				state = "off"
			}
			ctx.Sendf("  %s: %s", ch, state)
		}
		return
	}
	if len(fields) != 2 {
		ctx.Send("Usage: channel <name> <on|off>")
		return
	}
	ch, ok := game.ChannelFromString(fields[0])
	if !ok {
		ctx.Sendf("There is no channel named %q.", fields[0])
		return
	}
	switch strings.ToLower(fields[1]) {
	case "on":
		ctx.Char.SetChannel(ch, true)
		ctx.Sendf("Your %s channel has been turned on.", ch)
	case "off":
		ctx.Char.SetChannel(ch, false)
		ctx.Sendf("Your %s channel has been turned off.", ch)
	default:
		ctx.Send("Usage: channel <name> <on|off>")
	}
})
