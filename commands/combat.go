package commands

import (
	"fmt"

	"CinderMUD/internal/game"
)

var Attack = Define(Definition{
	Name:        "attack",
	Aliases:     []string{"kill"},
	Usage:       "attack <target>",
	Description: "start or continue a fight",
	Modes:       []string{game.ModeNormal, game.ModeBuild, game.ModeBattle},
}, func(ctx *Context) {
	room := ctx.Char.Room()
	if room == nil {
		ctx.Send("There is nothing to fight here.")
		return
	}
	var target *game.Character
	if npc, found := room.FindNPC(ctx.Arg); found {
		target = npc.Char
	} else if other := ctx.World.FindSessionByName(ctx.Arg); other != nil && other.Char != nil && other.Char.Room() == room {
		target = other.Char
	}
	if target == nil {
		ctx.Send("You don't see them here.")
		return
	}
	if target == ctx.Char {
		ctx.Send("Fighting yourself would solve nothing.")
		return
	}
	if ctx.Char.Battle != nil {
		// already fighting: just retarget
		ctx.Char.NextAction = &game.BattleAction{Kind: game.ActionAttack, Cost: 1, Target: target}
		ctx.Sendf("You turn on %s!", target.Name)
		return
	}
	ctx.World.StartBattle(ctx.Char, target)
	ctx.Sendf("You attack %s!", target.Name)
	target.Sendf("%s attacks you!", ctx.Char.Name)
	ctx.World.BroadcastToRoom(room, fmt.Sprintf("%s attacks %s!", ctx.Char.Name, target.Name), ctx.Session)
})

var Flee = Define(Definition{
	Name:        "flee",
	Usage:       "flee",
	Description: "try to escape the fight",
	Modes:       []string{game.ModeBattle},
}, func(ctx *Context) {
	if ctx.Char.Battle == nil {
		ctx.Send("You aren't fighting anyone.")
		return
	}
	ctx.Char.NextAction = &game.BattleAction{Kind: game.ActionFlee, Cost: 1}
	ctx.Send("You look for a way out!")
})
