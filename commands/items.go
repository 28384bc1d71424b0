package commands

import (
	"fmt"
	"strings"

	"CinderMUD/internal/game"
)

var Get = Define(Definition{
	Name:        "get",
	Aliases:     []string{"take"},
	Usage:       "get <item> [container]",
	Description: "pick up an item, or take one out of a container",
}, func(ctx *Context) {
	room := ctx.Char.Room()
	if room == nil {
		ctx.Send("There is nothing here.")
		return
	}
	fields := strings.Fields(ctx.Arg)
	switch len(fields) {
	case 1:
		item, found := room.FindItem(fields[0])
		if !found {
			ctx.Send("You don't see that here.")
			return
		}
		room.RemoveItem(item)
		ctx.Char.CarryItem(item)
		ctx.Sendf("You pick up %s.", item.Name)
		ctx.World.BroadcastToRoom(room, fmt.Sprintf("%s picks up %s.", ctx.Char.Name, item.Name), ctx.Session)
	case 2:
		container, found := room.FindItem(fields[1])
		if !found {
			container, found = ctx.Char.FindCarried(fields[1])
		}
		if !found || !container.HasContainer() {
			ctx.Send("There is no such container here.")
			return
		}
		for _, held := range container.Container.Items {
			if strings.HasPrefix(strings.ToLower(held.Name), strings.ToLower(fields[0])) {
				container.TakeOut(held)
				ctx.Char.CarryItem(held)
				ctx.Sendf("You take %s out of %s.", held.Name, container.Name)
				return
			}
		}
		ctx.Sendf("There is no %s in %s.", fields[0], container.Name)
	default:
		ctx.Send("Get what?")
	}
})

var Put = Define(Definition{
	Name:        "put",
	Usage:       "put <item> <container>",
	Description: "put a carried item into a container",
}, func(ctx *Context) {
	fields := strings.Fields(ctx.Arg)
	if len(fields) != 2 {
		ctx.Send("Put what where?")
		return
	}
	item, found := ctx.Char.FindCarried(fields[0])
	if !found {
		ctx.Send("You aren't carrying that.")
		return
	}
	room := ctx.Char.Room()
	container, found := ctx.Char.FindCarried(fields[1])
	if !found && room != nil {
		container, found = room.FindItem(fields[1])
	}
	if !found {
		ctx.Send("There is no such container here.")
		return
	}
	if container == item {
		ctx.Send("You can't put something inside itself.")
		return
	}
	if err := container.PutInside(item); err != nil {
		ctx.Sendf("%v", err)
		return
	}
	ctx.Char.RemoveItem(item)
	ctx.Sendf("You put %s into %s.", item.Name, container.Name)
})

var Drop = Define(Definition{
	Name:        "drop",
	Usage:       "drop <item>",
	Description: "drop a carried item",
}, func(ctx *Context) {
	item, found := ctx.Char.FindCarried(ctx.Arg)
	if !found {
		ctx.Send("You aren't carrying that.")
		return
	}
	room := ctx.Char.Room()
	if room == nil {
		ctx.Send("There is nowhere to drop it.")
		return
	}
	ctx.Char.RemoveItem(item)
	room.Items = append(room.Items, item)
	ctx.Sendf("You drop %s.", item.Name)
	ctx.World.BroadcastToRoom(room, fmt.Sprintf("%s drops %s.", ctx.Char.Name, item.Name), ctx.Session)
})

var Inventory = Define(Definition{
	Name:        "inventory",
	Aliases:     []string{"i", "inv"},
	Usage:       "inventory",
	Description: "list what you carry and wear",
	Modes:       []string{game.ModeNormal, game.ModeBuild, game.ModeBattle},
}, func(ctx *Context) {
	if len(ctx.Char.Inventory) == 0 {
		ctx.Send("You aren't carrying anything.")
	} else {
		ctx.Send("You are carrying:")
		for _, item := range ctx.Char.Inventory {
			ctx.Sendf("  %s", item.Name)
		}
	}
	worn := false
	for _, slot := range []game.EquipSlot{game.SlotHead, game.SlotBody, game.SlotHands, game.SlotFeet, game.SlotWield} {
		if item := ctx.Char.Equipped[slot]; item != nil {
			if !worn {
				ctx.Send("You are wearing:")
				worn = true
			}
			ctx.Sendf("  [%s] %s", slot, item.Name)
		}
	}
})

var Wear = Define(Definition{
	Name:        "wear",
	Aliases:     []string{"wield"},
	Usage:       "wear <item>",
	Description: "equip a carried item",
}, func(ctx *Context) {
	item, found := ctx.Char.FindCarried(ctx.Arg)
	if !found {
		ctx.Send("You aren't carrying that.")
		return
	}
	if err := ctx.Char.Equip(item); err != nil {
		ctx.Sendf("%v", err)
		return
	}
	ctx.Sendf("You equip %s.", item.Name)
})

var Remove = Define(Definition{
	Name:        "remove",
	Usage:       "remove <item>",
	Description: "take off an equipped item",
}, func(ctx *Context) {
	target := strings.ToLower(strings.TrimSpace(ctx.Arg))
	if target == "" {
		ctx.Send("Remove what?")
		return
	}
	for _, item := range ctx.Char.Equipped {
		if item != nil && strings.HasPrefix(strings.ToLower(item.Name), target) {
			if err := ctx.Char.Unequip(item); err != nil {
				ctx.Sendf("%v", err)
				return
			}
			ctx.Sendf("You remove %s.", item.Name)
			return
		}
	}
	ctx.Send("You aren't wearing that.")
})

var Eat = Define(Definition{
	Name:        "eat",
	Usage:       "eat <item>",
	Description: "eat a carried food item",
}, func(ctx *Context) {
	item, found := ctx.Char.FindCarried(ctx.Arg)
	if !found {
		ctx.Send("You aren't carrying that.")
		return
	}
	if !item.HasFood() {
		ctx.Sendf("You can't eat %s.", item.Name)
		return
	}
	ctx.Char.RemoveItem(item)
	ctx.Char.HP += item.Food.Nourishment
	if ctx.Char.HP > ctx.Char.MaxHP {
		ctx.Char.HP = ctx.Char.MaxHP
	}
	msg := item.Food.EatMessage
	if strings.TrimSpace(msg) == "" {
		msg = fmt.Sprintf("You eat %s.", item.Name)
	}
	ctx.Send(msg)
})

var Sit = Define(Definition{
	Name:        "sit",
	Usage:       "sit [furniture]",
	Description: "sit down, optionally on furniture",
}, func(ctx *Context) {
	room := ctx.Char.Room()
	target := strings.TrimSpace(ctx.Arg)
	if target == "" || room == nil {
		ctx.Send("You sit down on the ground.")
		return
	}
	item, found := room.FindItem(target)
	if !found || !item.HasFurniture() {
		ctx.Send("You can't sit on that.")
		return
	}
	if item.Furniture.Capacity > 0 && len(item.Furniture.Sitters) >= item.Furniture.Capacity {
		ctx.Sendf("%s is full.", item.Name)
		return
	}
	for _, sitter := range item.Furniture.Sitters {
		if sitter == ctx.Char.Name {
			ctx.Sendf("You are already sitting on %s.", item.Name)
			return
		}
	}
	item.Furniture.Sitters = append(item.Furniture.Sitters, ctx.Char.Name)
	ctx.Sendf("You sit down on %s.", item.Name)
	ctx.World.BroadcastToRoom(room, fmt.Sprintf("%s sits down on %s.", ctx.Char.Name, item.Name), ctx.Session)
})

var Stand = Define(Definition{
	Name:        "stand",
	Usage:       "stand",
	Description: "stand up",
}, func(ctx *Context) {
	room := ctx.Char.Room()
	if room != nil {
		for _, item := range room.Items {
			if !item.HasFurniture() {
				continue
			}
			for i, sitter := range item.Furniture.Sitters {
				if sitter == ctx.Char.Name {
					item.Furniture.Sitters = append(item.Furniture.Sitters[:i], item.Furniture.Sitters[i+1:]...)
					ctx.Sendf("You stand up from %s.", item.Name)
					return
				}
			}
		}
	}
	ctx.Send("You stand up.")
})
