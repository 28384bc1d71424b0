package commands

import (
	"fmt"
	"strconv"
	"strings"

	"CinderMUD/internal/game"
)

// editableArea returns the area the builder may edit from where they
// stand. Admins may edit any area; builders only areas listing them.
func editableArea(ctx *Context) (*game.Area, bool) {
	room := ctx.Char.Room()
	if room == nil {
		ctx.Send("You are nowhere.")
		return nil, false
	}
	area := room.Area
	if ctx.Char.Permissions.Has(game.PermAdmin) || area.IsBuilder(ctx.Char.Name) {
		return area, true
	}
	ctx.Sendf("You aren't a builder of %s.", area.Name)
	return nil, false
}

var Build = Define(Definition{
	Name:        "build",
	Usage:       "build",
	Description: "toggle build mode",
	Required:    game.PermBuilder,
}, func(ctx *Context) {
	if ctx.Session.Mode.Name() == game.ModeBuild {
		ctx.Session.SetMode(game.NewNormalMode())
		ctx.Send("Build mode off.")
		return
	}
	ctx.Session.SetMode(game.NewBuildMode())
	ctx.Send("Build mode on. Your words can reshape the world now.")
})

var Dig = Define(Definition{
	Name:        "dig",
	Usage:       "dig <direction> [title]",
	Description: "create a new room and link it",
	Modes:       []string{game.ModeBuild},
	Required:    game.PermBuilder,
}, func(ctx *Context) {
	area, ok := editableArea(ctx)
	if !ok {
		return
	}
	fields := strings.SplitN(strings.TrimSpace(ctx.Arg), " ", 2)
	dir, ok := game.DirectionFromString(fields[0])
	if !ok {
		ctx.Send("Dig which direction?")
		return
	}
	title := "An Unfinished Room"
	if len(fields) == 2 && strings.TrimSpace(fields[1]) != "" {
		title = strings.TrimSpace(fields[1])
	}
	room := ctx.Char.Room()
	dest := area.NewRoom(title)
	if err := game.LinkExits(room, dir, dest); err != nil {
		delete(area.Rooms, dest.ID)
		ctx.Sendf("%v", err)
		return
	}
	ctx.Sendf("You dig %s into %s (%s).", dir, dest.Title, dest.Ref())
})

var Link = Define(Definition{
	Name:        "link",
	Usage:       "link <direction> <area:id>",
	Description: "link an exit pair to an existing room",
	Modes:       []string{game.ModeBuild},
	Required:    game.PermBuilder,
}, func(ctx *Context) {
	if _, ok := editableArea(ctx); !ok {
		return
	}
	fields := strings.Fields(ctx.Arg)
	if len(fields) != 2 {
		ctx.Send("Usage: link <direction> <area:id>")
		return
	}
	dir, ok := game.DirectionFromString(fields[0])
	if !ok {
		ctx.Send("Link which direction?")
		return
	}
	areaName, roomID, err := game.RoomRef(fields[1])
	if err != nil {
		ctx.Sendf("%v", err)
		return
	}
	dest, ok := ctx.World.FindRoom(areaName, roomID)
	if !ok {
		ctx.Sendf("There is no room %s.", fields[1])
		return
	}
	if err := game.LinkExits(ctx.Char.Room(), dir, dest); err != nil {
		ctx.Sendf("%v", err)
		return
	}
	ctx.Sendf("You link %s to %s.", dir, dest.Ref())
})

var Unlink = Define(Definition{
	Name:        "unlink",
	Usage:       "unlink <direction>",
	Description: "remove an exit and its linked pair",
	Modes:       []string{game.ModeBuild},
	Required:    game.PermBuilder,
}, func(ctx *Context) {
	if _, ok := editableArea(ctx); !ok {
		return
	}
	dir, ok := game.DirectionFromString(ctx.Arg)
	if !ok {
		ctx.Send("Unlink which direction?")
		return
	}
	room := ctx.Char.Room()
	if room.Exits[dir] == nil {
		ctx.Sendf("There is no exit %s.", dir)
		return
	}
	ctx.World.UnlinkExit(room, dir)
	ctx.Sendf("You unlink the exit %s.", dir)
})

var Create = Define(Definition{
	Name:        "create",
	Usage:       "create <item|npc|script|area> <name>",
	Description: "create a new prototype, script, or area",
	Modes:       []string{game.ModeBuild},
	Required:    game.PermBuilder,
}, func(ctx *Context) {
	fields := strings.SplitN(strings.TrimSpace(ctx.Arg), " ", 2)
	if len(fields) != 2 || strings.TrimSpace(fields[1]) == "" {
		ctx.Send("Usage: create <item|npc|script|area> <name>")
		return
	}
	name := strings.TrimSpace(fields[1])
	switch strings.ToLower(fields[0]) {
	case "area":
		if !ctx.Char.Permissions.Has(game.PermAdmin) {
			ctx.Send("Only admins create new areas.")
			return
		}
		key := strings.ToLower(strings.Fields(name)[0])
		if _, exists := ctx.World.Areas[key]; exists {
			ctx.Sendf("There is already an area named %s.", key)
			return
		}
		area := game.NewArea(key, name)
		area.AddBuilder(ctx.Char.Name)
		area.NewRoom("The First Room")
		ctx.World.Areas[key] = area
		ctx.Sendf("Area %s created with one room.", key)
	case "item":
		area, ok := editableArea(ctx)
		if !ok {
			return
		}
		proto := area.NewItem(name)
		ctx.Sendf("Item prototype %d (%s) created.", proto.ID, proto.Name)
	case "npc":
		area, ok := editableArea(ctx)
		if !ok {
			return
		}
		proto := area.NewNPC(name)
		ctx.Sendf("NPC prototype %d (%s) created.", proto.ID, proto.Name)
	case "script":
		area, ok := editableArea(ctx)
		if !ok {
			return
		}
		script := area.NewScript(name, "")
		ctx.Sendf("Script %d (%s) created. Use 'edit script %d' to write it.", script.ID, script.Name, script.ID)
	default:
		ctx.Send("Usage: create <item|npc|script|area> <name>")
	}
})

var Set = Define(Definition{
	Name:        "set",
	Usage:       "set <room|area> <attr> <value> | set <item|npc> <id> <attr> <value>",
	Description: "set an attribute on the current room, area, or a prototype",
	Modes:       []string{game.ModeBuild},
	Required:    game.PermBuilder,
}, func(ctx *Context) {
	area, ok := editableArea(ctx)
	if !ok {
		return
	}
	fields := strings.Fields(ctx.Arg)
	if len(fields) < 2 {
		ctx.Send("Set what?")
		return
	}
	kind := strings.ToLower(fields[0])
	var err error
	switch kind {
	case "room":
		if len(fields) < 3 {
			ctx.Send("Usage: set room <attr> <value>")
			return
		}
		err = game.SetRoomAttr(ctx.World, ctx.Char.Room(), fields[1], rest(ctx.Arg, 2))
	case "area":
		if len(fields) < 3 {
			ctx.Send("Usage: set area <attr> <value>")
			return
		}
		err = game.SetAreaAttr(ctx.World, area, fields[1], rest(ctx.Arg, 2))
	case "item", "npc":
		if len(fields) < 4 {
			ctx.Sendf("Usage: set %s <id> <attr> <value>", kind)
			return
		}
		id, convErr := strconv.Atoi(fields[1])
		if convErr != nil {
			ctx.Sendf("%q is not an id.", fields[1])
			return
		}
		if kind == "item" {
			proto, found := area.Items[id]
			if !found {
				ctx.Sendf("There is no item prototype %d.", id)
				return
			}
			err = game.SetItemAttr(ctx.World, proto, fields[2], rest(ctx.Arg, 3))
		} else {
			proto, found := area.NPCs[id]
			if !found {
				ctx.Sendf("There is no npc prototype %d.", id)
				return
			}
			err = game.SetNpcAttr(ctx.World, proto, fields[2], rest(ctx.Arg, 3))
		}
	default:
		ctx.Send("Set what? (room, area, item, npc)")
		return
	}
	if err != nil {
		ctx.Sendf("%v", err)
		return
	}
	ctx.Send("Set.")
})

// rest returns the argument string with the first n fields stripped.
func rest(arg string, n int) string {
	remainder := strings.TrimSpace(arg)
	for i := 0; i < n && remainder != ""; i++ {
		idx := strings.IndexAny(remainder, " \t")
		if idx < 0 {
			return ""
		}
		remainder = strings.TrimSpace(remainder[idx+1:])
	}
	return remainder
}

var Edit = Define(Definition{
	Name:        "edit",
	Usage:       "edit room | edit <item|npc> <id> | edit script <id>",
	Description: "open the line editor on a description or script",
	Modes:       []string{game.ModeBuild},
	Required:    game.PermBuilder,
}, func(ctx *Context) {
	area, ok := editableArea(ctx)
	if !ok {
		return
	}
	fields := strings.Fields(ctx.Arg)
	if len(fields) == 0 {
		ctx.Send("Edit what?")
		return
	}
	open := func(subject string, apply func(string)) {
		mode := game.NewTextEditMode(subject, apply)
		ctx.Session.EnterNested(mode)
		mode.Greet(ctx.Session)
	}
	switch strings.ToLower(fields[0]) {
	case "room":
		room := ctx.Char.Room()
		open("room description", func(text string) {
			room.Description = text
		})
	case "item", "npc", "script":
		if len(fields) != 2 {
			ctx.Sendf("Usage: edit %s <id>", fields[0])
			return
		}
		id, err := strconv.Atoi(fields[1])
		if err != nil {
			ctx.Sendf("%q is not an id.", fields[1])
			return
		}
		switch strings.ToLower(fields[0]) {
		case "item":
			proto, found := area.Items[id]
			if !found {
				ctx.Sendf("There is no item prototype %d.", id)
				return
			}
			open(fmt.Sprintf("description of %s", proto.Name), func(text string) {
				proto.Description = text
			})
		case "npc":
			proto, found := area.NPCs[id]
			if !found {
				ctx.Sendf("There is no npc prototype %d.", id)
				return
			}
			open(fmt.Sprintf("description of %s", proto.Name), func(text string) {
				proto.Description = text
			})
		case "script":
			script, found := area.Scripts[id]
			if !found {
				ctx.Sendf("There is no script %d.", id)
				return
			}
			open(fmt.Sprintf("script %s", script.Name), func(text string) {
				script.Source = text
			})
		}
	default:
		ctx.Send("Edit what? (room, item, npc, script)")
	}
})

var Load = Define(Definition{
	Name:        "load",
	Usage:       "load <item|npc> <id>",
	Description: "instantiate a prototype into the room",
	Modes:       []string{game.ModeBuild},
	Required:    game.PermBuilder,
}, func(ctx *Context) {
	area, ok := editableArea(ctx)
	if !ok {
		return
	}
	fields := strings.Fields(ctx.Arg)
	if len(fields) != 2 {
		ctx.Send("Usage: load <item|npc> <id>")
		return
	}
	id, err := strconv.Atoi(fields[1])
	if err != nil {
		ctx.Sendf("%q is not an id.", fields[1])
		return
	}
	room := ctx.Char.Room()
	switch strings.ToLower(fields[0]) {
	case "item":
		proto, found := area.Items[id]
		if !found {
			ctx.Sendf("There is no item prototype %d.", id)
			return
		}
		room.Items = append(room.Items, proto.Load())
		ctx.Sendf("%s shimmers into existence.", proto.Name)
	case "npc":
		proto, found := area.NPCs[id]
		if !found {
			ctx.Sendf("There is no npc prototype %d.", id)
			return
		}
		npc := proto.Load()
		ctx.World.PlaceNPC(npc, room)
		ctx.Sendf("%s shimmers into existence.", proto.Name)
	default:
		ctx.Send("Usage: load <item|npc> <id>")
	}
})

var SpawnCmd = Define(Definition{
	Name:        "spawn",
	Usage:       "spawn <item|npc> <id> [into <spawn-id>]",
	Description: "add a reset spawn rule to the current room",
	Modes:       []string{game.ModeBuild},
	Required:    game.PermBuilder,
}, func(ctx *Context) {
	area, ok := editableArea(ctx)
	if !ok {
		return
	}
	room := ctx.Char.Room()
	fields := strings.Fields(ctx.Arg)
	if len(fields) == 1 && strings.EqualFold(fields[0], "list") {
		if len(room.Spawns) == 0 {
			ctx.Send("This room has no spawn rules.")
			return
		}
		for _, spawn := range room.Spawns {
			line := fmt.Sprintf("  #%d: %s %d", spawn.ID, spawn.Kind, spawn.ProtoID)
			if spawn.ContainerID != 0 {
				line += fmt.Sprintf(" inside #%d", spawn.ContainerID)
			}
			ctx.Send(line)
		}
		return
	}
	if len(fields) != 2 && !(len(fields) == 4 && strings.EqualFold(fields[2], "into")) {
		ctx.Send("Usage: spawn <item|npc> <id> [into <spawn-id>]")
		return
	}
	id, err := strconv.Atoi(fields[1])
	if err != nil {
		ctx.Sendf("%q is not an id.", fields[1])
		return
	}
	containerID := 0
	if len(fields) == 4 {
		containerID, err = strconv.Atoi(fields[3])
		if err != nil {
			ctx.Sendf("%q is not a spawn id.", fields[3])
			return
		}
	}
	var kind game.SpawnKind
	switch strings.ToLower(fields[0]) {
	case "item":
		if _, found := area.Items[id]; !found {
			ctx.Sendf("There is no item prototype %d.", id)
			return
		}
		kind = game.SpawnItem
	case "npc":
		if _, found := area.NPCs[id]; !found {
			ctx.Sendf("There is no npc prototype %d.", id)
			return
		}
		if containerID != 0 {
			ctx.Send("NPCs can't spawn inside containers.")
			return
		}
		kind = game.SpawnNPC
	default:
		ctx.Send("Usage: spawn <item|npc> <id> [into <spawn-id>]")
		return
	}
	spawn := area.AddSpawn(room, kind, id, containerID)
	ctx.Sendf("Spawn rule #%d added.", spawn.ID)
})

var Destroy = Define(Definition{
	Name:        "destroy",
	Usage:       "destroy <item|npc|script> <id>",
	Description: "delete a prototype or script from the area",
	Modes:       []string{game.ModeBuild},
	Required:    game.PermBuilder,
}, func(ctx *Context) {
	area, ok := editableArea(ctx)
	if !ok {
		return
	}
	fields := strings.Fields(ctx.Arg)
	if len(fields) != 2 {
		ctx.Send("Usage: destroy <item|npc|script> <id>")
		return
	}
	id, err := strconv.Atoi(fields[1])
	if err != nil {
		ctx.Sendf("%q is not an id.", fields[1])
		return
	}
	switch strings.ToLower(fields[0]) {
	case "item":
		if _, found := area.Items[id]; !found {
			ctx.Sendf("There is no item prototype %d.", id)
			return
		}
		delete(area.Items, id)
	case "npc":
		if _, found := area.NPCs[id]; !found {
			ctx.Sendf("There is no npc prototype %d.", id)
			return
		}
		delete(area.NPCs, id)
	case "script":
		if _, found := area.Scripts[id]; !found {
			ctx.Sendf("There is no script %d.", id)
			return
		}
		delete(area.Scripts, id)
	default:
		ctx.Send("Usage: destroy <item|npc|script> <id>")
		return
	}
	ctx.Send("Destroyed. Spawn rules pointing at it will be skipped.")
})

var ResetArea = Define(Definition{
	Name:        "reset",
	Usage:       "reset",
	Description: "run the area's spawn rules now",
	Modes:       []string{game.ModeBuild},
	Required:    game.PermBuilder,
}, func(ctx *Context) {
	area, ok := editableArea(ctx)
	if !ok {
		return
	}
	area.Reset(ctx.World)
	ctx.Sendf("Area %s reset.", area.Name)
})

var Builders = Define(Definition{
	Name:        "builders",
	Usage:       "builders [add|remove <name>]",
	Description: "show or change who may edit this area",
	Modes:       []string{game.ModeBuild},
	Required:    game.PermAdmin,
}, func(ctx *Context) {
	room := ctx.Char.Room()
	if room == nil {
		ctx.Send("You are nowhere.")
		return
	}
	area := room.Area
	fields := strings.Fields(ctx.Arg)
	switch len(fields) {
	case 0:
		names := make([]string, 0, len(area.Builders))
		for name := range area.Builders {
			names = append(names, name)
		}
		if len(names) == 0 {
			ctx.Sendf("%s has no builders.", area.Name)
			return
		}
		ctx.Sendf("Builders of %s: %s", area.Name, strings.Join(names, ", "))
	case 2:
		switch strings.ToLower(fields[0]) {
		case "add":
			area.AddBuilder(fields[1])
			ctx.Sendf("%s may now build in %s.", fields[1], area.Name)
		case "remove":
			area.RemoveBuilder(fields[1])
			ctx.Sendf("%s may no longer build in %s.", fields[1], area.Name)
		default:
			ctx.Send("Usage: builders [add|remove <name>]")
		}
	default:
		ctx.Send("Usage: builders [add|remove <name>]")
	}
})

var Goto = Define(Definition{
	Name:        "goto",
	Usage:       "goto <area:id>",
	Description: "teleport to a room",
	Modes:       []string{game.ModeNormal, game.ModeBuild},
	Required:    game.PermAdmin,
}, func(ctx *Context) {
	areaName, roomID, err := game.RoomRef(ctx.Arg)
	if err != nil {
		ctx.Sendf("%v", err)
		return
	}
	dest, ok := ctx.World.FindRoom(areaName, roomID)
	if !ok {
		ctx.Sendf("There is no room %s:%d.", areaName, roomID)
		return
	}
	old := ctx.Char.Room()
	ctx.World.BroadcastToRoom(old, fmt.Sprintf("%s vanishes in a puff of smoke.", ctx.Char.Name), ctx.Session)
	ctx.World.MoveCharacter(ctx.Char, dest)
	ctx.World.BroadcastToRoom(dest, fmt.Sprintf("%s appears in a puff of smoke.", ctx.Char.Name), ctx.Session)
	game.LookAt(ctx.World, ctx.Session)
})

var Export = Define(Definition{
	Name:        "export",
	Usage:       "export",
	Description: "write this area to an interchange file",
	Modes:       []string{game.ModeBuild},
	Required:    game.PermBuilder,
}, func(ctx *Context) {
	area, ok := editableArea(ctx)
	if !ok {
		return
	}
	path, err := ctx.World.ExportArea(area, ctx.World.Config().AreasPath)
	if err != nil {
		ctx.Sendf("Export failed: %v", err)
		return
	}
	ctx.Sendf("Area written to %s.", path)
})

var Import = Define(Definition{
	Name:        "import",
	Usage:       "import <file>",
	Description: "load an area from an interchange file",
	Modes:       []string{game.ModeBuild},
	Required:    game.PermAdmin,
}, func(ctx *Context) {
	path := strings.TrimSpace(ctx.Arg)
	if path == "" {
		ctx.Send("Import which file?")
		return
	}
	if err := ctx.World.ImportAreaFile(path); err != nil {
		ctx.Sendf("Import failed: %v", err)
		return
	}
	ctx.Send("Area imported.")
})

var SaveAreaCmd = Define(Definition{
	Name:        "save",
	Usage:       "save",
	Description: "persist this area to the database",
	Modes:       []string{game.ModeBuild},
	Required:    game.PermBuilder,
}, func(ctx *Context) {
	area, ok := editableArea(ctx)
	if !ok {
		return
	}
	if err := ctx.World.SaveArea(area); err != nil {
		ctx.Sendf("Save failed: %v", err)
		return
	}
	ctx.Sendf("Area %s saved.", area.Name)
})
