package game

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// NpcScriptContext is the API surface handed to NPC behaviour scripts.
type NpcScriptContext struct {
	world   *World
	room    *Room
	npc     *NPC
	Speaker string
	Message string
}

// Say broadcasts speech from the NPC to its room.
func (ctx *NpcScriptContext) Say(text string) {
	if ctx == nil || ctx.world == nil {
		return
	}
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return
	}
	ctx.world.BroadcastToRoom(ctx.room, fmt.Sprintf("%s says, \"%s\"", ctx.npc.Char.Name, cleaned), nil)
}

// Emote broadcasts an action from the NPC to its room.
func (ctx *NpcScriptContext) Emote(action string) {
	if ctx == nil || ctx.world == nil {
		return
	}
	cleaned := strings.TrimSpace(action)
	if cleaned == "" {
		return
	}
	ctx.world.BroadcastToRoom(ctx.room, fmt.Sprintf("%s %s", ctx.npc.Char.Name, cleaned), nil)
}

type scriptEntry struct {
	script *compiledScript
	err    error
}

type compiledScript struct {
	onTick func(map[string]any)
	onHear func(map[string]any)
}

// scriptEngine compiles and caches NPC behaviour scripts by source hash.
type scriptEngine struct {
	mu      sync.RWMutex
	scripts map[string]*scriptEntry
}

func newScriptEngine() *scriptEngine {
	return &scriptEngine{scripts: make(map[string]*scriptEntry)}
}

func (e *scriptEngine) callOnTick(w *World, room *Room, npc *NPC, script *Script) {
	compiled, err := e.scriptFor(script.Source)
	if err != nil {
		log.Printf("npc script %s/%d failed to load: %v", script.AreaName, script.ID, err)
		return
	}
	if compiled == nil || compiled.onTick == nil {
		return
	}
	ctx := &NpcScriptContext{world: w, room: room, npc: npc}
	e.invoke(script.Name, "OnTick", func() {
		compiled.onTick(e.payload(ctx))
	})
}

func (e *scriptEngine) callOnHear(w *World, room *Room, npc *NPC, script *Script, speaker, message string) {
	compiled, err := e.scriptFor(script.Source)
	if err != nil {
		log.Printf("npc script %s/%d failed to load: %v", script.AreaName, script.ID, err)
		return
	}
	if compiled == nil || compiled.onHear == nil {
		return
	}
	ctx := &NpcScriptContext{world: w, room: room, npc: npc, Speaker: speaker, Message: message}
	e.invoke(script.Name, "OnHear", func() {
		compiled.onHear(e.payload(ctx))
	})
}

func (e *scriptEngine) invoke(name, hook string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("script %s %s panic: %v", name, hook, r)
		}
	}()
	fn()
}

func (e *scriptEngine) payload(ctx *NpcScriptContext) map[string]any {
	payload := map[string]any{
		"say": func(text string) {
			ctx.Say(text)
		},
		"emote": func(action string) {
			ctx.Emote(action)
		},
		"npc":     ctx.npc.Char.Name,
		"room":    ctx.room.Ref(),
		"speaker": ctx.Speaker,
	}
	if strings.TrimSpace(ctx.Message) != "" {
		payload["message"] = ctx.Message
	}
	return payload
}

func (e *scriptEngine) scriptFor(source string) (*compiledScript, error) {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return nil, nil
	}
	key := hashScript(trimmed)
	e.mu.RLock()
	entry, ok := e.scripts[key]
	e.mu.RUnlock()
	if ok {
		return entry.script, entry.err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if entry, ok := e.scripts[key]; ok {
		return entry.script, entry.err
	}
	script, err := e.compile(trimmed)
	e.scripts[key] = &scriptEntry{script: script, err: err}
	return script, err
}

func (e *scriptEngine) compile(source string) (*compiledScript, error) {
	interpreter := interp.New(interp.Options{})
	interpreter.Use(stdlib.Symbols)
	if _, err := interpreter.Eval(source); err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	compiled := &compiledScript{}
	if value, err := interpreter.Eval("OnTick"); err == nil {
		fn, ok := value.Interface().(func(map[string]any))
		if !ok {
			return nil, fmt.Errorf("OnTick has unexpected type %T", value.Interface())
		}
		compiled.onTick = fn
	} else if !isUndefinedSymbol(err) {
		return nil, fmt.Errorf("OnTick: %w", err)
	}
	if value, err := interpreter.Eval("OnHear"); err == nil {
		fn, ok := value.Interface().(func(map[string]any))
		if !ok {
			return nil, fmt.Errorf("OnHear has unexpected type %T", value.Interface())
		}
		compiled.onHear = fn
	} else if !isUndefinedSymbol(err) {
		return nil, fmt.Errorf("OnHear: %w", err)
	}
	return compiled, nil
}

func hashScript(src string) string {
	sum := sha1.Sum([]byte(src))
	return hex.EncodeToString(sum[:])
}

func isUndefinedSymbol(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "undefined") || strings.Contains(msg, "not declared")
}
