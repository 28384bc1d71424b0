package game

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Area interchange files are plain text with tagged sections. Each section
// holds one JSON record per line, so a whole area round-trips losslessly
// through export and import:
//
//	[Area]
//	{"name":"midgaard","title":"The City of Midgaard","builders":["alice"]}
//	[End Area]
//	[Items]
//	{"id":1,"name":"a rusty sword", ...}
//	[End Items]

const areaFileExt = ".area"

type areaHeaderRecord struct {
	Name     string   `json:"name"`
	Title    string   `json:"title,omitempty"`
	Builders []string `json:"builders,omitempty"`
}

type exitRecord struct {
	Direction  Direction `json:"direction"`
	ToArea     string    `json:"to_area"`
	ToRoom     int       `json:"to_room"`
	LinkedExit Direction `json:"linked_exit,omitempty"`
	Openable   bool      `json:"openable,omitempty"`
	Closed     bool      `json:"closed,omitempty"`
	Locked     bool      `json:"locked,omitempty"`
	KeyArea    string    `json:"key_area,omitempty"`
	KeyID      int       `json:"key_id,omitempty"`
}

type roomRecord struct {
	ID          int          `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Exits       []exitRecord `json:"exits,omitempty"`
	Spawns      []Spawn      `json:"spawns,omitempty"`
}

type itemRecord struct {
	ID          int              `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Keywords    []string         `json:"keywords,omitempty"`
	Equippable  *EquippableFacet `json:"equippable,omitempty"`
	Food        *FoodFacet       `json:"food,omitempty"`
	Container   *ContainerFacet  `json:"container,omitempty"`
	Furniture   *FurnitureFacet  `json:"furniture,omitempty"`
	Portal      *PortalFacet     `json:"portal,omitempty"`
}

type npcRecord struct {
	ID          int                    `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Keywords    []string               `json:"keywords,omitempty"`
	MaxHP       int                    `json:"max_hp,omitempty"`
	MaxMP       int                    `json:"max_mp,omitempty"`
	Attrs       Attributes             `json:"attrs,omitempty"`
	Hit         int                    `json:"hit,omitempty"`
	Evade       int                    `json:"evade,omitempty"`
	Damage      map[string]DamageRange `json:"damage,omitempty"`
	Absorb      map[string]int         `json:"absorb,omitempty"`
	Wander      bool                   `json:"wander,omitempty"`
	ScriptID    int                    `json:"script_id,omitempty"`
}

type scriptRecord struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Source string `json:"source"`
}

// ExportArea writes the area to dir/<name>.area atomically.
func (w *World) ExportArea(area *Area, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create areas directory: %w", err)
	}
	var out strings.Builder

	builders := make([]string, 0, len(area.Builders))
	for name := range area.Builders {
		builders = append(builders, name)
	}
	sort.Strings(builders)
	writeSection(&out, "Area", []any{areaHeaderRecord{
		Name:     area.Name,
		Title:    area.Title,
		Builders: builders,
	}})

	itemIDs := make([]int, 0, len(area.Items))
	for id := range area.Items {
		itemIDs = append(itemIDs, id)
	}
	sort.Ints(itemIDs)
	items := make([]any, 0, len(itemIDs))
	for _, id := range itemIDs {
		p := area.Items[id]
		items = append(items, itemRecord{
			ID: p.ID, Name: p.Name, Description: p.Description, Keywords: p.Keywords,
			Equippable: p.Equippable, Food: p.Food, Container: p.Container,
			Furniture: p.Furniture, Portal: p.Portal,
		})
	}
	writeSection(&out, "Items", items)

	npcIDs := make([]int, 0, len(area.NPCs))
	for id := range area.NPCs {
		npcIDs = append(npcIDs, id)
	}
	sort.Ints(npcIDs)
	npcs := make([]any, 0, len(npcIDs))
	for _, id := range npcIDs {
		p := area.NPCs[id]
		npcs = append(npcs, npcRecord{
			ID: p.ID, Name: p.Name, Description: p.Description, Keywords: p.Keywords,
			MaxHP: p.MaxHP, MaxMP: p.MaxMP, Attrs: p.Attrs, Hit: p.Hit, Evade: p.Evade,
			Damage: p.Damage, Absorb: p.Absorb, Wander: p.Wander, ScriptID: p.ScriptID,
		})
	}
	writeSection(&out, "NPCs", npcs)

	scriptIDs := make([]int, 0, len(area.Scripts))
	for id := range area.Scripts {
		scriptIDs = append(scriptIDs, id)
	}
	sort.Ints(scriptIDs)
	scripts := make([]any, 0, len(scriptIDs))
	for _, id := range scriptIDs {
		sc := area.Scripts[id]
		scripts = append(scripts, scriptRecord{ID: sc.ID, Name: sc.Name, Source: sc.Source})
	}
	writeSection(&out, "Scripts", scripts)

	rooms := make([]any, 0, len(area.Rooms))
	for _, room := range sortedRooms(area.Rooms) {
		record := roomRecord{
			ID:          room.ID,
			Title:       room.Title,
			Description: room.Description,
			Spawns:      room.Spawns,
		}
		for _, dir := range AllDirections {
			exit := room.Exits[dir]
			if exit == nil {
				continue
			}
			record.Exits = append(record.Exits, exitRecord{
				Direction: exit.Direction, ToArea: exit.ToArea, ToRoom: exit.ToRoom,
				LinkedExit: exit.LinkedExit, Openable: exit.Openable,
				Closed: exit.Closed, Locked: exit.Locked,
				KeyArea: exit.KeyArea, KeyID: exit.KeyID,
			})
		}
		rooms = append(rooms, record)
	}
	writeSection(&out, "Rooms", rooms)

	path := filepath.Join(dir, area.Name+areaFileExt)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(out.String()), 0o644); err != nil {
		return "", fmt.Errorf("write area file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("replace area file: %w", err)
	}
	return path, nil
}

func writeSection(out *strings.Builder, tag string, records []any) {
	fmt.Fprintf(out, "[%s]\n", tag)
	for _, record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			continue
		}
		out.Write(data)
		out.WriteByte('\n')
	}
	fmt.Fprintf(out, "[End %s]\n", tag)
}

// ImportAreaFile parses an area file and installs the area, replacing any
// loaded area of the same name. The replaced area's rooms are vacated
// into the new area's matching rooms where possible.
func (w *World) ImportAreaFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open area file: %w", err)
	}
	defer f.Close()
	area, err := parseAreaFile(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	w.installArea(area)
	return nil
}

func parseAreaFile(f *os.File) (*Area, error) {
	area := &Area{
		Builders: make(map[string]bool),
		Rooms:    make(map[int]*Room),
		Items:    make(map[int]*ItemPrototype),
		NPCs:     make(map[int]*NpcPrototype),
		Scripts:  make(map[int]*Script),
	}
	type pendingExit struct {
		room   *Room
		record exitRecord
	}
	var pending []pendingExit

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	section := ""
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			tag := strings.Trim(line, "[]")
			if strings.HasPrefix(tag, "End ") {
				section = ""
			} else {
				section = tag
			}
			continue
		}
		switch section {
		case "Area":
			var header areaHeaderRecord
			if err := json.Unmarshal([]byte(line), &header); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			area.Name = strings.ToLower(header.Name)
			area.Title = header.Title
			for _, builder := range header.Builders {
				area.AddBuilder(builder)
			}
		case "Items":
			var record itemRecord
			if err := json.Unmarshal([]byte(line), &record); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			area.Items[record.ID] = &ItemPrototype{
				AreaName: area.Name, ID: record.ID, Name: record.Name,
				Description: record.Description, Keywords: record.Keywords,
				Equippable: record.Equippable, Food: record.Food,
				Container: record.Container, Furniture: record.Furniture,
				Portal: record.Portal,
			}
		case "NPCs":
			var record npcRecord
			if err := json.Unmarshal([]byte(line), &record); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			area.NPCs[record.ID] = &NpcPrototype{
				AreaName: area.Name, ID: record.ID, Name: record.Name,
				Description: record.Description, Keywords: record.Keywords,
				MaxHP: record.MaxHP, MaxMP: record.MaxMP, Attrs: record.Attrs,
				Hit: record.Hit, Evade: record.Evade,
				Damage: record.Damage, Absorb: record.Absorb,
				Wander: record.Wander, ScriptID: record.ScriptID,
			}
		case "Scripts":
			var record scriptRecord
			if err := json.Unmarshal([]byte(line), &record); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			area.Scripts[record.ID] = &Script{
				AreaName: area.Name, ID: record.ID,
				Name: record.Name, Source: record.Source,
			}
		case "Rooms":
			var record roomRecord
			if err := json.Unmarshal([]byte(line), &record); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			room := newRoom(area, record.ID, record.Title)
			room.Description = record.Description
			room.Spawns = record.Spawns
			area.Rooms[room.ID] = room
			for _, exit := range record.Exits {
				pending = append(pending, pendingExit{room: room, record: exit})
			}
		default:
			return nil, fmt.Errorf("line %d: content outside any section", lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if area.Name == "" {
		return nil, fmt.Errorf("missing [Area] header")
	}
	for _, p := range pending {
		p.room.Exits[p.record.Direction] = &Exit{
			Direction: p.record.Direction, ToArea: p.record.ToArea, ToRoom: p.record.ToRoom,
			LinkedExit: p.record.LinkedExit, Openable: p.record.Openable,
			Closed: p.record.Closed, Locked: p.record.Locked,
			KeyArea: p.record.KeyArea, KeyID: p.record.KeyID,
		}
	}
	area.adoptIDs()
	return area, nil
}

// installArea swaps a freshly parsed area into the world. Players standing
// in a replaced area move to the matching room in the new version, or to
// the start room when their room is gone.
func (w *World) installArea(area *Area) {
	old, existed := w.Areas[area.Name]
	w.Areas[area.Name] = area
	if !existed {
		return
	}
	area.Visits = old.Visits
	for _, room := range old.Rooms {
		for _, s := range room.Occupants {
			if s == nil || s.Char == nil {
				continue
			}
			if dest, ok := area.Rooms[room.ID]; ok {
				w.MoveCharacter(s.Char, dest)
			} else if dest, ok := w.startRoom(); ok {
				w.MoveCharacter(s.Char, dest)
				s.Send("The ground shifts beneath you.")
			}
		}
		for _, npc := range room.NPCs {
			npc.Deactivate()
		}
	}
}

// LoadAreaDir imports every .area file under dir. Missing directories are
// fine on first boot.
func (w *World) LoadAreaDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read areas directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), areaFileExt) {
			continue
		}
		if err := w.ImportAreaFile(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}
