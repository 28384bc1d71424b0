package game

import "fmt"

// EquippableFacet lets an item be worn, contributing combat bonuses.
type EquippableFacet struct {
	Slot   EquipSlot              `json:"slot"`
	Hit    int                    `json:"hit,omitempty"`
	Evade  int                    `json:"evade,omitempty"`
	Damage map[string]DamageRange `json:"damage,omitempty"`
	Absorb map[string]int         `json:"absorb,omitempty"`
}

// FoodFacet lets an item be eaten.
type FoodFacet struct {
	Nourishment int    `json:"nourishment"`
	EatMessage  string `json:"eat_message,omitempty"`
}

// ContainerFacet lets an item hold other item instances.
type ContainerFacet struct {
	Capacity int             `json:"capacity"`
	Items    []*ItemInstance `json:"-"`
}

// FurnitureFacet lets characters sit on or occupy an item.
type FurnitureFacet struct {
	Capacity int      `json:"capacity"`
	Sitters  []string `json:"-"`
}

// PortalFacet lets an item transport a character to another room.
type PortalFacet struct {
	ToArea       string `json:"to_area"`
	ToRoom       int    `json:"to_room"`
	LeaveMessage string `json:"leave_message,omitempty"`
	EnterMessage string `json:"enter_message,omitempty"`
}

// ItemPrototype is the authored template an area owns. Instances are loaded
// from it; builder edits mutate the prototype, never live instances.
type ItemPrototype struct {
	AreaName    string
	ID          int
	Name        string
	Description string
	Keywords    []string

	Equippable *EquippableFacet
	Food       *FoodFacet
	Container  *ContainerFacet
	Furniture  *FurnitureFacet
	Portal     *PortalFacet
}

// ItemInstance is a live, mutable copy of a prototype. It is owned by
// whichever container currently holds it: a room, an inventory, or another
// container item.
type ItemInstance struct {
	Proto       *ItemPrototype
	Name        string
	Description string

	// SpawnID ties an instance to the spawn rule that produced it so that
	// area resets stay idempotent. Zero for hand-loaded instances.
	SpawnID int

	Equippable *EquippableFacet
	Food       *FoodFacet
	Container  *ContainerFacet
	Furniture  *FurnitureFacet
	Portal     *PortalFacet
}

// Load creates a fresh instance from the prototype, deep-copying every
// facet so instance mutation never leaks back into the template.
func (p *ItemPrototype) Load() *ItemInstance {
	inst := &ItemInstance{
		Proto:       p,
		Name:        p.Name,
		Description: p.Description,
	}
	if p.Equippable != nil {
		eq := *p.Equippable
		eq.Damage = cloneDamage(p.Equippable.Damage)
		eq.Absorb = cloneAbsorb(p.Equippable.Absorb)
		inst.Equippable = &eq
	}
	if p.Food != nil {
		food := *p.Food
		inst.Food = &food
	}
	if p.Container != nil {
		inst.Container = &ContainerFacet{Capacity: p.Container.Capacity}
	}
	if p.Furniture != nil {
		inst.Furniture = &FurnitureFacet{Capacity: p.Furniture.Capacity}
	}
	if p.Portal != nil {
		portal := *p.Portal
		inst.Portal = &portal
	}
	return inst
}

// HasEquippable reports whether the instance carries the equippable facet.
func (i *ItemInstance) HasEquippable() bool { return i.Equippable != nil }

// HasFood reports whether the instance can be eaten.
func (i *ItemInstance) HasFood() bool { return i.Food != nil }

// HasContainer reports whether the instance can hold other items.
func (i *ItemInstance) HasContainer() bool { return i.Container != nil }

// HasFurniture reports whether characters can occupy the instance.
func (i *ItemInstance) HasFurniture() bool { return i.Furniture != nil }

// HasPortal reports whether the instance transports characters.
func (i *ItemInstance) HasPortal() bool { return i.Portal != nil }

// PutInside places an item into this container instance.
func (i *ItemInstance) PutInside(item *ItemInstance) error {
	if i.Container == nil {
		return fmt.Errorf("%s is not a container", i.Name)
	}
	if i.Container.Capacity > 0 && len(i.Container.Items) >= i.Container.Capacity {
		return fmt.Errorf("%s is full", i.Name)
	}
	i.Container.Items = append(i.Container.Items, item)
	return nil
}

// TakeOut removes an item from this container instance.
func (i *ItemInstance) TakeOut(item *ItemInstance) bool {
	if i.Container == nil {
		return false
	}
	for idx, held := range i.Container.Items {
		if held == item {
			i.Container.Items = append(i.Container.Items[:idx], i.Container.Items[idx+1:]...)
			return true
		}
	}
	return false
}

func cloneDamage(src map[string]DamageRange) map[string]DamageRange {
	if src == nil {
		return nil
	}
	out := make(map[string]DamageRange, len(src))
	for kind, r := range src {
		out[kind] = r
	}
	return out
}

func cloneAbsorb(src map[string]int) map[string]int {
	if src == nil {
		return nil
	}
	out := make(map[string]int, len(src))
	for kind, v := range src {
		out[kind] = v
	}
	return out
}

func findInstanceIndex(items []*ItemInstance, target string) int {
	candidates := make([]matchable, len(items))
	for i, item := range items {
		candidates[i] = matchable{name: item.Name}
		if item.Proto != nil {
			candidates[i].keywords = item.Proto.Keywords
		}
	}
	idx, ok := resolveTarget(target, candidates)
	if !ok {
		return -1
	}
	return idx
}
