package equipment

// Index maps definitions by id.
func Index(defs []Definition) map[string]Definition {
	out := make(map[string]Definition, len(defs))
	for _, d := range defs {
		out[d.ID] = d
	}
	return out
}

// ViewModel is what a player owns and wears.
type ViewModel struct {
	Owned    []Definition          `json:"ownedEquipment" yaml:"ownedEquipment"`
	Equipped map[string]Definition `json:"equippedEquipment" yaml:"equippedEquipment"`
}

// BuildViewModel resolves owned ids and per-slot equipped ids against
// defs. Ids with no definition are dropped.
func BuildViewModel(defs []Definition, owned []string, equippedBySlot map[string]string) ViewModel {
	byID := Index(defs)

	vm := ViewModel{
		Owned:    []Definition{},
		Equipped: map[string]Definition{},
	}
	for _, id := range owned {
		if d, ok := byID[id]; ok {
			vm.Owned = append(vm.Owned, d)
		}
	}
	for slot, id := range equippedBySlot {
		if d, ok := byID[id]; ok {
			vm.Equipped[slot] = d
		}
	}
	return vm
}
