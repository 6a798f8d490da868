package icsim

// Item is a stack of a single prefab kind occupying one device slot:
// tools, ore, gas canisters and IC10 chips are all items (spec.md §3).
type Item struct {
	ID       ReferenceId
	Prefab   *PrefabInfo
	Quantity int
	Damage   float64

	// chip is never set by this package: a housing's seated chip is held
	// on the Device itself (see Device.GetChip and Device.SetChip).
	chip *ICChip
}

// Slot is one item-holding position on a device.
type Slot struct {
	Spec SlotSpec
	Item *Item
}

// Occupied reports whether the slot currently holds an item.
func (s *Slot) Occupied() bool { return s.Item != nil }
