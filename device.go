package icsim

// devicePinCount is the number of addressable device pins (d0-d5) an IC10
// chip can wire a housing to, matching the fixed pin count spec.md's
// glossary documents for the db/d0-d5 operand family.
const devicePinCount = 6

// Device is one live instance of a registered prefab: a vending machine, a
// sensor, a pipe valve, an IC housing. Its logic properties, slots, pins
// and network attachments are all mutable; its Prefab is not.
type Device struct {
	ID     ReferenceId
	Prefab *PrefabInfo
	Name   string
	name   NameHash

	values map[LogicType]float64
	slots  []Slot
	pins   [devicePinCount]*Device

	chip *ICChip

	cable *CableNetwork
	ports map[PortKind]*AtmosphericNetwork

	behavior DeviceBehavior

	// tick is the simulation's current tick count, refreshed by the
	// manager immediately before each Update phase. Behaviors that model
	// something environmental rather than self-contained (a daylight
	// sensor's day/night cycle) read it through CurrentTick instead of
	// keeping their own counter, so the schedule comes from the
	// simulation clock rather than from per-device state.
	tick int64
}

// CurrentTick returns the simulation tick as of the most recent Update
// call, as set by the owning SimulationManager.
func (d *Device) CurrentTick() int64 { return d.tick }

func newDevice(id ReferenceId, info *PrefabInfo) *Device {
	d := &Device{
		ID:     id,
		Prefab: info,
		Name:   info.Name,
		name:   NameHash(StringHash(info.Name)),
		values: make(map[LogicType]float64),
		slots:  make([]Slot, len(info.Slots)),
		ports:  make(map[PortKind]*AtmosphericNetwork),
	}
	for i, spec := range info.Slots {
		d.slots[i].Spec = spec
	}
	if info.NewBehavior != nil {
		d.behavior = info.NewBehavior(d)
	}
	return d
}

// SetName renames a device, recomputing its NameHash.
func (d *Device) SetName(name string) {
	d.Name = name
	d.name = NameHash(StringHash(name))
}

// NameHash returns the hash of the device's current display name.
func (d *Device) NameHash() NameHash { return d.name }

// Read returns the current value of a logic property. Reading a property
// the prefab doesn't expose as readable is a LogicUnreadable runtime fault.
func (d *Device) Read(lt LogicType) (float64, error) {
	if !d.Prefab.CanRead(lt) {
		return 0, newRuntimeFault(LogicUnreadable, 0, "%s does not expose %s for reading", d.Prefab.Name, lt)
	}
	switch lt {
	case ReferenceIdLT:
		return float64(d.ID), nil
	case PrefabHashLT:
		return float64(d.Prefab.Hash), nil
	case NameHashLT:
		return float64(d.name), nil
	case LineNumberLT:
		if d.chip != nil {
			return float64(d.chip.ProgramCounter()), nil
		}
		return 0, nil
	case Error:
		if d.chip != nil && d.chip.Halted() && d.chip.HaltCause() != nil {
			return 1, nil
		}
		return 0, nil
	}
	if v, ok := d.readPort(lt); ok {
		return v, nil
	}
	return d.values[lt], nil
}

// Write sets a logic property. Writing a property the prefab doesn't
// expose as writable is a LogicUnwritable runtime fault.
func (d *Device) Write(lt LogicType, value float64) error {
	if !d.Prefab.CanWrite(lt) {
		return newRuntimeFault(LogicUnwritable, 0, "%s does not expose %s for writing", d.Prefab.Name, lt)
	}
	d.values[lt] = value
	return nil
}

// Report sets a logic property's value directly, bypassing the prefab's
// Writable permission check. Device behaviors use this to publish
// derived/sensed values (a daylight sensor's Horizontal, Vertical and Solar
// readings) that a chip may read but must not be able to write via s.
func (d *Device) Report(lt LogicType, value float64) {
	d.values[lt] = value
}

// readPort resolves the atmospheric-port-derived logic types (Pressure,
// Temperature, TotalMoles, Combustion and the per-species Ratio* family)
// against whichever network is attached to the relevant port, if any. It
// reports ok=false for logic types it doesn't own, so Read falls back to
// the plain value table.
func (d *Device) readPort(lt LogicType) (float64, bool) {
	name, ok := logicTypeNames[lt]
	if !ok {
		return 0, false
	}
	for _, port := range [4]PortKind{PortInput, PortInput2, PortOutput, PortOutput2} {
		suffix := port.String()
		if len(name) <= len(suffix) || name[len(name)-len(suffix):] != suffix {
			continue
		}
		net, attached := d.ports[port]
		if !attached {
			return 0, true
		}
		base := name[:len(name)-len(suffix)]
		switch base {
		case "Pressure":
			return net.Pressure(), true
		case "Temperature":
			return net.Temperature(), true
		case "TotalMoles":
			return net.TotalMoles(), true
		case "Combustion":
			return 0, true
		}
		for species, sname := range speciesRatioName {
			if base == "Ratio"+sname {
				return net.GasRatio(species), true
			}
		}
	}
	// No port suffix matched: a device with a single internal atmosphere
	// (a tank, a sensor) exposes Pressure/Temperature/Volume/TotalMoles
	// and the bare Ratio<Species> family directly against its Internal
	// port, with no per-port suffix.
	net, attached := d.ports[Internal]
	if !attached {
		return 0, false
	}
	switch lt {
	case Pressure:
		return net.Pressure(), true
	case Temperature:
		return net.Temperature(), true
	case Volume:
		return net.TotalVolume(), true
	case TotalMoles:
		return net.TotalMoles(), true
	}
	for species, sname := range speciesRatioName {
		if ratioName, ok := logicTypeNames[lt]; ok && ratioName == "Ratio"+sname {
			return net.GasRatio(species), true
		}
	}
	return 0, false
}

// ReadSlot returns a slot-property value for the item (if any) in the
// given slot index.
func (d *Device) ReadSlot(index int, prop LogicSlotType) (float64, error) {
	if index < 0 || index >= len(d.slots) {
		return 0, newRuntimeFault(InvalidInstruction, 0, "slot index %d out of range", index)
	}
	slot := &d.slots[index]
	switch prop {
	case SlotOccupied:
		if slot.Occupied() {
			return 1, nil
		}
		return 0, nil
	case SlotFreeSlots:
		return float64(d.freeSlotCount()), nil
	case SlotTotalSlots:
		return float64(len(d.slots)), nil
	}
	if !slot.Occupied() {
		return 0, nil
	}
	item := slot.Item
	switch prop {
	case SlotOccupantHash, SlotPrefabHash:
		return float64(item.Prefab.Hash), nil
	case SlotQuantity:
		return float64(item.Quantity), nil
	case SlotDamage:
		return item.Damage, nil
	case SlotReferenceId:
		return float64(item.ID), nil
	case SlotClass:
		return float64(slot.Spec.Class), nil
	default:
		return 0, nil
	}
}

// WriteSlot sets a writable slot-property value on the item (if any) in
// the given slot index, for the sbs/sbns family. Quantity and Damage are
// the only slot properties with a mutable backing field; everything else
// ReadSlot exposes (Occupied, hashes, reference ids, Class) is derived
// from the item or slot spec and is read-only here.
func (d *Device) WriteSlot(index int, prop LogicSlotType, value float64) error {
	if index < 0 || index >= len(d.slots) {
		return newRuntimeFault(InvalidInstruction, 0, "slot index %d out of range", index)
	}
	slot := &d.slots[index]
	if !slot.Occupied() {
		return newRuntimeFault(InvalidInstruction, 0, "slot %d is empty", index)
	}
	switch prop {
	case SlotQuantity:
		slot.Item.Quantity = int(value)
	case SlotDamage:
		slot.Item.Damage = value
	default:
		return newRuntimeFault(InvalidLogicType, 0, "slot property %v is not writable", prop)
	}
	return nil
}

func (d *Device) freeSlotCount() int {
	n := 0
	for i := range d.slots {
		if !d.slots[i].Occupied() {
			n++
		}
	}
	return n
}

// InsertItemIntoSlot places item into the slot at index, failing if the
// slot is already occupied or the index is out of range.
func (d *Device) InsertItemIntoSlot(index int, item *Item) error {
	if index < 0 || index >= len(d.slots) {
		return newRuntimeFault(InvalidInstruction, 0, "slot index %d out of range", index)
	}
	if d.slots[index].Occupied() {
		return newDomainError("slot %d already occupied", index)
	}
	d.slots[index].Item = item
	return nil
}

// RemoveItemFromSlot detaches and returns whatever item occupies the given
// slot, leaving it empty. Returns nil, nil for an already-empty slot.
func (d *Device) RemoveItemFromSlot(index int) (*Item, error) {
	if index < 0 || index >= len(d.slots) {
		return nil, newRuntimeFault(InvalidInstruction, 0, "slot index %d out of range", index)
	}
	item := d.slots[index].Item
	d.slots[index].Item = nil
	return item, nil
}

// HasChip reports whether a programmable chip is currently seated.
func (d *Device) HasChip() bool { return d.chip != nil }

// GetChip returns the seated chip, or nil.
func (d *Device) GetChip() *ICChip { return d.chip }

// SetChip seats a chip in this device's socket. The prefab must declare
// HasChipSocket.
func (d *Device) SetChip(chip *ICChip) error {
	if !d.Prefab.HasChipSocket {
		return newDomainError("%s has no chip socket", d.Prefab.Name)
	}
	if d.chip != nil {
		d.chip.housing = nil
	}
	d.chip = chip
	if chip != nil {
		chip.housing = d
	}
	return nil
}

// SetPin wires device pin index (0..5) to target, or clears it if target
// is nil.
func (d *Device) SetPin(index int, target *Device) error {
	if index < 0 || index >= devicePinCount {
		return newRuntimeFault(InvalidInstruction, 0, "pin index %d out of range", index)
	}
	d.pins[index] = target
	return nil
}

// GetPin returns whatever device is wired to pin index, or nil.
func (d *Device) GetPin(index int) (*Device, error) {
	if index < 0 || index >= devicePinCount {
		return nil, newRuntimeFault(InvalidInstruction, 0, "pin index %d out of range", index)
	}
	return d.pins[index], nil
}

// GetPinCount returns the number of addressable device pins.
func (d *Device) GetPinCount() int { return devicePinCount }

// attachCable joins this device to a cable network, leaving any prior
// network first so membership stays a proper set.
func (d *Device) attachCable(net *CableNetwork) {
	if d.cable != nil {
		d.cable.removeMember(d.ID)
	}
	d.cable = net
	if net != nil {
		net.addMember(d.ID)
	}
}

// attachAtmospheric wires one of this device's ports (Internal included) to
// an atmospheric network.
func (d *Device) attachAtmospheric(port PortKind, net *AtmosphericNetwork) {
	d.ports[port] = net
}

// clearAtmospheric detaches whatever network is wired to port.
func (d *Device) clearAtmospheric(port PortKind) {
	delete(d.ports, port)
}

// Port returns the atmospheric network wired to one of this device's
// ports, if any. Device behaviors (devlib's vents, pumps and filtration)
// use this to move gas between their ports each tick.
func (d *Device) Port(port PortKind) (*AtmosphericNetwork, bool) {
	n, ok := d.ports[port]
	return n, ok
}
