package icsim

// PrefabInfo is the static, immutable metadata describing one device or
// item kind: its canonical name, the name's hash, and the logic properties
// and slots it supports. Prefabs are registered once (usually from a
// package init, the way devlib's device files do) and never mutated after
// registration.
type PrefabInfo struct {
	Name string
	Hash PrefabHash

	// Readable/Writable list the logic properties this prefab's devices
	// answer l/s (and batch l/s variants) for. A property present in
	// Readable but not Writable rejects s with LogicUnwritable; the
	// reverse is unusual but legal (spec.md §4.4).
	Readable map[LogicType]bool
	Writable map[LogicType]bool

	// Slots lists the item slots this prefab's devices expose, in a
	// fixed order (slot index == position in this slice).
	Slots []SlotSpec

	// HasChipSocket is true for housings that can hold and execute an
	// IC10 chip (ICHousing and similar).
	HasChipSocket bool

	// Ports lists which atmospheric ports (Internal and any of the four
	// external ones) this prefab exposes; SimulationManager.AttachAtmospheric
	// rejects any other port. Empty for devices with no atmospheric
	// connection.
	Ports []PortKind

	// NewBehavior constructs the per-instance behavior hook run once per
	// tick by the simulation manager's device-behavior phase. nil for
	// passive prefabs with no per-tick behavior of their own.
	NewBehavior func(d *Device) DeviceBehavior
}

// SlotSpec describes one item slot a prefab exposes: the kinds of item it
// will accept and the class the upstream call sites compare against.
type SlotSpec struct {
	Class SlotItemClass
}

// SlotItemClass is a closed enumeration of the broad categories a slot
// accepts, ported from the original's per-slot filtering scheme.
type SlotItemClass int

const (
	SlotItemClassGeneric SlotItemClass = iota
	SlotItemClassProgrammableChip
	SlotItemClassGasCanister
	SlotItemClassGasFilter
	SlotItemClassOre
	SlotItemClassCircuitboard
)

// DeviceBehavior is the per-tick hook a device prefab registers: Tick runs
// once per simulation tick, after atmospheric physics and before any chip
// executes (spec.md §5's device-behavior phase).
type DeviceBehavior interface {
	Tick(d *Device)
}

// PropertyRegistry is the process-wide table of registered prefabs, keyed
// by both name and hash so a chip program can look a device up by either
// (spec.md device-lookup operations accept a PrefabHash; diagnostics and
// tests want the name).
type PropertyRegistry struct {
	byHash map[PrefabHash]*PrefabInfo
	byName map[string]*PrefabInfo
}

var defaultRegistry = &PropertyRegistry{
	byHash: make(map[PrefabHash]*PrefabInfo),
	byName: make(map[string]*PrefabInfo),
}

// RegisterPrefab adds a prefab to the default registry. It is meant to be
// called from a package init function, the way database/sql drivers
// register themselves: devlib's device files call this for every kind they
// implement, and importing devlib for its side effects is how a program
// opts into that device catalog.
//
// RegisterPrefab panics on a duplicate name or hash collision, since both
// indicate a programming error in a registering package, not a runtime
// condition a caller can recover from.
func RegisterPrefab(info *PrefabInfo) {
	if info.Name == "" {
		panic("icsim: RegisterPrefab called with empty name")
	}
	info.Hash = StringHash(info.Name)
	if _, exists := defaultRegistry.byName[info.Name]; exists {
		panic("icsim: duplicate prefab name " + info.Name)
	}
	if _, exists := defaultRegistry.byHash[info.Hash]; exists {
		panic("icsim: prefab hash collision for " + info.Name)
	}
	defaultRegistry.byName[info.Name] = info
	defaultRegistry.byHash[info.Hash] = info
}

// LookupPrefab resolves a prefab by hash.
func LookupPrefab(hash PrefabHash) (*PrefabInfo, bool) {
	info, ok := defaultRegistry.byHash[hash]
	return info, ok
}

// LookupPrefabByName resolves a prefab by its canonical name.
func LookupPrefabByName(name string) (*PrefabInfo, bool) {
	info, ok := defaultRegistry.byName[name]
	return info, ok
}

// CanRead reports whether lt is a readable property of this prefab.
func (p *PrefabInfo) CanRead(lt LogicType) bool { return p.Readable[lt] }

// CanWrite reports whether lt is a writable property of this prefab.
func (p *PrefabInfo) CanWrite(lt LogicType) bool { return p.Writable[lt] }
