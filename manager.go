package icsim

import "sort"

// SimulationManager owns every Device, Item, CableNetwork and
// AtmosphericNetwork created for the lifetime of one session, and drives
// them forward one tick at a time.
type SimulationManager struct {
	ids     idAllocator
	netIDs  netIDAllocator
	tick    int64

	devices  map[ReferenceId]*Device
	items    map[ReferenceId]*Item
	cables   map[NetworkId]*CableNetwork
	atmos    map[NetworkId]*AtmosphericNetwork
	pipes    []pipeAdjacency

	deviceCable map[ReferenceId]NetworkId
}

// NewSimulation creates an empty SimulationManager.
func NewSimulation() *SimulationManager {
	return &SimulationManager{
		devices:     make(map[ReferenceId]*Device),
		items:       make(map[ReferenceId]*Item),
		cables:      make(map[NetworkId]*CableNetwork),
		atmos:       make(map[NetworkId]*AtmosphericNetwork),
		deviceCable: make(map[ReferenceId]NetworkId),
	}
}

// Close releases a SimulationManager's resources. The manager holds no
// file handles or goroutines that outlive a call to Update, so Close is
// currently a no-op kept for symmetry with the resource-owning parts of
// the API surface a caller might reasonably expect to defer.
func (m *SimulationManager) Close() {}

// CreateDevice instantiates a new Device of the given prefab.
func (m *SimulationManager) CreateDevice(hash PrefabHash) (*Device, error) {
	info, ok := LookupPrefab(hash)
	if !ok {
		return nil, newNotFoundError("prefab", hash)
	}
	d := newDevice(m.ids.allocate(), info)
	m.devices[d.ID] = d
	return d, nil
}

// CreateItem instantiates a new Item of the given prefab.
func (m *SimulationManager) CreateItem(hash PrefabHash, quantity int) (*Item, error) {
	info, ok := LookupPrefab(hash)
	if !ok {
		return nil, newNotFoundError("prefab", hash)
	}
	it := &Item{ID: m.ids.allocate(), Prefab: info, Quantity: quantity}
	m.items[it.ID] = it
	return it, nil
}

// CreateChip instantiates a new, unprogrammed ICChip with a fresh
// ReferenceId, seated in no housing yet. The chip is not an Item.
func (m *SimulationManager) CreateChip() *ICChip {
	return NewICChip(m.ids.allocate())
}

// CreateCableNetwork instantiates a new, empty CableNetwork.
func (m *SimulationManager) CreateCableNetwork() *CableNetwork {
	n := newCableNetwork(m.netIDs.allocate())
	m.cables[n.ID] = n
	return n
}

// CreateAtmosphericNetwork instantiates a new AtmosphericNetwork with an
// empty mixture of the given volume.
func (m *SimulationManager) CreateAtmosphericNetwork(volumeLiters float64) (*AtmosphericNetwork, error) {
	n, err := newAtmosphericNetwork(m.netIDs.allocate(), volumeLiters)
	if err != nil {
		return nil, err
	}
	m.atmos[n.ID] = n
	return n, nil
}

// Device looks a device up by its ReferenceId.
func (m *SimulationManager) Device(id ReferenceId) (*Device, bool) {
	d, ok := m.devices[id]
	return d, ok
}

// Item looks an item up by its ReferenceId.
func (m *SimulationManager) Item(id ReferenceId) (*Item, bool) {
	it, ok := m.items[id]
	return it, ok
}

// CableNetwork looks a cable network up by its NetworkId.
func (m *SimulationManager) CableNetwork(id NetworkId) (*CableNetwork, bool) {
	n, ok := m.cables[id]
	return n, ok
}

// AtmosphericNetwork looks an atmospheric network up by its NetworkId.
func (m *SimulationManager) AtmosphericNetwork(id NetworkId) (*AtmosphericNetwork, bool) {
	n, ok := m.atmos[id]
	return n, ok
}

// Devices lists every live device, ordered by ascending ReferenceId (the
// same order Update's device-behavior and chip-execution phases use).
func (m *SimulationManager) Devices() []*Device {
	out := make([]*Device, 0, len(m.devices))
	for _, d := range m.devices {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RemoveDevice deletes a device and detaches it from any cable or
// atmospheric network it was wired to.
func (m *SimulationManager) RemoveDevice(id ReferenceId) {
	d, ok := m.devices[id]
	if !ok {
		return
	}
	d.attachCable(nil)
	for port := range d.ports {
		d.clearAtmospheric(port)
	}
	delete(m.deviceCable, id)
	delete(m.devices, id)
}

// AttachCable wires a device to a cable network, detaching it from any
// prior network so membership stays a set.
func (m *SimulationManager) AttachCable(deviceID ReferenceId, netID NetworkId) error {
	d, ok := m.devices[deviceID]
	if !ok {
		return newNotFoundError("device", deviceID)
	}
	net, ok := m.cables[netID]
	if !ok {
		return newNotFoundError("cable network", netID)
	}
	d.attachCable(net)
	m.deviceCable[deviceID] = netID
	return nil
}

// AttachAtmospheric wires one of the ports a device's prefab lists in Ports
// (Internal included) to an atmospheric network. A port the prefab does not
// list is a DomainError.
func (m *SimulationManager) AttachAtmospheric(deviceID ReferenceId, port PortKind, netID NetworkId) error {
	d, ok := m.devices[deviceID]
	if !ok {
		return newNotFoundError("device", deviceID)
	}
	exposed := false
	for _, p := range d.Prefab.Ports {
		if p == port {
			exposed = true
			break
		}
	}
	if !exposed {
		return newDomainError("%s has no %s port", d.Prefab.Name, port)
	}
	net, ok := m.atmos[netID]
	if !ok {
		return newNotFoundError("atmospheric network", netID)
	}
	d.attachAtmospheric(port, net)
	return nil
}

// ConnectPipe registers an equalization pair between two atmospheric
// networks, processed once per tick during the atmospheric-physics phase.
// Connecting a pair that is already registered (in either order) changes
// nothing.
func (m *SimulationManager) ConnectPipe(a, b NetworkId) error {
	na, ok := m.atmos[a]
	if !ok {
		return newNotFoundError("atmospheric network", a)
	}
	nb, ok := m.atmos[b]
	if !ok {
		return newNotFoundError("atmospheric network", b)
	}
	for _, p := range m.pipes {
		if (p.a == na && p.b == nb) || (p.a == nb && p.b == na) {
			return nil
		}
	}
	m.pipes = append(m.pipes, pipeAdjacency{a: na, b: nb})
	return nil
}

// CurrentTick returns the number of completed Update calls.
func (m *SimulationManager) CurrentTick() int64 { return m.tick }

// deviceByID and cableNetworkFor implement deviceResolver for the chip
// interpreter.
func (m *SimulationManager) deviceByID(id ReferenceId) (*Device, bool) {
	d, ok := m.devices[id]
	return d, ok
}

func (m *SimulationManager) cableNetworkFor(deviceID ReferenceId) (*CableNetwork, bool) {
	netID, ok := m.deviceCable[deviceID]
	if !ok {
		return nil, false
	}
	n, ok := m.cables[netID]
	return n, ok
}

// Update advances the simulation by one tick, in four phases: atmospheric
// physics, device behaviors (ascending ReferenceId), chip execution
// (ascending ReferenceId), then change-count accounting. It returns the
// number of devices whose logic state changed as a side effect of this
// tick, the signal a host UI polls to know what to redraw.
func (m *SimulationManager) Update() int {
	runAtmosphericPhase(m.pipes)

	devices := m.Devices()

	before := make(map[ReferenceId]float64, len(devices))
	for _, d := range devices {
		before[d.ID] = snapshotDevice(d)
	}

	for _, d := range devices {
		d.tick = m.tick
		if d.behavior != nil {
			d.behavior.Tick(d)
		}
	}

	for _, d := range devices {
		if d.HasChip() {
			d.GetChip().RunTick(m)
		}
	}

	changed := 0
	for _, d := range devices {
		if snapshotDevice(d) != before[d.ID] {
			changed++
		}
	}

	m.tick++
	return changed
}

// snapshotDevice returns a cheap, order-independent fingerprint of a
// device's mutable logic state, used only to detect whether Update changed
// anything about it. It is not itself a meaningful logic value.
func snapshotDevice(d *Device) float64 {
	var sum float64
	for lt, v := range d.values {
		sum += float64(lt) * 1e-3 + v
	}
	return sum
}
