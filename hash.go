package icsim

import "hash/crc32"

// ReferenceId is a 32-bit identifier assigned by a SimulationManager to a
// Device or Item on creation. It is never reused within a session.
type ReferenceId int32

// PrefabHash is a 32-bit signed hash of a prefab's canonical name, computed
// by StringHash. It identifies a device or item kind.
type PrefabHash int32

// NameHash is a 32-bit signed hash of a device's (mutable) display name.
type NameHash int32

// NetworkId is a 32-bit identifier assigned to a CableNetwork or
// AtmosphericNetwork on creation.
type NetworkId int32

// StringHash computes the 32-bit signed hash used throughout the API to map
// prefab and device names to stable integer identifiers. It is CRC-32 with
// the ISO-HDLC polynomial (the same polynomial Go's standard library calls
// IEEE), truncated to a signed 32-bit value exactly like the upstream
// game's own hashing.
//
// StringHash("") == 0.
func StringHash(s string) PrefabHash {
	return PrefabHash(int32(crc32.ChecksumIEEE([]byte(s))))
}

// idAllocator hands out strictly increasing reference ids starting at 1,
// matching the upstream convention that id 0 never denotes a live entity.
type idAllocator struct {
	next int32
}

func (a *idAllocator) allocate() ReferenceId {
	a.next++
	return ReferenceId(a.next)
}

// netIDAllocator hands out strictly increasing network ids, independent of
// the device/item reference-id namespace.
type netIDAllocator struct {
	next int32
}

func (a *netIDAllocator) allocate() NetworkId {
	a.next++
	return NetworkId(a.next)
}
