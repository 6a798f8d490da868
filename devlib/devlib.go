// Package devlib is a library of device prefabs for icsim: vents, pumps,
// sensors, memory and IC housings. Importing it for its side effects
// populates icsim's default prefab registry, the way a database/sql
// driver package registers itself with database/sql.
package devlib

import "github.com/ic10emu/icsim"

// rw is a small builder for the Readable/Writable maps every prefab's
// PrefabInfo needs, mirroring the terse helper-map style hwlib's gates.go
// uses for its own repeated pin-name sets.
func rw(types ...icsim.LogicType) map[icsim.LogicType]bool {
	m := make(map[icsim.LogicType]bool, len(types))
	for _, t := range types {
		m[t] = true
	}
	return m
}

// pumpBetweenPorts moves up to maxMoles moles of gas (all species,
// proportionally) from d's src port to its dst port. Either port being
// unattached makes it a no-op.
func pumpBetweenPorts(d *icsim.Device, src, dst icsim.PortKind, maxMoles float64) {
	from, ok := d.Port(src)
	if !ok {
		return
	}
	to, ok := d.Port(dst)
	if !ok {
		return
	}
	moved := from.Mixture.RemoveMoles(maxMoles)
	to.Mixture.Merge(moved)
}

// lt resolves a port-qualified logic type name (e.g. "PressureOutput")
// that has no exported Go constant of its own -- only the generic,
// unqualified names (icsim.Pressure, icsim.On, ...) get package-level
// identifiers; the 4-port family is registered into icsim's name table
// instead. Panics on an unknown name, since that indicates a typo in this
// package, not a runtime condition.
func lt(name string) icsim.LogicType {
	t, ok := icsim.LogicTypeByName(name)
	if !ok {
		panic("devlib: unknown logic type " + name)
	}
	return t
}
