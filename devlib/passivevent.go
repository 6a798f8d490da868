package devlib

import "github.com/ic10emu/icsim"

type passiveVentBehavior struct{}

// Tick equalizes the vent's Internal (room) and Output (pipe network)
// ports directly, with no pump and no direction: a passive vent is just
// an open pipe between the two.
func (passiveVentBehavior) Tick(d *icsim.Device) {
	room, ok := d.Port(icsim.Internal)
	if !ok {
		return
	}
	net, ok := d.Port(icsim.PortOutput)
	if !ok {
		return
	}
	icsim.Equalize(room, net)
}

func init() {
	icsim.RegisterPrefab(&icsim.PrefabInfo{
		Name:     "StructurePassiveVent",
		Readable: rw(icsim.Pressure, lt("PressureOutput"), icsim.PrefabHashLT, icsim.ReferenceIdLT),
		Ports:    []icsim.PortKind{icsim.Internal, icsim.PortOutput},
		NewBehavior: func(d *icsim.Device) icsim.DeviceBehavior {
			return passiveVentBehavior{}
		},
	})
}
