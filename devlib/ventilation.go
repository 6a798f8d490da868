package devlib

import "github.com/ic10emu/icsim"

// activeVentMolesPerTick is the pumping rate ported from the vent's
// volume-pump-like behavior; no original_source counterpart exists for
// the exact figure (the original models vents structurally but leaves the
// per-tick flow constant to runtime tuning data this port doesn't have),
// so this is a reasonable invented constant rather than a ported one.
const activeVentMolesPerTick = 5.0

type activeVentBehavior struct{}

// Tick pumps gas between the vent's Internal (room) and Output (pipe
// network) ports. Mode selects direction: 0 drives gas from Internal to
// Output (venting a room into the network), 1 drives it the other way
// (pressurizing a room from the network). On gates whether the pump runs
// at all.
func (activeVentBehavior) Tick(d *icsim.Device) {
	on, _ := d.Read(icsim.On)
	if on == 0 {
		return
	}
	mode, _ := d.Read(icsim.Mode)
	src, dst := icsim.Internal, icsim.PortOutput
	if mode != 0 {
		src, dst = icsim.PortOutput, icsim.Internal
	}
	pumpBetweenPorts(d, src, dst, activeVentMolesPerTick)
}

func init() {
	icsim.RegisterPrefab(&icsim.PrefabInfo{
		Name:     "StructureActiveVent",
		Readable: rw(icsim.On, icsim.Mode, icsim.Pressure, lt("PressureOutput"), icsim.PrefabHashLT, icsim.ReferenceIdLT),
		Writable: rw(icsim.On, icsim.Mode),
		Ports:    []icsim.PortKind{icsim.Internal, icsim.PortOutput},
		NewBehavior: func(d *icsim.Device) icsim.DeviceBehavior {
			return activeVentBehavior{}
		},
	})
}
