package devlib

import "github.com/ic10emu/icsim"

// filtrationMolesPerTick is the total throughput of a filtration unit.
// original_source/src/devices/filtration.rs exists but the exact
// runtime-tuned flow figure isn't present in the retrieved source, so this
// is an invented but reasonable constant, same order of magnitude as
// volumePumpMaxMolesPerTick.
const filtrationMolesPerTick = 10.0

type filtrationBehavior struct{}

// Tick draws gas from Input and splits it across two outputs: Output2
// receives whatever species Mode names (the filtered-out contaminant),
// Output receives everything else.
func (filtrationBehavior) Tick(d *icsim.Device) {
	on, _ := d.Read(icsim.On)
	if on == 0 {
		return
	}
	in, ok := d.Port(icsim.PortInput)
	if !ok {
		return
	}
	clean, hasClean := d.Port(icsim.PortOutput)
	waste, hasWaste := d.Port(icsim.PortOutput2)

	mode, _ := d.Read(icsim.Mode)
	target := icsim.GasSpecies(int(mode))

	drawn := in.Mixture.RemoveMoles(filtrationMolesPerTick)
	if hasWaste {
		n := drawn.Moles(target)
		if n > 0 {
			if err := waste.Mixture.Add(target, n, drawn.Temperature()); err == nil {
				drawn.RemoveAll(target)
			}
		}
	}
	if hasClean {
		clean.Mixture.Merge(drawn)
	} else {
		in.Mixture.Merge(drawn)
	}
}

func init() {
	icsim.RegisterPrefab(&icsim.PrefabInfo{
		Name: "StructureFiltration",
		Readable: rw(icsim.On, icsim.Mode,
			lt("PressureInput"), lt("PressureOutput"), icsim.PrefabHashLT, icsim.ReferenceIdLT),
		Writable: rw(icsim.On, icsim.Mode),
		Ports:    []icsim.PortKind{icsim.PortInput, icsim.PortOutput, icsim.PortOutput2},
		NewBehavior: func(d *icsim.Device) icsim.DeviceBehavior {
			return filtrationBehavior{}
		},
	})
}
