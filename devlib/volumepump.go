package devlib

import "github.com/ic10emu/icsim"

// volumePumpMaxMolesPerTick is the flow rate at Setting==1 (100%); Setting
// scales it linearly. Invented for this port; original_source doesn't
// model pump throughput as a runtime constant either.
const volumePumpMaxMolesPerTick = 20.0

type volumePumpBehavior struct{}

func (volumePumpBehavior) Tick(d *icsim.Device) {
	on, _ := d.Read(icsim.On)
	if on == 0 {
		return
	}
	setting, _ := d.Read(icsim.Setting)
	if setting < 0 {
		setting = 0
	}
	if setting > 1 {
		setting = 1
	}
	pumpBetweenPorts(d, icsim.PortInput, icsim.PortOutput, volumePumpMaxMolesPerTick*setting)
}

func init() {
	icsim.RegisterPrefab(&icsim.PrefabInfo{
		Name: "StructureVolumePump",
		Readable: rw(icsim.On, icsim.Setting,
			lt("PressureInput"), lt("PressureOutput"), icsim.PrefabHashLT, icsim.ReferenceIdLT),
		Writable: rw(icsim.On, icsim.Setting),
		Ports:    []icsim.PortKind{icsim.PortInput, icsim.PortOutput},
		NewBehavior: func(d *icsim.Device) icsim.DeviceBehavior {
			return volumePumpBehavior{}
		},
	})
}
