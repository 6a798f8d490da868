package devlib

import "github.com/ic10emu/icsim"

func init() {
	icsim.RegisterPrefab(&icsim.PrefabInfo{
		Name: "StructureGasSensor",
		Readable: rw(icsim.Pressure, icsim.Temperature, icsim.TotalMoles,
			icsim.RatioOxygen, icsim.RatioCarbonDioxide, icsim.RatioNitrogen,
			icsim.RatioPollutant, icsim.RatioVolatiles, icsim.RatioWater,
			icsim.RatioNitrousOxide, icsim.PrefabHashLT, icsim.ReferenceIdLT),
		Ports: []icsim.PortKind{icsim.Internal},
	})
}
