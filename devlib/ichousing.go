package devlib

import "github.com/ic10emu/icsim"

func init() {
	icsim.RegisterPrefab(&icsim.PrefabInfo{
		Name:          "StructureCircuitHousing",
		HasChipSocket: true,
		Readable:      rw(icsim.On, icsim.Error, icsim.LineNumberLT, icsim.PrefabHashLT, icsim.ReferenceIdLT, icsim.NameHashLT),
		Writable:      rw(icsim.On),
		Slots:         []icsim.SlotSpec{{Class: icsim.SlotItemClassProgrammableChip}},
	})
}
