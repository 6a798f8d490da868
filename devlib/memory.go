package devlib

import "github.com/ic10emu/icsim"

func init() {
	icsim.RegisterPrefab(&icsim.PrefabInfo{
		Name:     "StructureLogicMemory",
		Readable: rw(icsim.Setting, icsim.ReferenceIdLT, icsim.PrefabHashLT, icsim.NameHashLT),
		Writable: rw(icsim.Setting),
	})
}
