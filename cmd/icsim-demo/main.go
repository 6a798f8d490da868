package main

import (
	"log"

	"github.com/ic10emu/icsim"
	_ "github.com/ic10emu/icsim/devlib"
)

func main() {
	sim := icsim.NewSimulation()
	defer sim.Close()

	mem, err := sim.CreateDevice(icsim.StringHash("StructureLogicMemory"))
	if err != nil {
		log.Fatal(err)
	}

	housing, err := sim.CreateDevice(icsim.StringHash("StructureCircuitHousing"))
	if err != nil {
		log.Fatal(err)
	}
	if err := housing.SetPin(0, mem); err != nil {
		log.Fatal(err)
	}

	chip := sim.CreateChip()
	if err := chip.Load(`move r0 41
add r0 r0 1
s d0 Setting r0
yield
j 0
`); err != nil {
		log.Fatal(err)
	}
	if err := housing.SetChip(chip); err != nil {
		log.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		changed := sim.Update()
		v, _ := mem.Read(icsim.Setting)
		log.Printf("tick %d: Setting=%v changed=%d", sim.CurrentTick(), v, changed)
	}
}
