/*
Package icsim emulates the programmable microcontroller and connected device
ecosystem of a Stationeers-like colony: a cooperative, tick-driven scheduler
that runs small IC10 register-machine programs against a device graph, a
shared-bus cable-network logic protocol, and an ideal-gas atmospherics model.

A simulation is built around a *SimulationManager*, which owns every Device,
CableNetwork, AtmosphericNetwork and Item for the lifetime of the session:

	sim := icsim.NewSimulation()
	defer sim.Close()

	mem, _ := sim.CreateDevice(icsim.StringHash("StructureLogicMemory"))
	mem.Write(icsim.Setting, 42)

	n := sim.Update()

Device kinds are registered once, at init time, by the devlib package the way
a database/sql driver registers itself: import it for its side effects and
its prefabs become available through CreateDevice.

The API is intentionally free of files, sockets, and environment variables:
everything a caller needs is passed as Go values to the manager's factory
methods, and update() always runs to completion.
*/
package icsim
