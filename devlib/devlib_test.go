package devlib_test

import (
	"math"
	"testing"

	"github.com/ic10emu/icsim"
	_ "github.com/ic10emu/icsim/devlib"
)

func attach(t *testing.T, sim *icsim.SimulationManager, d *icsim.Device, port icsim.PortKind, volume float64) *icsim.AtmosphericNetwork {
	t.Helper()
	net, err := sim.CreateAtmosphericNetwork(volume)
	if err != nil {
		t.Fatal(err)
	}
	if err := sim.AttachAtmospheric(d.ID, port, net.ID); err != nil {
		t.Fatal(err)
	}
	return net
}

func TestActiveVentPumpsFromRoomToNetwork(t *testing.T) {
	sim := icsim.NewSimulation()
	defer sim.Close()

	vent, err := sim.CreateDevice(icsim.StringHash("StructureActiveVent"))
	if err != nil {
		t.Fatal(err)
	}
	vent.Write(icsim.On, 1)
	vent.Write(icsim.Mode, 0)

	room := attach(t, sim, vent, icsim.Internal, 100)
	net := attach(t, sim, vent, icsim.PortOutput, 100)
	room.Mixture.Add(icsim.Oxygen, 10, 300)

	sim.Update()

	if net.Mixture.TotalMoles() <= 0 {
		t.Fatal("expected active vent to move moles into the output network")
	}
	if total := room.Mixture.TotalMoles() + net.Mixture.TotalMoles(); math.Abs(total-10) > 1e-9 {
		t.Fatalf("moles not conserved: room=%g net=%g", room.Mixture.TotalMoles(), net.Mixture.TotalMoles())
	}
}

func TestActiveVentModeReversesDirection(t *testing.T) {
	sim := icsim.NewSimulation()
	defer sim.Close()

	vent, err := sim.CreateDevice(icsim.StringHash("StructureActiveVent"))
	if err != nil {
		t.Fatal(err)
	}
	vent.Write(icsim.On, 1)
	vent.Write(icsim.Mode, 1)

	room := attach(t, sim, vent, icsim.Internal, 100)
	net := attach(t, sim, vent, icsim.PortOutput, 100)
	net.Mixture.Add(icsim.Oxygen, 10, 300)

	sim.Update()

	if room.Mixture.TotalMoles() <= 0 {
		t.Fatal("expected reversed-mode vent to move moles into the room")
	}
}

func TestActiveVentOffDoesNothing(t *testing.T) {
	sim := icsim.NewSimulation()
	defer sim.Close()

	vent, _ := sim.CreateDevice(icsim.StringHash("StructureActiveVent"))
	vent.Write(icsim.On, 0)

	room := attach(t, sim, vent, icsim.Internal, 100)
	net := attach(t, sim, vent, icsim.PortOutput, 100)
	room.Mixture.Add(icsim.Oxygen, 10, 300)

	sim.Update()

	if net.Mixture.TotalMoles() != 0 {
		t.Fatal("vent moved gas while off")
	}
}

func TestPassiveVentEqualizesWithoutPumping(t *testing.T) {
	sim := icsim.NewSimulation()
	defer sim.Close()

	vent, err := sim.CreateDevice(icsim.StringHash("StructurePassiveVent"))
	if err != nil {
		t.Fatal(err)
	}
	room := attach(t, sim, vent, icsim.Internal, 10)
	net := attach(t, sim, vent, icsim.PortOutput, 10)
	room.Mixture.Add(icsim.Oxygen, 10, 300)

	for i := 0; i < 3; i++ {
		sim.Update()
	}

	if d := room.Pressure() - net.Pressure(); math.Abs(d) > icsim.PressureEqualizationEpsilon*10 {
		t.Fatalf("passive vent did not equalize: room=%g net=%g", room.Pressure(), net.Pressure())
	}
}

func TestVolumePumpScalesWithSetting(t *testing.T) {
	sim := icsim.NewSimulation()
	defer sim.Close()

	pump, err := sim.CreateDevice(icsim.StringHash("StructureVolumePump"))
	if err != nil {
		t.Fatal(err)
	}
	pump.Write(icsim.On, 1)
	pump.Write(icsim.Setting, 0.5)

	in := attach(t, sim, pump, icsim.PortInput, 100)
	out := attach(t, sim, pump, icsim.PortOutput, 100)
	in.Mixture.Add(icsim.Oxygen, 100, 300)

	sim.Update()

	if !(out.Mixture.TotalMoles() > 0 && out.Mixture.TotalMoles() < 100) {
		t.Fatalf("Setting=0.5 should move a partial amount, got %g", out.Mixture.TotalMoles())
	}
}

func TestFiltrationSeparatesTargetSpeciesIntoWasteOutput(t *testing.T) {
	sim := icsim.NewSimulation()
	defer sim.Close()

	filt, err := sim.CreateDevice(icsim.StringHash("StructureFiltration"))
	if err != nil {
		t.Fatal(err)
	}
	filt.Write(icsim.On, 1)
	filt.Write(icsim.Mode, float64(icsim.CarbonDioxide))

	in := attach(t, sim, filt, icsim.PortInput, 100)
	clean := attach(t, sim, filt, icsim.PortOutput, 100)
	waste := attach(t, sim, filt, icsim.PortOutput2, 100)
	in.Mixture.Add(icsim.Oxygen, 8, 300)
	in.Mixture.Add(icsim.CarbonDioxide, 2, 300)

	sim.Update()

	if waste.Mixture.Moles(icsim.CarbonDioxide) <= 0 {
		t.Fatal("expected filtration to divert CarbonDioxide into the waste port")
	}
	if waste.Mixture.Moles(icsim.Oxygen) != 0 {
		t.Fatal("filtration leaked Oxygen into the waste port")
	}
	if clean.Mixture.Moles(icsim.CarbonDioxide) != 0 {
		t.Fatal("filtration leaked CarbonDioxide into the clean port")
	}
}

func TestLogicMemoryReadWrite(t *testing.T) {
	sim := icsim.NewSimulation()
	defer sim.Close()
	mem, err := sim.CreateDevice(icsim.StringHash("StructureLogicMemory"))
	if err != nil {
		t.Fatal(err)
	}
	if err := mem.Write(icsim.Setting, 42); err != nil {
		t.Fatal(err)
	}
	got, err := mem.Read(icsim.Setting)
	if err != nil {
		t.Fatal(err)
	}
	if got != 42 {
		t.Fatalf("Read(Setting) = %g, want 42", got)
	}
}

func TestCircuitHousingSeatsChipAndReportsLineNumber(t *testing.T) {
	sim := icsim.NewSimulation()
	defer sim.Close()

	housing, err := sim.CreateDevice(icsim.StringHash("StructureCircuitHousing"))
	if err != nil {
		t.Fatal(err)
	}
	chip := sim.CreateChip()
	if err := chip.Load("move r0 1\nyield\nmove r0 2\n"); err != nil {
		t.Fatal(err)
	}
	if err := housing.SetChip(chip); err != nil {
		t.Fatal(err)
	}

	sim.Update()
	line, err := housing.Read(icsim.LineNumberLT)
	if err != nil {
		t.Fatal(err)
	}
	// move (pc 0->1) then yield (pc 1->2) run in the first tick; the
	// program counter now points at the un-executed second move.
	if line != 2 {
		t.Fatalf("housing LineNumberLT = %g, want 2", line)
	}
}

func TestDaylightSensorPublishesSolarEachTick(t *testing.T) {
	sim := icsim.NewSimulation()
	defer sim.Close()

	sensor, err := sim.CreateDevice(icsim.StringHash("StructureDaylightSensor"))
	if err != nil {
		t.Fatal(err)
	}
	sim.Update()
	got, err := sensor.Read(icsim.Solar)
	if err != nil {
		t.Fatal(err)
	}
	if got < 0 || got > 1 {
		t.Fatalf("Read(Solar) = %g, want a value in [0, 1]", got)
	}
	if _, err := sensor.Read(icsim.Horizontal); err != nil {
		t.Fatalf("Read(Horizontal) = %v, want a readable derived angle", err)
	}
	if _, err := sensor.Read(icsim.Vertical); err != nil {
		t.Fatalf("Read(Vertical) = %v, want a readable derived angle", err)
	}
	if err := sensor.Write(icsim.Solar, 0.5); err == nil {
		t.Fatal("expected a daylight sensor to reject a direct write to its own reading")
	}
}

func TestDaylightSensorTracksSchedulerTickNotItsOwnCounter(t *testing.T) {
	sim := icsim.NewSimulation()
	defer sim.Close()

	a, err := sim.CreateDevice(icsim.StringHash("StructureDaylightSensor"))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 150; i++ {
		sim.Update()
	}

	b, err := sim.CreateDevice(icsim.StringHash("StructureDaylightSensor"))
	if err != nil {
		t.Fatal(err)
	}
	sim.Update()

	av, _ := a.Read(icsim.Vertical)
	bv, _ := b.Read(icsim.Vertical)
	if av != bv {
		t.Fatalf("two daylight sensors ticked on the same simulation clock diverged: a=%g b=%g", av, bv)
	}
}

func TestGasSensorReadsAttachedInternalPort(t *testing.T) {
	sim := icsim.NewSimulation()
	defer sim.Close()

	sensor, err := sim.CreateDevice(icsim.StringHash("StructureGasSensor"))
	if err != nil {
		t.Fatal(err)
	}
	net := attach(t, sim, sensor, icsim.Internal, 10)
	net.Mixture.Add(icsim.Oxygen, 1, 300)

	got, err := sensor.Read(icsim.Pressure)
	if err != nil {
		t.Fatal(err)
	}
	if got != net.Pressure() {
		t.Fatalf("sensor.Read(Pressure) = %g, want %g", got, net.Pressure())
	}
}
