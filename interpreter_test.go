package icsim

import "testing"

func newTestHousing(t *testing.T) (*Device, *ICChip) {
	t.Helper()
	info := &PrefabInfo{
		Name:          "test.interp.housing." + t.Name(),
		Readable:      map[LogicType]bool{},
		Writable:      map[LogicType]bool{},
		HasChipSocket: true,
	}
	RegisterPrefab(info)
	housing := newDevice(1, info)
	chip := NewICChip(2)
	if err := housing.SetChip(chip); err != nil {
		t.Fatal(err)
	}
	return housing, chip
}

func TestInterpreterDeviceWriteAndRead(t *testing.T) {
	housing, chip := newTestHousing(t)
	memInfo := testPrefab(t, "test.interp.mem", []LogicType{Setting}, []LogicType{Setting})
	mem := newDevice(3, memInfo)
	if err := housing.SetPin(0, mem); err != nil {
		t.Fatal(err)
	}

	if err := chip.Load("move r0 7\ns d0 Setting r0\nl r1 d0 Setting\n"); err != nil {
		t.Fatal(err)
	}
	res := &stubResolver{devices: map[ReferenceId]*Device{1: housing, 3: mem}}
	chip.RunTick(res)

	got, err := mem.Read(Setting)
	if err != nil {
		t.Fatal(err)
	}
	if got != 7 {
		t.Fatalf("mem.Read(Setting) = %g, want 7", got)
	}
	if v, _ := chip.Register(1); v != 7 {
		t.Fatalf("Register(1) = %g, want 7 (round-tripped through l)", v)
	}
}

func TestInterpreterUnwiredPinFaults(t *testing.T) {
	_, chip := newTestHousing(t)
	if err := chip.Load("l r0 d0 Setting\n"); err != nil {
		t.Fatal(err)
	}
	res := &stubResolver{}
	result := chip.RunTick(res)
	if !result.Halted {
		t.Fatal("expected chip to halt reading through an unwired pin")
	}
	if !IsRuntimeFault(result.Fault, DeviceNotFound) {
		t.Fatalf("expected DeviceNotFound fault, got %v", result.Fault)
	}
}

func TestInterpreterDeviceIndirectResolvesByReferenceId(t *testing.T) {
	housing, chip := newTestHousing(t)
	memInfo := testPrefab(t, "test.interp.mem.indirect", []LogicType{Setting}, []LogicType{Setting})
	mem := newDevice(5, memInfo)
	mem.Write(Setting, 3)

	if err := chip.Load("move r0 5\nl r1 dr0 Setting\n"); err != nil {
		t.Fatal(err)
	}
	res := &stubResolver{devices: map[ReferenceId]*Device{1: housing, 5: mem}}
	chip.RunTick(res)
	if v, _ := chip.Register(1); v != 3 {
		t.Fatalf("Register(1) = %g, want 3 (resolved via dr0)", v)
	}
}

func TestInterpreterBatchReadAveragesAcrossNetwork(t *testing.T) {
	housing, chip := newTestHousing(t)
	memInfo := testPrefab(t, "test.interp.mem.batch", []LogicType{Setting}, []LogicType{Setting})
	a := newDevice(10, memInfo)
	b := newDevice(11, memInfo)
	a.Write(Setting, 4)
	b.Write(Setting, 8)

	net := newCableNetwork(1)
	net.addMember(10)
	net.addMember(11)

	if err := chip.Load(`move r0 HASH("test.interp.mem.batch")` + "\nlb r1 r0 Setting Average\n"); err != nil {
		t.Fatal(err)
	}
	res := &stubResolver{
		devices: map[ReferenceId]*Device{1: housing, 10: a, 11: b},
		cables:  map[ReferenceId]*CableNetwork{1: net},
	}
	result := chip.RunTick(res)
	if result.Halted {
		t.Fatalf("unexpected halt: %v", result.Fault)
	}
	if v, _ := chip.Register(1); v != 6 {
		t.Fatalf("Register(1) = %g, want 6 (average of 4 and 8)", v)
	}
}

func TestInterpreterSetCompareAndBranch(t *testing.T) {
	c := NewICChip(1)
	if err := c.Load(`slt r0 3 5
move r1 0
beqz r0 skip
move r1 1
skip:
move r2 9
`); err != nil {
		t.Fatal(err)
	}
	res := &stubResolver{}
	c.RunTick(res)
	if v, _ := c.Register(0); v != 1 {
		t.Fatalf("slt r0 3 5 -> Register(0) = %g, want 1", v)
	}
	if v, _ := c.Register(1); v != 1 {
		t.Fatalf("Register(1) = %g, want 1 (branch not taken since r0 != 0)", v)
	}
	if v, _ := c.Register(2); v != 9 {
		t.Fatalf("Register(2) = %g, want 9", v)
	}
}

func TestInterpreterApproxEqualToleratesFloatingDrift(t *testing.T) {
	if !approxEqual(1.0, 1.0+1e-12) {
		t.Fatal("approxEqual should tolerate a tiny relative difference")
	}
	if approxEqual(1.0, 1.1) {
		t.Fatal("approxEqual should not tolerate a 10% difference")
	}
	if !approxEqual(0, 0) {
		t.Fatal("approxEqual(0, 0) should be true")
	}
}

func TestInterpreterBatchReadByNameFiltersOutOtherInstances(t *testing.T) {
	housing, chip := newTestHousing(t)
	memInfo := testPrefab(t, "test.interp.mem.byname", []LogicType{Setting}, []LogicType{Setting})
	named := newDevice(20, memInfo)
	named.SetName("Tank A")
	named.Write(Setting, 11)
	other := newDevice(21, memInfo)
	other.SetName("Tank B")
	other.Write(Setting, 99)

	net := newCableNetwork(2)
	net.addMember(20)
	net.addMember(21)

	src := `move r0 HASH("test.interp.mem.byname")` + "\n" +
		`move r1 HASH("Tank A")` + "\n" +
		"lbn r2 r0 r1 Setting Average\n"
	if err := chip.Load(src); err != nil {
		t.Fatal(err)
	}
	res := &stubResolver{
		devices: map[ReferenceId]*Device{1: housing, 20: named, 21: other},
		cables:  map[ReferenceId]*CableNetwork{1: net},
	}
	result := chip.RunTick(res)
	if result.Halted {
		t.Fatalf("unexpected halt: %v", result.Fault)
	}
	if v, _ := chip.Register(2); v != 11 {
		t.Fatalf("Register(2) = %g, want 11 (only \"Tank A\" should match lbn)", v)
	}
}

func TestInterpreterBatchWriteByNameOnlyTouchesMatchingDevice(t *testing.T) {
	housing, chip := newTestHousing(t)
	memInfo := testPrefab(t, "test.interp.mem.sbn", []LogicType{Setting}, []LogicType{Setting})
	named := newDevice(22, memInfo)
	named.SetName("Tank A")
	other := newDevice(23, memInfo)
	other.SetName("Tank B")

	net := newCableNetwork(3)
	net.addMember(22)
	net.addMember(23)

	src := `move r0 HASH("test.interp.mem.sbn")` + "\n" +
		`move r1 HASH("Tank A")` + "\n" +
		"sbn r0 r1 Setting 7\n"
	if err := chip.Load(src); err != nil {
		t.Fatal(err)
	}
	res := &stubResolver{
		devices: map[ReferenceId]*Device{1: housing, 22: named, 23: other},
		cables:  map[ReferenceId]*CableNetwork{1: net},
	}
	result := chip.RunTick(res)
	if result.Halted {
		t.Fatalf("unexpected halt: %v", result.Fault)
	}
	if v, _ := named.Read(Setting); v != 7 {
		t.Fatalf("named.Read(Setting) = %g, want 7", v)
	}
	if v, _ := other.Read(Setting); v != 0 {
		t.Fatalf("other.Read(Setting) = %g, want 0 (sbn must not touch a non-matching name)", v)
	}
}

func TestInterpreterBatchReadSlotTargetsSlotIndex(t *testing.T) {
	housing, chip := newTestHousing(t)
	slotInfo := &PrefabInfo{
		Name:     "test.interp.slotted",
		Readable: map[LogicType]bool{},
		Writable: map[LogicType]bool{},
		Slots:    []SlotSpec{{}, {}},
	}
	RegisterPrefab(slotInfo)
	dev := newDevice(24, slotInfo)
	dev.InsertItemIntoSlot(0, &Item{Prefab: slotInfo, Quantity: 3})
	dev.InsertItemIntoSlot(1, &Item{Prefab: slotInfo, Quantity: 40})

	net := newCableNetwork(4)
	net.addMember(24)

	src := `move r0 HASH("test.interp.slotted")` + "\n" +
		"lbs r1 r0 1 Quantity Average\n"
	if err := chip.Load(src); err != nil {
		t.Fatal(err)
	}
	res := &stubResolver{
		devices: map[ReferenceId]*Device{1: housing, 24: dev},
		cables:  map[ReferenceId]*CableNetwork{1: net},
	}
	result := chip.RunTick(res)
	if result.Halted {
		t.Fatalf("unexpected halt: %v", result.Fault)
	}
	if v, _ := chip.Register(1); v != 40 {
		t.Fatalf("Register(1) = %g, want 40 (slot index 1, not slot 0's quantity of 3)", v)
	}
}

func TestInterpreterBatchWriteSlotTargetsSlotIndex(t *testing.T) {
	housing, chip := newTestHousing(t)
	slotInfo := &PrefabInfo{
		Name:     "test.interp.slotted.write",
		Readable: map[LogicType]bool{},
		Writable: map[LogicType]bool{},
		Slots:    []SlotSpec{{}, {}},
	}
	RegisterPrefab(slotInfo)
	dev := newDevice(25, slotInfo)
	dev.InsertItemIntoSlot(0, &Item{Prefab: slotInfo, Quantity: 3})
	dev.InsertItemIntoSlot(1, &Item{Prefab: slotInfo, Quantity: 40})

	net := newCableNetwork(5)
	net.addMember(25)

	src := `move r0 HASH("test.interp.slotted.write")` + "\n" +
		"sbs r0 1 Quantity 99\n"
	if err := chip.Load(src); err != nil {
		t.Fatal(err)
	}
	res := &stubResolver{
		devices: map[ReferenceId]*Device{1: housing, 25: dev},
		cables:  map[ReferenceId]*CableNetwork{1: net},
	}
	result := chip.RunTick(res)
	if result.Halted {
		t.Fatalf("unexpected halt: %v", result.Fault)
	}
	if q, _ := dev.ReadSlot(0, SlotQuantity); q != 3 {
		t.Fatalf("slot 0 quantity = %g, want unchanged 3", q)
	}
	if q, _ := dev.ReadSlot(1, SlotQuantity); q != 99 {
		t.Fatalf("slot 1 quantity = %g, want 99", q)
	}
}

func TestInterpreterUnknownOpcodeFaults(t *testing.T) {
	// parseProgram doesn't validate mnemonics against a known set (only
	// labels, aliases and defines get load-time checks), so an unknown
	// opcode loads cleanly and only faults once the interpreter reaches it.
	c := NewICChip(1)
	if err := c.Load("bogus r1 r2\n"); err != nil {
		t.Fatal(err)
	}
	result := c.RunTick(&stubResolver{})
	if !result.Halted {
		t.Fatal("expected halt on unknown opcode")
	}
	if !IsRuntimeFault(result.Fault, InvalidInstruction) {
		t.Fatalf("expected InvalidInstruction fault, got %v", result.Fault)
	}
}
