package icsim

import "testing"

func TestChipLoadThenResetClearsRegisters(t *testing.T) {
	c := NewICChip(1)
	if err := c.Load("move r0 5\n"); err != nil {
		t.Fatal(err)
	}
	c.SetRegister(0, 99)
	c.Reset()
	if v, _ := c.Register(0); v != 0 {
		t.Fatalf("Register(0) = %g after Reset, want 0", v)
	}
	if c.ProgramCounter() != 0 {
		t.Fatalf("ProgramCounter() = %d after Reset, want 0", c.ProgramCounter())
	}
}

func TestChipLoadErrorRecordsLineAndLeavesChipUnprogrammed(t *testing.T) {
	c := NewICChip(1)
	err := c.Load("move r0 5\nj nowhere\n")
	if err == nil {
		t.Fatal("expected a load error for a jump to an undefined label")
	}
	if c.ErrorLine() != 2 {
		t.Fatalf("ErrorLine() = %d, want 2", c.ErrorLine())
	}
	if len(c.program) != 0 {
		t.Fatalf("chip holds %d instructions after a failed load, want 0", len(c.program))
	}
}

func TestChipRegisterOutOfRange(t *testing.T) {
	c := NewICChip(1)
	if _, err := c.Register(-1); err == nil {
		t.Fatal("expected error for negative register index")
	}
	if _, err := c.Register(registerCount); err == nil {
		t.Fatal("expected error for register index beyond registerCount")
	}
}

func TestChipExceedsInstructionCapFailsToLoad(t *testing.T) {
	src := ""
	for i := 0; i < maxInstructions+1; i++ {
		src += "move r0 0\n"
	}
	c := NewICChip(1)
	if err := c.Load(src); err == nil {
		t.Fatal("expected load error for a program over the instruction cap")
	}
}

// stubResolver is a minimal deviceResolver for interpreter tests that don't
// need a full SimulationManager.
type stubResolver struct {
	devices map[ReferenceId]*Device
	cables  map[ReferenceId]*CableNetwork
}

func (r *stubResolver) deviceByID(id ReferenceId) (*Device, bool) {
	d, ok := r.devices[id]
	return d, ok
}

func (r *stubResolver) cableNetworkFor(id ReferenceId) (*CableNetwork, bool) {
	n, ok := r.cables[id]
	return n, ok
}

func TestChipRunTickStopsAtYield(t *testing.T) {
	c := NewICChip(1)
	if err := c.Load("move r0 1\nadd r0 r0 1\nyield\nmove r0 99\n"); err != nil {
		t.Fatal(err)
	}
	res := &stubResolver{}
	result := c.RunTick(res)
	if !result.Yielded {
		t.Fatal("expected RunTick to report Yielded at the yield instruction")
	}
	if v, _ := c.Register(0); v != 2 {
		t.Fatalf("Register(0) = %g, want 2 (loop stopped before the post-yield move)", v)
	}
}

func TestChipStackOverflowHalts(t *testing.T) {
	// A program can't hold stackSize+1 pushes under the instruction cap, so
	// loop one push: 64 pushes per 128-step tick overflow on the 9th tick.
	c := NewICChip(1)
	if err := c.Load("push r0\nj 0\n"); err != nil {
		t.Fatal(err)
	}
	res := &stubResolver{}
	result := c.RunTick(res)
	for i := 0; !result.Halted && i < 10; i++ {
		result = c.RunTick(res)
	}
	if !result.Halted {
		t.Fatal("expected chip to halt on stack overflow")
	}
	if !IsRuntimeFault(result.Fault, StackOverflow) {
		t.Fatalf("expected StackOverflow fault, got %v", result.Fault)
	}
}

func TestChipPopUnderflowHalts(t *testing.T) {
	c := NewICChip(1)
	if err := c.Load("pop r0\n"); err != nil {
		t.Fatal(err)
	}
	result := c.RunTick(&stubResolver{})
	if !result.Halted {
		t.Fatal("expected chip to halt on stack underflow")
	}
	if !IsRuntimeFault(result.Fault, StackUnderflow) {
		t.Fatalf("expected StackUnderflow fault, got %v", result.Fault)
	}
}

func TestChipHcfHalts(t *testing.T) {
	c := NewICChip(1)
	if err := c.Load("hcf\n"); err != nil {
		t.Fatal(err)
	}
	result := c.RunTick(&stubResolver{})
	if !result.Halted {
		t.Fatal("expected chip to halt on hcf")
	}
	if !IsRuntimeFault(result.Fault, HcfExecuted) {
		t.Fatalf("expected HcfExecuted fault, got %v", result.Fault)
	}
}
