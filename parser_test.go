package icsim

import "testing"

func TestParseProgramResolvesLabelsForwardAndBackward(t *testing.T) {
	c := NewICChip(1)
	err := c.Load(`j start
loop:
add r0 r0 1
start:
move r1 1
j loop
`)
	if err != nil {
		t.Fatal(err)
	}
	res := &stubResolver{}
	// j start -> pc=2 (move r1 1), then j loop -> pc=1 (add r0 r0 1)
	c.RunTick(res)
	if v, _ := c.Register(1); v != 1 {
		t.Fatalf("Register(1) = %g, want 1 after jumping to start", v)
	}
}

func TestParseProgramRejectsDuplicateLabel(t *testing.T) {
	c := NewICChip(1)
	err := c.Load("loop:\nmove r0 1\nloop:\nmove r0 2\n")
	if err == nil {
		t.Fatal("expected error for duplicate label")
	}
}

func TestParseProgramRejectsUnknownLabel(t *testing.T) {
	c := NewICChip(1)
	err := c.Load("j nowhere\n")
	if err == nil {
		t.Fatal("expected error for a jump to an undefined label")
	}
}

func TestParseProgramDefineSubstitution(t *testing.T) {
	c := NewICChip(1)
	if err := c.Load("define limit 10\nmove r0 limit\n"); err != nil {
		t.Fatal(err)
	}
	c.RunTick(&stubResolver{})
	if v, _ := c.Register(0); v != 10 {
		t.Fatalf("Register(0) = %g, want 10 (defined constant)", v)
	}
}

func TestParseProgramAliasSubstitution(t *testing.T) {
	c := NewICChip(1)
	if err := c.Load("alias counter r0\nmove counter 5\n"); err != nil {
		t.Fatal(err)
	}
	c.RunTick(&stubResolver{})
	if v, _ := c.Register(0); v != 5 {
		t.Fatalf("Register(0) = %g, want 5 (aliased register)", v)
	}
}

func TestParseProgramHashLiteral(t *testing.T) {
	c := NewICChip(1)
	if err := c.Load(`move r0 HASH("StructureLogicMemory")` + "\n"); err != nil {
		t.Fatal(err)
	}
	c.RunTick(&stubResolver{})
	got, _ := c.Register(0)
	want := float64(StringHash("StructureLogicMemory"))
	if got != want {
		t.Fatalf("Register(0) = %g, want %g (HASH literal)", got, want)
	}
}

func TestParseProgramCommentsAreStripped(t *testing.T) {
	c := NewICChip(1)
	if err := c.Load("move r0 1 # comment\n# whole line comment\nmove r1 2\n"); err != nil {
		t.Fatal(err)
	}
	res := &stubResolver{}
	c.RunTick(res)
	c.RunTick(res)
	if v, _ := c.Register(0); v != 1 {
		t.Fatalf("Register(0) = %g, want 1", v)
	}
	if v, _ := c.Register(1); v != 2 {
		t.Fatalf("Register(1) = %g, want 2", v)
	}
}

func TestParseProgramRegisterNamesSpAndRa(t *testing.T) {
	c := NewICChip(1)
	if err := c.Load("move sp 3\nmove ra 4\n"); err != nil {
		t.Fatal(err)
	}
	res := &stubResolver{}
	c.RunTick(res)
	c.RunTick(res)
	if v, _ := c.Register(spIndex); v != 3 {
		t.Fatalf("Register(sp) = %g, want 3", v)
	}
	if v, _ := c.Register(raIndex); v != 4 {
		t.Fatalf("Register(ra) = %g, want 4", v)
	}
}
