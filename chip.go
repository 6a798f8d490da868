package icsim

// Register counts and reserved indices for the IC10 register machine:
// r0-r15 are general purpose, r16 is the stack pointer (sp), r17 is the
// return address (ra).
const (
	registerCount = 18
	stackSize     = 512
	spIndex       = 16
	raIndex       = 17

	// maxInstructions is the per-program instruction cap enforced at
	// parse time.
	maxInstructions = 128

	// maxLinePerTick is the number of instructions a chip may execute in
	// a single simulation tick before yielding.
	maxLinePerTick = 128
)

// ICChip is the state of one IC10 programmable chip: its registers, stack,
// program counter and parsed program. A chip with no program loaded is
// inert; Load compiles source text into instructions, replacing whatever
// program was previously loaded.
type ICChip struct {
	ID ReferenceId

	registers [registerCount]float64
	stack     [stackSize]float64
	pc        int

	program    []Instruction
	labels     map[string]int
	defines    map[string]float64
	aliases    map[string]operand

	source    string
	halted    bool
	haltCause error
	errorLine int // -1 when no load error is pending

	sleepUntilTick int64
	yielded        bool

	// housing is the device this chip is currently seated in, used to
	// resolve db (self) and d0-d5 (housing pin) operands. nil until
	// Device.SetChip seats it.
	housing *Device
}

// NewICChip creates an unprogrammed chip.
func NewICChip(id ReferenceId) *ICChip {
	return &ICChip{
		ID:        id,
		labels:    make(map[string]int),
		defines:   make(map[string]float64),
		aliases:   make(map[string]operand),
		errorLine: -1,
	}
}

// Load compiles source into the chip's program, resetting its registers,
// stack, program counter and halted state. A LoadError installs nothing:
// any previously loaded program stays in place, and the offending line is
// recorded in ErrorLine.
func (c *ICChip) Load(source string) error {
	prog, labels, defines, aliases, err := parseProgram(source)
	if err != nil {
		c.errorLine = errorLine(err)
		return err
	}
	c.source = source
	c.program = prog
	c.labels = labels
	c.defines = defines
	c.aliases = aliases
	c.errorLine = -1
	c.Reset()
	return nil
}

// Reset zeroes every register and the stack pointer, rewinds the program
// counter to 0, and clears the halted flag. The loaded program itself is
// untouched.
func (c *ICChip) Reset() {
	c.registers = [registerCount]float64{}
	c.stack = [stackSize]float64{}
	c.pc = 0
	c.halted = false
	c.haltCause = nil
	c.yielded = false
	c.sleepUntilTick = 0
}

// Source returns the last successfully loaded program text.
func (c *ICChip) Source() string { return c.source }

// ErrorLine returns the 1-based line of the most recent load failure, or
// -1 if the currently loaded program compiled cleanly.
func (c *ICChip) ErrorLine() int { return c.errorLine }

// Halted reports whether the chip has stopped executing (hcf, or a
// runtime fault).
func (c *ICChip) Halted() bool { return c.halted }

// HaltCause returns the fault that halted the chip, if any.
func (c *ICChip) HaltCause() error { return c.haltCause }

// ProgramCounter returns the index of the next instruction to execute.
func (c *ICChip) ProgramCounter() int { return c.pc }

// Register returns the value of general-purpose register index (0-15), sp
// (16) or ra (17).
func (c *ICChip) Register(index int) (float64, error) {
	if index < 0 || index >= registerCount {
		return 0, newRuntimeFault(InvalidInstruction, c.pc, "register index %d out of range", index)
	}
	return c.registers[index], nil
}

// SetRegister writes a register directly, bypassing normal execution; used
// by the manager and tests to seed initial state.
func (c *ICChip) SetRegister(index int, value float64) error {
	if index < 0 || index >= registerCount {
		return newRuntimeFault(InvalidInstruction, c.pc, "register index %d out of range", index)
	}
	c.registers[index] = value
	return nil
}

func errorLine(err error) int {
	if le, ok := err.(*LoadError); ok {
		return le.Line
	}
	return -1
}
