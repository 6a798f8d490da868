package icsim

import "math"

// approxEqual implements the tolerant floating-point comparison the
// bap/bna-family branches and sap/sna-family compares use in place of exact
// equality: |a-b| ≤ max(|a|,|b|)·1e-8 + 1e-64.
func approxEqual(a, b float64) bool {
	tol := math.Max(math.Abs(a), math.Abs(b))*1e-8 + 1e-64
	return math.Abs(a-b) <= tol
}

// deviceResolver looks a device up by its ReferenceId, and lists the
// members of a cable network. The simulation manager implements it;
// factoring it into an interface keeps the chip interpreter from importing
// manager.go's concrete type.
type deviceResolver interface {
	deviceByID(id ReferenceId) (*Device, bool)
	cableNetworkFor(id ReferenceId) (*CableNetwork, bool)
}

// StepResult reports what happened during one ICChip.Step call.
type StepResult struct {
	Halted  bool
	Fault   error
	Yielded bool
}

// Step executes at most one instruction. It reports Yielded=true (and
// leaves the chip ready to resume at the same or a later pc) for yield and
// sleep; it reports Halted=true once hcf executes or a runtime fault
// occurs.
func (c *ICChip) Step(res deviceResolver) StepResult {
	if c.halted {
		return StepResult{Halted: true, Fault: c.haltCause}
	}
	if c.pc < 0 || c.pc >= len(c.program) {
		return StepResult{Yielded: true}
	}
	inst := c.program[c.pc]
	err := c.execute(inst, res)
	if err != nil {
		c.halted = true
		c.haltCause = err
		return StepResult{Halted: true, Fault: err}
	}
	if c.yielded {
		c.yielded = false
		return StepResult{Yielded: true}
	}
	if c.halted {
		return StepResult{Halted: true}
	}
	return StepResult{}
}

// RunTick executes instructions until the chip yields, halts, or the
// per-tick instruction budget (maxLinePerTick) is exhausted.
func (c *ICChip) RunTick(res deviceResolver) StepResult {
	var last StepResult
	for i := 0; i < maxLinePerTick; i++ {
		last = c.Step(res)
		if last.Halted || last.Yielded {
			return last
		}
	}
	return last
}

func (c *ICChip) execute(inst Instruction, res deviceResolver) error {
	c.pc++ // default: advance to the following line; jumps overwrite this.
	switch inst.Op {
	case "move":
		return c.opMove(inst)
	case "add", "sub", "mul", "div", "mod", "max", "min", "atan2", "log":
		return c.opBinary(inst)
	case "abs", "ceil", "floor", "round", "trunc", "sqrt", "exp", "sin", "cos",
		"tan", "asin", "acos", "atan", "not":
		return c.opUnary(inst)
	case "and", "or", "xor", "nor":
		return c.opBitwise(inst)
	case "slt", "sgt", "sle", "sge", "seq", "sne", "sap", "sna":
		return c.opSetCompare(inst)
	case "j", "jr", "jal":
		return c.opJump(inst)
	case "beq", "bne", "bgt", "bge", "blt", "ble", "bap", "bna",
		"beqz", "bnez", "bgtz", "bgez", "bltz", "blez", "bapz", "bnaz":
		return c.opBranch(inst, false)
	case "breq", "brne", "brgt", "brge", "brlt", "brle", "brap", "brna",
		"breqz", "brnez", "brgtz", "brgez", "brltz", "brlez", "brapz", "brnaz":
		return c.opBranch(inst, true)
	case "push":
		return c.opPush(inst)
	case "pop":
		return c.opPop(inst)
	case "peek":
		return c.opPeek(inst)
	case "l", "s":
		return c.opDeviceIO(inst, res)
	case "ls", "lr":
		return c.opSlotIO(inst, res)
	case "lb", "lbn", "lbs", "lbns":
		return c.opBatchRead(inst, res)
	case "sb", "sbn", "sbs", "sbns":
		return c.opBatchWrite(inst, res)
	case "yield":
		c.yielded = true
		return nil
	case "sleep":
		c.yielded = true
		return nil
	case "hcf":
		c.halted = true
		return newRuntimeFault(HcfExecuted, inst.Line, "hcf executed")
	default:
		return newRuntimeFault(InvalidInstruction, inst.Line, "unknown instruction %q", inst.Op)
	}
}

// set writes v into a destination operand, which must be a register
// (possibly indirect).
func (c *ICChip) set(o operand, v float64, line int) error {
	if o.kind != opRegister {
		return newRuntimeFault(InvalidInstruction, line, "destination operand is not a register")
	}
	idx, err := c.resolveRegisterIndex(o, line)
	if err != nil {
		return err
	}
	c.registers[idx] = v
	return nil
}

// resolveRegisterIndex follows rr-style indirection: rr2 means "the
// register whose index is named by register r2's current value".
func (c *ICChip) resolveRegisterIndex(o operand, line int) (int, error) {
	idx := o.register
	for i := 0; i < o.indirect; i++ {
		v := c.registers[idx]
		idx = int(v)
		if idx < 0 || idx >= registerCount {
			return 0, newRuntimeFault(InvalidInstruction, line, "indirect register index %d out of range", idx)
		}
	}
	return idx, nil
}

// value reads an operand's numeric value: a literal, or a (possibly
// indirect) register.
func (c *ICChip) value(o operand, line int) (float64, error) {
	switch o.kind {
	case opNumber:
		return o.number, nil
	case opRegister:
		idx, err := c.resolveRegisterIndex(o, line)
		if err != nil {
			return 0, err
		}
		return c.registers[idx], nil
	default:
		return 0, newRuntimeFault(InvalidInstruction, line, "operand is not a value")
	}
}

func (c *ICChip) opMove(inst Instruction) error {
	if len(inst.Args) != 2 {
		return newRuntimeFault(InvalidInstruction, inst.Line, "move requires 2 operands")
	}
	v, err := c.value(inst.Args[1], inst.Line)
	if err != nil {
		return err
	}
	return c.set(inst.Args[0], v, inst.Line)
}

func (c *ICChip) opBinary(inst Instruction) error {
	if len(inst.Args) != 3 {
		return newRuntimeFault(InvalidInstruction, inst.Line, "%s requires 3 operands", inst.Op)
	}
	a, err := c.value(inst.Args[1], inst.Line)
	if err != nil {
		return err
	}
	b, err := c.value(inst.Args[2], inst.Line)
	if err != nil {
		return err
	}
	var v float64
	switch inst.Op {
	case "add":
		v = a + b
	case "sub":
		v = a - b
	case "mul":
		v = a * b
	case "div":
		if b == 0 {
			return newRuntimeFault(InvalidInstruction, inst.Line, "division by zero")
		}
		v = a / b
	case "mod":
		if b == 0 {
			return newRuntimeFault(InvalidInstruction, inst.Line, "modulo by zero")
		}
		v = math.Mod(math.Mod(a, b)+b, b)
	case "max":
		v = math.Max(a, b)
	case "min":
		v = math.Min(a, b)
	case "atan2":
		v = math.Atan2(a, b) * 180 / math.Pi
	case "log":
		v = math.Log(a) / math.Log(b)
	}
	return c.set(inst.Args[0], v, inst.Line)
}

func (c *ICChip) opUnary(inst Instruction) error {
	if len(inst.Args) != 2 {
		return newRuntimeFault(InvalidInstruction, inst.Line, "%s requires 2 operands", inst.Op)
	}
	a, err := c.value(inst.Args[1], inst.Line)
	if err != nil {
		return err
	}
	var v float64
	switch inst.Op {
	case "abs":
		v = math.Abs(a)
	case "ceil":
		v = math.Ceil(a)
	case "floor":
		v = math.Floor(a)
	case "round":
		v = math.Round(a)
	case "trunc":
		v = math.Trunc(a)
	case "sqrt":
		v = math.Sqrt(a)
	case "exp":
		v = math.Exp(a)
	case "sin":
		v = math.Sin(a * math.Pi / 180)
	case "cos":
		v = math.Cos(a * math.Pi / 180)
	case "tan":
		v = math.Tan(a * math.Pi / 180)
	case "asin":
		v = math.Asin(a) * 180 / math.Pi
	case "acos":
		v = math.Acos(a) * 180 / math.Pi
	case "atan":
		v = math.Atan(a) * 180 / math.Pi
	case "not":
		if a == 0 {
			v = 1
		}
	}
	return c.set(inst.Args[0], v, inst.Line)
}

func (c *ICChip) opBitwise(inst Instruction) error {
	if len(inst.Args) != 3 {
		return newRuntimeFault(InvalidInstruction, inst.Line, "%s requires 3 operands", inst.Op)
	}
	a, err := c.value(inst.Args[1], inst.Line)
	if err != nil {
		return err
	}
	b, err := c.value(inst.Args[2], inst.Line)
	if err != nil {
		return err
	}
	ai, bi := int64(a), int64(b)
	var v int64
	switch inst.Op {
	case "and":
		v = ai & bi
	case "or":
		v = ai | bi
	case "xor":
		v = ai ^ bi
	case "nor":
		v = ^(ai | bi)
	}
	return c.set(inst.Args[0], float64(v), inst.Line)
}

func (c *ICChip) opSetCompare(inst Instruction) error {
	if len(inst.Args) != 3 {
		return newRuntimeFault(InvalidInstruction, inst.Line, "%s requires 3 operands", inst.Op)
	}
	a, err := c.value(inst.Args[1], inst.Line)
	if err != nil {
		return err
	}
	b, err := c.value(inst.Args[2], inst.Line)
	if err != nil {
		return err
	}
	cond := compareResult(inst.Op, a, b)
	v := 0.0
	if cond {
		v = 1
	}
	return c.set(inst.Args[0], v, inst.Line)
}

func compareResult(op string, a, b float64) bool {
	switch op {
	case "slt", "blt", "brlt":
		return a < b
	case "sgt", "bgt", "brgt":
		return a > b
	case "sle", "ble", "brle":
		return a <= b
	case "sge", "bge", "brge":
		return a >= b
	case "seq", "beq", "breq":
		return a == b
	case "sne", "bne", "brne":
		return a != b
	case "sap", "bap", "brap":
		return approxEqual(a, b)
	case "sna", "bna", "brna":
		return !approxEqual(a, b)
	case "bltz", "brltz":
		return a < 0
	case "bgtz", "brgtz":
		return a > 0
	case "blez", "brlez":
		return a <= 0
	case "bgez", "brgez":
		return a >= 0
	case "beqz", "breqz":
		return a == 0
	case "bnez", "brnez":
		return a != 0
	case "bapz", "brapz":
		return approxEqual(a, 0)
	case "bnaz", "brnaz":
		return !approxEqual(a, 0)
	}
	return false
}

func (c *ICChip) opJump(inst Instruction) error {
	switch inst.Op {
	case "j":
		if len(inst.Args) != 1 {
			return newRuntimeFault(InvalidInstruction, inst.Line, "j requires 1 operand")
		}
		target, err := c.value(inst.Args[0], inst.Line)
		if err != nil {
			return err
		}
		c.pc = int(target)
	case "jal":
		if len(inst.Args) != 1 {
			return newRuntimeFault(InvalidInstruction, inst.Line, "jal requires 1 operand")
		}
		target, err := c.value(inst.Args[0], inst.Line)
		if err != nil {
			return err
		}
		c.registers[raIndex] = float64(c.pc)
		c.pc = int(target)
	case "jr":
		if len(inst.Args) != 1 {
			return newRuntimeFault(InvalidInstruction, inst.Line, "jr requires 1 operand")
		}
		offset, err := c.value(inst.Args[0], inst.Line)
		if err != nil {
			return err
		}
		c.pc += int(offset) - 1 // -1 compensates the unconditional pc++ already applied.
	}
	return nil
}

// opBranch evaluates one of the many b*/br* comparison-or-zero-test
// branches. relative controls whether the final operand is a line offset
// (br family) or an absolute line / label (b family).
func (c *ICChip) opBranch(inst Instruction, relative bool) error {
	zeroTest := len(inst.Op) > 0 && inst.Op[len(inst.Op)-1] == 'z'
	var cond bool
	var targetOperand operand
	if zeroTest {
		if len(inst.Args) != 2 {
			return newRuntimeFault(InvalidInstruction, inst.Line, "%s requires 2 operands", inst.Op)
		}
		a, err := c.value(inst.Args[0], inst.Line)
		if err != nil {
			return err
		}
		cond = compareResult(inst.Op, a, 0)
		targetOperand = inst.Args[1]
	} else {
		if len(inst.Args) != 3 {
			return newRuntimeFault(InvalidInstruction, inst.Line, "%s requires 3 operands", inst.Op)
		}
		a, err := c.value(inst.Args[0], inst.Line)
		if err != nil {
			return err
		}
		b, err := c.value(inst.Args[1], inst.Line)
		if err != nil {
			return err
		}
		cond = compareResult(inst.Op, a, b)
		targetOperand = inst.Args[2]
	}
	if !cond {
		return nil
	}
	target, err := c.value(targetOperand, inst.Line)
	if err != nil {
		return err
	}
	if relative {
		c.pc += int(target) - 1
	} else {
		c.pc = int(target)
	}
	return nil
}

func (c *ICChip) opPush(inst Instruction) error {
	if len(inst.Args) != 1 {
		return newRuntimeFault(InvalidInstruction, inst.Line, "push requires 1 operand")
	}
	v, err := c.value(inst.Args[0], inst.Line)
	if err != nil {
		return err
	}
	sp := int(c.registers[spIndex])
	if sp < 0 || sp >= stackSize {
		return newRuntimeFault(StackOverflow, inst.Line, "stack overflow at sp=%d", sp)
	}
	c.stack[sp] = v
	c.registers[spIndex] = float64(sp + 1)
	return nil
}

func (c *ICChip) opPop(inst Instruction) error {
	if len(inst.Args) != 1 {
		return newRuntimeFault(InvalidInstruction, inst.Line, "pop requires 1 operand")
	}
	sp := int(c.registers[spIndex]) - 1
	if sp < 0 {
		return newRuntimeFault(StackUnderflow, inst.Line, "stack underflow")
	}
	c.registers[spIndex] = float64(sp)
	return c.set(inst.Args[0], c.stack[sp], inst.Line)
}

func (c *ICChip) opPeek(inst Instruction) error {
	if len(inst.Args) != 1 {
		return newRuntimeFault(InvalidInstruction, inst.Line, "peek requires 1 operand")
	}
	sp := int(c.registers[spIndex]) - 1
	if sp < 0 || sp >= stackSize {
		return newRuntimeFault(StackUnderflow, inst.Line, "stack underflow")
	}
	return c.set(inst.Args[0], c.stack[sp], inst.Line)
}

// resolveDevice follows a device operand (d0-d5, db, or dr<reg>) to a live
// Device.
func (c *ICChip) resolveDevice(o operand, line int, res deviceResolver) (*Device, error) {
	switch o.kind {
	case opDevicePin:
		if c.housing == nil {
			return nil, newRuntimeFault(DeviceNotFound, line, "chip has no housing")
		}
		if o.pin == -1 {
			return c.housing, nil
		}
		dev, err := c.housing.GetPin(o.pin)
		if err != nil {
			return nil, err
		}
		if dev == nil {
			return nil, newRuntimeFault(DeviceNotFound, line, "pin d%d is unwired", o.pin)
		}
		return dev, nil
	case opDeviceIndirect:
		id := ReferenceId(int32(c.registers[o.indReg]))
		dev, ok := res.deviceByID(id)
		if !ok {
			return nil, newRuntimeFault(DeviceNotFound, line, "no device with reference id %d", id)
		}
		return dev, nil
	default:
		return nil, newRuntimeFault(InvalidInstruction, line, "operand is not a device reference")
	}
}

func (c *ICChip) opDeviceIO(inst Instruction, res deviceResolver) error {
	if len(inst.Args) != 3 {
		return newRuntimeFault(InvalidInstruction, inst.Line, "%s requires 3 operands", inst.Op)
	}
	if inst.Op == "l" {
		dev, err := c.resolveDevice(inst.Args[1], inst.Line, res)
		if err != nil {
			return err
		}
		if inst.Args[2].kind != opLogicType {
			return newRuntimeFault(InvalidLogicType, inst.Line, "l requires a logic type operand")
		}
		v, err := dev.Read(inst.Args[2].logic)
		if err != nil {
			return err
		}
		return c.set(inst.Args[0], v, inst.Line)
	}
	// s dev LogicType value
	dev, err := c.resolveDevice(inst.Args[0], inst.Line, res)
	if err != nil {
		return err
	}
	if inst.Args[1].kind != opLogicType {
		return newRuntimeFault(InvalidLogicType, inst.Line, "s requires a logic type operand")
	}
	v, err := c.value(inst.Args[2], inst.Line)
	if err != nil {
		return err
	}
	return dev.Write(inst.Args[1].logic, v)
}

func (c *ICChip) opSlotIO(inst Instruction, res deviceResolver) error {
	if inst.Op == "ls" {
		if len(inst.Args) != 4 {
			return newRuntimeFault(InvalidInstruction, inst.Line, "ls requires 4 operands")
		}
		dev, err := c.resolveDevice(inst.Args[1], inst.Line, res)
		if err != nil {
			return err
		}
		idx, err := c.value(inst.Args[2], inst.Line)
		if err != nil {
			return err
		}
		if inst.Args[3].kind != opSlotType {
			return newRuntimeFault(InvalidLogicType, inst.Line, "ls requires a slot type operand")
		}
		v, err := dev.ReadSlot(int(idx), inst.Args[3].slot)
		if err != nil {
			return err
		}
		return c.set(inst.Args[0], v, inst.Line)
	}
	// lr reg dev slotIndex reagentMode (not modeled beyond slot-quantity fallback)
	if len(inst.Args) != 4 {
		return newRuntimeFault(InvalidInstruction, inst.Line, "lr requires 4 operands")
	}
	dev, err := c.resolveDevice(inst.Args[1], inst.Line, res)
	if err != nil {
		return err
	}
	idx, err := c.value(inst.Args[2], inst.Line)
	if err != nil {
		return err
	}
	v, err := dev.ReadSlot(int(idx), SlotQuantity)
	if err != nil {
		return err
	}
	return c.set(inst.Args[0], v, inst.Line)
}

// batchFilter resolves the prefabHash (and, for the n-suffixed opcodes,
// nameHash) operands shared by every lb*/sb* instruction and reports
// whether a device qualifies as a batch target. The -n variants require
// both hashes to match (an intersection of the prefab-hash and
// name-hash candidate sets), not a single combined value.
type batchFilter struct {
	prefabHash PrefabHash
	nameHash   NameHash
	named      bool
}

func (f batchFilter) matches(dev *Device) bool {
	if dev.Prefab.Hash != f.prefabHash {
		return false
	}
	if f.named && dev.NameHash() != f.nameHash {
		return false
	}
	return true
}

// parseBatchFilter reads the leading prefabHash operand, and (for lbn,
// lbns, sbn, sbns) the nameHash operand that follows it, returning the
// index of the first unconsumed operand.
func (c *ICChip) parseBatchFilter(inst Instruction, argc int) (batchFilter, int, error) {
	named := inst.Op == "lbn" || inst.Op == "lbns" || inst.Op == "sbn" || inst.Op == "sbns"
	prefabHash, err := c.value(inst.Args[argc], inst.Line)
	if err != nil {
		return batchFilter{}, 0, err
	}
	argc++
	f := batchFilter{prefabHash: PrefabHash(int32(prefabHash)), named: named}
	if named {
		nameHash, err := c.value(inst.Args[argc], inst.Line)
		if err != nil {
			return batchFilter{}, 0, err
		}
		argc++
		f.nameHash = NameHash(int32(nameHash))
	}
	return f, argc, nil
}

func (c *ICChip) opBatchRead(inst Instruction, res deviceResolver) error {
	slotted := inst.Op == "lbs" || inst.Op == "lbns"
	named := inst.Op == "lbn" || inst.Op == "lbns"
	// dest + prefabHash + logicType/slotType, plus nameHash (named) and
	// slotIndex (slotted) when the opcode carries them; batchMode is
	// always optional, defaulting to Average.
	required := 3
	if named {
		required++
	}
	if slotted {
		required++
	}
	if len(inst.Args) < required {
		return newRuntimeFault(InvalidInstruction, inst.Line, "%s requires at least %d operands", inst.Op, required)
	}
	filter, argc, err := c.parseBatchFilter(inst, 1)
	if err != nil {
		return err
	}

	var slotIndex int
	var slotArg operand
	var ltArg operand
	if slotted {
		v, err := c.value(inst.Args[argc], inst.Line)
		if err != nil {
			return err
		}
		slotIndex = int(v)
		argc++
		slotArg = inst.Args[argc]
		if slotArg.kind != opSlotType {
			return newRuntimeFault(InvalidLogicType, inst.Line, "%s requires a slot type operand", inst.Op)
		}
		argc++
	} else {
		ltArg = inst.Args[argc]
		if ltArg.kind != opLogicType {
			return newRuntimeFault(InvalidLogicType, inst.Line, "%s requires a logic type operand", inst.Op)
		}
		argc++
	}

	batch := Average
	if argc < len(inst.Args) {
		if inst.Args[argc].kind != opBatchMode {
			return newRuntimeFault(InvalidInstruction, inst.Line, "%s requires a batch mode operand", inst.Op)
		}
		batch = inst.Args[argc].batch
	}

	var values []float64
	for _, dev := range c.batchCandidates(res) {
		if !filter.matches(dev) {
			continue
		}
		var v float64
		var err error
		if slotted {
			v, err = dev.ReadSlot(slotIndex, slotArg.slot)
		} else {
			v, err = dev.Read(ltArg.logic)
		}
		if err != nil {
			continue
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return newRuntimeFault(DeviceNotFound, inst.Line, "no devices matching %s filter found on network", inst.Op)
	}
	return c.set(inst.Args[0], batch.Reduce(values), inst.Line)
}

func (c *ICChip) opBatchWrite(inst Instruction, res deviceResolver) error {
	slotted := inst.Op == "sbs" || inst.Op == "sbns"
	required := 3
	if slotted {
		required++
	}
	if inst.Op == "sbn" || inst.Op == "sbns" {
		required++
	}
	if len(inst.Args) != required {
		return newRuntimeFault(InvalidInstruction, inst.Line, "%s requires %d operands", inst.Op, required)
	}
	filter, argc, err := c.parseBatchFilter(inst, 0)
	if err != nil {
		return err
	}

	var slotIndex int
	var slotArg operand
	var ltArg operand
	if slotted {
		v, err := c.value(inst.Args[argc], inst.Line)
		if err != nil {
			return err
		}
		slotIndex = int(v)
		argc++
		slotArg = inst.Args[argc]
		if slotArg.kind != opSlotType {
			return newRuntimeFault(InvalidLogicType, inst.Line, "%s requires a slot type operand", inst.Op)
		}
		argc++
	} else {
		ltArg = inst.Args[argc]
		if ltArg.kind != opLogicType {
			return newRuntimeFault(InvalidLogicType, inst.Line, "%s requires a logic type operand", inst.Op)
		}
		argc++
	}

	v, err := c.value(inst.Args[argc], inst.Line)
	if err != nil {
		return err
	}

	wrote := false
	for _, dev := range c.batchCandidates(res) {
		if !filter.matches(dev) {
			continue
		}
		var writeErr error
		if slotted {
			writeErr = dev.WriteSlot(slotIndex, slotArg.slot, v)
		} else {
			writeErr = dev.Write(ltArg.logic, v)
		}
		if writeErr == nil {
			wrote = true
		}
	}
	if !wrote {
		return newRuntimeFault(DeviceNotFound, inst.Line, "no devices matching %s filter found on network", inst.Op)
	}
	return nil
}

// batchCandidates lists the devices reachable from this chip's housing's
// cable network, the network batch l/s instructions address.
func (c *ICChip) batchCandidates(res deviceResolver) []*Device {
	if c.housing == nil {
		return nil
	}
	net, ok := res.cableNetworkFor(c.housing.ID)
	if !ok {
		return nil
	}
	var out []*Device
	for _, id := range net.DeviceIDs() {
		if dev, ok := res.deviceByID(id); ok {
			out = append(out, dev)
		}
	}
	return out
}
