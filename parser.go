package icsim

import (
	"strconv"
	"strings"

	"github.com/ic10emu/icsim/internal/iclex"
)

// Token types for the IC10 lexer, built on top of the generic iclex
// engine the same way internal/hdl/parse.go builds its pin-spec lexer on
// top of internal/lex.
const (
	tokEOF   = iclex.EOF
	tokIdent iclex.Type = iota
	tokNumber
	tokString // a "..." literal, quotes stripped
	tokNewline
	tokComment
)

func icLexer(src string) iclex.Interface {
	return iclex.New(strings.NewReader(src), lexLine)
}

// tokenizeLine splits one line of source into whitespace-delimited fields,
// using icLexer rather than strings.Fields so that a quoted string
// argument to HASH(...) or STR(...) may contain spaces. Adjacent
// ident/"("/string/")" tokens forming a call like HASH("Struct Name") are
// re-joined into a single field so the rest of the parser can keep treating
// operands as opaque strings.
func tokenizeLine(line string) []string {
	l := icLexer(line)
	var toks []string
	for {
		it := l.Lex()
		switch it.Type {
		case tokEOF, tokNewline:
			return mergeCalls(toks)
		case tokComment:
			continue
		case tokString:
			toks = append(toks, `"`+it.Value.(string)+`"`)
		default:
			toks = append(toks, it.Value.(string))
		}
	}
}

// mergeCalls folds an ident, "(", a quoted string, ")" token run back into
// a single Name("literal") field.
func mergeCalls(toks []string) []string {
	var out []string
	for i := 0; i < len(toks); i++ {
		if i+3 < len(toks) && toks[i+1] == "(" && strings.HasPrefix(toks[i+2], `"`) && toks[i+3] == ")" {
			out = append(out, toks[i]+"("+toks[i+2]+")")
			i += 3
			continue
		}
		out = append(out, toks[i])
	}
	return out
}

func lexLine(l *iclex.Lexer) iclex.StateFn {
	r := l.Next()
	switch {
	case r == rune(iclex.EOF):
		l.Emit(tokEOF, "EOF")
		return lexLine
	case r == '\n':
		l.Emit(tokNewline, "\n")
	case r == '#':
		l.AcceptWhile(func(r rune) bool { return r != '\n' })
		l.Emit(tokComment, "")
	case r == ' ' || r == '\t' || r == '\r':
		l.AcceptWhile(func(r rune) bool { return r == ' ' || r == '\t' || r == '\r' })
	case r == '"':
		return lexQuoted
	case r == '-' || r == '$' || r == '%' || ('0' <= r && r <= '9'):
		return lexNumber
	case isIdentStart(r):
		return lexIdent
	default:
		l.Emit(tokIdent, string(r))
	}
	return nil
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '.' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
}

func isIdentRune(r rune) bool {
	return isIdentStart(r) || ('0' <= r && r <= '9')
}

func lexIdent(l *iclex.Lexer) iclex.StateFn {
	var buf strings.Builder
	buf.WriteRune(l.Current())
	for {
		r := l.Next()
		if !isIdentRune(r) {
			l.Backup()
			break
		}
		buf.WriteRune(r)
	}
	l.Emit(tokIdent, buf.String())
	return nil
}

func lexNumber(l *iclex.Lexer) iclex.StateFn {
	var buf strings.Builder
	buf.WriteRune(l.Current())
	for {
		r := l.Next()
		if ('0' <= r && r <= '9') || r == '.' || r == 'x' || r == 'b' ||
			('a' <= r && r <= 'f') || ('A' <= r && r <= 'F') || r == 'e' || r == 'E' || r == '-' || r == '+' {
			buf.WriteRune(r)
			continue
		}
		l.Backup()
		break
	}
	l.Emit(tokNumber, buf.String())
	return nil
}

func lexQuoted(l *iclex.Lexer) iclex.StateFn {
	var buf strings.Builder
	for {
		r := l.Next()
		if r == rune(iclex.EOF) || r == '"' {
			break
		}
		buf.WriteRune(r)
	}
	l.Emit(tokString, buf.String())
	return nil
}

// operandKind is a closed enumeration of the operand shapes IC10
// instructions accept.
type operandKind int

const (
	opRegister operandKind = iota
	opNumber
	opDevicePin
	opDeviceIndirect
	opLogicType
	opSlotType
	opBatchMode
	opLabel
)

// operand is one decoded instruction argument. Only the fields relevant to
// Kind are meaningful.
type operand struct {
	kind      operandKind
	register  int     // opRegister: register index, possibly after indirection
	indirect  int     // opRegister: number of rr levels of indirection (0 = rN)
	number    float64 // opNumber
	pin       int     // opDevicePin: 0-5, or -1 for db (self)
	indReg    int     // opDeviceIndirect: register holding the device ReferenceId
	logic     LogicType
	slot      LogicSlotType
	batch     BatchMode
	label     string
	raw       string // token text, used to resolve labels/aliases after the symbol table is built
}

// Instruction is one parsed, line-numbered IC10 instruction.
type Instruction struct {
	Op   string
	Args []operand
	Line int
}

// registerAliasIndex resolves the fixed register names.
func registerAliasIndex(name string) (int, bool) {
	switch name {
	case "sp":
		return spIndex, true
	case "ra":
		return raIndex, true
	}
	if len(name) >= 2 && name[0] == 'r' {
		n := name[1:]
		depth := 0
		for len(n) > 0 && n[0] == 'r' {
			depth++
			n = n[1:]
		}
		if idx, err := strconv.Atoi(n); err == nil && idx >= 0 && idx < 16 {
			return idx, true
		}
		_ = depth
	}
	return 0, false
}

// parseRegisterToken parses rN, rrN, rrrN (up to 5 levels), sp, ra into an
// operand. It does not resolve aliases; callers do that first.
func parseRegisterToken(tok string) (operand, bool) {
	if tok == "sp" {
		return operand{kind: opRegister, register: spIndex}, true
	}
	if tok == "ra" {
		return operand{kind: opRegister, register: raIndex}, true
	}
	if len(tok) < 2 || tok[0] != 'r' {
		return operand{}, false
	}
	depth := 0
	rest := tok
	for len(rest) > 1 && rest[0] == 'r' && rest[1] == 'r' {
		depth++
		rest = rest[1:]
	}
	rest = rest[1:]
	idx, err := strconv.Atoi(rest)
	if err != nil || idx < 0 || idx >= 16 {
		return operand{}, false
	}
	if depth > 5 {
		return operand{}, false
	}
	return operand{kind: opRegister, register: idx, indirect: depth}, true
}

func parseDeviceToken(tok string) (operand, bool) {
	if tok == "db" {
		return operand{kind: opDevicePin, pin: -1}, true
	}
	if len(tok) >= 2 && tok[0] == 'd' && tok[1] == 'r' {
		reg, ok := parseRegisterToken(tok[1:])
		if !ok {
			return operand{}, false
		}
		return operand{kind: opDeviceIndirect, indReg: reg.register}, true
	}
	if len(tok) == 2 && tok[0] == 'd' && tok[1] >= '0' && tok[1] <= '5' {
		return operand{kind: opDevicePin, pin: int(tok[1] - '0')}, true
	}
	return operand{}, false
}

func parseNumberToken(tok string) (float64, bool) {
	switch {
	case strings.HasPrefix(tok, "0x"), strings.HasPrefix(tok, "0X"):
		n, err := strconv.ParseInt(tok[2:], 16, 64)
		return float64(n), err == nil
	case strings.HasPrefix(tok, "0b"), strings.HasPrefix(tok, "0B"):
		n, err := strconv.ParseInt(tok[2:], 2, 64)
		return float64(n), err == nil
	case strings.HasPrefix(tok, "$"):
		n, err := strconv.ParseInt(tok[1:], 16, 64)
		return float64(n), err == nil
	case strings.HasPrefix(tok, "%"):
		n, err := strconv.ParseInt(tok[1:], 2, 64)
		return float64(n), err == nil
	default:
		f, err := strconv.ParseFloat(tok, 64)
		return f, err == nil
	}
}

// parseOperand resolves one token into an operand, given the symbol tables
// collected so far (aliases may refer to registers, devices or constants;
// defines are always numeric; labels are resolved once the whole program
// has been scanned).
func parseOperand(tok string, defines map[string]float64, aliases map[string]operand) operand {
	if v, ok := defines[tok]; ok {
		return operand{kind: opNumber, number: v}
	}
	if al, ok := aliases[tok]; ok {
		return al
	}
	if strings.HasPrefix(tok, "HASH(") && strings.HasSuffix(tok, ")") {
		inner := strings.Trim(tok[5:len(tok)-1], "\"")
		return operand{kind: opNumber, number: float64(StringHash(inner))}
	}
	if strings.HasPrefix(tok, "STR(") && strings.HasSuffix(tok, ")") {
		inner := strings.Trim(tok[4:len(tok)-1], "\"")
		var packed int64
		for i := 0; i < len(inner) && i < 6; i++ {
			packed = packed<<8 | int64(inner[i])
		}
		return operand{kind: opNumber, number: float64(packed)}
	}
	if reg, ok := parseRegisterToken(tok); ok {
		return reg
	}
	if dev, ok := parseDeviceToken(tok); ok {
		return dev
	}
	if lt, ok := LogicTypeByName(tok); ok {
		return operand{kind: opLogicType, logic: lt}
	}
	if st, ok := slotTypeByName(tok); ok {
		return operand{kind: opSlotType, slot: st}
	}
	if bm, ok := batchModeByName(tok); ok {
		return operand{kind: opBatchMode, batch: bm}
	}
	if f, ok := parseNumberToken(tok); ok {
		return operand{kind: opNumber, number: f}
	}
	// Anything else is assumed to be a label reference, resolved in a
	// second pass once every label in the program has been seen.
	return operand{kind: opLabel, label: tok, raw: tok}
}

var slotTypeNames = map[string]LogicSlotType{
	"Occupied": SlotOccupied, "OccupantHash": SlotOccupantHash,
	"Quantity": SlotQuantity, "Damage": SlotDamage, "Efficiency": SlotEfficiency,
	"Health": SlotHealth, "Growth": SlotGrowth, "Pressure": SlotPressure,
	"Temperature": SlotTemperature, "Charge": SlotCharge, "ChargeRatio": SlotChargeRatio,
	"Class": SlotClass, "PressureWaste": SlotPressureWaste, "PressureAir": SlotPressureAir,
	"MaxQuantity": SlotMaxQuantity, "Mature": SlotMature, "PrefabHash": SlotPrefabHash,
	"Seeding": SlotSeeding, "LineNumber": SlotLineNumber, "Volume": SlotVolume,
	"Open": SlotOpen, "On": SlotOn, "Lock": SlotLock, "SortingClass": SlotSortingClass,
	"FilterType": SlotFilterType, "ReferenceId": SlotReferenceId,
	"HarvestedHash": SlotHarvestedHash, "Mode": SlotMode,
	"MaturityRatio": SlotMaturityRatio, "SeedingRatio": SlotSeedingRatio,
	"FreeSlots": SlotFreeSlots, "TotalSlots": SlotTotalSlots,
}

func slotTypeByName(name string) (LogicSlotType, bool) {
	st, ok := slotTypeNames[name]
	return st, ok
}

var batchModeNames = map[string]BatchMode{
	"Average": Average, "Sum": Sum, "Minimum": Minimum,
	"Maximum": Maximum, "Force": Force, "Partial": Partial,
}

func batchModeByName(name string) (BatchMode, bool) {
	bm, ok := batchModeNames[name]
	return bm, ok
}

// parseProgram compiles IC10 source into a flat instruction list plus the
// symbol tables needed to resolve device/logic operands at run time.
// Labels, aliases and defines are line-level directives consumed here and
// never appear in the returned instruction list.
func parseProgram(source string) ([]Instruction, map[string]int, map[string]float64, map[string]operand, error) {
	lines := strings.Split(source, "\n")
	labels := make(map[string]int)
	defines := make(map[string]float64)
	aliases := make(map[string]operand)
	var program []Instruction

	// First pass: strip comments, tokenize each line by whitespace, and
	// record label/define/alias directives while assigning instruction
	// indices to every remaining line.
	type rawLine struct {
		lineNo int
		fields []string
	}
	var raws []rawLine
	for i, text := range lines {
		lineNo := i + 1
		if h := strings.IndexByte(text, '#'); h >= 0 {
			text = text[:h]
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if strings.HasSuffix(text, ":") {
			name := strings.TrimSuffix(text, ":")
			if _, dup := labels[name]; dup {
				return nil, nil, nil, nil, newLoadError(lineNo, "duplicate label %q", name)
			}
			labels[name] = len(raws)
			continue
		}
		fields := tokenizeLine(text)
		op := fields[0]
		switch op {
		case "alias":
			if len(fields) != 3 {
				return nil, nil, nil, nil, newLoadError(lineNo, "alias requires 2 operands")
			}
			target := parseOperand(fields[2], defines, aliases)
			aliases[fields[1]] = target
			continue
		case "define":
			if len(fields) != 3 {
				return nil, nil, nil, nil, newLoadError(lineNo, "define requires 2 operands")
			}
			v, ok := parseNumberToken(fields[2])
			if !ok {
				return nil, nil, nil, nil, newLoadError(lineNo, "define value %q is not numeric", fields[2])
			}
			defines[fields[1]] = v
			continue
		}
		raws = append(raws, rawLine{lineNo: lineNo, fields: fields})
		if len(raws) > maxInstructions {
			return nil, nil, nil, nil, newLoadError(lineNo, "program exceeds %d instruction limit", maxInstructions)
		}
	}

	// Second pass: build operands, resolving label references against the
	// now-complete label table.
	for _, rl := range raws {
		inst := Instruction{Op: rl.fields[0], Line: rl.lineNo}
		for _, tok := range rl.fields[1:] {
			o := parseOperand(tok, defines, aliases)
			if o.kind == opLabel {
				if idx, ok := labels[o.label]; ok {
					o.kind = opNumber
					o.number = float64(idx)
				} else {
					return nil, nil, nil, nil, newLoadError(rl.lineNo, "unknown label %q", o.label)
				}
			}
			inst.Args = append(inst.Args, o)
		}
		program = append(program, inst)
	}

	return program, labels, defines, aliases, nil
}
