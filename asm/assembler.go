// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ezrec/urisc/internal"
	"github.com/ezrec/urisc/isa"
)

// SCRATCH_REGISTER is the register used by the .string and .asciz expansions.
const SCRATCH_REGISTER = 0

// MACRO_DEPTH is the deepest nesting of macro invocations.
const MACRO_DEPTH = 16

// Macro is a macro definition.
type Macro struct {
	LineNo int      // Line number of the first body line.
	Args   []string // Argument names.
	Lines  []string // Body text, without comments.
}

type entryKind int

const (
	ENTRY_INST = entryKind(0) // One instruction word.
	ENTRY_TEXT = entryKind(1) // LI/ST pairs, one per character.
	ENTRY_HALT = entryKind(2) // One HALT word.
	ENTRY_WORD = entryKind(3) // One raw word.
)

// entry is a source construct after the first pass, with the address and
// number of words it will occupy.
type entry struct {
	kind   entryKind
	lineNo int
	line   string
	ip     int
	size   int
	code   string   // Source text without labels and comments.
	words  []string // Directive words, for the listing.
	text   string   // Unescaped .string and .asciz text.
}

// Assembler is a two pass assembler for the μRISC system.
type Assembler struct {
	Verbose bool // If set, verbosely logs the assembler actions.

	predefine map[string]string // Predefines
	Label     map[string]int    // Map of labels to word addresses.
	Equate    map[string]string // Map of equates.
	Macro     map[string]*Macro // Map of macros.

	entries    []entry
	expansions int
}

// Predefine defines a new equate, or redefines an existing predefine,
// for all subsequent Parse calls.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

var (
	reLabel     = regexp.MustCompile(`^(\.?[A-Za-z_][A-Za-z0-9_]*):(\s+|$)`)
	reIdent     = regexp.MustCompile(`^\.?[A-Za-z_][A-Za-z0-9_]*$`)
	reString    = regexp.MustCompile(`^(?i)\.(string|asciz)\s+"(.*)"$`)
	reRegister  = regexp.MustCompile(`^[rR]?([0-7])$`)
	reCharacter = regexp.MustCompile(`'(\\[^']+|[^'\\])'`)
	reParen     = regexp.MustCompile(`\$\([^\$]*\)`)
	reSplit     = regexp.MustCompile(`[,\s]+`)
	reName      = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// stripComment removes a trailing '#' or ';' comment. Comment characters
// inside string or character quotes are kept.
func stripComment(line string) string {
	var quote rune
	escaped := false
	for n, c := range line {
		switch {
		case escaped:
			escaped = false
		case quote != 0 && c == '\\':
			escaped = true
		case quote != 0 && c == quote:
			quote = 0
		case quote != 0:
			// pass
		case c == '"' || c == '\'':
			quote = c
		case c == '#' || c == ';':
			return line[:n]
		}
	}

	return line
}

// tokenize splits an instruction into its mnemonic and operands.
func tokenize(line string) (words []string) {
	for _, word := range reSplit.Split(line, -1) {
		if len(word) > 0 {
			words = append(words, word)
		}
	}
	return
}

// Parse assembles an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	asm.Label = make(map[string]int, 16)
	asm.Equate = make(map[string]string, 16)
	for equ, value := range internal.IterSeq2Concat(isa.Defines(), maps.All(asm.predefine)) {
		asm.Equate[equ] = value
	}
	asm.Equate["LINENO"] = "0"
	asm.Macro = make(map[string]*Macro)
	asm.entries = asm.entries[:0]
	asm.expansions = 0

	var lines []string
	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	err = scanner.Err()
	if err != nil {
		return
	}

	err = asm.firstPass(lines)
	if err != nil {
		return
	}

	prog, err = asm.secondPass()

	return
}

// currentIp gets the address of the next emitted word.
func (asm *Assembler) currentIp() int {
	if len(asm.entries) == 0 {
		return 0
	}

	last := asm.entries[len(asm.entries)-1]

	return last.ip + last.size
}

// firstPass collects labels, equates and macros, and sizes every entry.
func (asm *Assembler) firstPass(lines []string) (err error) {
	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	for n, text := range lines {
		lineno = n + 1
		line = strings.TrimSpace(text)

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		code := strings.TrimSpace(stripComment(line))
		words := tokenize(code)

		// .macro NAME arg...
		if len(words) > 0 && strings.ToLower(words[0]) == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			macro, err = asm.defineMacro(words[1:], lineno)
			if err != nil {
				return
			}
			continue
		}

		if len(words) > 0 && strings.ToLower(words[0]) == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, code)
			continue
		}

		err = asm.firstLine(lineno, line, code, 0)
		if err != nil {
			return
		}
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	return
}

// firstLine handles the labels and the statement of a single line.
func (asm *Assembler) firstLine(lineno int, line string, code string, depth int) (err error) {
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Labels, possibly followed by an instruction.
	for {
		match := reLabel.FindStringSubmatch(code)
		if match == nil {
			break
		}
		label := match[1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}
		asm.Label[label] = asm.currentIp()
		code = strings.TrimSpace(code[len(match[0]):])
	}

	if len(code) == 0 {
		return
	}

	if words := tokenize(code); len(words) > 0 {
		macro, ok := asm.Macro[words[0]]
		if ok {
			err = asm.expandMacro(words[0], macro, words[1:], depth)
			return
		}
	}

	ent := entry{
		kind:   ENTRY_INST,
		lineNo: lineno,
		line:   line,
		ip:     asm.currentIp(),
		size:   1,
		code:   code,
	}

	if code[0] == '.' {
		directive := strings.ToLower(strings.Fields(code)[0])
		switch directive {
		case ".equ":
			err = asm.defineEquate(code)
			return
		case ".string", ".asciz":
			match := reString.FindStringSubmatch(code)
			if match == nil {
				err = ErrStringSyntax
				return
			}
			var text string
			text, err = strconv.Unquote(`"` + match[2] + `"`)
			if err != nil {
				err = ErrStringSyntax
				return
			}
			if strings.ToLower(match[1]) == "asciz" {
				text += "\x00"
			}
			ent.kind = ENTRY_TEXT
			ent.text = text
			ent.size = 2 * utf8.RuneCountInString(text)
			ent.words = []string{directive, strconv.Quote(text)}
		case ".halt":
			ent.words = tokenize(code)
			if len(ent.words) > 1 {
				err = ErrOpcodeExtraArgs
				return
			}
			ent.kind = ENTRY_HALT
		case ".word":
			ent.kind = ENTRY_WORD
		default:
			err = ErrDirectiveInvalid
			return
		}
	}

	if ent.size == 0 {
		return
	}

	asm.entries = append(asm.entries, ent)

	return
}

// defineMacro handles '.macro NAME arg...'.
func (asm *Assembler) defineMacro(words []string, lineno int) (macro *Macro, err error) {
	if len(words) == 0 {
		err = ErrMacroSyntax
		return
	}

	name := words[0]
	if !reName.MatchString(name) {
		err = ErrMacroSyntax
		return
	}
	for _, arg := range words[1:] {
		if !reName.MatchString(arg) {
			err = ErrMacroSyntax
			return
		}
	}

	_, ok := asm.Macro[name]
	if !ok {
		_, ok = mnemonicMap[strings.ToUpper(name)]
	}
	if ok {
		err = ErrMacroDuplicate
		return
	}

	macro = &Macro{
		LineNo: lineno + 1,
		Args:   words[1:],
	}
	asm.Macro[name] = macro

	return
}

// expandMacro runs the first pass over the body of a macro invocation.
// Each '@' in the body becomes a prefix unique to the invocation.
func (asm *Assembler) expandMacro(name string, macro *Macro, args []string, depth int) (err error) {
	if len(args) != len(macro.Args) {
		err = ErrMacroArguments
		return
	}

	if depth >= MACRO_DEPTH {
		err = ErrMacroRecursion
		return
	}

	params := make(map[string]string, len(args))
	for n, arg := range macro.Args {
		params[arg] = args[n]
	}

	asm.expansions++
	unique := fmt.Sprintf("%v_%v_", name, asm.expansions)

	for n, body := range macro.Lines {
		lineno := macro.LineNo + n
		text := substitute(strings.ReplaceAll(body, "@", unique), params)

		err = asm.firstLine(lineno, text, text, depth+1)
		if err != nil {
			err = ErrMacro{Macro: name, Line: lineno, Err: err}
			return
		}
	}

	return
}

// substitute replaces whole identifiers found in params, outside of string
// and character quotes. Identifiers after a '.' are never replaced.
func substitute(text string, params map[string]string) string {
	var out strings.Builder
	var quote byte
	escaped := false

	for n := 0; n < len(text); {
		c := text[n]
		switch {
		case escaped:
			escaped = false
		case quote != 0 && c == '\\':
			escaped = true
		case quote != 0 && c == quote:
			quote = 0
		case quote != 0:
			// pass
		case c == '"' || c == '\'':
			quote = c
		case isWordByte(c):
			end := n
			for end < len(text) && isWordByte(text[end]) {
				end++
			}
			word := text[n:end]
			value, ok := params[word]
			if ok && (n == 0 || text[n-1] != '.') && !isDigit(c) {
				word = value
			}
			out.WriteString(word)
			n = end
			continue
		}
		out.WriteByte(c)
		n++
	}

	return out.String()
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isWordByte(c byte) bool {
	return c == '_' || isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// defineEquate handles '.equ NAME VALUE'.
func (asm *Assembler) defineEquate(code string) (err error) {
	code, err = asm.expand(code)
	if err != nil {
		return
	}

	words := tokenize(code)
	if len(words) != 3 || !reIdent.MatchString(words[1]) {
		err = ErrEquateSyntax
		return
	}

	_, ok := asm.Equate[words[1]]
	if ok {
		err = ErrEquateDuplicate
		return
	}

	asm.Equate[words[1]] = words[2]

	return
}

// expand replaces character literals and $(...) expressions with numbers.
func (asm *Assembler) expand(line string) (out string, err error) {
	out = reCharacter.ReplaceAllStringFunc(line, func(word string) string {
		value, _, tail, _err := strconv.UnquoteChar(word[1:len(word)-1], '\'')
		if _err != nil || len(tail) != 0 {
			return word
		}
		return fmt.Sprintf("%d", value)
	})

	out = reParen.ReplaceAllStringFunc(out, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#x", value)
	})

	return
}

// secondPass encodes every entry with the complete label table.
func (asm *Assembler) secondPass() (prog *Program, err error) {
	var ent entry

	defer func() {
		if err != nil {
			err = ErrSyntax{LineNo: ent.lineNo, Line: ent.line, Err: err}
		}
	}()

	prog = &Program{
		Labels: maps.Clone(asm.Label),
	}

	for _, ent = range asm.entries {
		asm.Equate["LINENO"] = fmt.Sprintf("%v", ent.lineNo)

		var codes []isa.Word
		words := ent.words
		switch ent.kind {
		case ENTRY_TEXT:
			for _, c := range ent.text {
				codes = append(codes,
					isa.Encode(isa.OP_LI, SCRATCH_REGISTER, 0, 0, uint64(c)),
					isa.Encode(isa.OP_ST, SCRATCH_REGISTER, 0, 0, isa.IO_PORT),
				)
			}
		case ENTRY_HALT:
			codes = append(codes, isa.Encode(isa.OP_HALT, 0, 0, 0, 0))
		case ENTRY_WORD:
			var code isa.Word
			words, code, err = asm.encodeWord(ent)
			if err != nil {
				prog = nil
				return
			}
			codes = append(codes, code)
		case ENTRY_INST:
			var code isa.Word
			words, code, err = asm.encode(ent)
			if err != nil {
				prog = nil
				return
			}
			codes = append(codes, code)
		}

		if asm.Verbose {
			for n, code := range codes {
				log.Printf("%02x: %016x %v", ent.ip+n, uint64(code), code)
			}
		}

		prog.Opcodes = append(prog.Opcodes, Opcode{
			LineNo: ent.lineNo,
			Ip:     ent.ip,
			Words:  words,
			Codes:  codes,
		})
	}

	return
}

// Operand forms of the instructions.
type form int

const (
	FORM_NONE = form(0) // NOP
	FORM_RR   = form(1) // ADD rd, rs1
	FORM_RI   = form(2) // LI rd, imm
	FORM_RA   = form(3) // LD rd, addr8
	FORM_RD   = form(4) // JZ rd, disp8|label
	FORM_A    = form(5) // JMP addr8|label
	FORM_LOG  = form(6) // LOG rd[, addr8]
)

type mnemonic struct {
	op   isa.Opcode
	form form
}

// mnemonicMap maps upper case mnemonics to their encoding.
var mnemonicMap = map[string]mnemonic{
	"NOP":  {isa.OP_NOP, FORM_NONE},
	"ADD":  {isa.OP_ADD, FORM_RR},
	"SUB":  {isa.OP_SUB, FORM_RR},
	"LI":   {isa.OP_LI, FORM_RI},
	"SETI": {isa.OP_LI, FORM_RI},
	"LD":   {isa.OP_LD, FORM_RA},
	"ST":   {isa.OP_ST, FORM_RA},
	"LOG":  {isa.OP_ST, FORM_LOG},
	"JZ":   {isa.OP_JZ, FORM_RD},
	"JMP":  {isa.OP_JMP, FORM_A},
	"LI64": {isa.OP_LI64, FORM_RI},
	"SHL":  {isa.OP_SHL, FORM_RR},
	"SHR":  {isa.OP_SHR, FORM_RR},
	"SAR":  {isa.OP_SAR, FORM_RR},
	"ADDI": {isa.OP_ADDI, FORM_RI},
	"SUBI": {isa.OP_SUBI, FORM_RI},
	"HALT": {isa.OP_HALT, FORM_NONE},
}

// argCount returns the minimum and maximum operand counts of a form.
func (fm form) argCount() (least, most int) {
	switch fm {
	case FORM_NONE:
		return 0, 0
	case FORM_A:
		return 1, 1
	case FORM_LOG:
		return 1, 2
	}
	return 2, 2
}

// encodeWord encodes a '.word VALUE' directive.
func (asm *Assembler) encodeWord(ent entry) (words []string, code isa.Word, err error) {
	line, err := asm.expand(ent.code)
	if err != nil {
		return
	}

	words = tokenize(line)
	if len(words) < 2 {
		err = ErrOpcodeValueMissing
		return
	}
	if len(words) > 2 {
		err = ErrOpcodeExtraArgs
		return
	}
	words[0] = strings.ToLower(words[0])

	value, err := asm.valueOf(words[1])
	code = isa.Word(value)

	return
}

// encode encodes a single instruction.
func (asm *Assembler) encode(ent entry) (words []string, code isa.Word, err error) {
	line, err := asm.expand(ent.code)
	if err != nil {
		return
	}

	words = tokenize(line)
	if len(words) == 0 {
		err = ErrOpcodeMissing
		return
	}
	name := strings.ToUpper(words[0])
	args := words[1:]

	mn, ok := mnemonicMap[name]
	if !ok {
		err = ErrOpcodeUnknown(words[0])
		return
	}

	least, most := mn.form.argCount()
	if len(args) < least {
		err = ErrOpcodeValueMissing
		return
	}
	if len(args) > most {
		err = ErrOpcodeExtraArgs
		return
	}

	var rd, rs1 uint8
	var imm uint64

	if mn.form != FORM_NONE && mn.form != FORM_A {
		rd, err = asm.register(args[0])
		if err != nil {
			return
		}
	}

	switch mn.form {
	case FORM_RR:
		rs1, err = asm.register(args[1])
	case FORM_RI:
		imm, err = asm.valueOf(args[1])
	case FORM_RA:
		imm, err = asm.valueOf(args[1])
		imm &= 0xff
	case FORM_LOG:
		imm = isa.IO_PORT
		if len(args) > 1 {
			imm, err = asm.valueOf(args[1])
			imm &= 0xff
		}
	case FORM_RD:
		var label bool
		imm, label, err = asm.target(args[1])
		if label {
			imm -= uint64(ent.ip)
			disp := int64(imm)
			if asm.Verbose && (disp < math.MinInt8 || disp > math.MaxInt8) {
				log.Printf("%v: displacement %d to %v truncated to 8 bits", ent.lineNo, disp, args[1])
			}
		}
		imm &= 0xff
	case FORM_A:
		imm, _, err = asm.target(args[0])
		imm &= 0xff
	}
	if err != nil {
		return
	}

	code = isa.Encode(mn.op, rd, rs1, 0, imm)

	return
}

// equate returns the value of a word after equate substitution.
func (asm *Assembler) equate(word string) string {
	value, ok := asm.Equate[word]
	if ok {
		return value
	}
	return word
}

// register parses a register operand.
func (asm *Assembler) register(word string) (reg uint8, err error) {
	match := reRegister.FindStringSubmatch(asm.equate(word))
	if match == nil {
		err = ErrParseRegister(word)
		return
	}

	reg = match[1][0] - '0'

	return
}

// target parses a branch target, reporting whether it named a label.
func (asm *Assembler) target(word string) (value uint64, label bool, err error) {
	word = asm.equate(word)

	ip, ok := asm.Label[word]
	if ok {
		value = uint64(ip)
		label = true
		return
	}

	value, err = asm.valueOf(word)

	return
}

// valueOf returns the value of an immediate operand: an equate, a label,
// or a number.
func (asm *Assembler) valueOf(word string) (value uint64, err error) {
	word = asm.equate(word)

	ip, ok := asm.Label[word]
	if ok {
		value = uint64(ip)
		return
	}

	if reIdent.MatchString(word) {
		err = ErrLabelMissing(word)
		return
	}

	value, err = parseNumber(word)

	return
}

// parseNumber parses a decimal, 0x prefixed hex, or 'b' suffixed binary
// number, with an optional sign. Negative numbers are two's complement.
func parseNumber(word string) (value uint64, err error) {
	digits := word
	negative := false
	switch {
	case strings.HasPrefix(digits, "-"):
		negative = true
		digits = digits[1:]
	case strings.HasPrefix(digits, "+"):
		digits = digits[1:]
	}

	switch {
	case strings.HasPrefix(digits, "0x"), strings.HasPrefix(digits, "0X"):
		value, err = strconv.ParseUint(digits[2:], 16, 64)
	case strings.HasSuffix(digits, "b"):
		value, err = strconv.ParseUint(digits[:len(digits)-1], 2, 64)
	default:
		value, err = strconv.ParseUint(digits, 10, 64)
	}
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if negative {
		value = -value
	}

	return
}
