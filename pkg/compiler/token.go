package compiler

import "fmt"

// Instruction identifies one of the eight tape-machine instructions.
type Instruction int

const (
	MoveRight Instruction = iota // >
	MoveLeft                     // <
	Increment                    // +
	Decrement                    // -
	Output                       // .
	Input                        // ,
	LoopOpen                     // [
	LoopClose                    // ]
)

// instructionSymbols is indexed by Instruction.
var instructionSymbols = [...]byte{
	MoveRight: '>',
	MoveLeft:  '<',
	Increment: '+',
	Decrement: '-',
	Output:    '.',
	Input:     ',',
	LoopOpen:  '[',
	LoopClose: ']',
}

var instructionNames = [...]string{
	MoveRight: "MoveRight",
	MoveLeft:  "MoveLeft",
	Increment: "Increment",
	Decrement: "Decrement",
	Output:    "Output",
	Input:     "Input",
	LoopOpen:  "LoopOpen",
	LoopClose: "LoopClose",
}

func (i Instruction) valid() bool {
	return int(i) >= 0 && int(i) < len(instructionSymbols)
}

// String returns the source symbol of the instruction.
func (i Instruction) String() string {
	if i.valid() {
		return string(instructionSymbols[i])
	}
	return fmt.Sprintf("Instruction(%d)", int(i))
}

// Name returns the descriptive name of the instruction, e.g. "MoveRight".
func (i Instruction) Name() string {
	if i.valid() {
		return instructionNames[i]
	}
	return i.String()
}

// Class groups instructions whose effects fold into a single run.
type Class int

const (
	OtherClass   Class = iota // output, input and loop brackets
	PointerClass              // > and <
	ValueClass                // + and -
)

func (c Class) String() string {
	switch c {
	case PointerClass:
		return "pointer"
	case ValueClass:
		return "value"
	default:
		return "other"
	}
}

// Class reports which run class the instruction belongs to.
func (i Instruction) Class() Class {
	switch i {
	case MoveRight, MoveLeft:
		return PointerClass
	case Increment, Decrement:
		return ValueClass
	default:
		return OtherClass
	}
}

// delta is the signed contribution of a pointer or value instruction to its run.
func (i Instruction) delta() int {
	switch i {
	case MoveRight, Increment:
		return 1
	case MoveLeft, Decrement:
		return -1
	default:
		return 0
	}
}

// instructionFor maps a source character to its instruction.
func instructionFor(r rune) (Instruction, bool) {
	switch r {
	case '>':
		return MoveRight, true
	case '<':
		return MoveLeft, true
	case '+':
		return Increment, true
	case '-':
		return Decrement, true
	case '.':
		return Output, true
	case ',':
		return Input, true
	case '[':
		return LoopOpen, true
	case ']':
		return LoopClose, true
	}
	return 0, false
}

// Pos is a location in the source text.
type Pos struct {
	Offset int // byte offset
	Line   int // 1-based
	Col    int // 1-based, counted in characters
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Token is an instruction together with the place it was read from.
type Token struct {
	Inst Instruction
	Pos  Pos
}

func (t Token) String() string {
	return fmt.Sprintf("%-7s %s  %s", t.Pos, t.Inst, t.Inst.Name())
}
