package compiler

import "fmt"

// OpKind identifies an operation produced by the run-coalescing pass.
type OpKind int

const (
	OpMove      OpKind = iota // cursor += Arg
	OpAdd                     // tape[cursor] += Arg
	OpOutput                  // write tape[cursor]
	OpInput                   // read into tape[cursor]
	OpLoopOpen                // while tape[cursor] != 0
	OpLoopClose               // end of while
)

var opKindNames = [...]string{
	OpMove:      "move",
	OpAdd:       "add",
	OpOutput:    "output",
	OpInput:     "input",
	OpLoopOpen:  "loop",
	OpLoopClose: "end",
}

func (k OpKind) String() string {
	if int(k) >= 0 && int(k) < len(opKindNames) {
		return opKindNames[k]
	}
	return fmt.Sprintf("OpKind(%d)", int(k))
}

// Op is one operation of the coalesced stream. Arg is the signed delta of a
// move or add and zero for every other kind. Pos is where the operation
// starts in the source; for runs that is the first folded instruction.
type Op struct {
	Kind OpKind
	Arg  int
	Pos  Pos
}

func (o Op) String() string {
	switch o.Kind {
	case OpMove, OpAdd:
		return fmt.Sprintf("%-7s %s %+d", o.Pos, o.Kind, o.Arg)
	default:
		return fmt.Sprintf("%-7s %s", o.Pos, o.Kind)
	}
}

// OpSink observes every operation a translation emits, in order.
type OpSink interface {
	Emit(op Op)
}

// accumulator holds the pending run of one class.
type accumulator struct {
	delta int
	start Pos
}

// runs is the peephole state machine that folds consecutive pointer moves and
// consecutive value changes into single signed updates. A pending run is
// flushed only when an instruction of another class arrives, or by flush at
// end of input.
type runs struct {
	pointer accumulator
	value   accumulator
	last    Class
}

func (r *runs) flushPointer(emit func(Op) error) error {
	if r.pointer.delta == 0 {
		return nil
	}
	op := Op{Kind: OpMove, Arg: r.pointer.delta, Pos: r.pointer.start}
	r.pointer.delta = 0
	return emit(op)
}

func (r *runs) flushValue(emit func(Op) error) error {
	if r.value.delta == 0 {
		return nil
	}
	op := Op{Kind: OpAdd, Arg: r.value.delta, Pos: r.value.start}
	r.value.delta = 0
	return emit(op)
}

// feed processes one instruction, emitting any operation it completes.
func (r *runs) feed(tok Token, emit func(Op) error) error {
	class := tok.Inst.Class()

	// At most one run can be pending: the other one was flushed by the
	// instruction that ended it.
	var err error
	switch {
	case class != PointerClass && r.last == PointerClass:
		err = r.flushPointer(emit)
	case class != ValueClass && r.last == ValueClass:
		err = r.flushValue(emit)
	}
	if err != nil {
		return err
	}

	starting := class != r.last
	r.last = class

	switch class {
	case PointerClass:
		if starting {
			r.pointer.start = tok.Pos
		}
		r.pointer.delta += tok.Inst.delta()
		return nil
	case ValueClass:
		if starting {
			r.value.start = tok.Pos
		}
		r.value.delta += tok.Inst.delta()
		return nil
	}

	switch tok.Inst {
	case Output:
		return emit(Op{Kind: OpOutput, Pos: tok.Pos})
	case Input:
		return emit(Op{Kind: OpInput, Pos: tok.Pos})
	case LoopOpen:
		return emit(Op{Kind: OpLoopOpen, Pos: tok.Pos})
	case LoopClose:
		return emit(Op{Kind: OpLoopClose, Pos: tok.Pos})
	}
	return fmt.Errorf("unknown instruction %v at %s", tok.Inst, tok.Pos)
}

// flush emits whatever run is still pending at end of input.
func (r *runs) flush(emit func(Op) error) error {
	if err := r.flushPointer(emit); err != nil {
		return err
	}
	if err := r.flushValue(emit); err != nil {
		return err
	}
	r.last = OtherClass
	return nil
}
