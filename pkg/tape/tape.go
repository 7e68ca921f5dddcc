// Package tape is a reference implementation of the tape machine. It runs
// either the raw instruction stream or the coalesced operation stream the
// compiler emits, with the same wraparound and I/O rules as generated
// programs.
package tape

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"bf2py/pkg/compiler"
)

var (
	ErrPointerOutOfRange = errors.New("pointer out of range")
	ErrStepLimit         = errors.New("step limit exceeded")
)

// Machine holds tape state. The zero value is not usable; call New.
type Machine struct {
	Ptr   int
	Size  int // number of cells; 0 means unbounded in both directions
	Width int // bits per cell; 0 means unbounded

	// Input is read one byte at a time; end of stream stores 0.
	// If nil, input is always exhausted.
	Input io.Reader
	// Output receives the low byte of every written cell. If nil, os.Stdout is used.
	Output io.Writer

	// MaxSteps bounds the number of executed operations; 0 means no bound.
	MaxSteps int
	Steps    int

	cells map[int]int64
	mask  int64
	in    io.ByteReader
}

// New creates a machine with all cells zero and the cursor at 0.
func New(size, width int) *Machine {
	m := &Machine{
		Size:  size,
		Width: width,
		cells: make(map[int]int64),
	}
	if width > 0 {
		m.mask = 1<<uint(width) - 1
	}
	return m
}

// Cell returns the value of cell i.
func (m *Machine) Cell(i int) int64 {
	return m.cells[i]
}

// Cells returns cells [0, n).
func (m *Machine) Cells(n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = m.cells[i]
	}
	return out
}

func (m *Machine) outputSink() io.Writer {
	if m.Output != nil {
		return m.Output
	}
	return os.Stdout
}

func (m *Machine) check() error {
	if m.Size > 0 && (m.Ptr < 0 || m.Ptr >= m.Size) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrPointerOutOfRange, m.Ptr, m.Size)
	}
	return nil
}

func (m *Machine) wrap(v int64) int64 {
	if m.mask == 0 {
		return v
	}
	return v & m.mask
}

func (m *Machine) readByte() (int64, error) {
	if f, ok := m.Output.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return 0, err
		}
	}
	if m.Input == nil {
		return 0, nil
	}
	if m.in == nil {
		if br, ok := m.Input.(io.ByteReader); ok {
			m.in = br
		} else {
			m.in = bufio.NewReader(m.Input)
		}
	}
	b, err := m.in.ReadByte()
	if errors.Is(err, io.EOF) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return int64(b), nil
}

// step executes ops[pc] and returns the index of the next operation.
// jump maps each loop bracket to its partner.
func (m *Machine) step(ops []compiler.Op, jump []int, pc int) (int, error) {
	op := ops[pc]
	if op.Kind == compiler.OpMove {
		m.Ptr += op.Arg
		return pc + 1, nil
	}
	if err := m.check(); err != nil {
		return 0, fmt.Errorf("%s: %w", op.Pos, err)
	}
	switch op.Kind {
	case compiler.OpAdd:
		m.cells[m.Ptr] = m.wrap(m.cells[m.Ptr] + int64(op.Arg))
	case compiler.OpOutput:
		if _, err := m.outputSink().Write([]byte{byte(m.cells[m.Ptr])}); err != nil {
			return 0, err
		}
	case compiler.OpInput:
		v, err := m.readByte()
		if err != nil {
			return 0, err
		}
		m.cells[m.Ptr] = v
	case compiler.OpLoopOpen:
		if m.cells[m.Ptr] == 0 {
			return jump[pc] + 1, nil
		}
	case compiler.OpLoopClose:
		if m.cells[m.Ptr] != 0 {
			return jump[pc] + 1, nil
		}
	default:
		return 0, fmt.Errorf("%s: unknown operation %v", op.Pos, op.Kind)
	}
	return pc + 1, nil
}

// matchLoops pairs every loop bracket with its partner.
func matchLoops(ops []compiler.Op) ([]int, error) {
	jump := make([]int, len(ops))
	var open []int
	for i, op := range ops {
		switch op.Kind {
		case compiler.OpLoopOpen:
			open = append(open, i)
		case compiler.OpLoopClose:
			if len(open) == 0 {
				return nil, &compiler.TranslationError{Err: compiler.ErrUnmatchedLoopClose, Pos: op.Pos}
			}
			j := open[len(open)-1]
			open = open[:len(open)-1]
			jump[i], jump[j] = j, i
		}
	}
	if len(open) > 0 {
		return nil, &compiler.TranslationError{Err: compiler.ErrUnmatchedLoopOpen, Pos: ops[open[len(open)-1]].Pos}
	}
	return jump, nil
}

// RunOps executes a coalesced operation stream until it ends.
func (m *Machine) RunOps(ops []compiler.Op) error {
	jump, err := matchLoops(ops)
	if err != nil {
		return err
	}
	for pc := 0; pc < len(ops); {
		if m.MaxSteps > 0 && m.Steps >= m.MaxSteps {
			return ErrStepLimit
		}
		m.Steps++
		if pc, err = m.step(ops, jump, pc); err != nil {
			return err
		}
	}
	return nil
}

// RunInstructions executes the raw instruction stream one instruction at a
// time, without folding runs.
func (m *Machine) RunInstructions(tokens []compiler.Token) error {
	ops := make([]compiler.Op, len(tokens))
	for i, tok := range tokens {
		ops[i] = single(tok)
	}
	return m.RunOps(ops)
}

func single(tok compiler.Token) compiler.Op {
	op := compiler.Op{Pos: tok.Pos}
	switch tok.Inst {
	case compiler.MoveRight:
		op.Kind, op.Arg = compiler.OpMove, 1
	case compiler.MoveLeft:
		op.Kind, op.Arg = compiler.OpMove, -1
	case compiler.Increment:
		op.Kind, op.Arg = compiler.OpAdd, 1
	case compiler.Decrement:
		op.Kind, op.Arg = compiler.OpAdd, -1
	case compiler.Output:
		op.Kind = compiler.OpOutput
	case compiler.Input:
		op.Kind = compiler.OpInput
	case compiler.LoopOpen:
		op.Kind = compiler.OpLoopOpen
	case compiler.LoopClose:
		op.Kind = compiler.OpLoopClose
	}
	return op
}

// Recorder collects the operations of a translation.
type Recorder struct {
	Ops []compiler.Op
}

func (r *Recorder) Emit(op compiler.Op) {
	r.Ops = append(r.Ops, op)
}

// Run translates source with cfg and executes exactly the operations the
// generated program performs.
func Run(source string, cfg compiler.Config, input io.Reader, output io.Writer) (*Machine, error) {
	var rec Recorder
	if _, err := compiler.TranslateWith(source, cfg, &rec); err != nil {
		return nil, err
	}
	m := New(cfg.TapeSize, cfg.CellWidth)
	m.Input = input
	m.Output = output
	return m, m.RunOps(rec.Ops)
}
