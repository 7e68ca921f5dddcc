package compiler

import (
	"fmt"
	"strings"
)

// Names used by generated programs.
const (
	tapeName   = "D"
	cursorName = "p"
	writeName  = "W"
	readName   = "R"
	maskName   = "M"
)

// cell is the Python expression for the current cell.
const cell = tapeName + "[" + cursorName + "]"

// line is one output line: a nesting depth plus the statements on it.
// Only simple lines accept more statements, and only while open.
type line struct {
	depth  int
	stmts  []string
	simple bool
	open   bool
}

// block is an entry of the block stack; the root block is never popped.
type block struct {
	open  Pos
	empty bool
}

// Emitter renders operations as Python statements. Output is kept as a list
// of (depth, line) pairs and indented only when rendered.
type Emitter struct {
	cfg    Config
	lines  []line
	blocks []block
}

func newEmitter(cfg Config) *Emitter {
	e := &Emitter{
		cfg:    cfg,
		blocks: []block{{empty: true}},
	}
	e.prologue()
	return e
}

// raw appends a line that never takes further statements.
func (e *Emitter) raw(format string, args ...any) {
	e.lines = append(e.lines, line{
		depth: len(e.blocks) - 1,
		stmts: []string{fmt.Sprintf(format, args...)},
	})
}

// stmt appends a simple statement to the current block.
func (e *Emitter) stmt(format string, args ...any) {
	s := fmt.Sprintf(format, args...)
	depth := len(e.blocks) - 1
	e.blocks[depth].empty = false

	if e.cfg.Layout == Compact && len(e.lines) > 0 {
		last := &e.lines[len(e.lines)-1]
		if last.open && last.depth == depth {
			last.stmts = append(last.stmts, s)
			return
		}
	}
	e.lines = append(e.lines, line{
		depth:  depth,
		stmts:  []string{s},
		simple: true,
		open:   e.cfg.Layout == Compact,
	})
}

// breakLine ends the current line so that the next statement starts a new one.
func (e *Emitter) breakLine() {
	if len(e.lines) > 0 {
		e.lines[len(e.lines)-1].open = false
	}
}

func (e *Emitter) prologue() {
	e.raw("import sys")
	if e.cfg.TapeSize == 0 {
		e.raw("from collections import defaultdict")
		e.raw("%s=defaultdict(int)", tapeName)
	} else {
		e.raw("%s=[0]*%d", tapeName, e.cfg.TapeSize)
	}
	e.raw("%s=0", cursorName)
	e.raw("def %s(x):sys.stdout.buffer.write(bytes((x&255,)))", writeName)
	e.raw("def %s():sys.stdout.buffer.flush();c=sys.stdin.buffer.read(1);%s=c[0] if c else 0", readName, cell)
	if mask := e.cfg.Mask(); mask != 0 {
		e.raw("%s=%#x", maskName, mask)
	}
}

func sign(n int) (byte, int) {
	if n < 0 {
		return '-', -n
	}
	return '+', n
}

// apply emits the statements for op. It fails only on a ']' with no open loop.
func (e *Emitter) apply(op Op) error {
	switch op.Kind {
	case OpMove:
		s, n := sign(op.Arg)
		e.stmt("%s%c=%d", cursorName, s, n)
	case OpAdd:
		s, n := sign(op.Arg)
		if e.cfg.CellWidth == 0 {
			e.stmt("%s%c=%d", cell, s, n)
		} else {
			e.stmt("%s=(%s%c%d)&%s", cell, cell, s, n, maskName)
		}
	case OpOutput:
		e.stmt("%s(%s)", writeName, cell)
	case OpInput:
		e.stmt("%s()", readName)
	case OpLoopOpen:
		e.breakLine()
		e.blocks[len(e.blocks)-1].empty = false
		e.raw("while %s!=0:", cell)
		e.blocks = append(e.blocks, block{open: op.Pos, empty: true})
	case OpLoopClose:
		if len(e.blocks) == 1 {
			return &TranslationError{Err: ErrUnmatchedLoopClose, Pos: op.Pos}
		}
		if e.blocks[len(e.blocks)-1].empty {
			e.stmt("pass")
		}
		e.breakLine()
		e.blocks = e.blocks[:len(e.blocks)-1]
		e.blocks[len(e.blocks)-1].empty = false
	default:
		return fmt.Errorf("unknown operation %v at %s", op.Kind, op.Pos)
	}
	return nil
}

// finish checks that every loop was closed.
func (e *Emitter) finish() error {
	if len(e.blocks) > 1 {
		return &TranslationError{Err: ErrUnmatchedLoopOpen, Pos: e.blocks[len(e.blocks)-1].open}
	}
	return nil
}

// render indents every line, strips trailing whitespace, drops blank lines
// and joins the rest with newlines.
func (e *Emitter) render() (string, int) {
	var out strings.Builder
	indent := e.cfg.indent()
	count := 0
	for _, l := range e.lines {
		var text string
		if l.simple && e.cfg.Layout == Compact {
			text = strings.Join(l.stmts, ";") + ";"
		} else {
			text = strings.Join(l.stmts, "; ")
		}
		text = strings.TrimRight(strings.Repeat(" ", l.depth*indent)+text, " \t")
		if strings.TrimSpace(text) == "" {
			continue
		}
		if count > 0 {
			out.WriteByte('\n')
		}
		out.WriteString(text)
		count++
	}
	return out.String(), count
}
