package compiler

// Program is the result of a successful translation.
type Program struct {
	Text  string // the generated Python source, without a trailing newline
	Stats Stats
}

// Stats describes what a translation did.
type Stats struct {
	SourceBytes  int // length of the source text
	Instructions int // instructions after comments were dropped
	Moves        int // pointer updates emitted
	Adds         int // value updates emitted
	Outputs      int
	Inputs       int
	Loops        int
	MaxDepth     int // deepest loop nesting
	Lines        int // lines of generated code, prologue included
}

// Comments returns the number of source bytes that were not instructions.
func (s Stats) Comments() int {
	return s.SourceBytes - s.Instructions
}

// Collapsed returns how many pointer and value instructions were saved by
// folding runs. Runs that cancel out count entirely.
func (s Stats) Collapsed() int {
	folded := s.Instructions - s.Outputs - s.Inputs - 2*s.Loops
	return folded - s.Moves - s.Adds
}

func (s *Stats) record(op Op, depth int) {
	switch op.Kind {
	case OpMove:
		s.Moves++
	case OpAdd:
		s.Adds++
	case OpOutput:
		s.Outputs++
	case OpInput:
		s.Inputs++
	case OpLoopOpen:
		s.Loops++
	}
	if depth > s.MaxDepth {
		s.MaxDepth = depth
	}
}

// Translate compiles source into a Python program simulating a tape machine
// described by cfg. It fails with a *TranslationError wrapping
// ErrUnmatchedLoopOpen or ErrUnmatchedLoopClose when the brackets do not
// balance, and with ErrInvalidConfig when cfg does not validate.
//
// Translate keeps no state between calls and is safe for concurrent use.
func Translate(source string, cfg Config) (*Program, error) {
	return TranslateWith(source, cfg, nil)
}

// TranslateWith is Translate that also forwards every emitted operation to
// sink. A failing translation may have forwarded a prefix of the stream.
func TranslateWith(source string, cfg Config, sink OpSink) (*Program, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	lx := newLexer(source)
	em := newEmitter(cfg)
	stats := Stats{SourceBytes: len(source)}
	var r runs

	emit := func(op Op) error {
		if err := em.apply(op); err != nil {
			return err
		}
		stats.record(op, len(em.blocks)-1)
		if sink != nil {
			sink.Emit(op)
		}
		return nil
	}

	for {
		tok, ok := lx.next()
		if !ok {
			break
		}
		stats.Instructions++
		if err := r.feed(tok, emit); err != nil {
			return nil, err
		}
	}
	if err := r.flush(emit); err != nil {
		return nil, err
	}
	if err := em.finish(); err != nil {
		return nil, err
	}

	text, lines := em.render()
	stats.Lines = lines
	return &Program{Text: text, Stats: stats}, nil
}
