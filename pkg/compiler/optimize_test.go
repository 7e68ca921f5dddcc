package compiler

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// coalesce runs the peephole state machine alone over src.
func coalesce(t *testing.T, src string) []Op {
	t.Helper()
	var r runs
	var ops []Op
	emit := func(op Op) error {
		ops = append(ops, op)
		return nil
	}
	for _, tok := range Lex(src) {
		if err := r.feed(tok, emit); err != nil {
			t.Fatalf("feed failed: %v", err)
		}
	}
	if err := r.flush(emit); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	return ops
}

func TestRuns(t *testing.T) {
	ignorePos := cmpopts.IgnoreFields(Op{}, "Pos")
	tests := []struct {
		name     string
		input    string
		expected []Op
	}{
		{"empty", "", nil},
		{"single increment", "+", []Op{{Kind: OpAdd, Arg: 1}}},
		{"trailing run is flushed", "+++", []Op{{Kind: OpAdd, Arg: 3}}},
		{"mixed signs fold", "++-+--->", []Op{{Kind: OpAdd, Arg: -1}, {Kind: OpMove, Arg: 1}}},
		{"net zero value run", "+-", nil},
		{"net zero pointer run", "><<>", nil},
		{"class change flushes", "+>-<", []Op{
			{Kind: OpAdd, Arg: 1},
			{Kind: OpMove, Arg: 1},
			{Kind: OpAdd, Arg: -1},
			{Kind: OpMove, Arg: -1},
		}},
		{"comments do not split runs", "+ + a +", []Op{{Kind: OpAdd, Arg: 3}}},
		{"io splits runs", "++.++", []Op{
			{Kind: OpAdd, Arg: 2},
			{Kind: OpOutput},
			{Kind: OpAdd, Arg: 2},
		}},
		{"loop", "++>+++[-<+>]", []Op{
			{Kind: OpAdd, Arg: 2},
			{Kind: OpMove, Arg: 1},
			{Kind: OpAdd, Arg: 3},
			{Kind: OpLoopOpen},
			{Kind: OpAdd, Arg: -1},
			{Kind: OpMove, Arg: -1},
			{Kind: OpAdd, Arg: 1},
			{Kind: OpMove, Arg: 1},
			{Kind: OpLoopClose},
		}},
		{"input", ",>,", []Op{
			{Kind: OpInput},
			{Kind: OpMove, Arg: 1},
			{Kind: OpInput},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := coalesce(t, tt.input)
			if diff := cmp.Diff(tt.expected, got, ignorePos); diff != "" {
				t.Errorf("ops for %q mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestRunsRecordStartPosition(t *testing.T) {
	ops := coalesce(t, "x>>\n+++<")
	want := []Op{
		{Kind: OpMove, Arg: 2, Pos: Pos{Offset: 1, Line: 1, Col: 2}},
		{Kind: OpAdd, Arg: 3, Pos: Pos{Offset: 4, Line: 2, Col: 1}},
		{Kind: OpMove, Arg: -1, Pos: Pos{Offset: 7, Line: 2, Col: 4}},
	}
	if diff := cmp.Diff(want, ops); diff != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", diff)
	}
}

func TestRunsPropagateEmitError(t *testing.T) {
	var r runs
	stop := &TranslationError{Err: ErrUnmatchedLoopClose}
	err := r.feed(Token{Inst: LoopClose}, func(Op) error { return stop })
	if err != stop {
		t.Fatalf("expected emit error to be returned, got %v", err)
	}
}
