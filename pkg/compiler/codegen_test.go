package compiler

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// assertContains checks if the generated code contains the expected substring.
func assertContains(t *testing.T, code, expected string) {
	t.Helper()
	if !strings.Contains(code, expected) {
		t.Errorf("Expected code to contain %q, but it didn't.\nCode:\n%s", expected, code)
	}
}

// body returns the generated code after the prologue.
func body(t *testing.T, src string, cfg Config) string {
	t.Helper()
	prog, err := Translate(src, cfg)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	head, err := Translate("", cfg)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	rest := strings.TrimPrefix(prog.Text, head.Text)
	return strings.TrimPrefix(rest, "\n")
}

func TestGenerate_Prologue(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		expected string
	}{
		{
			name: "bounded byte cells",
			cfg:  Config{TapeSize: 30000, CellWidth: 8},
			expected: `import sys
D=[0]*30000
p=0
def W(x):sys.stdout.buffer.write(bytes((x&255,)))
def R():sys.stdout.buffer.flush();c=sys.stdin.buffer.read(1);D[p]=c[0] if c else 0
M=0xff`,
		},
		{
			name: "unbounded tape and cells",
			cfg:  Config{TapeSize: 0, CellWidth: 0},
			expected: `import sys
from collections import defaultdict
D=defaultdict(int)
p=0
def W(x):sys.stdout.buffer.write(bytes((x&255,)))
def R():sys.stdout.buffer.flush();c=sys.stdin.buffer.read(1);D[p]=c[0] if c else 0`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := Translate("", tt.cfg)
			if err != nil {
				t.Fatalf("Translate failed: %v", err)
			}
			if diff := cmp.Diff(tt.expected, prog.Text); diff != "" {
				t.Errorf("prologue mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGenerate_Masks(t *testing.T) {
	tests := []struct {
		width int
		mask  string
	}{
		{8, "M=0xff"},
		{16, "M=0xffff"},
		{32, "M=0xffffffff"},
	}
	for _, tt := range tests {
		prog, err := Translate("-", Config{TapeSize: 1, CellWidth: tt.width})
		if err != nil {
			t.Fatalf("Translate failed: %v", err)
		}
		assertContains(t, prog.Text, tt.mask)
		assertContains(t, prog.Text, "D[p]=(D[p]-1)&M;")
	}

	prog, err := Translate("-", Config{TapeSize: 1, CellWidth: 0})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if strings.Contains(prog.Text, "M=") || strings.Contains(prog.Text, "&M") {
		t.Errorf("unbounded cells must not be masked:\n%s", prog.Text)
	}
	assertContains(t, prog.Text, "D[p]-=1;")
}

func TestGenerate_Statements(t *testing.T) {
	byteCells := Config{TapeSize: 10, CellWidth: 8}
	wide := Config{TapeSize: 10, CellWidth: 0}

	tests := []struct {
		name     string
		src      string
		cfg      Config
		expected string
	}{
		{"pointer right", ">>>", byteCells, "p+=3;"},
		{"pointer left", "<<", byteCells, "p-=2;"},
		{"masked add", "+++", byteCells, "D[p]=(D[p]+3)&M;"},
		{"masked sub", "--", byteCells, "D[p]=(D[p]-2)&M;"},
		{"raw add", "++++", wide, "D[p]+=4;"},
		{"raw sub", "-", wide, "D[p]-=1;"},
		{"output", ".", byteCells, "W(D[p]);"},
		{"input", ",", byteCells, "R();"},
		{"one line per block", "+>.,", byteCells, "D[p]=(D[p]+1)&M;p+=1;W(D[p]);R();"},
		{"net zero emits nothing", "+-<>", byteCells, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := body(t, tt.src, tt.cfg)
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("body mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGenerate_Loops(t *testing.T) {
	cfg := Config{TapeSize: 10, CellWidth: 8}
	tests := []struct {
		name     string
		src      string
		expected string
	}{
		{
			name:     "empty loop gets a placeholder",
			src:      "[]",
			expected: "while D[p]!=0:\n pass;",
		},
		{
			name:     "loop after statements starts a new line",
			src:      "+[-]",
			expected: "D[p]=(D[p]+1)&M;\nwhile D[p]!=0:\n D[p]=(D[p]-1)&M;",
		},
		{
			name:     "statements after a loop return to the outer level",
			src:      "[-]>.",
			expected: "while D[p]!=0:\n D[p]=(D[p]-1)&M;\np+=1;W(D[p]);",
		},
		{
			name:     "nested",
			src:      "[[-]>]",
			expected: "while D[p]!=0:\n while D[p]!=0:\n  D[p]=(D[p]-1)&M;\n p+=1;",
		},
		{
			name:     "nested empty",
			src:      "[[]]",
			expected: "while D[p]!=0:\n while D[p]!=0:\n  pass;",
		},
		{
			name:     "adjacent loops",
			src:      "[][]",
			expected: "while D[p]!=0:\n pass;\nwhile D[p]!=0:\n pass;",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := body(t, tt.src, cfg)
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("body mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGenerate_ExpandedLayout(t *testing.T) {
	cfg := Config{TapeSize: 3, CellWidth: 8, Layout: Expanded, Indent: 4}
	got := body(t, "++>+++[-<+>][]", cfg)
	want := strings.Join([]string{
		"D[p]=(D[p]+2)&M",
		"p+=1",
		"D[p]=(D[p]+3)&M",
		"while D[p]!=0:",
		"    D[p]=(D[p]-1)&M",
		"    p-=1",
		"    D[p]=(D[p]+1)&M",
		"    p+=1",
		"while D[p]!=0:",
		"    pass",
	}, "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("expanded layout mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_NoBlankOrTrailingSpaceLines(t *testing.T) {
	prog, err := Translate("+[>[-]<[]]\n\n.[,.]", DefaultConfig())
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	for i, l := range strings.Split(prog.Text, "\n") {
		if strings.TrimSpace(l) == "" {
			t.Errorf("line %d is blank", i+1)
		}
		if strings.TrimRight(l, " \t") != l {
			t.Errorf("line %d has trailing whitespace: %q", i+1, l)
		}
	}
	if strings.HasSuffix(prog.Text, "\n") {
		t.Errorf("output must not end with a newline")
	}
}
