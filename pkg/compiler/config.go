package compiler

import (
	"errors"
	"fmt"
	"strings"
)

// Layout controls how the statements of one block are arranged into lines.
type Layout int

const (
	// Compact keeps consecutive simple statements of a block on one line,
	// each terminated by ';'.
	Compact Layout = iota
	// Expanded writes one statement per line.
	Expanded
)

func (l Layout) String() string {
	switch l {
	case Compact:
		return "compact"
	case Expanded:
		return "expanded"
	default:
		return fmt.Sprintf("Layout(%d)", int(l))
	}
}

// ParseLayout parses "compact" or "expanded".
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "compact":
		return Compact, nil
	case "expanded":
		return Expanded, nil
	}
	return 0, fmt.Errorf("%w: unknown layout %q", ErrInvalidConfig, s)
}

// ErrInvalidConfig is returned for a Config outside the supported ranges.
var ErrInvalidConfig = errors.New("invalid config")

// Config describes the tape machine the generated program simulates.
type Config struct {
	TapeSize  int    // number of cells; 0 means unbounded
	CellWidth int    // bits per cell: 0 (unbounded, never wraps), 8, 16 or 32
	Layout    Layout // statement arrangement
	Indent    int    // spaces per nesting level; 0 means 1
}

// DefaultConfig returns the configuration used when nothing is specified:
// 30000 byte-wide cells.
func DefaultConfig() Config {
	return Config{TapeSize: 30000, CellWidth: 8, Layout: Compact, Indent: 1}
}

// Validate reports whether c can be translated against.
func (c Config) Validate() error {
	if c.TapeSize < 0 {
		return fmt.Errorf("%w: tape size must be at least 1, or 0 for unbounded (got %d)", ErrInvalidConfig, c.TapeSize)
	}
	switch c.CellWidth {
	case 0, 8, 16, 32:
	default:
		return fmt.Errorf("%w: cell width must be 0, 8, 16 or 32 (got %d)", ErrInvalidConfig, c.CellWidth)
	}
	if c.Layout != Compact && c.Layout != Expanded {
		return fmt.Errorf("%w: unknown layout %d", ErrInvalidConfig, int(c.Layout))
	}
	if c.Indent < 0 {
		return fmt.Errorf("%w: indent must not be negative (got %d)", ErrInvalidConfig, c.Indent)
	}
	return nil
}

// Mask returns 2^CellWidth - 1, or 0 when cells are unbounded.
func (c Config) Mask() uint64 {
	if c.CellWidth == 0 {
		return 0
	}
	return 1<<uint(c.CellWidth) - 1
}

func (c Config) indent() int {
	if c.Indent == 0 {
		return 1
	}
	return c.Indent
}
