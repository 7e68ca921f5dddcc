package compiler

import "unicode/utf8"

// Lexer filters instructions out of the source text. Every character that is
// not one of the eight instruction symbols is a comment and is skipped.
type Lexer struct {
	src  string
	pos  int // byte offset of the next character to consume
	line int // current 1-based source line
	col  int // 1-based column of the next character
}

func newLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

// advance consumes one character and returns it with its position.
func (l *Lexer) advance() (rune, Pos) {
	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	p := Pos{Offset: l.pos, Line: l.line, Col: l.col}
	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r, p
}

// next returns the next instruction, or false at end of input.
func (l *Lexer) next() (Token, bool) {
	for l.pos < len(l.src) {
		r, p := l.advance()
		if inst, ok := instructionFor(r); ok {
			return Token{Inst: inst, Pos: p}, true
		}
	}
	return Token{}, false
}

// Lex returns the instruction stream of src with comments removed.
func Lex(src string) []Token {
	l := newLexer(src)
	var tokens []Token
	for {
		tok, ok := l.next()
		if !ok {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}
