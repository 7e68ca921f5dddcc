// Package compiler translates tape-machine programs (the eight instructions
// > < + - . , [ ]) into standalone Python 3 source.
//
// Pipeline: source → Lex → run coalescing → Emitter → Python text
//
// The whole pipeline is a single linear pass driven by Translate. Characters
// that are not instructions are comments. Consecutive pointer moves and
// consecutive value changes are folded into one signed update each; loops
// become indented while blocks.
package compiler
