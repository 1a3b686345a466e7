// Package grammar provides the static half of the toolchain: a model for
// context-free grammars, FIRST-set analysis, LR item-set automata, and the
// construction of LALR(1) or canonical LR(1) parsing tables. The tables are
// handed to package driver for the actual parsing.
//
// Grammars are assembled with a GrammarBuilder. Terminals are declared
// explicitly, productions are appended in source order, and the head of the
// first production becomes the start symbol. Build validates the grammar,
// augments the start symbol, and produces an immutable Grammar:
//
//	b := grammar.NewGrammarBuilder("expr")
//	b.Terminals("add", "id")
//	b.Production("expr", "expr", "add", "term")
//	b.Production("expr", "term")
//	b.Production("term", "id")
//	g, err := b.Build()
//
// Table construction lives behind grammar.Compile, which never mutates the
// Grammar and may be called any number of times with different options.
package grammar

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'lapis.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("lapis.grammar")
}
