package driver

import (
	"io"

	mldriver "github.com/nihei9/maleeni/driver"
	mlspec "github.com/nihei9/maleeni/spec"
)

// VToken is a token the parser reads from a TokenStream.
type VToken interface {
	// TerminalID returns the terminal number the token represents.
	TerminalID() int

	// Lexeme returns the text of the token.
	Lexeme() []byte

	// EOF returns true when the token represents the end of the input.
	EOF() bool

	// Invalid returns true when the token doesn't represent any terminal.
	Invalid() bool

	// Position returns the row and column the token appears at, counting
	// from 1.
	Position() (int, int)
}

// TokenStream feeds the parser. Next never fails to return a token; after
// the input is exhausted it keeps returning an EOF token.
type TokenStream interface {
	Next() (VToken, error)
}

// Token is a plain VToken for inputs that are already tokenized.
type Token struct {
	Term    int
	Text    string
	Row     int
	Col     int
	IsEOF   bool
	IsInval bool
}

func (t *Token) TerminalID() int {
	return t.Term
}

func (t *Token) Lexeme() []byte {
	return []byte(t.Text)
}

func (t *Token) EOF() bool {
	return t.IsEOF
}

func (t *Token) Invalid() bool {
	return t.IsInval
}

func (t *Token) Position() (int, int) {
	return t.Row, t.Col
}

type sliceTokenStream struct {
	toks []*Token
	pos  int
}

// NewTokenStream wraps a token slice. When the slice runs out, the stream
// synthesizes EOF tokens positioned after the last token.
func NewTokenStream(toks []*Token) TokenStream {
	return &sliceTokenStream{
		toks: toks,
	}
}

func (s *sliceTokenStream) Next() (VToken, error) {
	if s.pos >= len(s.toks) {
		row, col := 1, 1
		if len(s.toks) > 0 {
			last := s.toks[len(s.toks)-1]
			row, col = last.Row, last.Col+len(last.Text)
		}
		return &Token{
			Row:   row,
			Col:   col,
			IsEOF: true,
		}, nil
	}
	tok := s.toks[s.pos]
	s.pos++
	return tok, nil
}

type lexerToken struct {
	terminalID int
	tok        *mldriver.Token
}

func (t *lexerToken) TerminalID() int {
	return t.terminalID
}

func (t *lexerToken) Lexeme() []byte {
	return t.tok.Lexeme
}

func (t *lexerToken) EOF() bool {
	return t.tok.EOF
}

func (t *lexerToken) Invalid() bool {
	return t.tok.Invalid
}

func (t *lexerToken) Position() (int, int) {
	return t.tok.Row, t.tok.Col
}

type lexerTokenStream struct {
	lex            *mldriver.Lexer
	kindToTerminal []int
	skip           []bool
}

// NewLexerTokenStream runs a compiled lexical specification over src and maps
// its token kinds to the grammar's terminals by name. Kinds that don't name
// any terminal, like whitespace or comments, are skipped.
func NewLexerTokenStream(gram Grammar, lexSpec *mlspec.CompiledLexSpec, src io.Reader) (TokenStream, error) {
	lex, err := mldriver.NewLexer(mldriver.NewLexSpec(lexSpec), src)
	if err != nil {
		return nil, err
	}

	terms := map[string]int{}
	for t := 0; t < gram.TerminalCount(); t++ {
		terms[gram.Terminal(t)] = t
	}

	kindToTerminal := make([]int, len(lexSpec.KindNames))
	skip := make([]bool, len(lexSpec.KindNames))
	for id, name := range lexSpec.KindNames {
		if name == mlspec.LexKindNameNil {
			continue
		}
		term, ok := terms[name.String()]
		if !ok {
			skip[id] = true
			continue
		}
		kindToTerminal[id] = term
	}

	return &lexerTokenStream{
		lex:            lex,
		kindToTerminal: kindToTerminal,
		skip:           skip,
	}, nil
}

func (s *lexerTokenStream) Next() (VToken, error) {
	for {
		tok, err := s.lex.Next()
		if err != nil {
			return nil, err
		}

		if !tok.EOF && !tok.Invalid && s.skip[tok.KindID] {
			continue
		}

		return &lexerToken{
			terminalID: s.kindToTerminal[tok.KindID],
			tok:        tok,
		}, nil
	}
}
