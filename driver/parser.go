package driver

import (
	"context"
	"errors"
	"fmt"
)

// Grammar exposes the parsing tables the driver needs. NewGrammar adapts a
// compiled grammar to this interface.
type Grammar interface {
	// InitialState returns the initial state of the parser.
	InitialState() int

	// StartProduction returns the start production of the grammar.
	StartProduction() int

	// Action returns an entry of the action table encoded as an int: a
	// negative value is a shift to the state the absolute value names, a
	// positive value is a reduce of the production it names, and 0 is an
	// error.
	Action(state int, terminal int) int

	// GoTo returns an entry of the goto table. 0 means an error.
	GoTo(state int, lhs int) int

	// LHS returns the LHS symbol of a production.
	LHS(prod int) int

	// AlternativeSymbolCount returns the number of symbols in the body of
	// a production.
	AlternativeSymbolCount(prod int) int

	// RecoverProduction returns true when a production has the error
	// symbol in its body.
	RecoverProduction(prod int) bool

	// ErrorTrapperState returns true when a state can shift the error
	// symbol.
	ErrorTrapperState(state int) bool

	// TerminalCount returns the number of terminals.
	TerminalCount() int

	// Terminal returns the name of a terminal.
	Terminal(terminal int) string

	// NonTerminal returns the name of a non-terminal.
	NonTerminal(nonTerminal int) string

	// EOF returns the EOF terminal.
	EOF() int

	// Error returns the error terminal.
	Error() int
}

var (
	// ErrUnexpectedToken is the cause of a syntax error raised by a token
	// the current state has no action for.
	ErrUnexpectedToken = errors.New("unexpected token")

	// ErrUnexpectedEOF is the cause of a syntax error raised when the input
	// ends before the parser accepts.
	ErrUnexpectedEOF = errors.New("unexpected end of input")
)

// SyntaxError is recorded when the parser meets a token no action is defined
// for. errors.Is distinguishes the ErrUnexpectedToken and ErrUnexpectedEOF
// cases.
type SyntaxError struct {
	Row               int
	Col               int
	Message           string
	Token             VToken
	ExpectedTerminals []string

	cause error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v:%v: %v", e.Row, e.Col, e.Message)
}

func (e *SyntaxError) Unwrap() error {
	return e.cause
}

type ParserOption func(p *Parser) error

// SemanticAction sets a SemanticActionSet the parser calls on every shift,
// reduce, and error event.
func SemanticAction(semAct SemanticActionSet) ParserOption {
	return func(p *Parser) error {
		p.semAct = semAct
		return nil
	}
}

// WithRecovery makes the parser resynchronize on syntax errors using the
// error symbol instead of stopping at the first one.
func WithRecovery() ParserOption {
	return func(p *Parser) error {
		p.recoverEnabled = true
		return nil
	}
}

// Parser is an LR parser. A Parser parses one input; it cannot be reused.
type Parser struct {
	gram           Grammar
	toks           TokenStream
	stateStack     []int
	semAct         SemanticActionSet
	recoverEnabled bool
	onError        bool
	shiftCount     int
	synErrs        []*SyntaxError
}

func NewParser(gram Grammar, toks TokenStream, opts ...ParserOption) (*Parser, error) {
	p := &Parser{
		gram:       gram,
		toks:       toks,
		stateStack: []int{},
	}

	for _, opt := range opts {
		err := opt(p)
		if err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Parse reads the whole token stream. It returns a non-nil error only when
// the stream fails or ctx is done; syntax errors are collected and available
// via SyntaxErrors.
func (p *Parser) Parse(ctx context.Context) error {
	p.push(p.gram.InitialState())
	tok, err := p.nextToken()
	if err != nil {
		return err
	}

ACTION_LOOP:
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		act := p.lookupAction(tok)
		switch {
		case act < 0: // Shift
			nextState := act * -1

			recovered := false
			if p.onError {
				// The parser recovers from an error state after shifting three
				// tokens.
				p.shiftCount++
				if p.shiftCount >= 3 {
					p.onError = false
					p.shiftCount = 0
					recovered = true
				}
			}

			p.shift(nextState)

			if p.semAct != nil {
				p.semAct.Shift(tok, recovered)
			}

			tok, err = p.nextToken()
			if err != nil {
				return err
			}
		case act > 0: // Reduce
			prodNum := act

			recovered := false
			if p.onError && p.gram.RecoverProduction(prodNum) {
				p.onError = false
				p.shiftCount = 0
				recovered = true
			}

			accepted := p.reduce(prodNum)
			if accepted {
				if p.semAct != nil {
					p.semAct.Accept()
				}

				return nil
			}

			if p.semAct != nil {
				p.semAct.Reduce(prodNum, recovered)
			}
		default: // Error
			if p.onError {
				// A token that doesn't fit immediately after the error symbol
				// was shifted is discarded.
				tok, err = p.nextToken()
				if err != nil {
					return err
				}
				if tok.EOF() {
					if p.semAct != nil {
						p.semAct.MissError(tok)
					}

					return nil
				}

				continue ACTION_LOOP
			}

			row, col := tok.Position()
			cause := ErrUnexpectedToken
			if tok.EOF() {
				cause = ErrUnexpectedEOF
			}
			synErr := &SyntaxError{
				Row:               row,
				Col:               col,
				Message:           cause.Error(),
				Token:             tok,
				ExpectedTerminals: p.searchLookahead(p.top()),
				cause:             cause,
			}
			p.synErrs = append(p.synErrs, synErr)
			tracer().Infof("syntax error at %v:%v: %v", row, col, synErr.Message)

			if !p.recoverEnabled {
				return nil
			}

			popped, ok := p.trapError()
			if !ok {
				if p.semAct != nil {
					p.semAct.MissError(tok)
				}

				return nil
			}

			p.onError = true
			p.shiftCount = 0

			act, err := p.lookupActionOnError()
			if err != nil {
				return err
			}

			p.shift(act * -1)

			if p.semAct != nil {
				p.semAct.TrapAndShiftError(tok, popped)
			}
		}
	}
}

func (p *Parser) nextToken() (VToken, error) {
	return p.toks.Next()
}

func (p *Parser) tokenToTerminal(tok VToken) int {
	if tok.EOF() {
		return p.gram.EOF()
	}

	return tok.TerminalID()
}

func (p *Parser) lookupAction(tok VToken) int {
	if !tok.EOF() && tok.Invalid() {
		return 0
	}

	return p.gram.Action(p.top(), p.tokenToTerminal(tok))
}

func (p *Parser) lookupActionOnError() (int, error) {
	act := p.gram.Action(p.top(), p.gram.Error())
	if act >= 0 {
		return 0, fmt.Errorf("an entry must be a shift action by the error symbol; entry: %v, state: %v, symbol: %v", act, p.top(), p.gram.Terminal(p.gram.Error()))
	}

	return act, nil
}

func (p *Parser) shift(nextState int) {
	p.push(nextState)
}

func (p *Parser) reduce(prodNum int) bool {
	lhs := p.gram.LHS(prodNum)
	if lhs == p.gram.LHS(p.gram.StartProduction()) {
		return true
	}
	n := p.gram.AlternativeSymbolCount(prodNum)
	p.pop(n)
	nextState := p.gram.GoTo(p.top(), lhs)
	p.push(nextState)
	return false
}

// trapError pops states until it finds one that can shift the error symbol.
// It reports the number of popped states and whether such a state exists.
func (p *Parser) trapError() (int, bool) {
	popped := 0
	for {
		if p.gram.ErrorTrapperState(p.top()) {
			return popped, true
		}

		if p.top() == p.gram.InitialState() {
			return 0, false
		}

		p.pop(1)
		popped++
	}
}

func (p *Parser) top() int {
	return p.stateStack[len(p.stateStack)-1]
}

func (p *Parser) push(state int) {
	p.stateStack = append(p.stateStack, state)
}

func (p *Parser) pop(n int) {
	p.stateStack = p.stateStack[:len(p.stateStack)-n]
}

// SyntaxErrors returns the syntax errors the parser met, in input order.
func (p *Parser) SyntaxErrors() []*SyntaxError {
	return p.synErrs
}

// searchLookahead lists the terminals the current state accepts. The error
// symbol is excluded because users cannot input it intentionally. When a
// state accepts nothing but the error symbol, the terminals acceptable after
// the error symbol is shifted are reported instead, so the list stays
// non-empty.
func (p *Parser) searchLookahead(state int) []string {
	kinds := p.acceptableTerminals(state)

	errSym := p.gram.Error()
	visited := map[int]struct{}{}
	for len(kinds) == 0 {
		if _, ok := visited[state]; ok {
			break
		}
		visited[state] = struct{}{}

		act := p.gram.Action(state, errSym)
		if act >= 0 {
			break
		}
		state = act * -1
		kinds = p.acceptableTerminals(state)
	}

	return kinds
}

func (p *Parser) acceptableTerminals(state int) []string {
	kinds := []string{}
	termCount := p.gram.TerminalCount()
	errSym := p.gram.Error()
	for term := 0; term < termCount; term++ {
		if p.gram.Action(state, term) == 0 {
			continue
		}

		if term == errSym {
			continue
		}

		kinds = append(kinds, p.gram.Terminal(term))
	}

	return kinds
}
