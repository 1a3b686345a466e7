package spec

// Class selects the table construction algorithm.
type Class string

const (
	ClassLALR = Class("lalr")
	ClassLR1  = Class("lr1")
)

// CompiledGrammar is the serializable result of compiling a grammar. A parser
// driver needs nothing but this structure.
type CompiledGrammar struct {
	Name         string        `json:"name"`
	Class        Class         `json:"class"`
	ParsingTable *ParsingTable `json:"parsing_table"`
	Conflicts    []*Conflict   `json:"conflicts,omitempty"`
}

// ParsingTable holds the action and goto tables in row-major form. An action
// entry encodes a shift to state s as -s, a reduce of production p as p, and
// an error as 0. A goto entry is the next state, with 0 meaning error.
type ParsingTable struct {
	Action                  []int    `json:"action"`
	GoTo                    []int    `json:"goto"`
	StateCount              int      `json:"state_count"`
	InitialState            int      `json:"initial_state"`
	StartProduction         int      `json:"start_production"`
	LHSSymbols              []int    `json:"lhs_symbols"`
	AlternativeSymbolCounts []int    `json:"alternative_symbol_counts"`
	Terminals               []string `json:"terminals"`
	TerminalCount           int      `json:"terminal_count"`
	NonTerminals            []string `json:"non_terminals"`
	NonTerminalCount        int      `json:"non_terminal_count"`
	EOFSymbol               int      `json:"eof_symbol"`
	ErrorSymbol             int      `json:"error_symbol"`
	ErrorTrapperStates      []int    `json:"error_trapper_states"`
	RecoverProductions      []int    `json:"recover_productions"`
}

// Conflict records one conflict the table constructor found and how it was
// resolved. Exactly one of SRConflict and RRConflict is set.
type Conflict struct {
	State      int         `json:"state"`
	SRConflict *SRConflict `json:"shift_reduce,omitempty"`
	RRConflict *RRConflict `json:"reduce_reduce,omitempty"`
}
