package grammar

import (
	"fmt"

	"github.com/arvelie/lapis/spec"
)

// Grammar is a context-free grammar validated by a GrammarBuilder. It is
// immutable; Compile derives parsing tables from it without changing it.
type Grammar struct {
	name                 string
	productionSet        *productionSet
	augmentedStartSymbol symbol
	errorSymbol          symbol
	symbolTable          *symbolTable
	recoverProductions   map[productionID]struct{}
	firstSet             *firstSet
	warnings             []string
}

func (g *Grammar) Name() string {
	return g.name
}

// Warnings returns non-fatal findings from validation, like productions
// unreachable from the start symbol.
func (g *Grammar) Warnings() []string {
	return g.warnings
}

type prodTemplate struct {
	lhs string
	rhs []string
}

// GrammarBuilder assembles a grammar from terminal declarations and
// productions. The head of the first production becomes the start symbol.
//
// The terminal named `error` is predefined and must not be declared. It may
// appear in a production body to mark a resynchronization point for error
// recovery.
type GrammarBuilder struct {
	name  string
	terms []string
	prods []*prodTemplate
}

func NewGrammarBuilder(name string) *GrammarBuilder {
	return &GrammarBuilder{
		name: name,
	}
}

// Terminals declares terminal symbols. The declaration order determines the
// terminal numbering.
func (b *GrammarBuilder) Terminals(names ...string) *GrammarBuilder {
	b.terms = append(b.terms, names...)
	return b
}

// Production appends a production `lhs → rhs`. Pass no rhs symbols for an
// empty production. Repeating a head adds an alternative.
func (b *GrammarBuilder) Production(lhs string, rhs ...string) *GrammarBuilder {
	b.prods = append(b.prods, &prodTemplate{
		lhs: lhs,
		rhs: rhs,
	})
	return b
}

// NewGrammarBuilderFromAST seeds a builder from a parsed grammar description.
func NewGrammarBuilderFromAST(name string, root *spec.RootNode) *GrammarBuilder {
	b := NewGrammarBuilder(name)
	b.Terminals(root.Terminals...)
	for _, r := range root.Rules {
		b.Production(r.Head, r.Body...)
	}
	return b
}

func (b *GrammarBuilder) Build() (*Grammar, error) {
	if len(b.prods) == 0 {
		return nil, semErrNoProduction
	}

	symTab := newSymbolTable()
	w := symTab.writer()
	r := symTab.reader()
	errSym := r.errorSymbol()

	lhsNames := map[string]struct{}{}
	for _, p := range b.prods {
		lhsNames[p.lhs] = struct{}{}
	}

	termNames := map[string]struct{}{}
	for _, t := range b.terms {
		if t == symbolNameError || t == symbolNameEOF {
			return nil, fmt.Errorf("%w: %v", semErrReservedName, t)
		}
		if _, dup := termNames[t]; dup {
			return nil, fmt.Errorf("%w: %v", semErrDuplicateName, t)
		}
		if _, clash := lhsNames[t]; clash {
			return nil, fmt.Errorf("%w: %v", semErrDuplicateName, t)
		}
		termNames[t] = struct{}{}
	}

	// The augmented start symbol takes the name of the start symbol with a
	// prime appended, like `expr'`.
	startName := b.prods[0].lhs
	if startName == symbolNameError || startName == symbolNameEOF {
		return nil, fmt.Errorf("%w: %v", semErrReservedName, startName)
	}
	augStartSym, err := w.registerStartSymbol(startName + "'")
	if err != nil {
		return nil, err
	}

	for _, p := range b.prods {
		if p.lhs == symbolNameError || p.lhs == symbolNameEOF {
			return nil, fmt.Errorf("%w: %v", semErrReservedName, p.lhs)
		}
		if _, err := w.registerNonTerminalSymbol(p.lhs); err != nil {
			return nil, err
		}
	}
	for _, t := range b.terms {
		if _, err := w.registerTerminalSymbol(t); err != nil {
			return nil, err
		}
	}

	prods := newProductionSet()
	recoverProds := map[productionID]struct{}{}
	{
		startSym, _ := r.toSymbol(startName)
		augProd, err := newProduction(augStartSym, []symbol{startSym})
		if err != nil {
			return nil, err
		}
		prods.append(augProd)

		for _, p := range b.prods {
			lhsSym, _ := r.toSymbol(p.lhs)
			rhsSyms := make([]symbol, len(p.rhs))
			isRecover := false
			for i, name := range p.rhs {
				sym, found := r.toSymbol(name)
				if !found || sym.isStart() {
					return nil, fmt.Errorf("%w: %v in production: %v", semErrUndefinedSym, name, p.lhs)
				}
				if sym == errSym {
					isRecover = true
				}
				rhsSyms[i] = sym
			}

			prod, err := newProduction(lhsSym, rhsSyms)
			if err != nil {
				return nil, err
			}
			if _, exist := prods.findByID(prod.id); exist {
				return nil, fmt.Errorf("%w: %v", semErrDuplicateProduction, p.lhs)
			}
			prods.append(prod)

			if isRecover {
				recoverProds[prod.id] = struct{}{}
			}
		}
	}

	// Productions whose head is unreachable from the start symbol never
	// take part in parsing. They are reported but not rejected.
	var warnings []string
	{
		reachable := map[symbol]struct{}{
			augStartSym: {},
		}
		unchecked := []symbol{augStartSym}
		for len(unchecked) > 0 {
			var next []symbol
			for _, lhs := range unchecked {
				ps, _ := prods.findByLHS(lhs)
				for _, p := range ps {
					for _, sym := range p.rhs {
						if !sym.isNonTerminal() {
							continue
						}
						if _, known := reachable[sym]; known {
							continue
						}
						reachable[sym] = struct{}{}
						next = append(next, sym)
					}
				}
			}
			unchecked = next
		}

		for _, sym := range r.nonTerminalSymbols() {
			if sym.isStart() {
				continue
			}
			if _, ok := reachable[sym]; ok {
				continue
			}
			name, _ := r.toText(sym)
			warnings = append(warnings, fmt.Sprintf("production is unreachable from the start symbol: %v", name))
			tracer().Infof("grammar %v: unreachable production: %v", b.name, name)
		}
	}

	fst, err := genFirstSet(prods)
	if err != nil {
		return nil, err
	}

	return &Grammar{
		name:                 b.name,
		productionSet:        prods,
		augmentedStartSymbol: augStartSym,
		errorSymbol:          errSym,
		symbolTable:          symTab,
		recoverProductions:   recoverProds,
		firstSet:             fst,
		warnings:             warnings,
	}, nil
}

// ConflictError reports that table construction found conflicts while
// FailFastOnConflict was enabled. The records describe each conflict and how
// the default resolution would have settled it.
type ConflictError struct {
	Conflicts []*spec.Conflict
}

func (e *ConflictError) Error() string {
	if len(e.Conflicts) == 1 {
		return "1 conflict found in the grammar"
	}
	return fmt.Sprintf("%v conflicts found in the grammar", len(e.Conflicts))
}

type compileConfig struct {
	class              spec.Class
	isReportingEnabled bool
	failFastOnConflict bool
}

type CompileOption func(config *compileConfig)

// SpecifyClass selects the construction algorithm. The default is
// spec.ClassLALR.
func SpecifyClass(class spec.Class) CompileOption {
	return func(config *compileConfig) {
		config.class = class
	}
}

// EnableReporting makes Compile generate a description of the parsing table.
func EnableReporting() CompileOption {
	return func(config *compileConfig) {
		config.isReportingEnabled = true
	}
}

// FailFastOnConflict makes Compile return a ConflictError instead of
// resolving conflicts by the default rules.
func FailFastOnConflict() CompileOption {
	return func(config *compileConfig) {
		config.failFastOnConflict = true
	}
}

// Compile builds the parsing tables of a grammar.
func Compile(gram *Grammar, opts ...CompileOption) (*spec.CompiledGrammar, *spec.Report, error) {
	config := &compileConfig{
		class: spec.ClassLALR,
	}
	for _, opt := range opts {
		opt(config)
	}

	tracer().Debugf("compiling grammar %v as %v", gram.name, config.class)

	r := gram.symbolTable.reader()

	terms, err := r.terminalTexts()
	if err != nil {
		return nil, nil, err
	}

	nonTerms, err := r.nonTerminalTexts()
	if err != nil {
		return nil, nil, err
	}

	var automaton *lrAutomaton
	switch config.class {
	case spec.ClassLALR:
		lr0, err := genLR0Automaton(gram.productionSet, gram.augmentedStartSymbol, gram.errorSymbol)
		if err != nil {
			return nil, nil, err
		}
		automaton, err = genLALR1Automaton(lr0, gram.productionSet, gram.firstSet)
		if err != nil {
			return nil, nil, err
		}
	case spec.ClassLR1:
		automaton, err = genLR1Automaton(gram.productionSet, gram.augmentedStartSymbol, gram.errorSymbol, gram.firstSet)
		if err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, fmt.Errorf("unknown grammar class: %v", config.class)
	}

	b := &lrTableBuilder{
		automaton:    automaton,
		prods:        gram.productionSet,
		termCount:    len(terms),
		nonTermCount: len(nonTerms),
		symTab:       r,
	}
	tab, err := b.build()
	if err != nil {
		return nil, nil, err
	}

	conflicts, err := b.conflictRecords(tab)
	if err != nil {
		return nil, nil, err
	}
	if config.failFastOnConflict && len(conflicts) > 0 {
		return nil, nil, &ConflictError{
			Conflicts: conflicts,
		}
	}

	var report *spec.Report
	if config.isReportingEnabled {
		report, err = b.genReport(tab, gram)
		if err != nil {
			return nil, nil, err
		}
	}

	action := make([]int, len(tab.actionTable))
	for i, e := range tab.actionTable {
		action[i] = int(e)
	}
	goTo := make([]int, len(tab.goToTable))
	for i, e := range tab.goToTable {
		goTo[i] = int(e)
	}

	prodCount := len(gram.productionSet.getAllProductions()) + 1
	lhsSyms := make([]int, prodCount)
	altSymCounts := make([]int, prodCount)
	recoverProds := make([]int, prodCount)
	for _, p := range gram.productionSet.getAllProductions() {
		lhsSyms[p.num] = p.lhs.num().Int()
		altSymCounts[p.num] = p.rhsLen

		if _, ok := gram.recoverProductions[p.id]; ok {
			recoverProds[p.num] = 1
		}
	}

	return &spec.CompiledGrammar{
		Name:  gram.name,
		Class: config.class,
		ParsingTable: &spec.ParsingTable{
			Action:                  action,
			GoTo:                    goTo,
			StateCount:              tab.stateCount,
			InitialState:            tab.InitialState.Int(),
			StartProduction:         productionNumStart.Int(),
			LHSSymbols:              lhsSyms,
			AlternativeSymbolCounts: altSymCounts,
			Terminals:               terms,
			TerminalCount:           tab.terminalCount,
			NonTerminals:            nonTerms,
			NonTerminalCount:        tab.nonTerminalCount,
			EOFSymbol:               symbolEOF.num().Int(),
			ErrorSymbol:             gram.errorSymbol.num().Int(),
			ErrorTrapperStates:      tab.errorTrapperStates,
			RecoverProductions:      recoverProds,
		},
		Conflicts: conflicts,
	}, report, nil
}
