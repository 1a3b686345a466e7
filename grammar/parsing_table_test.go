package grammar

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/arvelie/lapis/spec"
)

type expectedState struct {
	kernelItems []*lrItem
	acts        map[symbol]testActionEntry
	goTos       map[symbol][]*lrItem
}

func TestGenLALRParsingTable(t *testing.T) {
	src := `
s -> l 'eq' r
s -> r
l -> 'ref' r
l -> 'id'
r -> l
`

	var ptab *ParsingTable
	var automaton *lrAutomaton
	var gram *Grammar
	var nonTermCount int
	var termCount int
	{
		gram = genGrammar(t, src)

		first, err := genFirstSet(gram.productionSet)
		if err != nil {
			t.Fatal(err)
		}
		lr0, err := genLR0Automaton(gram.productionSet, gram.augmentedStartSymbol, gram.errorSymbol)
		if err != nil {
			t.Fatal(err)
		}
		automaton, err = genLALR1Automaton(lr0, gram.productionSet, first)
		if err != nil {
			t.Fatal(err)
		}

		r := gram.symbolTable.reader()
		nonTermTexts, err := r.nonTerminalTexts()
		if err != nil {
			t.Fatal(err)
		}
		termTexts, err := r.terminalTexts()
		if err != nil {
			t.Fatal(err)
		}
		nonTermCount = len(nonTermTexts)
		termCount = len(termTexts)

		lalr := &lrTableBuilder{
			automaton:    automaton,
			prods:        gram.productionSet,
			termCount:    termCount,
			nonTermCount: nonTermCount,
			symTab:       r,
		}
		ptab, err = lalr.build()
		if err != nil {
			t.Fatalf("failed to create a LALR parsing table: %v", err)
		}
		if ptab == nil {
			t.Fatal("build returns nil without any error")
		}
	}

	genSym := newTestSymbolGenerator(t, gram.symbolTable)
	genProd := newTestProductionGenerator(t, genSym)
	genLR0Item := newTestLR0ItemGenerator(t, genProd)

	expectedKernels := map[int][]*lrItem{
		0: {
			withLookAhead(genLR0Item("s'", 0, "s"), symbolEOF),
		},
		1: {
			withLookAhead(genLR0Item("s'", 1, "s"), symbolEOF),
		},
		2: {
			withLookAhead(genLR0Item("s", 1, "l", "eq", "r"), symbolEOF),
			withLookAhead(genLR0Item("r", 1, "l"), symbolEOF),
		},
		3: {
			withLookAhead(genLR0Item("s", 1, "r"), symbolEOF),
		},
		4: {
			withLookAhead(genLR0Item("l", 1, "ref", "r"), genSym("eq"), symbolEOF),
		},
		5: {
			withLookAhead(genLR0Item("l", 1, "id"), genSym("eq"), symbolEOF),
		},
		6: {
			withLookAhead(genLR0Item("s", 2, "l", "eq", "r"), symbolEOF),
		},
		7: {
			withLookAhead(genLR0Item("l", 2, "ref", "r"), genSym("eq"), symbolEOF),
		},
		8: {
			withLookAhead(genLR0Item("r", 1, "l"), genSym("eq"), symbolEOF),
		},
		9: {
			withLookAhead(genLR0Item("s", 3, "l", "eq", "r"), symbolEOF),
		},
	}

	expectedStates := []expectedState{
		{
			kernelItems: expectedKernels[0],
			acts: map[symbol]testActionEntry{
				genSym("ref"): {
					ty:        ActionTypeShift,
					nextState: expectedKernels[4],
				},
				genSym("id"): {
					ty:        ActionTypeShift,
					nextState: expectedKernels[5],
				},
			},
			goTos: map[symbol][]*lrItem{
				genSym("s"): expectedKernels[1],
				genSym("l"): expectedKernels[2],
				genSym("r"): expectedKernels[3],
			},
		},
		{
			kernelItems: expectedKernels[1],
			acts: map[symbol]testActionEntry{
				symbolEOF: {
					ty:         ActionTypeReduce,
					production: genProd("s'", "s"),
				},
			},
		},
		{
			kernelItems: expectedKernels[2],
			acts: map[symbol]testActionEntry{
				genSym("eq"): {
					ty:        ActionTypeShift,
					nextState: expectedKernels[6],
				},
				symbolEOF: {
					ty:         ActionTypeReduce,
					production: genProd("r", "l"),
				},
			},
		},
		{
			kernelItems: expectedKernels[3],
			acts: map[symbol]testActionEntry{
				symbolEOF: {
					ty:         ActionTypeReduce,
					production: genProd("s", "r"),
				},
			},
		},
		{
			kernelItems: expectedKernels[4],
			acts: map[symbol]testActionEntry{
				genSym("ref"): {
					ty:        ActionTypeShift,
					nextState: expectedKernels[4],
				},
				genSym("id"): {
					ty:        ActionTypeShift,
					nextState: expectedKernels[5],
				},
			},
			goTos: map[symbol][]*lrItem{
				genSym("r"): expectedKernels[7],
				genSym("l"): expectedKernels[8],
			},
		},
		{
			kernelItems: expectedKernels[5],
			acts: map[symbol]testActionEntry{
				genSym("eq"): {
					ty:         ActionTypeReduce,
					production: genProd("l", "id"),
				},
				symbolEOF: {
					ty:         ActionTypeReduce,
					production: genProd("l", "id"),
				},
			},
		},
		{
			kernelItems: expectedKernels[6],
			acts: map[symbol]testActionEntry{
				genSym("ref"): {
					ty:        ActionTypeShift,
					nextState: expectedKernels[4],
				},
				genSym("id"): {
					ty:        ActionTypeShift,
					nextState: expectedKernels[5],
				},
			},
			goTos: map[symbol][]*lrItem{
				genSym("l"): expectedKernels[8],
				genSym("r"): expectedKernels[9],
			},
		},
		{
			kernelItems: expectedKernels[7],
			acts: map[symbol]testActionEntry{
				genSym("eq"): {
					ty:         ActionTypeReduce,
					production: genProd("l", "ref", "r"),
				},
				symbolEOF: {
					ty:         ActionTypeReduce,
					production: genProd("l", "ref", "r"),
				},
			},
		},
		{
			kernelItems: expectedKernels[8],
			acts: map[symbol]testActionEntry{
				genSym("eq"): {
					ty:         ActionTypeReduce,
					production: genProd("r", "l"),
				},
				symbolEOF: {
					ty:         ActionTypeReduce,
					production: genProd("r", "l"),
				},
			},
		},
		{
			kernelItems: expectedKernels[9],
			acts: map[symbol]testActionEntry{
				symbolEOF: {
					ty:         ActionTypeReduce,
					production: genProd("s", "l", "eq", "r"),
				},
			},
		},
	}

	t.Run("initial state", func(t *testing.T) {
		iniState := findStateByNum(automaton.states, ptab.InitialState)
		if iniState == nil {
			t.Fatalf("the initial state was not found: #%v", ptab.InitialState)
		}
		eIniState, err := newKernel(expectedKernels[0])
		if err != nil {
			t.Fatalf("failed to create a kernel item: %v", err)
		}
		if iniState.id != eIniState.id {
			t.Fatalf("the initial state is mismatched; want: %v, got: %v", eIniState.id, iniState.id)
		}
	})

	for i, eState := range expectedStates {
		t.Run(fmt.Sprintf("#%v", i), func(t *testing.T) {
			k, err := newKernel(eState.kernelItems)
			if err != nil {
				t.Fatalf("failed to create a kernel item: %v", err)
			}
			state, ok := automaton.states[k.id]
			if !ok {
				t.Fatalf("state was not found: #%v", i)
			}

			testAction(t, &eState, state, ptab, automaton, gram, termCount)
			testGoTo(t, &eState, state, ptab, automaton, nonTermCount)
		})
	}
}

func TestCompileShiftReduceConflict(t *testing.T) {
	src := `
expr -> expr 'add' expr
expr -> 'id'
`

	gram := genGrammar(t, src)
	cg, _, err := Compile(gram)
	if err != nil {
		t.Fatal(err)
	}

	if len(cg.Conflicts) != 1 {
		t.Fatalf("unexpected conflict count; want: %v, got: %v", 1, len(cg.Conflicts))
	}
	con := cg.Conflicts[0]
	if con.SRConflict == nil {
		t.Fatalf("a shift/reduce conflict was expected: %#v", con)
	}
	if con.SRConflict.ResolvedBy != ResolvedByShift.Int() {
		t.Errorf("unexpected resolution method; want: %v, got: %v", ResolvedByShift.Int(), con.SRConflict.ResolvedBy)
	}
	if con.SRConflict.AdoptedState == nil {
		t.Errorf("the shift action must be adopted: %#v", con.SRConflict)
	}
	if con.SRConflict.AdoptedProduction != nil {
		t.Errorf("the reduce action must not be adopted: %#v", con.SRConflict)
	}
	if con.SRConflict.Production != 2 {
		t.Errorf("unexpected production; want: %v, got: %v", 2, con.SRConflict.Production)
	}
}

func TestCompileReduceReduceConflict(t *testing.T) {
	src := `
s -> a
s -> b
a -> 'x'
b -> 'x'
`

	gram := genGrammar(t, src)
	cg, _, err := Compile(gram)
	if err != nil {
		t.Fatal(err)
	}

	if len(cg.Conflicts) != 1 {
		t.Fatalf("unexpected conflict count; want: %v, got: %v", 1, len(cg.Conflicts))
	}
	con := cg.Conflicts[0]
	if con.RRConflict == nil {
		t.Fatalf("a reduce/reduce conflict was expected: %#v", con)
	}
	if con.RRConflict.ResolvedBy != ResolvedByProdOrder.Int() {
		t.Errorf("unexpected resolution method; want: %v, got: %v", ResolvedByProdOrder.Int(), con.RRConflict.ResolvedBy)
	}

	// The productions a → 'x' and b → 'x' have the numbers 4 and 5. The one
	// defined earlier must win, and the pair order of the record is
	// canonical: the earlier production always comes first.
	if con.RRConflict.Production1 != 4 {
		t.Errorf("unexpected production; want: %v, got: %v", 4, con.RRConflict.Production1)
	}
	if con.RRConflict.Production2 != 5 {
		t.Errorf("unexpected production; want: %v, got: %v", 5, con.RRConflict.Production2)
	}
	if con.RRConflict.AdoptedProduction != 4 {
		t.Errorf("unexpected adopted production; want: %v, got: %v", 4, con.RRConflict.AdoptedProduction)
	}
}

func TestCompileCommonPrefixGrammar(t *testing.T) {
	// The alternatives share the prefix 'a', but the look-ahead symbol
	// distinguishes them, so the table must be conflict-free.
	src := `
s -> 'a' 'b'
s -> 'a'
`

	for _, class := range []spec.Class{spec.ClassLALR, spec.ClassLR1} {
		t.Run(string(class), func(t *testing.T) {
			gram := genGrammar(t, src)
			cg, _, err := Compile(gram, SpecifyClass(class))
			if err != nil {
				t.Fatal(err)
			}
			if len(cg.Conflicts) != 0 {
				t.Fatalf("unexpected conflict count; want: %v, got: %v", 0, len(cg.Conflicts))
			}
		})
	}
}

func TestCompileGrammarWithoutUserDefinedTerminals(t *testing.T) {
	// A grammar generating only the empty string uses no terminal of its
	// own, and its table holds just the reserved EOF and error symbols.
	src := `
s -> _
`

	gram := genGrammar(t, src)
	cg, _, err := Compile(gram)
	if err != nil {
		t.Fatal(err)
	}

	eTerms := []string{"", "<eof>", "error"}
	if len(cg.ParsingTable.Terminals) != len(eTerms) {
		t.Fatalf("unexpected terminals; want: %v, got: %v", eTerms, cg.ParsingTable.Terminals)
	}
	for i, eTerm := range eTerms {
		if cg.ParsingTable.Terminals[i] != eTerm {
			t.Errorf("unexpected terminal; want: %v, got: %v", eTerm, cg.ParsingTable.Terminals[i])
		}
	}
}

func TestCompileFailFastOnConflict(t *testing.T) {
	src := `
expr -> expr 'add' expr
expr -> 'id'
`

	gram := genGrammar(t, src)
	_, _, err := Compile(gram, FailFastOnConflict())
	if err == nil {
		t.Fatal("Compile must fail")
	}

	var cErr *ConflictError
	if !errors.As(err, &cErr) {
		t.Fatalf("unexpected error type: %T", err)
	}
	if len(cErr.Conflicts) != 1 {
		t.Fatalf("unexpected conflict count; want: %v, got: %v", 1, len(cErr.Conflicts))
	}
}

func TestCompileGeneratesSameTables(t *testing.T) {
	tests := []struct {
		caption string
		src     string
	}{
		{
			caption: "a conflict-free grammar",
			src: `
expr   -> expr 'add' term
expr   -> term
term   -> term 'mul' factor
term   -> factor
factor -> 'l_paren' expr 'r_paren'
factor -> 'id'
`,
		},
		{
			// The conflict records embedded in the compiled grammar must
			// be reproducible as well, not just the tables.
			caption: "a grammar containing shift/reduce and reduce/reduce conflicts",
			src: `
s -> e
s -> a
s -> b
e -> e 'add' e
e -> 'id'
a -> 'x'
b -> 'x'
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			for _, class := range []spec.Class{spec.ClassLALR, spec.ClassLR1} {
				t.Run(string(class), func(t *testing.T) {
					gram1 := genGrammar(t, tt.src)
					cg1, report1, err := Compile(gram1, SpecifyClass(class), EnableReporting())
					if err != nil {
						t.Fatal(err)
					}

					for i := 0; i < 10; i++ {
						gram2 := genGrammar(t, tt.src)
						cg2, report2, err := Compile(gram2, SpecifyClass(class), EnableReporting())
						if err != nil {
							t.Fatal(err)
						}

						if !reflect.DeepEqual(cg1, cg2) {
							t.Fatalf("compiled grammars are mismatched: %#v, %#v", cg1, cg2)
						}
						if !reflect.DeepEqual(report1, report2) {
							t.Fatalf("reports are mismatched: %#v, %#v", report1, report2)
						}
					}
				})
			}
		})
	}
}

func testAction(t *testing.T, expectedState *expectedState, state *lrState, ptab *ParsingTable, automaton *lrAutomaton, gram *Grammar, termCount int) {
	nonEmptyEntries := map[symbolNum]struct{}{}
	for eSym, eAct := range expectedState.acts {
		nonEmptyEntries[eSym.num()] = struct{}{}

		ty, stateNum, prodNum := ptab.getAction(state.num, eSym.num())
		if ty != eAct.ty {
			t.Fatalf("action type is mismatched; want: %v, got: %v", eAct.ty, ty)
		}
		switch eAct.ty {
		case ActionTypeShift:
			eNextState, err := newKernel(eAct.nextState)
			if err != nil {
				t.Fatal(err)
			}
			nextState := findStateByNum(automaton.states, stateNum)
			if nextState == nil {
				t.Fatalf("state was not found; state: #%v", stateNum)
			}
			if nextState.id != eNextState.id {
				t.Fatalf("next state is mismatched; symbol: %v, want: %v, got: %v", eSym, eNextState.id, nextState.id)
			}
		case ActionTypeReduce:
			prod := findProductionByNum(gram.productionSet, prodNum)
			if prod == nil {
				t.Fatalf("production was not found: #%v", prodNum)
			}
			if prod.id != eAct.production.id {
				t.Fatalf("production is mismatched; symbol: %v, want: %v, got: %v", eSym, eAct.production.id, prod.id)
			}
		}
	}
	for symNum := 0; symNum < termCount; symNum++ {
		if _, checked := nonEmptyEntries[symbolNum(symNum)]; checked {
			continue
		}
		ty, stateNum, prodNum := ptab.getAction(state.num, symbolNum(symNum))
		if ty != ActionTypeError {
			t.Errorf("unexpected ACTION entry; state: #%v, symbol: #%v, action type: %v, next state: #%v, production: #%v", state.num, symNum, ty, stateNum, prodNum)
		}
	}
}

func testGoTo(t *testing.T, expectedState *expectedState, state *lrState, ptab *ParsingTable, automaton *lrAutomaton, nonTermCount int) {
	nonEmptyEntries := map[symbolNum]struct{}{}
	for eSym, eGoTo := range expectedState.goTos {
		nonEmptyEntries[eSym.num()] = struct{}{}

		eNextState, err := newKernel(eGoTo)
		if err != nil {
			t.Fatal(err)
		}
		ty, stateNum := ptab.getGoTo(state.num, eSym.num())
		if ty != GoToTypeRegistered {
			t.Fatalf("GOTO entry was not found; state: #%v, symbol: #%v", state.num, eSym)
		}
		nextState := findStateByNum(automaton.states, stateNum)
		if nextState == nil {
			t.Fatalf("state was not found: #%v", stateNum)
		}
		if nextState.id != eNextState.id {
			t.Fatalf("next state is mismatched; symbol: %v, want: %v, got: %v", eSym, eNextState.id, nextState.id)
		}
	}
	for symNum := 0; symNum < nonTermCount; symNum++ {
		if _, checked := nonEmptyEntries[symbolNum(symNum)]; checked {
			continue
		}
		ty, _ := ptab.getGoTo(state.num, symbolNum(symNum))
		if ty != GoToTypeError {
			t.Errorf("unexpected GOTO entry; state: #%v, symbol: #%v", state.num, symNum)
		}
	}
}

type testActionEntry struct {
	ty         ActionType
	nextState  []*lrItem
	production *production
}

func findStateByNum(states map[kernelID]*lrState, num stateNum) *lrState {
	for _, state := range states {
		if state.num == num {
			return state
		}
	}
	return nil
}

func findProductionByNum(prods *productionSet, num productionNum) *production {
	for _, prod := range prods.getAllProductions() {
		if prod.num == num {
			return prod
		}
	}
	return nil
}
