package grammar

import (
	"fmt"
	"testing"
)

func TestGenLR1Automaton(t *testing.T) {
	// This grammar belongs to LR(1) class, not LALR(1). An LALR(1) automaton
	// merges the two states containing the items e → 'z'・ and f → 'z'・ because
	// they share cores, which raises a reduce/reduce conflict. The canonical
	// construction keeps them separate.
	src := `
s -> 'a' e 'c'
s -> 'a' f 'd'
s -> 'b' f 'c'
s -> 'b' e 'd'
e -> 'z'
f -> 'z'
`

	gram := genGrammar(t, src)

	firstSet, err := genFirstSet(gram.productionSet)
	if err != nil {
		t.Fatalf("failed to create a FIRST set: %v", err)
	}

	automaton, err := genLR1Automaton(gram.productionSet, gram.augmentedStartSymbol, gram.errorSymbol, firstSet)
	if err != nil {
		t.Fatalf("failed to create a LR1 automaton: %v", err)
	}
	if automaton == nil {
		t.Fatalf("genLR1Automaton returns nil without any error")
	}

	initialState := automaton.states[automaton.initialState]
	if initialState == nil {
		t.Errorf("failed to get an initial state: %v", automaton.initialState)
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
			withLookAhead(genLR0Item("s", 1, "a", "e", "c"), symbolEOF),
			withLookAhead(genLR0Item("s", 1, "a", "f", "d"), symbolEOF),
		},
		3: {
			withLookAhead(genLR0Item("s", 1, "b", "f", "c"), symbolEOF),
			withLookAhead(genLR0Item("s", 1, "b", "e", "d"), symbolEOF),
		},
		4: {
			withLookAhead(genLR0Item("s", 2, "a", "e", "c"), symbolEOF),
		},
		5: {
			withLookAhead(genLR0Item("s", 2, "a", "f", "d"), symbolEOF),
		},
		6: {
			withLookAhead(genLR0Item("e", 1, "z"), genSym("c")),
			withLookAhead(genLR0Item("f", 1, "z"), genSym("d")),
		},
		7: {
			withLookAhead(genLR0Item("s", 2, "b", "f", "c"), symbolEOF),
		},
		8: {
			withLookAhead(genLR0Item("s", 2, "b", "e", "d"), symbolEOF),
		},
		9: {
			withLookAhead(genLR0Item("e", 1, "z"), genSym("d")),
			withLookAhead(genLR0Item("f", 1, "z"), genSym("c")),
		},
		10: {
			withLookAhead(genLR0Item("s", 3, "a", "e", "c"), symbolEOF),
		},
		11: {
			withLookAhead(genLR0Item("s", 3, "a", "f", "d"), symbolEOF),
		},
		12: {
			withLookAhead(genLR0Item("s", 3, "b", "f", "c"), symbolEOF),
		},
		13: {
			withLookAhead(genLR0Item("s", 3, "b", "e", "d"), symbolEOF),
		},
	}

	expectedStates := []*expectedLRState{
		{
			kernelItems: expectedKernels[0],
			nextStates: map[symbol][]*lrItem{
				genSym("s"): expectedKernels[1],
				genSym("a"): expectedKernels[2],
				genSym("b"): expectedKernels[3],
			},
			reducibleProds: []*production{},
		},
		{
			kernelItems: expectedKernels[1],
			nextStates:  map[symbol][]*lrItem{},
			reducibleProds: []*production{
				genProd("s'", "s"),
			},
		},
		{
			kernelItems: expectedKernels[2],
			nextStates: map[symbol][]*lrItem{
				genSym("e"): expectedKernels[4],
				genSym("f"): expectedKernels[5],
				genSym("z"): expectedKernels[6],
			},
			reducibleProds: []*production{},
		},
		{
			kernelItems: expectedKernels[3],
			nextStates: map[symbol][]*lrItem{
				genSym("f"): expectedKernels[7],
				genSym("e"): expectedKernels[8],
				genSym("z"): expectedKernels[9],
			},
			reducibleProds: []*production{},
		},
		{
			kernelItems: expectedKernels[4],
			nextStates: map[symbol][]*lrItem{
				genSym("c"): expectedKernels[10],
			},
			reducibleProds: []*production{},
		},
		{
			kernelItems: expectedKernels[5],
			nextStates: map[symbol][]*lrItem{
				genSym("d"): expectedKernels[11],
			},
			reducibleProds: []*production{},
		},
		{
			kernelItems: expectedKernels[6],
			nextStates:  map[symbol][]*lrItem{},
			reducibleProds: []*production{
				genProd("e", "z"),
				genProd("f", "z"),
			},
		},
		{
			kernelItems: expectedKernels[7],
			nextStates: map[symbol][]*lrItem{
				genSym("c"): expectedKernels[12],
			},
			reducibleProds: []*production{},
		},
		{
			kernelItems: expectedKernels[8],
			nextStates: map[symbol][]*lrItem{
				genSym("d"): expectedKernels[13],
			},
			reducibleProds: []*production{},
		},
		{
			kernelItems: expectedKernels[9],
			nextStates:  map[symbol][]*lrItem{},
			reducibleProds: []*production{
				genProd("e", "z"),
				genProd("f", "z"),
			},
		},
		{
			kernelItems: expectedKernels[10],
			nextStates:  map[symbol][]*lrItem{},
			reducibleProds: []*production{
				genProd("s", "a", "e", "c"),
			},
		},
		{
			kernelItems: expectedKernels[11],
			nextStates:  map[symbol][]*lrItem{},
			reducibleProds: []*production{
				genProd("s", "a", "f", "d"),
			},
		},
		{
			kernelItems: expectedKernels[12],
			nextStates:  map[symbol][]*lrItem{},
			reducibleProds: []*production{
				genProd("s", "b", "f", "c"),
			},
		},
		{
			kernelItems: expectedKernels[13],
			nextStates:  map[symbol][]*lrItem{},
			reducibleProds: []*production{
				genProd("s", "b", "e", "d"),
			},
		},
	}

	testLR1Automaton(t, expectedStates, automaton)
}

func TestLR1AutomatonKeepsStatesLALR1WouldMerge(t *testing.T) {
	src := `
s -> 'a' e 'c'
s -> 'a' f 'd'
s -> 'b' f 'c'
s -> 'b' e 'd'
e -> 'z'
f -> 'z'
`

	gram := genGrammar(t, src)

	firstSet, err := genFirstSet(gram.productionSet)
	if err != nil {
		t.Fatalf("failed to create a FIRST set: %v", err)
	}

	lr0, err := genLR0Automaton(gram.productionSet, gram.augmentedStartSymbol, gram.errorSymbol)
	if err != nil {
		t.Fatalf("failed to create a LR0 automaton: %v", err)
	}
	lalr, err := genLALR1Automaton(lr0, gram.productionSet, firstSet)
	if err != nil {
		t.Fatalf("failed to create a LALR1 automaton: %v", err)
	}
	lr1, err := genLR1Automaton(gram.productionSet, gram.augmentedStartSymbol, gram.errorSymbol, firstSet)
	if err != nil {
		t.Fatalf("failed to create a LR1 automaton: %v", err)
	}

	if len(lr1.states) != len(lalr.states)+1 {
		t.Fatalf("unexpected state counts; LALR(1): %v, LR(1): %v", len(lalr.states), len(lr1.states))
	}
}

// testLR1Automaton is a canonical-LR(1) counterpart of testLRAutomaton.
// Expected states are looked up by look-ahead-inclusive kernel IDs.
func testLR1Automaton(t *testing.T, expected []*expectedLRState, automaton *lrAutomaton) {
	if len(automaton.states) != len(expected) {
		t.Errorf("state count is mismatched; want: %v, got: %v", len(expected), len(automaton.states))
	}

	for i, eState := range expected {
		t.Run(fmt.Sprintf("state #%v", i), func(t *testing.T) {
			k, err := newLR1Kernel(eState.kernelItems)
			if err != nil {
				t.Fatalf("failed to create a kernel item: %v", err)
			}

			state, ok := automaton.states[k.id]
			if !ok {
				t.Fatalf("a kernel was not found: %v", k.id)
			}

			if len(state.kernel.items) != len(eState.kernelItems) {
				t.Errorf("kernels is mismatched; want: %v, got: %v", len(eState.kernelItems), len(state.kernel.items))
			}

			// test next states
			{
				if len(state.next) != len(eState.nextStates) {
					t.Errorf("next state count is mismatched; want: %v, got: %v", len(eState.nextStates), len(state.next))
				}
				for eSym, eKItems := range eState.nextStates {
					nextStateKernel, err := newLR1Kernel(eKItems)
					if err != nil {
						t.Fatalf("failed to create a kernel item: %v", err)
					}
					nextState, ok := state.next[eSym]
					if !ok {
						t.Fatalf("next state was not found; state: %v, symbol: %v", state.id, eSym)
					}
					if nextState != nextStateKernel.id {
						t.Fatalf("a kernel ID of the next state is mismatched; want: %v, got: %v", nextStateKernel.id, nextState)
					}
				}
			}

			// test reducible productions
			{
				if len(state.reducible) != len(eState.reducibleProds) {
					t.Errorf("reducible production count is mismatched; want: %v, got: %v", len(eState.reducibleProds), len(state.reducible))
				}
				for _, eProd := range eState.reducibleProds {
					if _, ok := state.reducible[eProd.id]; !ok {
						t.Errorf("reducible production was not found: %v", eProd.id)
					}
				}
			}
		})
	}
}
