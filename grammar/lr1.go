package grammar

import (
	"fmt"
	"sort"
)

// genLR1Automaton generates a canonical LR(1) automaton. Unlike the LALR(1)
// construction, look-ahead symbols are part of each kernel's identity, so two
// states whose items share cores but not look-aheads stay separate.
func genLR1Automaton(prods *productionSet, startSym symbol, errSym symbol, first *firstSet) (*lrAutomaton, error) {
	if !startSym.isStart() {
		return nil, fmt.Errorf("passed symbol is not a start symbol")
	}

	automaton := &lrAutomaton{
		states: map[kernelID]*lrState{},
	}

	currentState := stateNumInitial
	knownKernels := map[kernelID]struct{}{}
	uncheckedKernels := []*kernel{}

	// Generate an initial kernel: [S' → ・S, $]
	{
		prods, _ := prods.findByLHS(startSym)
		initialItem, err := newLR0Item(prods[0], 0)
		if err != nil {
			return nil, err
		}
		initialItem.lookAhead.symbols = map[symbol]struct{}{
			symbolEOF: {},
		}

		k, err := newLR1Kernel([]*lrItem{initialItem})
		if err != nil {
			return nil, err
		}

		automaton.initialState = k.id
		knownKernels[k.id] = struct{}{}
		uncheckedKernels = append(uncheckedKernels, k)
	}

	for len(uncheckedKernels) > 0 {
		nextUncheckedKernels := []*kernel{}
		for _, k := range uncheckedKernels {
			state, neighbours, err := genLR1StateAndNeighbourKernels(k, prods, first, errSym)
			if err != nil {
				return nil, err
			}
			state.num = currentState
			currentState = currentState.next()

			automaton.states[state.id] = state

			for _, k := range neighbours {
				if _, known := knownKernels[k.id]; known {
					continue
				}
				knownKernels[k.id] = struct{}{}
				nextUncheckedKernels = append(nextUncheckedKernels, k)
			}
		}
		uncheckedKernels = nextUncheckedKernels
	}

	tracer().Debugf("LR(1) automaton generated: %v states", len(automaton.states))

	return automaton, nil
}

func genLR1StateAndNeighbourKernels(k *kernel, prods *productionSet, first *firstSet, errSym symbol) (*lrState, []*kernel, error) {
	items, err := genLR1Closure(k, prods, first)
	if err != nil {
		return nil, nil, err
	}
	neighbours, err := genLR1NeighbourKernels(items, prods)
	if err != nil {
		return nil, nil, err
	}

	next := map[symbol]kernelID{}
	kernels := []*kernel{}
	for _, n := range neighbours {
		next[n.symbol] = n.kernel.id
		kernels = append(kernels, n.kernel)
	}

	reducible := map[productionID]struct{}{}
	var emptyProdItems []*lrItem
	isErrorTrapper := false
	for _, item := range items {
		if item.dottedSymbol == errSym {
			isErrorTrapper = true
		}

		if item.reducible {
			reducible[item.prod] = struct{}{}

			prod, ok := prods.findByID(item.prod)
			if !ok {
				return nil, nil, fmt.Errorf("reducible production not found: %v", item.prod)
			}
			if prod.isEmpty() {
				emptyProdItems = append(emptyProdItems, item)
			}
		}
	}

	return &lrState{
		kernel:         k,
		next:           next,
		reducible:      reducible,
		emptyProdItems: emptyProdItems,
		isErrorTrapper: isErrorTrapper,
	}, kernels, nil
}

// genLR1Closure computes CLOSURE of a kernel with look-ahead symbols. Items
// sharing a core are kept as a single item whose look-ahead set is the union,
// and the closure is iterated until no set grows. Kernel items themselves are
// never regenerated by the closure (new items always have dot 0 and the start
// symbol never appears on a right-hand side), so their sets stay untouched.
func genLR1Closure(k *kernel, prods *productionSet, first *firstSet) ([]*lrItem, error) {
	items := []*lrItem{}
	itemsByCore := map[lrItemID]*lrItem{}
	for _, item := range k.items {
		items = append(items, item)
		itemsByCore[item.id] = item
	}

	for {
		changed := false
		for i := 0; i < len(items); i++ {
			item := items[i]
			if item.dottedSymbol.isTerminal() {
				continue
			}

			p, ok := prods.findByID(item.prod)
			if !ok {
				return nil, fmt.Errorf("production not found: %v", item.prod)
			}

			var lookAhead []symbol
			{
				fst, err := first.find(p, item.dot+1)
				if err != nil {
					return nil, err
				}

				for s := range fst.symbols {
					lookAhead = append(lookAhead, s)
				}
				if fst.empty {
					for a := range item.lookAhead.symbols {
						lookAhead = append(lookAhead, a)
					}
				}
			}

			ps, _ := prods.findByLHS(item.dottedSymbol)
			for _, prod := range ps {
				newItem, err := newLR0Item(prod, 0)
				if err != nil {
					return nil, err
				}

				clItem, exist := itemsByCore[newItem.id]
				if !exist {
					newItem.lookAhead.symbols = map[symbol]struct{}{}
					items = append(items, newItem)
					itemsByCore[newItem.id] = newItem
					clItem = newItem
					changed = true
				}

				for _, a := range lookAhead {
					if _, exist := clItem.lookAhead.symbols[a]; exist {
						continue
					}
					clItem.lookAhead.symbols[a] = struct{}{}
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}

	return items, nil
}

func genLR1NeighbourKernels(items []*lrItem, prods *productionSet) ([]*neighbourKernel, error) {
	kItemMap := map[symbol][]*lrItem{}
	for _, item := range items {
		if item.dottedSymbol.isNil() {
			continue
		}
		prod, ok := prods.findByID(item.prod)
		if !ok {
			return nil, fmt.Errorf("a production was not found: %v", item.prod)
		}
		kItem, err := newLR0Item(prod, item.dot+1)
		if err != nil {
			return nil, err
		}
		kItem.lookAhead.symbols = map[symbol]struct{}{}
		for a := range item.lookAhead.symbols {
			kItem.lookAhead.symbols[a] = struct{}{}
		}
		kItemMap[item.dottedSymbol] = append(kItemMap[item.dottedSymbol], kItem)
	}

	nextSyms := make([]symbol, 0, len(kItemMap))
	for sym := range kItemMap {
		nextSyms = append(nextSyms, sym)
	}
	sort.Slice(nextSyms, func(i, j int) bool {
		return nextSyms[i] < nextSyms[j]
	})

	kernels := []*neighbourKernel{}
	for _, sym := range nextSyms {
		k, err := newLR1Kernel(kItemMap[sym])
		if err != nil {
			return nil, err
		}
		kernels = append(kernels, &neighbourKernel{
			symbol: sym,
			kernel: k,
		})
	}

	return kernels, nil
}
