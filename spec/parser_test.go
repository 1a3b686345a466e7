package spec

import (
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	src := `
# expressions
expr -> expr 'add' term
expr -> term
term -> term 'mul' factor # trailing comment
term -> factor

factor -> 'l_paren' expr 'r_paren'
factor -> 'id'
opt    -> _
`

	root, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}

	eRules := []*RuleNode{
		{Head: "expr", Body: []string{"expr", "add", "term"}, Row: 3},
		{Head: "expr", Body: []string{"term"}, Row: 4},
		{Head: "term", Body: []string{"term", "mul", "factor"}, Row: 5},
		{Head: "term", Body: []string{"factor"}, Row: 6},
		{Head: "factor", Body: []string{"l_paren", "expr", "r_paren"}, Row: 8},
		{Head: "factor", Body: []string{"id"}, Row: 9},
		{Head: "opt", Body: []string{}, Row: 10},
	}
	if len(root.Rules) != len(eRules) {
		t.Fatalf("unexpected rule count; want: %v, got: %v", len(eRules), len(root.Rules))
	}
	for i, eRule := range eRules {
		rule := root.Rules[i]
		if rule.Head != eRule.Head {
			t.Errorf("unexpected head; want: %v, got: %v", eRule.Head, rule.Head)
		}
		if rule.Row != eRule.Row {
			t.Errorf("unexpected row; want: %v, got: %v", eRule.Row, rule.Row)
		}
		if len(rule.Body) != len(eRule.Body) {
			t.Fatalf("unexpected body; want: %v, got: %v", eRule.Body, rule.Body)
		}
		for j, eSym := range eRule.Body {
			if rule.Body[j] != eSym {
				t.Errorf("unexpected symbol; want: %v, got: %v", eSym, rule.Body[j])
			}
		}
	}

	// Terminals are listed in order of first appearance.
	eTerms := []string{"add", "mul", "l_paren", "r_paren", "id"}
	if len(root.Terminals) != len(eTerms) {
		t.Fatalf("unexpected terminals; want: %v, got: %v", eTerms, root.Terminals)
	}
	for i, eTerm := range eTerms {
		if root.Terminals[i] != eTerm {
			t.Errorf("unexpected terminal; want: %v, got: %v", eTerm, root.Terminals[i])
		}
	}
}

func TestParseSyntaxError(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		row     int
	}{
		{
			caption: "a grammar description needs at least one production",
			src:     "# comments only\n",
			row:     1,
		},
		{
			caption: "a production needs an arrow",
			src:     "expr expr 'add' term",
			row:     1,
		},
		{
			caption: "a production needs a body",
			src:     "expr ->",
			row:     1,
		},
		{
			caption: "a head must be an identifier",
			src:     "'expr' -> 'id'",
			row:     1,
		},
		{
			caption: "a head must not be the empty body marker",
			src:     "_ -> 'id'",
			row:     1,
		},
		{
			caption: "a terminal name must be an identifier",
			src:     "expr -> 'a-b'",
			row:     1,
		},
		{
			caption: "a symbol must be an identifier",
			src:     "expr -> 1term",
			row:     1,
		},
		{
			caption: "the empty body marker must be the only symbol of a body",
			src:     "expr -> term _",
			row:     1,
		},
		{
			caption: "the row of an invalid production is reported",
			src: `expr -> term
term ->
`,
			row: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src))
			if err == nil {
				t.Fatal("Parse must fail")
			}
			synErr, ok := err.(*SyntaxError)
			if !ok {
				t.Fatalf("unexpected error type: %T", err)
			}
			if synErr.Row != tt.row {
				t.Fatalf("unexpected row; want: %v, got: %v", tt.row, synErr.Row)
			}
		})
	}
}
