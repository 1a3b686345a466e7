package spec

import (
	"bufio"
	"io"
	"strings"

	"github.com/emirpasic/gods/sets/linkedhashset"
)

// RootNode is a parsed grammar description. Terminals lists the quoted
// terminal names in order of first appearance; the head of the first rule is
// the start symbol.
type RootNode struct {
	Rules     []*RuleNode
	Terminals []string
}

// RuleNode is one production of a grammar description.
type RuleNode struct {
	Head string
	Body []string
	Row  int
}

// Parse reads a grammar description. Each non-empty line is one production:
//
//	expr -> expr 'add' term
//	expr -> term
//	term -> 'id'
//	opt  -> _
//
// Quoted names are terminals, bare names are non-terminals, and `_` denotes
// an empty body. A `#` starts a comment running to the end of the line.
func Parse(src io.Reader) (*RootNode, error) {
	root := &RootNode{}
	terms := linkedhashset.New()

	row := 0
	scanner := bufio.NewScanner(src)
	for scanner.Scan() {
		row++

		line := scanner.Text()
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		if len(fields) < 3 || fields[1] != "->" {
			return nil, newSyntaxError(row, "a production must have the form: head -> body")
		}

		head := fields[0]
		if !isIdentifier(head) {
			return nil, newSyntaxError(row, "invalid head of a production: %v", head)
		}

		var body []string
		if len(fields) == 3 && fields[2] == emptyBodyMarker {
			body = []string{}
		} else {
			for _, f := range fields[2:] {
				if f == emptyBodyMarker {
					return nil, newSyntaxError(row, "%v must be the only symbol of a body", emptyBodyMarker)
				}
				if name, ok := unquoteTerminal(f); ok {
					if !isIdentifier(name) {
						return nil, newSyntaxError(row, "invalid terminal name: %v", f)
					}
					terms.Add(name)
					body = append(body, name)
					continue
				}
				if !isIdentifier(f) {
					return nil, newSyntaxError(row, "invalid symbol in a body: %v", f)
				}
				body = append(body, f)
			}
		}

		root.Rules = append(root.Rules, &RuleNode{
			Head: head,
			Body: body,
			Row:  row,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(root.Rules) == 0 {
		return nil, newSyntaxError(row, "a grammar description needs at least one production")
	}

	for _, t := range terms.Values() {
		root.Terminals = append(root.Terminals, t.(string))
	}

	return root, nil
}

const emptyBodyMarker = "_"

func unquoteTerminal(s string) (string, bool) {
	if len(s) >= 3 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1], true
	}
	return "", false
}

func isIdentifier(s string) bool {
	if s == "" || s == emptyBodyMarker {
		return false
	}
	for i, c := range s {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c == '_':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
