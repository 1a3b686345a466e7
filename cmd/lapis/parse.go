package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/arvelie/lapis/driver"
	"github.com/arvelie/lapis/spec"
	"github.com/spf13/cobra"
)

var parseFlags = struct {
	source    *string
	onlyParse *bool
	json      *bool
	recover   *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "parse <compiled grammar file path>",
		Short:   "Parse a token sequence",
		Long: `parse reads whitespace-separated terminal names and runs the parser over them:

  echo 'id add id' | lapis parse expr.json`,
		Example: `  cat tokens | lapis parse expr.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runParse,
	}
	parseFlags.source = cmd.Flags().StringP("source", "s", "", "source file path (default stdin)")
	parseFlags.onlyParse = cmd.Flags().Bool("only-parse", false, "when this option is enabled, the parser doesn't build a syntax tree")
	parseFlags.json = cmd.Flags().Bool("json", false, "print a syntax tree as JSON")
	parseFlags.recover = cmd.Flags().Bool("recover", false, "recover from syntax errors using the error symbol")
	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	config, err := loadProjectConfig()
	if err != nil {
		return err
	}

	cgram, err := readCompiledGrammar(args[0])
	if err != nil {
		return fmt.Errorf("Cannot read a compiled grammar: %w", err)
	}

	var src io.Reader = os.Stdin
	if *parseFlags.source != "" {
		f, err := os.Open(*parseFlags.source)
		if err != nil {
			return fmt.Errorf("Cannot open the source file %s: %w", *parseFlags.source, err)
		}
		defer f.Close()
		src = f
	}

	gram := driver.NewGrammar(cgram)
	toks, err := readTokens(cgram, src)
	if err != nil {
		return err
	}

	var opts []driver.ParserOption
	var treeAct *driver.SyntaxTreeActionSet
	var tb *driver.DefaultSyntaxTreeBuilder
	if !*parseFlags.onlyParse {
		tb = driver.NewDefaultSyntaxTreeBuilder()
		treeAct = driver.NewSyntaxTreeActionSet(gram, tb)
		opts = append(opts, driver.SemanticAction(treeAct))
	}
	if *parseFlags.recover || config.Parse.Recover {
		opts = append(opts, driver.WithRecovery())
	}

	p, err := driver.NewParser(gram, driver.NewTokenStream(toks), opts...)
	if err != nil {
		return err
	}

	err = p.Parse(context.Background())
	if err != nil {
		return err
	}

	synErrs := p.SyntaxErrors()
	for _, synErr := range synErrs {
		writeSyntaxError(os.Stderr, synErr)
	}

	if !*parseFlags.onlyParse {
		if tree := tb.Tree(); tree != nil {
			if *parseFlags.json {
				b, err := json.Marshal(tree)
				if err != nil {
					return err
				}
				fmt.Fprintln(os.Stdout, string(b))
			} else {
				driver.PrintTree(os.Stdout, tree)
			}
		}
	}

	if len(synErrs) > 0 {
		return fmt.Errorf("syntax error")
	}

	return nil
}

func readCompiledGrammar(path string) (*spec.CompiledGrammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	cgram := &spec.CompiledGrammar{}
	err = json.Unmarshal(d, cgram)
	if err != nil {
		return nil, err
	}

	return cgram, nil
}

// readTokens splits the source into whitespace-separated terminal names and
// maps each one to its terminal number. A name that isn't a terminal of the
// grammar becomes an invalid token, which the parser reports as a syntax
// error.
func readTokens(cgram *spec.CompiledGrammar, src io.Reader) ([]*driver.Token, error) {
	terms := map[string]int{}
	for t, name := range cgram.ParsingTable.Terminals {
		// The EOF and error symbols have no lexeme a user could write.
		if name == "" || t == cgram.ParsingTable.EOFSymbol || t == cgram.ParsingTable.ErrorSymbol {
			continue
		}
		terms[name] = t
	}

	var toks []*driver.Token
	row := 0
	scanner := bufio.NewScanner(src)
	for scanner.Scan() {
		row++
		line := scanner.Text()

		col := 0
		for col < len(line) {
			if line[col] == ' ' || line[col] == '\t' {
				col++
				continue
			}
			start := col
			for col < len(line) && line[col] != ' ' && line[col] != '\t' {
				col++
			}
			text := line[start:col]

			tok := &driver.Token{
				Text: text,
				Row:  row,
				Col:  start + 1,
			}
			if term, ok := terms[text]; ok {
				tok.Term = term
			} else {
				tok.IsInval = true
			}
			toks = append(toks, tok)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return toks, nil
}

func writeSyntaxError(w io.Writer, synErr *driver.SyntaxError) {
	var msg string
	switch {
	case synErr.Token.EOF():
		msg = "<eof>"
	case synErr.Token.Invalid():
		msg = fmt.Sprintf("'%v' (invalid)", string(synErr.Token.Lexeme()))
	default:
		msg = fmt.Sprintf("'%v'", string(synErr.Token.Lexeme()))
	}

	fmt.Fprintf(w, "%v:%v: %v: %v", synErr.Row, synErr.Col, synErr.Message, msg)
	if len(synErr.ExpectedTerminals) > 0 {
		fmt.Fprintf(w, "; expected: %v", synErr.ExpectedTerminals[0])
		for _, t := range synErr.ExpectedTerminals[1:] {
			fmt.Fprintf(w, ", %v", t)
		}
	}
	fmt.Fprintf(w, "\n")
}
