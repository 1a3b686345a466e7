package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/arvelie/lapis/grammar"
	"github.com/arvelie/lapis/spec"
	"github.com/spf13/cobra"
)

var compileFlags = struct {
	output         *string
	class          *string
	report         *bool
	failOnConflict *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "compile",
		Short:   "Compile a grammar into a parsing table",
		Example: `  lapis compile expr.grammar -o expr.json`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runCompile,
	}
	compileFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	compileFlags.class = cmd.Flags().String("class", "", "grammar class: lalr or lr1 (default lalr)")
	compileFlags.report = cmd.Flags().Bool("report", false, "write a table description to <grammar-name>-report.json")
	compileFlags.failOnConflict = cmd.Flags().Bool("fail-on-conflict", false, "treat conflicts as an error instead of resolving them")
	rootCmd.AddCommand(cmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	config, err := loadProjectConfig()
	if err != nil {
		return err
	}

	class := config.Compile.Class
	if *compileFlags.class != "" {
		class = *compileFlags.class
	}
	reportEnabled := config.Compile.Report || *compileFlags.report
	failOnConflict := config.Compile.FailOnConflict || *compileFlags.failOnConflict

	var gramName string
	var src io.Reader
	if len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("Cannot open the grammar file %s: %w", args[0], err)
		}
		defer f.Close()
		src = f

		gramName = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	} else {
		src = os.Stdin
		gramName = "grammar"
	}

	ast, err := spec.Parse(src)
	if err != nil {
		return err
	}

	gram, err := grammar.NewGrammarBuilderFromAST(gramName, ast).Build()
	if err != nil {
		return err
	}

	for _, w := range gram.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %v\n", w)
	}

	opts := []grammar.CompileOption{}
	switch class {
	case "lalr":
		opts = append(opts, grammar.SpecifyClass(spec.ClassLALR))
	case "lr1":
		opts = append(opts, grammar.SpecifyClass(spec.ClassLR1))
	default:
		return fmt.Errorf("invalid grammar class: %v", class)
	}
	if reportEnabled {
		opts = append(opts, grammar.EnableReporting())
	}
	if failOnConflict {
		opts = append(opts, grammar.FailFastOnConflict())
	}

	cgram, report, err := grammar.Compile(gram, opts...)
	if err != nil {
		return err
	}

	err = writeCompiledGrammar(cgram, *compileFlags.output)
	if err != nil {
		return fmt.Errorf("Cannot write an output file: %w", err)
	}

	if report != nil {
		err = writeReport(cgram.Name, report, *compileFlags.output)
		if err != nil {
			return fmt.Errorf("Cannot write a report file: %w", err)
		}
	}

	if len(cgram.Conflicts) > 0 {
		if len(cgram.Conflicts) == 1 {
			fmt.Fprintf(os.Stderr, "1 conflict\n")
		} else {
			fmt.Fprintf(os.Stderr, "%v conflicts\n", len(cgram.Conflicts))
		}
	}

	return nil
}

func writeCompiledGrammar(cgram *spec.CompiledGrammar, path string) error {
	var w io.Writer
	if path != "" {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	} else {
		w = os.Stdout
	}

	b, err := json.Marshal(cgram)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%v\n", string(b))

	return nil
}

// writeReport writes a report to <grammar-name>-report.json in the directory
// of the output file, or in the working directory when the compiled grammar
// goes to stdout.
func writeReport(gramName string, report *spec.Report, outPath string) error {
	dir := ""
	if outPath != "" {
		dir = filepath.Dir(outPath)
	}
	path := filepath.Join(dir, gramName+"-report.json")

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	b, err := json.Marshal(report)
	if err != nil {
		return err
	}
	fmt.Fprintf(f, "%v\n", string(b))

	return nil
}
