package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lapis",
	Short: "Generate a portable LR parsing table from a grammar",
	Long: `lapis provides three features:
- Compiles a grammar into a portable parsing table.
- Prints a table description in readable format.
  This feature is primarily aimed at debugging the grammar.
- Parses a token sequence according to a compiled grammar.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}

// projectConfig holds defaults read from a lapis.toml in the working
// directory. Flags given on the command line win over it.
type projectConfig struct {
	Compile struct {
		Class          string `toml:"class"`
		Report         bool   `toml:"report"`
		FailOnConflict bool   `toml:"fail_on_conflict"`
	} `toml:"compile"`
	Parse struct {
		Recover bool `toml:"recover"`
	} `toml:"parse"`
}

const projectConfigFileName = "lapis.toml"

func loadProjectConfig() (*projectConfig, error) {
	config := &projectConfig{}
	config.Compile.Class = "lalr"

	if _, err := os.Stat(projectConfigFileName); err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, err
	}

	if _, err := toml.DecodeFile(projectConfigFileName, config); err != nil {
		return nil, fmt.Errorf("Cannot read %v: %w", projectConfigFileName, err)
	}

	return config, nil
}
