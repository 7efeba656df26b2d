// Package cmd wires zdx's cobra command tree: chat (default), exec,
// login, logout, models update, and threads {list|show|rm}, following the
// app-struct-plus-closures pattern used throughout the retrieved corpus's
// cobra-based CLIs.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tallesborges/zdx/internal/config"
	"github.com/tallesborges/zdx/internal/credstore"
	"github.com/tallesborges/zdx/providers/tool/calculator"
	"github.com/tallesborges/zdx/providers/tool/webfetch"

	"github.com/tallesborges/zdx/providers/tool"
)

// app carries the state every subcommand needs: parsed config, the
// credential store, and the I/O streams tests substitute.
type app struct {
	model         string
	thinkingLevel string
	cfg           *config.Config
	store         *credstore.Store
	catalog       *tool.Catalog
	stdin         io.Reader
	stdout        io.Writer
	stderr        io.Writer
}

// NewRootCommand builds the zdx command tree wired to the real process
// environment (stdio, on-disk config, on-disk credential cache).
func NewRootCommand() *cobra.Command {
	return newRootCommand(os.Stdin, os.Stdout, os.Stderr)
}

// NewRootCommandWithIO builds the command tree wired to the given
// streams, for tests that capture output.
func NewRootCommandWithIO(in io.Reader, out, errOut io.Writer) *cobra.Command {
	return newRootCommand(in, out, errOut)
}

func newRootCommand(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{stdin: in, stdout: out, stderr: errOut}

	cmd := &cobra.Command{
		Use:           "zdx",
		Short:         "A multi-provider streaming conversational agent CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	cmd.PersistentFlags().StringVarP(&a.model, "model", "m", "", "model id, e.g. claude-opus, openai:gpt-5, gemini-cli:gemini-2.5-flash")
	cmd.PersistentFlags().StringVarP(&a.thinkingLevel, "thinking", "t", "", "thinking/reasoning effort level")

	cmd.AddCommand(
		newChatCmd(a),
		newExecCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newModelsCmd(a),
		newThreadsCmd(a),
	)
	cmd.RunE = newChatCmd(a).RunE // `zdx` with no subcommand behaves like `zdx chat`

	return cmd
}

// init loads config and the credential store once, on first use by any
// subcommand's PersistentPreRunE.
func (a *app) init() error {
	if a.cfg != nil {
		return nil
	}

	cfgPath, err := config.DefaultPath()
	if err != nil {
		return fmt.Errorf("zdx: resolving config path: %w", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("zdx: loading config: %w", err)
	}
	a.cfg = cfg

	credPath, err := credstore.DefaultPath()
	if err != nil {
		return fmt.Errorf("zdx: resolving credential path: %w", err)
	}
	store, err := credstore.Open(credPath)
	if err != nil {
		return fmt.Errorf("zdx: loading credentials: %w", err)
	}
	a.store = store

	if a.model == "" {
		a.model = a.cfg.Model
	}
	if a.thinkingLevel == "" {
		a.thinkingLevel = a.cfg.ThinkingLevel
	}

	a.catalog = tool.NewCatalogWithTools(
		calculator.NewCalculatorTool(),
		webfetch.NewWebFetchTool(),
	)

	return nil
}

// filterTools narrows a.catalog down to the comma-separated list of tool
// names in spec, or disables it entirely. An empty spec leaves every
// registered tool enabled.
func (a *app) filterTools(spec string, disable bool) *tool.Catalog {
	if disable {
		return tool.NewCatalog()
	}
	if spec == "" {
		return a.catalog
	}
	names := splitCSV(spec)
	filtered := tool.NewCatalog()
	for _, name := range names {
		if t, ok := a.catalog.Get(name); ok {
			filtered.AddTools(t)
		}
	}
	return filtered
}

func splitCSV(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}
