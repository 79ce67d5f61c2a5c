// Package cli implements the granary command-line interface.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/granary/pkg/granary"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	logLevel  string
}

// app carries the state shared by one invocation of the command tree.
type app struct {
	flags     rootFlags
	configDir string
	cfg       *viper.Viper
}

// NewRootCmd creates the top-level "granary" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "granary",
		Short: "Track cereal stored in fixed-capacity containers",
		Long: "Granary keeps one container per cereal inside a storage of fixed total\n" +
			"capacity. Containers are allocated on the first add and freed once empty.",
		Version: granary.Version,
		// Errors are printed once by Run together with the exit code.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.granary-db)")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error (default: warn)")

	root.AddCommand(
		newVersionCmd(a),
		newInitCmd(a),
		newAddCmd(a),
		newGetCmd(a),
		newRemoveCmd(a),
		newAmountCmd(a),
		newSpaceCmd(a),
		newShowCmd(a),
		newHistoryCmd(a),
		newCerealsCmd(a),
	)
	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}

// Run executes the command tree with args and returns the exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "granary:", err)
		return exitCode(err)
	}
	return exitSuccess
}
