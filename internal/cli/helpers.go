// Shared helpers for granary CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/granary/internal/logger"
	"github.com/mesh-intelligence/granary/internal/sqlite"
	"github.com/mesh-intelligence/granary/pkg/types"
)

// withGranary attaches a SQLite backend for the duration of fn. Logs go to
// the command's stderr.
func (a *app) withGranary(cmd *cobra.Command, fn func(*sqlite.Backend) error) error {
	cfg, err := a.granaryConfig()
	if err != nil {
		return err
	}
	logCfg, err := a.loggerConfig()
	if err != nil {
		return err
	}
	log := logger.NewWithWriter(logCfg, cmd.ErrOrStderr()).
		WithFields(logger.Fields(logger.FieldCommand, cmd.Name()))

	backend := sqlite.NewBackend(sqlite.WithLogger(log))
	if err := backend.Attach(cfg); err != nil {
		return classify(fmt.Errorf("attach granary: %w", err))
	}

	runErr := fn(backend)
	if err := backend.Detach(); err != nil && runErr == nil {
		return sysErr(fmt.Errorf("detach granary: %w", err))
	}
	return classify(runErr)
}

// output prints v as indented JSON in --json mode and text otherwise.
func (a *app) output(cmd *cobra.Command, v any, text string) error {
	w := cmd.OutOrStdout()
	if !a.flags.jsonMode {
		_, err := fmt.Fprintln(w, text)
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysErr(fmt.Errorf("marshal output: %w", err))
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// parseAmount reads a command-line amount. Range checks are left to the
// engine so the CLI reports the same errors as the library.
func parseAmount(s string) (float64, error) {
	amount, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: amount %q is not a number", types.ErrInvalidArgument, s)
	}
	return amount, nil
}

// parseCerealAmount reads the <cereal> <amount> argument pair.
func parseCerealAmount(args []string) (types.Cereal, float64, error) {
	cereal, err := types.ParseCereal(args[0])
	if err != nil {
		return 0, 0, err
	}
	amount, err := parseAmount(args[1])
	if err != nil {
		return 0, 0, err
	}
	return cereal, amount, nil
}
