package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/granary/internal/sqlite"
	"github.com/mesh-intelligence/granary/internal/storage"
	"github.com/mesh-intelligence/granary/pkg/types"
)

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print every container and its fill level",
		Long:  "Show prints the containers in allocation order, e.g. {RICE=5.0, BUCKWHEAT=3.0}.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withGranary(cmd, func(g *sqlite.Backend) error {
				text, err := g.Describe()
				if err != nil {
					return err
				}
				containers, err := g.Containers()
				if err != nil {
					return err
				}
				if containers == nil {
					containers = []types.Container{}
				}
				return a.output(cmd, containers, text)
			})
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history [cereal]",
		Short: "Print the ledger of container operations",
		Long: `History prints every add, get and remove that changed a container, oldest
first. With a cereal argument only that cereal's entries are shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var cereal types.Cereal
			if len(args) == 1 {
				c, err := types.ParseCereal(args[0])
				if err != nil {
					return err
				}
				cereal = c
			}
			return a.withGranary(cmd, func(g *sqlite.Backend) error {
				entries, err := g.Ledger(cereal)
				if err != nil {
					return err
				}
				if entries == nil {
					entries = []types.LedgerEntry{}
				}
				return a.output(cmd, entries, formatLedger(entries))
			})
		},
	}
}

func formatLedger(entries []types.LedgerEntry) string {
	if len(entries) == 0 {
		return "no entries"
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s  %-6s %-9s requested=%s moved=%s after=%s",
			e.CreatedAt.Format(time.RFC3339),
			e.Operation,
			e.Cereal,
			storage.FormatAmount(e.Requested),
			storage.FormatAmount(e.Moved),
			storage.FormatAmount(e.AmountAfter),
		))
	}
	return strings.Join(lines, "\n")
}

func newCerealsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cereals",
		Short: "List the cereals a granary can store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := make([]string, 0, len(types.Cereals))
			for _, c := range types.Cereals {
				names = append(names, c.String())
			}
			return a.output(cmd, names, strings.Join(names, "\n"))
		},
	}
}
