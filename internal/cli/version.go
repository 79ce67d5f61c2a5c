package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/granary/pkg/granary"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the granary version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res := struct {
				Version string `json:"version"`
				Module  string `json:"module"`
			}{granary.Version, granary.ModulePath}
			return a.output(cmd, res, fmt.Sprintf("granary v%s\nmodule: %s", granary.Version, granary.ModulePath))
		},
	}
}
