// Container commands: add, get, remove, amount, space.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/granary/internal/sqlite"
	"github.com/mesh-intelligence/granary/internal/storage"
	"github.com/mesh-intelligence/granary/pkg/types"
)

// transferResult is the JSON form of add and get.
type transferResult struct {
	Cereal    types.Cereal `json:"cereal"`
	Requested float64      `json:"requested"`
	Moved     float64      `json:"moved"`
	Remainder *float64     `json:"remainder,omitempty"`
	Amount    float64      `json:"amount"`
}

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <cereal> <amount>",
		Short: "Pour cereal into its container",
		Long: `Add pours amount into the cereal's container, allocating the container
if the cereal has none. Prints the part that did not fit.

Example:
  granary add RICE 5
  granary add peas 12.5 --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cereal, amount, err := parseCerealAmount(args)
			if err != nil {
				return err
			}
			return a.withGranary(cmd, func(g *sqlite.Backend) error {
				remainder, err := g.AddCereal(cereal, amount)
				if err != nil {
					return err
				}
				level, err := g.GetAmount(cereal)
				if err != nil {
					return err
				}
				res := transferResult{
					Cereal:    cereal,
					Requested: amount,
					Moved:     amount - remainder,
					Remainder: &remainder,
					Amount:    level,
				}
				return a.output(cmd, res, storage.FormatAmount(remainder))
			})
		},
	}
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <cereal> <amount>",
		Short: "Take cereal out of its container",
		Long: `Get takes up to amount out of the cereal's container and prints what was
actually taken. A cereal with no container yields 0.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cereal, amount, err := parseCerealAmount(args)
			if err != nil {
				return err
			}
			return a.withGranary(cmd, func(g *sqlite.Backend) error {
				taken, err := g.GetCereal(cereal, amount)
				if err != nil {
					return err
				}
				level, err := g.GetAmount(cereal)
				if err != nil {
					return err
				}
				res := transferResult{Cereal: cereal, Requested: amount, Moved: taken, Amount: level}
				return a.output(cmd, res, storage.FormatAmount(taken))
			})
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <cereal>",
		Short: "Free an empty container",
		Long: `Remove frees the cereal's container if it exists and is empty. A container
that still holds cereal is left in place.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cereal, err := types.ParseCereal(args[0])
			if err != nil {
				return err
			}
			return a.withGranary(cmd, func(g *sqlite.Backend) error {
				removed, err := g.RemoveContainer(cereal)
				if err != nil {
					return err
				}
				text := fmt.Sprintf("removed %s", cereal)
				if !removed {
					text = fmt.Sprintf("%s not removed", cereal)
				}
				res := struct {
					Cereal  types.Cereal `json:"cereal"`
					Removed bool         `json:"removed"`
				}{cereal, removed}
				return a.output(cmd, res, text)
			})
		},
	}
}

// levelResult is the JSON form of amount and space.
type levelResult struct {
	Cereal types.Cereal `json:"cereal"`
	Amount *float64     `json:"amount,omitempty"`
	Space  *float64     `json:"space,omitempty"`
}

func newAmountCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "amount <cereal>",
		Short: "Print the fill level of a container",
		Long:  "Amount prints how much cereal the container holds, or 0 if there is none.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cereal, err := types.ParseCereal(args[0])
			if err != nil {
				return err
			}
			return a.withGranary(cmd, func(g *sqlite.Backend) error {
				amount, err := g.GetAmount(cereal)
				if err != nil {
					return err
				}
				return a.output(cmd, levelResult{Cereal: cereal, Amount: &amount}, storage.FormatAmount(amount))
			})
		},
	}
}

func newSpaceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "space <cereal>",
		Short: "Print the free space in a container",
		Long:  "Space prints how much more cereal fits in the container. Fails if there is none.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cereal, err := types.ParseCereal(args[0])
			if err != nil {
				return err
			}
			return a.withGranary(cmd, func(g *sqlite.Backend) error {
				space, err := g.GetSpace(cereal)
				if err != nil {
					return err
				}
				return a.output(cmd, levelResult{Cereal: cereal, Space: &space}, storage.FormatAmount(space))
			})
		},
	}
}
