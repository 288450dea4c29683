package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/graph-to-compose/composer/internal/compose"
	"github.com/graph-to-compose/composer/internal/dependency"
)

func NewOrderCommand(cli *CLI) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "order -f compose.yaml",
		Short: "Print the service startup order implied by depends_on",
		Long: heading("composer order -f compose.yaml") + "\n\n" +
			"Prints one line per startup tier. Services on the same line have no\n" +
			"dependency on each other and can start together.\n",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.order(file)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the compose document (or - for stdin)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (c *CLI) order(file string) error {
	data, err := c.readInput(file)
	if err != nil {
		return err
	}
	doc, warns, err := compose.Unmarshal(data)
	if err != nil {
		return err
	}
	c.printWarnings(warns)

	tiers, err := dependency.Resolve(doc)
	if err != nil {
		return err
	}
	for i, tier := range tiers {
		fmt.Fprintf(c.Out, "%d: %s\n", i+1, strings.Join(tier, " "))
	}
	return nil
}
