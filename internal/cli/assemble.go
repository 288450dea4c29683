package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/graph-to-compose/composer/internal/assembler"
	"github.com/graph-to-compose/composer/internal/diagram"
	"github.com/graph-to-compose/composer/internal/metrics"
)

// AssembleOptions holds the options for the assemble command.
type AssembleOptions struct {
	File      string
	Output    string
	Name      string
	MountPath string
}

func NewAssembleCommand(cli *CLI) *cobra.Command {
	opts := AssembleOptions{}
	cmd := &cobra.Command{
		Use:   "assemble -f graph.json",
		Short: "Assemble a graph into a compose document",
		Long: heading("composer assemble -f graph.json [-o compose.yaml]") + "\n\n" +
			"Reads a graph as JSON and writes the compose document it describes.\n" +
			"Nodes that cannot be represented are skipped and reported as warnings.\n",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.assemble(opts)
		},
	}
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Path to the graph JSON file (or - for stdin)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Write the document to this file instead of stdout")
	cmd.Flags().StringVar(&opts.Name, "name", "", "Project name written as the document's top-level name")
	cmd.Flags().StringVar(&opts.MountPath, "mount-path", assembler.DefaultMountPath, "Container path for volume edges whose volume has no mount_path")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (c *CLI) assemble(opts AssembleOptions) error {
	started := time.Now()
	data, err := c.readInput(opts.File)
	if err != nil {
		return err
	}
	var g diagram.Graph
	if err := json.Unmarshal(data, &g); err != nil {
		err = fmt.Errorf("parse graph JSON: %w", err)
		return c.finish(metrics.DirectionAssemble, started, nil, nil, err)
	}

	aopts := assembler.DefaultOptions()
	aopts.Name = opts.Name
	aopts.DefaultMountPath = opts.MountPath
	aopts.Logger = c.Log
	a := assembler.New(aopts)
	out, res, err := a.AssembleYAML(g)
	if err == nil {
		err = c.writeOutput(opts.Output, out)
	}
	return c.finish(metrics.DirectionAssemble, started, res.Document.Counts(), res.Warnings, err)
}
