package cli

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/graph-to-compose/composer/internal/compose"
	"github.com/graph-to-compose/composer/internal/idgen"
	"github.com/graph-to-compose/composer/internal/metrics"
	"github.com/graph-to-compose/composer/internal/synth"
)

// SynthesizeOptions holds the options for the synthesize command.
type SynthesizeOptions struct {
	File          string
	Output        string
	SequentialIDs bool
}

func NewSynthesizeCommand(cli *CLI) *cobra.Command {
	opts := SynthesizeOptions{}
	cmd := &cobra.Command{
		Use:   "synthesize -f compose.yaml",
		Short: "Lay out a compose document as a graph",
		Long: heading("composer synthesize -f compose.yaml [-o graph.json]") + "\n\n" +
			"Reads a compose document and writes a graph with one node per entity\n" +
			"and one edge per reference a service makes, as JSON.\n",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.synthesize(opts)
		},
	}
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Path to the compose document (or - for stdin)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Write the graph to this file instead of stdout")
	cmd.Flags().BoolVar(&opts.SequentialIDs, "sequential-ids", false, "Use node-1, node-2, ... ids instead of random UUIDs")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (c *CLI) synthesize(opts SynthesizeOptions) error {
	started := time.Now()
	data, err := c.readInput(opts.File)
	if err != nil {
		return err
	}

	sopts := synth.DefaultOptions()
	if opts.SequentialIDs {
		sopts.IDs = idgen.NewSequence("node")
	}
	sopts.Logger = c.Log
	doc, warns, err := compose.Unmarshal(data)
	if err != nil {
		return c.finish(metrics.DirectionSynthesize, started, nil, nil, err)
	}
	res := synth.New(sopts).Synthesize(doc)
	warns = append(warns, res.Warnings...)

	out, err := json.MarshalIndent(res.Graph, "", "  ")
	if err == nil {
		err = c.writeOutput(opts.Output, append(out, '\n'))
	}
	return c.finish(metrics.DirectionSynthesize, started, doc.Counts(), warns, err)
}
