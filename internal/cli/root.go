// Package cli implements the composer command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/graph-to-compose/composer/internal/logger"
	"github.com/graph-to-compose/composer/internal/metrics"
	"github.com/graph-to-compose/composer/internal/result"
)

// ErrWarnings is returned in strict mode when a conversion produced warnings.
var ErrWarnings = errors.New("conversion produced warnings")

var (
	heading = color.New(color.FgBlue, color.Bold).SprintFunc()
	warnFmt = color.New(color.FgYellow)
	errFmt  = color.New(color.FgRed)
)

// CLI carries the streams and global settings shared by all subcommands.
type CLI struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	Log     *slog.Logger
	Metrics *metrics.Recorder

	logFormat       string
	logLevel        string
	metricsTextfile string
	strict          bool
}

// NewCLI returns a CLI bound to the given streams.
func NewCLI(in io.Reader, out, errOut io.Writer) *CLI {
	return &CLI{In: in, Out: out, Err: errOut, Log: logger.Default, Metrics: metrics.New()}
}

// NewRootCommand builds the composer command tree.
func NewRootCommand(cli *CLI) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "composer",
		Short: "Convert between service graphs and compose documents",
		Long: heading("Usage: composer [global options] <subcommand> [args]") + "\n\n" +
			"composer assembles a graph of services, networks, volumes, secrets and\n" +
			"configs into a compose document, lays a compose document out as a graph,\n" +
			"and exports compose documents to Terraform for the docker provider.\n",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.New(cli.Err, cli.logFormat, cli.logLevel)
			if err != nil {
				return err
			}
			cli.Log = log
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetIn(cli.In)
	cmd.SetOut(cli.Out)
	cmd.SetErr(cli.Err)

	flags := cmd.PersistentFlags()
	flags.StringVar(&cli.logFormat, "log-format", "text", "Log format. One of: (text | json)")
	flags.StringVar(&cli.logLevel, "log-level", "warn", "Log level. One of: (debug | info | warn | error)")
	flags.StringVar(&cli.metricsTextfile, "metrics-textfile", "", "Write conversion metrics to this file in Prometheus text format")
	flags.BoolVar(&cli.strict, "strict", false, "Exit non-zero when the conversion produced warnings")

	AddCommands(cmd, cli)
	return cmd
}

// AddCommands registers all subcommands to the root command.
func AddCommands(root *cobra.Command, cli *CLI) {
	root.AddCommand(
		NewAssembleCommand(cli),
		NewSynthesizeCommand(cli),
		NewTerraformCommand(cli),
		NewOrderCommand(cli),
	)
}

// Execute runs the command line with os.Args and returns the process exit code.
func Execute() int {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		color.NoColor = true
	}
	cli := NewCLI(os.Stdin, os.Stdout, os.Stderr)
	if err := NewRootCommand(cli).Execute(); err != nil {
		errFmt.Fprintf(cli.Err, "Error: %v\n", err)
		return 1
	}
	return 0
}

// finish reports the outcome of one conversion: it prints warnings, records
// metrics, writes the metrics textfile when asked and applies strict mode.
func (c *CLI) finish(direction string, started time.Time, counts map[string]int, warns []result.Warning, err error) error {
	c.printWarnings(warns)
	c.Metrics.Observe(direction, started, counts, warns, err)
	if c.metricsTextfile != "" {
		if werr := c.Metrics.WriteTextfile(c.metricsTextfile); werr != nil && err == nil {
			err = werr
		}
	}
	if err != nil {
		return err
	}
	if c.strict && len(warns) > 0 {
		return fmt.Errorf("%w: %d", ErrWarnings, len(warns))
	}
	return nil
}

func (c *CLI) printWarnings(warns []result.Warning) {
	for _, w := range warns {
		subject := w.NodeID
		if subject == "" {
			subject = w.Entity
		}
		warnFmt.Fprintf(c.Err, "WARN [%s] %s: %s\n", subject, w.Type, w.Message)
		if w.Suggestion != "" {
			fmt.Fprintf(c.Err, "  suggestion: %s\n", w.Suggestion)
		}
	}
}

// readInput reads path, or standard input when path is "-".
func (c *CLI) readInput(path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(c.In)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

// writeOutput writes data to path, or to standard output when path is empty or "-".
func (c *CLI) writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := c.Out.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	c.Log.Info("wrote output", "path", path, "bytes", len(data))
	return nil
}
