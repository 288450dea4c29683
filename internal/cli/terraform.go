package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/graph-to-compose/composer/internal/compose"
	"github.com/graph-to-compose/composer/internal/metrics"
	"github.com/graph-to-compose/composer/internal/terraform"
)

// TerraformOptions holds the options for the terraform command.
type TerraformOptions struct {
	File       string
	Output     string
	Tfvars     bool
	DockerHost string
}

func NewTerraformCommand(cli *CLI) *cobra.Command {
	opts := TerraformOptions{}
	def := terraform.DefaultOptions()
	cmd := &cobra.Command{
		Use:   "terraform -f compose.yaml -o dir",
		Short: "Export a compose document as Terraform for the docker provider",
		Long: heading("composer terraform -f compose.yaml -o dir") + "\n\n" +
			"Writes versions.tf, variables.tf and main.tf declaring the document's\n" +
			"networks, volumes and containers for the kreuzwerker/docker provider.\n",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.terraform(opts)
		},
	}
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Path to the compose document (or - for stdin)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "terraform", "Output directory for Terraform files")
	cmd.Flags().BoolVar(&opts.Tfvars, "tfvars", def.EmitTfvars, "Also generate terraform.tfvars")
	cmd.Flags().StringVar(&opts.DockerHost, "docker-host", def.DockerHost, "Default value of the docker_host variable")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (c *CLI) terraform(opts TerraformOptions) error {
	started := time.Now()
	data, err := c.readInput(opts.File)
	if err != nil {
		return err
	}
	doc, warns, err := compose.Unmarshal(data)
	if err != nil {
		return c.finish(metrics.DirectionTerraform, started, nil, nil, err)
	}

	files, twarns := terraform.Export(doc, terraform.Options{EmitTfvars: opts.Tfvars, DockerHost: opts.DockerHost})
	warns = append(warns, twarns...)
	err = c.writeFiles(opts.Output, files)
	return c.finish(metrics.DirectionTerraform, started, doc.Counts(), warns, err)
}

func (c *CLI) writeFiles(dir string, files map[string][]byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, files[name], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Fprintln(c.Out, "wrote", path)
	}
	return nil
}
