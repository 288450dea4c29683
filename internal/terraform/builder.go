package terraform

import (
	"github.com/hashicorp/hcl/v2/hclwrite"
)

// File names of an exported configuration.
const (
	FileVersions  = "versions.tf"
	FileVariables = "variables.tf"
	FileMain      = "main.tf"
	FileTfvars    = "terraform.tfvars"
)

// ConfigBuilder collects the blocks of main.tf and the fixed template files of one
// Terraform configuration.
type ConfigBuilder struct {
	main      *hclwrite.File
	blocks    int
	templates map[string][]byte
}

// NewConfigBuilder returns an empty builder.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{main: hclwrite.NewEmptyFile(), templates: make(map[string][]byte)}
}

// Append adds a resource or data block to main.tf, separated from the previous one
// by a blank line. Nil blocks are ignored.
func (b *ConfigBuilder) Append(block *hclwrite.Block) {
	if block == nil {
		return
	}
	body := b.main.Body()
	if b.blocks > 0 {
		body.AppendNewline()
	}
	body.AppendBlock(block)
	b.blocks++
}

// SetTemplate sets the content of a file other than main.tf. Empty content removes it.
func (b *ConfigBuilder) SetTemplate(name string, content []byte) {
	if len(content) == 0 {
		delete(b.templates, name)
		return
	}
	b.templates[name] = content
}

// Files returns filename -> content. main.tf is present only when a block was appended.
func (b *ConfigBuilder) Files() map[string][]byte {
	out := make(map[string][]byte, len(b.templates)+1)
	for name, content := range b.templates {
		out[name] = content
	}
	if b.blocks > 0 {
		out[FileMain] = b.main.Bytes()
	}
	return out
}
