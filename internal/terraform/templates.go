package terraform

import (
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// VersionsTF returns content for versions.tf (terraform block + docker provider).
func VersionsTF() []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	tfBlock := body.AppendNewBlock("terraform", nil)
	tfBody := tfBlock.Body()
	tfBody.SetAttributeValue("required_version", cty.StringVal(">= 1.0"))
	reqProv := tfBody.AppendNewBlock("required_providers", nil)
	reqProv.Body().SetAttributeValue("docker", cty.ObjectVal(map[string]cty.Value{
		"source":  cty.StringVal("kreuzwerker/docker"),
		"version": cty.StringVal("~> 3.0"),
	}))

	body.AppendNewline()
	provBlock := body.AppendNewBlock("provider", []string{"docker"})
	provBlock.Body().SetAttributeTraversal("host", Traversal("var", "docker_host"))

	return f.Bytes()
}

// VariablesTF returns content for variables.tf.
func VariablesTF(defaultHost string) []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	hostBlock := body.AppendNewBlock("variable", []string{"docker_host"})
	hostBlock.Body().SetAttributeValue("description", cty.StringVal("Docker daemon address"))
	hostBlock.Body().SetAttributeTraversal("type", Traversal("string"))
	hostBlock.Body().SetAttributeValue("default", cty.StringVal(defaultHost))

	return f.Bytes()
}

// Tfvars returns terraform.tfvars content pinning the docker host.
func Tfvars(host string) []byte {
	f := hclwrite.NewEmptyFile()
	f.Body().SetAttributeValue("docker_host", cty.StringVal(host))
	return f.Bytes()
}
