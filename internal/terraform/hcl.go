package terraform

import (
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// SanitizeName converts a compose entity name to a Terraform-safe resource name
// (e.g. web-1 -> web_1, 2fa -> _2fa).
func SanitizeName(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

// ResourceBlock creates a resource "type" "name" { } block; body can be filled by the caller.
func ResourceBlock(resourceType, name string) *hclwrite.Block {
	return hclwrite.NewBlock("resource", []string{resourceType, name})
}

// SetAttributeStr sets a string attribute on a block body.
func SetAttributeStr(body *hclwrite.Body, name, value string) {
	if value != "" {
		body.SetAttributeValue(name, cty.StringVal(value))
	}
}

// SetAttributeBool sets a bool attribute when it is true.
func SetAttributeBool(body *hclwrite.Body, name string, value bool) {
	if value {
		body.SetAttributeValue(name, cty.BoolVal(true))
	}
}

// SetAttributeInt sets an int attribute.
func SetAttributeInt(body *hclwrite.Body, name string, value int) {
	body.SetAttributeValue(name, cty.NumberIntVal(int64(value)))
}

// SetAttributeList sets a list(string) attribute.
func SetAttributeList(body *hclwrite.Body, name string, values []string) {
	if len(values) == 0 {
		return
	}
	list := make([]cty.Value, len(values))
	for i, v := range values {
		list[i] = cty.StringVal(v)
	}
	body.SetAttributeValue(name, cty.ListVal(list))
}

// SetAttributeMap sets a map(string) attribute (e.g. driver_opts).
func SetAttributeMap(body *hclwrite.Body, name string, m map[string]string) {
	if len(m) == 0 {
		return
	}
	ctyMap := make(map[string]cty.Value)
	for k, v := range m {
		ctyMap[k] = cty.StringVal(v)
	}
	body.SetAttributeValue(name, cty.MapVal(ctyMap))
}

// SetAttributeRefs sets a tuple of references (e.g. depends_on = [docker_container.db]).
func SetAttributeRefs(body *hclwrite.Body, name string, refs []hcl.Traversal) {
	if len(refs) == 0 {
		return
	}
	tokens := make([]hclwrite.Tokens, len(refs))
	for i, t := range refs {
		tokens[i] = hclwrite.TokensForTraversal(t)
	}
	body.SetAttributeRaw(name, hclwrite.TokensForTuple(tokens))
}

// AppendLabels appends one labels { label = k, value = v } block per label, in key order.
func AppendLabels(body *hclwrite.Body, labels map[string]string, keys []string) {
	for _, k := range keys {
		lb := body.AppendNewBlock("labels", nil).Body()
		lb.SetAttributeValue("label", cty.StringVal(k))
		lb.SetAttributeValue("value", cty.StringVal(labels[k]))
	}
}

// Traversal builds an hcl.Traversal such as docker_network.front.name.
func Traversal(root string, attrs ...string) hcl.Traversal {
	t := hcl.Traversal{hcl.TraverseRoot{Name: root}}
	for _, a := range attrs {
		t = append(t, hcl.TraverseAttr{Name: a})
	}
	return t
}
