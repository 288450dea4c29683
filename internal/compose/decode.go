package compose

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/graph-to-compose/composer/internal/result"
	"gopkg.in/yaml.v3"
)

// ErrNotMapping is returned when the document root is not a mapping.
var ErrNotMapping = errors.New("compose document root is not a mapping")

// Unmarshal parses a YAML compose document. Entities keep their document order.
// Unknown top-level keys (version, x- extensions, ...) are ignored. Service options
// that cannot be read are dropped with an invalid_node warning. Entities whose
// body is not a mapping are skipped with a warning; a null body is an entity with
// no options.
func Unmarshal(data []byte) (*Document, []result.Warning, error) {
	doc := NewDocument("")
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil, nil
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, nil, fmt.Errorf("parse compose YAML: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return doc, nil, nil
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, nil, ErrNotMapping
	}

	d := &decoder{}
	for i := 0; i+1 < len(top.Content); i += 2 {
		key, value := top.Content[i], top.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			continue
		}
		switch key.Value {
		case SectionName:
			if value.Kind == yaml.ScalarNode {
				doc.Name = value.Value
			}
		case SectionServices:
			d.section(SectionServices, value, func(name string, body map[string]any) bool {
				dup := doc.Services.Has(name)
				s, issues := DecodeService(body)
				for _, issue := range issues {
					d.warnings = append(d.warnings, result.WarnEntity(result.TypeInvalidNode,
						SectionServices+"/"+name, issue, "Check the option against the compose file reference"))
				}
				doc.Services.Set(name, s)
				return dup
			})
		case SectionNetworks:
			d.section(SectionNetworks, value, func(name string, body map[string]any) bool {
				dup := doc.Networks.Has(name)
				doc.Networks.Set(name, NetworkFromData(ResourceBody(body)))
				return dup
			})
		case SectionVolumes:
			d.section(SectionVolumes, value, func(name string, body map[string]any) bool {
				dup := doc.Volumes.Has(name)
				doc.Volumes.Set(name, VolumeFromData(ResourceBody(body)))
				return dup
			})
		case SectionSecrets:
			d.section(SectionSecrets, value, func(name string, body map[string]any) bool {
				dup := doc.Secrets.Has(name)
				doc.Secrets.Set(name, SecretFromData(ResourceBody(body)))
				return dup
			})
		case SectionConfigs:
			d.section(SectionConfigs, value, func(name string, body map[string]any) bool {
				dup := doc.Configs.Has(name)
				doc.Configs.Set(name, ConfigFromData(ResourceBody(body)))
				return dup
			})
		}
	}
	return doc, d.warnings, nil
}

type decoder struct {
	warnings []result.Warning
}

// section walks the entities of one top-level section. set stores an entity and
// reports whether the name was already present.
func (d *decoder) section(kind string, node *yaml.Node, set func(name string, body map[string]any) bool) {
	if node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if key.Kind != yaml.ScalarNode || key.Value == "" {
			continue
		}
		entity := kind + "/" + key.Value

		var raw any
		if err := value.Decode(&raw); err != nil {
			d.warnings = append(d.warnings, result.WarnEntity(result.TypeInvalidNode, entity,
				"entity body could not be decoded: "+err.Error(), ""))
			continue
		}
		body, ok := raw.(map[string]any)
		if raw == nil {
			body, ok = map[string]any{}, true
		}
		if !ok {
			d.warnings = append(d.warnings, result.WarnEntity(result.TypeInvalidNode, entity,
				fmt.Sprintf("entity body must be a mapping, got %T", raw), "Write the entity as a key: value mapping"))
			continue
		}
		if set(key.Value, body) {
			d.warnings = append(d.warnings, result.WarnEntity(result.TypeDuplicateName, entity,
				"entity is declared more than once; the last declaration is used", ""))
		}
	}
}
