package compose

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/graph-to-compose/composer/internal/result"
	"gopkg.in/yaml.v3"
)

// Marshal writes the document as YAML. Keys follow the fixed entity key order,
// entities follow section order, and empty fields are never written. Values that
// cannot be represented (only possible in pass-through keys) are skipped and
// reported; the rest of the document is still written.
func Marshal(doc *Document) ([]byte, []result.Warning, error) {
	enc := &encoder{}
	root := enc.document(doc)

	var buf bytes.Buffer
	ye := yaml.NewEncoder(&buf)
	ye.SetIndent(2)
	if err := ye.Encode(root); err != nil {
		return nil, enc.warnings, fmt.Errorf("encode compose document: %w", err)
	}
	if err := ye.Close(); err != nil {
		return nil, enc.warnings, fmt.Errorf("encode compose document: %w", err)
	}
	return buf.Bytes(), enc.warnings, nil
}

type encoder struct {
	warnings []result.Warning
}

func (e *encoder) document(doc *Document) *yaml.Node {
	root := mappingNode()
	if doc.Name != "" {
		setStr(root, SectionName, doc.Name)
	}

	services := mappingNode()
	doc.Services.Each(func(name string, s ServiceConfig) {
		setNode(services, name, e.service(name, s))
	})
	setNode(root, SectionServices, services)

	if doc.Networks.Len() > 0 {
		m := mappingNode()
		doc.Networks.Each(func(name string, n NetworkConfig) { setNode(m, name, e.network(name, n)) })
		setNode(root, SectionNetworks, m)
	}
	if doc.Volumes.Len() > 0 {
		m := mappingNode()
		doc.Volumes.Each(func(name string, v VolumeConfig) { setNode(m, name, e.volume(name, v)) })
		setNode(root, SectionVolumes, m)
	}
	if doc.Secrets.Len() > 0 {
		m := mappingNode()
		doc.Secrets.Each(func(name string, s SecretConfig) {
			n := mappingNode()
			setStr(n, "name", s.Name)
			setStr(n, "file", s.File)
			setStr(n, "environment", s.Environment)
			setBool(n, "external", s.External)
			e.extras(n, SectionSecrets+"/"+name, s.Extras)
			setNode(m, name, n)
		})
		setNode(root, SectionSecrets, m)
	}
	if doc.Configs.Len() > 0 {
		m := mappingNode()
		doc.Configs.Each(func(name string, c ConfigConfig) {
			n := mappingNode()
			setStr(n, "name", c.Name)
			setStr(n, "file", c.File)
			setStr(n, "content", c.Content)
			setStr(n, "environment", c.Environment)
			setBool(n, "external", c.External)
			e.extras(n, SectionConfigs+"/"+name, c.Extras)
			setNode(m, name, n)
		})
		setNode(root, SectionConfigs, m)
	}
	return &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}
}

func (e *encoder) service(name string, s ServiceConfig) *yaml.Node {
	n := mappingNode()
	setStr(n, KeyContainerName, s.ContainerName)
	setStr(n, KeyImage, s.Image)
	if s.Build != nil {
		setNode(n, KeyBuild, build(*s.Build))
	}
	setStringOrList(n, KeyCommand, s.Command)
	setStringOrList(n, KeyEntrypoint, s.Entrypoint)
	setStr(n, KeyWorkingDir, s.WorkingDir)
	setStr(n, KeyUser, s.User)
	setStr(n, KeyHostname, s.Hostname)
	setStr(n, KeyRestart, string(s.Restart))
	e.entries(n, "service/"+name+"."+KeyPorts, KeyPorts, s.Ports, s.LongPorts)
	setStrings(n, KeyExpose, s.Expose)
	switch {
	case len(s.Environment.List) > 0:
		setStrings(n, KeyEnvironment, s.Environment.List)
	case len(s.Environment.Map) > 0:
		setNode(n, KeyEnvironment, stringMap(s.Environment.Map))
	}
	setStrings(n, KeyEnvFile, s.EnvFile)
	if len(s.Labels) > 0 {
		setNode(n, KeyLabels, stringMap(s.Labels))
	}
	e.entries(n, "service/"+name+"."+KeyVolumes, KeyVolumes, s.Volumes, s.LongVolumes)
	for _, r := range []struct {
		key  string
		refs Refs
	}{
		{KeyNetworks, s.Networks},
		{KeySecrets, s.Secrets},
		{KeyConfigs, s.Configs},
		{KeyDependsOn, s.DependsOn},
	} {
		if r.refs.Len() > 0 {
			setNode(n, r.key, e.refs("service/"+name+"."+r.key, r.refs))
		}
	}
	if s.Healthcheck != nil {
		setNode(n, KeyHealthcheck, healthcheck(*s.Healthcheck))
	}
	e.extras(n, "service/"+name, s.Extras)
	return n
}

// entries writes the short-syntax strings of a list followed by its long-syntax
// mappings.
func (e *encoder) entries(m *yaml.Node, path, key string, short []string, long []map[string]any) {
	if len(short) == 0 && len(long) == 0 {
		return
	}
	seq := sequenceNode()
	for _, s := range short {
		seq.Content = append(seq.Content, strNode(s))
	}
	for i, entry := range long {
		if v, ok := e.value(path+"["+strconv.Itoa(len(short)+i)+"]", entry); ok {
			seq.Content = append(seq.Content, v)
		}
	}
	setNode(m, key, seq)
}

// extras appends pass-through keys in sorted order.
func (e *encoder) extras(m *yaml.Node, path string, extras map[string]any) {
	for _, k := range sortedKeys(extras) {
		if v, ok := e.value(path+"."+k, extras[k]); ok {
			setNode(m, k, v)
		}
	}
}

func (e *encoder) refs(path string, r Refs) *yaml.Node {
	if r.Mapping {
		m := mappingNode()
		for _, it := range r.Items {
			attrs, _ := e.value(path+"."+it.Name, it.Attrs)
			if attrs == nil {
				attrs = mappingNode()
			}
			setNode(m, it.Name, attrs)
		}
		return m
	}
	seq := sequenceNode()
	for _, it := range r.Items {
		if len(it.Attrs) == 0 {
			seq.Content = append(seq.Content, strNode(it.Name))
			continue
		}
		m := mappingNode()
		setStr(m, "source", it.Name)
		for _, k := range sortedKeys(it.Attrs) {
			if v, ok := e.value(path+"."+it.Name+"."+k, it.Attrs[k]); ok {
				setNode(m, k, v)
			}
		}
		seq.Content = append(seq.Content, m)
	}
	return seq
}

// value encodes an untyped value. Mapping keys are sorted so the output does not
// depend on Go map iteration order.
func (e *encoder) value(path string, v any) (node *yaml.Node, ok bool) {
	switch x := v.(type) {
	case nil:
		return nil, false
	case string:
		return strNode(x), true
	case map[string]any:
		m := mappingNode()
		for _, k := range sortedKeys(x) {
			if child, ok := e.value(path+"."+k, x[k]); ok {
				setNode(m, k, child)
			}
		}
		return m, true
	case map[string]string:
		return stringMap(x), true
	case []any:
		seq := sequenceNode()
		for i, item := range x {
			if child, ok := e.value(path+"["+strconv.Itoa(i)+"]", item); ok {
				seq.Content = append(seq.Content, child)
			}
		}
		return seq, true
	case []string:
		seq := sequenceNode()
		for _, s := range x {
			seq.Content = append(seq.Content, strNode(s))
		}
		return seq, true
	}

	defer func() {
		if r := recover(); r != nil {
			e.skip(path, fmt.Errorf("%v", r))
			node, ok = nil, false
		}
	}()
	n := &yaml.Node{}
	if err := n.Encode(v); err != nil {
		e.skip(path, err)
		return nil, false
	}
	return n, true
}

func (e *encoder) skip(path string, err error) {
	e.warnings = append(e.warnings, result.WarnEntity(
		result.TypeSerializationSkip, path,
		"value cannot be represented in YAML and was omitted: "+err.Error(),
		"Use strings, numbers, booleans, lists or mappings",
	))
}

func (e *encoder) network(name string, n NetworkConfig) *yaml.Node {
	m := mappingNode()
	setStr(m, "name", n.Name)
	setStr(m, "driver", n.Driver)
	if len(n.DriverOpts) > 0 {
		setNode(m, "driver_opts", stringMap(n.DriverOpts))
	}
	setBool(m, "external", n.External)
	setBool(m, "internal", n.Internal)
	setBool(m, "attachable", n.Attachable)
	if len(n.Labels) > 0 {
		setNode(m, "labels", stringMap(n.Labels))
	}
	if n.IPAM != nil {
		ipam := mappingNode()
		setStr(ipam, "driver", n.IPAM.Driver)
		if len(n.IPAM.Config) > 0 {
			pools := sequenceNode()
			for _, p := range n.IPAM.Config {
				pm := mappingNode()
				setStr(pm, "subnet", p.Subnet)
				setStr(pm, "gateway", p.Gateway)
				setStr(pm, "ip_range", p.IPRange)
				pools.Content = append(pools.Content, pm)
			}
			setNode(ipam, "config", pools)
		}
		setNode(m, "ipam", ipam)
	}
	e.extras(m, SectionNetworks+"/"+name, n.Extras)
	return m
}

func (e *encoder) volume(name string, v VolumeConfig) *yaml.Node {
	m := mappingNode()
	setStr(m, "name", v.Name)
	setStr(m, "driver", v.Driver)
	if len(v.DriverOpts) > 0 {
		setNode(m, "driver_opts", stringMap(v.DriverOpts))
	}
	setBool(m, "external", v.External)
	if len(v.Labels) > 0 {
		setNode(m, "labels", stringMap(v.Labels))
	}
	e.extras(m, SectionVolumes+"/"+name, v.Extras)
	return m
}

func build(b BuildConfig) *yaml.Node {
	if s, ok := b.Data().(string); ok {
		return strNode(s)
	}
	m := mappingNode()
	setStr(m, "context", b.Context)
	setStr(m, "dockerfile", b.Dockerfile)
	setStr(m, "target", b.Target)
	if len(b.Args) > 0 {
		setNode(m, "args", stringMap(b.Args))
	}
	return m
}

func healthcheck(h Healthcheck) *yaml.Node {
	m := mappingNode()
	setStringOrList(m, "test", h.Test)
	setStr(m, "interval", h.Interval)
	setStr(m, "timeout", h.Timeout)
	setStr(m, "start_period", h.StartPeriod)
	if h.Retries > 0 {
		setNode(m, "retries", &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(h.Retries)})
	}
	setBool(m, "disable", h.Disable)
	return m
}

func mappingNode() *yaml.Node  { return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"} }
func sequenceNode() *yaml.Node { return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"} }

// strNode builds a string scalar; the encoder quotes values that would otherwise
// read back as numbers or booleans. Multi-line strings use the literal style.
func strNode(s string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	if strings.Contains(s, "\n") {
		n.Style = yaml.LiteralStyle
	}
	return n
}

func setNode(m *yaml.Node, key string, v *yaml.Node) {
	m.Content = append(m.Content, strNode(key), v)
}

func setStr(m *yaml.Node, key, v string) {
	if v != "" {
		setNode(m, key, strNode(v))
	}
}

func setBool(m *yaml.Node, key string, v bool) {
	if v {
		setNode(m, key, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "true"})
	}
}

func setStrings(m *yaml.Node, key string, v []string) {
	if len(v) == 0 {
		return
	}
	seq := sequenceNode()
	for _, s := range v {
		seq.Content = append(seq.Content, strNode(s))
	}
	setNode(m, key, seq)
}

func setStringOrList(m *yaml.Node, key string, v StringOrList) {
	if len(v.List) > 0 {
		setStrings(m, key, v.List)
		return
	}
	setStr(m, key, v.Value)
}

func stringMap(v map[string]string) *yaml.Node {
	m := mappingNode()
	for _, k := range sortedKeys(v) {
		setNode(m, k, strNode(v[k]))
	}
	return m
}
