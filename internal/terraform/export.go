package terraform

import (
	"sort"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"

	"github.com/graph-to-compose/composer/internal/compose"
	"github.com/graph-to-compose/composer/internal/result"
)

// Options configures the Terraform export.
type Options struct {
	// EmitTfvars generates terraform.tfvars pinning DockerHost when true.
	EmitTfvars bool
	// DockerHost is the default of the docker_host variable.
	DockerHost string
}

// DefaultOptions returns default export options.
func DefaultOptions() Options {
	return Options{
		EmitTfvars: false,
		DockerHost: "unix:///var/run/docker.sock",
	}
}

// Export renders doc as a Terraform configuration for the kreuzwerker/docker
// provider. Entries that have no provider equivalent (services without an image,
// secrets, configs, unparsable ports) are left out and reported.
func Export(doc *compose.Document, opts Options) (map[string][]byte, []result.Warning) {
	if opts.DockerHost == "" {
		opts.DockerHost = DefaultOptions().DockerHost
	}
	x := &exporter{doc: doc, labels: make(map[string]map[string]string)}
	x.assignLabels()

	b := NewConfigBuilder()
	b.SetTemplate(FileVersions, VersionsTF())
	b.SetTemplate(FileVariables, VariablesTF(opts.DockerHost))
	if opts.EmitTfvars {
		b.SetTemplate(FileTfvars, Tfvars(opts.DockerHost))
	}

	doc.Networks.Each(func(name string, n compose.NetworkConfig) {
		b.Append(x.network(name, n))
	})
	doc.Volumes.Each(func(name string, v compose.VolumeConfig) {
		if v.External {
			return
		}
		b.Append(x.volume(name, v))
	})
	doc.Services.Each(func(name string, s compose.ServiceConfig) {
		if s.Image == "" {
			x.warn("service/"+name, "service has no image; build contexts cannot be exported",
				"Set image on the service")
			return
		}
		b.Append(x.image(name, s))
		b.Append(x.container(name, s))
	})
	if doc.Secrets.Len() > 0 {
		x.warn(compose.SectionSecrets, "secrets are not exported", "Mount the secret files as bind volumes")
	}
	if doc.Configs.Len() > 0 {
		x.warn(compose.SectionConfigs, "configs are not exported", "Mount the config files as bind volumes")
	}
	return b.Files(), x.warnings
}

type exporter struct {
	doc *compose.Document
	// labels maps resource type -> entity name -> block label.
	labels   map[string]map[string]string
	warnings []result.Warning
}

// assignLabels gives every exported entity a block label that is unique within
// its resource type. Names that sanitize to a taken label get a numeric suffix.
func (x *exporter) assignLabels() {
	taken := make(map[string]map[string]bool)
	assign := func(typ, entity, name string) {
		if taken[typ] == nil {
			taken[typ] = make(map[string]bool)
			x.labels[typ] = make(map[string]string)
		}
		base := SanitizeName(name)
		label := base
		for i := 2; taken[typ][label]; i++ {
			label = base + "_" + strconv.Itoa(i)
		}
		if label != base {
			x.warnings = append(x.warnings, result.WarnEntity(result.TypeDuplicateName, entity,
				typ+" label "+strconv.Quote(base)+" is already used by another entity; using "+strconv.Quote(label),
				"Rename one of the entities so their names differ in more than punctuation"))
		}
		taken[typ][label] = true
		x.labels[typ][name] = label
	}
	x.doc.Networks.Each(func(name string, n compose.NetworkConfig) {
		typ := "docker_network"
		if n.External {
			typ = "data.docker_network"
		}
		assign(typ, compose.SectionNetworks+"/"+name, name)
	})
	x.doc.Volumes.Each(func(name string, v compose.VolumeConfig) {
		if !v.External {
			assign("docker_volume", compose.SectionVolumes+"/"+name, name)
		}
	})
	// docker_image and docker_container labels are the same per service.
	x.doc.Services.Each(func(name string, s compose.ServiceConfig) {
		if s.Image != "" {
			assign("docker_container", "service/"+name, name)
		}
	})
}

func (x *exporter) label(typ, name string) string {
	if label, ok := x.labels[typ][name]; ok {
		return label
	}
	return SanitizeName(name)
}

func (x *exporter) warn(entity, message, suggestion string) {
	x.warnings = append(x.warnings, result.WarnEntity(result.TypeUnsupported, entity, message, suggestion))
}

func (x *exporter) network(name string, n compose.NetworkConfig) *hclwrite.Block {
	if n.External {
		block := hclwrite.NewBlock("data", []string{"docker_network", x.label("data.docker_network", name)})
		SetAttributeStr(block.Body(), "name", n.DockerName(name))
		return block
	}
	block := ResourceBlock("docker_network", x.label("docker_network", name))
	body := block.Body()
	SetAttributeStr(body, "name", n.DockerName(name))
	SetAttributeStr(body, "driver", n.Driver)
	SetAttributeBool(body, "internal", n.Internal)
	SetAttributeBool(body, "attachable", n.Attachable)
	SetAttributeMap(body, "options", n.DriverOpts)
	if n.IPAM != nil {
		SetAttributeStr(body, "ipam_driver", n.IPAM.Driver)
		for _, p := range n.IPAM.Config {
			pool := body.AppendNewBlock("ipam_config", nil).Body()
			SetAttributeStr(pool, "subnet", p.Subnet)
			SetAttributeStr(pool, "gateway", p.Gateway)
			SetAttributeStr(pool, "ip_range", p.IPRange)
		}
	}
	AppendLabels(body, n.Labels, sortedKeys(n.Labels))
	return block
}

func (x *exporter) volume(name string, v compose.VolumeConfig) *hclwrite.Block {
	block := ResourceBlock("docker_volume", x.label("docker_volume", name))
	body := block.Body()
	SetAttributeStr(body, "name", v.DockerName(name))
	SetAttributeStr(body, "driver", v.Driver)
	SetAttributeMap(body, "driver_opts", v.DriverOpts)
	AppendLabels(body, v.Labels, sortedKeys(v.Labels))
	return block
}

func (x *exporter) image(name string, s compose.ServiceConfig) *hclwrite.Block {
	block := ResourceBlock("docker_image", x.label("docker_container", name))
	SetAttributeStr(block.Body(), "name", s.Image)
	return block
}

func (x *exporter) container(name string, s compose.ServiceConfig) *hclwrite.Block {
	entity := "service/" + name
	label := x.label("docker_container", name)
	block := ResourceBlock("docker_container", label)
	body := block.Body()

	containerName := s.ContainerName
	if containerName == "" {
		containerName = name
	}
	SetAttributeStr(body, "name", containerName)
	body.SetAttributeTraversal("image", Traversal("docker_image", label, "image_id"))
	SetAttributeStr(body, "hostname", s.Hostname)
	SetAttributeStr(body, "user", s.User)
	SetAttributeStr(body, "working_dir", s.WorkingDir)

	if s.Restart != "" {
		policy, retries, _ := strings.Cut(string(s.Restart), ":")
		SetAttributeStr(body, "restart", policy)
		if n, err := strconv.Atoi(retries); err == nil {
			SetAttributeInt(body, "max_retry_count", n)
		}
	}
	SetAttributeList(body, "command", commandList(s.Command))
	SetAttributeList(body, "entrypoint", commandList(s.Entrypoint))
	SetAttributeList(body, "env", x.envList(entity, s.Environment))

	for _, p := range s.Ports {
		pm, ok := parsePort(p)
		if !ok {
			x.warn(entity, "port "+p+" cannot be expressed as a single docker_container port", "Use host:container form")
			continue
		}
		pb := body.AppendNewBlock("ports", nil).Body()
		SetAttributeInt(pb, "internal", pm.internal)
		if pm.external > 0 {
			SetAttributeInt(pb, "external", pm.external)
		}
		SetAttributeStr(pb, "ip", pm.ip)
		SetAttributeStr(pb, "protocol", pm.protocol)
	}
	for range s.LongPorts {
		x.warn(entity, "long-syntax port with options beyond target, published, host_ip and protocol is not exported",
			"Use the short host:container form")
	}

	for _, v := range s.Volumes {
		m := compose.ParseVolumeMapping(v)
		vb := body.AppendNewBlock("volumes", nil).Body()
		switch {
		case m.IsNamedVolume():
			vol, ok := x.doc.Volumes.Get(m.Source)
			switch {
			case ok && !vol.External:
				vb.SetAttributeTraversal("volume_name", Traversal("docker_volume", x.label("docker_volume", m.Source), "name"))
			case ok:
				SetAttributeStr(vb, "volume_name", vol.DockerName(m.Source))
			default:
				SetAttributeStr(vb, "volume_name", m.Source)
			}
		case m.Source != "":
			SetAttributeStr(vb, "host_path", m.Source)
		}
		SetAttributeStr(vb, "container_path", m.Target)
		SetAttributeBool(vb, "read_only", strings.Contains(m.Mode, "ro"))
	}
	for _, v := range s.LongVolumes {
		typ, _ := compose.AsString(v["type"])
		if typ == "" {
			typ = "volume"
		}
		x.warn(entity, "long-syntax "+typ+" mount is not exported", "Use a short source:target entry or a docker_container mounts block")
	}

	for _, ref := range s.Networks.Items {
		nb := body.AppendNewBlock("networks_advanced", nil).Body()
		if n, ok := x.doc.Networks.Get(ref.Name); ok && n.External {
			nb.SetAttributeTraversal("name", Traversal("data", "docker_network", x.label("data.docker_network", ref.Name), "name"))
		} else if ok {
			nb.SetAttributeTraversal("name", Traversal("docker_network", x.label("docker_network", ref.Name), "name"))
		} else {
			SetAttributeStr(nb, "name", ref.Name)
		}
		if aliases, ok := compose.AsStringArray(ref.Attrs["aliases"]); ok {
			SetAttributeList(nb, "aliases", aliases)
		}
	}

	AppendLabels(body, s.Labels, sortedKeys(s.Labels))

	var deps []hcl.Traversal
	for _, dep := range s.DependsOn.Names() {
		if dependency, ok := x.doc.Services.Get(dep); ok && dependency.Image != "" {
			deps = append(deps, Traversal("docker_container", x.label("docker_container", dep)))
		}
	}
	SetAttributeRefs(body, "depends_on", deps)
	return block
}

type port struct {
	ip       string
	external int
	internal int
	protocol string
}

// parsePort reads [ip:][host:]container[/protocol]. Port ranges are not supported.
func parsePort(s string) (port, bool) {
	var p port
	mapping, proto, _ := strings.Cut(s, "/")
	p.protocol = proto
	parts := strings.Split(mapping, ":")
	var host, container string
	switch len(parts) {
	case 1:
		container = parts[0]
	case 2:
		host, container = parts[0], parts[1]
	case 3:
		p.ip, host, container = parts[0], parts[1], parts[2]
	default:
		return port{}, false
	}
	var err error
	if p.internal, err = strconv.Atoi(container); err != nil {
		return port{}, false
	}
	if host != "" {
		if p.external, err = strconv.Atoi(host); err != nil {
			return port{}, false
		}
	}
	return p, true
}

func commandList(c compose.StringOrList) []string {
	if len(c.List) > 0 {
		return c.List
	}
	return strings.Fields(c.Value)
}

// envList renders the environment as KEY=VAL entries. Bare KEY entries take
// their value from the shell running compose and have no provider equivalent.
func (x *exporter) envList(entity string, e compose.Environment) []string {
	if len(e.List) > 0 {
		out := make([]string, 0, len(e.List))
		for _, kv := range e.List {
			if !strings.Contains(kv, "=") {
				x.warn(entity, "environment variable "+kv+" has no value and is not exported",
					"Set the value explicitly or pass it through a Terraform variable")
				continue
			}
			out = append(out, kv)
		}
		return out
	}
	out := make([]string, 0, len(e.Map))
	for _, k := range sortedKeys(e.Map) {
		out = append(out, k+"="+e.Map[k])
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
