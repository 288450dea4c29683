package compose

import (
	"fmt"
	"strings"
)

// Service keys, in the order they are written.
const (
	KeyContainerName = "container_name"
	KeyImage         = "image"
	KeyBuild         = "build"
	KeyCommand       = "command"
	KeyEntrypoint    = "entrypoint"
	KeyWorkingDir    = "working_dir"
	KeyUser          = "user"
	KeyHostname      = "hostname"
	KeyRestart       = "restart"
	KeyPorts         = "ports"
	KeyExpose        = "expose"
	KeyEnvironment   = "environment"
	KeyEnvFile       = "env_file"
	KeyLabels        = "labels"
	KeyVolumes       = "volumes"
	KeyNetworks      = "networks"
	KeySecrets       = "secrets"
	KeyConfigs       = "configs"
	KeyDependsOn     = "depends_on"
	KeyHealthcheck   = "healthcheck"
)

var serviceKeys = map[string]bool{
	KeyContainerName: true, KeyImage: true, KeyBuild: true, KeyCommand: true, KeyEntrypoint: true,
	KeyWorkingDir: true, KeyUser: true, KeyHostname: true, KeyRestart: true, KeyPorts: true,
	KeyExpose: true, KeyEnvironment: true, KeyEnvFile: true, KeyLabels: true, KeyVolumes: true,
	KeyNetworks: true, KeySecrets: true, KeyConfigs: true, KeyDependsOn: true, KeyHealthcheck: true,
}

// graphKeys name and annotate nodes; they are never document keys.
var graphKeys = map[string]bool{"label": true, "name": true, "mount_path": true}

// IsPassThroughKey reports whether key is kept verbatim on services. Every key
// without a typed field is (x- extensions, deploy, profiles, ...), except the
// graph naming keys.
func IsPassThroughKey(key string) bool {
	return strings.TrimSpace(key) != "" && !serviceKeys[key] && !graphKeys[key]
}

// ServiceConfig is one entry of the services section.
type ServiceConfig struct {
	ContainerName string
	Image         string
	Build         *BuildConfig
	Command       StringOrList
	Entrypoint    StringOrList
	WorkingDir    string
	User          string
	Hostname      string
	Restart       RestartPolicy
	Ports         []string
	LongPorts     []map[string]any
	Expose        []string
	Environment   Environment
	EnvFile       []string
	Labels        map[string]string
	Volumes       []string
	LongVolumes   []map[string]any
	Networks      Refs
	Secrets       Refs
	Configs       Refs
	DependsOn     Refs
	Healthcheck   *Healthcheck
	Extras        map[string]any
}

// BuildConfig is the build section of a service. It is written in the short
// (context-only) form when nothing but Context is set.
type BuildConfig struct {
	Context    string
	Dockerfile string
	Target     string
	Args       map[string]string
}

// Healthcheck is the healthcheck section of a service.
type Healthcheck struct {
	Test        StringOrList
	Interval    string
	Timeout     string
	StartPeriod string
	Retries     int
	Disable     bool
}

// ServiceFromData converts untyped node data or a decoded YAML service body into a
// ServiceConfig. Keys without a typed field are kept in Extras.
func ServiceFromData(data map[string]any) ServiceConfig {
	s, _ := DecodeService(data)
	return s
}

// DecodeService is ServiceFromData that also reports what it dropped: one
// message per typed key whose value has an unsupported shape and per unreadable
// ports, expose or volumes entry.
func DecodeService(data map[string]any) (ServiceConfig, []string) {
	var (
		s      ServiceConfig
		issues []string
	)
	s.ContainerName, _ = AsString(data[KeyContainerName])
	s.Image, _ = AsString(data[KeyImage])
	if b, ok := asBuild(data[KeyBuild]); ok {
		s.Build = &b
	}
	s.Command, _ = AsStringOrList(data[KeyCommand])
	s.Entrypoint, _ = AsStringOrList(data[KeyEntrypoint])
	s.WorkingDir, _ = AsString(data[KeyWorkingDir])
	s.User, _ = AsString(data[KeyUser])
	s.Hostname, _ = AsString(data[KeyHostname])
	s.Restart, _ = AsRestartPolicy(data[KeyRestart])
	s.Ports, s.LongPorts = entries(KeyPorts, data[KeyPorts], shortPort, &issues)
	s.Expose, _ = entries(KeyExpose, data[KeyExpose], nil, &issues)
	s.Environment, _ = AsEnvironment(data[KeyEnvironment])
	if f, ok := AsStringOrList(data[KeyEnvFile]); ok {
		s.EnvFile = f.List
		if f.List == nil {
			s.EnvFile = []string{f.Value}
		}
	}
	s.Labels, _ = asLabels(data[KeyLabels])
	s.Volumes, s.LongVolumes = entries(KeyVolumes, data[KeyVolumes], shortVolume, &issues)
	s.Networks, _ = AsRefs(data[KeyNetworks])
	s.Secrets, _ = AsRefs(data[KeySecrets])
	s.Configs, _ = AsRefs(data[KeyConfigs])
	s.DependsOn, _ = AsRefs(data[KeyDependsOn])
	if h, ok := asHealthcheck(data[KeyHealthcheck]); ok {
		s.Healthcheck = &h
	}
	s.Extras = extras(data, serviceKeys)

	rendered := s.Data()
	for _, k := range sortedKeys(data) {
		switch k {
		case KeyPorts, KeyExpose, KeyVolumes:
			continue
		}
		if _, ok := rendered[k]; serviceKeys[k] && !ok && !isBlank(data[k]) {
			issues = append(issues, fmt.Sprintf("%s: value of type %T is not understood and was dropped", k, data[k]))
		}
	}
	return s, issues
}

// NamedVolumes lists the top-level volumes the service mounts: short entries
// first, then long-syntax entries of type volume.
func (s ServiceConfig) NamedVolumes() []string {
	var out []string
	for _, v := range s.Volumes {
		if m := ParseVolumeMapping(v); m.IsNamedVolume() {
			out = append(out, m.Source)
		}
	}
	for _, v := range s.LongVolumes {
		typ, _ := AsString(v["type"])
		src, ok := AsString(v["source"])
		if ok && (typ == "" || typ == "volume") && (VolumeMapping{Source: src}).IsNamedVolume() {
			out = append(out, src)
		}
	}
	return out
}

// Data renders the service as node data. Only non-empty fields are present.
func (s ServiceConfig) Data() map[string]any {
	d := make(map[string]any)
	putString(d, KeyContainerName, s.ContainerName)
	putString(d, KeyImage, s.Image)
	if s.Build != nil {
		d[KeyBuild] = s.Build.Data()
	}
	if !s.Command.IsZero() {
		d[KeyCommand] = s.Command.Data()
	}
	if !s.Entrypoint.IsZero() {
		d[KeyEntrypoint] = s.Entrypoint.Data()
	}
	putString(d, KeyWorkingDir, s.WorkingDir)
	putString(d, KeyUser, s.User)
	putString(d, KeyHostname, s.Hostname)
	putString(d, KeyRestart, string(s.Restart))
	putEntries(d, KeyPorts, s.Ports, s.LongPorts)
	putStrings(d, KeyExpose, s.Expose)
	if !s.Environment.IsZero() {
		d[KeyEnvironment] = s.Environment.Data()
	}
	putStrings(d, KeyEnvFile, s.EnvFile)
	if len(s.Labels) > 0 {
		d[KeyLabels] = stringMapToAny(s.Labels)
	}
	putEntries(d, KeyVolumes, s.Volumes, s.LongVolumes)
	putRefs(d, KeyNetworks, s.Networks)
	putRefs(d, KeySecrets, s.Secrets)
	putRefs(d, KeyConfigs, s.Configs)
	putRefs(d, KeyDependsOn, s.DependsOn)
	if s.Healthcheck != nil {
		d[KeyHealthcheck] = s.Healthcheck.Data()
	}
	for k, v := range s.Extras {
		d[k] = v
	}
	return d
}

// entries reads a ports, expose or volumes sequence. Strings and numbers are
// short-syntax entries. A mapping is flattened with short when the short syntax
// expresses it exactly, and is kept verbatim otherwise, provided it has a target.
// Anything else is dropped and reported in issues.
func entries(key string, v any, short func(map[string]any) (string, bool), issues *[]string) ([]string, []map[string]any) {
	if list, ok := v.([]string); ok {
		out, _ := AsStringArray(list)
		return out, nil
	}
	list, ok := v.([]any)
	if !ok {
		if !isBlank(v) {
			*issues = append(*issues, fmt.Sprintf("%s: expected a list, got %T; dropped", key, v))
		}
		return nil, nil
	}
	var (
		flat []string
		long []map[string]any
	)
	for i, item := range list {
		if m, ok := item.(map[string]any); ok && short != nil {
			if s, ok := short(m); ok {
				flat = append(flat, s)
				continue
			}
			if _, ok := m["target"]; ok {
				long = append(long, m)
				continue
			}
			*issues = append(*issues, fmt.Sprintf("%s[%d]: long-syntax entry has no target; dropped", key, i))
			continue
		}
		if s, ok := scalarString(item, false); ok {
			if strings.TrimSpace(s) != "" {
				flat = append(flat, s)
			}
			continue
		}
		if !isBlank(item) {
			*issues = append(*issues, fmt.Sprintf("%s[%d]: entry of type %T cannot be read; dropped", key, i, item))
		}
	}
	return flat, long
}

// shortPort flattens a long-syntax port when only target, published, host_ip and
// protocol are set.
func shortPort(m map[string]any) (string, bool) {
	for k := range m {
		switch k {
		case "target", "published", "host_ip", "protocol":
		default:
			return "", false
		}
	}
	target, ok := scalarString(m["target"], false)
	if !ok || strings.TrimSpace(target) == "" {
		return "", false
	}
	published, _ := scalarString(m["published"], false)
	hostIP, _ := AsString(m["host_ip"])
	if strings.Contains(hostIP, ":") {
		return "", false
	}

	var b strings.Builder
	switch {
	case hostIP != "":
		b.WriteString(hostIP + ":" + published + ":")
	case published != "":
		b.WriteString(published + ":")
	}
	b.WriteString(target)
	if proto, ok := AsString(m["protocol"]); ok {
		b.WriteString("/" + proto)
	}
	return b.String(), true
}

// IsZero reports whether the value is absent.
func (s StringOrList) IsZero() bool { return s.Value == "" && len(s.List) == 0 }

// IsZero reports whether the environment is absent.
func (e Environment) IsZero() bool { return len(e.List) == 0 && len(e.Map) == 0 }

// Data renders the build section, in short form when only the context is set.
func (b BuildConfig) Data() any {
	if b.Dockerfile == "" && b.Target == "" && len(b.Args) == 0 {
		return b.Context
	}
	d := make(map[string]any)
	putString(d, "context", b.Context)
	putString(d, "dockerfile", b.Dockerfile)
	putString(d, "target", b.Target)
	if len(b.Args) > 0 {
		d["args"] = stringMapToAny(b.Args)
	}
	return d
}

// Data renders the healthcheck section.
func (h Healthcheck) Data() map[string]any {
	d := make(map[string]any)
	if !h.Test.IsZero() {
		d["test"] = h.Test.Data()
	}
	putString(d, "interval", h.Interval)
	putString(d, "timeout", h.Timeout)
	putString(d, "start_period", h.StartPeriod)
	if h.Retries > 0 {
		d["retries"] = h.Retries
	}
	if h.Disable {
		d["disable"] = true
	}
	return d
}

func asBuild(v any) (BuildConfig, bool) {
	if ctx, ok := AsString(v); ok {
		return BuildConfig{Context: ctx}, true
	}
	m, ok := AsMap(v)
	if !ok {
		return BuildConfig{}, false
	}
	var b BuildConfig
	b.Context, _ = AsString(m["context"])
	b.Dockerfile, _ = AsString(m["dockerfile"])
	b.Target, _ = AsString(m["target"])
	b.Args, _ = asLabels(m["args"])
	if b.Context == "" && b.Dockerfile == "" && b.Target == "" && len(b.Args) == 0 {
		return BuildConfig{}, false
	}
	return b, true
}

func asHealthcheck(v any) (Healthcheck, bool) {
	m, ok := AsMap(v)
	if !ok {
		return Healthcheck{}, false
	}
	var h Healthcheck
	h.Test, _ = AsStringOrList(m["test"])
	h.Interval, _ = AsString(m["interval"])
	h.Timeout, _ = AsString(m["timeout"])
	h.StartPeriod, _ = AsString(m["start_period"])
	h.Retries, _ = AsInt(m["retries"])
	h.Disable, _ = AsBool(m["disable"])
	if len(h.Data()) == 0 {
		return Healthcheck{}, false
	}
	return h, true
}

// asLabels accepts the mapping form or the "KEY=VAL" list form of labels and
// build args and normalizes to a mapping.
func asLabels(v any) (map[string]string, bool) {
	if m, ok := AsStringMap(v); ok {
		return m, true
	}
	list, ok := AsStringArray(v)
	if !ok {
		return nil, false
	}
	out := make(map[string]string, len(list))
	for _, item := range list {
		k, val, _ := strings.Cut(item, "=")
		if strings.TrimSpace(k) != "" {
			out[k] = val
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

func putString(d map[string]any, key, v string) {
	if v != "" {
		d[key] = v
	}
}

func putStrings(d map[string]any, key string, v []string) {
	if len(v) > 0 {
		d[key] = stringsToAny(v)
	}
}

func putEntries(d map[string]any, key string, short []string, long []map[string]any) {
	if len(short)+len(long) == 0 {
		return
	}
	out := stringsToAny(short)
	for _, m := range long {
		out = append(out, m)
	}
	d[key] = out
}

func putRefs(d map[string]any, key string, r Refs) {
	if r.Len() > 0 {
		d[key] = r.Data()
	}
}

// extras collects the keys of data that are neither typed nor graph keys,
// skipping vacuous values. It returns nil when there are none.
func extras(data map[string]any, typed map[string]bool) map[string]any {
	var out map[string]any
	for k, v := range data {
		if strings.TrimSpace(k) == "" || typed[k] || graphKeys[k] || isVacuous(v) {
			continue
		}
		if out == nil {
			out = make(map[string]any)
		}
		out[k] = v
	}
	return out
}

// isBlank is isVacuous applied to nested lists and mappings too.
func isBlank(v any) bool {
	switch x := v.(type) {
	case []any:
		for _, item := range x {
			if !isBlank(item) {
				return false
			}
		}
		return true
	case map[string]any:
		for _, item := range x {
			if !isBlank(item) {
				return false
			}
		}
		return true
	}
	return isVacuous(v)
}

func isVacuous(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []any:
		return len(x) == 0
	case []string:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	case map[string]string:
		return len(x) == 0
	}
	return false
}
