package compose

// KeyCustomName is the node-data key of a resource's own `name:` option, the
// name the engine creates or looks up. In node data `name` is the entity name,
// so the option is stored under this key instead.
const KeyCustomName = "custom_name"

// NetworkConfig is one entry of the networks section.
type NetworkConfig struct {
	Name       string
	Driver     string
	DriverOpts map[string]string
	External   bool
	Internal   bool
	Attachable bool
	Labels     map[string]string
	IPAM       *IPAMConfig
	Extras     map[string]any
}

// IPAMConfig is the ipam block of a network.
type IPAMConfig struct {
	Driver string
	Config []IPAMPool
}

// IPAMPool is one address pool of an ipam block.
type IPAMPool struct {
	Subnet  string
	Gateway string
	IPRange string
}

// VolumeConfig is one entry of the volumes section.
type VolumeConfig struct {
	Name       string
	Driver     string
	DriverOpts map[string]string
	External   bool
	Labels     map[string]string
	Extras     map[string]any
}

// SecretConfig is one entry of the secrets section.
type SecretConfig struct {
	Name        string
	File        string
	Environment string
	External    bool
	Extras      map[string]any
}

// ConfigConfig is one entry of the configs section.
type ConfigConfig struct {
	Name        string
	File        string
	Content     string
	Environment string
	External    bool
	Extras      map[string]any
}

var (
	networkKeys = typedKeys("driver", "driver_opts", "external", "internal", "attachable", "labels", "ipam")
	volumeKeys  = typedKeys("driver", "driver_opts", "external", "labels")
	secretKeys  = typedKeys("file", "environment", "external")
	configKeys  = typedKeys("file", "content", "environment", "external")
)

func typedKeys(keys ...string) map[string]bool {
	m := map[string]bool{KeyCustomName: true}
	for _, k := range keys {
		m[k] = true
	}
	return m
}

// ResourceBody turns a decoded YAML resource body into node data: the document
// `name:` option moves to KeyCustomName. The body itself is not modified.
func ResourceBody(body map[string]any) map[string]any {
	out := make(map[string]any, len(body))
	for k, v := range body {
		if k == "name" {
			k = KeyCustomName
		}
		out[k] = v
	}
	return out
}

// NetworkFromData converts node data into a NetworkConfig. A document body goes
// through ResourceBody first.
func NetworkFromData(data map[string]any) NetworkConfig {
	var n NetworkConfig
	n.Name, _ = AsString(data[KeyCustomName])
	n.Driver, _ = AsString(data["driver"])
	n.DriverOpts, _ = AsStringMap(data["driver_opts"])
	n.External = external(data, &n.Name)
	n.Internal, _ = AsBool(data["internal"])
	n.Attachable, _ = AsBool(data["attachable"])
	n.Labels, _ = asLabels(data["labels"])
	if m, ok := AsMap(data["ipam"]); ok {
		var ipam IPAMConfig
		ipam.Driver, _ = AsString(m["driver"])
		if pools, ok := m["config"].([]any); ok {
			for _, p := range pools {
				pm, ok := AsMap(p)
				if !ok {
					continue
				}
				var pool IPAMPool
				pool.Subnet, _ = AsString(pm["subnet"])
				pool.Gateway, _ = AsString(pm["gateway"])
				pool.IPRange, _ = AsString(pm["ip_range"])
				if pool != (IPAMPool{}) {
					ipam.Config = append(ipam.Config, pool)
				}
			}
		}
		if ipam.Driver != "" || len(ipam.Config) > 0 {
			n.IPAM = &ipam
		}
	}
	n.Extras = extras(data, networkKeys)
	return n
}

// Data renders the network as node data.
func (n NetworkConfig) Data() map[string]any {
	d := make(map[string]any)
	putString(d, KeyCustomName, n.Name)
	putString(d, "driver", n.Driver)
	if len(n.DriverOpts) > 0 {
		d["driver_opts"] = stringMapToAny(n.DriverOpts)
	}
	putBool(d, "external", n.External)
	putBool(d, "internal", n.Internal)
	putBool(d, "attachable", n.Attachable)
	if len(n.Labels) > 0 {
		d["labels"] = stringMapToAny(n.Labels)
	}
	if n.IPAM != nil {
		d["ipam"] = n.IPAM.Data()
	}
	putExtras(d, n.Extras)
	return d
}

// Data renders the ipam block.
func (c IPAMConfig) Data() map[string]any {
	d := make(map[string]any)
	putString(d, "driver", c.Driver)
	if len(c.Config) > 0 {
		pools := make([]any, len(c.Config))
		for i, p := range c.Config {
			pm := make(map[string]any)
			putString(pm, "subnet", p.Subnet)
			putString(pm, "gateway", p.Gateway)
			putString(pm, "ip_range", p.IPRange)
			pools[i] = pm
		}
		d["config"] = pools
	}
	return d
}

// VolumeFromData converts node data into a VolumeConfig.
func VolumeFromData(data map[string]any) VolumeConfig {
	var v VolumeConfig
	v.Name, _ = AsString(data[KeyCustomName])
	v.Driver, _ = AsString(data["driver"])
	v.DriverOpts, _ = AsStringMap(data["driver_opts"])
	v.External = external(data, &v.Name)
	v.Labels, _ = asLabels(data["labels"])
	v.Extras = extras(data, volumeKeys)
	return v
}

// Data renders the volume as node data.
func (v VolumeConfig) Data() map[string]any {
	d := make(map[string]any)
	putString(d, KeyCustomName, v.Name)
	putString(d, "driver", v.Driver)
	if len(v.DriverOpts) > 0 {
		d["driver_opts"] = stringMapToAny(v.DriverOpts)
	}
	putBool(d, "external", v.External)
	if len(v.Labels) > 0 {
		d["labels"] = stringMapToAny(v.Labels)
	}
	putExtras(d, v.Extras)
	return d
}

// DockerName is the engine-side name of the volume: its name option, else key.
func (v VolumeConfig) DockerName(key string) string {
	if v.Name != "" {
		return v.Name
	}
	return key
}

// DockerName is the engine-side name of the network: its name option, else key.
func (n NetworkConfig) DockerName(key string) string {
	if n.Name != "" {
		return n.Name
	}
	return key
}

// SecretFromData converts node data into a SecretConfig.
func SecretFromData(data map[string]any) SecretConfig {
	var s SecretConfig
	s.Name, _ = AsString(data[KeyCustomName])
	s.File, _ = AsString(data["file"])
	s.Environment, _ = AsString(data["environment"])
	s.External = external(data, &s.Name)
	s.Extras = extras(data, secretKeys)
	return s
}

// Data renders the secret as node data.
func (s SecretConfig) Data() map[string]any {
	d := make(map[string]any)
	putString(d, KeyCustomName, s.Name)
	putString(d, "file", s.File)
	putString(d, "environment", s.Environment)
	putBool(d, "external", s.External)
	putExtras(d, s.Extras)
	return d
}

// ConfigFromData converts node data into a ConfigConfig.
func ConfigFromData(data map[string]any) ConfigConfig {
	var c ConfigConfig
	c.Name, _ = AsString(data[KeyCustomName])
	c.File, _ = AsString(data["file"])
	c.Content, _ = AsString(data["content"])
	c.Environment, _ = AsString(data["environment"])
	c.External = external(data, &c.Name)
	c.Extras = extras(data, configKeys)
	return c
}

// Data renders the config as node data.
func (c ConfigConfig) Data() map[string]any {
	d := make(map[string]any)
	putString(d, KeyCustomName, c.Name)
	putString(d, "file", c.File)
	putString(d, "content", c.Content)
	putString(d, "environment", c.Environment)
	putBool(d, "external", c.External)
	putExtras(d, c.Extras)
	return d
}

// external reads `external: true` and the legacy `external: {name: ...}` form.
// The legacy name fills name when the resource has no name option of its own.
func external(data map[string]any, name *string) bool {
	v := data["external"]
	if b, ok := AsBool(v); ok {
		return b
	}
	m, ok := AsMap(v)
	if !ok {
		return false
	}
	if legacy, ok := AsString(m["name"]); ok && *name == "" {
		*name = legacy
	}
	return true
}

func putBool(d map[string]any, key string, v bool) {
	if v {
		d[key] = true
	}
}

func putExtras(d map[string]any, extras map[string]any) {
	for k, v := range extras {
		d[k] = v
	}
}
