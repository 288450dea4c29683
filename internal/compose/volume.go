package compose

import "strings"

// VolumeMapping is a service volume entry in the short `source:target[:mode]` syntax.
type VolumeMapping struct {
	Source string
	Target string
	Mode   string
}

// ParseVolumeMapping splits a short-syntax volume entry. A single segment is an
// anonymous volume whose only segment is the container path. A leading drive
// letter (C:\data, C:/data) belongs to the source.
func ParseVolumeMapping(s string) VolumeMapping {
	drive := ""
	if isDrivePath(s) {
		drive, s = s[:2], s[2:]
	}
	parts := strings.SplitN(s, ":", 3)
	parts[0] = drive + parts[0]
	switch len(parts) {
	case 1:
		return VolumeMapping{Target: parts[0]}
	case 2:
		return VolumeMapping{Source: parts[0], Target: parts[1]}
	default:
		return VolumeMapping{Source: parts[0], Target: parts[1], Mode: parts[2]}
	}
}

// FormatVolumeMapping is the inverse of ParseVolumeMapping.
func FormatVolumeMapping(m VolumeMapping) string {
	var b strings.Builder
	if m.Source != "" {
		b.WriteString(m.Source)
		b.WriteByte(':')
	}
	b.WriteString(m.Target)
	if m.Mode != "" {
		b.WriteByte(':')
		b.WriteString(m.Mode)
	}
	return b.String()
}

// IsNamedVolume reports whether the mapping refers to a top-level named volume
// rather than a host path or an anonymous volume.
func (m VolumeMapping) IsNamedVolume() bool {
	if m.Source == "" {
		return false
	}
	switch m.Source[0] {
	case '/', '.', '~', '$', '\\':
		return false
	}
	return !isDrivePath(m.Source)
}

func isDrivePath(s string) bool {
	if len(s) < 3 || s[1] != ':' || (s[2] != '\\' && s[2] != '/') {
		return false
	}
	c := s[0] | 0x20
	return c >= 'a' && c <= 'z'
}

// shortVolume flattens a long-syntax volume entry of type volume or bind that
// sets nothing but source, target and read_only, when the short form reads back
// to the same mapping.
func shortVolume(m map[string]any) (string, bool) {
	for k := range m {
		switch k {
		case "type", "source", "target", "read_only":
		default:
			return "", false
		}
	}
	target, ok := AsString(m["target"])
	if !ok {
		return "", false
	}
	out := VolumeMapping{Target: target}
	out.Source, _ = AsString(m["source"])
	typ, _ := AsString(m["type"])
	switch typ {
	case "", "volume":
		if out.Source != "" && !out.IsNamedVolume() {
			return "", false
		}
	case "bind":
		if out.Source == "" || out.IsNamedVolume() {
			return "", false
		}
	default:
		return "", false
	}
	if ro, _ := AsBool(m["read_only"]); ro {
		out.Mode = "ro"
	}
	short := FormatVolumeMapping(out)
	if ParseVolumeMapping(short) != out {
		return "", false
	}
	return short, true
}
