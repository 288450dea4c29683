// Package compose models the declarative multi-container configuration document:
// its typed entity configs, the field extractors that build them from untyped data,
// and the YAML text codec.
package compose

// Top-level document keys, in the order they are written.
const (
	SectionName     = "name"
	SectionServices = "services"
	SectionNetworks = "networks"
	SectionVolumes  = "volumes"
	SectionSecrets  = "secrets"
	SectionConfigs  = "configs"
)

// Document is a complete compose document. Services is always written, even when
// empty; the other sections are omitted when they have no entries.
type Document struct {
	Name     string
	Services Section[ServiceConfig]
	Networks Section[NetworkConfig]
	Volumes  Section[VolumeConfig]
	Secrets  Section[SecretConfig]
	Configs  Section[ConfigConfig]
}

// NewDocument returns an empty document with the given project name.
func NewDocument(name string) *Document {
	return &Document{Name: name}
}

// Counts returns the number of entities per section key.
func (d *Document) Counts() map[string]int {
	return map[string]int{
		SectionServices: d.Services.Len(),
		SectionNetworks: d.Networks.Len(),
		SectionVolumes:  d.Volumes.Len(),
		SectionSecrets:  d.Secrets.Len(),
		SectionConfigs:  d.Configs.Len(),
	}
}
