package assembler

import (
	"fmt"

	"gopkg.in/yaml.v2"
)

// Manifest is a readable summary of a compiled class
type Manifest struct {
	Name       string             `yaml:"name"`
	Variables  []ManifestVariable `yaml:"variables"`
	Lookup     map[string]uint32  `yaml:"lookup"`
	Functions  []string           `yaml:"functions"`
	Methods    []ManifestMethod   `yaml:"methods"`
	Children   []string           `yaml:"children,omitempty"`
	Containers [][]string         `yaml:"containers,omitempty"`
}

// ManifestVariable describes one binding variable
type ManifestVariable struct {
	Name     string   `yaml:"name"`
	External string   `yaml:"external"`
	Type     string   `yaml:"type"`
	Flags    string   `yaml:"flags"`
	Index    int      `yaml:"index"`
	Refs     int      `yaml:"refs"`
	Update   string   `yaml:"update,omitempty"`
	Dispatch []string `yaml:"dispatch,omitempty"`
}

// ManifestMethod describes one generated method
type ManifestMethod struct {
	Name   string `yaml:"name"`
	Async  bool   `yaml:"async,omitempty"`
	Source string `yaml:"source"`
}

// Manifest summarizes the class.
func (c *CompiledComponentClass) Manifest() *Manifest {
	m := &Manifest{
		Name:      c.Name,
		Lookup:    map[string]uint32{},
		Functions: c.FunctionTable,
		Children:  c.Children,
	}
	for _, v := range c.Variables {
		mv := ManifestVariable{
			Name:     v.InternalName,
			External: v.ExternalName,
			Type:     v.Type.String(),
			Flags:    v.Flags.String(),
			Index:    v.ClassIndex,
			Refs:     v.RefCount,
		}
		if r := c.Record(v.ClassIndex); r != nil {
			mv.Update = r.Update
			mv.Dispatch = r.Dispatch
		}
		m.Variables = append(m.Variables, mv)
	}
	for name, packed := range c.LookupTable {
		m.Lookup[name] = uint32(packed)
	}
	for _, method := range c.Methods() {
		m.Methods = append(m.Methods, ManifestMethod{Name: method.Name, Async: method.IsAsync, Source: method.Source()})
	}
	for _, ct := range c.Containers {
		m.Containers = append(m.Containers, ct.Templates)
	}
	return m
}

// YAML encodes the manifest.
func (m *Manifest) YAML() ([]byte, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", m.Name, err)
	}
	return data, nil
}

// ParseManifest decodes a manifest written by YAML.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	return &m, nil
}
