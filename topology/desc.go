package topology

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LinkDesc describes one link of a topology description.
type LinkDesc struct {
	A         string `json:"a" yaml:"a"`
	B         string `json:"b" yaml:"b"`
	LinkAttrs `yaml:",inline"`
}

// A Desc is the serializable form of a topology graph. It lets a simulation
// run from a hand-written or previously exported file instead of a
// configuration directory.
type Desc struct {
	Name    string     `json:"name" yaml:"name"`
	Devices []string   `json:"devices" yaml:"devices"`
	Links   []LinkDesc `json:"links" yaml:"links"`
}

// DescFromGraph captures the graph into a description.
func DescFromGraph(name string, g *Graph) *Desc {
	d := &Desc{
		Name:    name,
		Devices: g.Devices(),
		Links:   make([]LinkDesc, 0, g.NumLinks()),
	}

	for _, l := range g.Links() {
		d.Links = append(d.Links, LinkDesc{
			A:         l.F.name,
			B:         l.T.name,
			LinkAttrs: l.LinkAttrs,
		})
	}

	return d
}

// Graph builds the graph that the description describes. Devices that only
// appear in links are added as well.
func (d *Desc) Graph() (*Graph, error) {
	g := NewGraph()

	for _, name := range d.Devices {
		if name == "" {
			return nil, fmt.Errorf("topology %s has a device without a name",
				d.Name)
		}

		g.AddDevice(name)
	}

	for _, l := range d.Links {
		if l.A == "" || l.B == "" {
			return nil, fmt.Errorf("topology %s has a link without an end",
				d.Name)
		}

		if l.A == l.B {
			return nil, fmt.Errorf("topology %s links %s to itself",
				d.Name, l.A)
		}

		g.AddLink(l.A, l.B, l.LinkAttrs)
	}

	return g, nil
}

// WriteToFile serializes the description into the file. The extension of
// the file name selects YAML (.yaml, .yml) or JSON (.json).
func (d *Desc) WriteToFile(filename string) error {
	var (
		bytes []byte
		err   error
	)

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".yaml", ".yml":
		bytes, err = yaml.Marshal(d)
	case ".json":
		bytes, err = json.MarshalIndent(d, "", "\t")
	default:
		return fmt.Errorf("unknown topology file extension %q", ext)
	}

	if err != nil {
		return err
	}

	return os.WriteFile(filename, bytes, 0o644)
}

// ReadDesc reads a description from a YAML or JSON file, chosen by the file
// extension.
func ReadDesc(filename string) (*Desc, error) {
	info, err := os.Stat(filename)
	if err != nil {
		return nil, err
	}

	if info.IsDir() {
		return nil, fmt.Errorf("topology %s is a directory", filename)
	}

	dict, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	d := &Desc{}

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(dict, d)
	case ".json":
		err = json.Unmarshal(dict, d)
	default:
		return nil, fmt.Errorf("unknown topology file extension %q", ext)
	}

	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filename, err)
	}

	return d, nil
}
