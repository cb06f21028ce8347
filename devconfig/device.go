// Package devconfig parses device configuration dumps into structured
// records.
package devconfig

import (
	"regexp"
)

// DefaultMTU is the MTU of an interface that does not configure one.
const DefaultMTU = 1500

// An Interface is one configured interface of a device.
type Interface struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	IP          string `json:"ip" yaml:"ip"`
	Mask        string `json:"mask" yaml:"mask"`
	Bandwidth   int    `json:"bandwidth" yaml:"bandwidth"`
	MTU         int    `json:"mtu" yaml:"mtu"`
	VLAN        int    `json:"vlan" yaml:"vlan"`
	Network     string `json:"network" yaml:"network"`
}

var neighborHintRE = regexp.MustCompile(`(?i)\bto\s+([A-Za-z0-9_-]+)`)

// NeighborHint returns the device named by a "to <NAME>" phrase in the
// description, or an empty string.
func (i Interface) NeighborHint() string {
	m := neighborHintRE.FindStringSubmatch(i.Description)
	if m == nil {
		return ""
	}

	return m[1]
}

// OSPFProcess is a configured OSPF routing process.
type OSPFProcess struct {
	Process int `json:"process" yaml:"process"`
}

// BGPProcess is a configured BGP routing process.
type BGPProcess struct {
	ASN int `json:"asn" yaml:"asn"`
}

// Routing lists the routing protocols a device runs.
type Routing struct {
	OSPF []OSPFProcess `json:"ospf" yaml:"ospf"`
	BGP  []BGPProcess  `json:"bgp" yaml:"bgp"`
}

// A Device is the parsed configuration of one router or switch.
type Device struct {
	Hostname   string      `json:"hostname" yaml:"hostname"`
	Interfaces []Interface `json:"interfaces" yaml:"interfaces"`
	Routing    Routing     `json:"routing" yaml:"routing"`
}

func newDevice() *Device {
	return &Device{
		Interfaces: []Interface{},
		Routing: Routing{
			OSPF: []OSPFProcess{},
			BGP:  []BGPProcess{},
		},
	}
}
