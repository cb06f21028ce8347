package validation

import (
	"golang.org/x/exp/slices"

	"github.com/sarchlab/netsim/devconfig"
	"github.com/sarchlab/netsim/topology"
)

// ValidateAll runs every check and returns the findings, grouped by check
// in a fixed order.
func ValidateAll(
	g *topology.Graph,
	devices map[string]*devconfig.Device,
) []Issue {
	var issues []Issue

	issues = append(issues, DuplicateIPs(devices)...)
	issues = append(issues, VLANMismatches(g, devices)...)
	issues = append(issues, MTUMismatches(g)...)
	issues = append(issues, Loops(g)...)
	issues = append(issues, MissingNeighbors(devices)...)
	issues = append(issues, RecommendProtocols(devices)...)
	issues = append(issues, AggregationOpportunities(g)...)

	return issues
}

func sortedNames(devices map[string]*devconfig.Device) []string {
	names := make([]string, 0, len(devices))
	for name := range devices {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// DuplicateIPs reports addresses configured on more than one interface.
func DuplicateIPs(devices map[string]*devconfig.Device) []Issue {
	var ips []string
	seen := make(map[string][]Location)

	for _, name := range sortedNames(devices) {
		for _, iface := range devices[name].Interfaces {
			if iface.IP == "" {
				continue
			}

			if _, found := seen[iface.IP]; !found {
				ips = append(ips, iface.IP)
			}

			seen[iface.IP] = append(seen[iface.IP],
				Location{Device: name, Iface: iface.Name})
		}
	}

	var issues []Issue
	for _, ip := range ips {
		if len(seen[ip]) < 2 {
			continue
		}

		issues = append(issues, Issue{
			Type:      TypeDuplicateIP,
			IP:        ip,
			Locations: seen[ip],
		})
	}

	return issues
}

// VLANMismatches reports links whose two sides tag their interfaces on the
// link's network with different VLANs.
func VLANMismatches(
	g *topology.Graph,
	devices map[string]*devconfig.Device,
) []Issue {
	var issues []Issue

	for _, l := range g.Links() {
		if l.Network == "" {
			continue
		}

		u, v := l.F.Name(), l.T.Name()
		uVLANs := vlansOn(devices[u], l.Network)
		vVLANs := vlansOn(devices[v], l.Network)

		if len(uVLANs) == 0 || len(vVLANs) == 0 ||
			slices.Equal(uVLANs, vVLANs) {
			continue
		}

		issues = append(issues, Issue{
			Type:   TypeVLANMismatch,
			Link:   []string{u, v},
			UVLANs: uVLANs,
			VVLANs: vVLANs,
		})
	}

	return issues
}

func vlansOn(device *devconfig.Device, network string) []int {
	if device == nil {
		return nil
	}

	var vlans []int
	for _, iface := range device.Interfaces {
		if iface.Network != network || slices.Contains(vlans, iface.VLAN) {
			continue
		}

		vlans = append(vlans, iface.VLAN)
	}

	slices.Sort(vlans)

	return vlans
}

// MTUMismatches warns about links whose MTU is below the default, which
// usually means one side was configured differently.
func MTUMismatches(g *topology.Graph) []Issue {
	var issues []Issue

	for _, l := range g.Links() {
		if l.MTU >= devconfig.DefaultMTU {
			continue
		}

		issues = append(issues, Issue{
			Type:    TypeMTUMismatchWarning,
			Link:    []string{l.F.Name(), l.T.Name()},
			EdgeMTU: l.MTU,
		})
	}

	return issues
}

// Loops reports a cycle basis of the topology.
func Loops(g *topology.Graph) []Issue {
	var issues []Issue

	for _, c := range g.Cycles() {
		issues = append(issues, Issue{
			Type:  TypeLoopDetected,
			Cycle: c,
		})
	}

	return issues
}

// MissingNeighbors reports interface descriptions that name a device with no
// configuration.
func MissingNeighbors(devices map[string]*devconfig.Device) []Issue {
	var issues []Issue

	for _, name := range sortedNames(devices) {
		for _, iface := range devices[name].Interfaces {
			neighbor := iface.NeighborHint()
			if neighbor == "" {
				continue
			}

			if _, found := devices[neighbor]; found {
				continue
			}

			issues = append(issues, Issue{
				Type:     TypeMissingNeighborConfig,
				Device:   name,
				Iface:    iface.Name,
				Neighbor: neighbor,
			})
		}
	}

	return issues
}

// RecommendProtocols suggests splitting routing domains when BGP and OSPF
// are both in use.
func RecommendProtocols(devices map[string]*devconfig.Device) []Issue {
	hasBGP, hasOSPF := false, false

	for _, device := range devices {
		if len(device.Routing.BGP) > 0 {
			hasBGP = true
		}

		if len(device.Routing.OSPF) > 0 {
			hasOSPF = true
		}
	}

	if !hasBGP || !hasOSPF {
		return nil
	}

	return []Issue{{
		Type: TypeProtocolRecommendation,
		Advice: "Use BGP for inter-domain and OSPF for intra-domain " +
			"boundaries.",
	}}
}

// AggregationOpportunities points out leaf devices.
func AggregationOpportunities(g *topology.Graph) []Issue {
	var issues []Issue

	for _, name := range g.Devices() {
		if g.Degree(name) != 1 {
			continue
		}

		issues = append(issues, Issue{
			Type:   TypeAggregationOpportunity,
			Node:   name,
			Reason: "Leaf node; consider collapsing if not needed.",
		})
	}

	return issues
}
