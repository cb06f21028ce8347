package topology

import (
	"golang.org/x/exp/slices"

	"github.com/sarchlab/netsim/devconfig"
)

type attachment struct {
	device string
	iface  devconfig.Interface
}

// BuildFromDevices derives the topology from parsed device configurations.
// Every device becomes a vertex. Interfaces of different devices that sit on
// the same network are linked, with the smaller bandwidth and MTU of the two
// sides. Afterwards, an interface description such as "uplink to R2" links
// the two devices if R2 is known and they are not linked yet.
func BuildFromDevices(devices map[string]*devconfig.Device) *Graph {
	g := NewGraph()

	names := make([]string, 0, len(devices))
	for name := range devices {
		names = append(names, name)
	}

	slices.Sort(names)

	for _, name := range names {
		g.AddDevice(name)
	}

	linkBySubnet(g, names, devices)
	linkByDescription(g, names, devices)

	return g
}

func linkBySubnet(
	g *Graph,
	names []string,
	devices map[string]*devconfig.Device,
) {
	var networks []string
	subnets := make(map[string][]attachment)

	for _, name := range names {
		for _, iface := range devices[name].Interfaces {
			if iface.Network == "" {
				continue
			}

			if _, found := subnets[iface.Network]; !found {
				networks = append(networks, iface.Network)
			}

			subnets[iface.Network] = append(subnets[iface.Network],
				attachment{device: name, iface: iface})
		}
	}

	for _, network := range networks {
		members := subnets[network]
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				a, b := members[i], members[j]
				if a.device == b.device {
					continue
				}

				g.AddLink(a.device, b.device, LinkAttrs{
					Capacity: min(a.iface.Bandwidth, b.iface.Bandwidth),
					MTU:      min(mtuOf(a.iface), mtuOf(b.iface)),
					Network:  network,
				})
			}
		}
	}
}

func linkByDescription(
	g *Graph,
	names []string,
	devices map[string]*devconfig.Device,
) {
	for _, name := range names {
		for _, iface := range devices[name].Interfaces {
			neighbor := iface.NeighborHint()
			if neighbor == "" || neighbor == name {
				continue
			}

			if _, found := devices[neighbor]; !found {
				continue
			}

			if g.HasLink(name, neighbor) {
				continue
			}

			g.AddLink(name, neighbor, LinkAttrs{
				Capacity: iface.Bandwidth,
				MTU:      mtuOf(iface),
				Network:  iface.Network,
			})
		}
	}
}

func mtuOf(iface devconfig.Interface) int {
	if iface.MTU == 0 {
		return devconfig.DefaultMTU
	}

	return iface.MTU
}
