package topology

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/netsim/devconfig"
)

var _ = Describe("BuildFromDevices", func() {
	iface := func(
		name, desc, network string,
		bw, mtu int,
	) devconfig.Interface {
		return devconfig.Interface{
			Name:        name,
			Description: desc,
			Network:     network,
			Bandwidth:   bw,
			MTU:         mtu,
		}
	}

	It("should add every device as a vertex", func() {
		devices := map[string]*devconfig.Device{
			"R1": {Hostname: "R1"},
			"R2": {Hostname: "R2"},
		}

		g := BuildFromDevices(devices)

		Expect(g.Devices()).To(Equal([]string{"R1", "R2"}))
		Expect(g.NumLinks()).To(Equal(0))
	})

	It("should link devices on the same network", func() {
		devices := map[string]*devconfig.Device{
			"R1": {Hostname: "R1", Interfaces: []devconfig.Interface{
				iface("Gi0/0", "", "10.0.12.0/30", 100000, 1500),
			}},
			"R2": {Hostname: "R2", Interfaces: []devconfig.Interface{
				iface("Gi0/0", "", "10.0.12.0/30", 10000, 1400),
			}},
		}

		g := BuildFromDevices(devices)

		l, found := g.Link("R1", "R2")
		Expect(found).To(BeTrue())
		Expect(l.Capacity).To(Equal(10000))
		Expect(l.MTU).To(Equal(1400))
		Expect(l.Network).To(Equal("10.0.12.0/30"))
	})

	It("should link every pair on a shared network", func() {
		devices := map[string]*devconfig.Device{
			"S1": {Hostname: "S1", Interfaces: []devconfig.Interface{
				iface("Vl10", "", "192.168.10.0/24", 1000, 1500),
			}},
			"S2": {Hostname: "S2", Interfaces: []devconfig.Interface{
				iface("Vl10", "", "192.168.10.0/24", 1000, 1500),
			}},
			"S3": {Hostname: "S3", Interfaces: []devconfig.Interface{
				iface("Vl10", "", "192.168.10.0/24", 1000, 1500),
			}},
		}

		g := BuildFromDevices(devices)

		Expect(g.NumLinks()).To(Equal(3))
	})

	It("should not link a device to itself", func() {
		devices := map[string]*devconfig.Device{
			"R1": {Hostname: "R1", Interfaces: []devconfig.Interface{
				iface("Gi0/0", "", "10.0.0.0/24", 1000, 1500),
				iface("Gi0/1", "", "10.0.0.0/24", 1000, 1500),
			}},
		}

		g := BuildFromDevices(devices)

		Expect(g.NumLinks()).To(Equal(0))
	})

	It("should link devices by description hints", func() {
		devices := map[string]*devconfig.Device{
			"R1": {Hostname: "R1", Interfaces: []devconfig.Interface{
				iface("Gi0/1", "Uplink to R3", "", 50000, 0),
				iface("Gi0/2", "to GHOST", "", 50000, 0),
			}},
			"R3": {Hostname: "R3"},
		}

		g := BuildFromDevices(devices)

		l, found := g.Link("R1", "R3")
		Expect(found).To(BeTrue())
		Expect(l.Capacity).To(Equal(50000))
		Expect(l.MTU).To(Equal(devconfig.DefaultMTU))
		Expect(g.HasDevice("GHOST")).To(BeFalse())
		Expect(g.NumLinks()).To(Equal(1))
	})

	It("should keep subnet links over description hints", func() {
		devices := map[string]*devconfig.Device{
			"R1": {Hostname: "R1", Interfaces: []devconfig.Interface{
				iface("Gi0/0", "to R2", "10.0.12.0/30", 100000, 1500),
			}},
			"R2": {Hostname: "R2", Interfaces: []devconfig.Interface{
				iface("Gi0/0", "to R1", "10.0.12.0/30", 1000, 1500),
			}},
		}

		g := BuildFromDevices(devices)

		l, _ := g.Link("R1", "R2")
		Expect(g.NumLinks()).To(Equal(1))
		Expect(l.Capacity).To(Equal(1000))
	})
})
