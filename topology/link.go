package topology

import (
	"strconv"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
)

// A LinkKey identifies an undirected link by the sorted pair of device
// names, so that (a, b) and (b, a) give the same key.
type LinkKey struct {
	A string `json:"a" yaml:"a"`
	B string `json:"b" yaml:"b"`
}

// MakeLinkKey returns the key of the link between a and b.
func MakeLinkKey(a, b string) LinkKey {
	if b < a {
		a, b = b, a
	}

	return LinkKey{A: a, B: b}
}

func (k LinkKey) String() string {
	return k.A + "-" + k.B
}

// LinkAttrs are the properties the topology builder attaches to a link.
type LinkAttrs struct {
	// Capacity is the bandwidth of the link as configured on the
	// interfaces, in kbit/s.
	Capacity int `json:"capacity" yaml:"capacity"`

	// MTU is the largest frame the link carries.
	MTU int `json:"mtu" yaml:"mtu"`

	// Network is the subnet the link was derived from, if any.
	Network string `json:"network,omitempty" yaml:"network,omitempty"`
}

// A Device is a vertex of the topology graph.
type Device struct {
	id   int64
	name string
}

// ID implements graph.Node.
func (d Device) ID() int64 {
	return d.id
}

// Name returns the device name.
func (d Device) Name() string {
	return d.name
}

// DOTID names the vertex in DOT output.
func (d Device) DOTID() string {
	return d.name
}

// A Link is an edge of the topology graph.
type Link struct {
	F, T Device
	LinkAttrs
}

// From implements graph.Edge.
func (l Link) From() graph.Node {
	return l.F
}

// To implements graph.Edge.
func (l Link) To() graph.Node {
	return l.T
}

// ReversedEdge implements graph.Edge.
func (l Link) ReversedEdge() graph.Edge {
	return Link{F: l.T, T: l.F, LinkAttrs: l.LinkAttrs}
}

// Key returns the undirected key of the link.
func (l Link) Key() LinkKey {
	return MakeLinkKey(l.F.name, l.T.name)
}

// Attributes labels the link in DOT output.
func (l Link) Attributes() []encoding.Attribute {
	attrs := []encoding.Attribute{
		{Key: "capacity", Value: strconv.Itoa(l.Capacity)},
		{Key: "mtu", Value: strconv.Itoa(l.MTU)},
	}

	if l.Network != "" {
		attrs = append(attrs, encoding.Attribute{
			Key:   "label",
			Value: l.Network,
		})
	}

	return attrs
}
