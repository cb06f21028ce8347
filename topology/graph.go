// Package topology provides the undirected device graph that the simulation
// is built from, and the builder that derives it from parsed device configs.
package topology

import (
	"strings"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// A Graph is an undirected graph whose vertices are device names and whose
// edges are links.
type Graph struct {
	g   *simple.UndirectedGraph
	ids map[string]int64
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		g:   simple.NewUndirectedGraph(),
		ids: make(map[string]int64),
	}
}

// AddDevice adds a vertex. Adding an existing device does nothing.
func (g *Graph) AddDevice(name string) {
	g.device(name)
}

func (g *Graph) device(name string) Device {
	if name == "" {
		panic("device name is not given")
	}

	if id, found := g.ids[name]; found {
		return g.g.Node(id).(Device)
	}

	d := Device{id: g.g.NewNode().ID(), name: name}
	g.g.AddNode(d)
	g.ids[name] = d.id

	return d
}

// AddLink adds an edge between a and b, adding the devices if needed. If the
// link already exists, its attributes are replaced.
func (g *Graph) AddLink(a, b string, attrs LinkAttrs) {
	if a == b {
		panic("cannot link device " + a + " to itself")
	}

	g.g.SetEdge(Link{F: g.device(a), T: g.device(b), LinkAttrs: attrs})
}

// HasDevice checks if the device is a vertex of the graph.
func (g *Graph) HasDevice(name string) bool {
	_, found := g.ids[name]
	return found
}

// HasLink checks if a and b are connected.
func (g *Graph) HasLink(a, b string) bool {
	_, found := g.Link(a, b)
	return found
}

// Link returns the link between a and b, oriented from a to b.
func (g *Graph) Link(a, b string) (Link, bool) {
	aID, aFound := g.ids[a]
	bID, bFound := g.ids[b]
	if !aFound || !bFound {
		return Link{}, false
	}

	e := g.g.EdgeBetween(aID, bID)
	if e == nil {
		return Link{}, false
	}

	l := e.(Link)
	if l.F.id != aID {
		l = l.ReversedEdge().(Link)
	}

	return l, true
}

// NumDevices returns the number of vertices.
func (g *Graph) NumDevices() int {
	return len(g.ids)
}

// NumLinks returns the number of edges.
func (g *Graph) NumLinks() int {
	return g.g.Edges().Len()
}

// Devices returns the names of all devices in sorted order.
func (g *Graph) Devices() []string {
	names := make([]string, 0, len(g.ids))
	for name := range g.ids {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Links returns all links, each oriented from the smaller name to the larger
// one, sorted by key.
func (g *Graph) Links() []Link {
	links := make([]Link, 0, g.NumLinks())

	edges := g.g.Edges()
	for edges.Next() {
		l := edges.Edge().(Link)
		if l.T.name < l.F.name {
			l = l.ReversedEdge().(Link)
		}

		links = append(links, l)
	}

	slices.SortFunc(links, func(x, y Link) int {
		if c := strings.Compare(x.F.name, y.F.name); c != 0 {
			return c
		}

		return strings.Compare(x.T.name, y.T.name)
	})

	return links
}

// Neighbors returns the sorted names of the devices linked to the device.
func (g *Graph) Neighbors(name string) []string {
	id, found := g.ids[name]
	if !found {
		return nil
	}

	names := nodeNames(graph.NodesOf(g.g.From(id)))
	slices.Sort(names)

	return names
}

// Degree returns the number of links of the device.
func (g *Graph) Degree(name string) int {
	id, found := g.ids[name]
	if !found {
		return 0
	}

	return g.g.From(id).Len()
}

// ShortestPath returns a minimum-hop path from a to b, both included. The
// second return value is false if either device is unknown or b cannot be
// reached.
func (g *Graph) ShortestPath(a, b string) ([]string, bool) {
	aID, aFound := g.ids[a]
	bID, bFound := g.ids[b]
	if !aFound || !bFound {
		return nil, false
	}

	tree := path.DijkstraFrom(g.g.Node(aID), g.g)

	nodes, _ := tree.To(bID)
	if len(nodes) == 0 {
		return nil, false
	}

	return nodeNames(nodes), true
}

// Cycles returns a cycle basis of the graph. Each cycle lists its devices
// once, in the order they are visited.
func (g *Graph) Cycles() [][]string {
	basis := topo.UndirectedCyclesIn(g.g)

	cycles := make([][]string, 0, len(basis))
	for _, c := range basis {
		names := nodeNames(c)
		if len(names) > 1 && names[0] == names[len(names)-1] {
			names = names[:len(names)-1]
		}

		cycles = append(cycles, names)
	}

	slices.SortFunc(cycles, func(x, y []string) int {
		return strings.Compare(strings.Join(x, ","), strings.Join(y, ","))
	})

	return cycles
}

// MarshalDOT renders the graph in the DOT language.
func (g *Graph) MarshalDOT(name string) ([]byte, error) {
	return dot.Marshal(g.g, name, "", "\t")
}

func nodeNames(nodes []graph.Node) []string {
	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		names = append(names, n.(Device).name)
	}

	return names
}
