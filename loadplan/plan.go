package loadplan

import (
	"fmt"

	"github.com/sarchlab/netsim/topology"
)

// RecommendationType is the type of every recommendation made by Plan.
const RecommendationType = "load_balance_recommendation"

// A Recommendation suggests relieving an overloaded link.
type Recommendation struct {
	Type       string   `json:"type"`
	Link       []string `json:"link"`
	Reason     string   `json:"reason"`
	Suggestion string   `json:"suggestion"`
}

// A Report lists the load of every link, keyed by "a-b", and the
// recommendations for the overloaded ones.
type Report struct {
	LinkLoads       map[string]int   `json:"link_loads_mbps"`
	Recommendations []Recommendation `json:"recommendations"`
}

// ComputeLinkLoads routes every demand along a shortest path and sums the
// demand on each link. Every link of the graph appears in the result.
// Demands between unknown or disconnected devices are skipped.
func ComputeLinkLoads(
	g *topology.Graph,
	demands []Demand,
) map[topology.LinkKey]int {
	loads := make(map[topology.LinkKey]int, g.NumLinks())
	for _, l := range g.Links() {
		loads[l.Key()] = 0
	}

	for _, d := range demands {
		path, found := g.ShortestPath(d.Src, d.Dst)
		if !found {
			continue
		}

		for i := 1; i < len(path); i++ {
			loads[topology.MakeLinkKey(path[i-1], path[i])] += d.Mbps
		}
	}

	return loads
}

// Plan computes the link loads and recommends rebalancing for every link
// whose load exceeds its capacity. Capacities are configured in kbit/s.
func Plan(g *topology.Graph, demands []Demand) Report {
	loads := ComputeLinkLoads(g, demands)

	r := Report{
		LinkLoads:       make(map[string]int, len(loads)),
		Recommendations: []Recommendation{},
	}

	for _, l := range g.Links() {
		key := l.Key()
		load := loads[key]
		capacity := l.Capacity / 1000

		r.LinkLoads[key.String()] = load

		if load <= capacity {
			continue
		}

		r.Recommendations = append(r.Recommendations, Recommendation{
			Type: RecommendationType,
			Link: []string{key.A, key.B},
			Reason: fmt.Sprintf("Demand %d Mbps > capacity %d Mbps",
				load, capacity),
			Suggestion: "Use secondary path / shift lower-priority flows",
		})
	}

	return r
}
