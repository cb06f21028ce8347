package simulation

import (
	"strings"
	"sync"

	"golang.org/x/exp/slices"

	"github.com/sarchlab/netsim/topology"
)

// LinkState is the operational state of one link.
type LinkState struct {
	A  string `json:"a"`
	B  string `json:"b"`
	Up bool   `json:"up"`
}

// A LinkRegistry tracks whether each link of the topology is up. Entries are
// created for every edge when the simulation is built and are never removed.
type LinkRegistry struct {
	lock  sync.RWMutex
	links map[topology.LinkKey]bool
}

// NewLinkRegistry creates an empty registry.
func NewLinkRegistry() *LinkRegistry {
	return &LinkRegistry{
		links: make(map[topology.LinkKey]bool),
	}
}

func (r *LinkRegistry) add(a, b string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.links[topology.MakeLinkKey(a, b)] = true
}

func (r *LinkRegistry) set(a, b string, up bool) bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	key := topology.MakeLinkKey(a, b)
	if _, found := r.links[key]; !found {
		return false
	}

	r.links[key] = up

	return true
}

// IsUp tells if the link between a and b is up. The order of a and b does
// not matter. Found is false if there is no such link.
func (r *LinkRegistry) IsUp(a, b string) (up, found bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	up, found = r.links[topology.MakeLinkKey(a, b)]

	return up, found
}

// Links returns the state of all links, sorted by their names.
func (r *LinkRegistry) Links() []LinkState {
	r.lock.RLock()
	defer r.lock.RUnlock()

	states := make([]LinkState, 0, len(r.links))
	for key, up := range r.links {
		states = append(states, LinkState{A: key.A, B: key.B, Up: up})
	}

	slices.SortFunc(states, func(x, y LinkState) int {
		if c := strings.Compare(x.A, y.A); c != 0 {
			return c
		}

		return strings.Compare(x.B, y.B)
	})

	return states
}
