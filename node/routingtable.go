package node

import (
	"strings"
	"sync"

	"github.com/sarchlab/netsim/sim"
	"golang.org/x/exp/slices"
)

// A Route is one entry of a routing table.
type Route struct {
	Neighbor string
	Mailbox  *sim.Mailbox
}

// A RoutingTable maps the names of the currently reachable neighbors to their
// mailboxes. It is the live adjacency of a node: an entry exists only while
// the link to that neighbor is up.
//
// The simulation controller is the only writer after construction. The
// owning node reads it on every send.
type RoutingTable struct {
	lock    sync.RWMutex
	entries map[string]*sim.Mailbox
}

// NewRoutingTable creates an empty routing table.
func NewRoutingTable() *RoutingTable {
	return &RoutingTable{
		entries: make(map[string]*sim.Mailbox),
	}
}

// Add points the entry of the neighbor to the given mailbox, replacing any
// existing entry.
func (t *RoutingTable) Add(neighbor string, mailbox *sim.Mailbox) {
	if mailbox == nil {
		panic("routing to a nil mailbox")
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	t.entries[neighbor] = mailbox
}

// Remove deletes the entry of the neighbor. Removing an absent entry does
// nothing.
func (t *RoutingTable) Remove(neighbor string) {
	t.lock.Lock()
	defer t.lock.Unlock()

	delete(t.entries, neighbor)
}

// Lookup returns the mailbox of the neighbor, if the neighbor is reachable.
func (t *RoutingTable) Lookup(neighbor string) (*sim.Mailbox, bool) {
	t.lock.RLock()
	defer t.lock.RUnlock()

	mailbox, found := t.entries[neighbor]

	return mailbox, found
}

// Size returns the number of reachable neighbors.
func (t *RoutingTable) Size() int {
	t.lock.RLock()
	defer t.lock.RUnlock()

	return len(t.entries)
}

// Neighbors returns the names of the reachable neighbors in sorted order.
func (t *RoutingTable) Neighbors() []string {
	routes := t.Routes()

	names := make([]string, 0, len(routes))
	for _, r := range routes {
		names = append(names, r.Neighbor)
	}

	return names
}

// Routes returns a snapshot of the table sorted by neighbor name. Later
// changes to the table do not affect the returned slice.
func (t *RoutingTable) Routes() []Route {
	t.lock.RLock()
	routes := make([]Route, 0, len(t.entries))
	for neighbor, mailbox := range t.entries {
		routes = append(routes, Route{Neighbor: neighbor, Mailbox: mailbox})
	}
	t.lock.RUnlock()

	slices.SortFunc(routes, func(a, b Route) int {
		return strings.Compare(a.Neighbor, b.Neighbor)
	})

	return routes
}
