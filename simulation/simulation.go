// Package simulation runs one node actor per device of a topology and lets
// an operator pause, resume, fail and restore links while it runs.
package simulation

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sarchlab/netsim/datarecording"
	"github.com/sarchlab/netsim/logging"
	"github.com/sarchlab/netsim/node"
	"github.com/sarchlab/netsim/sim"
	"github.com/sarchlab/netsim/topology"
)

// ErrNoSuchLink is returned when a link that is not part of the topology is
// failed or restored.
var ErrNoSuchLink = errors.New("no such link")

// ControllerName is the source of the messages the controller sends.
const ControllerName = "SIM"

// A Simulation owns the nodes, their mailboxes, the link registry and the
// pause signal. It is the only writer of the routing tables once built.
type Simulation struct {
	id    string
	graph *topology.Graph

	lock      sync.Mutex
	paused    atomic.Bool
	names     []string
	nodes     map[string]*node.Node
	mailboxes map[string]*sim.Mailbox
	links     *LinkRegistry

	stopTimeout time.Duration
	started     bool
	stopped     bool

	logHook  *logging.NodeLogHook
	recorder *datarecording.EventRecorder
}

// ID returns the unique ID of the simulation run.
func (s *Simulation) ID() string {
	return s.id
}

// Graph returns the topology the simulation was built from. Failing a link
// does not change it.
func (s *Simulation) Graph() *topology.Graph {
	return s.graph
}

// IsPaused implements node.PauseSignal.
func (s *Simulation) IsPaused() bool {
	return s.paused.Load()
}

// Node returns the node of the given name.
func (s *Simulation) Node(name string) (*node.Node, bool) {
	n, found := s.nodes[name]
	return n, found
}

// Nodes returns all the nodes, sorted by name.
func (s *Simulation) Nodes() []*node.Node {
	nodes := make([]*node.Node, 0, len(s.names))
	for _, name := range s.names {
		nodes = append(nodes, s.nodes[name])
	}

	return nodes
}

// Mailbox returns the mailbox of the given node.
func (s *Simulation) Mailbox(name string) (*sim.Mailbox, bool) {
	mb, found := s.mailboxes[name]
	return mb, found
}

// Links returns the state of every link.
func (s *Simulation) Links() []LinkState {
	return s.links.Links()
}

// LinkRegistry returns the registry that tracks which links are up.
func (s *Simulation) LinkRegistry() *LinkRegistry {
	return s.links
}

// LogDir returns the directory of the per-node logs, or an empty string if
// the nodes do not write logs.
func (s *Simulation) LogDir() string {
	if s.logHook == nil {
		return ""
	}

	return s.logHook.Dir()
}

// Start launches every node and returns immediately. Calling Start again,
// or after Stop, does nothing.
func (s *Simulation) Start() {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.started || s.stopped {
		return
	}

	s.started = true

	for _, name := range s.names {
		s.nodes[name].Start()
	}

	logging.SimLog.WithField("sim", s.id).
		Infof("Started %d nodes", len(s.names))
}

// Stop asks every node to stop and waits for each of them for at most the
// stop timeout. The names of the nodes that did not stop in time are
// returned. They are left running and are never started again.
func (s *Simulation) Stop() []string {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.stopped {
		return nil
	}

	s.stopped = true

	var leaked []string
	if s.started {
		leaked = s.stopNodes()
	}

	s.closeOutputs()

	logging.SimLog.WithField("sim", s.id).Info("Stopped")

	return leaked
}

func (s *Simulation) stopNodes() []string {
	for _, name := range s.names {
		s.nodes[name].Stop()
	}

	var leaked []string
	for _, name := range s.names {
		select {
		case <-s.nodes[name].Done():
		case <-time.After(s.stopTimeout):
			leaked = append(leaked, name)
			logging.SimLog.WithField("sim", s.id).
				Warnf("Node %s did not stop within %s", name, s.stopTimeout)
		}
	}

	return leaked
}

func (s *Simulation) closeOutputs() {
	if s.recorder != nil {
		s.recorder.Flush()
	}

	if s.logHook != nil {
		if err := s.logHook.Close(); err != nil {
			logging.SimLog.WithError(err).Warn("Cannot close node logs")
		}
	}
}

// Pause suspends all the nodes. The nodes also get a PAUSE message from
// their neighbors, which they read after resuming. The message may be
// dropped; suspension does not depend on it.
func (s *Simulation) Pause() {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.paused.Store(true)
	s.broadcastFromAll(sim.MsgKindPause)

	logging.SimLog.WithField("sim", s.id).Info("Paused")
}

// Resume lets the nodes continue and sends a RESUME message through every
// live link.
func (s *Simulation) Resume() {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.paused.Store(false)
	s.broadcastFromAll(sim.MsgKindResume)

	logging.SimLog.WithField("sim", s.id).Info("Resumed")
}

func (s *Simulation) broadcastFromAll(kind sim.MsgKind) {
	for _, name := range s.names {
		msg := sim.MsgBuilder{}.
			WithKind(kind).
			WithSrc(ControllerName).
			WithDst(sim.Broadcast).
			Build()

		s.nodes[name].Broadcast(msg)
	}
}

// FailLink takes the link between a and b down, or brings it back up if
// down is false. Only the routing tables of a and b and the link registry
// change; the topology keeps the link. Both directions change before
// FailLink returns. Repeating a call has no further effect. If a and b are
// not linked in the topology, an error wrapping ErrNoSuchLink is returned.
func (s *Simulation) FailLink(a, b string, down bool) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, found := s.links.IsUp(a, b); !found {
		return fmt.Errorf("%w: %s-%s", ErrNoSuchLink, a, b)
	}

	nodeA, nodeB := s.nodes[a], s.nodes[b]

	if down {
		nodeA.RoutingTable().Remove(b)
		nodeB.RoutingTable().Remove(a)
	} else {
		nodeA.RoutingTable().Add(b, s.mailboxes[b])
		nodeB.RoutingTable().Add(a, s.mailboxes[a])
	}

	s.links.set(a, b, !down)

	logging.SimLog.WithField("sim", s.id).
		WithField("up", !down).
		Infof("Link %s changed", topology.MakeLinkKey(a, b))

	return nil
}

func (s *Simulation) addNode(n *node.Node) {
	s.nodes[n.Name()] = n
	s.mailboxes[n.Name()] = n.Mailbox()
	s.names = append(s.names, n.Name())
}

func (s *Simulation) connect(a, b string) {
	s.links.add(a, b)
	s.nodes[a].RoutingTable().Add(b, s.mailboxes[b])
	s.nodes[b].RoutingTable().Add(a, s.mailboxes[a])
}
