// Package node implements the actor that represents one simulated device.
package node

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sarchlab/netsim/sim"
)

// HookPosNodeStart marks when a node starts its event loop.
var HookPosNodeStart = &sim.HookPos{Name: "Node Start"}

// HookPosNodeStop marks when a node leaves its event loop.
var HookPosNodeStop = &sim.HookPos{Name: "Node Stop"}

// HookPosMsgSent marks when a message is delivered into a neighbor's mailbox.
var HookPosMsgSent = &sim.HookPos{Name: "Node Msg Sent"}

// HookPosMsgRecvd marks when a message is taken from the node's mailbox and
// processed.
var HookPosMsgRecvd = &sim.HookPos{Name: "Node Msg Recvd"}

// HookPosMsgDropped marks when a message is dropped because the neighbor's
// mailbox is full.
var HookPosMsgDropped = &sim.HookPos{Name: "Node Msg Dropped"}

// A PauseSignal tells if the simulation is paused.
type PauseSignal interface {
	IsPaused() bool
}

type neverPaused struct{}

func (neverPaused) IsPaused() bool { return false }

// A Node is an independent actor that represents one device. It owns its
// mailbox and its routing table, periodically says hello to the reachable
// neighbors and processes the messages it receives.
type Node struct {
	*sim.HookableBase

	name   string
	inbox  *sim.Mailbox
	routes *RoutingTable
	pause  PauseSignal

	helloInterval time.Duration
	pollInterval  time.Duration
	recvTimeout   time.Duration

	started atomic.Bool
	running atomic.Bool
	done    chan struct{}
}

// Name returns the name of the node.
func (n *Node) Name() string {
	return n.name
}

// Mailbox returns the mailbox that the node receives from.
func (n *Node) Mailbox() *sim.Mailbox {
	return n.inbox
}

// RoutingTable returns the live routing table of the node.
func (n *Node) RoutingTable() *RoutingTable {
	return n.routes
}

// IsRunning checks if the node has been started and not asked to stop.
func (n *Node) IsRunning() bool {
	return n.running.Load()
}

// Start launches the event loop of the node in its own goroutine. A node can
// only be started once.
func (n *Node) Start() {
	if !n.started.CompareAndSwap(false, true) {
		panic("node " + n.name + " already started")
	}

	n.running.Store(true)

	go n.run()
}

// Stop asks the event loop to end after the current iteration. It does not
// wait; use Done to wait for the loop to end.
func (n *Node) Stop() {
	n.running.Store(false)
}

// Done returns a channel that is closed once the event loop has ended. For a
// node that has never started, the channel is never closed.
func (n *Node) Done() <-chan struct{} {
	return n.done
}

// Send delivers a message to the mailbox of the given neighbor. If the
// neighbor is not reachable, nothing happens. If the neighbor's mailbox is
// full, the message is dropped and the drop is logged.
func (n *Node) Send(neighbor string, msg *sim.Msg) {
	mailbox, found := n.routes.Lookup(neighbor)
	if !found {
		return
	}

	n.deliver(neighbor, mailbox, msg)
}

// Broadcast sends the message to every neighbor that is currently
// reachable. Each neighbor is tried independently.
func (n *Node) Broadcast(msg *sim.Msg) {
	for _, r := range n.routes.Routes() {
		n.deliver(r.Neighbor, r.Mailbox, msg)
	}
}

func (n *Node) deliver(neighbor string, mailbox *sim.Mailbox, msg *sim.Msg) {
	err := mailbox.Deliver(msg)
	if err != nil {
		n.log(HookPosMsgDropped, msg,
			fmt.Sprintf("LINK QUEUE FULL to %s, dropping %s",
				neighbor, msg.Kind()))
		return
	}

	n.log(HookPosMsgSent, msg, "")
}

func (n *Node) run() {
	defer close(n.done)

	n.log(HookPosNodeStart, nil, "Node started")

	lastHello := time.Now()
	for n.running.Load() {
		if n.pause.IsPaused() {
			time.Sleep(n.pollInterval)
			continue
		}

		if time.Since(lastHello) >= n.helloInterval {
			n.sayHello()
			lastHello = time.Now()
		}

		msg, ok := n.inbox.Retrieve(n.recvTimeout)
		if ok {
			n.process(msg)
		}
	}

	n.log(HookPosNodeStop, nil, "Node stopped")
}

func (n *Node) sayHello() {
	if n.pause.IsPaused() {
		return
	}

	hello := sim.MsgBuilder{}.
		WithKind(sim.MsgKindHello).
		WithSrc(n.name).
		WithDst(sim.Broadcast).
		WithPayload("hi").
		Build()

	n.Broadcast(hello)
}

func (n *Node) process(msg *sim.Msg) {
	var text string

	switch msg.Kind() {
	case sim.MsgKindHello:
		text = "HELLO from " + msg.Src()
	case sim.MsgKindPause:
		text = "Received PAUSE"
	case sim.MsgKindResume:
		text = "Received RESUME"
	case sim.MsgKindARP:
		text = fmt.Sprintf("ARP from %s: who-has %v", msg.Src(), msg.Payload())
	default:
		text = fmt.Sprintf("Got %s from %s", msg.Kind(), msg.Src())
	}

	n.log(HookPosMsgRecvd, msg, text)
}

func (n *Node) log(pos *sim.HookPos, msg *sim.Msg, text string) {
	if n.NumHooks() == 0 {
		return
	}

	ctx := sim.HookCtx{
		Domain: n,
		Pos:    pos,
		Detail: text,
	}
	if msg != nil {
		ctx.Item = msg
	}

	n.InvokeHook(ctx)
}
