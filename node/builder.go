package node

import (
	"time"

	"github.com/sarchlab/netsim/sim"
)

// Default timing of the event loop.
const (
	DefaultHelloInterval = time.Second
	DefaultPollInterval  = 50 * time.Millisecond
	DefaultRecvTimeout   = 100 * time.Millisecond
)

// Builder can build nodes.
type Builder struct {
	mailbox       *sim.Mailbox
	pause         PauseSignal
	helloInterval time.Duration
	pollInterval  time.Duration
	recvTimeout   time.Duration
}

// MakeBuilder creates a builder with default timing.
func MakeBuilder() Builder {
	return Builder{
		helloInterval: DefaultHelloInterval,
		pollInterval:  DefaultPollInterval,
		recvTimeout:   DefaultRecvTimeout,
	}
}

// WithMailbox sets the mailbox that the node receives from.
func (b Builder) WithMailbox(mailbox *sim.Mailbox) Builder {
	b.mailbox = mailbox
	return b
}

// WithPauseSignal sets the signal that suspends the node.
func (b Builder) WithPauseSignal(pause PauseSignal) Builder {
	b.pause = pause
	return b
}

// WithHelloInterval sets how often the node says hello to its neighbors.
func (b Builder) WithHelloInterval(d time.Duration) Builder {
	b.helloInterval = d
	return b
}

// WithPollInterval sets how often a paused node checks if it can resume.
func (b Builder) WithPollInterval(d time.Duration) Builder {
	b.pollInterval = d
	return b
}

// WithRecvTimeout sets how long the node waits for a message in one
// iteration.
func (b Builder) WithRecvTimeout(d time.Duration) Builder {
	b.recvTimeout = d
	return b
}

func (b Builder) parametersMustBeValid(name string) {
	if name == "" {
		panic("node name is not given")
	}

	if b.mailbox == nil {
		panic("mailbox of node " + name + " is not given")
	}

	if b.helloInterval <= 0 || b.pollInterval <= 0 || b.recvTimeout <= 0 {
		panic("node intervals must be positive")
	}
}

// Build creates a node with an empty routing table.
func (b Builder) Build(name string) *Node {
	b.parametersMustBeValid(name)

	pause := b.pause
	if pause == nil {
		pause = neverPaused{}
	}

	n := &Node{
		HookableBase:  sim.NewHookableBase(),
		name:          name,
		inbox:         b.mailbox,
		routes:        NewRoutingTable(),
		pause:         pause,
		helloInterval: b.helloInterval,
		pollInterval:  b.pollInterval,
		recvTimeout:   b.recvTimeout,
		done:          make(chan struct{}),
	}

	return n
}
