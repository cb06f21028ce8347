package simulation

import (
	"io"
	"time"

	"github.com/rs/xid"

	"github.com/sarchlab/netsim/datarecording"
	"github.com/sarchlab/netsim/logging"
	"github.com/sarchlab/netsim/node"
	"github.com/sarchlab/netsim/sim"
	"github.com/sarchlab/netsim/topology"
)

// DefaultStopTimeout is how long Stop waits for each node.
const DefaultStopTimeout = time.Second

// Builder can be used to build a simulation.
type Builder struct {
	mailboxCapacity int
	helloInterval   time.Duration
	pollInterval    time.Duration
	recvTimeout     time.Duration
	stopTimeout     time.Duration
	logDir          string
	echo            io.Writer
	dataRecorder    datarecording.DataRecorder
	hooks           []sim.Hook
}

// MakeBuilder creates a new builder with the default timing and mailbox
// capacity. By default, nodes do not write logs.
func MakeBuilder() Builder {
	return Builder{
		mailboxCapacity: sim.DefaultMailboxCapacity,
		helloInterval:   node.DefaultHelloInterval,
		pollInterval:    node.DefaultPollInterval,
		recvTimeout:     node.DefaultRecvTimeout,
		stopTimeout:     DefaultStopTimeout,
	}
}

// WithMailboxCapacity sets the capacity of every mailbox.
func (b Builder) WithMailboxCapacity(capacity int) Builder {
	b.mailboxCapacity = capacity
	return b
}

// WithHelloInterval sets how often each node says hello.
func (b Builder) WithHelloInterval(d time.Duration) Builder {
	b.helloInterval = d
	return b
}

// WithPollInterval sets how often paused nodes check if they can resume.
func (b Builder) WithPollInterval(d time.Duration) Builder {
	b.pollInterval = d
	return b
}

// WithRecvTimeout sets how long a node waits for a message in one loop
// iteration.
func (b Builder) WithRecvTimeout(d time.Duration) Builder {
	b.recvTimeout = d
	return b
}

// WithStopTimeout sets how long Stop waits for each node.
func (b Builder) WithStopTimeout(d time.Duration) Builder {
	b.stopTimeout = d
	return b
}

// WithLogDir makes every node write its activity into <dir>/<name>.log.
func (b Builder) WithLogDir(dir string) Builder {
	b.logDir = dir
	return b
}

// WithEcho copies every node log line into w. It only takes effect together
// with WithLogDir.
func (b Builder) WithEcho(w io.Writer) Builder {
	b.echo = w
	return b
}

// WithDataRecorder records every node event into the recorder.
func (b Builder) WithDataRecorder(r datarecording.DataRecorder) Builder {
	b.dataRecorder = r
	return b
}

// WithHook attaches a hook to every node.
func (b Builder) WithHook(h sim.Hook) Builder {
	b.hooks = append(b.hooks[:len(b.hooks):len(b.hooks)], h)
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.mailboxCapacity <= 0 {
		panic("mailbox capacity must be positive")
	}

	if b.stopTimeout <= 0 {
		panic("stop timeout must be positive")
	}
}

// Build creates one mailbox and one node per device of the graph and
// connects the nodes of every link. The nodes are not started.
func (b Builder) Build(g *topology.Graph) (*Simulation, error) {
	b.parametersMustBeValid()

	s := &Simulation{
		id:          xid.New().String(),
		graph:       g,
		nodes:       make(map[string]*node.Node),
		mailboxes:   make(map[string]*sim.Mailbox),
		links:       NewLinkRegistry(),
		stopTimeout: b.stopTimeout,
	}

	hooks, err := b.buildHooks(s)
	if err != nil {
		return nil, err
	}

	nodeBuilder := node.MakeBuilder().
		WithPauseSignal(s).
		WithHelloInterval(b.helloInterval).
		WithPollInterval(b.pollInterval).
		WithRecvTimeout(b.recvTimeout)

	for _, name := range g.Devices() {
		n := nodeBuilder.
			WithMailbox(sim.NewMailbox(name, b.mailboxCapacity)).
			Build(name)

		for _, h := range hooks {
			n.AcceptHook(h)
		}

		s.addNode(n)
	}

	for _, l := range g.Links() {
		s.connect(l.From().(topology.Device).Name(),
			l.To().(topology.Device).Name())
	}

	logging.SimLog.WithField("sim", s.id).
		Debugf("Built %d nodes and %d links", g.NumDevices(), g.NumLinks())

	return s, nil
}

func (b Builder) buildHooks(s *Simulation) ([]sim.Hook, error) {
	var hooks []sim.Hook

	if b.logDir != "" {
		h, err := logging.NewNodeLogHook(b.logDir, b.echo)
		if err != nil {
			return nil, err
		}

		s.logHook = h
		hooks = append(hooks, h)
	}

	if b.dataRecorder != nil {
		s.recorder = datarecording.NewEventRecorder(b.dataRecorder)
		hooks = append(hooks, s.recorder)
	}

	hooks = append(hooks, b.hooks...)

	return hooks, nil
}
