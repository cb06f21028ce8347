package sim

import "fmt"

// Broadcast is the destination used by messages that are addressed to every
// live neighbor rather than to a single node.
const Broadcast = "*"

// A MsgKind tags what a message means to the receiver.
type MsgKind string

// Message kinds understood by the nodes. Any other kind is accepted and
// handled generically.
const (
	MsgKindHello  MsgKind = "HELLO"
	MsgKindPause  MsgKind = "PAUSE"
	MsgKindResume MsgKind = "RESUME"
	MsgKindARP    MsgKind = "ARP"
)

// A Msg is a piece of information that is transferred between nodes. A Msg
// is immutable once built.
type Msg struct {
	id      string
	kind    MsgKind
	src     string
	dst     string
	payload any
}

// ID returns the unique ID of the message.
func (m *Msg) ID() string {
	return m.id
}

// Kind returns the kind tag of the message.
func (m *Msg) Kind() MsgKind {
	return m.kind
}

// Src returns the name of the node that sent the message.
func (m *Msg) Src() string {
	return m.src
}

// Dst returns the name of the receiving node, or Broadcast.
func (m *Msg) Dst() string {
	return m.dst
}

// Payload returns the opaque payload. It may be nil.
func (m *Msg) Payload() any {
	return m.payload
}

// IsBroadcast checks if the message is addressed to all neighbors.
func (m *Msg) IsBroadcast() bool {
	return m.dst == Broadcast
}

func (m *Msg) String() string {
	return fmt.Sprintf("%s[%s] %s->%s", m.kind, m.id, m.src, m.dst)
}

// MsgBuilder can build messages.
type MsgBuilder struct {
	kind    MsgKind
	src     string
	dst     string
	payload any
}

// WithKind sets the kind of the message.
func (b MsgBuilder) WithKind(kind MsgKind) MsgBuilder {
	b.kind = kind
	return b
}

// WithSrc sets the source of the message.
func (b MsgBuilder) WithSrc(src string) MsgBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the message.
func (b MsgBuilder) WithDst(dst string) MsgBuilder {
	b.dst = dst
	return b
}

// WithPayload sets the payload of the message.
func (b MsgBuilder) WithPayload(payload any) MsgBuilder {
	b.payload = payload
	return b
}

// Build creates a new message.
func (b MsgBuilder) Build() *Msg {
	kindMustNotBeEmpty(b.kind)
	srcMustNotBeEmpty(b.src)

	dst := b.dst
	if dst == "" {
		dst = Broadcast
	}

	return &Msg{
		id:      GetIDGenerator().Generate(),
		kind:    b.kind,
		src:     b.src,
		dst:     dst,
		payload: b.payload,
	}
}

func kindMustNotBeEmpty(kind MsgKind) {
	if kind == "" {
		panic("msg kind is not given")
	}
}

func srcMustNotBeEmpty(src string) {
	if src == "" {
		panic("msg src is not given")
	}
}
