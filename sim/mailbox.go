package sim

import "time"

// DefaultMailboxCapacity is the number of messages a mailbox holds unless
// configured otherwise.
const DefaultMailboxCapacity = 1000

// A Mailbox is a bounded fifo queue of messages owned by one node. Any node
// may deliver into a mailbox, but only the owner retrieves from it.
type Mailbox struct {
	name     string
	capacity int
	msgs     chan *Msg
}

// NewMailbox creates a mailbox for the node with the given name.
func NewMailbox(name string, capacity int) *Mailbox {
	if name == "" {
		panic("mailbox name is not given")
	}

	if capacity <= 0 {
		panic("mailbox capacity must be positive")
	}

	return &Mailbox{
		name:     name,
		capacity: capacity,
		msgs:     make(chan *Msg, capacity),
	}
}

// Name returns the name of the owner of the mailbox.
func (b *Mailbox) Name() string {
	return b.name
}

// Capacity returns the maximum number of messages the mailbox can hold.
func (b *Mailbox) Capacity() int {
	return b.capacity
}

// Size returns the number of messages waiting in the mailbox.
func (b *Mailbox) Size() int {
	return len(b.msgs)
}

// Deliver puts a message at the tail of the mailbox. It never blocks. If the
// mailbox is full, the message is dropped and a SendError is returned.
func (b *Mailbox) Deliver(msg *Msg) *SendError {
	select {
	case b.msgs <- msg:
		return nil
	default:
		return NewSendError(b.name, msg)
	}
}

// Retrieve takes the message at the head of the mailbox, waiting at most
// timeout for one to arrive. The second return value is false if the
// mailbox stayed empty.
func (b *Mailbox) Retrieve(timeout time.Duration) (*Msg, bool) {
	select {
	case msg := <-b.msgs:
		return msg, true
	default:
	}

	if timeout <= 0 {
		return nil, false
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-b.msgs:
		return msg, true
	case <-timer.C:
		return nil, false
	}
}
