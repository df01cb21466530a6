package msg

import (
	"context"
	"sync"

	"github.com/flowpane/flowpane/pkg/errors"
	"github.com/flowpane/flowpane/pkg/observability"
)

// Channel is one endpoint of an asynchronous, ordered message link.
// Send never blocks on the peer's processing; messages sent in one
// direction are received in that order. Receive's channel is closed
// when the link goes down.
type Channel interface {
	// Send queues a message for the peer.
	Send(ctx context.Context, m Message) error

	// Receive returns the stream of messages from the peer.
	Receive() <-chan Message

	// Close tears down the endpoint. Subsequent Sends fail; the
	// Receive channel is closed after any buffered messages drain.
	Close() error
}

// pipeBuffer is the per-direction queue depth of an in-memory pipe.
// Deep enough that neither side blocks during a render burst.
const pipeBuffer = 64

// pipeEnd is one endpoint of an in-memory channel pair.
type pipeEnd struct {
	name string

	// mu guards closed and serializes Close against in-flight Sends.
	// Senders hold the read lock for the duration of the channel send
	// so Close never closes out underneath them.
	mu     sync.RWMutex
	out    chan Message
	in     chan Message
	closed bool
	peer   *pipeEnd
}

// Pipe creates a connected pair of in-memory channel endpoints, one for
// the host side and one for the view side. Both directions are buffered
// and FIFO. Closing either end closes both.
func Pipe() (host, view Channel) {
	hostToView := make(chan Message, pipeBuffer)
	viewToHost := make(chan Message, pipeBuffer)

	h := &pipeEnd{name: "host", out: hostToView, in: viewToHost}
	v := &pipeEnd{name: "view", out: viewToHost, in: hostToView}
	h.peer = v
	v.peer = h
	return h, v
}

// Send queues m for the peer. It fails once the pipe is closed or when
// ctx is done before buffer space frees up.
func (p *pipeEnd) Send(ctx context.Context, m Message) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return errors.New(errors.ErrCodeChannelClosed, "send %s on closed channel", m.Type)
	}

	select {
	case p.out <- m:
		observability.Channel().OnSend(ctx, string(m.Type))
		return nil
	case <-ctx.Done():
		observability.Channel().OnDrop(ctx, string(m.Type))
		return errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "send %s", m.Type)
	}
}

// Receive returns the incoming message stream.
func (p *pipeEnd) Receive() <-chan Message {
	return p.in
}

// Close tears down both endpoints. Safe to call more than once.
func (p *pipeEnd) Close() error {
	p.closeLocal()
	p.peer.closeLocal()
	return nil
}

func (p *pipeEnd) closeLocal() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.out)
}

// Ensure pipeEnd implements Channel.
var _ Channel = (*pipeEnd)(nil)
