package node

import (
	"fmt"
	"net/netip"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	interr "github.com/kaba4cow/net/internal/neterr"
	"github.com/kaba4cow/net/internal/poll"
	"github.com/kaba4cow/net/internal/socket"
	"github.com/kaba4cow/net/pkg/log"
	"github.com/kaba4cow/net/pkg/neterr"
)

const eventBatchSize = 128

// Driver Per-variant behavior a node dispatches to: channel factory,
// readiness processing and lifecycle hooks.  All methods run on the
// loop thread.
type Driver interface {
	InitChannel(selector *poll.Selector, addr netip.AddrPort) (fd int, err error)
	Update(events []poll.Event) error
	OnStarted() error
	OnClosing() error
	OnClosed() error
	OnError(err error)
}

// Node Single-threaded readiness loop over one channel.  A node
// exclusively owns its selector, channel descriptor and scratch
// buffer; none of them is ever shared across nodes.
//
// Close is the only method that is safe to call from a thread other
// than the loop thread.
type Node struct {
	interr.DefaultProducer

	addr      netip.AddrPort
	selector  *poll.Selector
	channelFd int
	buffer    []byte
	events    []poll.Event

	state  atomic.Int32
	driver Driver
	logger *logrus.Entry
}

// Configure Open the selector and the driver's channel, allocate the
// scratch buffer.  Any failure tears down what was opened so no
// partial node is left behind.
func (n *Node) Configure(addr netip.AddrPort, bufferSize int, errorChanBufferSize int, driver Driver, tag string) error {
	n.addr = addr
	n.driver = driver
	n.channelFd = -1
	n.logger = log.NewLogger(tag)

	selector, err := poll.Open()
	if err != nil {
		return fmt.Errorf("%w : %v", neterr.ErrNodeInitialization, err)
	}
	n.selector = selector

	fd, err := driver.InitChannel(selector, addr)
	if err != nil {
		_ = selector.Close()
		n.selector = nil
		return fmt.Errorf("%w : %v", neterr.ErrNodeInitialization, err)
	}
	n.channelFd = fd

	n.buffer = make([]byte, bufferSize)
	n.events = make([]poll.Event, eventBatchSize)
	n.ConfigureErrors(errorChanBufferSize)

	return nil
}

// Start Run the readiness loop on the calling thread until Close is
// requested or an unrecoverable error occurs.  Calling Start on a
// node that is already CLOSING or CLOSED is a no-op.  Returns the
// abort cause, nil on a clean close.
func (n *Node) Start() error {
	if state := n.State(); state == Closing || state == Closed {
		return nil
	}

	n.advanceState(Running)
	n.logger.Debug("node started")

	cause := n.driver.OnStarted()

	for cause == nil && n.State() == Running {
		count, err := n.selector.Wait(n.events)
		if n.State() != Running {
			break
		}
		if err == nil {
			err = n.driver.Update(n.events[:count])
		}
		cause = err
	}

	if cause != nil {
		n.logger.WithError(cause).Error("node loop aborted")
		n.SendError(cause)
		n.driver.OnError(cause)
	}

	n.teardown()
	return cause
}

// Close Request the loop to stop.  Effective only while RUNNING:
// flips the state and wakes the blocked selector so the loop
// observes the change promptly.  Safe to call from any thread and
// idempotent; calling it on a node that is not RUNNING is a silent
// no-op.
func (n *Node) Close() {
	if n.state.CompareAndSwap(int32(Running), int32(Closing)) {
		n.selector.Wakeup()
	}
}

// RequireState Fail with an illegal-state error when the current
// lifecycle state differs from the expected one
func (n *Node) RequireState(state State) error {
	if current := n.State(); current != state {
		return fmt.Errorf("%w : %s != %s", neterr.ErrIllegalState, current, state)
	}
	return nil
}

func (n *Node) State() State {
	return State(n.state.Load())
}

func (n *Node) Addr() netip.AddrPort {
	return n.addr
}

// Selector Readiness multiplexer owned by this node.  Loop-thread
// only, except for Wakeup.
func (n *Node) Selector() *poll.Selector {
	return n.selector
}

// Buffer Scratch buffer reused for every read on the loop thread.
// Bytes handed to callbacks must be copied out of it, never aliased.
func (n *Node) Buffer() []byte {
	return n.buffer
}

func (n *Node) Logger() *logrus.Entry {
	return n.logger
}

// teardown Runs exactly once per node regardless of the loop exit
// reason: CLOSING, closing hook, channel and selector closure,
// CLOSED, closed hook.
func (n *Node) teardown() {
	n.advanceState(Closing)
	n.logger.Debug("node closing")

	if err := n.driver.OnClosing(); err != nil {
		n.SendError(err)
	}

	if n.channelFd >= 0 {
		_ = socket.Close(n.channelFd)
		n.channelFd = -1
	}
	_ = n.selector.Close()

	n.advanceState(Closed)

	if err := n.driver.OnClosed(); err != nil {
		n.SendError(err)
	}

	n.CloseErrors()
	n.logger.Debug("node closed")
}

// advanceState Monotonic: the state only ever moves forward, a
// transition to an earlier or equal state is ignored.
func (n *Node) advanceState(state State) {
	for {
		current := n.state.Load()
		if current >= int32(state) {
			return
		}
		if n.state.CompareAndSwap(current, int32(state)) {
			return
		}
	}
}
