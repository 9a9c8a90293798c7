package node

import (
	"errors"
	"net/netip"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/kaba4cow/net/internal/poll"
	"github.com/kaba4cow/net/pkg/neterr"
)

// testDriver Registers one end of a socketpair as its channel so a
// test can trigger readiness by writing to the other end.
type testDriver struct {
	node *Node

	channelFd int
	remoteFd  int

	updateErr     error
	closeOnUpdate bool

	mutex sync.Mutex
	calls []string
}

func (d *testDriver) record(call string) {
	d.mutex.Lock()
	d.calls = append(d.calls, call)
	d.mutex.Unlock()
}

func (d *testDriver) callCount(call string) int {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	count := 0
	for _, c := range d.calls {
		if c == call {
			count++
		}
	}
	return count
}

func (d *testDriver) InitChannel(selector *poll.Selector, _ netip.AddrPort) (int, error) {
	pair, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return -1, err
	}

	err = selector.Add(pair[0], poll.Readable)
	if err != nil {
		_ = unix.Close(pair[0])
		_ = unix.Close(pair[1])
		return -1, err
	}

	d.channelFd = pair[0]
	d.remoteFd = pair[1]
	return pair[0], nil
}

func (d *testDriver) Update(events []poll.Event) error {
	d.record("update")

	if d.updateErr != nil {
		return d.updateErr
	}

	for range events {
		buffer := make([]byte, 16)
		_, _ = unix.Read(d.channelFd, buffer)
	}

	if d.closeOnUpdate {
		d.node.Close()
	}
	return nil
}

func (d *testDriver) OnStarted() error  { d.record("started"); return nil }
func (d *testDriver) OnClosing() error  { d.record("closing"); return nil }
func (d *testDriver) OnClosed() error   { d.record("closed"); return nil }
func (d *testDriver) OnError(err error) { d.record("error") }

func newTestNode(t *testing.T) (*Node, *testDriver) {
	t.Helper()

	n := &Node{}
	d := &testDriver{node: n}

	err := n.Configure(netip.MustParseAddrPort("127.0.0.1:0"), 64, 10, d, "test-node")
	require.NoError(t, err)

	t.Cleanup(func() { _ = unix.Close(d.remoteFd) })
	return n, d
}

func waitForState(t *testing.T, n *Node, state State) {
	t.Helper()
	require.Eventually(t, func() bool {
		return n.State() == state
	}, 3*time.Second, time.Millisecond, "node never reached %s", state)
}

func TestNodeLifecycle(t *testing.T) {
	n, d := newTestNode(t)
	assert.Equal(t, None, n.State())

	done := make(chan error, 1)
	go func() { done <- n.Start() }()

	waitForState(t, n, Running)
	n.Close()
	waitForState(t, n, Closed)

	require.NoError(t, <-done)

	assert.Equal(t, 1, d.callCount("started"))
	assert.Equal(t, 1, d.callCount("closing"))
	assert.Equal(t, 1, d.callCount("closed"))
	assert.Equal(t, 0, d.callCount("error"))
}

func TestNodeCloseIsIdempotent(t *testing.T) {
	n, _ := newTestNode(t)

	done := make(chan error, 1)
	go func() { done <- n.Start() }()

	waitForState(t, n, Running)
	n.Close()
	n.Close()
	waitForState(t, n, Closed)

	require.NoError(t, <-done)

	// CLOSED is terminal, further Close calls stay no-ops
	n.Close()
	assert.Equal(t, Closed, n.State())
}

func TestNodeStartAfterCloseIsNoOp(t *testing.T) {
	n, d := newTestNode(t)

	done := make(chan error, 1)
	go func() { done <- n.Start() }()

	waitForState(t, n, Running)
	n.Close()
	waitForState(t, n, Closed)
	require.NoError(t, <-done)

	require.NoError(t, n.Start())
	assert.Equal(t, 1, d.callCount("started"))
	assert.Equal(t, 1, d.callCount("closed"))
}

func TestNodeUpdateDispatchesReadiness(t *testing.T) {
	n, d := newTestNode(t)

	done := make(chan error, 1)
	go func() { done <- n.Start() }()

	waitForState(t, n, Running)

	_, err := unix.Write(d.remoteFd, []byte("x"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return d.callCount("update") > 0
	}, 3*time.Second, time.Millisecond)

	n.Close()
	require.NoError(t, <-done)
}

func TestNodeUpdateErrorAbortsLoop(t *testing.T) {
	n, d := newTestNode(t)

	cause := errors.New("update failed")
	d.updateErr = cause

	done := make(chan error, 1)
	go func() { done <- n.Start() }()

	waitForState(t, n, Running)

	// trigger one readiness cycle so Update runs and fails
	_, err := unix.Write(d.remoteFd, []byte("x"))
	require.NoError(t, err)

	require.ErrorIs(t, <-done, cause)
	assert.Equal(t, Closed, n.State())

	assert.Equal(t, 1, d.callCount("error"))
	assert.Equal(t, 1, d.callCount("closing"))
	assert.Equal(t, 1, d.callCount("closed"))
}

func TestNodeErrorChannelReceivesAbortCause(t *testing.T) {
	n, d := newTestNode(t)

	cause := errors.New("update failed")
	d.updateErr = cause

	errorChan := n.Errors()

	done := make(chan error, 1)
	go func() { done <- n.Start() }()

	waitForState(t, n, Running)

	_, err := unix.Write(d.remoteFd, []byte("x"))
	require.NoError(t, err)
	require.ErrorIs(t, <-done, cause)

	select {
	case reported := <-errorChan:
		assert.ErrorIs(t, reported, cause)
	default:
		t.Fatal("abort cause was not published on the error channel")
	}
}

func TestNodeCloseFromUpdate(t *testing.T) {
	n, d := newTestNode(t)
	d.closeOnUpdate = true

	done := make(chan error, 1)
	go func() { done <- n.Start() }()

	waitForState(t, n, Running)

	_, err := unix.Write(d.remoteFd, []byte("x"))
	require.NoError(t, err)

	waitForState(t, n, Closed)
	require.NoError(t, <-done)
}

func TestNodeRequireState(t *testing.T) {
	n, _ := newTestNode(t)

	err := n.RequireState(Running)
	require.ErrorIs(t, err, neterr.ErrIllegalState)
	assert.Contains(t, err.Error(), "NONE != RUNNING")

	require.NoError(t, n.RequireState(None))

	done := make(chan error, 1)
	go func() { done <- n.Start() }()

	waitForState(t, n, Running)
	require.NoError(t, n.RequireState(Running))

	n.Close()
	waitForState(t, n, Closed)
	require.NoError(t, <-done)

	require.ErrorIs(t, n.RequireState(Running), neterr.ErrIllegalState)
}

func TestStateOrderingIsMonotonic(t *testing.T) {
	assert.True(t, None < Running)
	assert.True(t, Running < Closing)
	assert.True(t, Closing < Closed)

	n := &Node{}
	n.advanceState(Closing)
	n.advanceState(Running)
	assert.Equal(t, Closing, n.State())
}
