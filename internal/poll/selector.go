package poll

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// Interest Readiness conditions a file descriptor can be registered
// for.  Accept readiness on a listening socket and connect
// readiness on a connecting socket surface as Readable and Writable
// respectively.
type Interest uint32

const (
	Readable Interest = 1 << iota
	Writable
)

// Event One readiness notification for a registered descriptor.
// Error and hang-up conditions are folded into Readable so that the
// next read observes the failure or end-of-stream directly.
type Event struct {
	FD       int
	Readable bool
	Writable bool
}

const maxEvents = 128

// Selector Readiness multiplexer over epoll.  Wait blocks the loop
// thread; Wakeup is the only method that is safe to call from other
// threads and forces a blocked Wait to return early.
//
// Registration methods must only be called from the loop thread.
// Wakeup and Close share a mutex: a Wakeup that races with or follows
// Close is a no-op, so the wakeup write can never land on a reused
// descriptor number.
type Selector struct {
	epollFd int
	wakeFd  int
	ready   []unix.EpollEvent

	wakeMutex sync.Mutex
	closed    bool
}

func Open() (*Selector, error) {
	epollFd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}

	wakeFd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		_ = unix.Close(epollFd)
		return nil, fmt.Errorf("eventfd: %w", err)
	}

	s := &Selector{
		epollFd: epollFd,
		wakeFd:  wakeFd,
		ready:   make([]unix.EpollEvent, maxEvents),
	}

	err = s.Add(wakeFd, Readable)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	return s, nil
}

func (s *Selector) Add(fd int, interest Interest) error {
	event := unix.EpollEvent{Events: epollEvents(interest), Fd: int32(fd)}
	err := unix.EpollCtl(s.epollFd, unix.EPOLL_CTL_ADD, fd, &event)
	if err != nil {
		return fmt.Errorf("epoll add: %w", err)
	}
	return nil
}

func (s *Selector) Modify(fd int, interest Interest) error {
	event := unix.EpollEvent{Events: epollEvents(interest), Fd: int32(fd)}
	err := unix.EpollCtl(s.epollFd, unix.EPOLL_CTL_MOD, fd, &event)
	if err != nil {
		return fmt.Errorf("epoll mod: %w", err)
	}
	return nil
}

// Remove Cancel all interest for a descriptor.  Removing a
// descriptor that was already closed is not an error: closing a
// descriptor deregisters it from epoll implicitly.
func (s *Selector) Remove(fd int) error {
	err := unix.EpollCtl(s.epollFd, unix.EPOLL_CTL_DEL, fd, nil)
	if err != nil && err != unix.ENOENT && err != unix.EBADF {
		return fmt.Errorf("epoll del: %w", err)
	}
	return nil
}

// Wait Block until at least one registered descriptor is ready or
// Wakeup is called.  Returns the number of events written into the
// given slice; a wakeup or interrupted wait yields zero events.
func (s *Selector) Wait(events []Event) (int, error) {
	n, err := unix.EpollWait(s.epollFd, s.ready, -1)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, fmt.Errorf("epoll wait: %w", err)
	}

	count := 0
	for i := 0; i < n && count < len(events); i++ {
		ready := s.ready[i]
		fd := int(ready.Fd)

		if fd == s.wakeFd {
			s.drainWake()
			continue
		}

		events[count] = Event{
			FD:       fd,
			Readable: ready.Events&(unix.EPOLLIN|unix.EPOLLERR|unix.EPOLLHUP|unix.EPOLLRDHUP) != 0,
			Writable: ready.Events&(unix.EPOLLOUT|unix.EPOLLERR) != 0,
		}
		count++
	}

	return count, nil
}

// Wakeup Force a blocked Wait to return.  Safe to call from any
// thread and any number of times; extra wakeups coalesce, and a
// wakeup after Close is a silent no-op.
func (s *Selector) Wakeup() {
	s.wakeMutex.Lock()
	defer s.wakeMutex.Unlock()

	if s.closed {
		return
	}

	var one = [8]byte{1}
	_, _ = unix.Write(s.wakeFd, one[:])
}

// Close Release both descriptors.  Idempotent; once closed, the
// descriptor numbers may be reused by the process and no Selector
// method touches them again.
func (s *Selector) Close() error {
	s.wakeMutex.Lock()
	defer s.wakeMutex.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	err := unix.Close(s.epollFd)
	wakeErr := unix.Close(s.wakeFd)
	if err == nil {
		err = wakeErr
	}
	return err
}

func (s *Selector) drainWake() {
	var counter [8]byte
	_, _ = unix.Read(s.wakeFd, counter[:])
}

func epollEvents(interest Interest) uint32 {
	var events uint32
	if interest&Readable != 0 {
		events |= unix.EPOLLIN
	}
	if interest&Writable != 0 {
		events |= unix.EPOLLOUT
	}
	return events
}
