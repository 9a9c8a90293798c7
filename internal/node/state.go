package node

// State Lifecycle of a node.  Transitions are strictly monotonic
// along None, Running, Closing, Closed; Closed is terminal.
type State int32

const (
	None State = iota
	Running
	Closing
	Closed
)

func (s State) String() string {
	switch s {
	case None:
		return "NONE"
	case Running:
		return "RUNNING"
	case Closing:
		return "CLOSING"
	case Closed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Stateful Read-only interface for objects that expose a lifecycle
// state
type Stateful interface {
	State() State
}
