// SPDX-License-Identifier: MPL-2.0

package serverbase

const (
	// StateCreated is the state of a server whose Start has not been called.
	StateCreated State = iota
	// StateStarting covers the window between Start and the listener being bound.
	StateStarting
	// StateRunning means requests are being accepted.
	StateRunning
	// StateStopping means a graceful shutdown is draining in-flight requests.
	StateStopping
	// StateStopped is terminal.
	StateStopped
	// StateFailed is terminal; LastError reports the cause.
	StateFailed
)

// State is a server lifecycle state.
type State int32

var stateNames = [...]string{
	StateCreated:  "created",
	StateStarting: "starting",
	StateRunning:  "running",
	StateStopping: "stopping",
	StateStopped:  "stopped",
	StateFailed:   "failed",
}

// String returns the lower-case state name, or "unknown".
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
