package app

import "fmt"

// State is where the poll loop currently is.
type State int

const (
	StateIdle State = iota
	StateSourceFound
	StateListing
	StateDiffing
	StateFetching
	StateHandoff
	StateUploading
	StateCommitting
	StateErrorRecovery
)

var stateNames = map[State]string{
	StateIdle:          "idle",
	StateSourceFound:   "source_found",
	StateListing:       "listing",
	StateDiffing:       "diffing",
	StateFetching:      "fetching",
	StateHandoff:       "handoff",
	StateUploading:     "uploading",
	StateCommitting:    "committing",
	StateErrorRecovery: "error_recovery",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// AllStates lists every state in cycle order.
func AllStates() []State {
	return []State{
		StateIdle, StateSourceFound, StateListing, StateDiffing, StateFetching,
		StateHandoff, StateUploading, StateCommitting, StateErrorRecovery,
	}
}

type transition struct {
	From State
	To   State
}

var validTransitions = map[transition]bool{
	{StateIdle, StateSourceFound}:     true,
	{StateSourceFound, StateListing}:  true,
	{StateListing, StateDiffing}:      true,
	{StateDiffing, StateFetching}:     true,
	{StateFetching, StateHandoff}:     true,
	{StateHandoff, StateUploading}:    true,
	{StateUploading, StateCommitting}: true,
	{StateUploading, StateIdle}:       true, // failed or nothing to upload
	{StateCommitting, StateIdle}:      true,
	{StateErrorRecovery, StateIdle}:   true,
}

// CanTransition reports whether the loop may move from one state to another.
// ErrorRecovery is reachable from every state.
func CanTransition(from, to State) bool {
	if to == StateErrorRecovery {
		return true
	}
	return validTransitions[transition{From: from, To: to}]
}
