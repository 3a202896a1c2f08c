package hedge

import "fmt"

// State is a step of the per-day state machine:
//
//	ComputeMarks -> EvaluateTrigger -> {Trade | Skip} -> ApplyFunding -> RecordAttribution -> Advance
//
// Advance loops back to ComputeMarks until the last day, then Done.
type State int

const (
	StateInit State = iota
	StateComputeMarks
	StateEvaluateTrigger
	StateTrade
	StateSkip
	StateApplyFunding
	StateRecordAttribution
	StateAdvance
	StateDone
	StateHalted
	StateCancelled
)

var stateNames = [...]string{
	StateInit:              "init",
	StateComputeMarks:      "compute_marks",
	StateEvaluateTrigger:   "evaluate_trigger",
	StateTrade:             "trade",
	StateSkip:              "skip",
	StateApplyFunding:      "apply_funding",
	StateRecordAttribution: "record_attribution",
	StateAdvance:           "advance",
	StateDone:              "done",
	StateHalted:            "halted",
	StateCancelled:         "cancelled",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal states accept no further transitions.
func (s State) Terminal() bool {
	return s == StateDone || s == StateHalted || s == StateCancelled
}

var transitions = map[State][]State{
	StateInit:              {StateComputeMarks, StateCancelled},
	StateComputeMarks:      {StateEvaluateTrigger, StateHalted},
	StateEvaluateTrigger:   {StateTrade, StateSkip},
	StateTrade:             {StateApplyFunding},
	StateSkip:              {StateApplyFunding},
	StateApplyFunding:      {StateRecordAttribution},
	StateRecordAttribution: {StateAdvance, StateHalted},
	StateAdvance:           {StateComputeMarks, StateDone, StateCancelled},
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
