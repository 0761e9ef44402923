package constants

// ResultStatus is the terminal outcome of one document run. Rejected is a
// successful run whose extraction failed verification; Error is a run that
// could not complete.
type ResultStatus string

// Stable values (these exact strings appear in result JSON).
const (
	StatusSuccess  ResultStatus = "success"
	StatusRejected ResultStatus = "rejected"
	StatusError    ResultStatus = "error"
)

// ProcessingBackend records which extraction path handled a document.
type ProcessingBackend string

const (
	BackendLocalOnly ProcessingBackend = "local_only"
	BackendExternal  ProcessingBackend = "external_assisted"
)

// JobState tracks a document through the pipeline. Terminal outcomes are
// carried by ResultStatus; DONE is the sole terminal state here.
type JobState string

const (
	StateQueued      JobState = "QUEUED"
	StateAcquiring   JobState = "ACQUIRING"   // text acquisition in progress
	StateClassifying JobState = "CLASSIFYING" // type + confidential scan, concurrent
	StateRouted      JobState = "ROUTED"      // backend chosen, frozen from here on
	StateExtracting  JobState = "EXTRACTING"
	StateVerifying   JobState = "VERIFYING"
	StateDone        JobState = "DONE"
)

var stateTransitions = map[JobState][]JobState{
	StateQueued:      {StateAcquiring, StateDone},
	StateAcquiring:   {StateClassifying, StateDone},
	StateClassifying: {StateRouted, StateDone},
	StateRouted:      {StateExtracting, StateDone},
	StateExtracting:  {StateVerifying, StateDone},
	StateVerifying:   {StateDone},
	StateDone:        {},
}

// CanTransitionTo reports whether moving from s to next is a legal step.
func (s JobState) CanTransitionTo(next JobState) bool {
	for _, allowed := range stateTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
