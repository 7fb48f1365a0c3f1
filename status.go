package helpkb

// Status is the processing stage of a document.
type Status string

// Document statuses in pipeline order. ERROR is terminal and only reachable
// from UNVISITED when every download attempt fails.
const (
	StatusUnvisited  Status = "UNVISITED"
	StatusDownloaded Status = "DOWNLOADED"
	StatusTrimmed    Status = "TRIMMED"
	StatusChunked    Status = "CHUNKED"
	StatusProcessed  Status = "PROCESSED"
	StatusError      Status = "ERROR"
)

var statusRank = map[Status]int{
	StatusUnvisited:  0,
	StatusDownloaded: 1,
	StatusTrimmed:    2,
	StatusChunked:    3,
	StatusProcessed:  4,
}

// Validate returns an error if s is not a known status.
func (s Status) Validate() error {
	if s == StatusError {
		return nil
	}
	if _, ok := statusRank[s]; !ok {
		return Errorf(EINVALID, "unknown document status %q", string(s))
	}
	return nil
}

// CanTransition reports whether a document may move from s to next.
// Transitions are strictly forward and ERROR is absorbing.
func (s Status) CanTransition(next Status) bool {
	if s == StatusError {
		return false
	}
	if next == StatusError {
		return s == StatusUnvisited
	}
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to == from+1
}

// Step is the work a refiner performs for a document in a given status.
type Step int

// Steps returned by NextStep.
const (
	// StepNone means there is nothing left to do.
	StepNone Step = iota
	// StepTrimAndChunk trims the source and chunks the result.
	StepTrimAndChunk
	// StepChunk chunks already trimmed text.
	StepChunk
	// StepEvaluate generates retrieval metadata and synthetic chunks.
	StepEvaluate
	// StepReplay returns records computed by an earlier evaluation.
	StepReplay
)

// String returns the step name used in logs.
func (s Step) String() string {
	switch s {
	case StepNone:
		return "none"
	case StepTrimAndChunk:
		return "trim+chunk"
	case StepChunk:
		return "chunk"
	case StepEvaluate:
		return "evaluate"
	case StepReplay:
		return "replay"
	}
	return "unknown"
}

// NextStep returns the refinement step for a document in status s.
// An UNVISITED document has not been downloaded and cannot be refined.
func NextStep(s Status) (Step, error) {
	switch s {
	case StatusError:
		return StepNone, nil
	case StatusDownloaded:
		return StepTrimAndChunk, nil
	case StatusTrimmed:
		return StepChunk, nil
	case StatusChunked:
		return StepEvaluate, nil
	case StatusProcessed:
		return StepReplay, nil
	case StatusUnvisited:
		return StepNone, Errorf(EINVALID, "document has not been downloaded")
	}
	return StepNone, Errorf(EINTERNAL, "unknown document status %q", string(s))
}
