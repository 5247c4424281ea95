package pipeline

// State is a stage of a single pipeline run.
type State string

const (
	StateIdle        State = "idle"
	StateExtracting  State = "extracting"
	StateGenerating  State = "generating"
	StateReconciling State = "reconciling"
	StateRewriting   State = "rewriting"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
