package pipeline

// A State is a step of the state machine a request moves through.
type State int

const (
	Decorating State = iota
	RunningHandlers
	Terminated
	Matching
	Rendering
	Done
)

func (s State) String() string {
	switch s {
	case Decorating:
		return "decorating"
	case RunningHandlers:
		return "running_handlers"
	case Terminated:
		return "terminated"
	case Matching:
		return "matching"
	case Rendering:
		return "rendering"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}
