package orchestrator

// State is a step of a scrub run. States only move forward.
type State int

const (
	StateInit State = iota
	StateConnectingDB
	StateResolvingIdentity
	StatePreparingWorkspace
	StateRunningPipeline
	StateCleaningUp
	StateDone
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StateConnectingDB:
		return "ConnectingDB"
	case StateResolvingIdentity:
		return "ResolvingIdentity"
	case StatePreparingWorkspace:
		return "PreparingWorkspace"
	case StateRunningPipeline:
		return "RunningPipeline"
	case StateCleaningUp:
		return "CleaningUp"
	case StateDone:
		return "Done"
	default:
		return "Unknown"
	}
}
