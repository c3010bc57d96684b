package submission

// State is the lifecycle state of a submission
type State int

// Lifecycle states
const (
	StateCreated State = iota
	StateValidating
	StateValidated
	StateRejected
	StateCompiling
	StateCompiled
	StateCompileFailed
	StateEvaluating
	StateTerminal
)

var stateString = []string{
	"Created",
	"Validating",
	"Validated",
	"Rejected",
	"Compiling",
	"Compiled",
	"CompileFailed",
	"Evaluating",
	"Terminal",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateString) {
		return "Unknown"
	}
	return stateString[s]
}

// canEvaluate reports whether the program could run in the state
func (s State) canEvaluate() bool {
	return s == StateCompiled || s == StateEvaluating
}
