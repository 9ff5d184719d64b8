package verdict

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Outcome is the result of the compile step, of a single case or of a whole job.
type Outcome int

const (
	Waiting Outcome = iota
	Running
	Accepted
	CompilationError
	CompilationSuccess
	WrongAnswer
	RuntimeError
	TimeLimitExceeded
	MemoryLimitExceeded
	SystemError
	SpjError
	Skipped
)

// labels is the external representation. Never reorder or rename entries,
// clients match on these strings.
var labels = [...]string{
	Waiting:             "Waiting",
	Running:             "Running",
	Accepted:            "Accepted",
	CompilationError:    "Compilation Error",
	CompilationSuccess:  "Compilation Success",
	WrongAnswer:         "Wrong Answer",
	RuntimeError:        "Runtime Error",
	TimeLimitExceeded:   "Time Limit Exceeded",
	MemoryLimitExceeded: "Memory Limit Exceeded",
	SystemError:         "System Error",
	SpjError:            "SPJ Error",
	Skipped:             "Skipped",
}

var identifiers = [...]string{
	Waiting:             "Waiting",
	Running:             "Running",
	Accepted:            "Accepted",
	CompilationError:    "CompilationError",
	CompilationSuccess:  "CompilationSuccess",
	WrongAnswer:         "WrongAnswer",
	RuntimeError:        "RuntimeError",
	TimeLimitExceeded:   "TimeLimitExceeded",
	MemoryLimitExceeded: "MemoryLimitExceeded",
	SystemError:         "SystemError",
	SpjError:            "SpjError",
	Skipped:             "Skipped",
}

func (o Outcome) Valid() bool {
	return o >= Waiting && int(o) < len(labels)
}

func (o Outcome) String() string {
	if !o.Valid() {
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
	return labels[o]
}

// Short returns the conventional abbreviation, e.g. "AC" or "TLE".
func (o Outcome) Short() string {
	switch o {
	case Accepted:
		return "AC"
	case WrongAnswer:
		return "WA"
	case CompilationError:
		return "CE"
	case CompilationSuccess:
		return "CS"
	case RuntimeError:
		return "RE"
	case TimeLimitExceeded:
		return "TLE"
	case MemoryLimitExceeded:
		return "MLE"
	case SystemError:
		return "SE"
	case SpjError:
		return "SPJ"
	case Skipped:
		return "IG"
	case Running:
		return "R"
	default:
		return "W"
	}
}

// Halts reports whether a case with this outcome stops the remaining cases
// from running. Only Accepted and WrongAnswer let testing continue.
func (o Outcome) Halts() bool {
	return o != Accepted && o != WrongAnswer
}

// ParseOutcome accepts both the label ("Wrong Answer") and the identifier
// ("WrongAnswer") forms.
func ParseOutcome(s string) (Outcome, error) {
	s = strings.TrimSpace(s)
	for i := range labels {
		if labels[i] == s || identifiers[i] == s {
			return Outcome(i), nil
		}
	}
	return Waiting, fmt.Errorf("unknown outcome %q", s)
}

func (o Outcome) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("invalid outcome %d", int(o))
	}
	return []byte(labels[o]), nil
}

func (o *Outcome) UnmarshalText(text []byte) error {
	parsed, err := ParseOutcome(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// DecodeOutcome decodes a JSON string literal such as "\"Accepted\"".
// A bare word is accepted as well.
func DecodeOutcome(line string) (Outcome, error) {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, `"`) {
		var s string
		if err := json.Unmarshal([]byte(line), &s); err != nil {
			return Waiting, fmt.Errorf("malformed outcome %q: %w", line, err)
		}
		line = s
	}
	return ParseOutcome(line)
}

// State is the lifecycle state of a job.
type State int

const (
	StateQueueing State = iota
	StateRunning
	StateFinished
	StateCanceled
)

var stateLabels = [...]string{
	StateQueueing: "Queueing",
	StateRunning:  "Running",
	StateFinished: "Finished",
	StateCanceled: "Canceled",
}

func (s State) String() string {
	if s < StateQueueing || int(s) >= len(stateLabels) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateLabels[s]
}

func ParseState(str string) (State, error) {
	for i, l := range stateLabels {
		if l == strings.TrimSpace(str) {
			return State(i), nil
		}
	}
	return StateQueueing, fmt.Errorf("unknown state %q", str)
}

func (s State) MarshalText() ([]byte, error) {
	if s < StateQueueing || int(s) >= len(stateLabels) {
		return nil, fmt.Errorf("invalid state %d", int(s))
	}
	return []byte(stateLabels[s]), nil
}

func (s *State) UnmarshalText(text []byte) error {
	parsed, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
