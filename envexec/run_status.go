package envexec

import (
	"fmt"
)

// Status defines how the executed command finished
type Status int

// Defines run status result status
const (
	// not initialized status (as error)
	StatusInvalid Status = iota

	// exit normally
	StatusAccepted

	// exit with error
	StatusTimeLimitExceeded // TLE
	StatusNonzeroExitStatus // NZS
	StatusSignalled         // SIG

	// internal error including: command not found, failed to start, etc
	StatusInternalError
)

var statusToString = []string{
	"Invalid",
	"Accepted",
	"Time Limit Exceeded",
	"Nonzero Exit Status",
	"Signalled",
	"Internal Error",
}

// stringToStatus map string to corresponding Status
var stringToStatus = make(map[string]Status)

func (s Status) String() string {
	si := int(s)
	if si < 0 || si >= len(statusToString) {
		return statusToString[0] // invalid
	}
	return statusToString[si]
}

// StringToStatus convert string to Status
func StringToStatus(s string) (Status, error) {
	v, ok := stringToStatus[s]
	if !ok {
		return 0, fmt.Errorf("invalid string converting: %s", s)
	}
	return v, nil
}

func init() {
	for i, v := range statusToString {
		stringToStatus[v] = Status(i)
	}
}
