package judger

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Report is the grading report of a submission
type Report struct {
	TotalTests int
	Results    []Result
	Marks      int
}

// Result is the verdict of a single case
type Result struct {
	Name   string
	Passed bool
}

// MarshalJSON encodes the report as a flat object with stable field order:
// totalTests, test results in case order and marks
func (r Report) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"totalTests":`)
	buf.WriteString(strconv.Itoa(r.TotalTests))
	for _, res := range r.Results {
		buf.WriteByte(',')
		k, err := json.Marshal(res.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatBool(res.Passed))
	}
	buf.WriteString(`,"marks":`)
	buf.WriteString(strconv.Itoa(r.Marks))
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ErrorResponse is the report emitted for a fatal error
type ErrorResponse struct {
	Error bool   `json:"error"`
	Msg   string `json:"msg"`
}

// NewErrorResponse creates the error response of err
func NewErrorResponse(err error) ErrorResponse {
	return ErrorResponse{Error: true, Msg: err.Error()}
}
