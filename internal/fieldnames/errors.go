package fieldnames

import (
	"errors"
	"fmt"
)

// Load stages
const (
	StageRequest   = "request"
	StageTransport = "transport"
	StageStatus    = "status"
	StageSize      = "size"
	StageDecode    = "decode"
)

// ErrResponseTooLarge is wrapped by size-stage failures
var ErrResponseTooLarge = errors.New("survey list response too large")

// LoadError tells which step of a survey list load failed
type LoadError struct {
	Stage      string
	StatusCode int
	Err        error
}

func (e *LoadError) Error() string {
	if e.Stage == StageStatus {
		return fmt.Sprintf("load survey fields: upstream returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("load survey fields: %s: %v", e.Stage, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
