package extractor

import (
	"context"
)

// Result is the outcome of one extraction. Exactly one of Data or Error is
// meaningful: Data when Success is true, Error otherwise.
type Result struct {
	Success bool
	Data    map[string]any
	Error   string
}

// Extractor converts raw document bytes into structured fields. An
// implementation must never panic across this boundary; internal faults are
// reported through the Error field.
type Extractor interface {
	Extract(ctx context.Context, data []byte) Result
}

func Failure(message string) Result {
	return Result{Success: false, Error: message}
}
