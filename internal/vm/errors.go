package vm

import "fmt"

// InterpretResult is the outcome of Interpret (spec.md §6).
type InterpretResult int

const (
	InterpretOK InterpretResult = iota
	InterpretCompileError
	InterpretRuntimeError
)

// CompileError is a single diagnostic produced in the compiler's panic-mode
// error accumulation (spec.md §4.3, §7).
type CompileError struct {
	Line    int
	Message string
}

func (e CompileError) Error() string {
	return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message)
}

// runtimeError is the error type raised by the dispatch loop for the fixed
// set of runtime failures named in spec.md §7. It carries the frames at the
// point of failure so Interpret can print a stack trace before resetting
// the VM.
type runtimeError struct {
	message string
	trace   []traceFrame
}

type traceFrame struct {
	line int
	name string
}

func (e *runtimeError) Error() string { return e.message }

func newRuntimeError(format string, args ...any) *runtimeError {
	return &runtimeError{message: fmt.Sprintf(format, args...)}
}
