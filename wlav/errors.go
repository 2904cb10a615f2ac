package wlav

import "fmt"

// FatalError marks a process-terminating condition: a writer bug or an
// unsupported construct the writer refuses to paper over. Callers at the
// command boundary recover from it; library code never catches its own
// FatalError.
type FatalError struct {
	msg string
}

func (e *FatalError) Error() string { return e.msg }

// fatal panics with a FatalError, the report_fatal_error-style pattern of
// panicking deep in code generation and recovering once at the top of the
// command.
func fatal(format string, args ...any) {
	panic(&FatalError{msg: fmt.Sprintf(format, args...)})
}

// invariant panics (as a plain error, not FatalError) when a programmer
// invariant is violated — these are asserted conditions that should never
// be reachable from user input.
func invariant(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Errorf("wlav: invariant violated: %s", fmt.Sprintf(format, args...)))
	}
}
