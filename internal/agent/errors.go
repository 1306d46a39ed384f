package agent

import "fmt"

// NotFoundError indicates no agent document exists for the requested name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("agent %q not found", e.Name)
}

// ParseError indicates an agent document is not well-formed JSON.
type ParseError struct {
	Name string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("agent %q has a malformed document: %v", e.Name, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError indicates a profile violates an invariant. Field uses
// dotted paths into the document, e.g. "loop_delay" or "config[1].name".
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid agent profile: %s %s", e.Field, e.Reason)
}

// EmptyTaskSetError indicates there are no tasks to schedule.
type EmptyTaskSetError struct{}

func (e *EmptyTaskSetError) Error() string {
	return "agent has no tasks to schedule"
}
