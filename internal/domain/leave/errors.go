package leave

import "fmt"

// ValidationError marks user-correctable input problems (bad date range,
// zero chargeable days, malformed payload fields).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func Invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError marks lookups that matched nothing: unknown policy name,
// unknown request id, missing employee.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func NotFound(resource, key string) error {
	return &NotFoundError{Resource: resource, Key: key}
}

// DependencyError wraps a failed round-trip to the store. It is never
// retried here; the caller decides what to do with it.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

func dependency(op string, err error) error {
	return &DependencyError{Op: op, Err: err}
}
