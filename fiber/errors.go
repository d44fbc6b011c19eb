package fiber

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidElement       = errors.New("fiber: invalid element")
	ErrHookOutsideComponent = errors.New("fiber: hook called outside of a component render")
	ErrNoContainer          = errors.New("fiber: render container is nil")
)

// OnErrorFunc receives errors that do not stop the work loop, such as a
// component or effect that panicked. f is the fiber the error belongs to.
type OnErrorFunc func(f *Fiber, err error)

// CommitError is returned by WorkLoop when the render target rejects a
// mutation. Mutations applied before the failure are not rolled back.
type CommitError struct {
	Op  string
	Tag Type
	Err error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("fiber: commit %s on %s: %v", e.Op, typeName(e.Tag), e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }

// ComponentError wraps a panic recovered while rendering a component or
// running one of its effects.
type ComponentError struct {
	Component *Component
	Phase     string
	Err       error
}

func (e *ComponentError) Error() string {
	return fmt.Sprintf("fiber: %s of %s: %v", e.Phase, e.Component, e.Err)
}

func (e *ComponentError) Unwrap() error { return e.Err }

func recoveredError(v any) error {
	switch x := v.(type) {
	case error:
		return x
	default:
		return fmt.Errorf("%v", x)
	}
}

func typeName(t Type) string {
	switch x := t.(type) {
	case Tag:
		return string(x)
	case *Component:
		return x.String()
	default:
		return fmt.Sprintf("%T", t)
	}
}
