// Package loader models the lifecycle of a single asynchronous request.
package loader

import "fmt"

// Status is the lifecycle stage of an asynchronous request
type Status int

// Status constants in lifecycle order
const (
	StatusIdle    Status = iota // Not requested yet
	StatusLoading               // Request in flight
	StatusSuccess               // Resolved with data
	StatusError                 // Resolved with an error
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// State holds the current stage of a request together with its data or error.
// Data is only meaningful in StatusSuccess, Err only in StatusError.
type State[T any] struct {
	status Status
	data   T
	err    error
}

// Idle returns a state for a request that has not been issued
func Idle[T any]() State[T] {
	return State[T]{status: StatusIdle}
}

// Loading returns a state for an in-flight request
func Loading[T any]() State[T] {
	return State[T]{status: StatusLoading}
}

// Success returns a resolved state carrying data
func Success[T any](data T) State[T] {
	return State[T]{status: StatusSuccess, data: data}
}

// Failure returns a resolved state carrying err
func Failure[T any](err error) State[T] {
	return State[T]{status: StatusError, err: err}
}

// Status returns the lifecycle stage
func (s State[T]) Status() Status {
	return s.status
}

// Data returns the resolved data and whether the state is StatusSuccess
func (s State[T]) Data() (T, bool) {
	return s.data, s.status == StatusSuccess
}

// Err returns the failure cause, or nil unless the state is StatusError
func (s State[T]) Err() error {
	if s.status != StatusError {
		return nil
	}
	return s.err
}

// Settled reports whether the request has resolved either way
func (s State[T]) Settled() bool {
	return s.status == StatusSuccess || s.status == StatusError
}

// Transition returns next if it is a legal successor of s, otherwise s unchanged.
// Any state may be reset to idle or restarted as loading; only a loading state may
// resolve.
func (s State[T]) Transition(next State[T]) (State[T], bool) {
	switch next.status {
	case StatusIdle, StatusLoading:
		return next, true
	case StatusSuccess, StatusError:
		if s.status != StatusLoading {
			return s, false
		}
		return next, true
	default:
		return s, false
	}
}
