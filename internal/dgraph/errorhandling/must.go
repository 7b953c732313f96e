// Copyright (c) The Dune Authors
// SPDX-License-Identifier: MPL-2.0

// Package errorhandling provides small helpers for converting between
// panics and errors at the boundaries where host-provided callbacks
// (eval callbacks, editor-update callbacks) are invoked from inside the
// graph engine.
package errorhandling

import "fmt"

// Must converts an error into a panic. Used for invariant violations that
// indicate a bug in this package rather than a recoverable condition.
func Must(err error) {
	if err != nil {
		panic(err)
	}
}

// Must2 converts an error into a panic, returning the value if no error
// happened.
func Must2[T any](value T, err error) T {
	Must(err)
	return value
}

// safe2 runs f and returns its result or converts any panic into an error.
func safe2[T any](f func() (T, error)) (result T, err error) {
	defer func() {
		e := recover()
		if e == nil {
			return
		}
		if asErr, ok := e.(error); ok {
			err = asErr
		} else {
			err = fmt.Errorf("%v", e)
		}
	}()
	return f()
}

// Safe2 runs f and returns its result or error. If f panics, the panic is
// recovered and passed through wrapError to become a normal error return.
//
// This exists so that a single misbehaving host callback (an evaluation
// callback or an editor-update callback) cannot unwind past the flusher or
// builder and leave the graph in a partially-updated state.
func Safe2[T any](f func() (T, error), wrapError func(error) error) (T, error) {
	value, err := safe2(f)
	if err != nil {
		return value, wrapError(err)
	}
	return value, nil
}
