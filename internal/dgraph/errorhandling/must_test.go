// Copyright (c) The Dune Authors
// SPDX-License-Identifier: MPL-2.0

package errorhandling

import (
	"errors"
	"testing"
)

func TestMust2PanicsOnError(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected Must2 to panic on error")
		}
	}()
	Must2(0, errors.New("boom"))
}

func TestMust2PassesThroughValue(t *testing.T) {
	got := Must2(42, nil)
	if got != 42 {
		t.Fatalf("Must2 = %d, want 42", got)
	}
}

func TestSafe2RecoversPanic(t *testing.T) {
	_, err := Safe2(func() (int, error) {
		panic("host callback exploded")
	}, func(err error) error {
		return errors.New("wrapped: " + err.Error())
	})
	if err == nil {
		t.Fatalf("expected an error from a recovered panic")
	}
	if got, want := err.Error(), "wrapped: host callback exploded"; got != want {
		t.Fatalf("err = %q, want %q", got, want)
	}
}

func TestSafe2PassesThroughNormalReturn(t *testing.T) {
	got, err := Safe2(func() (int, error) {
		return 7, nil
	}, func(err error) error { return err })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 7 {
		t.Fatalf("got = %d, want 7", got)
	}
}
