// Copyright (c) The Dune Authors
// SPDX-License-Identifier: MPL-2.0

// Package dlog provides the structured logger used across the dependency
// graph packages. Each subsystem gets its own named child logger so that
// log output can be filtered per component the way the rest of the host
// application filters its own subsystems.
package dlog

import (
	"os"
	"sync"

	"github.com/hashicorp/go-hclog"
)

var root = sync.OnceValue(func() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:       "dgraph",
		Level:      hclog.LevelFromString(os.Getenv("DGRAPH_LOG")),
		Output:     os.Stderr,
		JSONFormat: os.Getenv("DGRAPH_LOG_JSON") != "",
	})
})

// Named returns a child of the package-wide root logger scoped to a single
// subsystem, e.g. dlog.Named("builder") or dlog.Named("flush").
func Named(subsystem string) hclog.Logger {
	return root().Named(subsystem)
}

// SetOutput is used by tests that want to assert on emitted log lines
// instead of hitting stderr.
func SetOutput(l hclog.Logger) {
	root = sync.OnceValue(func() hclog.Logger { return l })
}
