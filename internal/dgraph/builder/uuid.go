// Copyright (c) The Dune Authors
// SPDX-License-Identifier: MPL-2.0

package builder

import "github.com/google/uuid"

// newSessionUUID mints a fresh per-build-session identifier for an
// IdNode the builder has never seen before. It is carried forward across
// rebuilds so persistent keys remain
// stable even though pointers are not.
func newSessionUUID() string {
	return uuid.NewString()
}
