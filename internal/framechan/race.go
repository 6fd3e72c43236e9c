// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build race

package framechan

import "sync"

// raceLock serializes queue access in race builds. lfq publishes slots
// with assembly atomics the race detector cannot observe, so without it
// every handoff between producer and consumer is reported as a race.
type raceLock struct{ sync.Mutex }
