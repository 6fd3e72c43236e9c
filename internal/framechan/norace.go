// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !race

package framechan

type raceLock struct{}

func (raceLock) Lock()   {}
func (raceLock) Unlock() {}
