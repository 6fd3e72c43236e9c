// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSetStatus(t *testing.T) {
	SessionStatus.Reset()
	StatusTransitions.Reset()

	SetStatus("openxr", "Ready", 3)
	SetStatus("openxr", "Running", 4)
	SetStatus("openxr", "Running", 4)

	if got := testutil.ToFloat64(SessionStatus.WithLabelValues("openxr")); got != 4 {
		t.Errorf("SessionStatus = %v, want 4", got)
	}
	if got := testutil.ToFloat64(StatusTransitions.WithLabelValues("openxr", "Running")); got != 2 {
		t.Errorf("StatusTransitions[Running] = %v, want 2", got)
	}
}

func TestRecordSessionCreated(t *testing.T) {
	SessionsCreated.Reset()

	RecordSessionCreated("openxr", nil)
	RecordSessionCreated("openxr", errors.New("no format"))

	if got := testutil.ToFloat64(SessionsCreated.WithLabelValues("openxr", "ok")); got != 1 {
		t.Errorf("SessionsCreated[ok] = %v, want 1", got)
	}
	if got := testutil.ToFloat64(SessionsCreated.WithLabelValues("openxr", "error")); got != 1 {
		t.Errorf("SessionsCreated[error] = %v, want 1", got)
	}
}

func TestRecordFrame(t *testing.T) {
	Frames.Reset()
	FrameWait.Reset()

	RecordFrame("openxr", FrameSubmitted)
	RecordFrame("openxr", FrameSkipped)
	RecordFrame("openxr", FrameSubmitted)
	ObserveFrameWait("openxr", 0.011)

	if got := testutil.ToFloat64(Frames.WithLabelValues("openxr", FrameSubmitted)); got != 2 {
		t.Errorf("Frames[submitted] = %v, want 2", got)
	}
	if n := testutil.CollectAndCount(FrameWait); n == 0 {
		t.Error("FrameWait has no observations")
	}
}
