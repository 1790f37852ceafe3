/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package hackload

import (
	"context"
	"sync/atomic"
	"time"
)

// controlled values shared by all mock users of a test
type controlled struct {
	// Sleep task latency, ms
	Sleep int64
	// Fail makes every task fail
	Fail int32
	// Started amount of OnStart calls
	Started int64
}

// ControlUserMock user whose latency and failures are controlled by test
type ControlUserMock struct {
	*Runner
	id   int
	ctrl *controlled
	wait WaitRange
}

func newControlUserMock(ctrl *controlled, wait WaitRange) *ControlUserMock {
	return &ControlUserMock{ctrl: ctrl, wait: wait}
}

func (a *ControlUserMock) Clone(r *Runner, id int) User {
	return &ControlUserMock{Runner: r, id: id, ctrl: a.ctrl, wait: a.wait}
}

func (a *ControlUserMock) Setup(c RunnerConfig) error {
	return nil
}

func (a *ControlUserMock) OnStart(_ context.Context) {
	atomic.AddInt64(&a.ctrl.Started, 1)
}

func (a *ControlUserMock) Behavior() Behavior {
	return Behavior{Tasks: []WeightedTask{
		{Name: "mock_fast", Weight: 3, Fn: a.do},
		{Name: "mock_slow", Weight: 1, Fn: a.do},
	}}.WithWait(a.wait)
}

func (a *ControlUserMock) do(ctx context.Context) DoResult {
	if atomic.LoadInt32(&a.ctrl.Fail) == 1 {
		return DoResult{Error: "service error", StatusCode: 500}
	}
	sleep := time.Duration(atomic.LoadInt64(&a.ctrl.Sleep)) * time.Millisecond
	select {
	case <-time.After(sleep):
		return DoResult{StatusCode: 200}
	case <-ctx.Done():
		return DoResult{Error: errTaskTimedOut}
	}
}

func (a *ControlUserMock) Teardown() error {
	return nil
}

func failAfter(ctrl *controlled, t time.Duration) {
	go func() {
		time.Sleep(t)
		atomic.StoreInt32(&ctrl.Fail, 1)
	}()
}
