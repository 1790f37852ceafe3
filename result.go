/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package hackload

import (
	"fmt"
	"time"
)

// TaskResult one executed task with timings
type TaskResult struct {
	// UserClass class of user which executed the task
	UserClass string
	// Tick second of the test in which task started, starts from 1
	Tick       int
	Begin, End time.Time
	Elapsed    time.Duration
	DoResult   DoResult
}

func (a TaskResult) String() string {
	return fmt.Sprintf(
		"Begin: %s, End: %s, Elapsed: %s, user: %s, tick: %d, doResult: %v",
		a.Begin.Format(time.RFC3339),
		a.End.Format(time.RFC3339),
		a.Elapsed,
		a.UserClass,
		a.Tick,
		a.DoResult,
	)
}

// DoResult is the return value of a task call.
type DoResult struct {
	// Label identifying the task which is used for reporting the Metrics.
	RequestLabel string
	// Error is empty when request succeeded, otherwise transport error or classification reason.
	Error string
	// The HTTP status code, 0 when no response was received.
	StatusCode int
	// Number of bytes received in response body.
	BytesIn int64
	// Number of bytes sent in request body.
	BytesOut int64
}

func (d DoResult) Success() bool {
	return d.Error == ""
}
