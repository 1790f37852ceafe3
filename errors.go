/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package hackload

import (
	"github.com/pkg/errors"
)

var (
	errTaskTimedOut      = "task timeout"
	errStatusCode        = "Got status code: %d"
	errUserSetup         = errors.New("error when setup user")
	errNoTasks           = errors.New("behavior has no tasks")
	errNonPositiveWeight = errors.New("weight must be > 0")
	errUnknownClient     = errors.New("unknown client, use http or fasthttp")
	errUnknownUser       = errors.New("unknown user class")
	errEmptyUserMix      = errors.New("user mix has no positive weights")
)
