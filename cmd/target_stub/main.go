/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package main

import (
	"os"

	"github.com/insolar/hackload"
)

func main() {
	addr := os.Getenv("TARGET")
	if addr == "" {
		addr = "0.0.0.0:9031"
	}
	hackload.RunTargetStub(addr, hackload.StubOptions{AdminToken: os.Getenv("ADMIN_TOKEN")})
	select {}
}
