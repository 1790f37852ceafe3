/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package hackload

import (
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
)

// handleShutdownSignal stops the test on SIGINT/SIGTERM, results collected so far are reported
func (r *Runner) handleShutdownSignal() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-r.TimeoutCtx.Done():
			return
		case <-sigs:
			r.L.Infof("exit signal received, exiting")
			if r.Cfg.GoroutinesDump {
				buf := make([]byte, 1<<20)
				stacklen := runtime.Stack(buf, true)
				r.L.Infof("=== received SIGTERM ===\n*** goroutine dump...\n%s\n*** end\n", buf[:stacklen])
			}
			r.CancelFunc()
		}
	}()
}

func CreateFileOrReplace(fname string) (*os.File, error) {
	fpath, err := filepath.Abs(fname)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(fpath), 0755); err != nil {
		return nil, err
	}
	return os.Create(fpath)
}

func MaxRPS(array []float64) float64 {
	if len(array) == 0 {
		return 0
	}
	var max = array[0]
	for _, value := range array {
		if max < value {
			max = value
		}
	}
	return max
}
