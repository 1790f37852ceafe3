package hackload

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// User must be implemented by every simulated user class.
type User interface {
	// Setup prepares user state, it may want to access the Config of the Runner.
	Setup(c RunnerConfig) error
	// OnStart is called once before the first task.
	OnStart(ctx context.Context)
	// Behavior returns tasks and wait interval, called once after Setup
	Behavior() Behavior
	// Teardown is called when user stops
	Teardown() error
	// Clone should return a fresh new User
	Clone(r *Runner, id int) User
}

// runUser loops wait-then-act until the test ends
func (r *Runner) runUser(u User, class string, id int) {
	defer r.wg.Done()
	l := r.L.With("user", id, "class", class)
	defer func() {
		if err := u.Teardown(); err != nil {
			l.Errorf("teardown failed: %s", err)
		}
	}()
	b := u.Behavior()
	sel, err := NewTaskSelector(b.Tasks)
	if err != nil {
		l.Errorf("bad behavior: %s", err)
		return
	}
	rnd := NewRand()
	u.OnStart(r.TimeoutCtx)
	timer := time.NewTimer(b.Wait(rnd))
	defer timer.Stop()
	for {
		select {
		case <-r.TimeoutCtx.Done():
			l.Debugf("stopping user")
			return
		case <-timer.C:
			task := sel.Pick(rnd)
			l.Debugf("executing %s", task.Name)
			res, ok := r.execute(task, class)
			if ok {
				r.results <- res
			}
			timer.Reset(b.Wait(rnd))
		}
	}
}

// execute runs task with request timeout, results of tasks interrupted by test end are dropped
func (r *Runner) execute(task WeightedTask, class string) (TaskResult, bool) {
	ctx, cancel := context.WithTimeout(r.TimeoutCtx, time.Duration(r.Cfg.RequestTimeoutSec)*time.Second)
	defer cancel()

	tStart := time.Now()
	doResult := task.Fn(ctx)
	tEnd := time.Now()
	if r.testEnded(tEnd) {
		return TaskResult{}, false
	}
	if doResult.RequestLabel == "" {
		doResult.RequestLabel = task.Name
	}
	return TaskResult{
		UserClass: class,
		Tick:      r.tickOf(tEnd),
		Begin:     tStart,
		End:       tEnd,
		Elapsed:   tEnd.Sub(tStart),
		DoResult:  doResult,
	}, true
}

// testEnded reports whether t is at or after the test deadline,
// the deadline may already be passed while TimeoutCtx is not yet done
func (r *Runner) testEnded(t time.Time) bool {
	if r.TimeoutCtx.Err() != nil {
		return true
	}
	deadline, ok := r.TimeoutCtx.Deadline()
	return ok && !t.Before(deadline)
}

// Send performs request and classifies the response
func (r *Runner) Send(ctx context.Context, label string, req *Request, classify Classifier) DoResult {
	res, err := r.Client.Do(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return DoResult{RequestLabel: label, Error: errTaskTimedOut, BytesOut: int64(len(req.Body))}
		}
		return DoResult{RequestLabel: label, Error: err.Error(), BytesOut: int64(len(req.Body))}
	}
	doResult := DoResult{
		RequestLabel: label,
		StatusCode:   res.StatusCode,
		BytesIn:      res.BytesIn,
		BytesOut:     res.BytesOut,
	}
	if outcome := classify(res.StatusCode); !outcome.Success {
		doResult.Error = outcome.Reason
	}
	return doResult
}
