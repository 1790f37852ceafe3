/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package hackload

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/ratelimit"
)

const (
	DefaultResultsQueueCapacity = 100_000
	MetricsLogFile              = "requests_%s_%s_%d.csv"
	PercsLogFile                = "percs_%s_%s_%d.csv"
	ReportGraphFile             = "percs_%s_%s_%d.html"
)

var (
	ResultsCsvHeader = []string{"RequestLabel", "BeginTimeNano", "EndTimeNano", "Elapsed", "StatusCode", "Error"}
	PercsCsvHeader   = []string{"RunName", "Tick", "RPS", "P50", "P95", "P99"}
)

type TickMetrics struct {
	Samples  []TaskResult
	Metrics  *Metrics
	Reported bool
}

// Runner spawns simulated users and collects results of their tasks
type Runner struct {
	// Name of a runner
	Name string
	// RunID unique id of a run, used in report file names
	RunID string
	// Cfg runner config
	Cfg *RunnerConfig
	// prototypes from which users are cloned, by class name
	prototypes map[string]User
	// classes with positive weight in user mix, sorted
	classes []string
	// classTable user mix weights for classes
	classTable weightTable
	// spawnLimiter keeps users spawn rate
	spawnLimiter ratelimit.Limiter
	// TimeoutCtx test timeout ctx
	TimeoutCtx context.Context
	// test cancel func
	CancelFunc context.CancelFunc
	// started test start time, ticks are counted from it
	started time.Time
	// spawned users
	spawnedUsers int64
	wg          sync.WaitGroup
	spawnDone   chan struct{}
	collectDone chan struct{}

	results chan TaskResult
	// metrics for every tick, touched only by collector
	tickMetrics map[int]*TickMetrics
	// totals by task label
	taskMetrics map[string]*Metrics
	total       *Metrics
	// uniq error messages
	uniqErrors map[string]int
	// lateResults received after their tick was reported
	lateResults int
	// Failed means tick success ratio fell below configured one
	Failed int64

	Report       *Report
	PromReporter *PromReporter
	Client       Requester
	L            *Logger
}

// NewRunner creates new runner, users are prototypes by class name, see RegisteredUsers
func NewRunner(cfg *RunnerConfig, users map[string]User) (*Runner, error) {
	cfg.DefaultCfgValues()
	if problems := cfg.Validate(); len(problems) > 0 {
		return nil, errors.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	classes := make([]string, 0, len(cfg.UserMix))
	for class, w := range cfg.UserMix {
		if w <= 0 {
			continue
		}
		if _, ok := users[class]; !ok {
			return nil, errors.Wrapf(errUnknownUser, "user mix class %s", class)
		}
		classes = append(classes, class)
	}
	if len(classes) == 0 {
		return nil, errEmptyUserMix
	}
	sort.Strings(classes)
	weights := make([]int, 0, len(classes))
	for _, class := range classes {
		weights = append(weights, cfg.UserMix[class])
	}
	classTable, err := newWeightTable(weights)
	if err != nil {
		return nil, err
	}
	client, err := NewRequester(cfg)
	if err != nil {
		return nil, err
	}
	return &Runner{
		Name:         cfg.Name,
		RunID:        uuid.New().String(),
		Cfg:          cfg,
		prototypes:   users,
		classes:      classes,
		classTable:   classTable,
		spawnLimiter: ratelimit.New(cfg.SpawnRate),
		spawnDone:    make(chan struct{}),
		collectDone:  make(chan struct{}),
		results:      make(chan TaskResult, DefaultResultsQueueCapacity),
		tickMetrics:  make(map[int]*TickMetrics),
		taskMetrics:  make(map[string]*Metrics),
		total:        NewMetrics(),
		uniqErrors:   make(map[string]int),
		Client:       client,
		L:            NewLogger(cfg).With("runner", cfg.Name),
	}, nil
}

// Run runs the test until TestTimeSec passed, ctx is cancelled or exit signal received
func (r *Runner) Run(serverCtx context.Context) (*Summary, error) {
	if r.Cfg.WaitBeforeSec > 0 {
		r.L.Infof("waiting for %d seconds before start", r.Cfg.WaitBeforeSec)
		time.Sleep(time.Duration(r.Cfg.WaitBeforeSec) * time.Second)
	}
	if serverCtx == nil {
		serverCtx = context.Background()
	}
	if r.Cfg.ReportOptions.CSV {
		report, err := NewReport(r.Cfg, r.RunID, r.L)
		if err != nil {
			return nil, err
		}
		r.Report = report
	}
	if r.Cfg.Prometheus != nil && r.Cfg.Prometheus.Enable {
		r.PromReporter = NewPromReporter(r.Cfg.Prometheus.Port, r.L)
		defer r.PromReporter.shutdown()
	}
	r.L.Infof("runner started, run id: %s, users: %d, spawn rate: %d", r.RunID, r.Cfg.Users, r.Cfg.SpawnRate)
	r.started = time.Now()
	r.TimeoutCtx, r.CancelFunc = context.WithTimeout(serverCtx, time.Duration(r.Cfg.TestTimeSec)*time.Second)
	defer r.CancelFunc()

	r.handleShutdownSignal()
	go r.collectResults()
	go r.spawnUsers()

	<-r.TimeoutCtx.Done()
	<-r.spawnDone
	r.wg.Wait()
	close(r.results)
	<-r.collectDone
	r.L.Infof("runner exited")

	if r.Report != nil {
		r.Report.flushLogs()
		r.Report.plot()
	}
	s := r.summary()
	r.L.Infof("max rps: %.2f", s.MaxRPS)
	return s, nil
}

// spawnUsers starts users one by one with spawn rate, user class is chosen by user mix weights
func (r *Runner) spawnUsers() {
	defer close(r.spawnDone)
	rnd := NewRand()
	for i := 0; i < r.Cfg.Users; i++ {
		r.spawnLimiter.Take()
		if r.TimeoutCtx.Err() != nil {
			return
		}
		class := r.classes[r.classTable.pick(rnd)]
		u := r.prototypes[class].Clone(r, i)
		if err := u.Setup(*r.Cfg); err != nil {
			r.L.Errorf("%s: user %d: %s", errUserSetup, i, err)
			continue
		}
		r.wg.Add(1)
		active := atomic.AddInt64(&r.spawnedUsers, 1)
		if r.PromReporter != nil {
			r.PromReporter.setSpawnedUsers(int(active))
		}
		go r.runUser(u, class, i)
	}
	r.L.Infof("all users spawned: %d", atomic.LoadInt64(&r.spawnedUsers))
}

// tickOf second of the test, starting from 1
func (r *Runner) tickOf(t time.Time) int {
	return int(t.Sub(r.started)/time.Second) + 1
}

// collectResults aggregates results until results chan is closed, ticks are reported when second passes
func (r *Runner) collectResults() {
	defer close(r.collectDone)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case res, ok := <-r.results:
			if !ok {
				r.reportTicks(math.MaxInt32)
				if r.lateResults > 0 {
					r.L.Infof("results not included in tick metrics: %d", r.lateResults)
				}
				r.printErrors()
				return
			}
			r.processResult(res)
		case now := <-ticker.C:
			r.reportTicks(r.tickOf(now))
		}
	}
}

func (r *Runner) processResult(res TaskResult) {
	r.L.Debugf("received result: %v", res)
	errorForReport := "ok"
	if res.DoResult.Error != "" {
		r.uniqErrors[res.DoResult.Error]++
		r.L.Debugf("task error: %s", res.DoResult.Error)
		errorForReport = res.DoResult.Error
	}
	if r.Report != nil {
		r.Report.writeResultEntry(res, errorForReport)
	}
	if r.PromReporter != nil {
		r.PromReporter.reportResult(res)
	}
	label := res.DoResult.RequestLabel
	if _, ok := r.taskMetrics[label]; !ok {
		r.taskMetrics[label] = NewMetrics()
	}
	r.taskMetrics[label].add(res)
	r.total.add(res)

	tm, ok := r.tickMetrics[res.Tick]
	if !ok {
		tm = &TickMetrics{
			Samples: make([]TaskResult, 0),
			Metrics: NewMetrics(),
		}
		r.tickMetrics[res.Tick] = tm
	}
	if tm.Reported {
		// counted in totals only
		r.lateResults++
		r.L.Debugf("result of tick %d received after the tick was reported", res.Tick)
		return
	}
	tm.Samples = append(tm.Samples, res)
	tm.Metrics.add(res)
}

// reportTicks reports every not yet reported tick before given one
func (r *Runner) reportTicks(before int) {
	ticks := make([]int, 0)
	for tick, tm := range r.tickMetrics {
		if tick < before && !tm.Reported {
			ticks = append(ticks, tick)
		}
	}
	sort.Ints(ticks)
	for _, tick := range ticks {
		r.reportTick(tick, r.tickMetrics[tick])
	}
}

func (r *Runner) reportTick(tick int, tm *TickMetrics) {
	tm.Metrics.update()
	// tick lasts one second
	tm.Metrics.Rate = float64(tm.Metrics.Requests)
	r.L.Infof(
		"tick: %d, rate [%.2f], perc: 50 [%v] 95 [%v] 99 [%v], # requests [%d], %% success [%.2f], # users [%d]",
		tick,
		tm.Metrics.Rate,
		tm.Metrics.Latencies.P50,
		tm.Metrics.Latencies.P95,
		tm.Metrics.Latencies.P99,
		tm.Metrics.Requests,
		tm.Metrics.successLogEntry(),
		atomic.LoadInt64(&r.spawnedUsers),
	)
	if r.Report != nil {
		r.Report.writePercentilesEntry(tick, tm.Metrics)
	}
	if r.PromReporter != nil {
		r.PromReporter.reportTick(tm)
	}
	if r.Cfg.FailOnLowSuccess && tm.Metrics.Success < r.Cfg.SuccessRatio {
		r.L.Infof("success ratio %.2f < %.2f, stopping test", tm.Metrics.Success, r.Cfg.SuccessRatio)
		atomic.AddInt64(&r.Failed, 1)
		r.CancelFunc()
	}
	// samples are not needed after tick is reported
	tm.Samples = nil
	tm.Reported = true
}

// printErrors print uniq errors
func (r *Runner) printErrors() {
	r.L.Infof("Uniq errors:")
	for e, count := range r.uniqErrors {
		r.L.Infof("error: %s, count: %d", e, count)
	}
}

// maxRPS calculate max rps for test among ticks
func (r *Runner) maxRPS() float64 {
	rates := make([]float64, 0, len(r.tickMetrics))
	for _, m := range r.tickMetrics {
		rates = append(rates, m.Metrics.Rate)
	}
	return MaxRPS(rates)
}
