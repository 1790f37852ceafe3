/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package hackload

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Report struct {
	runId               string
	runName             string
	metricsLogFilename  string
	percsReportFilename string
	percLogFilename     string
	metricsFile         *os.File
	percFile            *os.File
	metricsLogFile      *csv.Writer
	percLogFile         *csv.Writer
	reportOptions       *ReportOptions
	L                   *Logger
}

func NewReport(cfg *RunnerConfig, runId string, l *Logger) (*Report, error) {
	tn := time.Now().Unix()
	dir := cfg.ReportOptions.Dir
	r := &Report{
		runId:               runId,
		runName:             cfg.Name,
		metricsLogFilename:  filepath.Join(dir, fmt.Sprintf(MetricsLogFile, cfg.Name, runId, tn)),
		percsReportFilename: filepath.Join(dir, fmt.Sprintf(ReportGraphFile, cfg.Name, runId, tn)),
		percLogFilename:     filepath.Join(dir, fmt.Sprintf(PercsLogFile, cfg.Name, runId, tn)),
		reportOptions:       cfg.ReportOptions,
		L:                   l.With("report", cfg.Name),
	}
	var err error
	if r.metricsFile, err = CreateFileOrReplace(r.metricsLogFilename); err != nil {
		return nil, err
	}
	if r.percFile, err = CreateFileOrReplace(r.percLogFilename); err != nil {
		r.metricsFile.Close()
		return nil, err
	}
	r.metricsLogFile = csv.NewWriter(r.metricsFile)
	r.percLogFile = csv.NewWriter(r.percFile)
	_ = r.metricsLogFile.Write(ResultsCsvHeader)
	_ = r.percLogFile.Write(PercsCsvHeader)
	return r, nil
}

func (r *Report) plot() {
	if !r.reportOptions.HTML {
		return
	}
	r.L.Infof("reporting graphs: %s", r.percsReportFilename)
	chart, err := PercsChart(r.percLogFilename, r.runName)
	if err != nil {
		r.L.Error(err)
		return
	}
	if err := RenderEChart(chart, r.percsReportFilename); err != nil {
		r.L.Error(err)
	}
}

func (r *Report) flushLogs() {
	r.percLogFile.Flush()
	r.metricsLogFile.Flush()
	if err := r.percFile.Close(); err != nil {
		r.L.Error(err)
	}
	if err := r.metricsFile.Close(); err != nil {
		r.L.Error(err)
	}
}

func (r *Report) writeResultEntry(res TaskResult, errorMsg string) {
	_ = r.metricsLogFile.Write([]string{
		res.DoResult.RequestLabel,
		strconv.FormatInt(res.Begin.UnixNano(), 10),
		strconv.FormatInt(res.End.UnixNano(), 10),
		res.Elapsed.String(),
		strconv.Itoa(res.DoResult.StatusCode),
		errorMsg,
	})
}

func (r *Report) writePercentilesEntry(tick int, tickMetrics *Metrics) {
	_ = r.percLogFile.Write([]string{
		r.runName,
		strconv.Itoa(tick),
		strconv.Itoa(int(tickMetrics.Rate)),
		strconv.Itoa(int(tickMetrics.Latencies.P50.Milliseconds())),
		strconv.Itoa(int(tickMetrics.Latencies.P95.Milliseconds())),
		strconv.Itoa(int(tickMetrics.Latencies.P99.Milliseconds())),
	})
}
