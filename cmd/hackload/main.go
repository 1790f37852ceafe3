/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package main

import (
	"context"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/insolar/hackload"
)

var errRunFailed = errors.New("run failed: success ratio is too low")

type flags struct {
	config       string
	host         string
	users        int
	spawnRate    int
	runTime      int
	client       string
	csv          bool
	html         bool
	reportDir    string
	prometheus   bool
	successRatio float64
	logLevel     string
	dump         bool
}

func (f *flags) bind(fs *pflag.FlagSet) {
	fs.StringVarP(&f.config, "config", "c", "", "yaml config file, flags override it")
	fs.StringVarP(&f.host, "host", "H", "", "target base url, e.g. http://localhost:3000")
	fs.IntVarP(&f.users, "users", "u", 10, "number of simulated users")
	fs.IntVarP(&f.spawnRate, "spawn-rate", "r", 1, "users started per second")
	fs.IntVarP(&f.runTime, "run-time", "t", 60, "test duration, seconds")
	fs.StringVar(&f.client, "client", hackload.HTTPClientName, "http client: http|fasthttp")
	fs.BoolVar(&f.csv, "csv", false, "write requests and percentiles csv logs")
	fs.BoolVar(&f.html, "html", false, "render percentiles html chart, implies --csv")
	fs.StringVar(&f.reportDir, "report-dir", ".", "directory for report files")
	fs.BoolVar(&f.prometheus, "prometheus", false, "serve prometheus metrics on :2112/metrics")
	fs.Float64Var(&f.successRatio, "success-ratio", 0, "stop the test when tick success ratio falls below it")
	fs.StringVar(&f.logLevel, "log-level", "info", "log level: debug|info|warn|error")
	fs.BoolVar(&f.dump, "dump", false, "dump http requests and responses")
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "hackload",
		Short: "Load test of the hackathon registration site",
		Long: `hackload spawns standard and admin users which browse the hackathon
registration site, submit registrations and contact forms and query admin api.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, f)
			if err != nil {
				return err
			}
			r, err := hackload.NewRunner(cfg, hackload.RegisteredUsers())
			if err != nil {
				return err
			}
			summary, err := r.Run(cmd.Context())
			if err != nil {
				return err
			}
			hackload.PrintSummary(cmd.OutOrStdout(), summary)
			if summary.Failed {
				return errRunFailed
			}
			return nil
		},
	}
	f.bind(cmd.Flags())
	return cmd
}

// buildConfig loads config file if any and applies changed flags on top of it
func buildConfig(cmd *cobra.Command, f *flags) (*hackload.RunnerConfig, error) {
	cfg := &hackload.RunnerConfig{}
	if f.config != "" {
		var err error
		if cfg, err = hackload.LoadConfig(f.config); err != nil {
			return nil, err
		}
	}
	changed := cmd.Flags().Changed
	if changed("host") || cfg.TargetUrl == "" {
		cfg.TargetUrl = f.host
	}
	if changed("users") || cfg.Users == 0 {
		cfg.Users = f.users
	}
	if changed("spawn-rate") || cfg.SpawnRate == 0 {
		cfg.SpawnRate = f.spawnRate
	}
	if changed("run-time") || cfg.TestTimeSec == 0 {
		cfg.TestTimeSec = f.runTime
	}
	if changed("client") || cfg.Client == "" {
		cfg.Client = f.client
	}
	if changed("log-level") || cfg.LogLevel == "" {
		cfg.LogLevel = f.logLevel
	}
	if changed("dump") {
		cfg.DumpTransport = f.dump
	}
	if changed("success-ratio") {
		cfg.SuccessRatio = f.successRatio
		cfg.FailOnLowSuccess = f.successRatio > 0
	}
	if cfg.ReportOptions == nil {
		cfg.ReportOptions = &hackload.ReportOptions{}
	}
	if changed("csv") {
		cfg.ReportOptions.CSV = f.csv
	}
	if changed("html") {
		cfg.ReportOptions.HTML = f.html
		cfg.ReportOptions.CSV = cfg.ReportOptions.CSV || f.html
	}
	if changed("report-dir") || cfg.ReportOptions.Dir == "" {
		cfg.ReportOptions.Dir = f.reportDir
	}
	if changed("prometheus") {
		cfg.Prometheus = &hackload.Prometheus{Enable: f.prometheus}
	}
	cfg.DefaultCfgValues()
	if problems := cfg.Validate(); len(problems) > 0 {
		return nil, errors.New(strings.Join(problems, "; "))
	}
	return cfg, nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
