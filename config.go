/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package hackload

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	HTTPClientName     = "http"
	FastHTTPClientName = "fasthttp"

	DefaultAdminToken     = "hacman@1"
	DefaultPrometheusPort = 2112
)

// RunnerConfig runner configuration
type RunnerConfig struct {
	// TargetUrl target base url
	TargetUrl string `yaml:"target_url"`
	// Name of a runner instance
	Name string `yaml:"name"`
	// Users total amount of simulated users
	Users int `yaml:"users"`
	// SpawnRate users started per second
	SpawnRate int `yaml:"spawn_rate"`
	// UserMix relative weight of every registered user class
	UserMix map[string]int `yaml:"user_mix"`
	// Wait overrides wait interval of a user class
	Wait map[string]WaitRange `yaml:"wait"`
	// RequestTimeoutSec timeout of one request
	RequestTimeoutSec int `yaml:"request_timeout_sec"`
	// TestTimeSec test timeout
	TestTimeSec int `yaml:"test_time_sec"`
	// WaitBeforeSec time to wait before start in case we didn't know start criteria
	WaitBeforeSec int `yaml:"wait_before_sec"`
	// SuccessRatio lowest acceptable success ratio of a tick
	SuccessRatio float64 `yaml:"success_ratio"`
	// FailOnLowSuccess stops the test when tick success ratio < SuccessRatio
	FailOnLowSuccess bool `yaml:"fail_on_low_success"`
	// Client http|fasthttp
	Client string `yaml:"client"`
	// AdminToken bearer token used by admin users
	AdminToken string `yaml:"admin_token"`
	// DumpTransport dump http requests to stdout
	DumpTransport bool `yaml:"dump_transport"`
	// GoroutinesDump dumps goroutines on exit signal
	GoroutinesDump bool `yaml:"goroutines_dump"`
	// LogLevel debug|info, etc.
	LogLevel string `yaml:"log_level"`
	// LogEncoding json|console
	LogEncoding   string         `yaml:"log_encoding"`
	ReportOptions *ReportOptions `yaml:"report"`
	Prometheus    *Prometheus    `yaml:"prometheus"`
}

// WaitRange wait interval between two tasks of a user, ms
type WaitRange struct {
	MinMs int `yaml:"min_ms"`
	MaxMs int `yaml:"max_ms"`
}

type ReportOptions struct {
	// Dir directory for report files
	Dir string `yaml:"dir"`
	// CSV writes requests and percentiles logs
	CSV bool `yaml:"csv"`
	// HTML renders percentiles chart, requires CSV
	HTML bool `yaml:"html"`
}

type Prometheus struct {
	Enable bool `yaml:"enable"`
	Port   int  `yaml:"port"`
}

// Validate checks all settings and returns a list of strings with problems.
func (c RunnerConfig) Validate() (list []string) {
	if c.TargetUrl == "" {
		list = append(list, "please set target url")
	}
	if c.Users <= 0 {
		list = append(list, "please set users > 0")
	}
	if c.SpawnRate < 0 {
		list = append(list, "please set spawn rate >= 0, users per second")
	}
	if c.TestTimeSec <= 0 {
		list = append(list, "please set test time > 0, seconds")
	}
	if c.RequestTimeoutSec < 0 {
		list = append(list, "please set request timeout >= 0, seconds")
	}
	if c.SuccessRatio < 0 || c.SuccessRatio > 1 {
		list = append(list, "please set success ratio in [0, 1]")
	}
	if c.Client != "" && c.Client != HTTPClientName && c.Client != FastHTTPClientName {
		list = append(list, "please set client to http or fasthttp")
	}
	for class, w := range c.UserMix {
		if w < 0 {
			list = append(list, "please set user mix weight >= 0 for "+class)
		}
	}
	for class, w := range c.Wait {
		if w.MinMs < 0 || w.MaxMs < w.MinMs {
			list = append(list, "please set 0 <= min_ms <= max_ms for wait of "+class)
		}
	}
	if c.ReportOptions != nil && c.ReportOptions.HTML && !c.ReportOptions.CSV {
		list = append(list, "html report requires csv report")
	}
	return
}

// DefaultCfgValues fills zero values with defaults
func (c *RunnerConfig) DefaultCfgValues() {
	if c.Name == "" {
		c.Name = "hackload"
	}
	if c.SpawnRate == 0 {
		c.SpawnRate = 1
	}
	if c.RequestTimeoutSec == 0 {
		c.RequestTimeoutSec = 30
	}
	if len(c.UserMix) == 0 {
		c.UserMix = map[string]int{StandardUserClass: 1, AdminUserClass: 1}
	}
	if c.Client == "" {
		c.Client = HTTPClientName
	}
	if c.AdminToken == "" {
		c.AdminToken = DefaultAdminToken
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogEncoding == "" {
		c.LogEncoding = "console"
	}
	if c.ReportOptions == nil {
		c.ReportOptions = &ReportOptions{}
	}
	if c.ReportOptions.Dir == "" {
		c.ReportOptions.Dir = "."
	}
	if c.Prometheus != nil && c.Prometheus.Port == 0 {
		c.Prometheus.Port = DefaultPrometheusPort
	}
}

// LoadConfig reads runner config from yaml file
func LoadConfig(path string) (*RunnerConfig, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config %s", path)
	}
	var cfg RunnerConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config %s", path)
	}
	return &cfg, nil
}
