// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Perritu/Router/config"
	"github.com/Perritu/Router/logging"
	"github.com/Perritu/Router/metrics"
	"github.com/Perritu/Router/router"
	"github.com/Perritu/Router/router/criteria"
	"github.com/Perritu/Router/router/handler"
	"github.com/Perritu/Router/tracing"
)

// EnvPrefix is the prefix of environment variables overriding settings.
// DISPATCH_SERVER__ADDR sets server.addr.
const EnvPrefix = "DISPATCH_"

// Server modes.
const (
	ModeHTTP = "http"
	ModeCGI  = "cgi"
)

// Error formats.
const (
	FormatSimple  = "simple"
	FormatRFC9457 = "rfc9457"
)

// Settings is the application configuration.
type Settings struct {
	Router  RouterSettings  `config:"router"`
	Log     LogSettings     `config:"log"`
	Service ServiceSettings `config:"service"`
	Server  ServerSettings  `config:"server"`
	Metrics MetricsSettings `config:"metrics"`
	Tracing TracingSettings `config:"tracing"`
	Routes  []RouteSpec     `config:"routes" validate:"dive"`
	Mounts  []MountSpec     `config:"mounts" validate:"dive"`
}

// RouterSettings configures the dispatch engine.
type RouterSettings struct {
	CriteriaPrefix string `config:"criteria_prefix"`
	HandlerPrefix  string `config:"handler_prefix"`
	DefaultMode    string `config:"default_mode" default:"literal_i"`
	CacheSize      int    `config:"cache_size" default:"256" validate:"gte=0"`
}

// LogSettings configures the logger.
type LogSettings struct {
	Level  string `config:"level" default:"info"`
	Format string `config:"format" default:"json" validate:"oneof=json text console"`
}

// ServiceSettings identifies the running service.
type ServiceSettings struct {
	Name        string `config:"name" default:"dispatchd"`
	Version     string `config:"version" default:"dev"`
	Environment string `config:"environment" default:"development" validate:"oneof=development production"`
}

// ServerSettings configures the HTTP listener.
type ServerSettings struct {
	Addr            string        `config:"addr" default:":8080"`
	Mode            string        `config:"mode" default:"http" validate:"oneof=http cgi"`
	ReadTimeout     time.Duration `config:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `config:"write_timeout" default:"10s"`
	IdleTimeout     time.Duration `config:"idle_timeout" default:"60s"`
	ShutdownTimeout time.Duration `config:"shutdown_timeout" default:"15s"`
	ErrorFormat     string        `config:"error_format" default:"rfc9457" validate:"oneof=simple rfc9457"`
	ProblemBaseURL  string        `config:"problem_base_url"`
}

// MetricsSettings configures dispatch metrics.
type MetricsSettings struct {
	Enabled  bool   `config:"enabled"`
	Path     string `config:"path" default:"/metrics" validate:"startswith=/"`
	Provider string `config:"provider" default:"prometheus"`
	Endpoint string `config:"endpoint"`
}

// TracingSettings configures dispatch tracing. A SampleRate of zero is
// replaced by its default; disable tracing instead.
type TracingSettings struct {
	Enabled    bool    `config:"enabled"`
	Exporter   string  `config:"exporter" default:"stdout"`
	Endpoint   string  `config:"endpoint"`
	Insecure   bool    `config:"insecure"`
	SampleRate float64 `config:"sample_rate" default:"1" validate:"gte=0,lte=1"`
}

// RouteSpec is a route declared in configuration.
//
//	routes:
//	  - methods: GET|HEAD
//	    criteria: ^/users/([0-9]+)$
//	    mode: regex
//	    handler: Users@show
type RouteSpec struct {
	// Methods is a "|" separated verb list. Empty means ANY.
	Methods  string `config:"methods"`
	Criteria string `config:"criteria" validate:"required"`
	// Mode is a criteria mode name. Empty selects router.default_mode.
	Mode    string `config:"mode"`
	Handler string `config:"handler" validate:"required"`
	// Terminate defaults to true.
	Terminate *bool `config:"terminate"`
}

// MountSpec is a namespace mount declared in configuration.
type MountSpec struct {
	Namespace string `config:"namespace" validate:"required"`
	Point     string `config:"point" validate:"required,startswith=/"`
	Methods   string `config:"methods"`
	Terminate *bool  `config:"terminate"`
}

// Validate checks the values the struct tags cannot express.
func (s *Settings) Validate() error {
	var errs []error
	if _, err := criteria.ParseMode(s.Router.DefaultMode); err != nil {
		errs = append(errs, fmt.Errorf("router.default_mode: %w", err))
	}
	if _, err := logging.ParseLevel(s.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if _, err := metrics.ParseProvider(s.Metrics.Provider); err != nil {
		errs = append(errs, fmt.Errorf("metrics.provider: %w", err))
	}
	if _, err := tracing.ParseProvider(s.Tracing.Exporter); err != nil {
		errs = append(errs, fmt.Errorf("tracing.exporter: %w", err))
	}
	for i, rs := range s.Routes {
		if _, err := rs.route(criteria.ModeLiteralFold); err != nil {
			errs = append(errs, fmt.Errorf("routes[%d]: %w", i, err))
		}
	}
	for i, ms := range s.Mounts {
		if _, err := ms.route(); err != nil {
			errs = append(errs, fmt.Errorf("mounts[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// LoadSettings reads settings from path (optional) and from DISPATCH_
// environment variables, which take precedence.
func LoadSettings(ctx context.Context, path string) (*Settings, error) {
	var s Settings
	opts := []config.Option{config.WithBinding(&s)}
	if path != "" {
		opts = append(opts, config.WithFile(path))
	}
	opts = append(opts, config.WithEnv(EnvPrefix))

	cfg, err := config.New(opts...)
	if err != nil {
		return nil, err
	}
	if err = cfg.Load(ctx); err != nil {
		return nil, err
	}
	return &s, nil
}

// DefaultSettings returns settings with every default applied and no routes.
func DefaultSettings() *Settings {
	var s Settings
	cfg := config.MustNew(config.WithBinding(&s))
	cfg.MustLoad(context.Background())
	return &s
}

func (rs RouteSpec) route(defaultMode criteria.Mode) (router.Route, error) {
	mask, err := parseMethods(rs.Methods)
	if err != nil {
		return router.Route{}, err
	}
	mode := defaultMode
	if rs.Mode != "" {
		if mode, err = criteria.ParseMode(rs.Mode); err != nil {
			return router.Route{}, err
		}
	}
	ref, err := handler.Parse(rs.Handler)
	if err != nil {
		return router.Route{}, err
	}
	return router.Route{
		Methods:   mask,
		Pattern:   rs.Criteria,
		Mode:      mode,
		Handler:   ref,
		Terminate: boolOr(rs.Terminate, true),
	}, nil
}

func (ms MountSpec) route() (router.Route, error) {
	mask, err := parseMethods(ms.Methods)
	if err != nil {
		return router.Route{}, err
	}
	return router.Route{
		Methods:   mask,
		Pattern:   ms.Point,
		Namespace: ms.Namespace,
		Terminate: boolOr(ms.Terminate, true),
	}, nil
}

func parseMethods(s string) (router.MethodMask, error) {
	if s == "" {
		return router.MethodAny, nil
	}
	return router.ParseMethodMask(s)
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
