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

// Command dispatchd serves a configured route table over HTTP or CGI.
//
//	dispatchd -config dispatchd.yaml
//	DISPATCH_SERVER__ADDR=:9000 dispatchd -config dispatchd.yaml
//	dispatchd -config dispatchd.yaml -routes
//
// Settings come from the optional YAML, JSON or TOML file, then from
// DISPATCH_ environment variables. A .env file is loaded into the
// environment first when present.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Perritu/Router/app"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "dispatchd: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	flags := flag.NewFlagSet("dispatchd", flag.ContinueOnError)
	configPath := flags.String("config", "", "settings file (yaml, json or toml)")
	envFile := flags.String("env-file", ".env", "dotenv file loaded before reading DISPATCH_ variables")
	printRoutes := flags.Bool("routes", false, "print the route table and exit")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if err := loadEnvFile(*envFile); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := app.LoadSettings(ctx, *configPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	opts := []app.Option{app.WithRegistry(demoRegistry())}
	if *printRoutes {
		opts = append(opts, app.WithBannerOutput(io.Discard), app.WithLogOutput(io.Discard))
	} else {
		opts = append(opts, app.WithBannerOutput(stdout))
	}
	if s.Server.Mode == app.ModeCGI {
		// stdout carries the CGI response.
		opts = append(opts, app.WithBannerOutput(io.Discard), app.WithLogOutput(os.Stderr))
	}

	a, err := app.New(s, opts...)
	if err != nil {
		return err
	}

	if *printRoutes {
		a.PrintRoutes(stdout)
		return a.Shutdown(ctx)
	}
	return a.Run(ctx)
}

// loadEnvFile loads path into the process environment. A missing file is not
// an error; variables already set are kept.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
