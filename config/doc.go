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

// Package config loads layered configuration from files, in-memory content
// and environment variables.
//
// Sources are read in the order they are given and deep-merged, later
// sources overriding earlier ones. The merged values can be read with typed
// getters using dot paths, validated with a JSON Schema and bound to a
// struct:
//
//	type Settings struct {
//		Addr string `config:"addr" default:":8080" validate:"required"`
//	}
//
//	var s Settings
//	cfg := config.MustNew(
//		config.WithFile("dispatchd.yaml"),
//		config.WithEnv("DISPATCH_"),
//		config.WithBinding(&s),
//	)
//	if err := cfg.Load(ctx); err != nil {
//		return err
//	}
//
// Environment variable names use a double underscore between levels, so
// DISPATCH_SERVER__ADDR sets server.addr.
package config
