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

// Package codec converts configuration data between bytes and Go values.
//
// JSON, YAML (goccy/go-yaml) and TOML (BurntSushi/toml) are registered for
// both directions; the environment variable format decodes only. Custom
// formats are added with [Register]:
//
//	codec.Register("ini", iniCodec{})
//	decoder, err := codec.GetDecoder("ini")
package codec
