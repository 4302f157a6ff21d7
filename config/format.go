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

package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Perritu/Router/config/codec"
)

// formatOf picks the codec for a settings file from its extension.
func formatOf(path string) (codec.Type, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return codec.TypeYAML, nil
	case ".json":
		return codec.TypeJSON, nil
	case ".toml":
		return codec.TypeTOML, nil
	case "":
		return "", fmt.Errorf("settings file %q has no extension; use WithFileAs", path)
	default:
		return "", fmt.Errorf("unsupported settings file extension %q; use WithFileAs", ext)
	}
}
