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

package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
)

// LogEntry is a parsed JSON log record.
type LogEntry struct {
	Level   string
	Message string
	Attrs   map[string]any
}

// NewTestLogger returns a debug-level JSON Logger writing to the returned
// buffer. Read it back with ParseJSONLogEntries.
func NewTestLogger(opts ...Option) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	base := []Option{WithJSONHandler(), WithOutput(buf), WithDebugLevel()}
	return MustNew(append(base, opts...)...), buf
}

// ParseJSONLogEntries parses one JSON record per line. The buffer is not
// consumed.
func ParseJSONLogEntries(buf *bytes.Buffer) ([]LogEntry, error) {
	var entries []LogEntry
	scanner := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
	for scanner.Scan() {
		var raw map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &raw); err != nil {
			return nil, fmt.Errorf("parse log line: %w", err)
		}
		e := LogEntry{Attrs: make(map[string]any)}
		e.Level, _ = raw["level"].(string)
		e.Message, _ = raw["msg"].(string)
		for k, v := range raw {
			switch k {
			case "time", "level", "msg":
			default:
				e.Attrs[k] = v
			}
		}
		entries = append(entries, e)
	}
	return entries, scanner.Err()
}
