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

package main

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/Perritu/Router/app"
	apperrors "github.com/Perritu/Router/errors"
	"github.com/Perritu/Router/router/handler"
)

var started = time.Now()

// Home answers the demo routes under App\Handlers.
//
//	routes:
//	  - criteria: /
//	    handler: Home@index
//	  - criteria: ^/hello/(\w+)$
//	    mode: regex
//	    handler: Home@hello
type Home struct{}

func (Home) Index(ctx context.Context) map[string]any {
	req := app.RequestFromContext(ctx)
	return map[string]any{
		"service": "dispatchd",
		"path":    req.URL.Path,
	}
}

func (Home) Hello(name string) string {
	return "Hello, " + name + "!"
}

func (Home) Echo(ctx context.Context, rest ...string) map[string]any {
	req := app.RequestFromContext(ctx)
	return map[string]any{
		"method": req.Method,
		"query":  req.URL.Query(),
		"groups": rest,
	}
}

// Users is a small in-memory user directory.
type Users struct{}

var directory = map[int]string{1: "ada", 2: "grace", 3: "linus"}

func (Users) Show(id int) (map[string]any, error) {
	name, ok := directory[id]
	if !ok {
		return nil, apperrors.WithStatus(fmt.Errorf("user %d not found", id), http.StatusNotFound)
	}
	return map[string]any{"id": id, "name": name}, nil
}

func (Users) List() []string {
	names := make([]string, 0, len(directory))
	for id := 1; id <= len(directory); id++ {
		names = append(names, directory[id])
	}
	return names
}

// Status is mounted under App\Admin by the demo settings:
//
//	mounts:
//	  - namespace: App\Admin
//	    point: /admin
//
// GET /admin/status reaches Get.
type Status struct{}

func (Status) Get() map[string]any {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return map[string]any{
		"uptime":     time.Since(started).Round(time.Second).String(),
		"goroutines": runtime.NumGoroutine(),
		"heap_bytes": ms.HeapAlloc,
	}
}

func demoRegistry() *handler.TypeRegistry {
	reg := handler.NewRegistry()
	reg.MustRegister(`App\Handlers\Home`, Home{})
	reg.MustRegister(`App\Handlers\Users`, Users{},
		handler.WithStatic("count", func() int { return len(directory) }),
	)
	reg.MustRegister(`App\Admin\Status`, Status{})
	return reg
}
