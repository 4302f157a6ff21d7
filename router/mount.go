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

package router

import (
	"fmt"
	"strings"

	"github.com/Perritu/Router/router/criteria"
	"github.com/Perritu/Router/router/handler"
)

// mountCriterion captures the whole path (after the criteria prefix) and
// hands it to the mounted method as its only argument.
var mountCriterion = criteria.Pattern("(.+)")

// MountNamespace routes every path under mountPoint to a class below
// namespaceRoot by convention. The remainder of the path after mountPoint
// becomes the class path and the request verb names the method:
//
//	d.MountNamespace(`App\Admin`, "/admin", router.MethodAny, true)
//	// GET /admin/users  ->  App\Admin\users@GET
//
// Class and method names are resolved with the registry's folding rules, so
// the request above reaches a Go method named Get on the class registered
// as App\Admin\Users.
//
// mountPoint matches on path-segment boundaries: "/admin" covers "/admin"
// and "/admin/x" but not "/administrator". A mount point ending in "/"
// matches any path with that prefix.
//
// The mount point itself names no class: "/admin" and "/admin/" never reach
// the namespace root class, even when one is registered.
//
// A path outside the mount point, or one whose class or verb method does
// not exist, is not a match and returns a nil error. Otherwise the route is
// dispatched as by Match with a "(.+)" regex criterion and the handler
// prefix cleared; the handler prefix is restored afterwards whether the
// dispatch succeeded, failed or panicked.
func (d *Dispatcher) MountNamespace(namespaceRoot, mountPoint string, mask MethodMask, terminate bool) (Result, error) {
	if res, done, err := d.halted(); done {
		return res, err
	}

	if !mask.Valid() {
		return Result{}, d.fail(fmt.Errorf("%w: %s", ErrInvalidMethodMask, mask))
	}

	req, err := d.Request()
	if err != nil {
		return Result{}, d.fail(err)
	}

	if !mask.Has(req.mask) {
		return Result{}, nil
	}

	rest, ok := cutMountPoint(req.path, mountPoint)
	if !ok {
		return Result{}, nil
	}

	var class string
	if strings.Trim(rest, "/") != "" {
		class = handler.NormalizeClassPath(namespaceRoot, rest)
	}
	ref := handler.ClassMethod(class, req.method)
	if !d.mountable(ref) {
		d.logger.DebugContext(d.ctx, "mount miss",
			"mount", mountPoint,
			"class", ref.Class(),
			"method", ref.Method(),
		)
		d.router.emit(DiagMountMiss, "no handler for mounted path", map[string]any{
			"mount":  mountPoint,
			"path":   req.path,
			"class":  ref.Class(),
			"method": ref.Method(),
		})
		return Result{}, nil
	}

	saved := req.handlerPrefix
	req.handlerPrefix = ""
	defer func() { req.handlerPrefix = saved }()

	return d.match(mask, mountCriterion, ref, terminate, true)
}

// mountable reports whether the class exists and declares the method, public
// or not. Visibility is left to resolution so that a private verb method is
// reported rather than skipped.
func (d *Dispatcher) mountable(ref handler.Ref) bool {
	if ref.Class() == "" {
		return false
	}
	class, ok := d.router.registry.Class(ref.Class())
	if !ok {
		return false
	}
	_, ok = class.Method(ref.Method())
	return ok
}

// cutMountPoint returns the part of p after mountPoint and whether p lies
// under it.
func cutMountPoint(p, mountPoint string) (string, bool) {
	if mountPoint == "" {
		mountPoint = "/"
	}
	if strings.HasSuffix(mountPoint, "/") {
		return strings.CutPrefix(p, mountPoint)
	}
	rest, ok := strings.CutPrefix(p, mountPoint)
	if !ok || (rest != "" && rest[0] != '/') {
		return "", false
	}
	return rest, true
}
