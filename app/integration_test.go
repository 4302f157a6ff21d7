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

package app_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Perritu/Router/app"
	"github.com/Perritu/Router/logging"
	"github.com/Perritu/Router/router"
	"github.com/Perritu/Router/router/handler"
)

type catalog struct{}

func (catalog) Item(id int) map[string]any { return map[string]any{"item": id} }

func (catalog) Search(ctx context.Context) string {
	return "search " + app.RequestFromContext(ctx).URL.Query().Get("q")
}

type stats struct{}

func (stats) Get(path string) map[string]string { return map[string]string{"path": path} }

func (stats) Delete() error { return nil }

func catalogRegistry() *handler.TypeRegistry {
	reg := handler.NewRegistry()
	reg.MustRegister(`Shop\Catalog`, catalog{},
		handler.WithStatic("version", func() string { return "catalog v1" }),
	)
	reg.MustRegister(`Shop\Admin\Stats`, stats{})
	return reg
}

func catalogSettings() *app.Settings {
	s := app.DefaultSettings()
	s.Router.HandlerPrefix = "Shop"
	s.Routes = []app.RouteSpec{
		{Methods: "GET|HEAD", Criteria: `^/items/([0-9]+)$`, Mode: "regex", Handler: "Catalog@item"},
		{Methods: "GET", Criteria: "/search", Handler: "Catalog@search"},
		{Methods: "GET", Criteria: "/version", Handler: "Catalog::version"},
	}
	s.Mounts = []app.MountSpec{{Namespace: `Shop\Admin`, Point: "/admin"}}
	return s
}

func get(url string, header http.Header) (*http.Response, string) {
	GinkgoHelper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	Expect(err).NotTo(HaveOccurred())
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	resp, err := http.DefaultClient.Do(req)
	Expect(err).NotTo(HaveOccurred())
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	Expect(err).NotTo(HaveOccurred())
	return resp, string(body)
}

var _ = Describe("App Integration", func() {
	var (
		a   *app.App
		srv *httptest.Server
	)

	BeforeEach(func() {
		logger, _ := logging.NewTestLogger()
		a = app.MustNew(catalogSettings(),
			app.WithRegistry(catalogRegistry()),
			app.WithLogger(logger),
			app.WithBannerOutput(io.Discard),
		)
		srv = httptest.NewServer(a.Handler())
		DeferCleanup(func() {
			srv.Close()
			Expect(a.Shutdown(context.Background())).To(Succeed())
		})
	})

	Describe("Route Handling", func() {
		DescribeTable("should dispatch configured routes",
			func(path string, header http.Header, expectedStatus int, expectedBody string) {
				resp, body := get(srv.URL+path, header)

				Expect(resp.StatusCode).To(Equal(expectedStatus))
				Expect(resp.Header.Get("X-Dispatch-ID")).NotTo(BeEmpty())
				Expect(body).To(ContainSubstring(expectedBody))
			},
			Entry("regex route", "/items/12", nil, http.StatusOK, `{"item":12}`),
			Entry("handler reads the request", "/search?q=lamp", nil, http.StatusOK, "search lamp"),
			Entry("literal match folds case", "/SEARCH?q=x", nil, http.StatusOK, "search x"),
			Entry("static method", "/version", nil, http.StatusOK, "catalog v1"),
			Entry("JSON when preferred", "/version", http.Header{"Accept": {"application/json"}}, http.StatusOK, `"catalog v1"`),
			Entry("mounted class", "/admin/stats", nil, http.StatusOK, `"path":"/admin/stats"`),
			Entry("mount point boundary", "/administrator/stats", nil, http.StatusNotFound, "route_not_found"),
			Entry("unknown path", "/nowhere", nil, http.StatusNotFound, "route_not_found"),
		)

		It("should report problems as RFC 9457 documents", func() {
			resp, body := get(srv.URL+"/nowhere", nil)

			Expect(resp.Header.Get("Content-Type")).To(HavePrefix("application/problem+json"))

			var problem map[string]any
			Expect(json.Unmarshal([]byte(body), &problem)).To(Succeed())
			Expect(problem).To(HaveKeyWithValue("status", BeNumerically("==", http.StatusNotFound)))
			Expect(problem).To(HaveKeyWithValue("code", "route_not_found"))
			Expect(problem).To(HaveKey("error_id"))
		})

		It("should run a verb-named mount method without a body", func() {
			req, err := http.NewRequest(http.MethodDelete, srv.URL+"/admin/stats", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Body.Close()).To(Succeed())
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
		})

		It("should reject verbs outside the dispatch set", func() {
			req, err := http.NewRequest("TRACE", srv.URL+"/version", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Body.Close()).To(Succeed())
			Expect(resp.StatusCode).To(Equal(http.StatusMethodNotAllowed))
		})
	})

	Describe("Route Table", func() {
		It("should evaluate configured routes before mounts", func() {
			routes := a.Routes()

			Expect(routes).To(HaveLen(4))
			Expect(routes[0].Methods).To(Equal(router.MethodGet | router.MethodHead))
			Expect(routes[3].Namespace).To(Equal(`Shop\Admin`))
		})
	})

	Describe("Concurrency", func() {
		It("should give every request its own dispatcher", func() {
			const concurrency = 100

			var (
				wg   sync.WaitGroup
				ok   atomic.Int64
				mu   sync.Mutex
				seen = make(map[string]struct{}, concurrency)
			)
			for range concurrency {
				wg.Go(func() {
					defer GinkgoRecover()

					rec := httptest.NewRecorder()
					a.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/3", nil))
					if rec.Code == http.StatusOK && strings.Contains(rec.Body.String(), `"item":3`) {
						ok.Add(1)
					}
					mu.Lock()
					seen[rec.Header().Get("X-Dispatch-ID")] = struct{}{}
					mu.Unlock()
				})
			}
			wg.Wait()

			Expect(ok.Load()).To(Equal(int64(concurrency)))
			Expect(seen).To(HaveLen(concurrency))
		})
	})
})
