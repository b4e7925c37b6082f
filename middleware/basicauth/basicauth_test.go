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

package basicauth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"rivaas.dev/commonlog/middleware"
)

func whoami() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(Username(r.Context())))
	})
}

func TestBasicAuth(t *testing.T) {
	t.Parallel()

	mw := New(WithUsers(map[string]string{"admin": "secret"}), WithRealm("Admin"), WithSkipPaths("/health"))

	tests := []struct {
		name       string
		path       string
		user, pass string
		setAuth    bool
		rawAuth    string
		wantStatus int
		wantBody   string
	}{
		{name: "valid", path: "/", user: "admin", pass: "secret", setAuth: true, wantStatus: http.StatusOK, wantBody: "admin"},
		{name: "wrong password", path: "/", user: "admin", pass: "nope", setAuth: true, wantStatus: http.StatusUnauthorized},
		{name: "unknown user", path: "/", user: "eve", pass: "secret", setAuth: true, wantStatus: http.StatusUnauthorized},
		{name: "missing header", path: "/", wantStatus: http.StatusUnauthorized},
		{name: "not basic", path: "/", rawAuth: "Bearer token", wantStatus: http.StatusUnauthorized},
		{name: "bad base64", path: "/", rawAuth: "Basic !!!", wantStatus: http.StatusUnauthorized},
		{name: "skipped path", path: "/health", wantStatus: http.StatusOK, wantBody: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.setAuth {
				r.SetBasicAuth(tt.user, tt.pass)
			}
			if tt.rawAuth != "" {
				r.Header.Set("Authorization", tt.rawAuth)
			}
			w := httptest.NewRecorder()
			mw(whoami()).ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, `Basic realm="Admin"`, w.Header().Get("WWW-Authenticate"))
				return
			}
			assert.Equal(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestBasicAuth_ReportsIdentity(t *testing.T) {
	t.Parallel()

	ctx, slot := middleware.WithIdentitySlot(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	r := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	r.SetBasicAuth("frank", "pw")

	New(WithValidator(func(u, p string) bool { return u == "frank" && p == "pw" }))(whoami()).
		ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "frank", slot.User())
}

func TestBasicAuth_CustomUnauthorized(t *testing.T) {
	t.Parallel()

	mw := New(WithUnauthorizedHandler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})))

	w := httptest.NewRecorder()
	mw(whoami()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, `Basic realm="Restricted"`, w.Header().Get("WWW-Authenticate"))
}
