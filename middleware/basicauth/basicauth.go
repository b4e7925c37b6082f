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
	"context"
	"crypto/subtle"
	"net/http"

	"rivaas.dev/commonlog/middleware"
)

// Option defines functional options for basicauth middleware configuration.
type Option func(*config)

// config holds the configuration for the basicauth middleware.
type config struct {
	// users maps usernames to passwords
	users map[string]string

	// realm is the authentication realm shown to the user
	realm string

	// validator is a custom validation function
	validator func(username, password string) bool

	// unauthorizedHandler is called when authentication fails
	unauthorizedHandler http.Handler

	// skipPaths are paths that should bypass authentication
	skipPaths map[string]bool
}

// defaultConfig returns the default configuration for basicauth middleware.
func defaultConfig() *config {
	return &config{
		users:               make(map[string]string),
		realm:               "Restricted",
		unauthorizedHandler: http.HandlerFunc(defaultUnauthorizedHandler),
		skipPaths:           make(map[string]bool),
	}
}

// defaultUnauthorizedHandler sends a 401 Unauthorized response.
func defaultUnauthorizedHandler(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
}

// WithUsers adds static username/password pairs.
func WithUsers(users map[string]string) Option {
	return func(cfg *config) {
		for u, p := range users {
			cfg.users[u] = p
		}
	}
}

// WithRealm sets the realm of the WWW-Authenticate challenge.
// Default: "Restricted"
func WithRealm(realm string) Option {
	return func(cfg *config) {
		cfg.realm = realm
	}
}

// WithValidator sets a custom credential check. It replaces the static users.
//
//	basicauth.WithValidator(func(username, password string) bool {
//	    user, err := db.GetUser(username)
//	    if err != nil {
//	        return false
//	    }
//	    return bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) == nil
//	})
func WithValidator(fn func(username, password string) bool) Option {
	return func(cfg *config) {
		cfg.validator = fn
	}
}

// WithUnauthorizedHandler sets the handler that answers rejected requests.
// The WWW-Authenticate header is already set when it runs.
func WithUnauthorizedHandler(h http.Handler) Option {
	return func(cfg *config) {
		if h != nil {
			cfg.unauthorizedHandler = h
		}
	}
}

// WithSkipPaths lets exact paths bypass authentication.
func WithSkipPaths(paths ...string) Option {
	return func(cfg *config) {
		for _, p := range paths {
			cfg.skipPaths[p] = true
		}
	}
}

// New returns a middleware that implements HTTP Basic Authentication.
// Credentials are checked on every request; static passwords are compared in
// constant time.
func New(opts ...Option) middleware.Middleware {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	// Pre-compute the WWW-Authenticate header
	challenge := `Basic realm="` + cfg.realm + `"`

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.skipPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			username, password, ok := r.BasicAuth()
			if !ok || !cfg.authenticate(username, password) {
				w.Header().Set("WWW-Authenticate", challenge)
				cfg.unauthorizedHandler.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), middleware.AuthUsernameKey, username)
			middleware.SetIdentity(ctx, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (cfg *config) authenticate(username, password string) bool {
	if cfg.validator != nil {
		return cfg.validator(username, password)
	}

	expected, exists := cfg.users[username]
	if !exists {
		// Compare anyway so unknown users take as long as known ones.
		subtle.ConstantTimeCompare([]byte(password), []byte(password))
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(expected)) == 1
}

// Username returns the authenticated username stored in ctx, or "".
func Username(ctx context.Context) string {
	if username, ok := ctx.Value(middleware.AuthUsernameKey).(string); ok {
		return username
	}
	return ""
}
