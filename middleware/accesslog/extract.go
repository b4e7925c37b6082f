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

package accesslog

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"rivaas.dev/commonlog/clf"
	"rivaas.dev/commonlog/middleware"
)

type identityKey struct{}

// WithIdentity returns a copy of ctx that carries the CLF authuser for
// requests passing through it.
func WithIdentity(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, identityKey{}, user)
}

// IdentityFromContext returns the user stored with [WithIdentity] or by the
// basicauth middleware, or "" when the request is anonymous.
func IdentityFromContext(ctx context.Context) string {
	if user, ok := ctx.Value(identityKey{}).(string); ok && user != "" {
		return user
	}
	if user, ok := ctx.Value(middleware.AuthUsernameKey).(string); ok {
		return user
	}
	return ""
}

// extractor builds request snapshots. It never fails.
type extractor struct {
	realIP       *realIP
	identityFunc func(*http.Request) string
}

func (e *extractor) capture(r *http.Request, start time.Time) clf.RequestSnapshot {
	return clf.RequestSnapshot{
		ClientAddr: e.realIP.clientAddr(r),
		User:       e.identity(r),
		Method:     r.Method,
		URI:        requestURI(r),
		Proto:      protoVersion(r),
		Start:      start,
	}
}

func (e *extractor) identity(r *http.Request) string {
	if e.identityFunc != nil {
		if user := e.identityFunc(r); user != "" {
			return user
		}
	}
	return IdentityFromContext(r.Context())
}

// requestURI returns the request target as sent by the client.
func requestURI(r *http.Request) string {
	if r.RequestURI != "" {
		return r.RequestURI
	}
	if r.URL != nil {
		return r.URL.RequestURI()
	}
	return ""
}

// protoVersion returns "major.minor", e.g. "1.1".
func protoVersion(r *http.Request) string {
	if r.ProtoMajor == 0 && r.ProtoMinor == 0 {
		if major, minor, ok := http.ParseHTTPVersion(r.Proto); ok {
			return strconv.Itoa(major) + "." + strconv.Itoa(minor)
		}
		return ""
	}
	return strconv.Itoa(r.ProtoMajor) + "." + strconv.Itoa(r.ProtoMinor)
}
