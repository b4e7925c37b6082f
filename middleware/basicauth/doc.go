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

// Package basicauth provides net/http middleware for HTTP Basic
// Authentication (RFC 7617).
//
// On success the username is stored under middleware.AuthUsernameKey in the
// request context and reported through middleware.SetIdentity, so an access
// log placed further out records it as the CLF authuser.
//
//	h := middleware.Chain(mux,
//	    accesslog.New(accesslog.WithSink(s)),
//	    basicauth.New(basicauth.WithUsers(map[string]string{"admin": "secret"})),
//	)
//
// Basic Auth transmits credentials in base64, not encrypted: always serve it
// over HTTPS.
package basicauth
