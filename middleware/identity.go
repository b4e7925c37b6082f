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

package middleware

import (
	"context"
	"sync"
)

type identitySlotKey struct{}

// IdentitySlot lets a handler deeper in the chain report the authenticated
// user to a middleware further out, which only sees its own request context.
type IdentitySlot struct {
	mu   sync.Mutex
	user string
}

// WithIdentitySlot returns a context carrying a new empty slot.
func WithIdentitySlot(ctx context.Context) (context.Context, *IdentitySlot) {
	slot := &IdentitySlot{}
	return context.WithValue(ctx, identitySlotKey{}, slot), slot
}

// SetIdentity stores user in the slot carried by ctx, if any.
// It reports whether a slot was found.
func SetIdentity(ctx context.Context, user string) bool {
	slot, ok := ctx.Value(identitySlotKey{}).(*IdentitySlot)
	if !ok {
		return false
	}
	slot.mu.Lock()
	slot.user = user
	slot.mu.Unlock()
	return true
}

// User returns the reported user, or "" when none was reported.
func (s *IdentitySlot) User() string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}
