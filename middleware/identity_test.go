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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentitySlot(t *testing.T) {
	t.Parallel()

	ctx, slot := WithIdentitySlot(context.Background())
	assert.Empty(t, slot.User())

	inner := context.WithValue(ctx, AuthUsernameKey, "frank")
	assert.True(t, SetIdentity(inner, "frank"))
	assert.Equal(t, "frank", slot.User())
}

func TestSetIdentity_NoSlot(t *testing.T) {
	t.Parallel()

	assert.False(t, SetIdentity(context.Background(), "frank"))

	var slot *IdentitySlot
	assert.Empty(t, slot.User())
}
