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

// Stage is a step of the per-request lifecycle.
type Stage uint8

// Lifecycle stages in the order they are reached.
// A request ends in exactly one of StageEmitted, StageEmittedDropped or
// StageAborted, unless it was skipped.
const (
	StageEntered Stage = iota
	StageRequestCaptured
	StageAwaitingResponse
	StageResponseCaptured
	StageFormatted
	StageEmitted
	StageEmittedDropped
	StageAborted
	StageSkipped
)

var stageNames = [...]string{
	StageEntered:          "entered",
	StageRequestCaptured:  "request_captured",
	StageAwaitingResponse: "awaiting_response",
	StageResponseCaptured: "response_captured",
	StageFormatted:        "formatted",
	StageEmitted:          "emitted",
	StageEmittedDropped:   "emitted_dropped",
	StageAborted:          "aborted",
	StageSkipped:          "skipped",
}

// String implements fmt.Stringer.
func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return "unknown"
}

// Terminal reports whether no further stage follows s.
func (s Stage) Terminal() bool {
	switch s {
	case StageEmitted, StageEmittedDropped, StageAborted, StageSkipped:
		return true
	}
	return false
}
