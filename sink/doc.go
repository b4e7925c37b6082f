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

// Package sink provides destinations for access log lines.
//
// Every sink implements
//
//	WriteLine(ctx context.Context, line []byte) error
//
// and receives one formatted line at a time, without a trailing newline.
// Sinks are safe for concurrent use. A sink never keeps the line slice after
// WriteLine returns.
//
//	w := sink.NewWriter(os.Stdout)
//	async := sink.NewAsync(w, sink.WithQueueSize(4096))
//	defer async.Close(context.Background())
package sink
