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

package clf_test

import (
	"fmt"
	"time"

	"rivaas.dev/commonlog/clf"
)

func ExampleFormatter_Format() {
	start := time.Date(2023, time.October, 10, 13, 55, 36, 0, time.UTC)
	req := clf.RequestSnapshot{
		ClientAddr: "203.0.113.5",
		User:       "frank",
		Method:     "GET",
		URI:        "/apache_pb.gif",
		Proto:      "1.0",
		Start:      start,
	}
	resp := clf.ResponseSnapshot{Status: 200, Bytes: 2326, End: start.Add(15 * time.Millisecond)}

	fmt.Println(string(clf.Format(req, resp)))
	fmt.Println(clf.NewFormatter(clf.WithoutDuration()).String(req, resp))
	// Output:
	// 203.0.113.5 - frank [10/Oct/2023:13:55:36 +0000] "GET /apache_pb.gif HTTP/1.0" 200 2326 15
	// 203.0.113.5 - frank [10/Oct/2023:13:55:36 +0000] "GET /apache_pb.gif HTTP/1.0" 200 2326
}
