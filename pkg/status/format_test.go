// Copyright 2025 walteh LLC
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

package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.com/tozd/go/errors"
)

func TestFormatFile(t *testing.T) {
	tests := []struct {
		name        string
		status      FileStatus
		want        string
		description string
	}{
		{
			name:        "modified_file",
			status:      FileStatus{Path: "index.html", Status: StatusModified, Replacements: 2},
			want:        "📝 Modified index.html (2 replacements)",
			description: "should show modification symbol and count",
		},
		{
			name:        "single_replacement",
			status:      FileStatus{Path: "a.css", Status: StatusModified, Replacements: 1},
			want:        "📝 Modified a.css (1 replacement)",
			description: "should use singular for one replacement",
		},
		{
			name:        "unchanged_file",
			status:      FileStatus{Path: "stable.html", Status: StatusUnchanged},
			want:        "👍 Unchanged stable.html",
			description: "should show thumbs up for unchanged files",
		},
		{
			name:        "failed_file",
			status:      Failed("broken.html", errors.New("permission denied")),
			want:        "❌ Failed broken.html: permission denied",
			description: "should show the error for failed files",
		},
		{
			name:        "failed_without_error",
			status:      FileStatus{Path: "broken.html", Status: StatusFailed},
			want:        "❌ Failed broken.html",
			description: "should show failure without details",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFile(tt.status), tt.description)
		})
	}
}

func TestFormatTotals(t *testing.T) {
	tests := []struct {
		name   string
		totals Totals
		want   string
	}{
		{
			name:   "success",
			totals: Totals{Files: 3, Modified: 2, Replacements: 5},
			want:   "✅ 3 files, 2 modified, 5 replacements",
		},
		{
			name:   "with_failures",
			totals: Totals{Files: 2, Modified: 1, Failed: 1, Replacements: 1},
			want:   "❌ 2 files, 1 modified, 1 failed, 1 replacement",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTotals(tt.totals))
		})
	}
}
