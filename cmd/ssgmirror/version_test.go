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

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		name     string
		info     *VersionInfo
		contains []string
	}{
		{
			name: "clean_build",
			info: &VersionInfo{Version: "v1.2.0", Revision: "abc123", GoVersion: "go1.23", Platform: "linux/amd64"},
			contains: []string{
				"🚀 ssgmirror version info:",
				"Version:   v1.2.0",
				"Revision:  abc123\n",
				"Platform:  linux/amd64",
			},
		},
		{
			name:     "modified_build",
			info:     &VersionInfo{Version: "dev", Revision: "abc123", Modified: true},
			contains: []string{"Revision:  abc123 (modified)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatVersion(tt.info)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
		})
	}
}

func TestVersionCmd(t *testing.T) {
	cmd := newVersionCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "ssgmirror version info")
	assert.NotEmpty(t, GetVersionInfo().GoVersion)
}
