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

package log

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/ssgmirror/pkg/status"
	"gitlab.com/tozd/go/errors"
)

func TestLogger(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		op       func(t *testing.T, logger *Logger)
		wantLogs []string
	}{
		{
			name: "log_file_operation",
			op: func(t *testing.T, logger *Logger) {
				logger.LogFileOperation(context.Background(), FileOperation{
					Path:         "index.html",
					Status:       "modified",
					IsModified:   true,
					Replacements: 2,
				})
			},
			wantLogs: []string{
				"⟳ index.html                          modified          2",
			},
		},
		{
			name: "log_site_operation",
			op: func(t *testing.T, logger *Logger) {
				logger.StartSite(context.Background(), SiteOperation{
					Domain: "example.com",
					NewURL: "https://mirror.example.org",
					Folder: "/tmp/example",
				})
				logger.EndSite(context.Background())
			},
			wantLogs: []string{
				"[mirroring /tmp/example]",
				"◆ example.com → https://mirror.example.org",
			},
		},
		{
			name: "log_statuses_skips_unchanged",
			op: func(t *testing.T, logger *Logger) {
				logger.LogStatuses(context.Background(), []status.FileStatus{
					{Path: "index.html", Status: status.StatusModified, Replacements: 2},
					{Path: "about.html", Status: status.StatusUnchanged},
					status.Failed("broken.html", errors.New("denied")),
				}, false)
			},
			wantLogs: []string{
				"⟳ index.html                          modified          2",
				"✗ broken.html                         failed",
			},
		},
		{
			name: "log_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("info message")
				logger.Warning("warning message")
				logger.Error("error message")
				logger.Success("success message")
			},
			wantLogs: []string{
				"ℹ️  info message",
				"⚠️  warning message",
				"❌ error message",
				"✅ success message",
			},
		},
		{
			name: "log_formatted_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Infof("info %s", "test")
				logger.Warningf("warning %s", "test")
				logger.Errorf("error %s", "test")
				logger.Successf("success %s", "test")
			},
			wantLogs: []string{
				"ℹ️  info test",
				"⚠️  warning test",
				"❌ error test",
				"✅ success test",
			},
		},
		{
			name: "log_header",
			op: func(t *testing.T, logger *Logger) {
				logger.Header("rewriting links")
			},
			wantLogs: []string{
				"ssgmirror • rewriting links",
			},
		},
		{
			name: "log_newline",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("first")
				logger.LogNewline()
				logger.Info("second")
			},
			wantLogs: []string{
				"ℹ️  first",
				"",
				"ℹ️  second",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := New(buf, zerolog.Nop())

			tt.op(t, logger)

			output := strings.TrimSpace(buf.String())
			lines := strings.Split(output, "\n")

			require.Equal(t, len(tt.wantLogs), len(lines), "number of log lines should match")
			for i, want := range tt.wantLogs {
				assert.Equal(t, want, strings.TrimSpace(lines[i]), "log line %d should match", i)
			}
		})
	}
}

func TestLoggerContext(t *testing.T) {
	logger := New(io.Discard, zerolog.Nop())

	ctx := NewContext(context.Background(), logger)

	got := FromContext(ctx)
	assert.Same(t, logger, got, "logger from context should be the same instance")

	assert.Panics(t, func() {
		FromContext(context.Background())
	}, "FromContext should panic when logger is missing")
}

func TestLoggerStructuredEvents(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	events := &bytes.Buffer{}
	logger := New(io.Discard, zerolog.New(events))

	logger.LogFileOperation(context.Background(), FileOperation{
		Path:         "index.html",
		Status:       "modified",
		IsModified:   true,
		Replacements: 3,
	})

	assert.Contains(t, events.String(), `"file":"index.html"`)
	assert.Contains(t, events.String(), `"replacements":3`)
	assert.Contains(t, events.String(), `"message":"file operation"`)
}

func TestFileOperationFormatting(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name string
		op   FileOperation
		want string
	}{
		{
			name: "modified_file",
			op:   FromStatus(status.FileStatus{Path: "css/site.css", Status: status.StatusModified, Replacements: 14}),
			want: "⟳ css/site.css                        modified         14",
		},
		{
			name: "failed_file",
			op:   FromStatus(status.Failed("broken.html", errors.New("denied"))),
			want: "✗ broken.html                         failed",
		},
		{
			name: "unchanged_file",
			op:   FromStatus(status.FileStatus{Path: "about.html", Status: status.StatusUnchanged}),
			want: "• about.html                          unchanged",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := New(buf, zerolog.Nop())

			logger.LogFileOperation(context.Background(), tt.op)

			output := strings.TrimSpace(buf.String())
			assert.Equal(t, tt.want, output, "formatted output should match")
		})
	}
}
