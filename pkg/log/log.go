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
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/walteh/ssgmirror/pkg/status"
)

// 🎨 Display configuration
const (
	fileIndent   = 4  // spaces to indent file entries
	nameWidth    = 35 // Base width for filename
	statusWidth  = 12 // Width for status text
	replaceWidth = 6  // Width for replacement count
)

// 🎯 FileOperation represents a rewritten file for logging
type FileOperation struct {
	Path         string // File path, relative to the site root
	Status       string // Operation status
	IsModified   bool   // Whether the file was modified
	IsFailed     bool   // Whether the rewrite failed
	Replacements int    // Number of replacements made
}

// FromStatus converts a file status into a loggable operation
func FromStatus(fs status.FileStatus) FileOperation {
	return FileOperation{
		Path:         fs.Path,
		Status:       fs.Status.String(),
		IsModified:   fs.Status == status.StatusModified,
		IsFailed:     fs.Status == status.StatusFailed,
		Replacements: fs.Replacements,
	}
}

// 🌐 SiteOperation represents one mirrored site for logging
type SiteOperation struct {
	Domain string // Mirrored domain
	NewURL string // URL links are rewritten to
	Folder string // Local snapshot folder
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog       zerolog.Logger
	console    io.Writer
	mu         sync.Mutex
	currentOp  *SiteOperation
	operations []FileOperation
}

// 🏭 New creates a new logger writing human lines to console and
// structured events to zlog
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatFileOperation formats a file operation for display
func (l *Logger) formatFileOperation(op FileOperation) string {
	var symbol rune
	var symbolColor color.Attribute
	switch {
	case op.IsFailed:
		symbol = '✗'
		symbolColor = color.FgRed
	case op.IsModified:
		symbol = '⟳'
		symbolColor = color.FgBlue
	default:
		symbol = '•'
		symbolColor = color.FgCyan
	}

	count := ""
	if op.Replacements > 0 {
		count = fmt.Sprintf("%d", op.Replacements)
	}

	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, op.Path),
		fmt.Sprintf("%-*s", statusWidth, op.Status),
		color.New(color.Faint).Sprint(fmt.Sprintf("%*s", replaceWidth, count)))
}

// 📝 LogFileOperation logs a file operation
func (l *Logger) LogFileOperation(ctx context.Context, op FileOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.operations = append(l.operations, op)

	fmt.Fprintln(l.console, l.formatFileOperation(op))

	l.zlog.Info().
		Str("file", op.Path).
		Str("status", op.Status).
		Bool("is_modified", op.IsModified).
		Bool("is_failed", op.IsFailed).
		Int("replacements", op.Replacements).
		Msg("file operation")
}

// 📝 LogStatuses logs every status that is not unchanged, or all of them
// when verbose is set
func (l *Logger) LogStatuses(ctx context.Context, statuses []status.FileStatus, verbose bool) {
	for _, fs := range statuses {
		if fs.Status == status.StatusUnchanged && !verbose {
			continue
		}
		l.LogFileOperation(ctx, FromStatus(fs))
	}
}

// 📝 StartSite starts a new site operation
func (l *Logger) StartSite(ctx context.Context, op SiteOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentOp = &op
	l.operations = nil

	fmt.Fprintf(l.console, "[mirroring %s]\n",
		color.New(color.FgCyan).Sprint(op.Folder))

	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(op.Domain),
		color.New(color.Faint).Sprint("→"),
		color.New(color.FgYellow).Sprint(op.NewURL))

	l.zlog.Info().
		Str("domain", op.Domain).
		Str("new_url", op.NewURL).
		Str("folder", op.Folder).
		Msg("starting site operation")
}

// 📝 EndSite ends the current site operation
func (l *Logger) EndSite(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentOp == nil {
		return
	}

	modified := 0
	for _, op := range l.operations {
		if op.IsModified {
			modified++
		}
	}

	l.zlog.Info().
		Str("domain", l.currentOp.Domain).
		Int("files", len(l.operations)).
		Int("modified", modified).
		Msg("site operation complete")

	l.currentOp = nil
	l.operations = nil
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	brand := color.New(color.Bold, color.FgCyan).Sprint("ssgmirror")
	fmt.Fprintf(l.console, "\n%s %s\n\n", brand, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
