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

// Package commands holds the ssgmirror subcommands.
package commands

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/ssgmirror/pkg/config"
	"github.com/walteh/ssgmirror/pkg/fault"
	"github.com/walteh/ssgmirror/pkg/log"
	"github.com/walteh/ssgmirror/pkg/status"
)

// Options are shared by every subcommand and filled in by the root command
// before one runs
type Options struct {
	Console *log.Logger
	Verbose bool
}

func (o *Options) console() *log.Logger {
	if o.Console == nil {
		o.Console = log.New(io.Discard, zerolog.Nop())
	}
	return o.Console
}

// report prints the per-file lines and the summary table of one rewrite
func (o *Options) report(ctx context.Context, w io.Writer, statuses []status.FileStatus) error {
	o.console().LogStatuses(ctx, statuses, o.Verbose)
	summary, err := status.Summary(statuses, o.Verbose)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, summary)
	return err
}

// loadConfig loads and validates the config at path, resolving it against
// the working directory
func loadConfig(ctx context.Context, path string) (*config.Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, err
	}
	return config.Load(ctx, abs)
}

// failedFile names the file a rewrite error is about, relative to root
func failedFile(root string, err error) (string, bool) {
	f, ok := fault.As(err)
	if !ok || f.Path == "" {
		return "", false
	}
	switch f.Kind {
	case fault.SourceRead, fault.SinkWrite, fault.Callback:
	default:
		return "", false
	}
	if rel, err := filepath.Rel(root, f.Path); err == nil {
		return filepath.ToSlash(rel), true
	}
	return f.Path, true
}
