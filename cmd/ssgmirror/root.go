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
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/ssgmirror/cmd/ssgmirror/commands"
	"github.com/walteh/ssgmirror/pkg/log"
)

var (
	// Flags
	debugLogs   bool
	verboseList bool
)

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVarP(&debugLogs, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&verboseList, "verbose", "v", false, "list unchanged files too")
}

// setupLogging configures zerolog based on flags and puts the loggers on
// the command context
func setupLogging(cmd *cobra.Command, opts *commands.Options) {
	if debugLogs {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &zlog

	opts.Verbose = verboseList
	opts.Console = log.New(os.Stdout, zlog)

	ctx := zlog.WithContext(cmd.Context())
	cmd.SetContext(log.NewContext(ctx, opts.Console))
}
