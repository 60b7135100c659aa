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
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/ssgmirror/cmd/ssgmirror/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := &commands.Options{}

	rootCmd := &cobra.Command{
		Use:   "ssgmirror",
		Short: "Mirror a website into git and publish it under a new domain",
		Long: `ssgmirror downloads a website, rewrites its links so the copy works under
a new domain, commits the snapshot to git and optionally deploys it to netlify.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd, opts)
		},
	}

	addRootFlags(rootCmd)

	rootCmd.AddCommand(
		commands.NewReplaceCmd(opts),
		commands.NewUpdateCmd(opts),
		commands.NewWatchCmd(opts),
		newVersionCmd(),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("command failed")
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}
