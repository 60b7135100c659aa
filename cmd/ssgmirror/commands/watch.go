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

package commands

import (
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/ssgmirror/pkg/worker"
	"gitlab.com/tozd/go/errors"
)

// NewWatchCmd creates the watch command
func NewWatchCmd(opts *Options) *cobra.Command {
	var (
		configDir string
		workDir   string
		respawn   time.Duration
		poll      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep every mirror of a config folder up to date",
		Long: `Watch runs one update loop per config file in --config-dir. Loops are
restarted when their file changes, stopped when it is removed and respawned
after a failure. Each loop logs to WORK/<name>.log.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			configs, err := filepath.Abs(configDir)
			if err != nil {
				return errors.Errorf("resolving config dir: %w", err)
			}
			work, err := filepath.Abs(workDir)
			if err != nil {
				return errors.Errorf("resolving work dir: %w", err)
			}

			opts.console().Header("watching " + configs)
			zerolog.Ctx(ctx).Info().Str("config_dir", configs).Str("work_dir", work).Msg("supervisor starting")

			sup := &worker.Supervisor{
				ConfigDir: configs,
				WorkDir:   work,
				Respawn:   respawn,
				Poll:      poll,
			}
			if err := sup.Run(ctx); err != nil {
				return errors.Errorf("supervising %s: %w", configs, err)
			}

			opts.console().Info("stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&configDir, "config-dir", "sites", "folder of site config files")
	cmd.Flags().StringVar(&workDir, "work-dir", "work", "folder holding the mirrors and worker logs")
	cmd.Flags().DurationVar(&respawn, "respawn", worker.DefaultRespawn, "delay before a failed worker restarts")
	cmd.Flags().DurationVar(&poll, "poll", worker.DefaultPoll, "how often the config folder is scanned")

	return cmd
}
