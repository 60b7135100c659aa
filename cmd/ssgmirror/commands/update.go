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

	"github.com/spf13/cobra"
	"github.com/walteh/ssgmirror/pkg/log"
	"github.com/walteh/ssgmirror/pkg/operate"
	"github.com/walteh/ssgmirror/pkg/site"
	"github.com/walteh/ssgmirror/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// NewUpdateCmd creates the update command
func NewUpdateCmd(opts *Options) *cobra.Command {
	var (
		configFile string
		workDir    string
		netlify    string
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update one mirror once",
		Long: `Update downloads the site of --config into WORK/<name>, rewrites its links,
commits the snapshot and deploys it when netlify is configured.
It will:
1. Take the folder lock
2. Download the site next to the folder
3. Rewrite links and swap the new snapshot in, keeping .git
4. Commit and deploy when something changed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(ctx, configFile)
			if err != nil {
				return errors.Errorf("loading config: %w", err)
			}

			work, err := filepath.Abs(workDir)
			if err != nil {
				return errors.Errorf("resolving work dir: %w", err)
			}

			s := &site.Site{
				Config:         cfg,
				Folder:         filepath.Join(work, cfg.Name()),
				Runner:         &operate.ExecRunner{},
				NetlifyCommand: netlify,
			}

			console := opts.console()
			console.StartSite(ctx, log.SiteOperation{Domain: cfg.Domain, NewURL: cfg.NewURL(), Folder: s.Folder})
			defer console.EndSite(ctx)

			report, err := s.Update(ctx)
			if err != nil {
				return errors.Errorf("updating %s: %w", cfg.Name(), err)
			}

			if err := opts.report(ctx, cmd.OutOrStdout(), status.FromResults(s.Folder, report.Results)); err != nil {
				return err
			}

			switch {
			case report.Deployed:
				console.Success("snapshot committed and deployed")
			case report.Committed:
				console.Success("snapshot committed")
			default:
				console.Info("nothing changed")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "site config file")
	cmd.Flags().StringVarP(&workDir, "work", "w", ".", "folder holding the mirrors")
	cmd.Flags().StringVar(&netlify, "netlify", "", "netlify CLI binary (default netlify)")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}
