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
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/ssgmirror/pkg/config"
	"github.com/walteh/ssgmirror/pkg/fsreplace"
	"github.com/walteh/ssgmirror/pkg/links"
	"github.com/walteh/ssgmirror/pkg/log"
	"github.com/walteh/ssgmirror/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// NewReplaceCmd creates the replace command
func NewReplaceCmd(opts *Options) *cobra.Command {
	var (
		domain     string
		newDomain  string
		configFile string
		chunkSize  int
	)

	cmd := &cobra.Command{
		Use:   "replace DIR",
		Short: "Rewrite the links of an already downloaded site",
		Long: `Replace rewrites the html and css files under DIR in place so links to the
mirrored domain point at the new domain. It will:
1. Drop generator meta tags and feedly links
2. Make links to the old domain relative (og/twitter tags keep the new domain)
3. Trim index.html from relative links
4. Apply the extra rules of --config, if given`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dir := args[0]

			cfg := &config.Config{Domain: domain, NewDomain: newDomain}
			var extra []fsreplace.FileRule
			if configFile != "" {
				loaded, err := loadConfig(ctx, configFile)
				if err != nil {
					return errors.Errorf("loading config: %w", err)
				}
				extra = loaded.FileRules()
				if cfg.Domain == "" {
					cfg.Domain = loaded.Domain
				}
				if cfg.NewDomain == "" {
					cfg.NewDomain = loaded.NewDomain
				}
				cfg.HTTPS = loaded.HTTPS
				if chunkSize == 0 {
					chunkSize = loaded.ChunkSize
				}
			}
			if cfg.Domain == "" || cfg.NewDomain == "" {
				return errors.New("--domain and --new-domain are required without --config")
			}

			console := opts.console()
			console.StartSite(ctx, log.SiteOperation{Domain: cfg.Domain, NewURL: cfg.NewURL(), Folder: dir})
			defer console.EndSite(ctx)

			results, err := links.Rewrite(ctx, dir, cfg.Domain, cfg.NewURL(), fsreplace.Options{ChunkSize: chunkSize}, extra...)
			statuses := status.FromResults(dir, results)
			if err != nil {
				if path, ok := failedFile(dir, err); ok {
					statuses = append(statuses, status.Failed(path, err))
				}
				if rerr := opts.report(ctx, cmd.OutOrStdout(), statuses); rerr != nil {
					zerolog.Ctx(ctx).Debug().Err(rerr).Msg("printing report of failed rewrite")
				}
				return errors.Errorf("rewriting %s: %w", dir, err)
			}

			return opts.report(ctx, cmd.OutOrStdout(), statuses)
		},
	}

	cmd.Flags().StringVar(&domain, "domain", "", "domain the site was downloaded from")
	cmd.Flags().StringVar(&newDomain, "new-domain", "", "domain or URL the links should point at")
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "site config with extra rules")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "bytes read per chunk (default 64KiB)")

	return cmd
}
