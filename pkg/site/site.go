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

// Package site performs one update of a mirrored site: download a fresh
// copy, rewrite its links, swap it into the git working copy and publish
// it when something changed.
package site

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/ssgmirror/pkg/config"
	"github.com/walteh/ssgmirror/pkg/fault"
	"github.com/walteh/ssgmirror/pkg/fsreplace"
	"github.com/walteh/ssgmirror/pkg/links"
	"github.com/walteh/ssgmirror/pkg/lock"
	"github.com/walteh/ssgmirror/pkg/operate"
	"gitlab.com/tozd/go/errors"
)

// wget exits with 8 when the server answered some request with an error,
// which dead links on the mirrored site routinely cause.
const wgetServerError = 8

var gitignore = strings.Join([]string{".pidfile", ".dat"}, "\n")

// 🌍 Site is a mirrored site and the folder holding its git history
type Site struct {
	Config *config.Config
	// Folder is the git working copy; the downloaded domain ends up in
	// Folder/<domain>.
	Folder string
	Runner operate.Runner
	// NetlifyCommand overrides the netlify CLI binary
	NetlifyCommand string

	updates int
}

// 📋 Report describes one update
type Report struct {
	Fresh     bool // the repository was created by this update
	Committed bool // a snapshot commit was made
	Deployed  bool // the mirror was published to netlify
	Results   []fsreplace.Result
}

// LockPath is the pid file guarding the folder
func (s *Site) LockPath() string {
	return filepath.Clean(s.Folder) + "_lock"
}

// 🔄 Update runs one full update. A failure leaves the previous snapshot in
// place.
func (s *Site) Update(ctx context.Context) (Report, error) {
	var report Report
	s.updates++
	logger := zerolog.Ctx(ctx).With().Str("site", s.Config.Domain).Int("update", s.updates).Logger()
	ctx = logger.WithContext(ctx)

	release, ok, err := lock.Acquire(s.LockPath())
	if err != nil {
		return report, err
	}
	if !ok {
		return report, fault.New(fault.Lock, s.LockPath(), errors.New("another update holds the lock"))
	}
	defer func() {
		if err := release(); err != nil {
			logger.Warn().Err(err).Msg("releasing lock")
		}
	}()

	inFolder := operate.In(s.Folder, s.Runner)
	for _, tool := range []string{"wget", "git"} {
		out, err := operate.In("", s.Runner).Exec(ctx, tool, "--version")
		if err != nil {
			return report, errors.Errorf("checking %s: %w", tool, err)
		}
		logger.Info().Str("tool", tool).Msg(out.FirstLine())
	}

	hasGit, err := inFolder.Exists(ctx, ".git")
	if err != nil {
		return report, err
	}
	if !hasGit {
		if err := s.init(ctx, inFolder); err != nil {
			return report, err
		}
	}
	report.Fresh, err = s.fresh(ctx, inFolder)
	if err != nil {
		return report, err
	}

	report.Results, err = s.download(ctx)
	if err != nil {
		return report, err
	}

	report.Committed, err = s.commit(ctx, inFolder, report.Fresh)
	if err != nil {
		return report, err
	}
	if !report.Committed && s.updates > 1 {
		logger.Info().Msg("no changes")
		return report, nil
	}

	if n := s.Config.Netlify; n != nil {
		logger.Info().Msg("deploying to netlify")
		if _, err := inFolder.Cd(s.Config.Domain).DeployNetlify(ctx, operate.Deploy{
			AuthToken:  n.AuthToken,
			Production: n.Production,
			Command:    s.NetlifyCommand,
		}); err != nil {
			return report, errors.Errorf("deploying to netlify: %w", err)
		}
		report.Deployed = true
	} else {
		logger.Info().Msg("skipping netlify")
	}

	return report, nil
}

func (s *Site) init(ctx context.Context, inFolder operate.Dir) error {
	zerolog.Ctx(ctx).Info().Str("folder", s.Folder).Msg("initializing repository")
	if err := inFolder.Mkdir(ctx); err != nil {
		return err
	}
	if _, err := inFolder.Git(ctx, "init", "-q"); err != nil {
		return errors.Errorf("initializing git: %w", err)
	}
	return nil
}

// fresh reports whether the repository has no commit yet
func (s *Site) fresh(ctx context.Context, inFolder operate.Dir) (bool, error) {
	_, err := inFolder.Git(ctx, "rev-parse", "--verify", "-q", "HEAD")
	if err == nil {
		return false, nil
	}
	if fe, ok := fault.As(err); ok && fe.Kind == fault.Exec && fe.ExitStatus == 1 {
		return true, nil
	}
	return false, errors.Errorf("checking for HEAD: %w", err)
}

func (s *Site) download(ctx context.Context) ([]fsreplace.Result, error) {
	logger := zerolog.Ctx(ctx)
	cfg := s.Config

	tmp, err := os.MkdirTemp(filepath.Dir(filepath.Clean(s.Folder)), "ssgmirror-")
	if err != nil {
		return nil, errors.Errorf("creating download directory: %w", err)
	}
	// after a successful swap tmp no longer exists
	defer os.RemoveAll(tmp)

	inTemp := operate.In(tmp, s.Runner)
	logger.Info().Str("dir", tmp).Strs("urls", cfg.URLs()).Msg("downloading")
	if _, err := inTemp.Download(ctx, cfg.URLs()...); err != nil {
		fe, ok := fault.As(err)
		if !ok || fe.Kind != fault.Exec || fe.ExitStatus != wgetServerError {
			return nil, errors.Errorf("downloading: %w", err)
		}
		logger.Warn().Str("stderr", fe.Stderr).Msg("some pages answered with an error")
	}

	hasDomain, err := inTemp.Exists(ctx, cfg.Domain)
	if err != nil {
		return nil, err
	}
	if !hasDomain {
		return nil, errors.Errorf("download produced no %s directory", cfg.Domain)
	}

	if err := inTemp.Write(ctx, []string{".gitignore"}, []byte(gitignore)); err != nil {
		return nil, err
	}

	results, err := links.Rewrite(ctx, tmp, cfg.Domain, cfg.NewURL(), fsreplace.Options{ChunkSize: cfg.ChunkSize}, cfg.FileRules()...)
	if err != nil {
		return results, errors.Errorf("rewriting links: %w", err)
	}

	if err := s.writeNetlify(ctx, inTemp.Cd(cfg.Domain)); err != nil {
		return results, err
	}

	err = operate.SafeReplace(ctx, s.Folder, tmp, operate.Op{
		Run: func(ctx context.Context, backup, target string) error {
			logger.Info().Msg("moving git")
			return operate.In(backup, s.Runner).Move(ctx, []string{".git"}, target)
		},
		Rewind: func(ctx context.Context, backup, target string) error {
			logger.Info().Msg("rewinding git")
			gitMoved, err := operate.In(target, s.Runner).Exists(ctx, ".git")
			if err != nil || !gitMoved {
				return err
			}
			return operate.In(target, s.Runner).Move(ctx, []string{".git"}, backup)
		},
	})
	if err != nil {
		return results, errors.Errorf("replacing %s: %w", s.Folder, err)
	}

	// the rewritten files now live in the folder
	for i := range results {
		if rel, err := filepath.Rel(tmp, results[i].Path); err == nil {
			results[i].Path = filepath.Join(s.Folder, rel)
		}
	}
	return results, nil
}

type netlifyState struct {
	SiteID string `json:"siteId"`
}

func (s *Site) writeNetlify(ctx context.Context, inDomain operate.Dir) error {
	n := s.Config.Netlify
	if n == nil {
		return nil
	}
	if err := inDomain.Mkdir(ctx, ".netlify"); err != nil {
		return err
	}
	state, err := json.MarshalIndent(netlifyState{SiteID: n.SiteID}, "", "  ")
	if err != nil {
		return errors.Errorf("encoding netlify state: %w", err)
	}
	if err := inDomain.Write(ctx, []string{".netlify", "state.json"}, state); err != nil {
		return err
	}
	if n.Config != "" {
		if err := inDomain.Write(ctx, []string{"netlify.toml"}, []byte(n.Config)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Site) commit(ctx context.Context, inFolder operate.Dir, fresh bool) (bool, error) {
	logger := zerolog.Ctx(ctx)

	if _, err := inFolder.Git(ctx, "add", "."); err != nil {
		return false, errors.Errorf("staging: %w", err)
	}

	message := "Initial commit"
	if !fresh {
		_, err := inFolder.Git(ctx, "diff", "HEAD", "-s", "--exit-code")
		if err == nil {
			logger.Info().Msg("no changes to commit")
			return false, nil
		}
		if fe, ok := fault.As(err); !ok || fe.Kind != fault.Exec || fe.ExitStatus != 1 {
			return false, errors.Errorf("diffing: %w", err)
		}
		status, err := inFolder.Git(ctx, "status", "-s")
		if err != nil {
			return false, errors.Errorf("listing changes: %w", err)
		}
		message = "Update:\n" + string(status.Stdout)
	}

	logger.Info().Str("message", message).Msg("creating commit")
	git := s.Config.Git
	for _, args := range [][]string{
		{"config", "user.name", git.Name},
		{"config", "user.email", git.Email},
		{"commit", "-q", "-s", "-m", message},
	} {
		if _, err := inFolder.Git(ctx, args...); err != nil {
			return false, errors.Errorf("committing: %w", err)
		}
	}
	return true, nil
}
