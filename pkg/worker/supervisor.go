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

package worker

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/ssgmirror/pkg/config"
	"github.com/walteh/ssgmirror/pkg/fault"
	"github.com/walteh/ssgmirror/pkg/operate"
	"github.com/walteh/ssgmirror/pkg/site"
	"github.com/zeebo/blake3"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultRespawn = 5 * time.Second
	DefaultPoll    = 2 * time.Second
)

// configGlob matches the config files a Supervisor picks up
var configGlob = "*.{" + strings.Join(config.Extensions, ",") + "}"

// 🧑‍✈️ Supervisor runs one worker per config file in ConfigDir. A worker is
// restarted when its file changes, stopped when the file disappears and
// respawned Respawn after it failed.
type Supervisor struct {
	ConfigDir string
	WorkDir   string
	Respawn   time.Duration
	Poll      time.Duration
	Runner    operate.Runner

	// NewUpdater builds the updater of a site whose folder is folder. It
	// defaults to a *site.Site using Runner.
	NewUpdater func(cfg *config.Config, folder string) Updater
}

type worker struct {
	fingerprint [32]byte
	cancel      context.CancelFunc
	done        chan struct{}
}

func (w *worker) stop() {
	w.cancel()
	<-w.done
}

// 🚦 Run supervises until ctx is done, then stops every worker. It returns
// nil after a cancellation and an error when ConfigDir can no longer be
// read.
func (s *Supervisor) Run(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	for name, dir := range map[string]string{"config dir": s.ConfigDir, "work dir": s.WorkDir} {
		info, err := os.Stat(dir)
		if err != nil {
			return errors.Errorf("%s: %w", name, err)
		}
		if !info.IsDir() {
			return errors.Errorf("%s %q is not a directory", name, dir)
		}
	}
	logger.Info().Str("config_dir", s.ConfigDir).Str("work_dir", s.WorkDir).Msg("supervising")

	g, gctx := errgroup.WithContext(ctx)
	workers := map[string]*worker{}

	defer func() {
		for path, w := range workers {
			logger.Info().Str("config", path).Msg("- stopping worker")
			w.stop()
		}
	}()

	poll := s.Poll
	if poll <= 0 {
		poll = DefaultPoll
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		found, err := s.scan(ctx)
		if err != nil {
			return errors.Errorf("scanning %s: %w", s.ConfigDir, err)
		}

		for path, w := range workers {
			if _, ok := found[path]; !ok {
				logger.Info().Str("config", path).Msg("- stopping worker")
				w.stop()
				delete(workers, path)
			}
		}
		for path, fp := range found {
			w, ok := workers[path]
			if ok && w.fingerprint == fp {
				continue
			}
			if ok {
				logger.Info().Str("config", path).Msg("~ restarting worker")
				w.stop()
			} else {
				logger.Info().Str("config", path).Msg("+ starting worker")
			}
			workers[path] = s.start(gctx, g, path, fp)
		}

		select {
		case <-gctx.Done():
			for path, w := range workers {
				w.stop()
				delete(workers, path)
			}
			if err := g.Wait(); err != nil && !fault.Is(err, fault.Cancelled) {
				return err
			}
			return nil
		case <-ticker.C:
		}
	}
}

// scan returns the config files in ConfigDir with a digest of their content.
// Files sharing a name, like a.yaml and a.json, would share a folder, lock
// and log, so none of them is returned.
func (s *Supervisor) scan(ctx context.Context) (map[string][32]byte, error) {
	names, err := doublestar.Glob(os.DirFS(s.ConfigDir), configGlob)
	if err != nil {
		return nil, err
	}

	byName := map[string][]string{}
	for _, name := range names {
		byName[configName(name)] = append(byName[configName(name)], name)
	}

	found := make(map[string][32]byte, len(names))
	for _, name := range names {
		if clash := byName[configName(name)]; len(clash) > 1 {
			zerolog.Ctx(ctx).Warn().Strs("files", clash).Msg("config files share a name, skipping them")
			continue
		}
		path := filepath.Join(s.ConfigDir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			// removed between listing and reading, or unreadable for now
			continue
		}
		found[path] = blake3.Sum256(data)
	}
	return found, nil
}

// configName is the file name without its extension
func configName(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}

func (s *Supervisor) start(ctx context.Context, g *errgroup.Group, path string, fp [32]byte) *worker {
	ctx, cancel := context.WithCancel(ctx)
	w := &worker{fingerprint: fp, cancel: cancel, done: make(chan struct{})}
	g.Go(func() error {
		defer close(w.done)
		s.work(ctx, path)
		return nil
	})
	return w
}

// work keeps one config running until ctx is done
func (s *Supervisor) work(ctx context.Context, path string) {
	name := configName(path)

	logger := zerolog.Ctx(ctx).With().Str("config", name).Logger()
	logFile, err := os.OpenFile(filepath.Join(s.WorkDir, name+".log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		logger.Warn().Err(err).Msg("opening worker log, logging to supervisor only")
	} else {
		defer logFile.Close()
		logger = zerolog.New(logFile).With().Timestamp().Str("config", name).Logger()
	}
	ctx = logger.WithContext(ctx)

	respawn := s.Respawn
	if respawn <= 0 {
		respawn = DefaultRespawn
	}

	for {
		err := s.runConfig(ctx, path, filepath.Join(s.WorkDir, name))
		if ctx.Err() != nil {
			logger.Info().Msg("worker stopped")
			return
		}
		logger.Error().Err(err).Dur("respawn", respawn).Msg("worker failed")

		timer := time.NewTimer(respawn)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (s *Supervisor) runConfig(ctx context.Context, path, folder string) error {
	cfg, err := config.Load(ctx, path)
	if err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Str("site", cfg.String()).Str("folder", folder).Msg("worker started")

	newUpdater := s.NewUpdater
	if newUpdater == nil {
		newUpdater = s.siteUpdater
	}
	return Loop(ctx, newUpdater(cfg, folder), cfg.Interval())
}

func (s *Supervisor) siteUpdater(cfg *config.Config, folder string) Updater {
	runner := s.Runner
	if runner == nil {
		runner = &operate.ExecRunner{}
	}
	return &site.Site{Config: cfg, Folder: folder, Runner: runner}
}
