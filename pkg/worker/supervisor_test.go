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
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/ssgmirror/pkg/config"
	"github.com/walteh/ssgmirror/pkg/fault"
	"github.com/walteh/ssgmirror/pkg/site"
)

type recorder struct {
	mu      sync.Mutex
	starts  map[string]int
	running map[string]int
	folders map[string]string
}

func newRecorder() *recorder {
	return &recorder{starts: map[string]int{}, running: map[string]int{}, folders: map[string]string{}}
}

func (r *recorder) get(m map[string]int, key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return m[key]
}

// blockingUpdater stays in its first update until stopped
type blockingUpdater struct {
	r      *recorder
	domain string
}

func (u blockingUpdater) Update(ctx context.Context) (site.Report, error) {
	u.r.mu.Lock()
	u.r.starts[u.domain]++
	u.r.running[u.domain]++
	u.r.mu.Unlock()

	<-ctx.Done()

	u.r.mu.Lock()
	u.r.running[u.domain]--
	u.r.mu.Unlock()
	return site.Report{}, fault.Canceled(ctx)
}

func siteConfig(domain, extra string) string {
	return "domain: " + domain + "\nnew_domain: mirror." + domain + "\ngit: {name: m, email: e}\n" + extra
}

func TestSupervisor(t *testing.T) {
	configDir := t.TempDir()
	workDir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(configDir, name), []byte(content), 0o644))
	}

	write("a.yaml", siteConfig("a.org", ""))
	write("b.json", `{"domain": "b.org", "new_domain": "mirror.b.org", "git": {"name": "m", "email": "e"}}`)
	write("notes.txt", "not a config")

	r := newRecorder()
	sup := &Supervisor{
		ConfigDir: configDir,
		WorkDir:   workDir,
		Poll:      10 * time.Millisecond,
		Respawn:   10 * time.Millisecond,
		NewUpdater: func(cfg *config.Config, folder string) Updater {
			r.mu.Lock()
			r.folders[cfg.Domain] = folder
			r.mu.Unlock()
			return blockingUpdater{r: r, domain: cfg.Domain}
		},
	}

	ctx, cancel := context.WithCancel(zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background()))
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- sup.Run(ctx) }()

	eventually := func(cond func() bool, msg string) {
		t.Helper()
		require.Eventually(t, cond, 5*time.Second, 5*time.Millisecond, msg)
	}

	eventually(func() bool {
		return r.get(r.running, "a.org") == 1 && r.get(r.running, "b.org") == 1
	}, "both workers should start")

	r.mu.Lock()
	assert.Equal(t, filepath.Join(workDir, "a"), r.folders["a.org"], "site folder is named after the config")
	r.mu.Unlock()

	write("a.yaml", siteConfig("a.org", "update: 2h\n"))
	eventually(func() bool {
		return r.get(r.starts, "a.org") == 2 && r.get(r.running, "a.org") == 1
	}, "changed config should restart its worker")

	require.NoError(t, os.Remove(filepath.Join(configDir, "b.json")))
	eventually(func() bool {
		return r.get(r.running, "b.org") == 0
	}, "removed config should stop its worker")
	assert.Equal(t, 1, r.get(r.starts, "b.org"))

	write("bad.yaml", "domain: [")
	eventually(func() bool {
		b, err := os.ReadFile(filepath.Join(workDir, "bad.log"))
		return err == nil && strings.Count(string(b), "worker failed") >= 2
	}, "a broken config is respawned and logged to its own file")

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor did not stop")
	}
	assert.Equal(t, 0, r.get(r.running, "a.org"), "every worker is stopped on shutdown")
	assert.FileExists(t, filepath.Join(workDir, "a.log"))
}

func TestSupervisorRejectsMissingDirs(t *testing.T) {
	tests := []struct {
		name      string
		configDir func(t *testing.T) string
		workDir   func(t *testing.T) string
	}{
		{
			name:      "missing_config_dir",
			configDir: func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope") },
			workDir:   func(t *testing.T) string { return t.TempDir() },
		},
		{
			name:      "work_dir_is_file",
			configDir: func(t *testing.T) string { return t.TempDir() },
			workDir: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "file")
				require.NoError(t, os.WriteFile(path, nil, 0o644))
				return path
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sup := &Supervisor{ConfigDir: tt.configDir(t), WorkDir: tt.workDir(t)}
			require.Error(t, sup.Run(context.Background()))
		})
	}
}

func TestConfigGlob(t *testing.T) {
	assert.Equal(t, "*.{hcl,yaml,yml,json,toml}", configGlob)
}

func TestScanSkipsConfigsSharingAName(t *testing.T) {
	configDir := t.TempDir()
	for _, name := range []string{"a.yaml", "a.json", "b.toml", "c.hcl", "readme.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(configDir, name), []byte(name), 0o644))
	}

	sup := &Supervisor{ConfigDir: configDir}
	found, err := sup.scan(zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background()))
	require.NoError(t, err)

	var paths []string
	for path := range found {
		paths = append(paths, filepath.Base(path))
	}
	assert.ElementsMatch(t, []string{"b.toml", "c.hcl"}, paths, "a.yaml and a.json would share the folder a")
}
