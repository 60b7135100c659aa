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

package operate

import (
	"context"
	"os"
	"path/filepath"

	"github.com/walteh/ssgmirror/pkg/fault"
	"gitlab.com/tozd/go/errors"
)

// wgetMirrorFlags download a site with everything needed to browse it offline
var wgetMirrorFlags = []string{
	"--recursive",
	"--adjust-extension",
	"-e", "robots=off",
	"--no-proxy",
	"--no-cache",
	"--no-check-certificate",
	"--page-requisites",
	"--html-extension",
	"--convert-links",
	"--restrict-file-names=windows",
	"--no-verbose",
}

// 📂 Dir runs operations relative to a directory
type Dir struct {
	Path   string
	Runner Runner
}

// In returns a Dir for path using runner
func In(path string, runner Runner) Dir {
	return Dir{Path: path, Runner: runner}
}

// Cd returns a Dir for a path below d
func (d Dir) Cd(parts ...string) Dir {
	return Dir{Path: d.Join(parts...), Runner: d.Runner}
}

// Join returns the path of parts below d
func (d Dir) Join(parts ...string) string {
	return filepath.Join(append([]string{d.Path}, parts...)...)
}

// Exec runs name in d
func (d Dir) Exec(ctx context.Context, name string, args ...string) (Output, error) {
	return d.Runner.Run(ctx, d.Path, name, args...)
}

// Git runs git in d
func (d Dir) Git(ctx context.Context, args ...string) (Output, error) {
	return d.Exec(ctx, "git", args...)
}

// 🔍 Exists reports whether the path of parts below d exists
func (d Dir) Exists(ctx context.Context, parts ...string) (bool, error) {
	if err := fault.Canceled(ctx); err != nil {
		return false, err
	}
	_, err := os.Lstat(d.Join(parts...))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Errorf("checking %s: %w", d.Join(parts...), err)
}

// Mkdir creates the directory of parts below d with its parents
func (d Dir) Mkdir(ctx context.Context, parts ...string) error {
	if err := fault.Canceled(ctx); err != nil {
		return err
	}
	if err := os.MkdirAll(d.Join(parts...), 0o755); err != nil {
		return errors.Errorf("creating %s: %w", d.Join(parts...), err)
	}
	return nil
}

// ✍️ Write stores data in the file of parts below d
func (d Dir) Write(ctx context.Context, parts []string, data []byte) error {
	if err := fault.Canceled(ctx); err != nil {
		return err
	}
	path := d.Join(parts...)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fault.New(fault.SinkWrite, path, err)
	}
	return nil
}

// 🚚 Move renames the entry of parts below d to the same relative place
// below target.
func (d Dir) Move(ctx context.Context, parts []string, target string) error {
	if err := fault.Canceled(ctx); err != nil {
		return err
	}
	from := d.Join(parts...)
	to := filepath.Join(append([]string{target}, parts...)...)
	if err := os.Rename(from, to); err != nil {
		return errors.Errorf("moving %s to %s: %w", from, to, err)
	}
	return nil
}

// 🌐 Download mirrors urls into d with wget. Every host ends up in a
// directory named after it.
func (d Dir) Download(ctx context.Context, urls ...string) (Output, error) {
	args := append(append([]string{}, wgetMirrorFlags...), urls...)
	return d.Exec(ctx, "wget", args...)
}

// 🚀 Deploy configures a netlify deployment
type Deploy struct {
	AuthToken  string
	Production bool
	// Command is the netlify CLI, "netlify" from PATH if empty
	Command string
}

// DeployNetlify publishes the contents of d
func (d Dir) DeployNetlify(ctx context.Context, deploy Deploy) (Output, error) {
	command := deploy.Command
	if command == "" {
		command = "netlify"
	}
	args := []string{"deploy", "--dir", d.Path, "--auth", deploy.AuthToken, "--json"}
	if deploy.Production {
		args = append(args, "--prod")
	}
	return d.Exec(ctx, command, args...)
}
