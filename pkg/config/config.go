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

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/ssgmirror/pkg/fault"
	"github.com/walteh/ssgmirror/pkg/fsreplace"
	"github.com/walteh/ssgmirror/pkg/replace"
	"github.com/walteh/ssgmirror/pkg/stream"
	"gitlab.com/tozd/go/errors"
)

const (
	DefaultUpdate = time.Hour
	DefaultRoot   = "/"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse decodes the config from bytes. filename is used in messages.
	Parse(ctx context.Context, filename string, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// Extensions lists the config file extensions with a registered parser
var Extensions = []string{"hcl", "yaml", "yml", "json", "toml"}

// 👤 GitArgs is the identity used for snapshot commits
type GitArgs struct {
	Name  string `json:"name" yaml:"name" toml:"name"`
	Email string `json:"email" yaml:"email" toml:"email"`
}

// 🚀 NetlifyArgs configures deployment of the mirror
type NetlifyArgs struct {
	SiteID     string `json:"site_id" yaml:"site_id" toml:"site_id"`
	AuthToken  string `json:"auth_token" yaml:"auth_token" toml:"auth_token"`
	Production bool   `json:"production,omitempty" yaml:"production,omitempty" toml:"production"`
	// Config is written verbatim to netlify.toml when set
	Config string `json:"config,omitempty" yaml:"config,omitempty" toml:"config"`
}

// 🔄 RuleArgs is an extra regex rewrite applied after the link rules
type RuleArgs struct {
	Files   []string `json:"files,omitempty" yaml:"files,omitempty" toml:"files"` // doublestar globs, all files if empty
	Pattern string   `json:"pattern" yaml:"pattern" toml:"pattern"`                // RE2 expression
	Replace string   `json:"replace" yaml:"replace" toml:"replace"`                // template with $1 / ${name}
}

// 📚 Config describes one mirrored site
type Config struct {
	Domain    string       `json:"domain" yaml:"domain" toml:"domain"`
	NewDomain string       `json:"new_domain" yaml:"new_domain" toml:"new_domain"`
	HTTPS     *bool        `json:"https,omitempty" yaml:"https,omitempty" toml:"https"`
	Roots     []string     `json:"roots,omitempty" yaml:"roots,omitempty" toml:"roots"`
	Update    string       `json:"update,omitempty" yaml:"update,omitempty" toml:"update"`
	Git       GitArgs      `json:"git" yaml:"git" toml:"git"`
	Netlify   *NetlifyArgs `json:"netlify,omitempty" yaml:"netlify,omitempty" toml:"netlify"`
	Rules     []RuleArgs   `json:"rules,omitempty" yaml:"rules,omitempty" toml:"rules"`
	ChunkSize int          `json:"chunk_size,omitempty" yaml:"chunk_size,omitempty" toml:"chunk_size"`

	location string
	interval time.Duration
	compiled []*regexp.Regexp
}

// 🎯 Load loads and validates the configuration at path
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fault.New(fault.Config, path, errors.Errorf("reading config file: %w", err))
	}

	p := GetParser(path)
	if p == nil {
		return nil, fault.New(fault.Config, path, errors.Errorf("no parser for extension %q", filepath.Ext(path)))
	}

	cfg, err := p.Parse(ctx, path, data)
	if err != nil {
		return nil, fault.New(fault.Config, path, err)
	}
	cfg.location = path

	if err := cfg.Validate(); err != nil {
		return nil, fault.New(fault.Config, path, errors.Errorf("validating config: %w", err))
	}

	return cfg, nil
}

// 🔍 Validate checks the configuration and fills in defaults
func (cfg *Config) Validate() error {
	if cfg.Domain == "" {
		return errors.New("domain is required")
	}
	if strings.Contains(cfg.Domain, "/") {
		return errors.Errorf("domain %q must be a bare host name", cfg.Domain)
	}
	if cfg.NewDomain == "" {
		return errors.New("new_domain is required")
	}
	if cfg.Git.Name == "" || cfg.Git.Email == "" {
		return errors.New("git.name and git.email are required")
	}
	if n := cfg.Netlify; n != nil && (n.SiteID == "" || n.AuthToken == "") {
		return errors.New("netlify.site_id and netlify.auth_token are required")
	}

	if cfg.HTTPS == nil {
		https := true
		cfg.HTTPS = &https
	}
	if len(cfg.Roots) == 0 {
		cfg.Roots = []string{DefaultRoot}
	}
	for _, root := range cfg.Roots {
		if !strings.HasPrefix(root, "/") {
			return errors.Errorf("root %q must start with /", root)
		}
	}

	cfg.interval = DefaultUpdate
	if cfg.Update != "" {
		d, err := time.ParseDuration(cfg.Update)
		if err != nil {
			return errors.Errorf("parsing update interval: %w", err)
		}
		if d <= 0 {
			return errors.Errorf("update interval %s must be positive", d)
		}
		cfg.interval = d
	}

	if cfg.ChunkSize < 0 {
		return errors.Errorf("chunk_size %d must not be negative", cfg.ChunkSize)
	}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = stream.DefaultChunkSize
	}

	cfg.compiled = cfg.compiled[:0]
	for i, r := range cfg.Rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return errors.Errorf("rules[%d].pattern: %w", i, err)
		}
		for _, g := range r.Files {
			if !doublestar.ValidatePattern(g) {
				return errors.Errorf("rules[%d].files: invalid glob %q", i, g)
			}
		}
		cfg.compiled = append(cfg.compiled, re)
	}

	return nil
}

// Location is the file the config was loaded from, empty if built in code
func (cfg *Config) Location() string {
	return cfg.location
}

// Name identifies the site, the config file name without its extension
func (cfg *Config) Name() string {
	if cfg.location == "" {
		return cfg.Domain
	}
	base := filepath.Base(cfg.location)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (cfg *Config) scheme() string {
	if cfg.HTTPS != nil && !*cfg.HTTPS {
		return "http"
	}
	return "https"
}

// 🌐 URLs returns the addresses to download, one per root
func (cfg *Config) URLs() []string {
	site := cfg.scheme() + "://" + cfg.Domain
	urls := make([]string, 0, len(cfg.Roots))
	for _, root := range cfg.Roots {
		urls = append(urls, site+root)
	}
	return urls
}

// NewURL is the address the mirror is published under
func (cfg *Config) NewURL() string {
	if strings.Contains(cfg.NewDomain, "://") {
		return strings.TrimRight(cfg.NewDomain, "/")
	}
	return cfg.scheme() + "://" + strings.TrimRight(cfg.NewDomain, "/")
}

// ⏱️ Interval is the pause between two updates
func (cfg *Config) Interval() time.Duration {
	if cfg.interval == 0 {
		return DefaultUpdate
	}
	return cfg.interval
}

// 🧩 FileRules turns the configured extra rules into file rules. Validate
// must have succeeded first.
func (cfg *Config) FileRules() []fsreplace.FileRule {
	out := make([]fsreplace.FileRule, 0, len(cfg.compiled))
	for i, re := range cfg.compiled {
		args := cfg.Rules[i]
		var match fsreplace.Predicate = fsreplace.Any
		if len(args.Files) > 0 {
			match = fsreplace.Glob(args.Files...)
		}
		out = append(out, fsreplace.FileRule{
			Name:  fmt.Sprintf("rules[%d]", i),
			Match: match,
			Rules: []replace.Rule{replace.NewRule(replace.Regexp(re), replace.Expand(re, args.Replace))},
		})
	}
	return out
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%s -> %s every %s", strings.Join(cfg.URLs(), ","), cfg.NewURL(), cfg.Interval())
}
