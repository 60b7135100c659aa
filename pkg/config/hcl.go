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
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".hcl")
}

// 📝 Parse parses the config from HCL. Expressions may use env("NAME")
// to read an environment variable, so secrets need not live in the file.
func (p *HCLParser) Parse(ctx context.Context, filename string, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
		Functions: functions(),
	}

	// Define HCL schema
	type hclConfig struct {
		Domain    string   `hcl:"domain"`
		NewDomain string   `hcl:"new_domain"`
		HTTPS     *bool    `hcl:"https,optional"`
		Roots     []string `hcl:"roots,optional"`
		Update    string   `hcl:"update,optional"`
		ChunkSize int      `hcl:"chunk_size,optional"`
		Git       struct {
			Name  string `hcl:"name"`
			Email string `hcl:"email"`
		} `hcl:"git,block"`
		Netlify *struct {
			SiteID     string `hcl:"site_id"`
			AuthToken  string `hcl:"auth_token"`
			Production bool   `hcl:"production,optional"`
			Config     string `hcl:"config,optional"`
		} `hcl:"netlify,block"`
		Rules []struct {
			Files   []string `hcl:"files,optional"`
			Pattern string   `hcl:"pattern"`
			Replace string   `hcl:"replace"`
		} `hcl:"rule,block"`
	}

	// Decode HCL
	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	cfg := &Config{
		Domain:    hclCfg.Domain,
		NewDomain: hclCfg.NewDomain,
		HTTPS:     hclCfg.HTTPS,
		Roots:     hclCfg.Roots,
		Update:    hclCfg.Update,
		ChunkSize: hclCfg.ChunkSize,
		Git: GitArgs{
			Name:  hclCfg.Git.Name,
			Email: hclCfg.Git.Email,
		},
	}

	if n := hclCfg.Netlify; n != nil {
		cfg.Netlify = &NetlifyArgs{
			SiteID:     n.SiteID,
			AuthToken:  n.AuthToken,
			Production: n.Production,
			Config:     n.Config,
		}
	}
	for _, r := range hclCfg.Rules {
		cfg.Rules = append(cfg.Rules, RuleArgs{
			Files:   r.Files,
			Pattern: r.Pattern,
			Replace: r.Replace,
		})
	}

	return cfg, nil
}

// functions available to HCL expressions
func functions() map[string]function.Function {
	return map[string]function.Function{
		"env": function.New(&function.Spec{
			Params: []function.Parameter{{Name: "name", Type: cty.String}},
			Type:   function.StaticReturnType(cty.String),
			Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
				return cty.StringVal(os.Getenv(args[0].AsString())), nil
			},
		}),
	}
}
