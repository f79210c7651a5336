package main

import (
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/walteh/sqlshift/pkg/presto"
	"github.com/walteh/sqlshift/pkg/rewrite"
)

// Config selects the rewrite pipeline and the files it runs over.
type Config struct {
	// Stage names to run, in order
	Stages []string `json:"stages,omitempty" yaml:"stages,omitempty" hcl:"stages,optional"`
	// Globs of input files, doublestar syntax
	Include []string `json:"include,omitempty" yaml:"include,omitempty" hcl:"include,optional"`
	// Directory rewritten files are written to; stdout when empty
	OutDir string `json:"out_dir,omitempty" yaml:"out_dir,omitempty" hcl:"out_dir,optional"`
}

func defaultConfig() *Config {
	return &Config{Stages: []string{"presto"}}
}

// loadConfig reads a YAML or HCL config file, chosen by extension.
func loadConfig(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	cfg := &Config{}
	if strings.HasSuffix(path, ".hcl") {
		file, diags := hclparse.NewParser().ParseHCL(data, path)
		if diags.HasErrors() {
			return nil, errors.Errorf("parsing hcl config: %w", diags)
		}
		if diags := gohcl.DecodeBody(file.Body, nil, cfg); diags.HasErrors() {
			return nil, errors.Errorf("decoding hcl config: %w", diags)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Errorf("parsing yaml config: %w", err)
		}
	}

	if len(cfg.Stages) == 0 {
		cfg.Stages = []string{"presto"}
	}
	return cfg, nil
}

// factories resolves the configured stage names into stage constructors.
func (c *Config) factories() ([]rewrite.StageFactory, error) {
	out := make([]rewrite.StageFactory, 0, len(c.Stages))
	for _, name := range c.Stages {
		switch strings.ToLower(name) {
		case "presto":
			out = append(out, presto.Stage)
		default:
			return nil, errors.Errorf("unknown stage %q", name)
		}
	}
	return out, nil
}
