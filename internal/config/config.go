// Package config loads the merger's YAML run configuration.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type LogConfig struct {
	Directory  string `yaml:"directory"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	MaxBackups int    `yaml:"maxBackups"`
	Compress   bool   `yaml:"compress"`
}

type Config struct {
	InputDir         string    `yaml:"inputDir"`
	OutputDir        string    `yaml:"outputDir"`
	DoneDir          string    `yaml:"doneDir"`
	ToleranceSeconds int       `yaml:"toleranceSeconds"`
	OutputEncoding   string    `yaml:"outputEncoding"`
	ChunkSizeKB      int       `yaml:"chunkSizeKB"`
	Lang             string    `yaml:"lang"`
	Logs             LogConfig `yaml:"logs"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	cfg := Config{}
	cfg.applyDefaults("")
	return cfg
}

// Load parses the YAML file at path. Relative directories are resolved
// against the config file's own directory, and absent fields take defaults.
func Load(path string) (Config, error) {
	var cfg Config
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults(filepath.Dir(path))
	return cfg, nil
}

func (c *Config) applyDefaults(baseDir string) {
	resolve := func(p, fallback string) string {
		p = strings.TrimSpace(p)
		if p == "" {
			p = fallback
		}
		if filepath.IsAbs(p) || baseDir == "" {
			return filepath.Clean(p)
		}
		return filepath.Clean(filepath.Join(baseDir, p))
	}
	c.InputDir = resolve(c.InputDir, ".")
	c.OutputDir = resolve(c.OutputDir, "output")
	c.DoneDir = resolve(c.DoneDir, "done")
	if c.ToleranceSeconds <= 0 {
		c.ToleranceSeconds = 900
	}
	if c.OutputEncoding == "" {
		c.OutputEncoding = "utf-8"
	}
	if c.ChunkSizeKB <= 0 {
		c.ChunkSizeKB = 64
	}
	if c.Lang == "" {
		c.Lang = "en"
	}
	if c.Logs.Directory == "" {
		c.Logs.Directory = filepath.Join(c.OutputDir, "logs")
	} else {
		c.Logs.Directory = resolve(c.Logs.Directory, c.Logs.Directory)
	}
	if c.Logs.MaxSizeMB <= 0 {
		c.Logs.MaxSizeMB = 25
	}
	if c.Logs.MaxAgeDays <= 0 {
		c.Logs.MaxAgeDays = 7
	}
	if c.Logs.MaxBackups <= 0 {
		c.Logs.MaxBackups = 5
	}
}
