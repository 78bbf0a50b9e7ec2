package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"time"

	"github.com/fwojciec/roster"
	"github.com/fwojciec/roster/harvest"
	"gopkg.in/yaml.v3"
)

// FileConfig is the content of a --config file. Command-line flags take
// precedence over it.
type FileConfig struct {
	Harvest harvest.Config `yaml:"harvest"`
	Browser BrowserConfig  `yaml:"browser"`
}

// BrowserConfig configures the browser session of the harvest command.
type BrowserConfig struct {
	Headful        bool          `yaml:"headful"`
	ProfileDir     string        `yaml:"profile_dir"`
	Remote         string        `yaml:"remote"`
	Open           string        `yaml:"open"`
	WaitTimeout    time.Duration `yaml:"wait_timeout"`
	ListSelectors  []string      `yaml:"list_selectors"`
	ItemSelectors  []string      `yaml:"item_selectors"`
	GroupSelectors []string      `yaml:"group_selectors"`
}

// LoadConfig reads a YAML configuration file. An empty path yields the zero
// FileConfig. Unknown keys are rejected.
func LoadConfig(path string) (FileConfig, error) {
	var cfg FileConfig
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, roster.Errorf(roster.EINVALID, "read config: %v", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return FileConfig{}, roster.Errorf(roster.EINVALID, "parse config %s: %v", path, err)
	}
	return cfg, nil
}

// browserConfig overlays the command's flags on the file settings.
func (c *HarvestCmd) browserConfig(file BrowserConfig) BrowserConfig {
	bc := file
	if c.Headful {
		bc.Headful = true
	}
	if c.ProfileDir != "" {
		bc.ProfileDir = c.ProfileDir
	}
	if c.Remote != "" {
		bc.Remote = c.Remote
	}
	if c.Open != "" {
		bc.Open = c.Open
	}
	if c.Wait > 0 {
		bc.WaitTimeout = c.Wait
	}
	if len(c.List) > 0 {
		bc.ListSelectors = c.List
	}
	if len(c.Item) > 0 {
		bc.ItemSelectors = c.Item
	}
	if len(c.Group) > 0 {
		bc.GroupSelectors = c.Group
	}
	return bc
}

// harvestConfig overlays the command's flags on the file settings.
func (c *HarvestCmd) harvestConfig(file harvest.Config) harvest.Config {
	cfg := file
	if c.Attempts > 0 {
		cfg.Attempts = c.Attempts
	}
	if c.MaxItems > 0 {
		cfg.MaxItems = c.MaxItems
	}
	return cfg
}
