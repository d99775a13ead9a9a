package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config models vigilnet.yml.
type Config struct {
	Game struct {
		Title string `yaml:"title"`
	} `yaml:"game"`
	// Classes maps a hero class to its starting defaults.
	Classes map[string]ClassDefaults `yaml:"classes"`
	// DMs lists usernames that get the dm role at login.
	DMs []string `yaml:"dms"`
}

type ClassDefaults struct {
	Followers int    `yaml:"followers"`
	Authority string `yaml:"authority"`
}

// Default returns the built-in game configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.Game.Title = "Vigilnet"
	cfg.Classes = map[string]ClassDefaults{
		"Hero":           {Followers: 100, Authority: "F"},
		"Celebrity":      {Followers: 1000, Authority: "F"},
		"Politician":     {Followers: 100, Authority: "E"},
		"Sleuth":         {Followers: 100, Authority: "F"},
		"Tycoon":         {Followers: 100, Authority: "F"},
		"Visionary":      {Followers: 100, Authority: "F"},
		"Mogul":          {Followers: 1000, Authority: "E"},
		"Mercenary":      {Followers: 100, Authority: "F"},
		"Champion":       {Followers: 1000, Authority: "F"},
		"Philanthropist": {Followers: 500, Authority: "E"},
	}
	return cfg
}

// Path returns the config file location for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, ".vigilnet", "vigilnet.yml")
}

// Load reads config from the workspace, falling back to defaults when the
// file does not exist.
func Load(workspace string) (*Config, error) {
	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

func FromYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Classes == nil {
		cfg.Classes = Default().Classes
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	for name, class := range c.Classes {
		if name == "" {
			return fmt.Errorf("config.classes contains an empty class name")
		}
		if class.Followers < 0 {
			return fmt.Errorf("class %s has negative followers", name)
		}
		if class.Authority == "" {
			return fmt.Errorf("class %s has no authority tier", name)
		}
	}
	for _, dm := range c.DMs {
		if dm == "" {
			return fmt.Errorf("config.dms contains an empty username")
		}
	}
	return nil
}

// ClassDefaultsFor returns a class's starting defaults, or the baseline
// (100 followers, tier F) for an unknown class.
func (c *Config) ClassDefaultsFor(class string) ClassDefaults {
	if d, ok := c.Classes[class]; ok {
		return d
	}
	return ClassDefaults{Followers: 100, Authority: "F"}
}

// IsDM reports whether the username is configured as a DM.
func (c *Config) IsDM(username string) bool {
	for _, dm := range c.DMs {
		if dm == username {
			return true
		}
	}
	return false
}
