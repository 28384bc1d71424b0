// Package config loads server configuration from an optional YAML file and
// fills unset fields with defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries every tunable the server process needs at startup.
type Config struct {
	TelnetAddr    string        `yaml:"telnet_addr"`
	WebsocketAddr string        `yaml:"websocket_addr"`
	DatabasePath  string        `yaml:"database_path"`
	AreasPath     string        `yaml:"areas_path"`
	PidFile       string        `yaml:"pid_file"`
	AdminAccount  string        `yaml:"admin_account"`
	TickInterval  time.Duration `yaml:"tick_interval"`
	ResetInterval time.Duration `yaml:"reset_interval"`
	TickBudget    time.Duration `yaml:"tick_budget"`
}

// Default returns the configuration used when no file or flags override it.
func Default() *Config {
	return &Config{
		TelnetAddr:    ":4000",
		WebsocketAddr: "",
		DatabasePath:  "data/cindermud.db",
		AreasPath:     "data/areas",
		PidFile:       "data/cindermud.pid",
		AdminAccount:  "admin",
		TickInterval:  250 * time.Millisecond,
		ResetInterval: 10 * time.Minute,
		TickBudget:    time.Second,
	}
}

// UnmarshalYAML decodes the config by hand because yaml.v3 cannot parse
// "250ms" style strings into time.Duration fields.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	type rawConfig struct {
		TelnetAddr    string `yaml:"telnet_addr"`
		WebsocketAddr string `yaml:"websocket_addr"`
		DatabasePath  string `yaml:"database_path"`
		AreasPath     string `yaml:"areas_path"`
		PidFile       string `yaml:"pid_file"`
		AdminAccount  string `yaml:"admin_account"`
		TickInterval  string `yaml:"tick_interval"`
		ResetInterval string `yaml:"reset_interval"`
		TickBudget    string `yaml:"tick_budget"`
	}
	var raw rawConfig
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.TelnetAddr != "" {
		c.TelnetAddr = raw.TelnetAddr
	}
	if raw.WebsocketAddr != "" {
		c.WebsocketAddr = raw.WebsocketAddr
	}
	if raw.DatabasePath != "" {
		c.DatabasePath = raw.DatabasePath
	}
	if raw.AreasPath != "" {
		c.AreasPath = raw.AreasPath
	}
	if raw.PidFile != "" {
		c.PidFile = raw.PidFile
	}
	if raw.AdminAccount != "" {
		c.AdminAccount = raw.AdminAccount
	}
	for _, field := range []struct {
		raw  string
		name string
		dst  *time.Duration
	}{
		{raw.TickInterval, "tick_interval", &c.TickInterval},
		{raw.ResetInterval, "reset_interval", &c.ResetInterval},
		{raw.TickBudget, "tick_budget", &c.TickBudget},
	} {
		if field.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(field.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
		*field.dst = parsed
	}
	return nil
}

// Load reads the YAML file at path on top of the defaults. A missing file is
// not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) fillDefaults() {
	def := Default()
	if c.TelnetAddr == "" {
		c.TelnetAddr = def.TelnetAddr
	}
	if c.DatabasePath == "" {
		c.DatabasePath = def.DatabasePath
	}
	if c.AreasPath == "" {
		c.AreasPath = def.AreasPath
	}
	if c.PidFile == "" {
		c.PidFile = def.PidFile
	}
	if c.AdminAccount == "" {
		c.AdminAccount = def.AdminAccount
	}
	if c.TickInterval <= 0 {
		c.TickInterval = def.TickInterval
	}
	if c.ResetInterval <= 0 {
		c.ResetInterval = def.ResetInterval
	}
	if c.TickBudget <= 0 {
		c.TickBudget = def.TickBudget
	}
}
