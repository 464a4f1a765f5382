package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Listen  string       `yaml:"listen" json:"listen"`
	DataDir string       `yaml:"data_dir" json:"data_dir"`
	Remote  RemoteConfig `yaml:"remote" json:"remote"`
	View    ViewConfig   `yaml:"view" json:"view"`
}

type RemoteConfig struct {
	URL   string `yaml:"url" json:"url"`
	Limit int    `yaml:"limit" json:"limit"`
}

type ViewConfig struct {
	PageSize int `yaml:"page_size" json:"page_size"`
}

func (c *Config) ApplyDefaults() {
	if c.Listen == "" {
		c.Listen = ":8484"
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.Remote.URL == "" {
		c.Remote.URL = "https://jsonplaceholder.typicode.com/todos"
	}
	if c.Remote.Limit == 0 {
		c.Remote.Limit = 50
	}
	if c.View.PageSize == 0 {
		c.View.PageSize = 9
	}
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.ApplyDefaults()
	return &c, nil
}

// Default returns the built-in configuration used when no config file exists.
func Default() *Config {
	var c Config
	c.ApplyDefaults()
	return &c
}
