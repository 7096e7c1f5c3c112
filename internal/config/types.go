package config

import "fmt"

// Config is the top-level molscope configuration, corresponding to .molscope.yml.
type Config struct {
	Title    string        `yaml:"title" koanf:"title"`
	Host     string        `yaml:"host" koanf:"host"`
	Port     int           `yaml:"port" koanf:"port"`
	DataDir  string        `yaml:"data_dir" koanf:"data_dir"`
	Datasets []string      `yaml:"datasets" koanf:"datasets"`
	Exclude  []string      `yaml:"exclude" koanf:"exclude"`
	Database string        `yaml:"database" koanf:"database"`
	Convert  ConvertConfig `yaml:"convert" koanf:"convert"`
}

// ConvertConfig holds defaults for the convert command.
type ConvertConfig struct {
	// Cutoff is the spherical cutoff in angstroms used when generating
	// atom-centered environments.
	Cutoff float64 `yaml:"cutoff" koanf:"cutoff"`
	// Compress writes gzip-compressed output by default.
	Compress bool `yaml:"compress" koanf:"compress"`
}

// Addr returns the host:port the server should listen on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
