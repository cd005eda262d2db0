package internal

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultExternalClasses are the Jack OS classes, always callable by class name.
var DefaultExternalClasses = []string{"Math", "String", "Array", "Output", "Screen", "Keyboard", "Memory", "Sys"}

// Config controls a compiler run. It can be loaded from a yaml file, the command line
// flags override what the file says.
type Config struct {
	LogLevel  string `yaml:"log_level"`
	KeepGoing bool   `yaml:"keep_going"`
	Verify    bool   `yaml:"verify"`
	Strict    bool   `yaml:"strict"`
	// Classes which may qualify a call without being declared in strict mode.
	ExternalClasses []string `yaml:"external_classes"`
}

func DefaultConfig() Config {
	return Config{
		LogLevel:        logrus.InfoLevel.String(),
		ExternalClasses: append([]string(nil), DefaultExternalClasses...),
	}
}

// LoadConfig reads a yaml config, fields missing from the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	_, err = cfg.Level()
	return cfg, err
}

// Level parses LogLevel, an empty level means info.
func (cfg Config) Level() (logrus.Level, error) {
	if cfg.LogLevel == "" {
		return logrus.InfoLevel, nil
	}
	return logrus.ParseLevel(cfg.LogLevel)
}

// engineOptions translates the config into options for each class compiled.
func (cfg Config) engineOptions(logger *logrus.Entry) []EngineOption {
	opts := []EngineOption{WithLogger(logger)}
	if cfg.Strict {
		opts = append(opts, WithExternalClasses(cfg.ExternalClasses))
	}
	return opts
}
