package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"gigmaster/watcher"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const envPrefix = "GIGMASTER"

type GigmasterConfig struct {
	HttpListenAddr string         `yaml:"httpListenAddr" mapstructure:"httpListenAddr"`
	LogLevel       string         `yaml:"logLevel" mapstructure:"logLevel"`
	Library        LibraryConfig  `yaml:"library" mapstructure:"library"`
	Frontend       FrontendConfig `yaml:"frontend" mapstructure:"frontend"`
	Journal        JournalConfig  `yaml:"journal" mapstructure:"journal"`
}

func (c *GigmasterConfig) Write(dst io.Writer) error {
	return yaml.NewEncoder(dst).Encode(&c)
}

type LibraryConfig struct {
	Root     string        `yaml:"root" mapstructure:"root"`
	BaseUrl  string        `yaml:"baseUrl" mapstructure:"baseUrl"`
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
}

type FrontendConfig struct {
	Dist string `yaml:"dist" mapstructure:"dist"`
}

type JournalConfig struct {
	// DB is the sqlite file of the scan journal. Empty disables the journal.
	DB string `yaml:"db" mapstructure:"db"`
}

// flagKeys maps command line flags to config keys.
var flagKeys = map[string]string{
	"listen":    "httpListenAddr",
	"log-level": "logLevel",
	"root":      "library.root",
	"base-url":  "library.baseUrl",
	"debounce":  "library.debounce",
	"frontend":  "frontend.dist",
	"db":        "journal.db",
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("gigmaster", pflag.ContinueOnError)

	fs.StringP("config", "c", "", "config file (yaml)")
	fs.Bool("print-config", false, "print the effective config and exit")

	fs.StringP("listen", "l", ":3000", "http listen address")
	fs.String("log-level", "info", "log level: debug, info, warn, error")
	fs.StringP("root", "r", "lyrics", "library root directory")
	fs.String("base-url", "", "public base url of the backing tracks, empty for relative urls")
	fs.Duration("debounce", watcher.DefaultDebounce, "coalesce library changes within this window")
	fs.String("frontend", "frontend/dist", "prebuilt frontend directory")
	fs.String("db", "gigmaster.db", "scan journal sqlite file, empty to disable")

	return fs
}

// LoadConfig reads the config from (lowest to highest priority):
// flag defaults, the config file, GIGMASTER_* env vars, flags given on the command line.
func LoadConfig(args []string) (*GigmasterConfig, *pflag.FlagSet, error) {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	v := viper.New()
	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, nil, fmt.Errorf("LoadConfig: BindPFlag %s failed: %w", flag, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, fmt.Errorf("LoadConfig: ReadInConfig failed: %w", err)
		}
	}

	cfg := new(GigmasterConfig)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, nil, fmt.Errorf("LoadConfig: Unmarshal failed: %w", err)
	}
	return cfg, fs, nil
}
