package config

import (
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvPrefix       = "SCHEDCHAT"
	DefaultBaseURL  = "http://127.0.0.1:8000"
	DefaultMockAddr = "127.0.0.1:8000"
)

var (
	Dev      bool
	LogPath  string
	BaseURL  string
	Stream   bool
	Mock     bool
	MockAddr string
)

type Config struct {
	Dev      bool
	LogPath  string
	BaseURL  string
	Stream   bool
	Mock     bool
	MockAddr string
}

// Init resolves the configuration from os.Args and publishes it through the
// package variables.
func Init() {
	cfg, err := Load(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	Dev = cfg.Dev
	LogPath = cfg.LogPath
	BaseURL = cfg.BaseURL
	Stream = cfg.Stream
	Mock = cfg.Mock
	MockAddr = cfg.MockAddr
}

// Load applies defaults, then SCHEDCHAT_* environment variables (a .env file
// in the working directory is loaded first), then command line flags.
func Load(args []string) (*Config, error) {
	// a missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetDefault("dev", false)
	v.SetDefault("log_path", "")
	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("stream", true)
	v.SetDefault("mock", false)
	v.SetDefault("mock_addr", DefaultMockAddr)

	cfg := &Config{}
	fs := flag.NewFlagSet("schedchat", flag.ContinueOnError)
	fs.BoolVar(&cfg.Dev, "dev", v.GetBool("dev"), "Development mode")
	fs.StringVar(&cfg.LogPath, "logPath", v.GetString("log_path"), "Path to save the log file")
	fs.StringVar(&cfg.BaseURL, "baseURL", v.GetString("base_url"), "Base URL of the chat service")
	fs.BoolVar(&cfg.Stream, "stream", v.GetBool("stream"), "Stream responses instead of waiting for the full document")
	fs.BoolVar(&cfg.Mock, "mock", v.GetBool("mock"), "Start a local mock chat service")
	fs.StringVar(&cfg.MockAddr, "mockAddr", v.GetString("mock_addr"), "Listen address of the mock chat service")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base url %q: %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base url %q must use http or https", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("base url %q has no host", c.BaseURL)
	}
	if c.Mock && c.MockAddr == "" {
		return fmt.Errorf("mock mode needs a listen address")
	}
	return nil
}
