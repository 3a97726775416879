package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	httpproto "github.com/NamanBalaji/mirrordl/pkg/protocol/http"
)

var ErrInvalidConfig = errors.New("invalid config")

const (
	appName        = "mirrordl"
	configFileName = "config.yaml"

	dialTimeout           = 30 * time.Second
	tlsHandshakeTimeout   = 10 * time.Second
	responseHeaderTimeout = 30 * time.Second
	maxRedirects          = 10
)

// flagConfig stores the parsed values from the cli flags.
type flagConfig struct {
	urls        *string
	title       *string
	downloadDir *string
	debug       *bool
	history     *bool
}

// Config holds the configuration options for the application.
type Config struct {
	// Set from flags only.
	Urls        []string `yaml:"-"`
	Title       string   `yaml:"-"`
	ShowHistory bool     `yaml:"-"`

	DownloadDir string `yaml:"dir,omitempty"`
	TempDir     string `yaml:"tempDir,omitempty"`
	ExtractDir  string `yaml:"extractDir,omitempty"`
	CacheDir    string `yaml:"cacheDir,omitempty"`

	WarnTags     []string `yaml:"warnTags,omitempty"`
	WarnPrefixes []string `yaml:"warnPrefixes,omitempty"`

	LogToFile   bool   `yaml:"logToFile,omitempty"`
	Debug       bool   `yaml:"debug,omitempty"`
	HistoryPath string `yaml:"history,omitempty"`

	HTTP *HTTPConfig `yaml:"http,omitempty"`
}

// HTTPConfig holds transport options.
type HTTPConfig struct {
	UserAgent             string            `yaml:"userAgent,omitempty"`
	Headers               map[string]string `yaml:"headers,omitempty"`
	DialTimeout           time.Duration     `yaml:"dialTimeout,omitempty"`
	TLSHandshakeTimeout   time.Duration     `yaml:"tlsHandshakeTimeout,omitempty"`
	ResponseHeaderTimeout time.Duration     `yaml:"responseHeaderTimeout,omitempty"`
	MaxRedirects          int               `yaml:"maxRedirects,omitempty"`
}

// Path is where GetConfig looks for the YAML file.
func Path() string {
	return filepath.Join(xdg.ConfigHome, appName, configFileName)
}

// GetConfig reads the configuration file and returns a Config struct.
// If the configuration file does not exist, it uses default configuration
// but STILL applies CLI flags.
func GetConfig() (*Config, error) {
	defaults := DefaultConfig()

	var cfg Config

	b, err := os.ReadFile(Path())
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if len(b) > 0 {
		err = yaml.Unmarshal(b, &cfg)
		if err != nil {
			return nil, err
		}
	}

	httpCfg := zeroOr(cfg.HTTP, defaults.HTTP)

	conf := Config{
		DownloadDir:  zeroOr(cfg.DownloadDir, defaults.DownloadDir),
		TempDir:      zeroOr(cfg.TempDir, defaults.TempDir),
		ExtractDir:   zeroOr(cfg.ExtractDir, defaults.ExtractDir),
		CacheDir:     zeroOr(cfg.CacheDir, defaults.CacheDir),
		WarnTags:     zeroOr(cfg.WarnTags, defaults.WarnTags),
		WarnPrefixes: zeroOr(cfg.WarnPrefixes, defaults.WarnPrefixes),
		LogToFile:    cfg.LogToFile,
		Debug:        cfg.Debug,
		HistoryPath:  zeroOr(cfg.HistoryPath, defaults.HistoryPath),
		HTTP: &HTTPConfig{
			UserAgent:             zeroOr(httpCfg.UserAgent, defaults.HTTP.UserAgent),
			Headers:               httpCfg.Headers,
			DialTimeout:           zeroOr(httpCfg.DialTimeout, defaults.HTTP.DialTimeout),
			TLSHandshakeTimeout:   zeroOr(httpCfg.TLSHandshakeTimeout, defaults.HTTP.TLSHandshakeTimeout),
			ResponseHeaderTimeout: zeroOr(httpCfg.ResponseHeaderTimeout, defaults.HTTP.ResponseHeaderTimeout),
			MaxRedirects:          zeroOr(httpCfg.MaxRedirects, defaults.HTTP.MaxRedirects),
		},
	}

	conf.applyFlagsToConfig()

	if err := conf.validate(); err != nil {
		return nil, err
	}

	return &conf, nil
}

func DefaultConfig() Config {
	downloadDir := filepath.Join(xdg.UserDirs.Download, appName)

	return Config{
		DownloadDir: downloadDir,
		TempDir:     filepath.Join(os.TempDir(), appName),
		ExtractDir:  filepath.Join(downloadDir, "extracted"),
		CacheDir:    filepath.Join(xdg.CacheHome, appName),
		HistoryPath: filepath.Join(xdg.DataHome, appName, "history.db"),
		HTTP: &HTTPConfig{
			UserAgent:             httpproto.DefaultConfig().DefaultHeaders["User-Agent"],
			DialTimeout:           dialTimeout,
			TLSHandshakeTimeout:   tlsHandshakeTimeout,
			ResponseHeaderTimeout: responseHeaderTimeout,
			MaxRedirects:          maxRedirects,
		},
	}
}

// LogPath returns the log file location, or "" when file logging is off.
func (c *Config) LogPath() string {
	if !c.LogToFile {
		return ""
	}

	return filepath.Join(xdg.StateHome, appName, appName+".log")
}

// ClientConfig converts the HTTP section into a transport config.
func (c *Config) ClientConfig() *httpproto.ClientConfig {
	cc := httpproto.DefaultConfig()
	cc.DialTimeout = c.HTTP.DialTimeout
	cc.TLSHandshakeTimeout = c.HTTP.TLSHandshakeTimeout
	cc.ResponseHeaderTimeout = c.HTTP.ResponseHeaderTimeout
	cc.MaxRedirects = c.HTTP.MaxRedirects

	headers := make(map[string]string, len(c.HTTP.Headers)+1)
	for k, v := range c.HTTP.Headers {
		headers[k] = v
	}
	headers["User-Agent"] = c.HTTP.UserAgent
	cc.DefaultHeaders = headers

	return cc
}

// Warns reports whether name matches one of the configured warning tags or
// prefixes. Matching is case-insensitive.
func (c *Config) Warns(name string) bool {
	lower := strings.ToLower(name)

	for _, p := range c.WarnPrefixes {
		if p != "" && strings.HasPrefix(lower, strings.ToLower(p)) {
			return true
		}
	}

	for _, tag := range c.WarnTags {
		if tag != "" && strings.Contains(lower, strings.ToLower(tag)) {
			return true
		}
	}

	return false
}

// zeroOr returns def if v is the zero value for its type.
func zeroOr[T any](v, def T) T {
	if reflect.ValueOf(v).IsZero() {
		return def
	}

	return v
}

// applyFlagsToConfig takes the value of the cli flags applied at the start and plugs them into the config.
func (c *Config) applyFlagsToConfig() {
	fc := flagConfig{
		urls:        flag.String("urls", "", "mirror urls of a single download separated by space"),
		title:       flag.String("title", "", "output file name for -urls"),
		downloadDir: flag.String("dd", c.DownloadDir, "path to the directory that will be used to store new downloads"),
		debug:       flag.Bool("debug", c.Debug, "enable debug logging"),
		history:     flag.Bool("history", false, "print finished downloads and exit"),
	}

	flag.Parse()

	if fc.urls != nil {
		c.Urls = strings.Fields(*fc.urls)
	}

	c.Title = *fc.title
	c.DownloadDir = *fc.downloadDir
	c.Debug = *fc.debug
	c.ShowHistory = *fc.history
}

func (c *Config) validate() error {
	if c.DownloadDir == "" || c.HistoryPath == "" {
		return ErrInvalidConfig
	}

	return c.HTTP.validate()
}

func (h *HTTPConfig) validate() error {
	if h.UserAgent == "" || h.DialTimeout < 0 || h.TLSHandshakeTimeout < 0 || h.ResponseHeaderTimeout < 0 || h.MaxRedirects < 0 {
		return ErrInvalidConfig
	}

	return nil
}
