package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Log        LogConfig        `yaml:"log"`
	Mail       MailConfig       `yaml:"mail"`
	Diagnostic DiagnosticConfig `yaml:"diagnostic"`
	History    HistoryConfig    `yaml:"history"`
}

type LogConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
}

// MailConfig carries SMTP settings for alert notifications. Addresses
// are checked at send time, not here, so a bad address never blocks a
// drive check.
type MailConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Server   string `yaml:"server,omitempty"`
	Port     int    `yaml:"port,omitempty" validate:"gte=1,lte=65535"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	From     string `yaml:"from,omitempty"`
	To       string `yaml:"to,omitempty"`
}

type DiagnosticConfig struct {
	// Path names the tapeinfo binary; a bare name is looked up on PATH.
	Path    string   `yaml:"path,omitempty"`
	Timeout Duration `yaml:"timeout,omitempty"`
	// Sample overrides the built-in test mode output with a file.
	Sample string `yaml:"sample,omitempty"`
}

type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
}

// Duration decodes either a Go duration string ("90s") or a bare
// number of seconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if n, err := strconv.Atoi(s); err == nil {
		*d = Duration(time.Duration(n) * time.Second)
		return nil
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) Duration() time.Duration { return time.Duration(d) }

var validate = validator.New()

// defaultConfig provides baseline settings; every collaborator starts
// disabled and the check works with no config file at all
var defaultConfig = Config{
	Log: LogConfig{
		Path: "/opt/bacula/log/tapealert.log",
	},
	Mail: MailConfig{
		Server: "localhost",
		Port:   25,
	},
	Diagnostic: DiagnosticConfig{
		Path:    "tapeinfo",
		Timeout: Duration(60 * time.Second),
	},
	History: HistoryConfig{
		Path: "/var/lib/tapealert/history.db",
	},
}

func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		// Try default locations
		candidates := []string{
			"/etc/tapealert/config.yaml",
			filepath.Join(os.Getenv("HOME"), ".config/tapealert/config.yaml"),
			"config.yaml",
		}
		for _, c := range candidates {
			if _, err := os.Stat(c); err == nil {
				path = c
				break
			}
		}
	}

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			// A path the operator named must exist; a scanned
			// candidate that vanished falls back to defaults.
			if explicit {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	applyDefaults(&cfg)

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills in anything the file left unset
func applyDefaults(cfg *Config) {
	if cfg.Log.Path == "" {
		cfg.Log.Path = defaultConfig.Log.Path
	}
	if cfg.Mail.Server == "" {
		cfg.Mail.Server = defaultConfig.Mail.Server
	}
	if cfg.Mail.Port == 0 {
		cfg.Mail.Port = defaultConfig.Mail.Port
	}
	if cfg.Mail.From == "" {
		// An unset sender falls back to the recipient.
		cfg.Mail.From = cfg.Mail.To
	}
	if cfg.Diagnostic.Path == "" {
		cfg.Diagnostic.Path = defaultConfig.Diagnostic.Path
	}
	if cfg.Diagnostic.Timeout == 0 {
		cfg.Diagnostic.Timeout = defaultConfig.Diagnostic.Timeout
	}
	if cfg.History.Path == "" {
		cfg.History.Path = defaultConfig.History.Path
	}
}
