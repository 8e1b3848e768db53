// Package config resolves settings from .env, an optional disqus.yaml and
// DISQUS_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/davidleitw/disqus/internal/checkpoint"
	"github.com/davidleitw/disqus/internal/disqus"
	"github.com/davidleitw/disqus/internal/embed"
	"github.com/davidleitw/disqus/internal/rule"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const EnvPrefix = "DISQUS"

type Settings struct {
	APIKey           string `mapstructure:"api_key"`
	WebsiteShortname string `mapstructure:"website_shortname"`
	PublicKey        string `mapstructure:"public_key"`
	SecretKey        string `mapstructure:"secret_key"`
	UseSingleSignOn  bool   `mapstructure:"use_single_signon"`

	APIURL      string        `mapstructure:"api_url"`
	APIVersion  string        `mapstructure:"api_version"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	UserAgent   string        `mapstructure:"user_agent"`

	SiteDomain string `mapstructure:"site_domain"`
	Debug      bool   `mapstructure:"debug"`

	DbPath       string `mapstructure:"db_path"`
	SyncSchedule string `mapstructure:"sync_schedule"`
	ListenAddr   string `mapstructure:"listen_addr"`

	// TrustUserHeaders makes the embed server sign the X-User-* identity a
	// fronting proxy sets. Off by default.
	TrustUserHeaders bool `mapstructure:"trust_user_headers"`

	Checkpoint checkpoint.MinioConfig `mapstructure:"checkpoint"`
}

var defaults = map[string]any{
	"api_key":           "",
	"website_shortname": "",
	"public_key":        "",
	"secret_key":        "",
	"use_single_signon": false,

	"api_url":      disqus.DefaultBaseURL,
	"api_version":  disqus.DefaultAPIVersion,
	"http_timeout": disqus.DefaultTimeout,
	"user_agent":   "",

	"site_domain": rule.DefaultSiteDomain,
	"debug":       false,

	"db_path":       "data/disqus.db",
	"sync_schedule": "@hourly",
	"listen_addr":   "127.0.0.1:8080",

	"trust_user_headers": false,

	"checkpoint.endpoint":   "",
	"checkpoint.access_key": "",
	"checkpoint.secret_key": "",
	"checkpoint.bucket":     "",
	"checkpoint.object":     "",
	"checkpoint.secure":     false,
	"checkpoint.region":     "",
}

// Load reads the settings. configFile names a yaml file that must exist; when
// empty, disqus.yaml is looked up in the working directory and may be absent.
func Load(configFile string) (*Settings, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, skipping")
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("disqus")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		logrus.Debug("No disqus.yaml found, using environment only")
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return settings, nil
}

// Validate checks what every command talking to the API needs.
func (s *Settings) Validate() error {
	if s.APIKey == "" {
		return fmt.Errorf("%s_API_KEY is not set", EnvPrefix)
	}
	if s.WebsiteShortname == "" {
		return fmt.Errorf("%s_WEBSITE_SHORTNAME is not set", EnvPrefix)
	}
	return nil
}

func (s *Settings) ClientOptions() []disqus.Option {
	return []disqus.Option{
		disqus.BaseURL(s.APIURL),
		disqus.APIVersion(s.APIVersion),
		disqus.Timeout(s.HTTPTimeout),
		disqus.UserAgent(s.UserAgent),
	}
}

func (s *Settings) RuleOptions() []rule.RuleOption {
	return []rule.RuleOption{
		rule.UserAPIKey(s.APIKey),
		rule.Shortname(s.WebsiteShortname),
		rule.SiteDomain(s.SiteDomain),
	}
}

func (s *Settings) Embed() embed.Settings {
	return embed.Settings{
		Shortname:       s.WebsiteShortname,
		Domain:          s.SiteDomain,
		Debug:           s.Debug,
		UseSingleSignOn: s.UseSingleSignOn,
		PublicKey:       s.PublicKey,
		SecretKey:       s.SecretKey,
	}
}

// UseMinioCheckpoint reports whether an object store is configured for the
// export checkpoint.
func (s *Settings) UseMinioCheckpoint() bool {
	return s.Checkpoint.Endpoint != "" && s.Checkpoint.Bucket != ""
}
