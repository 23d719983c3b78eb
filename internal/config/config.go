package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dcimsync/internal/domain"

	"github.com/spf13/viper"
)

type Config struct {
	PollInterval time.Duration
	StagingDir   string
	ScratchDir   string
	Verbose      bool
	Log          LogConfig
	History      HistoryConfig
	Fetch        FetchConfig
	EzShare      EzShareConfig
	USB          USBConfig
	Uploader     UploaderConfig
	Metrics      MetricsConfig
}

type LogConfig struct {
	Level  string
	Format string
}

type HistoryConfig struct {
	Backend    string
	Dir        string
	SQLitePath string
}

type FetchConfig struct {
	MaxAttempts int
	BackoffBase time.Duration
	Timeout     time.Duration
}

type EzShareConfig struct {
	Enabled     bool
	SSIDPrefix  string
	Password    string
	BaseURL     string
	ListingPath string
	// TimeOffset is added to the card's "time" query value to get a Unix
	// epoch. It differs between card firmware revisions.
	TimeOffset  int64
	DefaultName string
}

type USBConfig struct {
	Enabled        bool
	MediaRoot      string
	MarkerPrefix   string
	Extensions     []string
	DefaultName    string
	UnmountCommand string
	Watch          bool
}

type UploaderConfig struct {
	Command       string
	Args          []string
	SuccessPhrase string
}

type MetricsConfig struct {
	Addr string
}

const (
	BackendText   = "text"
	BackendSQLite = "sqlite"

	envPrefix = "DCIMSYNC"
)

// SetDefaults registers every key with its default so that environment
// variables are picked up by AutomaticEnv even without a config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("poll_interval", 10*time.Second)
	v.SetDefault("staging_dir", "/tmp/dcimsync/staging")
	v.SetDefault("scratch_dir", "/tmp/dcimsync/partial")
	v.SetDefault("verbose", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("history.backend", BackendText)
	v.SetDefault("history.dir", "~/.dcimsync/history")
	v.SetDefault("history.sqlite_path", "~/.dcimsync/history.db")
	v.SetDefault("fetch.max_attempts", 10)
	v.SetDefault("fetch.backoff_base", time.Second)
	v.SetDefault("fetch.timeout", 10*time.Second)
	v.SetDefault("ezshare.enabled", true)
	v.SetDefault("ezshare.ssid_prefix", "ez Share")
	v.SetDefault("ezshare.password", "88888888")
	v.SetDefault("ezshare.base_url", "http://ezshare.card/")
	v.SetDefault("ezshare.listing_path", "mphoto")
	v.SetDefault("ezshare.time_offset", int64(234637072))
	v.SetDefault("ezshare.default_name", "ezshare")
	v.SetDefault("usb.enabled", true)
	v.SetDefault("usb.media_root", "/media")
	v.SetDefault("usb.marker_prefix", "ez Share")
	v.SetDefault("usb.extensions", []string{"JPG"})
	v.SetDefault("usb.default_name", "usbdcim")
	v.SetDefault("usb.unmount_command", "pumount")
	v.SetDefault("usb.watch", true)
	v.SetDefault("uploader.command", "/opt/jiotty-photos-uploader/bin/JiottyPhotosUploader")
	v.SetDefault("uploader.args", []string{"-r"})
	v.SetDefault("uploader.success_phrase", "All done without fatal errors")
	v.SetDefault("metrics.addr", "")
}

// Load reads defaults, the optional config file, DCIMSYNC_* environment
// variables and any flags already bound to v, in increasing precedence.
func Load(v *viper.Viper, cfgFile string) (Config, error) {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
		v.SetConfigType("yaml")
		v.SetConfigName(".dcimsync")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	cfg := Config{
		PollInterval: v.GetDuration("poll_interval"),
		StagingDir:   expandHome(v.GetString("staging_dir")),
		ScratchDir:   expandHome(v.GetString("scratch_dir")),
		Verbose:      v.GetBool("verbose"),
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		History: HistoryConfig{
			Backend:    strings.ToLower(strings.TrimSpace(v.GetString("history.backend"))),
			Dir:        expandHome(v.GetString("history.dir")),
			SQLitePath: expandHome(v.GetString("history.sqlite_path")),
		},
		Fetch: FetchConfig{
			MaxAttempts: v.GetInt("fetch.max_attempts"),
			BackoffBase: v.GetDuration("fetch.backoff_base"),
			Timeout:     v.GetDuration("fetch.timeout"),
		},
		EzShare: EzShareConfig{
			Enabled:     v.GetBool("ezshare.enabled"),
			SSIDPrefix:  v.GetString("ezshare.ssid_prefix"),
			Password:    v.GetString("ezshare.password"),
			BaseURL:     v.GetString("ezshare.base_url"),
			ListingPath: v.GetString("ezshare.listing_path"),
			TimeOffset:  v.GetInt64("ezshare.time_offset"),
			DefaultName: v.GetString("ezshare.default_name"),
		},
		USB: USBConfig{
			Enabled:        v.GetBool("usb.enabled"),
			MediaRoot:      expandHome(v.GetString("usb.media_root")),
			MarkerPrefix:   v.GetString("usb.marker_prefix"),
			Extensions:     v.GetStringSlice("usb.extensions"),
			DefaultName:    v.GetString("usb.default_name"),
			UnmountCommand: v.GetString("usb.unmount_command"),
			Watch:          v.GetBool("usb.watch"),
		},
		Uploader: UploaderConfig{
			Command:       v.GetString("uploader.command"),
			Args:          v.GetStringSlice("uploader.args"),
			SuccessPhrase: v.GetString("uploader.success_phrase"),
		},
		Metrics: MetricsConfig{
			Addr: v.GetString("metrics.addr"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.PollInterval <= 0 {
		return errors.New("poll_interval must be positive")
	}
	if c.StagingDir == "" || c.ScratchDir == "" {
		return errors.New("staging_dir and scratch_dir are required")
	}
	if filepath.Clean(c.StagingDir) == filepath.Clean(c.ScratchDir) {
		return errors.New("scratch_dir must differ from staging_dir")
	}
	if c.Fetch.MaxAttempts < 1 {
		return errors.New("fetch.max_attempts must be at least 1")
	}
	if c.Fetch.BackoffBase < 0 {
		return errors.New("fetch.backoff_base must not be negative")
	}
	switch c.History.Backend {
	case BackendText:
		if c.History.Dir == "" {
			return errors.New("history.dir is required for the text backend")
		}
	case BackendSQLite:
		if c.History.SQLitePath == "" {
			return errors.New("history.sqlite_path is required for the sqlite backend")
		}
	default:
		return errors.New("history.backend must be text or sqlite")
	}
	if !c.EzShare.Enabled && !c.USB.Enabled {
		return errors.New("at least one of ezshare.enabled and usb.enabled must be set")
	}
	if c.USB.Enabled && len(c.USB.Extensions) == 0 {
		return errors.New("usb.extensions must not be empty")
	}
	for _, ext := range c.USB.Extensions {
		if !domain.IsImageExtension("." + strings.TrimPrefix(ext, ".")) {
			return fmt.Errorf("usb.extensions: %q is not a picture format", ext)
		}
	}
	if c.Uploader.Command == "" || c.Uploader.SuccessPhrase == "" {
		return errors.New("uploader.command and uploader.success_phrase are required")
	}
	return nil
}

func expandHome(path string) string {
	path = strings.TrimSpace(path)
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
