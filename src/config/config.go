// Package config resolves where the report data lives and how figures are
// rendered. Values come, lowest precedence first, from built-in defaults, an
// optional keyvplots.yaml, KEYV_* environment variables (optionally seeded from
// a .env file) and command line flags.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mickaelfiorentino/keyv/src/logging"
	"github.com/mickaelfiorentino/keyv/src/render"
)

// SetupHint is shown when the environment has not been initialized.
const SetupHint = "Setup the environment with setup.csh prior to running this script"

// DefaultEnvFile is loaded from the working directory when present.
const DefaultEnvFile = ".env"

// Config is the resolved configuration.
type Config struct {
	DataDir   string         `mapstructure:"data"`
	Home      string         `mapstructure:"home"`
	LogLevel  string         `mapstructure:"log_level"`
	KeepGoing bool           `mapstructure:"keep_going"`
	Render    render.Options `mapstructure:"render"`
	Export    Export         `mapstructure:"export"`
	// ConfigFile is the file values were read from, empty when none was found.
	ConfigFile string `mapstructure:"-"`
}

// Export controls the optional workbook written next to the images.
type Export struct {
	Workbook     bool   `mapstructure:"workbook"`
	WorkbookName string `mapstructure:"workbook_name"`
}

// Error reports missing or invalid configuration. It is fatal before any
// report is built.
type Error struct {
	Key  string
	Hint string
	Err  error
}

func (e *Error) Error() string {
	msg := "configuration error"
	if e.Key != "" {
		msg += " (" + e.Key + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Hint != "" {
		msg += ": " + e.Hint
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Sources says where to look besides the environment. Zero values mean
// defaults: keyvplots.yaml in the working directory or $KEYV_HOME, and .env in
// the working directory.
type Sources struct {
	ConfigFile string
	EnvFile    string
	Flags      *pflag.FlagSet
}

// flag name -> config key
var flagKeys = map[string]string{
	"log-level":  "log_level",
	"keep-going": "keep_going",
	"workbook":   "export.workbook",
	"format":     "render.format",
	"dpi":        "render.dpi",
}

func setDefaults(v *viper.Viper) {
	d := render.DefaultOptions()
	v.SetDefault("data", "")
	v.SetDefault("home", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("keep_going", false)
	v.SetDefault("render.width", d.Width)
	v.SetDefault("render.height", d.Height)
	v.SetDefault("render.dpi", d.DPI)
	v.SetDefault("render.format", d.Format)
	v.SetDefault("render.title_font_size", d.TitleFontSize)
	v.SetDefault("render.label_font_size", d.LabelFontSize)
	v.SetDefault("render.alpha_dark", d.AlphaDark)
	v.SetDefault("render.alpha_light", d.AlphaLight)
	v.SetDefault("render.bar_width", d.BarWidth)
	v.SetDefault("render.footer", d.Footer)
	v.SetDefault("export.workbook", false)
	v.SetDefault("export.workbook_name", "plots_data.xlsx")
}

// Load resolves the configuration and checks that the data directory is set.
func Load(src Sources) (*Config, error) {
	if err := loadEnvFile(src.EnvFile); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("KEYV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if src.ConfigFile != "" {
		v.SetConfigFile(src.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, &Error{Key: "config", Err: errors.Wrapf(err, "read %s", src.ConfigFile)}
		}
	} else {
		v.SetConfigName("keyvplots")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home := v.GetString("home"); home != "" {
			v.AddConfigPath(home)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, &Error{Key: "config", Err: errors.Wrap(err, "read keyvplots.yaml")}
			}
		}
	}

	if src.Flags != nil {
		for name, key := range flagKeys {
			if f := src.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, &Error{Key: key, Err: err}
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &Error{Key: "config", Err: errors.Wrap(err, "decode")}
	}
	cfg.ConfigFile = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logging.Debugf("config resolved: data=%s file=%q format=%s dpi=%d", cfg.DataDir, cfg.ConfigFile, cfg.Render.Format, cfg.Render.DPI)
	return &cfg, nil
}

func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}
	if _, err := os.Stat(path); err != nil {
		if explicit {
			return &Error{Key: "env-file", Err: errors.Wrapf(err, "env file %s", path)}
		}
		return nil
	}
	// existing variables win over the file
	if err := godotenv.Load(path); err != nil {
		return &Error{Key: "env-file", Err: errors.Wrapf(err, "load %s", path)}
	}
	logging.Debugf("loaded environment from %s", path)
	return nil
}

// Validate checks required settings.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return &Error{Key: "KEYV_DATA", Err: errors.New("data directory not set"), Hint: SetupHint}
	}
	st, err := os.Stat(c.DataDir)
	if err != nil {
		return &Error{Key: "KEYV_DATA", Err: errors.Wrap(err, "data directory"), Hint: SetupHint}
	}
	if !st.IsDir() {
		return &Error{Key: "KEYV_DATA", Err: errors.Errorf("%s is not a directory", c.DataDir)}
	}
	if !logging.ValidLevel(c.LogLevel) {
		return &Error{Key: "log_level", Err: errors.Errorf("unknown log level %q", c.LogLevel)}
	}
	if err := c.Render.Validate(); err != nil {
		return &Error{Key: "render", Err: err}
	}
	if c.Export.Workbook && filepath.Ext(c.Export.WorkbookName) != ".xlsx" {
		return &Error{Key: "export.workbook_name", Err: errors.Errorf("%q must end in .xlsx", c.Export.WorkbookName)}
	}
	return nil
}

// Path returns name inside the data directory.
func (c *Config) Path(name string) string {
	return filepath.Join(c.DataDir, name)
}
