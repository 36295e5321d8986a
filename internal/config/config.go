// Package config layers defaults, an optional YAML file, SPRINTLEDGER_*
// environment variables and command-line flags into one Config.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/bryan-cox/sprintledger/internal/calendar"
	"github.com/bryan-cox/sprintledger/internal/category"
	"github.com/bryan-cox/sprintledger/internal/model"
	"github.com/bryan-cox/sprintledger/internal/report"
)

// EnvPrefix prefixes every environment override, e.g. SPRINTLEDGER_BASE_URL.
const EnvPrefix = "SPRINTLEDGER"

// Keys.
const (
	KeyBaseURL      = "base_url"
	KeyCategory     = "category"
	KeySummaryField = "summary_field"
	KeySort         = "sort"
	KeyWorkingDays  = "working_days"
	KeyWorkingHours = "working_hours"
	KeyLeaveDays    = "leave_days"
	KeyHolidays     = "holidays"
	KeyAuthor       = "author"
	KeyLogLevel     = "log_level"
	KeyColor        = "color"
	KeyOutputDir    = "output_dir"
)

// Config holds application configuration
type Config struct {
	BaseURL      string
	Category     string
	SummaryField string
	Sort         string
	WorkingDays  []string
	WorkingHours float64
	LeaveDays    float64
	Holidays     []string
	Author       string
	LogLevel     string
	Color        bool
	OutputDir    string
	// File is the config file that was read, if any.
	File string
}

// New returns a viper instance carrying the defaults and environment bindings.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyBaseURL, "")
	v.SetDefault(KeyCategory, category.ModeActivity)
	v.SetDefault(KeySummaryField, model.ColIssueSummary)
	v.SetDefault(KeySort, string(report.SortAuthor))
	v.SetDefault(KeyWorkingDays, []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"})
	v.SetDefault(KeyWorkingHours, calendar.DefaultWorkingHours)
	v.SetDefault(KeyLeaveDays, 0.0)
	v.SetDefault(KeyHolidays, []string{})
	v.SetDefault(KeyAuthor, model.AllAuthors)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyColor, true)
	v.SetDefault(KeyOutputDir, ".")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// The tracker base URL is commonly exported without the prefix.
	_ = v.BindEnv(KeyBaseURL, EnvPrefix+"_BASE_URL", "JIRA_BASE_URL")
	return v
}

// Load reads the config file into v and returns the merged configuration.
// An explicit path must exist; otherwise sprintledger.yaml is looked up in the
// working directory and the user config directory, and may be absent.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("sprintledger")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "sprintledger"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("could not read config: %w", err)
		}
	}

	cfg := &Config{
		BaseURL:      v.GetString(KeyBaseURL),
		Category:     v.GetString(KeyCategory),
		SummaryField: v.GetString(KeySummaryField),
		Sort:         v.GetString(KeySort),
		WorkingDays:  splitList(v.GetStringSlice(KeyWorkingDays)),
		WorkingHours: v.GetFloat64(KeyWorkingHours),
		LeaveDays:    v.GetFloat64(KeyLeaveDays),
		Holidays:     splitList(v.GetStringSlice(KeyHolidays)),
		Author:       v.GetString(KeyAuthor),
		LogLevel:     v.GetString(KeyLogLevel),
		Color:        v.GetBool(KeyColor),
		OutputDir:    v.GetString(KeyOutputDir),
		File:         v.ConfigFileUsed(),
	}
	return cfg, nil
}

// splitList flattens comma separated entries, as given in env vars and flags.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate checks the values the engine cannot default for itself.
func (c *Config) Validate() error {
	var errs []error
	if _, err := calendar.ParseWeekdays(c.WorkingDays); err != nil {
		errs = append(errs, err)
	}
	if _, err := calendar.ParseHolidays(c.Holidays); err != nil {
		errs = append(errs, err)
	}
	if c.WorkingHours < 0 {
		errs = append(errs, fmt.Errorf("working_hours must not be negative, got %v", c.WorkingHours))
	}
	if c.LeaveDays < 0 {
		errs = append(errs, fmt.Errorf("leave_days must not be negative, got %v", c.LeaveDays))
	}
	if _, err := report.ParseSortMode(c.Sort); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Policy builds the working-day policy.
func (c *Config) Policy() (*calendar.Policy, error) {
	days, err := calendar.ParseWeekdays(c.WorkingDays)
	if err != nil {
		return nil, err
	}
	holidays, err := calendar.ParseHolidays(c.Holidays)
	if err != nil {
		return nil, err
	}
	return calendar.NewPolicy(days, c.WorkingHours, holidays), nil
}

// SlogLevel maps log_level to a slog level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return l, nil
}
