package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DateLayout is the calendar date format used in page URLs, file names and configuration
const DateLayout = "2006-01-02"

// CountAll requests downloads until the cutoff date is reached
const CountAll = "all"

// Extraction rule names
const (
	RuleAttribute = "attribute"
	RuleDirect    = "direct"
	RuleCustom    = "custom"
)

// Config holds all configuration options for the comic downloader
type Config struct {
	// Comic source settings
	Comic ComicConfig `yaml:"comic" json:"comic"`

	// Output folders
	Output OutputConfig `yaml:"output" json:"output"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Download history ledger
	History HistoryConfig `yaml:"history" json:"history"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ComicConfig describes where strips come from and how their image URL is found
type ComicConfig struct {
	BaseURL         string `yaml:"base_url" json:"base_url"`
	Rule            string `yaml:"rule" json:"rule"`
	ImagePattern    string `yaml:"image_pattern" json:"image_pattern"`
	ImagePrefix     string `yaml:"image_prefix" json:"image_prefix"`
	StartDate       string `yaml:"start_date" json:"start_date"`
	FileNamePattern string `yaml:"file_name_pattern" json:"file_name_pattern"`
	UserAgent       string `yaml:"user_agent" json:"user_agent"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	SaveFolder    string `yaml:"save_folder" json:"save_folder"`
	ReadingFolder string `yaml:"reading_folder" json:"reading_folder"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	Count     string        `yaml:"count" json:"count"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
	AutoClose bool          `yaml:"auto_close" json:"auto_close"`
}

// HistoryConfig controls the SQLite download ledger
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level" json:"level"`
	File       string `yaml:"file" json:"file"`
	MaxSize    int    `yaml:"max_size" json:"max_size"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
	MaxAge     int    `yaml:"max_age" json:"max_age"`
	Compress   bool   `yaml:"compress" json:"compress"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Comic: ComicConfig{
			BaseURL:         "http://dilbert.com/strip/",
			Rule:            RuleAttribute,
			StartDate:       "1989-04-16",
			FileNamePattern: "Comic {date}.gif",
			UserAgent:       "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
		},
		Download: DownloadConfig{
			Count:     "1",
			Timeout:   30 * time.Second,
			AutoClose: false,
		},
		History: HistoryConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       "",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if saveFolder := os.Getenv("COMICDL_SAVE_FOLDER"); saveFolder != "" {
		c.Output.SaveFolder = saveFolder
	}
	if readingFolder := os.Getenv("COMICDL_READING_FOLDER"); readingFolder != "" {
		c.Output.ReadingFolder = readingFolder
	}
	if count := os.Getenv("COMICDL_COUNT"); count != "" {
		c.Download.Count = count
	}
	if autoClose := os.Getenv("COMICDL_AUTO_CLOSE"); autoClose != "" {
		val, err := strconv.ParseBool(autoClose)
		if err != nil {
			return fmt.Errorf("invalid COMICDL_AUTO_CLOSE %q: %w", autoClose, err)
		}
		c.Download.AutoClose = val
	}
	if timeout := os.Getenv("COMICDL_TIMEOUT"); timeout != "" {
		val, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid COMICDL_TIMEOUT %q: %w", timeout, err)
		}
		c.Download.Timeout = val
	}

	if baseURL := os.Getenv("COMICDL_BASE_URL"); baseURL != "" {
		c.Comic.BaseURL = baseURL
	}
	if rule := os.Getenv("COMICDL_RULE"); rule != "" {
		c.Comic.Rule = rule
	}
	if startDate := os.Getenv("COMICDL_START_DATE"); startDate != "" {
		c.Comic.StartDate = startDate
	}
	if userAgent := os.Getenv("COMICDL_USER_AGENT"); userAgent != "" {
		c.Comic.UserAgent = userAgent
	}

	if historyEnabled := os.Getenv("COMICDL_HISTORY_ENABLED"); historyEnabled != "" {
		c.History.Enabled = strings.ToLower(historyEnabled) == "true"
	}

	if logLevel := os.Getenv("COMICDL_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("COMICDL_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".comicdl.yaml",
		".comicdl.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "comicdl", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "comicdl", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".comicdl.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Output.SaveFolder) == "" {
		errs = append(errs, errors.New("save folder is required"))
	}

	if _, _, err := ParseCount(c.Download.Count); err != nil {
		errs = append(errs, err)
	}
	if c.Download.Timeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}

	if c.Comic.BaseURL == "" {
		errs = append(errs, errors.New("comic base URL is required"))
	}
	if _, err := c.StartTime(); err != nil {
		errs = append(errs, err)
	}
	if !strings.Contains(c.Comic.FileNamePattern, "{date}") {
		errs = append(errs, errors.New("file name pattern must contain {date}"))
	}

	switch c.ImageRule() {
	case RuleAttribute, RuleDirect:
	case RuleCustom:
		if c.Comic.ImagePattern == "" {
			errs = append(errs, errors.New("custom rule requires an image pattern"))
		} else if _, err := regexp.Compile(c.Comic.ImagePattern); err != nil {
			errs = append(errs, fmt.Errorf("invalid image pattern: %w", err))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown extraction rule %q", c.Comic.Rule))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// ImageRule returns the effective extraction rule. A configured image pattern
// always means the custom rule.
func (c *Config) ImageRule() string {
	if c.Comic.ImagePattern != "" {
		return RuleCustom
	}
	rule := strings.ToLower(strings.TrimSpace(c.Comic.Rule))
	if rule == "" {
		return RuleAttribute
	}
	return rule
}

// StartTime parses the configured start date as a calendar day
func (c *Config) StartTime() (time.Time, error) {
	start, err := ParseDate(c.Comic.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start date %q: %w", c.Comic.StartDate, err)
	}
	return start, nil
}

// CalendarDay returns the calendar date of t, in t's own location, as
// midnight UTC. Strip dates are always held in this form so that stepping
// one day never crosses a daylight saving transition.
func CalendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD value into a calendar day
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, time.UTC)
}

// HistoryPath returns the ledger location, defaulting to a hidden folder under the save folder
func (c *Config) HistoryPath() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	return filepath.Join(c.Output.SaveFolder, ".comicdl", "history.sqlite")
}

// ParseCount interprets a count value. "all" is unlimited; otherwise a
// positive integer is required.
func ParseCount(count string) (n int, all bool, err error) {
	count = strings.TrimSpace(count)
	if count == "" {
		return 1, false, nil
	}
	if strings.EqualFold(count, CountAll) {
		return 0, true, nil
	}
	n, err = strconv.Atoi(count)
	if err != nil || n < 1 {
		return 0, false, fmt.Errorf("count must be a positive integer or %q, got %q", CountAll, count)
	}
	return n, false, nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if saveFolder, ok := flags["save-folder"].(string); ok && saveFolder != "" {
		c.Output.SaveFolder = saveFolder
	}
	if readingFolder, ok := flags["reading-folder"].(string); ok && readingFolder != "" {
		c.Output.ReadingFolder = readingFolder
	}
	if count, ok := flags["count"].(string); ok && count != "" {
		c.Download.Count = count
	}
	if autoClose, ok := flags["auto-close"].(bool); ok {
		c.Download.AutoClose = autoClose
	}
	if timeout, ok := flags["timeout"].(time.Duration); ok && timeout > 0 {
		c.Download.Timeout = timeout
	}
	if baseURL, ok := flags["base-url"].(string); ok && baseURL != "" {
		c.Comic.BaseURL = baseURL
	}
	if rule, ok := flags["rule"].(string); ok && rule != "" {
		c.Comic.Rule = rule
	}
	if startDate, ok := flags["start-date"].(string); ok && startDate != "" {
		c.Comic.StartDate = startDate
	}
	if history, ok := flags["history"].(bool); ok {
		c.History.Enabled = history
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile, ok := flags["log-file"].(string); ok && logFile != "" {
		c.Logging.File = logFile
	}
}

// Resolve loads configuration from all sources without validating it.
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Resolve(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".comicdl.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	return config, nil
}

// Load resolves configuration from all sources and validates the result
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	config, err := Resolve(configPath, flags)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
