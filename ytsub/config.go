package ytsub

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// APIKeyEnv is the environment variable that holds the YouTube API key.
const APIKeyEnv = "YOUTUBE_API_KEY"

// Config holds the settings of a collection run. The zero values of its
// fields are not meaningful; use DefaultConfig or LoadConfig.
type Config struct {
	Query          string    `yaml:"query"`
	PublishedAfter time.Time `yaml:"published_after"`
	PageSize       int64     `yaml:"page_size"`
	Languages      []string  `yaml:"languages,flow"`

	MinViews       uint64  `yaml:"min_views"`
	MinLikes       uint64  `yaml:"min_likes"`
	MinLikeRatio   float64 `yaml:"min_like_ratio"`
	MinSubscribers uint64  `yaml:"min_subscribers"`
	MaxDurationSec int64   `yaml:"max_duration_sec"`

	LineWidth int `yaml:"line_width"`

	// Relative paths are resolved against the directory given to Paths.
	OutputDir     string `yaml:"output_dir"`
	ProcessedFile string `yaml:"processed_file"`
	CursorFile    string `yaml:"cursor_file"`

	RetryMissing bool `yaml:"retry_missing"`
}

// DefaultConfig returns the settings used when no configuration is given.
func DefaultConfig() *Config {
	q, c := DefaultQuery(), DefaultCriteria()
	return &Config{
		Query:          q.Text,
		PublishedAfter: q.PublishedAfter,
		PageSize:       q.PageSize,
		Languages:      append([]string(nil), DefaultLanguages...),
		MinViews:       c.MinViews,
		MinLikes:       c.MinLikes,
		MinLikeRatio:   c.MinLikeRatio,
		MinSubscribers: c.MinSubscribers,
		MaxDurationSec: int64(c.MaxDuration / time.Second),
		LineWidth:      DefaultLineWidth,
		OutputDir:      ".",
		ProcessedFile:  ProcessedFile,
		CursorFile:     CursorFile,
	}
}

// LoadConfig reads a YAML configuration from path. Settings not mentioned in
// the file keep their default values. If path == "", the defaults are
// returned.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.check(); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) check() error {
	switch {
	case c.Query == "":
		return fmt.Errorf("empty query")
	case c.PageSize < 1 || c.PageSize > DefaultPageSize:
		return fmt.Errorf("page size %d out of range 1..%d", c.PageSize, DefaultPageSize)
	case len(c.Languages) == 0:
		return fmt.Errorf("no caption languages")
	case c.LineWidth < 1:
		return fmt.Errorf("line width %d must be positive", c.LineWidth)
	case c.MaxDurationSec < 0:
		return fmt.Errorf("negative maximum duration")
	}
	return nil
}

// SearchQuery returns the search query described by c.
func (c *Config) SearchQuery() Query {
	return Query{Text: c.Query, PublishedAfter: c.PublishedAfter, PageSize: c.PageSize}
}

// Criteria returns the selection thresholds described by c.
func (c *Config) Criteria() Criteria {
	return Criteria{
		MinViews:       c.MinViews,
		MinLikes:       c.MinLikes,
		MinLikeRatio:   c.MinLikeRatio,
		MinSubscribers: c.MinSubscribers,
		MaxDuration:    time.Duration(c.MaxDurationSec) * time.Second,
	}
}

// Paths returns the output directory and checkpoint locations of c, with
// relative paths resolved against dir.
func (c *Config) Paths(dir string) (string, Checkpoint) {
	abs := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	return abs(c.OutputDir), Checkpoint{
		ProcessedPath: abs(c.ProcessedFile),
		CursorPath:    abs(c.CursorFile),
	}
}
