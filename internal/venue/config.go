// Package venue loads and validates the per-venue configuration records
// that parameterize the shared pipeline: one YAML file per venue holding
// its URL, static metadata, fetch settings, extraction strategies, and
// junk-title patterns.
package venue

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/gigcity/harvester/internal/event"
	"github.com/gigcity/harvester/internal/extract"
	"github.com/gigcity/harvester/internal/fetch"
)

// Config defines one venue scrape source.
type Config struct {
	Name     string      `yaml:"name" validate:"required"`
	URL      string      `yaml:"url" validate:"required,url"`
	Venue    event.Venue `yaml:"venue"`
	Enabled  bool        `yaml:"enabled"`
	Schedule string      `yaml:"schedule" validate:"omitempty,oneof=daily weekly manual"`
	Notes    string      `yaml:"notes,omitempty"`

	Fetch        FetchSettings      `yaml:"fetch"`
	Strategies   []extract.Strategy `yaml:"strategies" validate:"omitempty,dive"`
	JunkPatterns []string           `yaml:"junk_patterns,omitempty"`
}

// FetchSettings is the YAML-facing shape of fetch.Config.
type FetchSettings struct {
	Mode               string `yaml:"mode" validate:"omitempty,oneof=static rendered"`
	TimeoutSec         int    `yaml:"timeout_sec" validate:"min=0"`
	SettleMs           int    `yaml:"settle_ms" validate:"min=0"`
	MaxPages           int    `yaml:"max_pages" validate:"min=0"`
	Interactions       int    `yaml:"interactions" validate:"min=0,max=30"`
	PaginationSelector string `yaml:"pagination_selector,omitempty"`
	LoadMoreSelector   string `yaml:"load_more_selector,omitempty"`
	InfiniteScroll     bool   `yaml:"infinite_scroll,omitempty"`
}

// FetchConfig converts the YAML settings into a fetch.Config; zero values
// pick up the fetcher's own defaults.
func (c Config) FetchConfig() fetch.Config {
	return fetch.Config{
		Mode:               fetch.Mode(c.Fetch.Mode),
		Timeout:            time.Duration(c.Fetch.TimeoutSec) * time.Second,
		Settle:             time.Duration(c.Fetch.SettleMs) * time.Millisecond,
		MaxPages:           c.Fetch.MaxPages,
		Interactions:       c.Fetch.Interactions,
		PaginationSelector: c.Fetch.PaginationSelector,
		LoadMoreSelector:   c.Fetch.LoadMoreSelector,
		InfiniteScroll:     c.Fetch.InfiniteScroll,
	}
}

// Default returns a Config with sensible defaults applied.
func Default() Config {
	return Config{
		Enabled:  true,
		Schedule: "manual",
		Fetch: FetchSettings{
			Mode:     string(fetch.ModeStatic),
			MaxPages: 10,
		},
	}
}

var validate = validator.New()

// Validate checks a Config, returning an error that lists every problem
// found.
func Validate(cfg Config) error {
	var errs []string

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = append(errs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
		} else {
			errs = append(errs, err.Error())
		}
	}

	// Cross-field checks the struct tags can't express.
	for i, s := range cfg.Strategies {
		if s.Kind == extract.KindSelector && strings.TrimSpace(s.Selectors.Container) == "" {
			errs = append(errs, fmt.Sprintf("strategies[%d]: selector strategy requires selectors.container", i))
		}
	}
	if cfg.Fetch.Mode == string(fetch.ModeStatic) && cfg.Fetch.LoadMoreSelector != "" {
		errs = append(errs, "fetch.load_more_selector: only valid in rendered mode")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// LoadDir reads all *.yaml files from dir (skipping files starting with
// "_"), parses each into a Config with defaults applied, and validates
// them. A non-existent directory returns an empty slice with no error. If
// any config is invalid an error naming the file and field problems is
// returned alongside the valid configs.
func LoadDir(dir string) ([]Config, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return []Config{}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading venue config dir %s: %w", dir, err)
	}

	var configs []Config
	var validationErrors []string

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "_") {
			continue
		}
		if ext := filepath.Ext(name); ext != ".yaml" && ext != ".yml" {
			continue
		}

		filePath := filepath.Join(dir, name)
		cfg, err := loadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", filePath, err)
		}

		if err := Validate(cfg); err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("%s: %s", filePath, err.Error()))
			continue
		}
		configs = append(configs, cfg)
	}

	if len(validationErrors) > 0 {
		return configs, fmt.Errorf("invalid venue configs:\n  %s", strings.Join(validationErrors, "\n  "))
	}
	return configs, nil
}

// Load reads and validates a single venue config file.
func Load(path string) (Config, error) {
	cfg, err := loadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("loading %s: %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func loadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	// Start from defaults so zero-value booleans and ints are set properly.
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing YAML: %w", err)
	}

	if cfg.Venue.Name == "" {
		cfg.Venue.Name = cfg.Name
	}
	if cfg.Fetch.MaxPages == 0 {
		cfg.Fetch.MaxPages = 10
	}

	return cfg, nil
}
