package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr     string `yaml:"addr" json:"addr" validate:"required"`
	LogLevel string `yaml:"log_level" json:"log_level" validate:"oneof=debug info warn error"`

	BoardSize   int    `yaml:"board_size" json:"board_size" validate:"min=5,max=25,gtefield=WinLength"`
	WinLength   int    `yaml:"win_length" json:"win_length" validate:"min=3,max=10"`
	EngineColor string `yaml:"engine_color" json:"engine_color" validate:"oneof=black white"`

	AiDepth          int  `yaml:"ai_depth" json:"ai_depth" validate:"min=0,ltefield=AiMaxDepth"`
	AiMaxDepth       int  `yaml:"ai_max_depth" json:"ai_max_depth" validate:"min=0,max=8"`
	AiLogSearchStats bool `yaml:"ai_log_search_stats" json:"ai_log_search_stats"`
	// AiCacheEntries sizes the search result cache; 0 turns it off.
	AiCacheEntries int `yaml:"ai_cache_entries" json:"ai_cache_entries" validate:"min=0,max=1048576"`

	GhostMode         bool `yaml:"ghost_mode" json:"ghost_mode"`
	AiGhostThrottleMs int  `yaml:"ai_ghost_throttle_ms" json:"ai_ghost_throttle_ms" validate:"min=0"`
	TickIntervalMs    int  `yaml:"tick_interval_ms" json:"tick_interval_ms" validate:"min=5,max=1000"`

	MoveRatePerSec float64 `yaml:"move_rate_per_sec" json:"move_rate_per_sec" validate:"gte=0"`
	MoveBurst      int     `yaml:"move_burst" json:"move_burst" validate:"min=1"`
}

func Default() Config {
	return Config{
		Addr:              ":8080",
		LogLevel:          "info",
		BoardSize:         15,
		WinLength:         5,
		EngineColor:       "black",
		AiDepth:           2,
		AiMaxDepth:        4,
		AiLogSearchStats:  false,
		AiCacheEntries:    4096,
		GhostMode:         false,
		AiGhostThrottleMs: 50,
		TickIntervalMs:    30,
		MoveRatePerSec:    10,
		MoveBurst:         5,
	}
}

var validate = validator.New()

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Load reads the YAML file at path over the defaults. A missing file is
// created with the default values first.
func Load(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := Save(path, Default()); err != nil {
			return Config{}, err
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read the config file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse the config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Save(path string, cfg Config) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create the config directory: %w", err)
		}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
