package main

import (
	"sync"

	"github.com/AISoldierWYN/Gomoku/internal/config"
)

type Config = config.Config

type ConfigStore struct {
	mu     sync.RWMutex
	config Config
	path   string
}

var configStore = &ConfigStore{config: config.Default()}

func GetConfig() Config {
	return configStore.Get()
}

func (c *ConfigStore) Get() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

func (c *ConfigStore) Path() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.path
}

// Update validates and stores newConfig. The previous config stays active
// when validation fails.
func (c *ConfigStore) Update(newConfig Config) error {
	if err := newConfig.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	c.config = newConfig
	c.mu.Unlock()
	return nil
}

// Load reads path into the store and remembers it for Persist.
func (c *ConfigStore) Load(path string) (Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return Config{}, err
	}
	c.mu.Lock()
	c.config = cfg
	c.path = path
	c.mu.Unlock()
	return cfg, nil
}

func (c *ConfigStore) Persist() error {
	c.mu.RLock()
	path, cfg := c.path, c.config
	c.mu.RUnlock()
	if path == "" {
		return nil
	}
	return config.Save(path, cfg)
}
