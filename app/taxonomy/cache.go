package taxonomy

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Cache holds the loaded taxonomy and hands out a shared snapshot to every
// component that needs it.
type Cache struct {
	path   string
	config *Config
	mu     sync.RWMutex
}

func NewCache(path string) *Cache {
	return &Cache{
		path:   path,
		config: Default(),
	}
}

// Run loads the taxonomy file. A missing file is not an error; the built-in
// taxonomy stays in effect.
func (c *Cache) Run() error {
	if _, err := os.Stat(c.path); os.IsNotExist(err) {
		slog.Debug("Taxonomy file not found, using built-in taxonomy", "path", c.path)
		return nil
	}

	config, err := c.parse(c.path)
	if err != nil {
		return fmt.Errorf("error loading %s: %w", c.path, err)
	}

	if err := c.validate(config); err != nil {
		return fmt.Errorf("invalid taxonomy %s: %w", c.path, err)
	}

	c.mu.Lock()
	c.config = config
	c.mu.Unlock()

	slog.Debug("Taxonomy loaded", "path", c.path, "categories", len(config.Categories), "default", config.DefaultCategory)

	return nil
}

func (c *Cache) Get() *Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

func (c *Cache) parse(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	c.setDefaults(&config)

	return &config, nil
}

func (c *Cache) setDefaults(config *Config) {
	if config.DefaultCategory == "" {
		config.DefaultCategory = "other"
	}
	if config.DescriptionSentences == 0 {
		config.DescriptionSentences = 2
	}
}

func (c *Cache) validate(config *Config) error {
	if len(config.Categories) < 2 {
		return fmt.Errorf("taxonomy must declare at least two categories")
	}

	seen := make(map[string]bool, len(config.Categories))
	for i, category := range config.Categories {
		if category.Slug == "" {
			return fmt.Errorf("category at index %d has an empty slug", i)
		}
		if seen[category.Slug] {
			return fmt.Errorf("duplicate category slug: %s", category.Slug)
		}
		seen[category.Slug] = true
	}

	if !seen[config.DefaultCategory] {
		return fmt.Errorf("default category '%s' is not a declared category", config.DefaultCategory)
	}

	if config.DescriptionSentences < 1 {
		return fmt.Errorf("description sentence count must be positive")
	}

	return nil
}
