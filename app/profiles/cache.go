package profiles

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Cache loads user profiles from the profiles directory and serves them from
// memory. Reloading is safe under concurrent readers.
type Cache struct {
	profilesDir string
	cache       map[string]*Profile
	mu          sync.RWMutex
}

func NewCache(profilesDir string) *Cache {
	return &Cache{
		profilesDir: profilesDir,
		cache:       make(map[string]*Profile),
	}
}

// Run loads every profile file in the directory into the cache.
func (c *Cache) Run() error {
	if _, err := os.Stat(c.profilesDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(c.profilesDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find profile files: %w", err)
	}
	yamlFiles, err := filepath.Glob(filepath.Join(c.profilesDir, "*.yaml"))
	if err != nil {
		return fmt.Errorf("failed to find profile files: %w", err)
	}
	files = append(files, yamlFiles...)

	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))

		profile, err := c.LoadProfile(name, file)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Profile loaded", "profile", name, "queries", len(profile.Queries))
	}

	return nil
}

func (c *Cache) LoadProfile(name, path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	profile.Name = name

	if err := validateProfile(&profile); err != nil {
		return nil, fmt.Errorf("invalid profile %s: %w", path, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[name] = &profile

	return &profile, nil
}

func (c *Cache) GetProfile(name string) (*Profile, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	profile, ok := c.cache[name]
	if !ok {
		return nil, fmt.Errorf("profile with name '%s' not found", name)
	}
	return profile, nil
}

func (c *Cache) GetProfiles() map[string]*Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()

	profilesCopy := make(map[string]*Profile, len(c.cache))
	for k, v := range c.cache {
		profilesCopy[k] = v
	}
	return profilesCopy
}

func (c *Cache) GetProfileCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

func validateProfile(profile *Profile) error {
	if profile.Name == "" {
		return fmt.Errorf("profile name is required")
	}

	for i, query := range profile.Queries {
		if query.Term == "" {
			return fmt.Errorf("query at index %d must have a term", i)
		}
	}

	validLevels := map[string]bool{
		"entry": true, "junior": true, "mid": true, "senior": true,
	}
	for _, level := range profile.Preferences.ExperienceLevels {
		if !validLevels[strings.ToLower(level)] {
			return fmt.Errorf("invalid experience level: %s", level)
		}
	}

	return nil
}
