package profiles

import (
	"os"
	"path/filepath"
	"testing"
)

func writeProfile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write profile file: %v", err)
	}
}

func TestCache_Run(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "alice.yml", `
preferences:
  countries:
    - Ireland
  remote_only: true
queries:
  - term: backend engineer
    location: Dublin
    country: Ireland
`)
	writeProfile(t, dir, "bob.yaml", `
queries:
  - term: security analyst
`)

	cache := NewCache(dir)
	if err := cache.Run(); err != nil {
		t.Fatalf("Failed to load profiles: %v", err)
	}

	if cache.GetProfileCount() != 2 {
		t.Errorf("Expected 2 profiles, got %d", cache.GetProfileCount())
	}

	alice, err := cache.GetProfile("alice")
	if err != nil {
		t.Fatalf("Failed to get profile: %v", err)
	}
	if alice.Name != "alice" {
		t.Errorf("Expected profile name from file name, got %q", alice.Name)
	}
	if !alice.Preferences.RemoteOnly {
		t.Error("Expected remote_only preference parsed")
	}
	if len(alice.Queries) != 1 || alice.Queries[0].Term != "backend engineer" {
		t.Errorf("Expected parsed query, got %+v", alice.Queries)
	}
	if alice.Queries[0].Country != "Ireland" {
		t.Errorf("Expected query country, got %q", alice.Queries[0].Country)
	}
}

func TestCache_Run_MissingDirectory(t *testing.T) {
	cache := NewCache(filepath.Join(t.TempDir(), "does-not-exist"))

	if err := cache.Run(); err != nil {
		t.Errorf("Expected missing directory to be a no-op, got %v", err)
	}
	if cache.GetProfileCount() != 0 {
		t.Errorf("Expected empty cache, got %d profiles", cache.GetProfileCount())
	}
}

func TestCache_Run_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "broken.yml", "queries: [unclosed")

	cache := NewCache(dir)
	if err := cache.Run(); err == nil {
		t.Error("Expected error for unparseable profile file")
	}
}

func TestCache_Run_QueryWithoutTerm(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "alice.yml", `
queries:
  - location: Dublin
`)

	cache := NewCache(dir)
	if err := cache.Run(); err == nil {
		t.Error("Expected error for query missing its term")
	}
}

func TestCache_Run_InvalidExperienceLevel(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "alice.yml", `
preferences:
  experience_levels:
    - wizard
`)

	cache := NewCache(dir)
	if err := cache.Run(); err == nil {
		t.Error("Expected error for unknown experience level")
	}
}

func TestCache_GetProfile_Missing(t *testing.T) {
	cache := NewCache(t.TempDir())

	if _, err := cache.GetProfile("nobody"); err == nil {
		t.Error("Expected error for missing profile")
	}
}

func TestCache_Run_Reload(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "alice.yml", `
queries:
  - term: backend engineer
`)

	cache := NewCache(dir)
	if err := cache.Run(); err != nil {
		t.Fatalf("Failed to load profiles: %v", err)
	}

	writeProfile(t, dir, "alice.yml", `
queries:
  - term: platform engineer
`)
	if err := cache.Run(); err != nil {
		t.Fatalf("Failed to reload profiles: %v", err)
	}

	alice, err := cache.GetProfile("alice")
	if err != nil {
		t.Fatalf("Failed to get profile: %v", err)
	}
	if alice.Queries[0].Term != "platform engineer" {
		t.Errorf("Expected reloaded query, got %q", alice.Queries[0].Term)
	}
}
