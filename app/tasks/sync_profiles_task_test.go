package tasks

import (
	"context"
	"testing"

	"github.com/nickykapur/jobpool/app/database"
)

// MockUserRepository implements a simple mock for testing
type MockUserRepository struct {
	users map[string]database.User
	prefs map[string]database.Preferences
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]database.User),
		prefs: make(map[string]database.Preferences),
	}
}

func (m *MockUserRepository) GetUserByName(name string) (*database.User, error) {
	for _, u := range m.users {
		if u.Name == name {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *MockUserRepository) GetUserCount() (int, error) {
	return len(m.users), nil
}

func (m *MockUserRepository) UpsertUser(id, name string) error {
	if existing, _ := m.GetUserByName(name); existing != nil {
		return nil
	}
	m.users[id] = database.User{ID: id, Name: name}
	return nil
}

func (m *MockUserRepository) GetPreferences(userID string) (*database.Preferences, error) {
	p, ok := m.prefs[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *MockUserRepository) UpsertPreferences(p database.Preferences) error {
	m.prefs[p.UserID] = p
	return nil
}

func TestSyncProfilesTask_CreatesUsersAndPreferences(t *testing.T) {
	cache := loadedProfileCache(t, map[string]string{
		"alice.yml": `
preferences:
  countries:
    - Ireland
  remote_only: true
queries:
  - term: backend engineer
`,
	})
	userRepo := NewMockUserRepository()

	task := NewSyncProfilesTask(cache, userRepo)
	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	user, _ := userRepo.GetUserByName("alice")
	if user == nil {
		t.Fatal("Expected user row for the alice profile")
	}

	prefs, _ := userRepo.GetPreferences(user.ID)
	if prefs == nil {
		t.Fatal("Expected preferences for the alice profile")
	}
	if len(prefs.Countries) != 1 || prefs.Countries[0] != "Ireland" {
		t.Errorf("Expected countries synced, got %v", prefs.Countries)
	}
	if !prefs.RemoteOnly {
		t.Error("Expected remote_only synced")
	}
}

func TestSyncProfilesTask_KeepsExistingUserID(t *testing.T) {
	cache := loadedProfileCache(t, map[string]string{
		"alice.yml": `
queries:
  - term: backend engineer
`,
	})
	userRepo := NewMockUserRepository()
	userRepo.UpsertUser("existing-id", "alice")

	task := NewSyncProfilesTask(cache, userRepo)
	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	user, _ := userRepo.GetUserByName("alice")
	if user.ID != "existing-id" {
		t.Errorf("Expected the existing user id to survive a sync, got %s", user.ID)
	}

	if count, _ := userRepo.GetUserCount(); count != 1 {
		t.Errorf("Expected a single user, got %d", count)
	}
}

func TestSyncProfilesTask_CancelledContext(t *testing.T) {
	cache := loadedProfileCache(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	task := NewSyncProfilesTask(cache, NewMockUserRepository())
	if err := task.Execute(ctx); err == nil {
		t.Error("Expected error for cancelled context")
	}
}
