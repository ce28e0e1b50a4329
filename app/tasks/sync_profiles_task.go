package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/nickykapur/jobpool/app/database"
	"github.com/nickykapur/jobpool/app/profiles"
)

// SyncProfilesTask reloads profile files and upserts each profile's user and
// preference rows. Profiles removed from disk keep their database rows; a
// user's interaction history must survive a profile rename or mistake.
type SyncProfilesTask struct {
	Task
	profileCache *profiles.Cache
	userRepo     database.UserRepository
}

func NewSyncProfilesTask(profileCache *profiles.Cache, userRepo database.UserRepository) *SyncProfilesTask {
	return &SyncProfilesTask{
		Task:         NewTask(TaskTypeSyncProfiles),
		profileCache: profileCache,
		userRepo:     userRepo,
	}
}

func (t *SyncProfilesTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := t.profileCache.Run(); err != nil {
		return fmt.Errorf("failed to reload profiles: %w", err)
	}

	synced := 0
	for name, profile := range t.profileCache.GetProfiles() {
		user, err := t.userRepo.GetUserByName(name)
		if err != nil {
			slog.Error("Failed to look up profile user", "profile", name, "error", err)
			continue
		}
		if user == nil {
			if err := t.userRepo.UpsertUser(uuid.NewString(), name); err != nil {
				slog.Error("Failed to create profile user", "profile", name, "error", err)
				continue
			}
			if user, err = t.userRepo.GetUserByName(name); err != nil || user == nil {
				slog.Error("Failed to reload profile user", "profile", name, "error", err)
				continue
			}
		}

		prefs := profile.Preferences
		err = t.userRepo.UpsertPreferences(database.Preferences{
			UserID:             user.ID,
			JobTypes:           prefs.JobTypes,
			IncludeKeywords:    prefs.IncludeKeywords,
			ExcludeKeywords:    prefs.ExcludeKeywords,
			ExperienceLevels:   prefs.ExperienceLevels,
			Countries:          prefs.Countries,
			Cities:             prefs.Cities,
			PreferredCompanies: prefs.PreferredCompanies,
			ExcludedCompanies:  prefs.ExcludedCompanies,
			RemoteOnly:         prefs.RemoteOnly,
			EasyApplyOnly:      prefs.EasyApplyOnly,
			ExcludeSenior:      prefs.ExcludeSenior,
		})
		if err != nil {
			slog.Error("Failed to sync preferences", "profile", name, "error", err)
			continue
		}
		synced++
	}

	slog.Info("Task completed",
		"type", "SyncProfiles",
		"duration", t.GetDuration(),
		"profiles", t.profileCache.GetProfileCount(),
		"synced", synced)

	return nil
}
