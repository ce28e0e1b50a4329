package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nickykapur/jobpool/app/database"
)

var ErrPostingNotFound = errors.New("posting not found")

// Overlay manages per-user annotations on shared canonical postings.
type Overlay struct {
	postings     database.PostingRepository
	interactions database.InteractionRepository
	signatures   database.SignatureRepository
	cache        ViewCache
}

func NewOverlay(postings database.PostingRepository, interactions database.InteractionRepository,
	signatures database.SignatureRepository, cache ViewCache) *Overlay {
	return &Overlay{
		postings:     postings,
		interactions: interactions,
		signatures:   signatures,
		cache:        cache,
	}
}

// SetInteraction applies a partial update to one user's overlay on one
// posting. Unset patch fields are left alone. Marking a posting rejected
// clears applied unless the caller re-asserts it in the same patch, and any
// transition to applied or rejected refreshes the signature index so future
// reposts of the same opening are suppressed.
func (o *Overlay) SetInteraction(ctx context.Context, userID, postingID string, patch InteractionPatch) error {
	posting, err := o.postings.GetPosting(postingID)
	if err != nil {
		return fmt.Errorf("failed to load posting: %w", err)
	}
	if posting == nil {
		return ErrPostingNotFound
	}

	ix, err := o.interactions.GetInteraction(userID, postingID)
	if err != nil {
		return fmt.Errorf("failed to load interaction: %w", err)
	}
	if ix == nil {
		ix = &database.Interaction{
			ID:        uuid.NewString(),
			UserID:    userID,
			PostingID: postingID,
		}
	}

	now := time.Now().UTC()

	if patch.Rejected != nil {
		if *patch.Rejected && !ix.Rejected {
			ix.RejectedAt = &now
		}
		ix.Rejected = *patch.Rejected
		// A posting cannot be rejected and applied at once unless the
		// caller explicitly re-asserts applied in the same patch.
		if *patch.Rejected && patch.Applied == nil {
			ix.Applied = false
		}
	}
	if patch.Applied != nil {
		if *patch.Applied && !ix.Applied {
			ix.AppliedAt = &now
		}
		ix.Applied = *patch.Applied
	}
	if patch.Saved != nil {
		if *patch.Saved && !ix.Saved {
			ix.SavedAt = &now
		}
		ix.Saved = *patch.Saved
	}
	if patch.Hidden != nil {
		if *patch.Hidden && !ix.Hidden {
			ix.HiddenAt = &now
		}
		ix.Hidden = *patch.Hidden
	}
	if patch.Notes != nil {
		ix.Notes = *patch.Notes
	}
	if patch.Rating != nil {
		ix.Rating = patch.Rating
	}

	if err := o.interactions.UpsertInteraction(*ix); err != nil {
		return fmt.Errorf("failed to store interaction: %w", err)
	}

	evaluated := (patch.Applied != nil && *patch.Applied) ||
		(patch.Rejected != nil && *patch.Rejected)
	if evaluated {
		err := o.signatures.RecordApplied(
			FoldCompany(posting.Company), NormalizeTitle(posting.Title),
			posting.Country, posting.ID, now)
		if err != nil {
			// The overlay write already committed; a stale signature only
			// weakens repost suppression, so log and carry on.
			slog.Error("Failed to refresh signature index",
				"posting", posting.ID, "error", err)
		}
	}

	if o.cache != nil {
		if err := o.cache.Invalidate(ctx, viewCacheKey(userID)); err != nil {
			slog.Warn("Failed to invalidate view cache", "user", userID, "error", err)
		}
	}

	return nil
}
