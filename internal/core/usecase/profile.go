package usecase

import (
	"context"
	"log/slog"

	"github.com/kirillkom/gemini-drive/internal/core/domain"
	"github.com/kirillkom/gemini-drive/internal/core/ports"
)

type ProfileUseCase struct {
	profiles ports.ProfileStore
	photos   ports.ProfilePhotoStore
}

func NewProfileUseCase(profiles ports.ProfileStore, photos ports.ProfilePhotoStore) *ProfileUseCase {
	return &ProfileUseCase{
		profiles: profiles,
		photos:   photos,
	}
}

func (uc *ProfileUseCase) Get(ctx context.Context, userID string) (*domain.UserProfile, error) {
	if userID == "" {
		return nil, domain.WrapError(domain.ErrUnauthorized, "get profile", errNoSession)
	}
	return uc.profiles.Get(ctx, userID)
}

// Update replaces the photo before touching the profile row, so a failed
// photo upload leaves the profile unchanged. The previous photo is released
// afterwards; the photo store treats a missing object as success.
func (uc *ProfileUseCase) Update(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.UserProfile, error) {
	if userID == "" {
		return nil, domain.WrapError(domain.ErrUnauthorized, "update profile", errNoSession)
	}

	current, err := uc.profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	patch := domain.ProfilePatch{DisplayName: update.DisplayName}
	oldPhoto := current.PhotoRef

	switch {
	case update.PhotoData != nil:
		locator, err := uc.photos.Put(ctx, userID, update.PhotoData)
		if err != nil {
			return nil, domain.WrapError(domain.ErrCollaborator, "store profile photo", err)
		}
		patch.PhotoRef = &locator
	case update.RemovePhoto:
		empty := ""
		patch.PhotoRef = &empty
	}

	updated, err := uc.profiles.Update(ctx, userID, patch)
	if err != nil {
		return nil, err
	}

	if patch.PhotoRef != nil && oldPhoto != "" && oldPhoto != *patch.PhotoRef {
		if err := uc.photos.Delete(ctx, oldPhoto); err != nil {
			slog.Warn("release old profile photo failed", "locator", oldPhoto, "error", err)
		}
	}
	return updated, nil
}
