package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	profileRepo "voicetask/database/repository/profile"
	"voicetask/models"
)

// ProfileService owns the single user's contact profile.
type ProfileService interface {
	GetProfile(ctx context.Context) (*models.Profile, error)
	UpdateProfile(ctx context.Context, p models.Profile) (*models.Profile, error)
}

// DefaultProfileService is the production implementation.
type DefaultProfileService struct {
	Repo profileRepo.ProfileRepository
	// Defaults seeds the profile on first read.
	Defaults models.Profile
}

// ValidationError reports a rejected profile update.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// GetProfile returns the profile, creating and persisting defaults if none exists yet.
func (s *DefaultProfileService) GetProfile(ctx context.Context) (*models.Profile, error) {
	p, err := s.Repo.Get(ctx)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, profileRepo.ErrNotFound) {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	defaults := s.Defaults
	defaults.ID = models.ProfileID
	defaults.UpdatedAt = time.Now()
	if err := s.Repo.Save(ctx, defaults); err != nil {
		return nil, fmt.Errorf("create default profile: %w", err)
	}
	return &defaults, nil
}

// UpdateProfile overwrites the profile wholesale.
func (s *DefaultProfileService) UpdateProfile(ctx context.Context, p models.Profile) (*models.Profile, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	if p.Email != "" && !strings.Contains(p.Email, "@") {
		return nil, &ValidationError{Field: "email", Message: "must be a valid email address"}
	}

	p.ID = models.ProfileID
	p.UpdatedAt = time.Now()
	if err := s.Repo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	return &p, nil
}
