package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"lofty-chat/internal/domain"
	"lofty-chat/internal/repository"
)

// ProfileUpdate es una actualización parcial del perfil.
type ProfileUpdate struct {
	Name          *string                      `json:"name"`
	Avatar        *string                      `json:"avatar"`
	Email         *string                      `json:"email"`
	Language      *string                      `json:"language"`
	Theme         *string                      `json:"theme"`
	DarkMode      *bool                        `json:"darkMode"`
	Notifications *domain.NotificationSettings `json:"notificationSettings"`
	Security      *domain.SecuritySettings     `json:"securitySettings"`
}

type ProfileService struct {
	mu      sync.Mutex
	repo    repository.ProfileRepository
	logger  *zap.Logger
	profile domain.UserProfile
}

func NewProfileService(repo repository.ProfileRepository, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{
		repo:    repo,
		logger:  logger,
		profile: DefaultProfile(time.Now().UTC()),
	}
}

// DefaultProfile es el perfil con el que arranca un usuario nuevo.
func DefaultProfile(now time.Time) domain.UserProfile {
	return domain.UserProfile{
		Name:     "User Name",
		Email:    "user@example.com",
		Language: "english",
		Notifications: domain.NotificationSettings{
			Push:  true,
			Email: true,
			Sound: true,
		},
		Security: domain.SecuritySettings{
			LastPasswordChange: now.Format(time.RFC3339),
		},
	}
}

func (s *ProfileService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.repo == nil {
		return nil
	}
	stored, ok, err := s.repo.Get(ctx)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	if ok {
		s.profile = stored
	}
	return nil
}

func (s *ProfileService) Get() domain.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

func (s *ProfileService) Update(ctx context.Context, u ProfileUpdate) (domain.UserProfile, error) {
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return domain.UserProfile{}, domain.ValidationError("name", "is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.profile
	if u.Name != nil {
		next.Name = strings.TrimSpace(*u.Name)
	}
	if u.Avatar != nil {
		next.Avatar = *u.Avatar
	}
	if u.Email != nil {
		next.Email = strings.TrimSpace(*u.Email)
	}
	if u.Language != nil {
		next.Language = *u.Language
	}
	if u.Theme != nil {
		next.Theme = *u.Theme
	}
	if u.DarkMode != nil {
		next.DarkMode = *u.DarkMode
	}
	if u.Notifications != nil {
		next.Notifications = *u.Notifications
	}
	if u.Security != nil {
		next.Security = *u.Security
	}
	s.profile = next

	if s.repo != nil {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
		defer cancel()
		if err := s.repo.Save(ctx, next); err != nil {
			s.logger.Warn("persist profile failed", zap.Error(err))
		}
	}
	return next, nil
}
