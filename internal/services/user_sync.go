package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"evently/internal/domain"
)

type userSyncService struct {
	userRepo       domain.UserRepository
	tx             domain.Transactor
	idp            domain.IdentityProvider
	emailService   domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration
	now            func() time.Time
}

// NewUserSyncService creates a UserSyncService. emailService may be nil.
func NewUserSyncService(
	userRepo domain.UserRepository,
	tx domain.Transactor,
	idp domain.IdentityProvider,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.UserSyncService {
	return &userSyncService{
		userRepo:       userRepo,
		tx:             tx,
		idp:            idp,
		emailService:   emailService,
		logger:         logger,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

// SyncCreated stores the user and writes the local id back to the identity
// provider. Both happen in one transaction: if the write-back fails the local
// row is rolled back and the provider's retry starts from scratch.
func (s *userSyncService) SyncCreated(ctx context.Context, data domain.ClerkUserData) (*domain.User, error) {
	if err := requireClerkID(data.ID); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	now := s.now()
	user := domain.NewUser(data.ID, data.FirstEmail(), data.Username, data.FirstName, data.LastName, data.ImageURL, now, now)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.userRepo.Create(ctx, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return s.writeBack(ctx, user)
	})
	if errors.Is(err, domain.ErrDuplicateUser) {
		// A redelivery of a create we already committed.
		return s.resyncExisting(ctx, data.ID)
	}
	if err != nil {
		return nil, err
	}

	s.sendWelcome(ctx, user)
	return user, nil
}

func (s *userSyncService) resyncExisting(ctx context.Context, clerkID string) (*domain.User, error) {
	existing, err := s.userRepo.GetByClerkID(ctx, clerkID)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing user: %w", err)
	}
	if err := s.writeBack(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *userSyncService) writeBack(ctx context.Context, user *domain.User) error {
	metadata := map[string]any{domain.MetadataUserIDKey: user.ID}
	if err := s.idp.UpdatePublicMetadata(ctx, user.ClerkID, metadata); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIdentityProvider, err)
	}
	return nil
}

func (s *userSyncService) sendWelcome(ctx context.Context, user *domain.User) {
	if s.emailService == nil || user.Email == "" {
		return
	}
	data := &domain.WelcomeMessageEmailData{
		Email:     user.Email,
		FirstName: user.FirstName,
		Username:  user.Username,
	}
	if err := s.emailService.SendWelcomeMessage(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "welcome email failed", "clerk_id", user.ClerkID, "err", err)
	}
}

func (s *userSyncService) SyncUpdated(ctx context.Context, data domain.ClerkUserData) (*domain.User, error) {
	if err := requireClerkID(data.ID); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.UpdateByClerkID(ctx, data.ID, data.Profile(), s.now())
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (s *userSyncService) SyncDeleted(ctx context.Context, clerkID string) (*domain.User, error) {
	if err := requireClerkID(clerkID); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.DeleteByClerkID(ctx, clerkID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}
	return user, nil
}

func (s *userSyncService) GetByClerkID(ctx context.Context, clerkID string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByClerkID(ctx, clerkID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func requireClerkID(id string) error {
	if strings.TrimSpace(id) == "" {
		return &domain.ValidationError{Problems: []string{"data.id is required"}}
	}
	return nil
}
