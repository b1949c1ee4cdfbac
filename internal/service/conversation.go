package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ChasingCode34/trip-sync/internal/domain"
	"github.com/ChasingCode34/trip-sync/internal/redis"
	"github.com/ChasingCode34/trip-sync/internal/repository"
)

// ConversationService is the entry point for every inbound message. It
// resolves the sender to a user (creating one on first contact), routes
// unverified users into onboarding, and routes verified users to the ride
// keywords or the ride-request path. It always produces a reply.
type ConversationService struct {
	userRepo   repository.UserRepository
	onboarding *OnboardingService
	rides      *RideService
	cache      redis.CacheStoreInterface
}

// NewConversationService creates a new ConversationService. cache may be
// nil.
func NewConversationService(
	userRepo repository.UserRepository,
	onboarding *OnboardingService,
	rides *RideService,
	cache redis.CacheStoreInterface,
) *ConversationService {
	return &ConversationService{
		userRepo:   userRepo,
		onboarding: onboarding,
		rides:      rides,
		cache:      cache,
	}
}

// HandleMessage processes one inbound message and returns the reply text.
func (s *ConversationService) HandleMessage(ctx context.Context, from, body string) (string, error) {
	from = strings.TrimSpace(from)
	body = strings.TrimSpace(body)
	if from == "" {
		return "", ErrInvalidSender
	}

	user, err := s.lookupOrCreateUser(ctx, from)
	if err != nil {
		return "", err
	}

	if !user.Verified {
		reply, err := s.onboarding.HandleMessage(ctx, user, body)
		if err == nil && user.Verified {
			s.cacheUser(ctx, user)
		}
		return reply, err
	}

	switch strings.ToLower(body) {
	case "cancel":
		return s.rides.Cancel(ctx, user)
	case "status":
		return s.rides.Status(ctx, user)
	default:
		return s.rides.CreateRide(ctx, user, body)
	}
}

// lookupOrCreateUser resolves the sender to a user record, lazily creating
// one on first contact. The creating message itself is still handled as an
// onboarding answer by the caller; there is no separate greeting branch.
// Verified users are served from cache when possible; their identity
// fields never change after onboarding.
func (s *ConversationService) lookupOrCreateUser(ctx context.Context, phone string) (*domain.User, error) {
	if s.cache != nil {
		cached, err := s.cache.GetUser(ctx, phone)
		if err != nil {
			log.Printf("user cache lookup for %s: %v", phone, err)
		} else if cached != nil {
			return &domain.User{
				ID:          cached.ID,
				PhoneNumber: cached.PhoneNumber,
				FullName:    cached.FullName,
				Email:       cached.Email,
				Verified:    true,
			}, nil
		}
	}

	user, err := s.userRepo.GetByPhone(ctx, phone)
	if err == nil {
		if user.Verified {
			s.cacheUser(ctx, user)
		}
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	user = &domain.User{
		ID:          uuid.New().String(),
		PhoneNumber: phone,
		CreatedAt:   time.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *ConversationService) cacheUser(ctx context.Context, user *domain.User) {
	if s.cache == nil || !user.Verified {
		return
	}
	err := s.cache.SetUser(ctx, &redis.CachedUser{
		ID:          user.ID,
		PhoneNumber: user.PhoneNumber,
		FullName:    user.FullName,
		Email:       user.Email,
	})
	if err != nil {
		log.Printf("cache user %s: %v", user.ID, err)
	}
}
