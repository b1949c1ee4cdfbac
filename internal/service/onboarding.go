package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"

	"github.com/ChasingCode34/trip-sync/internal/domain"
	"github.com/ChasingCode34/trip-sync/internal/mailer"
	"github.com/ChasingCode34/trip-sync/internal/repository"
)

// OnboardingService drives a new user through name → email → code
// verification. Each inbound message while unverified answers the current
// missing field; there is no lookahead or replay across steps.
type OnboardingService struct {
	userRepo       repository.UserRepository
	mailer         mailer.Mailer
	allowedDomains []string
}

// NewOnboardingService creates a new OnboardingService. allowedDomains is
// the set of email domains accepted for verification, e.g. ["emory.edu"].
func NewOnboardingService(userRepo repository.UserRepository, m mailer.Mailer, allowedDomains []string) *OnboardingService {
	domains := make([]string, 0, len(allowedDomains))
	for _, d := range allowedDomains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			domains = append(domains, d)
		}
	}
	return &OnboardingService{
		userRepo:       userRepo,
		mailer:         m,
		allowedDomains: domains,
	}
}

// HandleMessage advances the user one onboarding step at most and returns
// the reply. Fields are persisted before the reply is composed, so a reply
// is never sent for a state that did not commit.
func (s *OnboardingService) HandleMessage(ctx context.Context, user *domain.User, body string) (string, error) {
	switch user.OnboardingState() {
	case domain.OnboardingNeedName:
		return s.handleName(ctx, user, body)
	case domain.OnboardingNeedEmail:
		return s.handleEmail(ctx, user, body)
	case domain.OnboardingNeedCode:
		return s.handleCode(ctx, user, body)
	default:
		return msgVerified(), nil
	}
}

func (s *OnboardingService) handleName(ctx context.Context, user *domain.User, body string) (string, error) {
	name := strings.TrimSpace(body)
	// At least two tokens and three characters total. A bare greeting like
	// "hi" fails this and gets the instructions instead.
	if len(name) < 3 || len(strings.Fields(name)) < 2 {
		return msgNameRejected(), nil
	}

	user.FullName = name
	if err := s.userRepo.Update(ctx, user); err != nil {
		return "", fmt.Errorf("persist name: %w", err)
	}
	return msgAskEmail(firstName(name)), nil
}

func (s *OnboardingService) handleEmail(ctx context.Context, user *domain.User, body string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(body))

	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return msgEmailMalformed(), nil
	}
	emailDomain := email[at+1:]
	if !strings.Contains(emailDomain, ".") {
		return msgEmailMalformed(), nil
	}
	if !s.domainAllowed(emailDomain) {
		return msgEmailWrongDomain(s.allowedDomains), nil
	}

	// Email is the real dedup key: one institutional identity, one account.
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("check email: %w", err)
	}
	if existing != nil && existing.ID != user.ID {
		return msgEmailTaken(), nil
	}

	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}

	user.Email = email
	user.VerificationCode = code
	if err := s.userRepo.Update(ctx, user); err != nil {
		return "", fmt.Errorf("persist email: %w", err)
	}

	// Delivery failure must not fail the request: the state is committed
	// and the user can text back later once email is fixed.
	if err := s.mailer.SendVerificationCode(user.Email, code); err != nil {
		log.Printf("failed to send verification code to %s: %v", user.Email, err)
	}

	return msgCodeSent(user.Email), nil
}

func (s *OnboardingService) handleCode(ctx context.Context, user *domain.User, body string) (string, error) {
	if strings.TrimSpace(body) != user.VerificationCode {
		return msgCodeWrong(user.Email), nil
	}

	user.Verified = true
	user.VerificationCode = ""
	if err := s.userRepo.Update(ctx, user); err != nil {
		return "", fmt.Errorf("persist verification: %w", err)
	}
	return msgVerified(), nil
}

func (s *OnboardingService) domainAllowed(emailDomain string) bool {
	for _, d := range s.allowedDomains {
		if emailDomain == d {
			return true
		}
	}
	return false
}

// generateCode returns a 6-digit zero-padded code, uniform over
// 000000–999999. Collisions across users are fine; email uniqueness is
// what prevents duplicate accounts.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func firstName(full string) string {
	if fields := strings.Fields(full); len(fields) > 0 {
		return fields[0]
	}
	return full
}
