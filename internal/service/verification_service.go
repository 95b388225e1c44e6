package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SnehashisOrg/webapp/internal/apperr"
	"github.com/SnehashisOrg/webapp/internal/model"
	"github.com/SnehashisOrg/webapp/internal/notify"
	"github.com/SnehashisOrg/webapp/internal/repository"
	"github.com/google/uuid"
)

// VerificationPublisher hands the issued token payload to the notification
// dispatcher. The concrete implementation publishes to NATS.
type VerificationPublisher interface {
	PublishVerification(ctx context.Context, event notify.VerificationEvent) error
}

type VerificationService interface {
	Issue(ctx context.Context, user *model.User) (*model.VerificationToken, error)
	Consume(ctx context.Context, token string) error
}

type verificationService struct {
	tokenRepo repository.TokenRepository
	userRepo  repository.UserRepository
	publisher VerificationPublisher
	logger    *slog.Logger
	baseURL   string
	ttl       time.Duration
	now       func() time.Time
}

func NewVerificationService(
	tokenRepo repository.TokenRepository,
	userRepo repository.UserRepository,
	publisher VerificationPublisher,
	logger *slog.Logger,
	baseURL string,
	ttl time.Duration,
) VerificationService {
	return &verificationService{
		tokenRepo: tokenRepo,
		userRepo:  userRepo,
		publisher: publisher,
		logger:    logger,
		baseURL:   baseURL,
		ttl:       ttl,
		now:       time.Now,
	}
}

// Issue mints a random token bound to the user's email, persists it, and
// hands the payload to the dispatcher. Token delivery is out-of-band, so a
// publish failure is logged and the registration proceeds.
func (s *verificationService) Issue(ctx context.Context, user *model.User) (*model.VerificationToken, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	token := &model.VerificationToken{
		ID:        uuid.New(),
		Email:     user.Email,
		Token:     hex.EncodeToString(raw),
		ExpiresAt: s.now().Add(s.ttl),
	}

	if err := s.tokenRepo.Create(ctx, token); err != nil {
		return nil, apperr.ErrUnavailable
	}

	event := notify.VerificationEvent{
		FirstName: user.FirstName,
		Email:     user.Email,
		Link:      s.baseURL + "/user/verify?token=" + token.Token,
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
	}
	if err := s.publisher.PublishVerification(ctx, event); err != nil {
		s.logger.Error("verification event publish failed",
			"email", user.Email, "error", err)
	}

	return token, nil
}

// Consume redeems a token. An absent or expired token is a validation
// failure; a token whose user row is gone is a data-integrity NotFound.
// Re-consuming an already-verified, still-unexpired token succeeds without
// touching any state.
func (s *verificationService) Consume(ctx context.Context, token string) error {
	t, err := s.tokenRepo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.ErrValidation
		}
		return apperr.ErrUnavailable
	}

	if t.Expired(s.now()) {
		return apperr.ErrValidation
	}

	if _, err := s.userRepo.FindByEmail(ctx, t.Email); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.ErrNotFound
		}
		return apperr.ErrUnavailable
	}

	if t.LinkVerified {
		return nil
	}

	if err := s.tokenRepo.MarkConsumed(ctx, t.Email, t.Token); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.ErrNotFound
		}
		return apperr.ErrUnavailable
	}

	return nil
}
