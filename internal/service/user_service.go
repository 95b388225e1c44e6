package service

import (
	"context"
	"errors"
	"strings"

	"github.com/SnehashisOrg/webapp/internal/apperr"
	"github.com/SnehashisOrg/webapp/internal/auth"
	"github.com/SnehashisOrg/webapp/internal/model"
	"github.com/SnehashisOrg/webapp/internal/repository"
	"github.com/google/uuid"
)

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// UpdateInput carries the optional profile fields; Password here is the raw
// value, hashed before it reaches the repository.
type UpdateInput struct {
	FirstName *string
	LastName  *string
	Password  *string
}

type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*model.User, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateProfile(ctx context.Context, email string, input UpdateInput) error
	CheckStore(ctx context.Context) error
}

type userService struct {
	userRepo   repository.UserRepository
	verifyGate bool
}

// NewUserService builds the credential store operations. verifyGate enables
// the email-verification check during authentication.
func NewUserService(userRepo repository.UserRepository, verifyGate bool) UserService {
	return &userService{userRepo: userRepo, verifyGate: verifyGate}
}

func (s *userService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	hashed, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, apperr.ErrValidation
	}

	user := &model.User{
		ID:        uuid.New(),
		Email:     strings.TrimSpace(input.Email),
		Password:  hashed,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
	}

	created, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, apperr.ErrConflict
		}
		return nil, apperr.ErrUnavailable
	}

	return created, nil
}

// Authenticate verifies a Basic credential pair and returns the canonical
// account, or an error from the apperr taxonomy. An unknown email and a wrong
// password produce the same error; a dummy hash comparison keeps the two
// paths close in cost.
func (s *userService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			auth.BurnCompare(password)
			return nil, apperr.ErrUnauthorized
		}
		return nil, apperr.ErrUnavailable
	}

	if !auth.CheckPassword(password, user.Password) {
		return nil, apperr.ErrUnauthorized
	}

	if s.verifyGate && !user.IsVerified {
		return nil, apperr.ErrForbidden
	}

	return user, nil
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.ErrUnavailable
	}

	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, email string, input UpdateInput) error {
	patch := model.UserPatch{
		FirstName: input.FirstName,
		LastName:  input.LastName,
	}

	if input.Password != nil {
		hashed, err := auth.HashPassword(*input.Password)
		if err != nil {
			return apperr.ErrValidation
		}
		patch.Password = &hashed
	}

	if patch.Empty() {
		return nil
	}

	if err := s.userRepo.Update(ctx, email, patch); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.ErrNotFound
		}
		return apperr.ErrUnavailable
	}

	return nil
}

func (s *userService) CheckStore(ctx context.Context) error {
	return s.userRepo.Ping(ctx)
}
