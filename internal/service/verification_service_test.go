package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SnehashisOrg/webapp/internal/apperr"
	"github.com/SnehashisOrg/webapp/internal/model"
	"github.com/SnehashisOrg/webapp/internal/notify"
)

type fakeTokenRepo struct {
	createErr   error
	findOut     *model.VerificationToken
	findErr     error
	consumeErr  error
	lastCreated *model.VerificationToken
	consumed    int
}

func (f *fakeTokenRepo) Create(ctx context.Context, token *model.VerificationToken) error {
	f.lastCreated = token
	return f.createErr
}

func (f *fakeTokenRepo) FindByToken(ctx context.Context, token string) (*model.VerificationToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeTokenRepo) MarkConsumed(ctx context.Context, email, token string) error {
	f.consumed++
	return f.consumeErr
}

type fakePublisher struct {
	events []notify.VerificationEvent
	err    error
}

func (f *fakePublisher) PublishVerification(ctx context.Context, event notify.VerificationEvent) error {
	f.events = append(f.events, event)
	return f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newVerificationService(tokens *fakeTokenRepo, users *fakeUserRepo, pub *fakePublisher) VerificationService {
	return NewVerificationService(tokens, users, pub, discardLogger(), "http://localhost:8080", 3*time.Minute)
}

func TestIssue_PersistsAndPublishes(t *testing.T) {
	tokens := &fakeTokenRepo{}
	pub := &fakePublisher{}
	svc := newVerificationService(tokens, &fakeUserRepo{}, pub)

	user := &model.User{Email: "alice@example.com", FirstName: "Alice"}
	token, err := svc.Issue(context.Background(), user)
	require.NoError(t, err)

	assert.Len(t, token.Token, 64)
	assert.Equal(t, "alice@example.com", token.Email)
	assert.False(t, token.LinkVerified)
	assert.WithinDuration(t, time.Now().Add(3*time.Minute), token.ExpiresAt, 5*time.Second)
	require.NotNil(t, tokens.lastCreated)

	require.Len(t, pub.events, 1)
	event := pub.events[0]
	assert.Equal(t, "alice@example.com", event.Email)
	assert.Equal(t, "Alice", event.FirstName)
	assert.Contains(t, event.Link, "/user/verify?token="+token.Token)
	assert.Equal(t, token.ExpiresAt, event.ExpiresAt)
}

func TestIssue_UniqueTokens(t *testing.T) {
	tokens := &fakeTokenRepo{}
	svc := newVerificationService(tokens, &fakeUserRepo{}, &fakePublisher{})

	user := &model.User{Email: "alice@example.com"}
	first, err := svc.Issue(context.Background(), user)
	require.NoError(t, err)
	second, err := svc.Issue(context.Background(), user)
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)
}

func TestIssue_PublishFailureIsNotFatal(t *testing.T) {
	tokens := &fakeTokenRepo{}
	pub := &fakePublisher{err: errors.New("nats: connection closed")}
	svc := newVerificationService(tokens, &fakeUserRepo{}, pub)

	_, err := svc.Issue(context.Background(), &model.User{Email: "alice@example.com"})
	assert.NoError(t, err)
}

func liveToken() *model.VerificationToken {
	return &model.VerificationToken{
		Email:     "alice@example.com",
		Token:     "tok",
		ExpiresAt: time.Now().Add(time.Minute),
	}
}

func TestConsume_Success(t *testing.T) {
	tokens := &fakeTokenRepo{findOut: liveToken()}
	users := &fakeUserRepo{findOut: &model.User{Email: "alice@example.com"}}
	svc := newVerificationService(tokens, users, &fakePublisher{})

	err := svc.Consume(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, 1, tokens.consumed)
}

func TestConsume_UnknownToken(t *testing.T) {
	tokens := &fakeTokenRepo{findErr: apperr.ErrNotFound}
	svc := newVerificationService(tokens, &fakeUserRepo{}, &fakePublisher{})

	err := svc.Consume(context.Background(), "nope")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestConsume_ExpiredToken(t *testing.T) {
	expired := liveToken()
	expired.ExpiresAt = time.Now().Add(-time.Second)
	tokens := &fakeTokenRepo{findOut: expired}
	users := &fakeUserRepo{findOut: &model.User{Email: "alice@example.com"}}
	svc := newVerificationService(tokens, users, &fakePublisher{})

	err := svc.Consume(context.Background(), "tok")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Zero(t, tokens.consumed)
}

func TestConsume_UserRowMissing(t *testing.T) {
	tokens := &fakeTokenRepo{findOut: liveToken()}
	users := &fakeUserRepo{findErr: apperr.ErrNotFound}
	svc := newVerificationService(tokens, users, &fakePublisher{})

	err := svc.Consume(context.Background(), "tok")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestConsume_SecondTimeIsIdempotent(t *testing.T) {
	consumed := liveToken()
	consumed.LinkVerified = true
	tokens := &fakeTokenRepo{findOut: consumed}
	users := &fakeUserRepo{findOut: &model.User{Email: "alice@example.com", IsVerified: true}}
	svc := newVerificationService(tokens, users, &fakePublisher{})

	err := svc.Consume(context.Background(), "tok")
	assert.NoError(t, err)
	// no second state transition
	assert.Zero(t, tokens.consumed)
}
