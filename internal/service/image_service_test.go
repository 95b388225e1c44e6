package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SnehashisOrg/webapp/internal/apperr"
	"github.com/SnehashisOrg/webapp/internal/model"
)

type fakeImageRepo struct {
	findOut   *model.ProfileImage
	findErr   error
	createErr error
	deleteErr error
	keys      []string
	listErr   error

	created *model.ProfileImage
	deleted bool
}

func (f *fakeImageRepo) Create(ctx context.Context, image *model.ProfileImage) (*model.ProfileImage, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = image
	return image, nil
}

func (f *fakeImageRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.ProfileImage, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeImageRepo) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = true
	return nil
}

func (f *fakeImageRepo) ListKeys(ctx context.Context) ([]string, error) {
	return f.keys, f.listErr
}

type fakeObjectStore struct {
	putErr    error
	deleteErr error
	listErr   error
	objects   map[string][]byte
	deleted   []string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}}
}

func (f *fakeObjectStore) Put(ctx context.Context, key, contentType string, body []byte) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.objects[key] = body
	return nil
}

func (f *fakeObjectStore) Delete(ctx context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeObjectStore) List(ctx context.Context, prefix string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var keys []string
	for key := range f.objects {
		keys = append(keys, key)
	}
	return keys, nil
}

func (f *fakeObjectStore) PublicURL(key string) string {
	return "http://storage.local/bucket/" + key
}

func testUser() *model.User {
	return &model.User{ID: uuid.New(), Email: "alice@example.com"}
}

func TestUpload_Success(t *testing.T) {
	repo := &fakeImageRepo{findErr: apperr.ErrNotFound}
	store := newFakeObjectStore()
	svc := NewImageService(repo, store, discardLogger())

	user := testUser()
	image, err := svc.Upload(context.Background(), user, []byte("png-bytes"), "image/png")
	require.NoError(t, err)

	assert.Equal(t, user.ID, image.UserID)
	assert.Contains(t, image.StorageKey, "profile-images/"+user.ID.String()+"/")
	assert.Contains(t, image.FileName, ".png")
	assert.Equal(t, store.PublicURL(image.StorageKey), image.URL)
	assert.Contains(t, store.objects, image.StorageKey)
	require.NotNil(t, repo.created)
}

func TestUpload_RejectsNonImageType(t *testing.T) {
	repo := &fakeImageRepo{findErr: apperr.ErrNotFound}
	store := newFakeObjectStore()
	svc := NewImageService(repo, store, discardLogger())

	_, err := svc.Upload(context.Background(), testUser(), []byte("zip"), "application/zip")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Empty(t, store.objects)
}

func TestUpload_ConflictWhenImageExists(t *testing.T) {
	existing := &model.ProfileImage{StorageKey: "profile-images/x/a.png"}
	repo := &fakeImageRepo{findOut: existing}
	store := newFakeObjectStore()
	svc := NewImageService(repo, store, discardLogger())

	_, err := svc.Upload(context.Background(), testUser(), []byte("png"), "image/png")
	assert.ErrorIs(t, err, apperr.ErrConflict)
	// the first image is left untouched and nothing was written
	assert.Empty(t, store.objects)
}

func TestUpload_StorageFailureWritesNoRow(t *testing.T) {
	repo := &fakeImageRepo{findErr: apperr.ErrNotFound}
	store := newFakeObjectStore()
	store.putErr = errors.New("s3: connection reset")
	svc := NewImageService(repo, store, discardLogger())

	_, err := svc.Upload(context.Background(), testUser(), []byte("png"), "image/png")
	assert.ErrorIs(t, err, apperr.ErrUpstream)
	assert.Nil(t, repo.created)
}

func TestUpload_RowFailureAfterWriteIsSurfaced(t *testing.T) {
	repo := &fakeImageRepo{findErr: apperr.ErrNotFound, createErr: errors.New("pq: down")}
	store := newFakeObjectStore()
	svc := NewImageService(repo, store, discardLogger())

	_, err := svc.Upload(context.Background(), testUser(), []byte("png"), "image/png")
	assert.ErrorIs(t, err, apperr.ErrUpstream)
	// the orphaned object stays for out-of-band reconciliation
	assert.Len(t, store.objects, 1)
}

func TestGet_NotFound(t *testing.T) {
	repo := &fakeImageRepo{findErr: apperr.ErrNotFound}
	svc := NewImageService(repo, newFakeObjectStore(), discardLogger())

	_, err := svc.Get(context.Background(), testUser())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDelete_ObjectBeforeRow(t *testing.T) {
	image := &model.ProfileImage{StorageKey: "profile-images/u/a.png"}
	repo := &fakeImageRepo{findOut: image}
	store := newFakeObjectStore()
	store.objects[image.StorageKey] = []byte("png")
	svc := NewImageService(repo, store, discardLogger())

	require.NoError(t, svc.Delete(context.Background(), testUser()))
	assert.Equal(t, []string{image.StorageKey}, store.deleted)
	assert.True(t, repo.deleted)
}

func TestDelete_StorageFailureKeepsRow(t *testing.T) {
	image := &model.ProfileImage{StorageKey: "profile-images/u/a.png"}
	repo := &fakeImageRepo{findOut: image}
	store := newFakeObjectStore()
	store.deleteErr = errors.New("s3: timeout")
	svc := NewImageService(repo, store, discardLogger())

	err := svc.Delete(context.Background(), testUser())
	assert.ErrorIs(t, err, apperr.ErrUpstream)
	assert.False(t, repo.deleted)
}

func TestDelete_NoImage(t *testing.T) {
	repo := &fakeImageRepo{findErr: apperr.ErrNotFound}
	svc := NewImageService(repo, newFakeObjectStore(), discardLogger())

	err := svc.Delete(context.Background(), testUser())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestReconcile_ReportsBothOrphanClasses(t *testing.T) {
	repo := &fakeImageRepo{keys: []string{"profile-images/u1/linked.png", "profile-images/u2/lost.png"}}
	store := newFakeObjectStore()
	store.objects["profile-images/u1/linked.png"] = []byte("ok")
	store.objects["profile-images/u3/orphan.png"] = []byte("dangling")
	svc := NewImageService(repo, store, discardLogger())

	report, err := svc.Reconcile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"profile-images/u3/orphan.png"}, report.OrphanedObjects)
	assert.Equal(t, []string{"profile-images/u2/lost.png"}, report.OrphanedRows)
}
