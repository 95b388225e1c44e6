package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/SnehashisOrg/webapp/internal/apperr"
	"github.com/SnehashisOrg/webapp/internal/model"
	"github.com/SnehashisOrg/webapp/internal/repository"
	"github.com/google/uuid"
)

// ObjectStore is the object-storage collaborator holding the image blobs.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]string, error)
	PublicURL(key string) string
}

const keyPrefix = "profile-images/"

// allowedImageTypes maps the accepted Content-Type values to file extensions.
var allowedImageTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/gif":  "gif",
}

// ReconcileReport lists the two orphan classes that the write-before-link /
// unlink-before-delete protocol can leave behind after a crash.
type ReconcileReport struct {
	// OrphanedObjects exist in storage with no metadata row pointing at them.
	OrphanedObjects []string
	// OrphanedRows are metadata keys whose storage object is gone.
	OrphanedRows []string
}

type ImageService interface {
	Upload(ctx context.Context, user *model.User, body []byte, contentType string) (*model.ProfileImage, error)
	Get(ctx context.Context, user *model.User) (*model.ProfileImage, error)
	Delete(ctx context.Context, user *model.User) error
	Reconcile(ctx context.Context) (*ReconcileReport, error)
}

type imageService struct {
	imageRepo repository.ImageRepository
	store     ObjectStore
	logger    *slog.Logger
}

func NewImageService(imageRepo repository.ImageRepository, store ObjectStore, logger *slog.Logger) ImageService {
	return &imageService{imageRepo: imageRepo, store: store, logger: logger}
}

// Upload writes the blob first and links the metadata row after, so a storage
// failure never leaves a row pointing at a missing object. The inverse — an
// orphaned object after a row-insert failure — is reported as an upstream
// error and left for Reconcile.
func (s *imageService) Upload(ctx context.Context, user *model.User, body []byte, contentType string) (*model.ProfileImage, error) {
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return nil, apperr.ErrValidation
	}

	if _, err := s.imageRepo.FindByUserID(ctx, user.ID); err == nil {
		return nil, apperr.ErrConflict
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrUnavailable
	}

	fileName := uuid.New().String() + "." + ext
	key := keyPrefix + user.ID.String() + "/" + fileName

	if err := s.store.Put(ctx, key, contentType, body); err != nil {
		s.logger.Error("image object write failed", "key", key, "error", err)
		return nil, apperr.ErrUpstream
	}

	image := &model.ProfileImage{
		ID:         uuid.New(),
		UserID:     user.ID,
		FileName:   fileName,
		StorageKey: key,
		URL:        s.store.PublicURL(key),
	}

	created, err := s.imageRepo.Create(ctx, image)
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			// lost a concurrent upload race; our object is now an orphan
			s.logger.Error("image row conflict after object write", "key", key)
			return nil, apperr.ErrConflict
		}
		s.logger.Error("image row insert failed after object write", "key", key, "error", err)
		return nil, apperr.ErrUpstream
	}

	return created, nil
}

func (s *imageService) Get(ctx context.Context, user *model.User) (*model.ProfileImage, error) {
	image, err := s.imageRepo.FindByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.ErrUnavailable
	}

	return image, nil
}

// Delete removes the storage object first. If that fails the metadata row is
// kept, so a row never outlives certainty about its object; the cost is a
// possible orphaned row if the process dies between the two steps.
func (s *imageService) Delete(ctx context.Context, user *model.User) error {
	image, err := s.imageRepo.FindByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.ErrNotFound
		}
		return apperr.ErrUnavailable
	}

	if err := s.store.Delete(ctx, image.StorageKey); err != nil {
		s.logger.Error("image object delete failed", "key", image.StorageKey, "error", err)
		return apperr.ErrUpstream
	}

	if err := s.imageRepo.DeleteByUserID(ctx, user.ID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			// already gone; object deletion still counts
			return nil
		}
		return apperr.ErrUnavailable
	}

	return nil
}

// Reconcile is the maintenance hook for the cross-store protocol: it compares
// storage keys against metadata rows and reports the orphans on each side.
func (s *imageService) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	stored, err := s.store.List(ctx, keyPrefix)
	if err != nil {
		return nil, apperr.ErrUpstream
	}

	linked, err := s.imageRepo.ListKeys(ctx)
	if err != nil {
		return nil, apperr.ErrUnavailable
	}

	storedSet := make(map[string]bool, len(stored))
	for _, key := range stored {
		storedSet[key] = true
	}
	linkedSet := make(map[string]bool, len(linked))
	for _, key := range linked {
		linkedSet[key] = true
	}

	report := &ReconcileReport{}
	for _, key := range stored {
		if !linkedSet[key] {
			report.OrphanedObjects = append(report.OrphanedObjects, key)
		}
	}
	for _, key := range linked {
		if !storedSet[key] {
			report.OrphanedRows = append(report.OrphanedRows, key)
		}
	}

	return report, nil
}
