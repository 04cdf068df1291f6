package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nutriplat/coaching-api/internal/domain"
	"nutriplat/coaching-api/internal/repository"
	"nutriplat/coaching-api/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ProgressEntryInput carries the caller-supplied fields of a progress entry.
type ProgressEntryInput struct {
	EntryDate         time.Time
	WeightKg          *float64
	BodyFatPercentage *float64
	Measurements      domain.Measurements
	Notes             string
}

// ProgressEntryView is a progress entry with photo keys resolved to
// presigned download URLs.
type ProgressEntryView struct {
	domain.ProgressEntry
	PhotoURLs []string `json:"photoUrls,omitempty"`
}

// PhotoUpload is a presigned upload slot for a single progress photo.
// The caller PUTs the image to UploadURL, then attaches ObjectKey to an
// entry via AttachPhoto.
type PhotoUpload struct {
	ObjectKey string `json:"objectKey"`
	UploadURL string `json:"uploadUrl"`
}

// --- Service Interface ---
type ProgressService interface {
	CreateEntry(ctx context.Context, clientID primitive.ObjectID, input ProgressEntryInput) (*domain.ProgressEntry, error)
	GetEntry(ctx context.Context, entryID, requesterID primitive.ObjectID) (*ProgressEntryView, error)
	GetClientEntries(ctx context.Context, clientID, requesterID primitive.ObjectID) ([]ProgressEntryView, error)
	UpdateEntry(ctx context.Context, entryID, requesterID primitive.ObjectID, input ProgressEntryInput) (*domain.ProgressEntry, error)
	DeleteEntry(ctx context.Context, entryID, requesterID primitive.ObjectID) error

	RequestPhotoUpload(ctx context.Context, clientID primitive.ObjectID, contentType string) (*PhotoUpload, error)
	AttachPhoto(ctx context.Context, entryID, requesterID primitive.ObjectID, objectKey string) (*domain.ProgressEntry, error)
}

// --- Service Implementation ---
type progressService struct {
	progressRepo repository.ProgressEntryRepository
	userRepo     repository.UserRepository
	fileStorage  storage.FileStorage
	policy       *AuthorizationPolicy
}

// NewProgressService creates a new instance of progressService.
func NewProgressService(
	progressRepo repository.ProgressEntryRepository,
	userRepo repository.UserRepository,
	fileStorage storage.FileStorage,
	policy *AuthorizationPolicy,
) ProgressService {
	return &progressService{
		progressRepo: progressRepo,
		userRepo:     userRepo,
		fileStorage:  fileStorage,
		policy:       policy,
	}
}

// CreateEntry records a new progress snapshot. Only the client themselves
// may create entries; professionals and admins get read access instead.
func (s *progressService) CreateEntry(ctx context.Context, clientID primitive.ObjectID, input ProgressEntryInput) (*domain.ProgressEntry, error) {
	if _, err := s.policy.RequireRequester(ctx, clientID, domain.RoleClient); err != nil {
		return nil, err
	}

	entry := &domain.ProgressEntry{
		ClientID:          clientID,
		EntryDate:         input.EntryDate,
		WeightKg:          input.WeightKg,
		BodyFatPercentage: input.BodyFatPercentage,
		Measurements:      input.Measurements,
		Notes:             input.Notes,
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	entryID, err := s.progressRepo.Create(ctx, entry)
	if err != nil {
		return nil, mapRepoError(err)
	}
	entry.ID = entryID
	return entry, nil
}

func (s *progressService) GetEntry(ctx context.Context, entryID, requesterID primitive.ObjectID) (*ProgressEntryView, error) {
	entry, err := s.progressRepo.GetByID(ctx, entryID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if err := s.authorizeRead(ctx, requesterID, entry.ClientID); err != nil {
		return nil, err
	}

	view := s.resolvePhotos(ctx, entry)
	return &view, nil
}

func (s *progressService) GetClientEntries(ctx context.Context, clientID, requesterID primitive.ObjectID) ([]ProgressEntryView, error) {
	if err := s.authorizeRead(ctx, requesterID, clientID); err != nil {
		return nil, err
	}

	entries, err := s.progressRepo.GetByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	views := make([]ProgressEntryView, 0, len(entries))
	for i := range entries {
		views = append(views, s.resolvePhotos(ctx, &entries[i]))
	}
	return views, nil
}

// UpdateEntry replaces the mutable fields of an entry. Only the owning
// client may update; CreatedAt and PhotoKeys are preserved.
func (s *progressService) UpdateEntry(ctx context.Context, entryID, requesterID primitive.ObjectID, input ProgressEntryInput) (*domain.ProgressEntry, error) {
	requester, err := s.policy.RequireRequester(ctx, requesterID, domain.RoleClient)
	if err != nil {
		return nil, err
	}

	entry, err := s.progressRepo.GetByID(ctx, entryID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if err := s.policy.CanWriteProgress(requester, entry.ClientID, false); err != nil {
		return nil, err
	}

	entry.EntryDate = input.EntryDate
	entry.WeightKg = input.WeightKg
	entry.BodyFatPercentage = input.BodyFatPercentage
	entry.Measurements = input.Measurements
	entry.Notes = input.Notes
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	if err := s.progressRepo.Update(ctx, entry); err != nil {
		return nil, mapRepoError(err)
	}
	return entry, nil
}

// DeleteEntry removes an entry and its stored photos. The owning client
// or an admin may delete.
func (s *progressService) DeleteEntry(ctx context.Context, entryID, requesterID primitive.ObjectID) error {
	requester, err := s.policy.RequireRequester(ctx, requesterID, domain.RoleClient, domain.RoleAdmin)
	if err != nil {
		return err
	}

	entry, err := s.progressRepo.GetByID(ctx, entryID)
	if err != nil {
		return mapRepoError(err)
	}
	if err := s.policy.CanWriteProgress(requester, entry.ClientID, true); err != nil {
		return err
	}

	if err := s.progressRepo.Delete(ctx, entryID); err != nil {
		return mapRepoError(err)
	}

	// Photo cleanup is best effort; orphaned objects are harmless.
	for _, key := range entry.PhotoKeys {
		if err := s.fileStorage.DeleteObject(ctx, key); err != nil {
			zap.L().Warn("failed to delete progress photo",
				zap.String("objectKey", key),
				zap.Error(err),
			)
		}
	}
	return nil
}

// RequestPhotoUpload mints a presigned PUT slot for a progress photo.
func (s *progressService) RequestPhotoUpload(ctx context.Context, clientID primitive.ObjectID, contentType string) (*PhotoUpload, error) {
	if _, err := s.policy.RequireRequester(ctx, clientID, domain.RoleClient); err != nil {
		return nil, err
	}
	if contentType == "" {
		return nil, errors.New("content type is required")
	}

	objectKey := fmt.Sprintf("progress/%s/%s", clientID.Hex(), uuid.NewString())
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, err
	}

	return &PhotoUpload{ObjectKey: objectKey, UploadURL: uploadURL}, nil
}

// AttachPhoto appends an uploaded photo key to an entry owned by the requester.
func (s *progressService) AttachPhoto(ctx context.Context, entryID, requesterID primitive.ObjectID, objectKey string) (*domain.ProgressEntry, error) {
	requester, err := s.policy.RequireRequester(ctx, requesterID, domain.RoleClient)
	if err != nil {
		return nil, err
	}
	// Only keys minted for this client may be attached.
	expectedPrefix := fmt.Sprintf("progress/%s/", requesterID.Hex())
	if len(objectKey) <= len(expectedPrefix) || objectKey[:len(expectedPrefix)] != expectedPrefix {
		return nil, ErrOwnershipDenied
	}

	entry, err := s.progressRepo.GetByID(ctx, entryID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if err := s.policy.CanWriteProgress(requester, entry.ClientID, false); err != nil {
		return nil, err
	}

	entry.PhotoKeys = append(entry.PhotoKeys, objectKey)
	if err := s.progressRepo.Update(ctx, entry); err != nil {
		return nil, mapRepoError(err)
	}
	return entry, nil
}

// authorizeRead loads both parties and applies the progress read policy.
// Linkage is checked at call time, so an unlinked professional loses
// access immediately.
func (s *progressService) authorizeRead(ctx context.Context, requesterID, ownerID primitive.ObjectID) error {
	requester, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		return mapRepoError(err)
	}
	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		return mapRepoError(err)
	}
	return s.policy.CanReadProgress(requester, owner)
}

// resolvePhotos presigns download URLs for an entry's photo keys. URL
// generation failures degrade to fewer URLs rather than failing the read.
func (s *progressService) resolvePhotos(ctx context.Context, entry *domain.ProgressEntry) ProgressEntryView {
	view := ProgressEntryView{ProgressEntry: *entry}
	for _, key := range entry.PhotoKeys {
		url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, key, storage.DefaultPresignedURLExpiry)
		if err != nil {
			zap.L().Warn("failed to presign progress photo",
				zap.String("objectKey", key),
				zap.Error(err),
			)
			continue
		}
		view.PhotoURLs = append(view.PhotoURLs, url)
	}
	return view
}
