package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/docuflow/doc-scanner/internal/events"
	"github.com/docuflow/doc-scanner/internal/store"
	"github.com/docuflow/doc-scanner/internal/store/model"
	"github.com/docuflow/doc-scanner/pkg/metrics"
)

// Broadcaster pushes events to live subscribers. Satisfied by ws.Hub.
type Broadcaster interface {
	Broadcast(event any)
}

// UploadForm carries the client-supplied part of a new upload.
type UploadForm struct {
	Filename  string `validate:"required,max=500"`
	MediaType string `validate:"required,max=100"`
	Content   []byte `validate:"required"`
}

type UploadService struct {
	store store.Store
	hub   Broadcaster

	maxUploadSize int64
	validate      *validator.Validate
}

func NewUploadService(s store.Store, hub Broadcaster, maxUploadSize int64) *UploadService {
	return &UploadService{
		store:         s,
		hub:           hub,
		maxUploadSize: maxUploadSize,
		validate:      validator.New(),
	}
}

func (u *UploadService) CreateUpload(ctx context.Context, form UploadForm) (*model.Upload, error) {
	if err := u.validate.Struct(form); err != nil {
		return nil, NewErrInvalidUpload(err.Error())
	}
	if int64(len(form.Content)) > u.maxUploadSize {
		return nil, NewErrInvalidUpload(fmt.Sprintf("file exceeds maximum size of %d bytes", u.maxUploadSize))
	}

	upload, err := u.store.Upload().Create(ctx, model.Upload{
		Filename:   form.Filename,
		FileSize:   int64(len(form.Content)),
		MediaType:  form.MediaType,
		UploadTime: time.Now().UTC(),
		Status:     model.UploadStatusPending,
		RawContent: form.Content,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create upload: %w", err)
	}

	metrics.IncreaseUploadsTotalMetric()
	u.hub.Broadcast(events.NewFileStatus(upload.ID, model.UploadStatusPending, map[string]any{
		"filename": upload.Filename,
		"message":  "File uploaded",
	}))

	zap.S().Named("upload_service").Infow("upload created",
		"file_id", upload.ID, "filename", upload.Filename, "size", upload.FileSize)
	return upload, nil
}

func (u *UploadService) ListUploads(ctx context.Context) (model.UploadList, error) {
	uploads, err := u.store.Upload().List(ctx, nil,
		store.NewUploadQueryOptions().WithSortOrder(store.SortByUploadTimeDesc))
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	return uploads, nil
}

func (u *UploadService) GetUpload(ctx context.Context, id uint) (*model.Upload, error) {
	upload, err := u.store.Upload().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrUploadNotFound(id)
		}
		return nil, fmt.Errorf("failed to get upload: %w", err)
	}
	return upload, nil
}

// DeleteUpload removes a record. The deletion event is emitted before the
// row disappears so subscribers see the transition for a still-known id.
func (u *UploadService) DeleteUpload(ctx context.Context, id uint) error {
	upload, err := u.store.Upload().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return NewErrUploadNotFound(id)
		}
		return fmt.Errorf("failed to get upload: %w", err)
	}

	u.hub.Broadcast(events.NewFileStatus(upload.ID, model.UploadStatusDeleted, map[string]any{
		"filename": upload.Filename,
		"message":  "File deleted",
	}))

	if err := u.store.Upload().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete upload: %w", err)
	}

	zap.S().Named("upload_service").Infow("upload deleted", "file_id", id)
	return nil
}

// StatusCounts powers the health endpoint.
func (u *UploadService) StatusCounts(ctx context.Context) (map[string]int, error) {
	counts, err := u.store.Upload().CountByStatus(ctx)
	if err != nil {
		return nil, NewErrStoreUnavailable(err)
	}
	return counts, nil
}
