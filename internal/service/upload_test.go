package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuflow/doc-scanner/internal/events"
	"github.com/docuflow/doc-scanner/internal/service"
	"github.com/docuflow/doc-scanner/internal/store/model"
	"github.com/docuflow/doc-scanner/internal/store/storetest"
)

type recordingHub struct {
	mu     sync.Mutex
	events []any
}

func (h *recordingHub) Broadcast(event any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
}

func (h *recordingHub) statuses() []events.FileStatusEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []events.FileStatusEvent
	for _, e := range h.events {
		if ev, ok := e.(events.FileStatusEvent); ok {
			out = append(out, ev)
		}
	}
	return out
}

const testMaxUploadSize = 1 << 20

func TestCreateUploadPersistsAndAnnounces(t *testing.T) {
	s := storetest.NewFakeStore()
	hub := &recordingHub{}
	srv := service.NewUploadService(s, hub, testMaxUploadSize)

	upload, err := srv.CreateUpload(context.Background(), service.UploadForm{
		Filename:  "invoice.pdf",
		MediaType: "application/pdf",
		Content:   []byte("%PDF-1.7 ..."),
	})
	require.NoError(t, err)
	assert.NotZero(t, upload.ID)
	assert.Equal(t, model.UploadStatusPending, upload.Status)
	assert.Equal(t, int64(12), upload.FileSize)
	assert.False(t, upload.UploadTime.IsZero())

	record := s.Uploads().Snapshot(upload.ID)
	require.NotNil(t, record)
	assert.Equal(t, []byte("%PDF-1.7 ..."), record.RawContent)

	statuses := hub.statuses()
	require.Len(t, statuses, 1)
	assert.Equal(t, model.UploadStatusPending, statuses[0].Status)
	assert.Equal(t, upload.ID, statuses[0].FileID)
	assert.Equal(t, "invoice.pdf", statuses[0].Data["filename"])
}

func TestCreateUploadRejectsMissingFields(t *testing.T) {
	srv := service.NewUploadService(storetest.NewFakeStore(), &recordingHub{}, testMaxUploadSize)

	_, err := srv.CreateUpload(context.Background(), service.UploadForm{
		MediaType: "application/pdf",
		Content:   []byte("x"),
	})
	require.Error(t, err)
	assert.IsType(t, &service.ErrInvalidUpload{}, err)
}

func TestCreateUploadRejectsOversizedContent(t *testing.T) {
	srv := service.NewUploadService(storetest.NewFakeStore(), &recordingHub{}, 8)

	_, err := srv.CreateUpload(context.Background(), service.UploadForm{
		Filename:  "big.pdf",
		MediaType: "application/pdf",
		Content:   []byte("123456789"),
	})
	require.Error(t, err)
	assert.IsType(t, &service.ErrInvalidUpload{}, err)
	assert.Contains(t, err.Error(), "maximum size")
}

func TestGetUploadNotFound(t *testing.T) {
	srv := service.NewUploadService(storetest.NewFakeStore(), &recordingHub{}, testMaxUploadSize)

	_, err := srv.GetUpload(context.Background(), 404)
	require.Error(t, err)
	assert.IsType(t, &service.ErrResourceNotFound{}, err)
}

func TestDeleteUploadAnnouncesBeforeRemoval(t *testing.T) {
	s := storetest.NewFakeStore()
	seeded := s.Uploads().Seed(model.Upload{Filename: "old.pdf", Status: model.UploadStatusCompleted})

	hub := &recordingHub{}
	srv := service.NewUploadService(s, hub, testMaxUploadSize)

	require.NoError(t, srv.DeleteUpload(context.Background(), seeded.ID))
	assert.Nil(t, s.Uploads().Snapshot(seeded.ID))

	statuses := hub.statuses()
	require.Len(t, statuses, 1)
	assert.Equal(t, model.UploadStatusDeleted, statuses[0].Status)
	assert.Equal(t, seeded.ID, statuses[0].FileID)
}

func TestDeleteUploadNotFound(t *testing.T) {
	srv := service.NewUploadService(storetest.NewFakeStore(), &recordingHub{}, testMaxUploadSize)

	err := srv.DeleteUpload(context.Background(), 404)
	require.Error(t, err)
	assert.IsType(t, &service.ErrResourceNotFound{}, err)
}

func TestListUploadsReturnsAllRecords(t *testing.T) {
	s := storetest.NewFakeStore()
	s.Uploads().Seed(model.Upload{Filename: "a.pdf", Status: model.UploadStatusPending})
	s.Uploads().Seed(model.Upload{Filename: "b.pdf", Status: model.UploadStatusCompleted})

	srv := service.NewUploadService(s, &recordingHub{}, testMaxUploadSize)

	uploads, err := srv.ListUploads(context.Background())
	require.NoError(t, err)
	assert.Len(t, uploads, 2)
}

func TestStatusCountsWrapsStoreFailure(t *testing.T) {
	s := storetest.NewFakeStore()
	s.Uploads().Err = assert.AnError
	srv := service.NewUploadService(s, &recordingHub{}, testMaxUploadSize)

	_, err := srv.StatusCounts(context.Background())
	require.Error(t, err)
	assert.IsType(t, &service.ErrStoreUnavailable{}, err)
}
